package model

import (
	"time"

	"github.com/google/uuid"
)

const RoleAdmin = "admin"

type Profile struct {
	ID        uuid.UUID `json:"id" db:"id"`
	FirstName *string   `json:"first_name,omitempty" db:"first_name"`
	LastName  *string   `json:"last_name,omitempty" db:"last_name"`
	Phone     *string   `json:"phone,omitempty" db:"phone"`
	Role      *string   `json:"role,omitempty" db:"role"`
	Username  *string   `json:"username,omitempty" db:"username"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

func (p *Profile) IsAdmin() bool {
	return p.Role != nil && *p.Role == RoleAdmin
}

// AuthUser 目前登入的使用者；ID 為 uuid.Nil 代表訪客
type AuthUser struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name,omitempty"`
	LastName  string    `json:"last_name,omitempty"`
}

// IsGuest 檢查是否為未登入的訪客
func (u *AuthUser) IsGuest() bool {
	return u == nil || u.ID == GuestUserID
}
