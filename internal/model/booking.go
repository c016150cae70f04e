package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GuestUserID 未登入結帳時記錄的名義擁有者
var GuestUserID = uuid.Nil

// Booking 訂位紀錄，建立後客戶不可修改，只有管理員能刪除
type Booking struct {
	ID                 uuid.UUID       `json:"id" db:"id"`
	ShowID             uuid.UUID       `json:"show_id" db:"show_id"`
	UserID             uuid.UUID       `json:"user_id" db:"user_id"`
	Seats              int             `json:"seats" db:"seats"`
	SeatIDs            []string        `json:"seat_ids" db:"seat_ids"`
	TotalAmount        decimal.Decimal `json:"total_amount" db:"total_amount"`
	CustomerName       string          `json:"customer_name" db:"customer_name"`
	CustomerEmail      string          `json:"customer_email" db:"customer_email"`
	CustomerBirthdate  string          `json:"customer_birthdate" db:"customer_birthdate"`
	PaymentReference   string          `json:"payment_reference" db:"payment_reference"`
	PaymentProofURL    *string         `json:"payment_proof_url,omitempty" db:"payment_proof_url"`
	ConfirmationNumber string          `json:"confirmation_number" db:"confirmation_number"`
	CreatedAt          time.Time       `json:"created_at" db:"created_at"`

	Show *Event `json:"show,omitempty" db:"-"`
}

// IsGuest 檢查是否為未登入使用者的訂位
func (b *Booking) IsGuest() bool {
	return b.UserID == GuestUserID
}
