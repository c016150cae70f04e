package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event 演出場次 (shows table)
type Event struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	Title          string          `json:"title" db:"title"`
	Venue          *string         `json:"venue,omitempty" db:"venue"`
	Date           string          `json:"date" db:"date"`
	Time           *string         `json:"time,omitempty" db:"time"`
	Price          decimal.Decimal `json:"price" db:"price"`
	Category       *string         `json:"category,omitempty" db:"category"`
	Description    string          `json:"description" db:"description"`
	ImageURL       string          `json:"image_url" db:"image_url"`
	AvailableSeats int             `json:"available_seats" db:"available_seats"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
}

// VenueName 回傳場地名稱，未設定時為空字串
func (e *Event) VenueName() string {
	if e.Venue == nil {
		return ""
	}
	return *e.Venue
}

// StartTime 回傳開演時間，未設定時為空字串
func (e *Event) StartTime() string {
	if e.Time == nil {
		return ""
	}
	return *e.Time
}

type UpdateEventParams struct {
	Title          *string
	Venue          *string
	Date           *string
	Time           *string
	Price          *decimal.Decimal
	Category       *string
	Description    *string
	ImageURL       *string
	AvailableSeats *int
}

// IsEmpty 檢查是否沒有任何欄位需要更新
func (p UpdateEventParams) IsEmpty() bool {
	return p.Title == nil && p.Venue == nil && p.Date == nil && p.Time == nil &&
		p.Price == nil && p.Category == nil && p.Description == nil &&
		p.ImageURL == nil && p.AvailableSeats == nil
}
