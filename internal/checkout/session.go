package checkout

import (
	"fmt"
	"strings"
	"time"

	"stagesight/internal/model"
	"stagesight/internal/seating"
	apperrors "stagesight/pkg/app_errors"

	"github.com/google/uuid"
)

// Session 一次結帳流程的完整狀態：選位、表單、付款證明與結果。
// 在頁面之間明確傳遞，結帳完成或取消後即丟棄。
type Session struct {
	ID     string             `json:"id"`
	UserID uuid.UUID          `json:"user_id"`
	Show   model.Event        `json:"show"`
	Grid   seating.Grid       `json:"grid"`
	Seats  *seating.Selection `json:"selection"`

	Customer CustomerForm `json:"customer"`
	Proof    *Proof       `json:"proof,omitempty"`

	// 實際使用的付款參考碼；未自行輸入時每次更新表單都重新推導
	Reference string `json:"payment_reference"`

	State         model.CheckoutState   `json:"state"`
	History       []model.CheckoutState `json:"history"`
	FailureReason string                `json:"failure_reason,omitempty"`

	Booking            *model.Booking `json:"booking,omitempty"`
	ConfirmationNumber string         `json:"confirmation_number,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func newSession(id string, show model.Event, grid seating.Grid, maxSelection int, now time.Time) *Session {
	return &Session{
		ID:        id,
		UserID:    model.GuestUserID,
		Show:      show,
		Grid:      grid,
		Seats:     seating.NewSelection(maxSelection),
		State:     model.CheckoutStateCollecting,
		History:   []model.CheckoutState{model.CheckoutStateCollecting},
		CreatedAt: now,
	}
}

// ReferenceTyped 使用者是否自行輸入付款參考碼
func (s *Session) ReferenceTyped() bool {
	return s.Customer.PaymentReference != ""
}

// FormErrors 目前表單的驗證錯誤，nil 表示通過
func (s *Session) FormErrors() ValidationErrors {
	return s.Customer.Validate(s.Reference)
}

func (s *Session) Total() int {
	return s.Seats.Total()
}

func (s *Session) HasProof() bool {
	return s.Proof != nil && s.Proof.URL != ""
}

// applyCustomer 更新表單並重新推導參考碼
func (s *Session) applyCustomer(form CustomerForm) {
	form.FirstName = strings.TrimSpace(form.FirstName)
	form.LastName = strings.TrimSpace(form.LastName)
	form.Email = strings.TrimSpace(form.Email)
	form.Birthdate = strings.TrimSpace(form.Birthdate)
	form.PaymentReference = strings.TrimSpace(form.PaymentReference)

	s.Customer = form
	s.Reference = form.PaymentReference
	if !s.ReferenceTyped() {
		s.Reference = DeriveReference(form.FirstName, form.LastName, form.Birthdate)
	}
}

// settle 依表單與付款證明決定 Collecting / ProofRequired / Ready
func (s *Session) settle() {
	target := model.CheckoutStateCollecting
	if s.FormErrors() == nil {
		target = model.CheckoutStateProofRequired
		if s.HasProof() {
			target = model.CheckoutStateReady
		}
	}
	if target != s.State {
		_ = s.transition(target)
	}
}

func (s *Session) transition(to model.CheckoutState) error {
	if !s.State.CanTransitionTo(to) {
		return fmt.Errorf("invalid checkout transition %s -> %s", s.State, to)
	}
	s.State = to
	s.History = append(s.History, to)
	return nil
}

// editable 送出中或已完成的結帳不可再修改
func (s *Session) editable() error {
	switch s.State {
	case model.CheckoutStateSubmitting:
		return apperrors.ErrSubmissionInProgress
	case model.CheckoutStateConfirmed:
		return apperrors.ErrAlreadyConfirmed
	}
	return nil
}
