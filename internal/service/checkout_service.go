package service

import (
	"context"
	"errors"
	"io"

	"stagesight/internal/checkout"
	"stagesight/internal/model"
	"stagesight/internal/seating"
	"stagesight/internal/ticket"
	apperrors "stagesight/pkg/app_errors"

	"github.com/google/uuid"
)

type CheckoutService interface {
	// 開始結帳：讀取場次與已售出座位，建立新的結帳流程
	Start(ctx context.Context, showID uuid.UUID, user *model.AuthUser) (*checkout.Session, error)
	Get(ctx context.Context, id string) (*checkout.Session, error)
	ToggleSeat(ctx context.Context, id, seatID string) (*checkout.Session, seating.ToggleResult, error)
	UpdateCustomer(ctx context.Context, id string, form checkout.CustomerForm) (*checkout.Session, error)
	AttachProof(ctx context.Context, id, fileName string, data []byte) (*checkout.Session, error)
	Submit(ctx context.Context, id string) (*checkout.Session, error)
	// Ticket 寫出票券並回傳下載檔名
	Ticket(ctx context.Context, id string, w io.Writer) (string, error)
	Cancel(ctx context.Context, id string) error
}

type CheckoutServiceImpl struct {
	events EventService
	flow   checkout.Flow
	store  checkout.SessionStore
}

func NewCheckoutService(events EventService, flow checkout.Flow, store checkout.SessionStore) CheckoutService {
	return &CheckoutServiceImpl{
		events: events,
		flow:   flow,
		store:  store,
	}
}

func (s *CheckoutServiceImpl) Start(ctx context.Context, showID uuid.UUID, user *model.AuthUser) (*checkout.Session, error) {
	show, err := s.events.GetByID(ctx, showID)
	if err != nil {
		return nil, err
	}

	reserved, err := s.events.ReservedSeats(ctx, showID)
	if err != nil {
		return nil, err
	}

	sess, err := s.flow.Start(ctx, show, reserved, user)
	if err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *CheckoutServiceImpl) Get(ctx context.Context, id string) (*checkout.Session, error) {
	return s.store.Get(ctx, id)
}

func (s *CheckoutServiceImpl) ToggleSeat(ctx context.Context, id, seatID string) (*checkout.Session, seating.ToggleResult, error) {
	var result seating.ToggleResult
	sess, err := s.mutate(ctx, id, func(sess *checkout.Session) error {
		var err error
		result, err = s.flow.ToggleSeat(ctx, sess, seatID)
		return err
	})
	return sess, result, err
}

func (s *CheckoutServiceImpl) UpdateCustomer(ctx context.Context, id string, form checkout.CustomerForm) (*checkout.Session, error) {
	return s.mutate(ctx, id, func(sess *checkout.Session) error {
		return s.flow.UpdateCustomer(ctx, sess, form)
	})
}

func (s *CheckoutServiceImpl) AttachProof(ctx context.Context, id, fileName string, data []byte) (*checkout.Session, error) {
	return s.mutate(ctx, id, func(sess *checkout.Session) error {
		return s.flow.AttachProof(ctx, sess, fileName, data)
	})
}

func (s *CheckoutServiceImpl) Submit(ctx context.Context, id string) (*checkout.Session, error) {
	sess, err := s.mutate(ctx, id, func(sess *checkout.Session) error {
		_, err := s.flow.Submit(ctx, sess)
		return err
	})
	if errors.Is(err, apperrors.ErrSessionBusy) {
		return nil, apperrors.ErrSubmissionInProgress
	}
	return sess, err
}

func (s *CheckoutServiceImpl) Ticket(ctx context.Context, id string, w io.Writer) (string, error) {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if err := s.flow.Ticket(ctx, sess, w); err != nil {
		return "", err
	}
	return ticket.FileName(sess.ConfirmationNumber), nil
}

func (s *CheckoutServiceImpl) Cancel(ctx context.Context, id string) error {
	unlock, err := s.store.Lock(ctx, id)
	if err != nil {
		return err
	}
	defer unlock()

	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.flow.Cancel(ctx, sess); err != nil {
		return err
	}
	return s.store.Delete(ctx, id)
}

// mutate 鎖定 session 後執行 fn 並儲存結果。
// fn 回傳錯誤時仍會儲存，保留使用者輸入與失敗原因。
func (s *CheckoutServiceImpl) mutate(ctx context.Context, id string, fn func(*checkout.Session) error) (*checkout.Session, error) {
	unlock, err := s.store.Lock(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	fnErr := fn(sess)
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, fnErr
}
