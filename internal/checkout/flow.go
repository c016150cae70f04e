// Package checkout 結帳流程：選位、填寫資料、上傳付款證明、送出訂位並產生確認資訊
package checkout

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"time"

	"stagesight/internal/cache"
	"stagesight/internal/metrics"
	"stagesight/internal/model"
	"stagesight/internal/queue"
	"stagesight/internal/seating"
	"stagesight/internal/storage"
	"stagesight/internal/ticket"
	apperrors "stagesight/pkg/app_errors"
	"stagesight/pkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// BookingInserter 訂位寫入，單一原子操作，由資料庫指派 id 與 created_at
type BookingInserter interface {
	Insert(ctx context.Context, booking *model.Booking) (*model.Booking, error)
}

type Config struct {
	Rows         int
	SeatsPerRow  int
	MaxSelection int
	MaxProofSize int64
	// 儲存失敗時改用 PlaceholderProofURL，正式環境應關閉
	PlaceholderProof    bool
	PlaceholderProofURL string
}

type Flow interface {
	// 開始：產生座位圖並建立新的結帳流程
	Start(ctx context.Context, show *model.Event, reserved map[string]struct{}, user *model.AuthUser) (*Session, error)
	// 選位：切換座位的選取狀態
	ToggleSeat(ctx context.Context, s *Session, seatID string) (seating.ToggleResult, error)
	// 填表：更新客戶資料，驗證失敗回傳 ValidationErrors 但仍保留輸入內容
	UpdateCustomer(ctx context.Context, s *Session, form CustomerForm) error
	// 上傳：檢查並儲存付款證明
	AttachProof(ctx context.Context, s *Session, fileName string, data []byte) error
	// 送出：寫入訂位並產生確認編號
	Submit(ctx context.Context, s *Session) (*model.Booking, error)
	// 取消：丟棄流程並清理已上傳的檔案
	Cancel(ctx context.Context, s *Session) error
	// 票券：輸出已確認訂位的 PDF
	Ticket(ctx context.Context, s *Session, w io.Writer) error
}

type FlowImpl struct {
	bookings BookingInserter
	storage  storage.ObjectStorage
	claims   cache.SeatClaimManager // nil 時不鎖位
	cleanup  queue.CleanupQueue     // nil 時不清理孤兒檔案
	cfg      Config

	now                func() time.Time
	confirmationNumber func() (string, error)
}

func NewFlow(
	bookings BookingInserter,
	storage storage.ObjectStorage,
	claims cache.SeatClaimManager,
	cleanup queue.CleanupQueue,
	cfg Config,
) Flow {
	if cfg.Rows == 0 {
		cfg.Rows = 10
	}
	if cfg.SeatsPerRow == 0 {
		cfg.SeatsPerRow = 20
	}
	if cfg.MaxSelection <= 0 {
		cfg.MaxSelection = seating.DefaultMaxSelection
	}
	if cfg.MaxProofSize <= 0 {
		cfg.MaxProofSize = DefaultMaxProofSize
	}
	return &FlowImpl{
		bookings:           bookings,
		storage:            storage,
		claims:             claims,
		cleanup:            cleanup,
		cfg:                cfg,
		now:                time.Now,
		confirmationNumber: NewConfirmationNumber,
	}
}

func (f *FlowImpl) Start(ctx context.Context, show *model.Event, reserved map[string]struct{}, user *model.AuthUser) (*Session, error) {
	if show == nil {
		return nil, apperrors.ErrEventNotFound
	}

	grid, err := seating.Generate(f.cfg.Rows, f.cfg.SeatsPerRow, reserved)
	if err != nil {
		return nil, err
	}

	s := newSession(uuid.New().String(), *show, grid, f.cfg.MaxSelection, f.now())
	if !user.IsGuest() {
		s.UserID = user.ID
		// 登入使用者預先帶入姓名與 email
		s.applyCustomer(CustomerForm{
			FirstName: user.FirstName,
			LastName:  user.LastName,
			Email:     user.Email,
		})
		s.settle()
	}
	return s, nil
}

func (f *FlowImpl) ToggleSeat(ctx context.Context, s *Session, seatID string) (seating.ToggleResult, error) {
	if err := s.editable(); err != nil {
		return "", err
	}

	seat, ok := s.Grid.Find(seatID)
	if !ok {
		metrics.SeatToggles.WithLabelValues("not_found").Inc()
		return "", fmt.Errorf("%w: %s", apperrors.ErrSeatNotFound, seatID)
	}

	result, err := s.Seats.Toggle(seat)
	switch {
	case errors.Is(err, apperrors.ErrSeatReserved):
		metrics.SeatToggles.WithLabelValues("reserved").Inc()
		return "", err
	case errors.Is(err, apperrors.ErrSelectionFull):
		metrics.SeatToggles.WithLabelValues("full").Inc()
		return "", err
	case err != nil:
		return "", err
	}

	metrics.SeatToggles.WithLabelValues(string(result)).Inc()
	return result, nil
}

func (f *FlowImpl) UpdateCustomer(ctx context.Context, s *Session, form CustomerForm) error {
	if err := s.editable(); err != nil {
		return err
	}

	s.applyCustomer(form)
	s.settle()

	if errs := s.FormErrors(); errs != nil {
		return errs
	}
	return nil
}

func (f *FlowImpl) AttachProof(ctx context.Context, s *Session, fileName string, data []byte) error {
	if err := s.editable(); err != nil {
		return err
	}

	contentType, ext, err := DetectProof(data, f.cfg.MaxProofSize)
	if err != nil {
		metrics.ProofUploads.WithLabelValues("rejected").Inc()
		return err
	}

	proof := &Proof{
		FileName:    fileName,
		ContentType: contentType,
		Size:        int64(len(data)),
	}

	objectPath := proofObjectPath(s.ID, uuid.New().String(), ext)
	stored, err := f.storage.Upload(ctx, objectPath, data, contentType)
	if err != nil {
		if !f.cfg.PlaceholderProof {
			metrics.ProofUploads.WithLabelValues("failed").Inc()
			s.FailureReason = err.Error()
			return fmt.Errorf("%w: %v", apperrors.ErrUploadFailed, err)
		}
		logger.WithComponent("checkout").Warn("proof upload failed, using placeholder url",
			zap.String("session_id", s.ID),
			zap.Error(err),
		)
		metrics.ProofUploads.WithLabelValues("placeholder").Inc()
		proof.URL = f.cfg.PlaceholderProofURL
		proof.Placeholder = true
	} else {
		metrics.ProofUploads.WithLabelValues("stored").Inc()
		proof.StoredPath = stored
		proof.URL = f.storage.PublicURL(stored)
	}

	// 重新上傳時舊檔案成為孤兒
	if old := s.Proof; old != nil {
		f.enqueueCleanup(ctx, s.ID, old, "replaced")
	}

	s.Proof = proof
	s.FailureReason = ""
	s.settle()
	return nil
}

func (f *FlowImpl) Submit(ctx context.Context, s *Session) (*model.Booking, error) {
	if err := s.editable(); err != nil {
		return nil, err
	}
	if s.State != model.CheckoutStateReady {
		return nil, apperrors.ErrNotReady
	}
	if s.Seats.Len() == 0 {
		return nil, apperrors.ErrNoSeatsSelected
	}

	if err := s.transition(model.CheckoutStateSubmitting); err != nil {
		return nil, err
	}

	log := logger.WithComponent("checkout").With(zap.String("session_id", s.ID), zap.Stringer("show_id", s.Show.ID))
	seatIDs := s.Seats.IDs()

	if f.claims != nil {
		if err := f.claims.Claim(ctx, s.Show.ID, seatIDs); err != nil {
			log.Warn("seat claim failed", zap.Strings("seats", seatIDs), zap.Error(err))
			metrics.Submissions.WithLabelValues("seat_unavailable").Inc()
			f.fail(s, err)
			return nil, err
		}
	}

	number, err := f.confirmationNumber()
	if err != nil {
		f.releaseClaims(ctx, s.Show.ID, seatIDs)
		f.fail(s, err)
		return nil, err
	}

	booking := &model.Booking{
		ShowID:             s.Show.ID,
		UserID:             s.UserID,
		Seats:              len(seatIDs),
		SeatIDs:            seatIDs,
		TotalAmount:        decimal.NewFromInt(int64(s.Total())),
		CustomerName:       s.Customer.FullName(),
		CustomerEmail:      s.Customer.Email,
		CustomerBirthdate:  s.Customer.Birthdate,
		PaymentReference:   s.Reference,
		ConfirmationNumber: number,
	}
	if s.Proof != nil {
		url := s.Proof.URL
		booking.PaymentProofURL = &url
	}

	created, err := f.bookings.Insert(ctx, booking)
	if err != nil {
		log.Error("booking insert failed", zap.Error(err))
		metrics.Submissions.WithLabelValues("failed").Inc()
		f.releaseClaims(ctx, s.Show.ID, seatIDs)
		f.fail(s, err)
		return nil, fmt.Errorf("%w: %v", apperrors.ErrPersistence, err)
	}

	s.Booking = created
	s.ConfirmationNumber = number
	s.FailureReason = ""
	if err := s.transition(model.CheckoutStateConfirmed); err != nil {
		return nil, err
	}
	s.Seats.Reset()

	metrics.Submissions.WithLabelValues("confirmed").Inc()
	metrics.BookingAmount.Observe(created.TotalAmount.InexactFloat64())
	log.Info("booking confirmed",
		zap.Stringer("booking_id", created.ID),
		zap.String("confirmation_number", number),
		zap.Int("seats", created.Seats),
	)
	return created, nil
}

func (f *FlowImpl) Cancel(ctx context.Context, s *Session) error {
	switch s.State {
	case model.CheckoutStateSubmitting:
		return apperrors.ErrSubmissionInProgress
	case model.CheckoutStateConfirmed:
		// 付款證明已屬於訂位，不清理
		return nil
	}

	if s.Proof != nil {
		f.enqueueCleanup(ctx, s.ID, s.Proof, "cancelled")
		s.Proof = nil
	}
	s.Seats.Reset()
	return nil
}

func (f *FlowImpl) Ticket(ctx context.Context, s *Session, w io.Writer) error {
	if s.State != model.CheckoutStateConfirmed || s.Booking == nil {
		return apperrors.ErrNotConfirmed
	}
	return ticket.Render(w, TicketData(s.Booking, &s.Show))
}

// TicketData 由訂位與場次組出票券內容
func TicketData(b *model.Booking, show *model.Event) ticket.Data {
	d := ticket.Data{
		Seats:              b.SeatIDs,
		ConfirmationNumber: b.ConfirmationNumber,
		CustomerName:       b.CustomerName,
	}
	if show != nil {
		d.EventName = show.Title
		d.Date = show.Date
		d.Time = show.StartTime()
		d.Venue = show.VenueName()
	}
	return d
}

// fail Submitting -> Failed -> Ready，保留表單與付款證明讓使用者直接重試
func (f *FlowImpl) fail(s *Session, cause error) {
	s.FailureReason = cause.Error()
	_ = s.transition(model.CheckoutStateFailed)
	_ = s.transition(model.CheckoutStateReady)
}

func (f *FlowImpl) releaseClaims(ctx context.Context, showID uuid.UUID, seatIDs []string) {
	if f.claims == nil {
		return
	}
	if err := f.claims.Release(ctx, showID, seatIDs); err != nil {
		logger.WithComponent("checkout").Error("release seat claims failed",
			zap.Stringer("show_id", showID),
			zap.Strings("seats", seatIDs),
			zap.Error(err),
		)
	}
}

func (f *FlowImpl) enqueueCleanup(ctx context.Context, sessionID string, p *Proof, reason string) {
	if f.cleanup == nil || p.Placeholder || p.StoredPath == "" {
		return
	}
	job := &model.ProofCleanupJob{
		StoredPath: p.StoredPath,
		SessionID:  sessionID,
		Reason:     reason,
		EnqueuedAt: f.now(),
	}
	if err := f.cleanup.Publish(ctx, job); err != nil {
		logger.WithComponent("checkout").Warn("enqueue proof cleanup failed",
			zap.String("session_id", sessionID),
			zap.String("path", p.StoredPath),
			zap.Error(err),
		)
	}
}

// NewConfirmationNumber 產生 TKT- 加上 100000~999999 的隨機數字
func NewConfirmationNumber() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("generate confirmation number: %w", err)
	}
	return fmt.Sprintf("TKT-%d", n.Int64()+100000), nil
}
