package service

import (
	"context"
	"io"

	"stagesight/internal/cache"
	"stagesight/internal/checkout"
	"stagesight/internal/model"
	"stagesight/internal/report"
	"stagesight/internal/repository"
	"stagesight/internal/ticket"
	apperrors "stagesight/pkg/app_errors"
	"stagesight/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BookingService 管理後台的訂位操作
type BookingService interface {
	List(ctx context.Context) ([]*model.Booking, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Booking, error)
	// Delete 刪除訂位並釋放佔用的座位
	Delete(ctx context.Context, id uuid.UUID) error
	ExportCSV(ctx context.Context, w io.Writer) error
	// Ticket 重新產生票券
	Ticket(ctx context.Context, id uuid.UUID, w io.Writer) (*model.Booking, error)
}

type BookingServiceImpl struct {
	repo   repository.BookingRepository
	claims cache.SeatClaimManager // nil 時不鎖位
}

func NewBookingService(repo repository.BookingRepository, claims cache.SeatClaimManager) BookingService {
	return &BookingServiceImpl{repo: repo, claims: claims}
}

func (s *BookingServiceImpl) List(ctx context.Context) ([]*model.Booking, error) {
	return s.repo.List(ctx)
}

func (s *BookingServiceImpl) GetByID(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *BookingServiceImpl) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}

	if s.claims != nil && len(deleted.SeatIDs) > 0 {
		// 訂位已刪除，釋放失敗只影響 Redis 中的佔位紀錄
		if err := s.claims.Release(ctx, deleted.ShowID, deleted.SeatIDs); err != nil {
			logger.WithComponent("booking").Error("release seat claims failed",
				zap.Stringer("booking_id", id),
				zap.Strings("seats", deleted.SeatIDs),
				zap.Error(err),
			)
		}
	}
	return nil
}

func (s *BookingServiceImpl) ExportCSV(ctx context.Context, w io.Writer) error {
	bookings, err := s.repo.List(ctx)
	if err != nil {
		return err
	}
	return report.WriteBookingsCSV(w, bookings)
}

func (s *BookingServiceImpl) Ticket(ctx context.Context, id uuid.UUID, w io.Writer) (*model.Booking, error) {
	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	// 舊資料沒有確認編號，無法產生票券
	if b.ConfirmationNumber == "" {
		return nil, apperrors.ErrNotConfirmed
	}
	if err := ticket.Render(w, checkout.TicketData(b, b.Show)); err != nil {
		return nil, err
	}
	return b, nil
}
