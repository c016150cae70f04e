package service

import (
	"context"

	"stagesight/internal/cache"
	"stagesight/internal/model"
	"stagesight/internal/repository"
	"stagesight/internal/seating"
	"stagesight/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SeatMap 場次座位圖，已售出或正在結帳中的座位標記為 reserved
type SeatMap struct {
	Event     *model.Event `json:"event"`
	Grid      seating.Grid `json:"grid"`
	Available int          `json:"available"`
}

type EventService interface {
	List(ctx context.Context) ([]*model.Event, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Event, error)
	Create(ctx context.Context, event *model.Event) (*model.Event, error)
	Update(ctx context.Context, id uuid.UUID, params model.UpdateEventParams) (*model.Event, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// SeatMap 產生座位圖
	SeatMap(ctx context.Context, id uuid.UUID) (*SeatMap, error)
	// ReservedSeats 已售出與已被佔用座位的聯集
	ReservedSeats(ctx context.Context, id uuid.UUID) (map[string]struct{}, error)
	// OpenForSale 將資料庫中已售出的座位預熱到 Redis
	OpenForSale(ctx context.Context, id uuid.UUID) error
}

type EventServiceImpl struct {
	repo        repository.EventRepository
	bookingRepo repository.BookingRepository
	claims      cache.SeatClaimManager // nil 時不鎖位
	rows        int
	seatsPerRow int
}

func NewEventService(
	repo repository.EventRepository,
	bookingRepo repository.BookingRepository,
	claims cache.SeatClaimManager,
	rows, seatsPerRow int,
) EventService {
	return &EventServiceImpl{
		repo:        repo,
		bookingRepo: bookingRepo,
		claims:      claims,
		rows:        rows,
		seatsPerRow: seatsPerRow,
	}
}

func (s *EventServiceImpl) List(ctx context.Context) ([]*model.Event, error) {
	return s.repo.List(ctx)
}

func (s *EventServiceImpl) GetByID(ctx context.Context, id uuid.UUID) (*model.Event, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *EventServiceImpl) Create(ctx context.Context, event *model.Event) (*model.Event, error) {
	if event.AvailableSeats == 0 {
		event.AvailableSeats = s.rows * s.seatsPerRow
	}
	return s.repo.Create(ctx, event)
}

func (s *EventServiceImpl) Update(ctx context.Context, id uuid.UUID, params model.UpdateEventParams) (*model.Event, error) {
	return s.repo.Update(ctx, id, params)
}

func (s *EventServiceImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *EventServiceImpl) SeatMap(ctx context.Context, id uuid.UUID) (*SeatMap, error) {
	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	reserved, err := s.ReservedSeats(ctx, id)
	if err != nil {
		return nil, err
	}

	grid, err := seating.Generate(s.rows, s.seatsPerRow, reserved)
	if err != nil {
		return nil, err
	}
	return &SeatMap{Event: event, Grid: grid, Available: grid.CountAvailable()}, nil
}

func (s *EventServiceImpl) ReservedSeats(ctx context.Context, id uuid.UUID) (map[string]struct{}, error) {
	booked, err := s.bookingRepo.BookedSeatIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.claims == nil {
		return seating.ReservedSet(booked), nil
	}

	claimed, err := s.claims.ClaimedSeats(ctx, id)
	if err != nil {
		// Redis 暫時無法使用時仍以資料庫為準
		logger.WithComponent("event").Warn("load claimed seats failed", zap.Stringer("show_id", id), zap.Error(err))
		return seating.ReservedSet(booked), nil
	}
	return seating.ReservedSet(booked, claimed), nil
}

func (s *EventServiceImpl) OpenForSale(ctx context.Context, id uuid.UUID) error {
	if s.claims == nil {
		return nil
	}
	booked, err := s.bookingRepo.BookedSeatIDs(ctx, id)
	if err != nil {
		return err
	}
	return s.claims.WarmUp(ctx, id, booked)
}
