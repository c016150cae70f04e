package service_test

import (
	"context"
	"errors"
	"testing"

	"stagesight/internal/mocks"
	"stagesight/internal/model"
	"stagesight/internal/service"
	apperrors "stagesight/pkg/app_errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupEventService(t *testing.T, withClaims bool) (service.EventService, *mocks.EventRepositoryMock, *mocks.BookingRepositoryMock, *mocks.SeatClaimManagerMock) {
	t.Helper()
	eventRepo := mocks.NewEventRepositoryMock()
	bookingRepo := mocks.NewBookingRepositoryMock()
	claims := mocks.NewSeatClaimManagerMock()
	t.Cleanup(func() {
		eventRepo.AssertExpectations(t)
		bookingRepo.AssertExpectations(t)
		claims.AssertExpectations(t)
	})

	if !withClaims {
		return service.NewEventService(eventRepo, bookingRepo, nil, 10, 20), eventRepo, bookingRepo, claims
	}
	return service.NewEventService(eventRepo, bookingRepo, claims, 10, 20), eventRepo, bookingRepo, claims
}

func TestEventService_SeatMap(t *testing.T) {
	ctx := context.Background()
	show := &model.Event{ID: uuid.New(), Title: "Hamlet", Date: "2025-06-01"}

	t.Run("Success - booked and claimed seats are reserved", func(t *testing.T) {
		svc, eventRepo, bookingRepo, claims := setupEventService(t, true)
		eventRepo.On("FindByID", ctx, show.ID).Return(show, nil).Once()
		bookingRepo.On("BookedSeatIDs", ctx, show.ID).Return([]string{"C7", "C8"}, nil).Once()
		claims.On("ClaimedSeats", ctx, show.ID).Return([]string{"C8", "D1"}, nil).Once()

		seatMap, err := svc.SeatMap(ctx, show.ID)
		require.NoError(t, err)
		assert.Equal(t, show, seatMap.Event)
		assert.Equal(t, 200-3, seatMap.Available)

		for _, id := range []string{"C7", "C8", "D1"} {
			seat, ok := seatMap.Grid.Find(id)
			require.True(t, ok)
			assert.True(t, seat.IsReserved(), id)
		}
	})

	t.Run("Success - claims unavailable falls back to database", func(t *testing.T) {
		svc, eventRepo, bookingRepo, claims := setupEventService(t, true)
		eventRepo.On("FindByID", ctx, show.ID).Return(show, nil).Once()
		bookingRepo.On("BookedSeatIDs", ctx, show.ID).Return([]string{"A1"}, nil).Once()
		claims.On("ClaimedSeats", ctx, show.ID).Return(nil, errors.New("connection refused")).Once()

		seatMap, err := svc.SeatMap(ctx, show.ID)
		require.NoError(t, err)
		assert.Equal(t, 199, seatMap.Available)
	})

	t.Run("Failed - ErrEventNotFound", func(t *testing.T) {
		svc, eventRepo, _, _ := setupEventService(t, false)
		eventRepo.On("FindByID", ctx, show.ID).Return(nil, apperrors.ErrEventNotFound).Once()

		_, err := svc.SeatMap(ctx, show.ID)
		assert.ErrorIs(t, err, apperrors.ErrEventNotFound)
	})
}

func TestEventService_Create_DefaultsAvailableSeats(t *testing.T) {
	ctx := context.Background()
	svc, eventRepo, _, _ := setupEventService(t, false)

	eventRepo.On("Create", ctx, mock.MatchedBy(func(e *model.Event) bool {
		return e.AvailableSeats == 200
	})).Return(&model.Event{ID: uuid.New(), AvailableSeats: 200}, nil).Once()

	created, err := svc.Create(ctx, &model.Event{Title: "Hamlet", Date: "2025-06-01"})
	require.NoError(t, err)
	assert.Equal(t, 200, created.AvailableSeats)
}

func TestEventService_OpenForSale(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	t.Run("warms up booked seats", func(t *testing.T) {
		svc, _, bookingRepo, claims := setupEventService(t, true)
		bookingRepo.On("BookedSeatIDs", ctx, id).Return([]string{"B2"}, nil).Once()
		claims.On("WarmUp", ctx, id, []string{"B2"}).Return(nil).Once()

		assert.NoError(t, svc.OpenForSale(ctx, id))
	})

	t.Run("no-op without claims", func(t *testing.T) {
		svc, _, _, _ := setupEventService(t, false)
		assert.NoError(t, svc.OpenForSale(ctx, id))
	})
}
