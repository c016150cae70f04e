package mocks

import (
	"context"
	"io"

	"stagesight/internal/checkout"
	"stagesight/internal/model"
	"stagesight/internal/seating"
	"stagesight/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type EventServiceMock struct {
	mock.Mock
}

func NewEventServiceMock() *EventServiceMock {
	return &EventServiceMock{}
}

func (m *EventServiceMock) List(ctx context.Context) ([]*model.Event, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Event), args.Error(1)
}

func (m *EventServiceMock) GetByID(ctx context.Context, id uuid.UUID) (*model.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Event), args.Error(1)
}

func (m *EventServiceMock) Create(ctx context.Context, event *model.Event) (*model.Event, error) {
	args := m.Called(ctx, event)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Event), args.Error(1)
}

func (m *EventServiceMock) Update(ctx context.Context, id uuid.UUID, params model.UpdateEventParams) (*model.Event, error) {
	args := m.Called(ctx, id, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Event), args.Error(1)
}

func (m *EventServiceMock) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *EventServiceMock) SeatMap(ctx context.Context, id uuid.UUID) (*service.SeatMap, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SeatMap), args.Error(1)
}

func (m *EventServiceMock) ReservedSeats(ctx context.Context, id uuid.UUID) (map[string]struct{}, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]struct{}), args.Error(1)
}

func (m *EventServiceMock) OpenForSale(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type CheckoutServiceMock struct {
	mock.Mock
}

func NewCheckoutServiceMock() *CheckoutServiceMock {
	return &CheckoutServiceMock{}
}

func (m *CheckoutServiceMock) Start(ctx context.Context, showID uuid.UUID, user *model.AuthUser) (*checkout.Session, error) {
	args := m.Called(ctx, showID, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*checkout.Session), args.Error(1)
}

func (m *CheckoutServiceMock) Get(ctx context.Context, id string) (*checkout.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*checkout.Session), args.Error(1)
}

func (m *CheckoutServiceMock) ToggleSeat(ctx context.Context, id, seatID string) (*checkout.Session, seating.ToggleResult, error) {
	args := m.Called(ctx, id, seatID)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*checkout.Session), args.Get(1).(seating.ToggleResult), args.Error(2)
}

func (m *CheckoutServiceMock) UpdateCustomer(ctx context.Context, id string, form checkout.CustomerForm) (*checkout.Session, error) {
	args := m.Called(ctx, id, form)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*checkout.Session), args.Error(1)
}

func (m *CheckoutServiceMock) AttachProof(ctx context.Context, id, fileName string, data []byte) (*checkout.Session, error) {
	args := m.Called(ctx, id, fileName, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*checkout.Session), args.Error(1)
}

func (m *CheckoutServiceMock) Submit(ctx context.Context, id string) (*checkout.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*checkout.Session), args.Error(1)
}

func (m *CheckoutServiceMock) Ticket(ctx context.Context, id string, w io.Writer) (string, error) {
	args := m.Called(ctx, id, w)
	if args.Error(1) == nil {
		_, _ = w.Write([]byte("%PDF-1.3 mock"))
	}
	return args.String(0), args.Error(1)
}

func (m *CheckoutServiceMock) Cancel(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type BookingServiceMock struct {
	mock.Mock
}

func NewBookingServiceMock() *BookingServiceMock {
	return &BookingServiceMock{}
}

func (m *BookingServiceMock) List(ctx context.Context) ([]*model.Booking, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Booking), args.Error(1)
}

func (m *BookingServiceMock) GetByID(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Booking), args.Error(1)
}

func (m *BookingServiceMock) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *BookingServiceMock) ExportCSV(ctx context.Context, w io.Writer) error {
	args := m.Called(ctx, w)
	if args.Error(0) == nil {
		_, _ = w.Write([]byte("Customer Name,Email,Event,Date,Seats,Amount,Payment Reference,Booking Date\n"))
	}
	return args.Error(0)
}

func (m *BookingServiceMock) Ticket(ctx context.Context, id uuid.UUID, w io.Writer) (*model.Booking, error) {
	args := m.Called(ctx, id, w)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	_, _ = w.Write([]byte("%PDF-1.3 mock"))
	return args.Get(0).(*model.Booking), args.Error(1)
}
