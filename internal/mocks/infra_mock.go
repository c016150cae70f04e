package mocks

import (
	"context"

	"stagesight/internal/model"
	"stagesight/internal/queue"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type ObjectStorageMock struct {
	mock.Mock
}

func NewObjectStorageMock() *ObjectStorageMock {
	return &ObjectStorageMock{}
}

func (m *ObjectStorageMock) Upload(ctx context.Context, objectPath string, data []byte, contentType string) (string, error) {
	args := m.Called(ctx, objectPath, data, contentType)
	return args.String(0), args.Error(1)
}

func (m *ObjectStorageMock) PublicURL(storedPath string) string {
	args := m.Called(storedPath)
	return args.String(0)
}

func (m *ObjectStorageMock) Delete(ctx context.Context, storedPath string) error {
	args := m.Called(ctx, storedPath)
	return args.Error(0)
}

type SeatClaimManagerMock struct {
	mock.Mock
}

func NewSeatClaimManagerMock() *SeatClaimManagerMock {
	return &SeatClaimManagerMock{}
}

func (m *SeatClaimManagerMock) WarmUp(ctx context.Context, showID uuid.UUID, seatIDs []string) error {
	args := m.Called(ctx, showID, seatIDs)
	return args.Error(0)
}

func (m *SeatClaimManagerMock) Claim(ctx context.Context, showID uuid.UUID, seatIDs []string) error {
	args := m.Called(ctx, showID, seatIDs)
	return args.Error(0)
}

func (m *SeatClaimManagerMock) Release(ctx context.Context, showID uuid.UUID, seatIDs []string) error {
	args := m.Called(ctx, showID, seatIDs)
	return args.Error(0)
}

func (m *SeatClaimManagerMock) ClaimedSeats(ctx context.Context, showID uuid.UUID) ([]string, error) {
	args := m.Called(ctx, showID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type CleanupQueueMock struct {
	mock.Mock
}

func NewCleanupQueueMock() *CleanupQueueMock {
	return &CleanupQueueMock{}
}

func (m *CleanupQueueMock) Publish(ctx context.Context, job *model.ProofCleanupJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *CleanupQueueMock) Subscribe(ctx context.Context) (<-chan queue.Delivery, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(<-chan queue.Delivery), args.Error(1)
}
