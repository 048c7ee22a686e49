package service

import (
	"context"
	"time"

	"wmgateway/internal/models"
	"wmgateway/pkg/capi"

	"github.com/stretchr/testify/mock"
)

type mockSignalStore struct {
	mock.Mock
}

func (m *mockSignalStore) SaveSignal(ctx context.Context, signal *models.Signal) error {
	args := m.Called(ctx, signal)
	return args.Error(0)
}

func (m *mockSignalStore) ListSignalsByBusinessAndConsumer(ctx context.Context, businessID, consumerID string) ([]models.Signal, error) {
	args := m.Called(ctx, businessID, consumerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Signal), args.Error(1)
}

type mockKeywordStore struct {
	mock.Mock
}

func (m *mockKeywordStore) ListKeywordRules(ctx context.Context) ([]models.KeywordRule, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.KeywordRule), args.Error(1)
}

type mockDispatcher struct {
	mock.Mock
}

func (m *mockDispatcher) Dispatch(ctx context.Context, businessID, consumerID string, messageTimestamp time.Time, rule models.KeywordRule) error {
	args := m.Called(ctx, businessID, consumerID, messageTimestamp, rule)
	return args.Error(0)
}

type mockCapiClient struct {
	mock.Mock
}

func (m *mockCapiClient) SendEvent(ctx context.Context, event capi.Event) (*capi.EventResponse, error) {
	args := m.Called(ctx, event)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*capi.EventResponse), args.Error(1)
}
