package worker_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"documind/internal/extract"
	"documind/internal/worker"
)

// Mocks

type MockExtractor struct{ mock.Mock }

func (m *MockExtractor) ExtractFile(ctx context.Context, path string) ([]extract.Unit, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]extract.Unit), args.Error(1)
}

type MockEmbedder struct{ mock.Mock }

func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

func (m *MockEmbedder) Verify(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type MockStore struct{ mock.Mock }

func (m *MockStore) ResolveCollection(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *MockStore) Append(ctx context.Context, userID string, chunk worker.Chunk) error {
	return m.Called(ctx, userID, chunk).Error(0)
}
