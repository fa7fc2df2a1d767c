package event

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dyehouse/backend/internal/domain/shared"
	"github.com/dyehouse/backend/internal/infrastructure/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) Release(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *MockIdempotencyStore) Close() error {
	return m.Called().Error(0)
}

func newMemoryStore(t *testing.T) *cache.InMemoryIdempotencyStore {
	t.Helper()
	store := cache.NewInMemoryIdempotencyStore(0)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestIdempotentHandler_DeliversOnce(t *testing.T) {
	ctx := context.Background()
	inner := &recordingHandler{types: []string{typeRecorded}}
	h := NewIdempotentHandler(inner, newMemoryStore(t), nil)
	event := newTestEvent(typeRecorded)

	require.NoError(t, h.Handle(ctx, event))
	require.NoError(t, h.Handle(ctx, event))
	require.NoError(t, h.Handle(ctx, newTestEvent(typeRecorded)))

	assert.Equal(t, 2, inner.count())
	assert.Equal(t, IdempotencyStats{Processed: 2, Duplicates: 1}, h.Stats())
	assert.Equal(t, []string{typeRecorded}, h.EventTypes())
	assert.Same(t, inner, h.Unwrap())
}

func TestIdempotentHandler_FailureAllowsRetry(t *testing.T) {
	ctx := context.Background()
	inner := &recordingHandler{err: errors.New("invoice not found")}
	h := NewIdempotentHandler(inner, newMemoryStore(t), nil)
	event := newTestEvent(typeRecorded)

	require.Error(t, h.Handle(ctx, event))

	inner.err = nil
	require.NoError(t, h.Handle(ctx, event))
	assert.Equal(t, 2, inner.count())
	assert.Equal(t, IdempotencyStats{Processed: 1, Failed: 1}, h.Stats())
}

func TestIdempotentHandler_StoreErrorStillProcesses(t *testing.T) {
	ctx := context.Background()
	store := new(MockIdempotencyStore)
	event := newTestEvent(typeCancelled)
	store.On("MarkProcessed", ctx, "event:"+event.EventID().String(), 2*time.Hour).
		Return(false, errors.New("redis down"))

	inner := &recordingHandler{}
	h := NewIdempotentHandler(inner, store, nil,
		WithIdempotencyConfig(shared.IdempotencyConfig{TTL: 2 * time.Hour, Enabled: true}))

	require.NoError(t, h.Handle(ctx, event))
	assert.Equal(t, 1, inner.count())
	store.AssertExpectations(t)
}

func TestIdempotentHandler_Disabled(t *testing.T) {
	ctx := context.Background()
	store := new(MockIdempotencyStore)
	inner := &recordingHandler{}
	h := NewIdempotentHandler(inner, store, nil, WithIdempotencyConfig(shared.IdempotencyConfig{}))
	event := newTestEvent(typeRecorded)

	require.NoError(t, h.Handle(ctx, event))
	require.NoError(t, h.Handle(ctx, event))

	assert.Equal(t, 2, inner.count())
	store.AssertNotCalled(t, "MarkProcessed", mock.Anything, mock.Anything, mock.Anything)
}

func TestIdempotentHandler_OnBus(t *testing.T) {
	ctx := context.Background()
	bus := NewInMemoryEventBus(nil)
	inner := &recordingHandler{types: []string{typeRecorded}}
	bus.Subscribe(NewIdempotentHandler(inner, newMemoryStore(t), nil))

	event := newTestEvent(typeRecorded)
	require.NoError(t, bus.Publish(ctx, event, event))
	assert.Equal(t, 1, inner.count())
}
