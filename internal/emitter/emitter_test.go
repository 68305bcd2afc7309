package emitter_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropforge/airdrop-engine/internal/domain"
	"github.com/dropforge/airdrop-engine/internal/emitter"
	"github.com/dropforge/airdrop-engine/internal/feeds"
	"github.com/dropforge/airdrop-engine/internal/logger"
	"github.com/dropforge/airdrop-engine/internal/mocks"
)

func TestMain(m *testing.M) {
	// Initialize logger for tests
	err := logger.Initialize(logger.Config{
		Debug: false,
	})
	if err != nil {
		panic(err)
	}

	code := m.Run()
	os.Exit(code)
}

// testEmitterMocks contains all the mocks needed for testing the emitter
type testEmitterMocks struct {
	ctrl      *gomock.Controller
	feed      *mocks.MockContractEventFeed
	publisher *mocks.MockPublisher
}

func setupTestEmitter(t *testing.T, cfg emitter.Config) (*testEmitterMocks, emitter.Emitter) {
	ctrl := gomock.NewController(t)

	tm := &testEmitterMocks{
		ctrl:      ctrl,
		feed:      mocks.NewMockContractEventFeed(ctrl),
		publisher: mocks.NewMockPublisher(ctrl),
	}
	if cfg.WorkerPoolSize == 0 {
		cfg.WorkerPoolSize = 4
	}
	if cfg.WorkerQueueSize == 0 {
		cfg.WorkerQueueSize = 16
	}
	return tm, emitter.NewEmitter(tm.feed, tm.publisher, cfg)
}

func testEvent() *domain.ContractEvent {
	return &domain.ContractEvent{
		ContractAddress: "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed",
		UserAddress:     "0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359",
		EventName:       "Transfer",
		TxHash:          "0xabc",
		BlockNumber:     1001,
		Timestamp:       time.Now(),
	}
}

func TestRunWithConfiguredStartBlock(t *testing.T) {
	tm, e := setupTestEmitter(t, emitter.Config{StartBlock: 1000})

	ctx, cancel := context.WithCancel(context.Background())
	published := make(chan struct{})

	tm.feed.EXPECT().
		SubscribeEvents(gomock.Any(), uint64(1000), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fromBlock uint64, handler feeds.ContractEventHandler) error {
			require.NoError(t, handler(testEvent()))
			<-ctx.Done()
			return nil
		})
	tm.publisher.EXPECT().
		PublishContractEvent(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, event *domain.ContractEvent) error {
			assert.Equal(t, "0xabc", event.TxHash)
			close(published)
			return nil
		})

	done := make(chan error, 1)
	go func() { done <- e.Run(ctx) }()

	select {
	case <-published:
	case <-time.After(time.Second):
		t.Fatal("event was never published")
	}

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestRunStartsFromLatestBlock(t *testing.T) {
	tm, e := setupTestEmitter(t, emitter.Config{StartBlock: 0})

	ctx, cancel := context.WithCancel(context.Background())
	subscribed := make(chan struct{})

	tm.feed.EXPECT().GetLatestBlock(gomock.Any()).Return(uint64(1234), nil)
	tm.feed.EXPECT().
		SubscribeEvents(gomock.Any(), uint64(1234), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fromBlock uint64, handler feeds.ContractEventHandler) error {
			close(subscribed)
			<-ctx.Done()
			return nil
		})

	done := make(chan error, 1)
	go func() { done <- e.Run(ctx) }()

	select {
	case <-subscribed:
	case <-time.After(time.Second):
		t.Fatal("subscription never started")
	}

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestRunFailsWhenLatestBlockUnavailable(t *testing.T) {
	tm, e := setupTestEmitter(t, emitter.Config{StartBlock: 0})

	tm.feed.EXPECT().GetLatestBlock(gomock.Any()).Return(uint64(0), errors.New("rpc unavailable"))

	err := e.Run(context.Background())
	assert.ErrorContains(t, err, "latest block")
}

func TestRunPropagatesSubscriptionError(t *testing.T) {
	tm, e := setupTestEmitter(t, emitter.Config{StartBlock: 1000})

	tm.feed.EXPECT().
		SubscribeEvents(gomock.Any(), uint64(1000), gomock.Any()).
		Return(domain.ErrSubscriptionFailed)

	err := e.Run(context.Background())
	assert.ErrorIs(t, err, domain.ErrSubscriptionFailed)
}

func TestClose(t *testing.T) {
	tm, e := setupTestEmitter(t, emitter.Config{StartBlock: 1000})

	tm.feed.EXPECT().Close()
	e.Close()
}
