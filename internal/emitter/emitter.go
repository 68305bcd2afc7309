// Package emitter subscribes to contract logs and publishes each normalized
// interaction to the message queue, fanning publishes out over a worker pool
// so a slow broker does not stall the subscription.
package emitter

import (
	"context"
	"fmt"

	"github.com/alitto/pond/v2"
	"go.uber.org/zap"

	"github.com/dropforge/airdrop-engine/internal/domain"
	"github.com/dropforge/airdrop-engine/internal/feeds"
	"github.com/dropforge/airdrop-engine/internal/logger"
	"github.com/dropforge/airdrop-engine/internal/messaging"
)

// Config holds the configuration for the event emitter
type Config struct {
	StartBlock      uint64
	WorkerPoolSize  int
	WorkerQueueSize int
}

// Emitter defines the interface for the event emitter
//
//go:generate mockgen -source=emitter.go -destination=../mocks/emitter.go -package=mocks -mock_names=Emitter=MockEmitter
type Emitter interface {
	// Run starts the event emitter
	Run(ctx context.Context) error
	// Close closes the emitter and cleans up resources
	Close()
}

type emitter struct {
	feed      feeds.ContractEventFeed
	publisher messaging.Publisher
	config    Config
	pool      pond.Pool
}

// NewEmitter creates a new event emitter
func NewEmitter(feed feeds.ContractEventFeed, pub messaging.Publisher, cfg Config) Emitter {
	return &emitter{
		feed:      feed,
		publisher: pub,
		config:    cfg,
		pool:      pond.NewPool(cfg.WorkerPoolSize, pond.WithQueueSize(cfg.WorkerQueueSize)),
	}
}

// Run starts the event emitter
func (e *emitter) Run(ctx context.Context) error {
	startBlock := e.config.StartBlock
	if startBlock == 0 {
		latestBlock, err := e.feed.GetLatestBlock(ctx)
		if err != nil {
			return fmt.Errorf("failed to get latest block number: %w", err)
		}
		startBlock = latestBlock
		logger.Info("Starting from latest block", zap.Uint64("block", startBlock))
	} else {
		logger.Info("Starting from configured block", zap.Uint64("block", startBlock))
	}

	errCh := make(chan error, 1)

	go func() {
		logger.Info("Starting contract event subscription")

		handler := func(event *domain.ContractEvent) error {
			_, ok := e.pool.TrySubmit(func() {
				if err := e.publisher.PublishContractEvent(ctx, event); err != nil {
					logger.ErrorCtx(ctx, err,
						zap.String("message", "Failed to publish event"),
						zap.String("txHash", event.TxHash))
				}
			})
			if !ok {
				return fmt.Errorf("worker queue full, dropped event %s", event.TxHash)
			}
			return nil
		}

		if err := e.feed.SubscribeEvents(ctx, startBlock, handler); err != nil {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close closes the emitter and cleans up resources
func (e *emitter) Close() {
	e.pool.StopAndWait()
	e.feed.Close()
}
