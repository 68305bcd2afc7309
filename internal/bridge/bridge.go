// Package bridge consumes interaction events from JetStream and drives them
// through the airdrop engine.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"

	"github.com/dropforge/airdrop-engine/internal/adapter"
	"github.com/dropforge/airdrop-engine/internal/domain"
	"github.com/dropforge/airdrop-engine/internal/engine"
	"github.com/dropforge/airdrop-engine/internal/logger"
	"github.com/dropforge/airdrop-engine/internal/messaging"
)

// Config holds the configuration for the event bridge
type Config struct {
	URL            string
	StreamName     string
	ConsumerName   string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectionName string
	AckWaitTimeout time.Duration
	MaxDeliver     int
}

// Bridge defines the interface for the event bridge
type Bridge interface {
	// Run starts the event bridge
	Run(ctx context.Context) error
	// Close closes the bridge and cleans up resources
	Close()
}

type bridge struct {
	nc     adapter.NatsConn
	js     adapter.JetStream
	engine *engine.Engine
	json   adapter.JSON
	config Config
}

// NewBridge creates a new event bridge
func NewBridge(
	cfg Config,
	natsJS adapter.NatsJetStream,
	eng *engine.Engine,
	jsonAdapter adapter.JSON,
) (Bridge, error) {
	opts := []nats.Option{
		nats.Name(cfg.ConnectionName),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				logger.Error(err, zap.String("message", "Disconnected from NATS"))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("Reconnected to NATS", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			logger.Info("NATS connection closed")
		}),
	}

	nc, js, err := natsJS.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS and create JetStream: %w", err)
	}

	return &bridge{
		nc:     nc,
		js:     js,
		engine: eng,
		json:   jsonAdapter,
		config: cfg,
	}, nil
}

// Run starts the event bridge
func (b *bridge) Run(ctx context.Context) error {
	logger.Info("Starting event bridge",
		zap.String("stream", b.config.StreamName),
		zap.String("consumer", b.config.ConsumerName))

	consumerConfig := jetstream.ConsumerConfig{
		Durable:       b.config.ConsumerName,
		AckPolicy:     jetstream.AckExplicitPolicy,
		AckWait:       b.config.AckWaitTimeout,
		MaxDeliver:    b.config.MaxDeliver,
		FilterSubject: messaging.SubjectWildcard,
	}

	consumer, err := b.js.CreateOrUpdateConsumer(ctx, b.config.StreamName, consumerConfig)
	if err != nil {
		return fmt.Errorf("failed to create/update consumer: %w", err)
	}

	consumerInfo, err := consumer.Info(ctx)
	if err != nil {
		return fmt.Errorf("failed to get consumer info: %w", err)
	}
	logger.Info("Consumer created/retrieved", zap.String("consumer", consumerInfo.Name))

	msgChan := make(chan adapter.Message, 100)
	sub, err := consumer.Consume(func(msg adapter.Message) {
		msgChan <- msg
	})
	if err != nil {
		return fmt.Errorf("failed to create subscription: %w", err)
	}
	defer sub.Stop()

	logger.Info("Started consuming messages")

	for {
		select {
		case <-ctx.Done():
			logger.Info("Shutting down event bridge")
			return ctx.Err()
		case msg := <-msgChan:
			go b.handleMessage(ctx, msg)
		}
	}
}

// handleMessage processes a single NATS message
func (b *bridge) handleMessage(ctx context.Context, msg adapter.Message) {
	metadata, _ := msg.Metadata()

	result, err := b.dispatch(ctx, msg)
	if err != nil {
		if terminal(err) {
			logger.Error(err, zap.String("message", "Dropping unprocessable event"), zap.String("subject", msg.Subject()))
			if err := msg.Term(); err != nil {
				logger.Error(err, zap.String("message", "Failed to terminate message"))
			}
			return
		}
		logger.Error(err, zap.String("message", "Failed to process event"), zap.String("subject", msg.Subject()))
		if err := msg.Nak(); err != nil {
			logger.Error(err, zap.String("message", "Failed to NAK message"))
		}
		return
	}

	var deliveries uint64
	if metadata != nil {
		deliveries = metadata.NumDelivered
	}
	logger.InfoCtx(ctx, "Event processed",
		zap.String("subject", msg.Subject()),
		zap.Bool("distributed", result.Success),
		zap.String("outcome", result.Message),
		zap.Uint64("deliveryCount", deliveries),
	)

	if err := msg.Ack(); err != nil {
		logger.Error(err, zap.String("message", "Failed to ACK message"))
	}
}

// dispatch routes a message to the engine based on its subject
func (b *bridge) dispatch(ctx context.Context, msg adapter.Message) (*engine.SubmissionResult, error) {
	switch msg.Subject() {
	case messaging.SubjectContract:
		var event domain.ContractEvent
		if err := b.json.Unmarshal(msg.Data(), &event); err != nil {
			return nil, unprocessable(fmt.Errorf("failed to unmarshal contract event: %w", err))
		}
		if !event.Valid() {
			return nil, unprocessable(fmt.Errorf("malformed contract event on %s", msg.Subject()))
		}
		return b.engine.SubmitContractInteraction(ctx, &event)
	case messaging.SubjectSocial:
		var event domain.SocialEvent
		if err := b.json.Unmarshal(msg.Data(), &event); err != nil {
			return nil, unprocessable(fmt.Errorf("failed to unmarshal social event: %w", err))
		}
		event.UserHandle = domain.NormalizeHandle(event.UserHandle)
		event.ClientHandle = domain.NormalizeHandle(event.ClientHandle)
		if !event.Valid() {
			return nil, unprocessable(fmt.Errorf("malformed social event on %s", msg.Subject()))
		}
		return b.engine.SubmitSocialInteraction(ctx, &event)
	default:
		return nil, unprocessable(fmt.Errorf("unknown subject: %s", msg.Subject()))
	}
}

// Close closes the bridge and cleans up resources
func (b *bridge) Close() {
	if b.nc == nil {
		return
	}

	b.nc.Close()
}

type unprocessableError struct{ err error }

func (e *unprocessableError) Error() string { return e.err.Error() }
func (e *unprocessableError) Unwrap() error { return e.err }

func unprocessable(err error) error { return &unprocessableError{err: err} }

// terminal reports whether an error should terminate the message instead of
// requeueing it
func terminal(err error) bool {
	var u *unprocessableError
	return errors.As(err, &u)
}
