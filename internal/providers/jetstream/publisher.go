// Package jetstream provides the NATS JetStream implementation of the
// messaging interfaces.
package jetstream

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/dropforge/airdrop-engine/internal/adapter"
	"github.com/dropforge/airdrop-engine/internal/domain"
	"github.com/dropforge/airdrop-engine/internal/logger"
	"github.com/dropforge/airdrop-engine/internal/messaging"
)

// Config holds the configuration for a NATS JetStream connection
type Config struct {
	URL            string
	StreamName     string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectionName string
}

type publisher struct {
	nc         adapter.NatsConn
	js         adapter.JetStream
	streamName string
	json       adapter.JSON
}

// NewPublisher creates a NATS JetStream publisher and ensures the stream
// backing the interaction subjects exists
func NewPublisher(ctx context.Context, cfg Config, natsJS adapter.NatsJetStream, jsonAdapter adapter.JSON) (messaging.Publisher, error) {
	nc, js, err := connect(cfg, natsJS)
	if err != nil {
		return nil, err
	}

	if err := js.CreateStream(ctx, streamConfig(cfg.StreamName)); err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create stream %s: %w", cfg.StreamName, err)
	}

	return &publisher{
		nc:         nc,
		js:         js,
		streamName: cfg.StreamName,
		json:       jsonAdapter,
	}, nil
}

func connect(cfg Config, natsJS adapter.NatsJetStream) (adapter.NatsConn, adapter.JetStream, error) {
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
		return nil, nil, fmt.Errorf("failed to connect to NATS and create JetStream: %w", err)
	}
	return nc, js, nil
}

// PublishContractEvent publishes a contract interaction to NATS JetStream.
// The transaction hash and event name form the deduplication id, so a
// restarted emitter re-observing the same log does not double-publish.
func (p *publisher) PublishContractEvent(ctx context.Context, event *domain.ContractEvent) error {
	logger.Debug("Publishing contract event", zap.Any("event", event))
	msgID := fmt.Sprintf("%s:%s", event.TxHash, event.EventName)
	if event.TxHash == "" {
		msgID = freshMsgID()
	}
	return p.publish(ctx, messaging.SubjectContract, event, msgID)
}

// PublishSocialEvent publishes an X account interaction to NATS JetStream.
// The post id and user handle form the deduplication id.
func (p *publisher) PublishSocialEvent(ctx context.Context, event *domain.SocialEvent) error {
	logger.Debug("Publishing social event", zap.Any("event", event))
	msgID := fmt.Sprintf("%s:%s", event.PostID, event.UserHandle)
	if event.PostID == "" {
		msgID = freshMsgID()
	}
	return p.publish(ctx, messaging.SubjectSocial, event, msgID)
}

func (p *publisher) publish(ctx context.Context, subject string, event any, msgID string) error {
	data, err := p.json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if _, err := p.js.Publish(ctx, subject, data, jetstream.WithMsgID(msgID)); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// freshMsgID covers events without a natural deduplication key
func freshMsgID() string {
	return ulid.MustNewDefault(time.Now()).String()
}

// Close closes the NATS connection
func (p *publisher) Close() {
	if p.nc == nil {
		return
	}

	p.nc.Close()
}
