package jetstream

import (
	"context"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/dropforge/airdrop-engine/internal/adapter"
	"github.com/dropforge/airdrop-engine/internal/messaging"
)

// streamConfig is the shared stream definition for interaction events.
// Publishers and consumers both ensure it so either side can start first.
func streamConfig(name string) jetstream.StreamConfig {
	return jetstream.StreamConfig{
		Name:      name,
		Subjects:  []string{messaging.SubjectWildcard},
		Retention: jetstream.LimitsPolicy,
		Storage:   jetstream.FileStorage,
		MaxAge:    24 * time.Hour,
	}
}

// EnsureStream creates or updates the interaction events stream
func EnsureStream(ctx context.Context, js adapter.JetStream, name string) error {
	return js.CreateStream(ctx, streamConfig(name))
}
