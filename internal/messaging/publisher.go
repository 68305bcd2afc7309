package messaging

import (
	"context"

	"github.com/dropforge/airdrop-engine/internal/domain"
)

// Publisher defines the interface for publishing interaction events to the
// message queue
//
//go:generate mockgen -source=publisher.go -destination=../mocks/publisher.go -package=mocks -mock_names=Publisher=MockPublisher
type Publisher interface {
	// PublishContractEvent publishes a contract interaction to the broker
	PublishContractEvent(ctx context.Context, event *domain.ContractEvent) error
	// PublishSocialEvent publishes an X account interaction to the broker
	PublishSocialEvent(ctx context.Context, event *domain.SocialEvent) error
	// Close closes the connection
	Close()
}
