// Package feeds produces normalized interaction events from the outside
// world: contract logs from an Ethereum node and social interactions from
// the X API.
package feeds

import (
	"context"

	"github.com/dropforge/airdrop-engine/internal/domain"
)

// ContractEventHandler is called for each normalized contract interaction
type ContractEventHandler func(event *domain.ContractEvent) error

// ContractEventFeed watches a chain and emits contract interactions
//
//go:generate mockgen -source=feeds.go -destination=../mocks/feeds.go -package=mocks -mock_names=ContractEventFeed=MockContractEventFeed,SocialEventFeed=MockSocialEventFeed
type ContractEventFeed interface {
	// SubscribeEvents subscribes to contract logs starting at fromBlock
	// (0 for latest) and invokes handler for each normalized event. It
	// blocks until the context is cancelled or the subscription fails.
	SubscribeEvents(ctx context.Context, fromBlock uint64, handler ContractEventHandler) error

	// GetLatestBlock returns the latest block number
	GetLatestBlock(ctx context.Context) (uint64, error)

	// Close closes the connection and cleans up resources
	Close()
}

// SocialEventFeed polls X for interactions with a watched account
type SocialEventFeed interface {
	// FetchInteractions returns interactions with the account that occurred
	// after the given cursor, plus the new cursor to resume from
	FetchInteractions(ctx context.Context, account string, cursor string) ([]domain.SocialEvent, string, error)
}
