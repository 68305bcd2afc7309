// Package oracle evaluates airdrop eligibility by asking an LLM whether an
// observed interaction qualifies for a configured campaign. Evaluation is
// fail-closed: any transport or parsing failure yields an ineligible verdict.
package oracle

import (
	"context"

	"github.com/dropforge/airdrop-engine/internal/domain"
	"github.com/dropforge/airdrop-engine/internal/store/schema"
)

//go:generate mockgen -source=oracle.go -destination=../mocks/oracle_mock.go -package=mocks

// Verdict is the outcome of an eligibility evaluation
type Verdict struct {
	Eligible  bool
	Reasoning string
}

// Oracle decides whether an interaction qualifies for an airdrop campaign
type Oracle interface {
	// EvaluateContractInteraction judges a contract event against an airdrop
	EvaluateContractInteraction(ctx context.Context, event *domain.ContractEvent, airdrop *schema.AirdropWithToken) (*Verdict, error)

	// EvaluateXInteraction judges a social event against an airdrop
	EvaluateXInteraction(ctx context.Context, event *domain.SocialEvent, airdrop *schema.AirdropWithToken) (*Verdict, error)
}
