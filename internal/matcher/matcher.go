// Package matcher selects the airdrop campaign that an observed interaction
// qualifies against. Selection is deterministic: among all candidate
// campaigns the one paying the highest reward wins, with the lowest id
// breaking ties.
package matcher

import (
	"strings"

	"github.com/dropforge/airdrop-engine/internal/domain"
	"github.com/dropforge/airdrop-engine/internal/store/schema"
)

// MatchContractEvent returns the campaign a contract event qualifies for,
// or nil when no campaign matches. Candidates are expected to be live.
func MatchContractEvent(event *domain.ContractEvent, candidates []schema.AirdropWithToken) *schema.AirdropWithToken {
	var best *schema.AirdropWithToken
	for i := range candidates {
		a := &candidates[i]
		if !a.TriggerType.IncludesContract() {
			continue
		}
		if a.ContractAddress == nil || !strings.EqualFold(*a.ContractAddress, event.ContractAddress) {
			continue
		}
		if !interactionTypeMatches(a.InteractionType, event.EventName) {
			continue
		}
		best = better(best, a)
	}
	return best
}

// MatchSocialEvent returns the campaign a social event qualifies for,
// or nil when no campaign matches. Candidates are expected to be live.
func MatchSocialEvent(event *domain.SocialEvent, candidates []schema.AirdropWithToken) *schema.AirdropWithToken {
	var best *schema.AirdropWithToken
	for i := range candidates {
		a := &candidates[i]
		if !a.TriggerType.IncludesXAccount() {
			continue
		}
		if a.XAccount == nil || !handleMatches(*a.XAccount, event.ClientHandle) {
			continue
		}
		if a.XInteractionConfig != nil && !a.XInteractionConfig.Allows(event.Interaction) {
			continue
		}
		best = better(best, a)
	}
	return best
}

// better keeps the candidate paying the highest reward; the lowest id wins a
// tie
func better(current, candidate *schema.AirdropWithToken) *schema.AirdropWithToken {
	if current == nil {
		return candidate
	}
	if candidate.TokenAmount > current.TokenAmount {
		return candidate
	}
	if candidate.TokenAmount == current.TokenAmount && candidate.ID < current.ID {
		return candidate
	}
	return current
}

func interactionTypeMatches(configured *string, eventName string) bool {
	if configured == nil || *configured == "" || *configured == domain.InteractionTypeAny {
		return true
	}
	return strings.EqualFold(*configured, eventName)
}

func handleMatches(configured, observed string) bool {
	return strings.EqualFold(domain.NormalizeHandle(configured), domain.NormalizeHandle(observed))
}
