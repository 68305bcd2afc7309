package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropforge/airdrop-engine/internal/domain"
	"github.com/dropforge/airdrop-engine/internal/store/schema"
)

const (
	watchedContract = "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"
	otherContract   = "0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359"
)

func strPtr(s string) *string { return &s }

func contractAirdrop(id int64, address, interactionType string, amount int64) schema.AirdropWithToken {
	a := schema.AirdropWithToken{}
	a.ID = id
	a.Name = "contract-drop"
	a.TriggerType = domain.TriggerContract
	a.ContractAddress = strPtr(address)
	a.TokenAmount = amount
	if interactionType != "" {
		a.InteractionType = strPtr(interactionType)
	}
	return a
}

func socialAirdrop(id int64, account string, cfg *domain.XInteractionConfig, amount int64) schema.AirdropWithToken {
	a := schema.AirdropWithToken{}
	a.ID = id
	a.Name = "social-drop"
	a.TriggerType = domain.TriggerXAccount
	a.XAccount = strPtr(account)
	a.XInteractionConfig = cfg
	a.TokenAmount = amount
	return a
}

func TestMatchContractEvent(t *testing.T) {
	event := &domain.ContractEvent{
		ContractAddress: watchedContract,
		UserAddress:     otherContract,
		EventName:       "Transfer",
	}

	t.Run("matches by address and event name", func(t *testing.T) {
		candidates := []schema.AirdropWithToken{
			contractAirdrop(1, watchedContract, "Transfer", 10),
		}
		got := MatchContractEvent(event, candidates)
		require.NotNil(t, got)
		assert.Equal(t, int64(1), got.ID)
	})

	t.Run("address comparison is case-insensitive", func(t *testing.T) {
		candidates := []schema.AirdropWithToken{
			contractAirdrop(1, "0x5AAEB6053F3E94C9B9A09F33669435E7EF1BEAED", "Transfer", 10),
		}
		assert.NotNil(t, MatchContractEvent(event, candidates))
	})

	t.Run("interaction type any matches every event name", func(t *testing.T) {
		candidates := []schema.AirdropWithToken{
			contractAirdrop(1, watchedContract, domain.InteractionTypeAny, 10),
		}
		assert.NotNil(t, MatchContractEvent(event, candidates))
	})

	t.Run("unset interaction type matches every event name", func(t *testing.T) {
		candidates := []schema.AirdropWithToken{
			contractAirdrop(1, watchedContract, "", 10),
		}
		assert.NotNil(t, MatchContractEvent(event, candidates))
	})

	t.Run("different event name does not match", func(t *testing.T) {
		candidates := []schema.AirdropWithToken{
			contractAirdrop(1, watchedContract, "Approval", 10),
		}
		assert.Nil(t, MatchContractEvent(event, candidates))
	})

	t.Run("different contract does not match", func(t *testing.T) {
		candidates := []schema.AirdropWithToken{
			contractAirdrop(1, otherContract, "Transfer", 10),
		}
		assert.Nil(t, MatchContractEvent(event, candidates))
	})

	t.Run("x_account trigger is skipped", func(t *testing.T) {
		a := contractAirdrop(1, watchedContract, "Transfer", 10)
		a.TriggerType = domain.TriggerXAccount
		assert.Nil(t, MatchContractEvent(event, []schema.AirdropWithToken{a}))
	})

	t.Run("both trigger matches contract events", func(t *testing.T) {
		a := contractAirdrop(1, watchedContract, "Transfer", 10)
		a.TriggerType = domain.TriggerBoth
		assert.NotNil(t, MatchContractEvent(event, []schema.AirdropWithToken{a}))
	})

	t.Run("highest reward wins", func(t *testing.T) {
		candidates := []schema.AirdropWithToken{
			contractAirdrop(1, watchedContract, "Transfer", 10),
			contractAirdrop(2, watchedContract, "Transfer", 50),
		}
		got := MatchContractEvent(event, candidates)
		require.NotNil(t, got)
		assert.Equal(t, int64(2), got.ID)
	})

	t.Run("lowest id breaks reward ties", func(t *testing.T) {
		candidates := []schema.AirdropWithToken{
			contractAirdrop(7, watchedContract, "Transfer", 10),
			contractAirdrop(3, watchedContract, "Transfer", 10),
		}
		got := MatchContractEvent(event, candidates)
		require.NotNil(t, got)
		assert.Equal(t, int64(3), got.ID)
	})

	t.Run("no candidates", func(t *testing.T) {
		assert.Nil(t, MatchContractEvent(event, nil))
	})
}

func TestMatchSocialEvent(t *testing.T) {
	event := &domain.SocialEvent{
		UserHandle:   "@alice",
		ClientHandle: "@dropforge",
		Interaction:  domain.InteractionRetweet,
	}

	t.Run("matches by account", func(t *testing.T) {
		candidates := []schema.AirdropWithToken{
			socialAirdrop(1, "@dropforge", nil, 10),
		}
		got := MatchSocialEvent(event, candidates)
		require.NotNil(t, got)
		assert.Equal(t, int64(1), got.ID)
	})

	t.Run("account comparison normalizes the @ prefix and case", func(t *testing.T) {
		candidates := []schema.AirdropWithToken{
			socialAirdrop(1, "DropForge", nil, 10),
		}
		assert.NotNil(t, MatchSocialEvent(event, candidates))
	})

	t.Run("nil interaction config allows every kind", func(t *testing.T) {
		candidates := []schema.AirdropWithToken{
			socialAirdrop(1, "@dropforge", nil, 10),
		}
		assert.NotNil(t, MatchSocialEvent(event, candidates))
	})

	t.Run("config gates the interaction kind", func(t *testing.T) {
		enabled := socialAirdrop(1, "@dropforge", &domain.XInteractionConfig{Retweet: true}, 10)
		disabled := socialAirdrop(2, "@dropforge", &domain.XInteractionConfig{Like: true}, 10)

		got := MatchSocialEvent(event, []schema.AirdropWithToken{enabled})
		require.NotNil(t, got)
		assert.Equal(t, int64(1), got.ID)

		assert.Nil(t, MatchSocialEvent(event, []schema.AirdropWithToken{disabled}))
	})

	t.Run("different account does not match", func(t *testing.T) {
		candidates := []schema.AirdropWithToken{
			socialAirdrop(1, "@someoneelse", nil, 10),
		}
		assert.Nil(t, MatchSocialEvent(event, candidates))
	})

	t.Run("contract trigger is skipped", func(t *testing.T) {
		a := socialAirdrop(1, "@dropforge", nil, 10)
		a.TriggerType = domain.TriggerContract
		assert.Nil(t, MatchSocialEvent(event, []schema.AirdropWithToken{a}))
	})

	t.Run("highest reward wins with lowest id tie-break", func(t *testing.T) {
		candidates := []schema.AirdropWithToken{
			socialAirdrop(5, "@dropforge", nil, 20),
			socialAirdrop(2, "@dropforge", nil, 20),
			socialAirdrop(1, "@dropforge", nil, 10),
		}
		got := MatchSocialEvent(event, candidates)
		require.NotNil(t, got)
		assert.Equal(t, int64(2), got.ID)
	})
}
