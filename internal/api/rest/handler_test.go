package rest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropforge/airdrop-engine/internal/domain"
)

func validXAccountRequest() *createAirdropRequest {
	account := "@dropforge"
	return &createAirdropRequest{
		Name:               "social-drop",
		TokenID:            1,
		TriggerType:        domain.TriggerXAccount,
		XAccount:           &account,
		XInteractionConfig: &domain.XInteractionConfig{Retweet: true},
		TokenAmount:        10,
	}
}

func TestCreateAirdropRequestValidate(t *testing.T) {
	t.Run("valid x_account request", func(t *testing.T) {
		require.NoError(t, validXAccountRequest().validate())
	})

	t.Run("x_account requires interaction config", func(t *testing.T) {
		req := validXAccountRequest()
		req.XInteractionConfig = nil
		err := req.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "x_interaction_config")
	})

	t.Run("both trigger requires interaction config", func(t *testing.T) {
		req := validXAccountRequest()
		contract := "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"
		req.TriggerType = domain.TriggerBoth
		req.ContractAddress = &contract
		req.XInteractionConfig = nil
		assert.Error(t, req.validate())
	})

	t.Run("contract trigger needs no interaction config", func(t *testing.T) {
		contract := "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"
		req := &createAirdropRequest{
			Name:            "contract-drop",
			TokenID:         1,
			TriggerType:     domain.TriggerContract,
			ContractAddress: &contract,
			TokenAmount:     10,
		}
		assert.NoError(t, req.validate())
	})

	t.Run("x_account handle is normalized", func(t *testing.T) {
		req := validXAccountRequest()
		bare := "DropForge"
		req.XAccount = &bare
		require.NoError(t, req.validate())
		assert.Equal(t, "@DropForge", *req.XAccount)
	})

	t.Run("invalid trigger type", func(t *testing.T) {
		req := validXAccountRequest()
		req.TriggerType = domain.TriggerType("telegram")
		assert.Error(t, req.validate())
	})
}
