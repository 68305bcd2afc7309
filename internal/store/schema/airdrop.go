package schema

import (
	"time"

	"github.com/dropforge/airdrop-engine/internal/domain"
)

// Airdrop represents the airdrops table - a campaign binding a token to a trigger condition.
type Airdrop struct {
	// ID is the internal database primary key
	ID int64 `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	// Name is the campaign name
	Name string `gorm:"column:name;not null;type:text" json:"name"`
	// TokenID references the distributed Token
	TokenID int64 `gorm:"column:token_id;not null;index" json:"token_id"`
	// TriggerType selects the event source(s): contract, x_account or both
	TriggerType domain.TriggerType `gorm:"column:trigger_type;not null;type:text" json:"trigger_type"`
	// ContractAddress is required when the trigger type includes contract
	ContractAddress *string `gorm:"column:contract_address;type:text;index" json:"contract_address,omitempty"`
	// XAccount is the watched X handle, required when the trigger type includes x_account
	XAccount *string `gorm:"column:x_account;type:text;index" json:"x_account,omitempty"`
	// InteractionType filters contract event names ("any" or a specific name)
	InteractionType *string `gorm:"column:interaction_type;type:text" json:"interaction_type,omitempty"`
	// XInteractionConfig is the per-kind toggle set for x_account triggers
	XInteractionConfig *domain.XInteractionConfig `gorm:"column:x_interaction_config;type:jsonb;serializer:json" json:"x_interaction_config,omitempty"`
	// TokenAmount is the fixed reward per qualifying event
	TokenAmount int64 `gorm:"column:token_amount;not null" json:"token_amount"`
	// StartDate is when the campaign begins
	StartDate time.Time `gorm:"column:start_date;not null" json:"start_date"`
	// EndDate is when the campaign ends, nil for open-ended campaigns
	EndDate *time.Time `gorm:"column:end_date" json:"end_date,omitempty"`
	// MaxTokens caps the total distributed amount, nil for uncapped campaigns
	MaxTokens *int64 `gorm:"column:max_tokens" json:"max_tokens,omitempty"`
	// TokensDistributed is the running counter, monotonically non-decreasing
	TokensDistributed int64 `gorm:"column:tokens_distributed;not null;default:0" json:"tokens_distributed"`
	// Active is the admin kill switch
	Active bool `gorm:"column:active;not null;default:true" json:"active"`
	// CreatedAt is when this record was first created
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now()" json:"created_at"`
}

// TableName specifies the table name for the Airdrop model
func (Airdrop) TableName() string {
	return "airdrops"
}

// Live reports whether the airdrop satisfies the liveness invariant at the given time:
// active, started, not ended, and under its distribution cap.
func (a *Airdrop) Live(now time.Time) bool {
	if !a.Active {
		return false
	}
	if now.Before(a.StartDate) {
		return false
	}
	if a.EndDate != nil && now.After(*a.EndDate) {
		return false
	}
	if a.MaxTokens != nil && a.TokensDistributed >= *a.MaxTokens {
		return false
	}
	return true
}

// TokenInfo is the token projection joined onto airdrop listings
type TokenInfo struct {
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

// AirdropWithToken pairs an airdrop with its token's display projection
type AirdropWithToken struct {
	Airdrop
	Token TokenInfo `gorm:"-" json:"token"`
}
