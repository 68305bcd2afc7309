package schema

import (
	"time"

	"github.com/dropforge/airdrop-engine/internal/domain"
)

// Activity represents the activities table - an immutable audit record of one
// resolved eligible event. Failures produce a failed row rather than a retried
// mutation, so the full history is preserved.
type Activity struct {
	// ID is the internal database primary key
	ID int64 `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	// UserID references the rewarded (or attempted) user
	UserID int64 `gorm:"column:user_id;not null;index" json:"user_id"`
	// AirdropID references the matched airdrop
	AirdropID int64 `gorm:"column:airdrop_id;not null;index" json:"airdrop_id"`
	// EventType is the channel: contract_interaction or x_account_interaction
	EventType domain.EventType `gorm:"column:event_type;not null;type:text;index" json:"event_type"`
	// EventSubtype is the specific interaction, e.g. deposit or like
	EventSubtype string `gorm:"column:event_subtype;type:text" json:"event_subtype"`
	// TokensRewarded is the fixed amount attached to the attempt
	TokensRewarded int64 `gorm:"column:tokens_rewarded;not null" json:"tokens_rewarded"`
	// Status is the terminal outcome: completed, processing or failed
	Status domain.ActivityStatus `gorm:"column:status;not null;type:text" json:"status"`
	// TxHash is the settlement reference from the ledger, nil when distribution never settled
	TxHash *string `gorm:"column:transaction_hash;type:text" json:"transaction_hash,omitempty"`
	// Timestamp is when the attempt resolved
	Timestamp time.Time `gorm:"column:timestamp;not null;default:now();index" json:"timestamp"`
}

// TableName specifies the table name for the Activity model
func (Activity) TableName() string {
	return "activities"
}

// UserInfo is the user projection joined onto activity listings
type UserInfo struct {
	Username      string `json:"username"`
	WalletAddress string `json:"wallet_address"`
}

// ActivityWithUser pairs an activity with its user's display projection
type ActivityWithUser struct {
	Activity
	User UserInfo `gorm:"-" json:"user"`
}

// DashboardStats aggregates the audit trail for the dashboard
type DashboardStats struct {
	TotalTokensDistributed int64              `json:"total_tokens_distributed"`
	TotalUsersReached      int64              `json:"total_users_reached"`
	ContractInteractions   int64              `json:"contract_interactions"`
	XAccountInteractions   int64              `json:"x_account_interactions"`
	RecentActivity         []ActivityWithUser `json:"recent_activity"`
}
