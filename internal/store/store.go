package store

import (
	"context"
	"time"

	"github.com/dropforge/airdrop-engine/internal/store/schema"
)

// UserUpdate carries the mutable User fields. A user is only ever mutated to
// attach a missing wallet address or X handle.
type UserUpdate struct {
	WalletAddress *string
	XHandle       *string
}

// TokenUpdate carries the mutable Token fields, supplied by the external ledger
type TokenUpdate struct {
	LedgerTokenID   *string
	ContractAddress *string
}

// AirdropUpdate carries the admin-mutable Airdrop fields
type AirdropUpdate struct {
	Active      *bool
	TokenAmount *int64
	EndDate     *time.Time
	MaxTokens   *int64
}

// Store defines the interface for entity persistence. Lookups return (nil, nil)
// when the entity does not exist so callers branch on presence; duplicate unique
// fields fail with domain.ErrConstraintViolation.
type Store interface {
	// GetUser retrieves a user by id
	GetUser(ctx context.Context, id int64) (*schema.User, error)
	// GetUserByUsername retrieves a user by unique username
	GetUserByUsername(ctx context.Context, username string) (*schema.User, error)
	// GetUserByWalletAddress retrieves a user by wallet address
	GetUserByWalletAddress(ctx context.Context, address string) (*schema.User, error)
	// GetUserByXHandle retrieves a user by normalized X handle
	GetUserByXHandle(ctx context.Context, handle string) (*schema.User, error)
	// CreateUser inserts a user, assigning ID and CreatedAt
	CreateUser(ctx context.Context, user *schema.User) error
	// UpdateUser attaches a wallet address and/or X handle to an existing user
	UpdateUser(ctx context.Context, id int64, updates UserUpdate) (*schema.User, error)

	// GetToken retrieves a token by id
	GetToken(ctx context.Context, id int64) (*schema.Token, error)
	// GetTokenBySymbol retrieves a token by its symbol
	GetTokenBySymbol(ctx context.Context, symbol string) (*schema.Token, error)
	// CreateToken inserts a token, assigning ID and CreatedAt
	CreateToken(ctx context.Context, token *schema.Token) error
	// UpdateToken attaches ledger-supplied fields to an existing token
	UpdateToken(ctx context.Context, id int64, updates TokenUpdate) (*schema.Token, error)
	// ListTokens returns all tokens
	ListTokens(ctx context.Context) ([]schema.Token, error)

	// GetAirdrop retrieves an airdrop by id
	GetAirdrop(ctx context.Context, id int64) (*schema.Airdrop, error)
	// GetAirdropWithToken retrieves an airdrop joined with its token projection
	GetAirdropWithToken(ctx context.Context, id int64) (*schema.AirdropWithToken, error)
	// CreateAirdrop inserts an airdrop, assigning ID and CreatedAt and zeroing the counter
	CreateAirdrop(ctx context.Context, airdrop *schema.Airdrop) error
	// UpdateAirdrop applies admin updates to an existing airdrop
	UpdateAirdrop(ctx context.Context, id int64, updates AirdropUpdate) (*schema.Airdrop, error)
	// ListAirdrops returns all airdrops
	ListAirdrops(ctx context.Context) ([]schema.Airdrop, error)
	// ListActiveAirdrops returns airdrops satisfying the liveness invariant,
	// each joined with its token projection
	ListActiveAirdrops(ctx context.Context) ([]schema.AirdropWithToken, error)
	// AddTokensDistributed atomically adds amount to the airdrop's distributed counter.
	// It is the sole counter mutator.
	AddTokensDistributed(ctx context.Context, id int64, amount int64) error

	// GetActivity retrieves an activity by id
	GetActivity(ctx context.Context, id int64) (*schema.Activity, error)
	// CreateActivity inserts an immutable audit record, assigning ID and Timestamp
	CreateActivity(ctx context.Context, activity *schema.Activity) error
	// ListActivities returns the most recent activities, newest first
	ListActivities(ctx context.Context, limit int) ([]schema.Activity, error)
	// ListActivitiesWithUserInfo returns the most recent activities joined with user projections
	ListActivitiesWithUserInfo(ctx context.Context, limit int) ([]schema.ActivityWithUser, error)

	// GetDashboardStats aggregates the audit trail for the dashboard
	GetDashboardStats(ctx context.Context) (*schema.DashboardStats, error)
}
