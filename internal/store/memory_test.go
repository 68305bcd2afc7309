package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropforge/airdrop-engine/internal/adapter"
	"github.com/dropforge/airdrop-engine/internal/domain"
	"github.com/dropforge/airdrop-engine/internal/store/schema"
)

func newTestStore() Store {
	return NewMemStore(adapter.NewClock())
}

func strPtr(s string) *string { return &s }

func int64Ptr(v int64) *int64 { return &v }

func TestUserLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()

	wallet := "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"
	user := &schema.User{Username: "alice", WalletAddress: &wallet}
	require.NoError(t, s.CreateUser(ctx, user))
	assert.NotZero(t, user.ID)
	assert.False(t, user.CreatedAt.IsZero())

	// Duplicate username is a constraint violation
	err := s.CreateUser(ctx, &schema.User{Username: "alice"})
	assert.ErrorIs(t, err, domain.ErrConstraintViolation)

	got, err := s.GetUser(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "alice", got.Username)

	got, err = s.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, user.ID, got.ID)

	got, err = s.GetUserByWalletAddress(ctx, wallet)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, user.ID, got.ID)

	// Absence is (nil, nil), not an error
	got, err = s.GetUser(ctx, 999)
	require.NoError(t, err)
	assert.Nil(t, got)
	got, err = s.GetUserByXHandle(ctx, "@nobody")
	require.NoError(t, err)
	assert.Nil(t, got)

	handle := "@alice"
	updated, err := s.UpdateUser(ctx, user.ID, UserUpdate{XHandle: &handle})
	require.NoError(t, err)
	require.NotNil(t, updated)
	require.NotNil(t, updated.XHandle)
	assert.Equal(t, "@alice", *updated.XHandle)

	got, err = s.GetUserByXHandle(ctx, "@alice")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, user.ID, got.ID)

	updated, err = s.UpdateUser(ctx, 999, UserUpdate{XHandle: &handle})
	require.NoError(t, err)
	assert.Nil(t, updated)
}

func TestTokenLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()

	token := &schema.Token{Name: "DropForge Token", Symbol: "FORGE", TotalSupply: 1000000}
	require.NoError(t, s.CreateToken(ctx, token))
	assert.NotZero(t, token.ID)

	err := s.CreateToken(ctx, &schema.Token{Name: "Other", Symbol: "FORGE", TotalSupply: 5})
	assert.ErrorIs(t, err, domain.ErrConstraintViolation)

	got, err := s.GetTokenBySymbol(ctx, "FORGE")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, token.ID, got.ID)

	got, err = s.GetTokenBySymbol(ctx, "NOPE")
	require.NoError(t, err)
	assert.Nil(t, got)

	updated, err := s.UpdateToken(ctx, token.ID, TokenUpdate{
		LedgerTokenID:   strPtr("ledger-123"),
		ContractAddress: strPtr("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"),
	})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "ledger-123", *updated.LedgerTokenID)

	tokens, err := s.ListTokens(ctx)
	require.NoError(t, err)
	assert.Len(t, tokens, 1)
}

func TestListActiveAirdrops(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()
	now := time.Now()

	token := &schema.Token{Name: "DropForge Token", Symbol: "FORGE", TotalSupply: 1000000}
	require.NoError(t, s.CreateToken(ctx, token))

	live := &schema.Airdrop{
		Name:        "live",
		TokenID:     token.ID,
		TriggerType: domain.TriggerContract,
		TokenAmount: 10,
		StartDate:   now.Add(-time.Hour),
		Active:      true,
	}
	require.NoError(t, s.CreateAirdrop(ctx, live))

	inactive := &schema.Airdrop{
		Name:        "inactive",
		TokenID:     token.ID,
		TriggerType: domain.TriggerContract,
		TokenAmount: 10,
		StartDate:   now.Add(-time.Hour),
		Active:      false,
	}
	require.NoError(t, s.CreateAirdrop(ctx, inactive))

	future := &schema.Airdrop{
		Name:        "future",
		TokenID:     token.ID,
		TriggerType: domain.TriggerContract,
		TokenAmount: 10,
		StartDate:   now.Add(time.Hour),
		Active:      true,
	}
	require.NoError(t, s.CreateAirdrop(ctx, future))

	ended := &schema.Airdrop{
		Name:        "ended",
		TokenID:     token.ID,
		TriggerType: domain.TriggerContract,
		TokenAmount: 10,
		StartDate:   now.Add(-2 * time.Hour),
		Active:      true,
	}
	past := now.Add(-time.Hour)
	ended.EndDate = &past
	require.NoError(t, s.CreateAirdrop(ctx, ended))

	exhausted := &schema.Airdrop{
		Name:        "exhausted",
		TokenID:     token.ID,
		TriggerType: domain.TriggerContract,
		TokenAmount: 10,
		StartDate:   now.Add(-time.Hour),
		MaxTokens:   int64Ptr(100),
		Active:      true,
	}
	require.NoError(t, s.CreateAirdrop(ctx, exhausted))
	require.NoError(t, s.AddTokensDistributed(ctx, exhausted.ID, 100))

	active, err := s.ListActiveAirdrops(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "live", active[0].Name)
	assert.Equal(t, "FORGE", active[0].Token.Symbol)
}

func TestAddTokensDistributed(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()

	token := &schema.Token{Name: "DropForge Token", Symbol: "FORGE", TotalSupply: 1000000}
	require.NoError(t, s.CreateToken(ctx, token))
	airdrop := &schema.Airdrop{
		Name:        "drop",
		TokenID:     token.ID,
		TriggerType: domain.TriggerContract,
		TokenAmount: 10,
		StartDate:   time.Now().Add(-time.Hour),
		Active:      true,
	}
	require.NoError(t, s.CreateAirdrop(ctx, airdrop))

	require.NoError(t, s.AddTokensDistributed(ctx, airdrop.ID, 10))
	require.NoError(t, s.AddTokensDistributed(ctx, airdrop.ID, 25))

	got, err := s.GetAirdrop(ctx, airdrop.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(35), got.TokensDistributed)

	assert.ErrorIs(t, s.AddTokensDistributed(ctx, 999, 10), domain.ErrNotFound)
}

func TestUpdateAirdrop(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()

	token := &schema.Token{Name: "DropForge Token", Symbol: "FORGE", TotalSupply: 1000000}
	require.NoError(t, s.CreateToken(ctx, token))
	airdrop := &schema.Airdrop{
		Name:        "drop",
		TokenID:     token.ID,
		TriggerType: domain.TriggerContract,
		TokenAmount: 10,
		StartDate:   time.Now().Add(-time.Hour),
		Active:      true,
	}
	require.NoError(t, s.CreateAirdrop(ctx, airdrop))

	inactive := false
	updated, err := s.UpdateAirdrop(ctx, airdrop.ID, AirdropUpdate{
		Active:      &inactive,
		TokenAmount: int64Ptr(50),
		MaxTokens:   int64Ptr(500),
	})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.False(t, updated.Active)
	assert.Equal(t, int64(50), updated.TokenAmount)
	require.NotNil(t, updated.MaxTokens)
	assert.Equal(t, int64(500), *updated.MaxTokens)

	updated, err = s.UpdateAirdrop(ctx, 999, AirdropUpdate{Active: &inactive})
	require.NoError(t, err)
	assert.Nil(t, updated)
}

func TestListActivities(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()

	for i := 0; i < 5; i++ {
		require.NoError(t, s.CreateActivity(ctx, &schema.Activity{
			UserID:         1,
			AirdropID:      1,
			EventType:      domain.EventTypeContractInteraction,
			EventSubtype:   "deposit",
			TokensRewarded: 10,
			Status:         domain.ActivityCompleted,
		}))
	}

	activities, err := s.ListActivities(ctx, 3)
	require.NoError(t, err)
	require.Len(t, activities, 3)
	// Newest first, id breaking timestamp ties
	assert.Equal(t, int64(5), activities[0].ID)
	assert.Equal(t, int64(4), activities[1].ID)
	assert.Equal(t, int64(3), activities[2].ID)

	// Non-positive limit falls back to the default
	activities, err = s.ListActivities(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, activities, 5)
}

func TestListActivitiesWithUserInfo(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()

	wallet := "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"
	user := &schema.User{Username: "alice", WalletAddress: &wallet}
	require.NoError(t, s.CreateUser(ctx, user))

	require.NoError(t, s.CreateActivity(ctx, &schema.Activity{
		UserID:         user.ID,
		AirdropID:      1,
		EventType:      domain.EventTypeContractInteraction,
		TokensRewarded: 10,
		Status:         domain.ActivityCompleted,
	}))
	require.NoError(t, s.CreateActivity(ctx, &schema.Activity{
		UserID:         999,
		AirdropID:      1,
		EventType:      domain.EventTypeXAccountInteraction,
		TokensRewarded: 0,
		Status:         domain.ActivityFailed,
	}))

	activities, err := s.ListActivitiesWithUserInfo(ctx, 10)
	require.NoError(t, err)
	require.Len(t, activities, 2)

	// Newest first: the orphaned activity, then alice's
	assert.Equal(t, "Unknown User", activities[0].User.Username)
	assert.Equal(t, "Unknown Address", activities[0].User.WalletAddress)
	assert.Equal(t, "alice", activities[1].User.Username)
	assert.Equal(t, wallet, activities[1].User.WalletAddress)
}

func TestGetDashboardStats(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()

	require.NoError(t, s.CreateUser(ctx, &schema.User{Username: "alice"}))
	require.NoError(t, s.CreateUser(ctx, &schema.User{Username: "bob"}))

	creates := []schema.Activity{
		{UserID: 1, AirdropID: 1, EventType: domain.EventTypeContractInteraction, TokensRewarded: 10, Status: domain.ActivityCompleted},
		{UserID: 1, AirdropID: 1, EventType: domain.EventTypeContractInteraction, TokensRewarded: 10, Status: domain.ActivityCompleted},
		{UserID: 2, AirdropID: 1, EventType: domain.EventTypeXAccountInteraction, TokensRewarded: 5, Status: domain.ActivityCompleted},
		{UserID: 2, AirdropID: 1, EventType: domain.EventTypeXAccountInteraction, TokensRewarded: 0, Status: domain.ActivityFailed},
	}
	for i := range creates {
		require.NoError(t, s.CreateActivity(ctx, &creates[i]))
	}

	stats, err := s.GetDashboardStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(25), stats.TotalTokensDistributed)
	assert.Equal(t, int64(2), stats.TotalUsersReached)
	assert.Equal(t, int64(2), stats.ContractInteractions)
	assert.Equal(t, int64(2), stats.XAccountInteractions)
	assert.Len(t, stats.RecentActivity, 4)
}
