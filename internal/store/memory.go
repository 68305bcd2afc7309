package store

import (
	"context"
	"sort"
	"sync"

	"github.com/dropforge/airdrop-engine/internal/adapter"
	"github.com/dropforge/airdrop-engine/internal/domain"
	"github.com/dropforge/airdrop-engine/internal/store/schema"
)

// memStore is the map-backed Store implementation. Every entity collection is
// guarded by one mutex together with its monotonic id counter, so tests and the
// durable implementation observe identical semantics.
type memStore struct {
	clock adapter.Clock

	mu         sync.RWMutex
	users      map[int64]*schema.User
	tokens     map[int64]*schema.Token
	airdrops   map[int64]*schema.Airdrop
	activities map[int64]*schema.Activity

	userID     int64
	tokenID    int64
	airdropID  int64
	activityID int64
}

// NewMemStore creates a new in-memory store
func NewMemStore(clock adapter.Clock) Store {
	return &memStore{
		clock:      clock,
		users:      make(map[int64]*schema.User),
		tokens:     make(map[int64]*schema.Token),
		airdrops:   make(map[int64]*schema.Airdrop),
		activities: make(map[int64]*schema.Activity),
	}
}

func (s *memStore) GetUser(ctx context.Context, id int64) (*schema.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyUser(s.users[id]), nil
}

func (s *memStore) GetUserByUsername(ctx context.Context, username string) (*schema.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Username == username {
			return copyUser(u), nil
		}
	}
	return nil, nil
}

func (s *memStore) GetUserByWalletAddress(ctx context.Context, address string) (*schema.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.WalletAddress != nil && *u.WalletAddress == address {
			return copyUser(u), nil
		}
	}
	return nil, nil
}

func (s *memStore) GetUserByXHandle(ctx context.Context, handle string) (*schema.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.XHandle != nil && *u.XHandle == handle {
			return copyUser(u), nil
		}
	}
	return nil, nil
}

func (s *memStore) CreateUser(ctx context.Context, user *schema.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == user.Username {
			return domain.ErrConstraintViolation
		}
	}
	s.userID++
	user.ID = s.userID
	user.CreatedAt = s.clock.Now()
	s.users[user.ID] = copyUser(user)
	return nil
}

func (s *memStore) UpdateUser(ctx context.Context, id int64, updates UserUpdate) (*schema.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	if updates.WalletAddress != nil {
		u.WalletAddress = updates.WalletAddress
	}
	if updates.XHandle != nil {
		u.XHandle = updates.XHandle
	}
	return copyUser(u), nil
}

func (s *memStore) GetToken(ctx context.Context, id int64) (*schema.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyToken(s.tokens[id]), nil
}

func (s *memStore) GetTokenBySymbol(ctx context.Context, symbol string) (*schema.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.tokens {
		if t.Symbol == symbol {
			return copyToken(t), nil
		}
	}
	return nil, nil
}

func (s *memStore) CreateToken(ctx context.Context, token *schema.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tokens {
		if t.Symbol == token.Symbol {
			return domain.ErrConstraintViolation
		}
	}
	s.tokenID++
	token.ID = s.tokenID
	token.CreatedAt = s.clock.Now()
	s.tokens[token.ID] = copyToken(token)
	return nil
}

func (s *memStore) UpdateToken(ctx context.Context, id int64, updates TokenUpdate) (*schema.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tokens[id]
	if !ok {
		return nil, nil
	}
	if updates.LedgerTokenID != nil {
		t.LedgerTokenID = updates.LedgerTokenID
	}
	if updates.ContractAddress != nil {
		t.ContractAddress = updates.ContractAddress
	}
	return copyToken(t), nil
}

func (s *memStore) ListTokens(ctx context.Context) ([]schema.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tokens := make([]schema.Token, 0, len(s.tokens))
	for _, t := range s.tokens {
		tokens = append(tokens, *t)
	}
	sort.Slice(tokens, func(i, j int) bool { return tokens[i].ID < tokens[j].ID })
	return tokens, nil
}

func (s *memStore) GetAirdrop(ctx context.Context, id int64) (*schema.Airdrop, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyAirdrop(s.airdrops[id]), nil
}

func (s *memStore) GetAirdropWithToken(ctx context.Context, id int64) (*schema.AirdropWithToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.airdrops[id]
	if !ok {
		return nil, nil
	}
	t, ok := s.tokens[a.TokenID]
	if !ok {
		return nil, nil
	}
	return &schema.AirdropWithToken{
		Airdrop: *copyAirdrop(a),
		Token:   schema.TokenInfo{Name: t.Name, Symbol: t.Symbol},
	}, nil
}

func (s *memStore) CreateAirdrop(ctx context.Context, airdrop *schema.Airdrop) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.airdropID++
	airdrop.ID = s.airdropID
	airdrop.TokensDistributed = 0
	airdrop.CreatedAt = s.clock.Now()
	s.airdrops[airdrop.ID] = copyAirdrop(airdrop)
	return nil
}

func (s *memStore) UpdateAirdrop(ctx context.Context, id int64, updates AirdropUpdate) (*schema.Airdrop, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.airdrops[id]
	if !ok {
		return nil, nil
	}
	if updates.Active != nil {
		a.Active = *updates.Active
	}
	if updates.TokenAmount != nil {
		a.TokenAmount = *updates.TokenAmount
	}
	if updates.EndDate != nil {
		a.EndDate = updates.EndDate
	}
	if updates.MaxTokens != nil {
		a.MaxTokens = updates.MaxTokens
	}
	return copyAirdrop(a), nil
}

func (s *memStore) ListAirdrops(ctx context.Context) ([]schema.Airdrop, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	airdrops := make([]schema.Airdrop, 0, len(s.airdrops))
	for _, a := range s.airdrops {
		airdrops = append(airdrops, *a)
	}
	sort.Slice(airdrops, func(i, j int) bool { return airdrops[i].ID < airdrops[j].ID })
	return airdrops, nil
}

func (s *memStore) ListActiveAirdrops(ctx context.Context) ([]schema.AirdropWithToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	now := s.clock.Now()
	result := make([]schema.AirdropWithToken, 0)
	ids := make([]int64, 0, len(s.airdrops))
	for id := range s.airdrops {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		a := s.airdrops[id]
		if !a.Live(now) {
			continue
		}
		t, ok := s.tokens[a.TokenID]
		if !ok {
			continue
		}
		result = append(result, schema.AirdropWithToken{
			Airdrop: *copyAirdrop(a),
			Token:   schema.TokenInfo{Name: t.Name, Symbol: t.Symbol},
		})
	}
	return result, nil
}

func (s *memStore) AddTokensDistributed(ctx context.Context, id int64, amount int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.airdrops[id]
	if !ok {
		return domain.ErrNotFound
	}
	a.TokensDistributed += amount
	return nil
}

func (s *memStore) GetActivity(ctx context.Context, id int64) (*schema.Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.activities[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (s *memStore) CreateActivity(ctx context.Context, activity *schema.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activityID++
	activity.ID = s.activityID
	activity.Timestamp = s.clock.Now()
	cp := *activity
	s.activities[activity.ID] = &cp
	return nil
}

func (s *memStore) ListActivities(ctx context.Context, limit int) ([]schema.Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listActivitiesLocked(limit), nil
}

func (s *memStore) listActivitiesLocked(limit int) []schema.Activity {
	if limit <= 0 {
		limit = 100
	}
	activities := make([]schema.Activity, 0, len(s.activities))
	for _, a := range s.activities {
		activities = append(activities, *a)
	}
	// Newest first; id breaks timestamp ties so ordering stays stable
	sort.Slice(activities, func(i, j int) bool {
		if activities[i].Timestamp.Equal(activities[j].Timestamp) {
			return activities[i].ID > activities[j].ID
		}
		return activities[i].Timestamp.After(activities[j].Timestamp)
	})
	if len(activities) > limit {
		activities = activities[:limit]
	}
	return activities
}

func (s *memStore) ListActivitiesWithUserInfo(ctx context.Context, limit int) ([]schema.ActivityWithUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listActivitiesWithUserLocked(limit), nil
}

func (s *memStore) listActivitiesWithUserLocked(limit int) []schema.ActivityWithUser {
	activities := s.listActivitiesLocked(limit)
	result := make([]schema.ActivityWithUser, 0, len(activities))
	for _, a := range activities {
		info := schema.UserInfo{Username: "Unknown User", WalletAddress: "Unknown Address"}
		if u, ok := s.users[a.UserID]; ok {
			info.Username = u.Username
			if u.WalletAddress != nil {
				info.WalletAddress = *u.WalletAddress
			}
		}
		result = append(result, schema.ActivityWithUser{Activity: a, User: info})
	}
	return result
}

func (s *memStore) GetDashboardStats(ctx context.Context) (*schema.DashboardStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &schema.DashboardStats{}
	seen := make(map[int64]struct{})
	for _, a := range s.activities {
		stats.TotalTokensDistributed += a.TokensRewarded
		seen[a.UserID] = struct{}{}
		switch a.EventType {
		case domain.EventTypeContractInteraction:
			stats.ContractInteractions++
		case domain.EventTypeXAccountInteraction:
			stats.XAccountInteractions++
		}
	}
	stats.TotalUsersReached = int64(len(seen))
	stats.RecentActivity = s.listActivitiesWithUserLocked(5)
	return stats, nil
}

func copyUser(u *schema.User) *schema.User {
	if u == nil {
		return nil
	}
	cp := *u
	return &cp
}

func copyToken(t *schema.Token) *schema.Token {
	if t == nil {
		return nil
	}
	cp := *t
	return &cp
}

func copyAirdrop(a *schema.Airdrop) *schema.Airdrop {
	if a == nil {
		return nil
	}
	cp := *a
	return &cp
}
