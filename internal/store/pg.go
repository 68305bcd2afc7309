package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/dropforge/airdrop-engine/internal/adapter"
	"github.com/dropforge/airdrop-engine/internal/domain"
	"github.com/dropforge/airdrop-engine/internal/store/schema"
)

type pgStore struct {
	db    *gorm.DB
	clock adapter.Clock
}

// NewPGStore creates a new PostgreSQL store instance.
// The gorm connection must be opened with TranslateError so unique violations
// surface as gorm.ErrDuplicatedKey.
func NewPGStore(db *gorm.DB, clock adapter.Clock) Store {
	return &pgStore{db: db, clock: clock}
}

// AutoMigrate creates or updates the schema for all entity tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&schema.User{},
		&schema.Token{},
		&schema.Airdrop{},
		&schema.Activity{},
	)
}

// ConfigureConnectionPool configures the connection pool settings for a GORM
// database connection. Zero values fall back to defaults: 20 open, 5 idle,
// 5m lifetime, 10m idle time.
func ConfigureConnectionPool(db *gorm.DB, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if maxOpenConns == 0 {
		maxOpenConns = 20
	}
	if maxIdleConns == 0 {
		maxIdleConns = 5
	}
	if connMaxLifetime == 0 {
		connMaxLifetime = 5 * time.Minute
	}
	if connMaxIdleTime == 0 {
		connMaxIdleTime = 10 * time.Minute
	}
	if maxIdleConns > maxOpenConns {
		maxIdleConns = maxOpenConns
	}

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	return nil
}

// first runs a query and maps gorm's not-found to (nil, nil)
func first[T any](db *gorm.DB, conds ...interface{}) (*T, error) {
	var entity T
	if err := db.First(&entity, conds...).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entity, nil
}

func translateError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrConstraintViolation
	}
	return err
}

func (s *pgStore) GetUser(ctx context.Context, id int64) (*schema.User, error) {
	return first[schema.User](s.db.WithContext(ctx), "id = ?", id)
}

func (s *pgStore) GetUserByUsername(ctx context.Context, username string) (*schema.User, error) {
	return first[schema.User](s.db.WithContext(ctx), "username = ?", username)
}

func (s *pgStore) GetUserByWalletAddress(ctx context.Context, address string) (*schema.User, error) {
	return first[schema.User](s.db.WithContext(ctx), "wallet_address = ?", address)
}

func (s *pgStore) GetUserByXHandle(ctx context.Context, handle string) (*schema.User, error) {
	return first[schema.User](s.db.WithContext(ctx), "x_handle = ?", handle)
}

func (s *pgStore) CreateUser(ctx context.Context, user *schema.User) error {
	user.CreatedAt = s.clock.Now()
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return translateError(err)
	}
	return nil
}

func (s *pgStore) UpdateUser(ctx context.Context, id int64, updates UserUpdate) (*schema.User, error) {
	fields := map[string]interface{}{}
	if updates.WalletAddress != nil {
		fields["wallet_address"] = *updates.WalletAddress
	}
	if updates.XHandle != nil {
		fields["x_handle"] = *updates.XHandle
	}
	if len(fields) > 0 {
		result := s.db.WithContext(ctx).Model(&schema.User{}).Where("id = ?", id).Updates(fields)
		if result.Error != nil {
			return nil, translateError(result.Error)
		}
	}
	return s.GetUser(ctx, id)
}

func (s *pgStore) GetToken(ctx context.Context, id int64) (*schema.Token, error) {
	return first[schema.Token](s.db.WithContext(ctx), "id = ?", id)
}

func (s *pgStore) GetTokenBySymbol(ctx context.Context, symbol string) (*schema.Token, error) {
	return first[schema.Token](s.db.WithContext(ctx), "symbol = ?", symbol)
}

func (s *pgStore) CreateToken(ctx context.Context, token *schema.Token) error {
	token.CreatedAt = s.clock.Now()
	if err := s.db.WithContext(ctx).Create(token).Error; err != nil {
		return translateError(err)
	}
	return nil
}

func (s *pgStore) UpdateToken(ctx context.Context, id int64, updates TokenUpdate) (*schema.Token, error) {
	fields := map[string]interface{}{}
	if updates.LedgerTokenID != nil {
		fields["ledger_token_id"] = *updates.LedgerTokenID
	}
	if updates.ContractAddress != nil {
		fields["contract_address"] = *updates.ContractAddress
	}
	if len(fields) > 0 {
		if err := s.db.WithContext(ctx).Model(&schema.Token{}).Where("id = ?", id).Updates(fields).Error; err != nil {
			return nil, translateError(err)
		}
	}
	return s.GetToken(ctx, id)
}

func (s *pgStore) ListTokens(ctx context.Context) ([]schema.Token, error) {
	var tokens []schema.Token
	if err := s.db.WithContext(ctx).Order("id").Find(&tokens).Error; err != nil {
		return nil, err
	}
	return tokens, nil
}

func (s *pgStore) GetAirdrop(ctx context.Context, id int64) (*schema.Airdrop, error) {
	return first[schema.Airdrop](s.db.WithContext(ctx), "id = ?", id)
}

func (s *pgStore) GetAirdropWithToken(ctx context.Context, id int64) (*schema.AirdropWithToken, error) {
	airdrop, err := s.GetAirdrop(ctx, id)
	if err != nil || airdrop == nil {
		return nil, err
	}
	token, err := s.GetToken(ctx, airdrop.TokenID)
	if err != nil || token == nil {
		return nil, err
	}
	return &schema.AirdropWithToken{
		Airdrop: *airdrop,
		Token:   schema.TokenInfo{Name: token.Name, Symbol: token.Symbol},
	}, nil
}

func (s *pgStore) CreateAirdrop(ctx context.Context, airdrop *schema.Airdrop) error {
	airdrop.TokensDistributed = 0
	airdrop.CreatedAt = s.clock.Now()
	if err := s.db.WithContext(ctx).Create(airdrop).Error; err != nil {
		return translateError(err)
	}
	return nil
}

func (s *pgStore) UpdateAirdrop(ctx context.Context, id int64, updates AirdropUpdate) (*schema.Airdrop, error) {
	fields := map[string]interface{}{}
	if updates.Active != nil {
		fields["active"] = *updates.Active
	}
	if updates.TokenAmount != nil {
		fields["token_amount"] = *updates.TokenAmount
	}
	if updates.EndDate != nil {
		fields["end_date"] = *updates.EndDate
	}
	if updates.MaxTokens != nil {
		fields["max_tokens"] = *updates.MaxTokens
	}
	if len(fields) > 0 {
		if err := s.db.WithContext(ctx).Model(&schema.Airdrop{}).Where("id = ?", id).Updates(fields).Error; err != nil {
			return nil, translateError(err)
		}
	}
	return s.GetAirdrop(ctx, id)
}

func (s *pgStore) ListAirdrops(ctx context.Context) ([]schema.Airdrop, error) {
	var airdrops []schema.Airdrop
	if err := s.db.WithContext(ctx).Order("id").Find(&airdrops).Error; err != nil {
		return nil, err
	}
	return airdrops, nil
}

func (s *pgStore) ListActiveAirdrops(ctx context.Context) ([]schema.AirdropWithToken, error) {
	now := s.clock.Now()
	var airdrops []schema.Airdrop
	err := s.db.WithContext(ctx).
		Where("active = ?", true).
		Where("start_date <= ?", now).
		Where("end_date IS NULL OR end_date >= ?", now).
		Where("max_tokens IS NULL OR tokens_distributed < max_tokens").
		Order("id").
		Find(&airdrops).Error
	if err != nil {
		return nil, err
	}

	result := make([]schema.AirdropWithToken, 0, len(airdrops))
	for _, a := range airdrops {
		token, err := s.GetToken(ctx, a.TokenID)
		if err != nil {
			return nil, err
		}
		if token == nil {
			continue
		}
		result = append(result, schema.AirdropWithToken{
			Airdrop: a,
			Token:   schema.TokenInfo{Name: token.Name, Symbol: token.Symbol},
		})
	}
	return result, nil
}

func (s *pgStore) AddTokensDistributed(ctx context.Context, id int64, amount int64) error {
	result := s.db.WithContext(ctx).
		Model(&schema.Airdrop{}).
		Where("id = ?", id).
		Update("tokens_distributed", gorm.Expr("tokens_distributed + ?", amount))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *pgStore) GetActivity(ctx context.Context, id int64) (*schema.Activity, error) {
	return first[schema.Activity](s.db.WithContext(ctx), "id = ?", id)
}

func (s *pgStore) CreateActivity(ctx context.Context, activity *schema.Activity) error {
	activity.Timestamp = s.clock.Now()
	if err := s.db.WithContext(ctx).Create(activity).Error; err != nil {
		return translateError(err)
	}
	return nil
}

func (s *pgStore) ListActivities(ctx context.Context, limit int) ([]schema.Activity, error) {
	if limit <= 0 {
		limit = 100
	}
	var activities []schema.Activity
	err := s.db.WithContext(ctx).
		Order("timestamp DESC, id DESC").
		Limit(limit).
		Find(&activities).Error
	if err != nil {
		return nil, err
	}
	return activities, nil
}

func (s *pgStore) ListActivitiesWithUserInfo(ctx context.Context, limit int) ([]schema.ActivityWithUser, error) {
	activities, err := s.ListActivities(ctx, limit)
	if err != nil {
		return nil, err
	}

	result := make([]schema.ActivityWithUser, 0, len(activities))
	for _, a := range activities {
		info := schema.UserInfo{Username: "Unknown User", WalletAddress: "Unknown Address"}
		user, err := s.GetUser(ctx, a.UserID)
		if err != nil {
			return nil, err
		}
		if user != nil {
			info.Username = user.Username
			if user.WalletAddress != nil {
				info.WalletAddress = *user.WalletAddress
			}
		}
		result = append(result, schema.ActivityWithUser{Activity: a, User: info})
	}
	return result, nil
}

func (s *pgStore) GetDashboardStats(ctx context.Context) (*schema.DashboardStats, error) {
	stats := &schema.DashboardStats{}
	db := s.db.WithContext(ctx).Model(&schema.Activity{})

	var totals struct {
		Total int64
	}
	if err := db.Select("COALESCE(SUM(tokens_rewarded), 0) AS total").Scan(&totals).Error; err != nil {
		return nil, err
	}
	stats.TotalTokensDistributed = totals.Total

	if err := s.db.WithContext(ctx).Model(&schema.Activity{}).
		Distinct("user_id").Count(&stats.TotalUsersReached).Error; err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(&schema.Activity{}).
		Where("event_type = ?", domain.EventTypeContractInteraction).
		Count(&stats.ContractInteractions).Error; err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(&schema.Activity{}).
		Where("event_type = ?", domain.EventTypeXAccountInteraction).
		Count(&stats.XAccountInteractions).Error; err != nil {
		return nil, err
	}

	recent, err := s.ListActivitiesWithUserInfo(ctx, 5)
	if err != nil {
		return nil, err
	}
	stats.RecentActivity = recent

	return stats, nil
}
