// Package engine orchestrates the airdrop pipeline: it matches observed
// interactions against live campaigns, consults the eligibility oracle,
// distributes tokens through the ledger exactly once per qualifying event,
// and records an auditable activity for every distribution attempt.
package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/dropforge/airdrop-engine/internal/adapter"
	"github.com/dropforge/airdrop-engine/internal/domain"
	"github.com/dropforge/airdrop-engine/internal/ledger"
	"github.com/dropforge/airdrop-engine/internal/logger"
	"github.com/dropforge/airdrop-engine/internal/matcher"
	"github.com/dropforge/airdrop-engine/internal/oracle"
	"github.com/dropforge/airdrop-engine/internal/store"
	"github.com/dropforge/airdrop-engine/internal/store/schema"
)

// SubmissionResult is the outcome of processing one observed interaction
type SubmissionResult struct {
	Success  bool             `json:"success"`
	Message  string           `json:"message"`
	Activity *schema.Activity `json:"activity,omitempty"`
}

// Engine wires the store, oracle and ledger into the distribution pipeline
type Engine struct {
	store  store.Store
	ledger ledger.Ledger
	oracle oracle.Oracle
	clock  adapter.Clock
	gate   *admissionGate
}

// New creates an engine
func New(s store.Store, l ledger.Ledger, o oracle.Oracle, clock adapter.Clock) *Engine {
	return &Engine{
		store:  s,
		ledger: l,
		oracle: o,
		clock:  clock,
		gate:   newAdmissionGate(),
	}
}

// SubmitContractInteraction runs a contract event through the pipeline
func (e *Engine) SubmitContractInteraction(ctx context.Context, event *domain.ContractEvent) (*SubmissionResult, error) {
	if event == nil || !event.Valid() {
		return nil, fmt.Errorf("invalid contract event")
	}
	event.ContractAddress = domain.NormalizeAddress(event.ContractAddress)
	event.UserAddress = domain.NormalizeAddress(event.UserAddress)

	candidates, err := e.store.ListActiveAirdrops(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active airdrops: %w", err)
	}

	airdrop := matcher.MatchContractEvent(event, candidates)
	if airdrop == nil {
		return &SubmissionResult{
			Success: false,
			Message: fmt.Sprintf("no active airdrop matches contract %s event %s", event.ContractAddress, event.EventName),
		}, nil
	}

	user, err := e.userForWallet(ctx, event.UserAddress)
	if err != nil {
		return nil, err
	}

	verdict, err := e.oracle.EvaluateContractInteraction(ctx, event, airdrop)
	if err != nil || !verdict.Eligible {
		return e.ineligible(ctx, airdrop, verdict, err)
	}

	return e.distribute(ctx, airdrop, user, domain.EventTypeContractInteraction, event.EventName, event.UserAddress)
}

// SubmitSocialInteraction runs an X account event through the pipeline
func (e *Engine) SubmitSocialInteraction(ctx context.Context, event *domain.SocialEvent) (*SubmissionResult, error) {
	if event == nil {
		return nil, fmt.Errorf("invalid social event")
	}
	event.UserHandle = domain.NormalizeHandle(event.UserHandle)
	event.ClientHandle = domain.NormalizeHandle(event.ClientHandle)
	if !event.Valid() {
		return nil, fmt.Errorf("invalid social event")
	}

	candidates, err := e.store.ListActiveAirdrops(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active airdrops: %w", err)
	}

	airdrop := matcher.MatchSocialEvent(event, candidates)
	if airdrop == nil {
		return &SubmissionResult{
			Success: false,
			Message: fmt.Sprintf("no active airdrop matches account %s interaction %s", event.ClientHandle, event.Interaction),
		}, nil
	}

	verdict, err := e.oracle.EvaluateXInteraction(ctx, event, airdrop)
	if err != nil || !verdict.Eligible {
		return e.ineligible(ctx, airdrop, verdict, err)
	}

	user, err := e.userForHandle(ctx, event.UserHandle)
	if err != nil {
		return nil, err
	}

	// An eligible social user without a linked wallet cannot receive tokens.
	// The attempt is still recorded so the campaign has an audit trail, but
	// the distribution counter does not move. Ineligible events never reach
	// this point and leave no activity.
	if user.WalletAddress == nil || *user.WalletAddress == "" {
		activity := &schema.Activity{
			UserID:         user.ID,
			AirdropID:      airdrop.ID,
			EventType:      domain.EventTypeXAccountInteraction,
			EventSubtype:   string(event.Interaction),
			TokensRewarded: 0,
			Status:         domain.ActivityFailed,
		}
		if err := e.store.CreateActivity(ctx, activity); err != nil {
			return nil, fmt.Errorf("failed to record activity: %w", err)
		}
		return &SubmissionResult{
			Success:  false,
			Message:  fmt.Sprintf("user %s has no wallet address linked", event.UserHandle),
			Activity: activity,
		}, nil
	}

	return e.distribute(ctx, airdrop, user, domain.EventTypeXAccountInteraction, string(event.Interaction), *user.WalletAddress)
}

func (e *Engine) ineligible(ctx context.Context, airdrop *schema.AirdropWithToken, verdict *oracle.Verdict, evalErr error) (*SubmissionResult, error) {
	reason := "eligibility check unavailable"
	if evalErr != nil {
		logger.WarnCtx(ctx, "eligibility check failed, treating as ineligible",
			zap.Int64("airdrop_id", airdrop.ID),
			zap.Error(evalErr))
	} else if verdict != nil && verdict.Reasoning != "" {
		reason = verdict.Reasoning
	}
	return &SubmissionResult{
		Success: false,
		Message: fmt.Sprintf("not eligible for airdrop %q: %s", airdrop.Name, reason),
	}, nil
}

// distribute performs the admission check, the ledger transfer and the
// bookkeeping for one qualifying event
func (e *Engine) distribute(
	ctx context.Context,
	airdrop *schema.AirdropWithToken,
	user *schema.User,
	eventType domain.EventType,
	eventSubtype string,
	walletAddress string,
) (*SubmissionResult, error) {
	amount := airdrop.TokenAmount

	// The matcher's candidate snapshot may predate a commit by a concurrent
	// event, so the admission check re-reads the counter through the gate.
	admitted, err := e.gate.reserve(ctx, &airdrop.Airdrop, amount, func(ctx context.Context) (int64, error) {
		current, err := e.store.GetAirdrop(ctx, airdrop.ID)
		if err != nil {
			return 0, err
		}
		if current == nil {
			return 0, domain.ErrNotFound
		}
		return current.TokensDistributed, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to check budget for airdrop %d: %w", airdrop.ID, err)
	}
	if !admitted {
		return &SubmissionResult{
			Success: false,
			Message: fmt.Sprintf("airdrop %q has exhausted its token budget", airdrop.Name),
		}, nil
	}
	committed := false
	defer func() {
		if !committed {
			e.gate.release(airdrop.ID, amount)
		}
	}()

	token, err := e.store.GetToken(ctx, airdrop.TokenID)
	if err != nil {
		return nil, fmt.Errorf("failed to load token %d: %w", airdrop.TokenID, err)
	}
	if token == nil || token.LedgerTokenID == nil || *token.LedgerTokenID == "" {
		activity, recErr := e.recordFailure(ctx, airdrop.ID, user.ID, eventType, eventSubtype, "")
		if recErr != nil {
			return nil, recErr
		}
		return &SubmissionResult{
			Success:  false,
			Message:  fmt.Sprintf("token %q is not ready for distribution", airdrop.Token.Symbol),
			Activity: activity,
		}, nil
	}

	result, err := e.ledger.Distribute(ctx, *token.LedgerTokenID, walletAddress, amount)
	if err != nil || !result.Success {
		cause := "ledger unavailable"
		txHash := ""
		if err != nil {
			cause = err.Error()
		} else {
			if result.Error != "" {
				cause = result.Error
			}
			txHash = result.TxHash
		}
		logger.WarnCtx(ctx, "token distribution failed",
			zap.Int64("airdrop_id", airdrop.ID),
			zap.Int64("user_id", user.ID),
			zap.String("cause", cause),
			zap.Error(err))
		activity, recErr := e.recordFailure(ctx, airdrop.ID, user.ID, eventType, eventSubtype, txHash)
		if recErr != nil {
			return nil, recErr
		}
		return &SubmissionResult{
			Success:  false,
			Message:  fmt.Sprintf("distribution failed for airdrop %q: %s", airdrop.Name, cause),
			Activity: activity,
		}, nil
	}

	if err := e.store.AddTokensDistributed(ctx, airdrop.ID, amount); err != nil {
		return nil, fmt.Errorf("failed to update distribution counter: %w", err)
	}
	committed = true
	e.gate.release(airdrop.ID, amount)

	activity := &schema.Activity{
		UserID:         user.ID,
		AirdropID:      airdrop.ID,
		EventType:      eventType,
		EventSubtype:   eventSubtype,
		TokensRewarded: amount,
		Status:         domain.ActivityCompleted,
	}
	if result.TxHash != "" {
		activity.TxHash = &result.TxHash
	}
	if err := e.store.CreateActivity(ctx, activity); err != nil {
		return nil, fmt.Errorf("failed to record activity: %w", err)
	}

	logger.InfoCtx(ctx, "tokens distributed",
		zap.Int64("airdrop_id", airdrop.ID),
		zap.Int64("user_id", user.ID),
		zap.Int64("amount", amount),
		zap.String("tx_hash", result.TxHash))

	return &SubmissionResult{
		Success:  true,
		Message:  fmt.Sprintf("distributed %d %s tokens", amount, airdrop.Token.Symbol),
		Activity: activity,
	}, nil
}

func (e *Engine) recordFailure(ctx context.Context, airdropID, userID int64, eventType domain.EventType, eventSubtype, txHash string) (*schema.Activity, error) {
	activity := &schema.Activity{
		UserID:       userID,
		AirdropID:    airdropID,
		EventType:    eventType,
		EventSubtype: eventSubtype,
		Status:       domain.ActivityFailed,
	}
	if txHash != "" {
		activity.TxHash = &txHash
	}
	if err := e.store.CreateActivity(ctx, activity); err != nil {
		return nil, fmt.Errorf("failed to record activity: %w", err)
	}
	return activity, nil
}

// userForWallet finds the user owning a wallet address, creating a
// placeholder account on first sight
func (e *Engine) userForWallet(ctx context.Context, address string) (*schema.User, error) {
	user, err := e.store.GetUserByWalletAddress(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user by wallet: %w", err)
	}
	if user != nil {
		return user, nil
	}

	user = &schema.User{
		Username:      fmt.Sprintf("user_%s", e.freshUsernameSuffix()),
		WalletAddress: &address,
	}
	if err := e.store.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user for wallet %s: %w", address, err)
	}
	return user, nil
}

// userForHandle finds the user owning an X handle, creating a placeholder
// account (without a wallet) on first sight
func (e *Engine) userForHandle(ctx context.Context, handle string) (*schema.User, error) {
	user, err := e.store.GetUserByXHandle(ctx, handle)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user by handle: %w", err)
	}
	if user != nil {
		return user, nil
	}

	user = &schema.User{
		Username: fmt.Sprintf("%s_%s", domain.NormalizeHandle(handle)[1:], e.freshUsernameSuffix()),
		XHandle:  &handle,
	}
	if err := e.store.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user for handle %s: %w", handle, err)
	}
	return user, nil
}

// freshUsernameSuffix yields a unique suffix for placeholder usernames.
// Usernames are unique in the store and wall-clock milliseconds collide
// under concurrent first sightings.
func (e *Engine) freshUsernameSuffix() string {
	return strings.ToLower(ulid.MustNewDefault(e.clock.Now()).String())
}

// CreateToken mints a token on the ledger first and only then records it.
// A token that never finished minting is never visible in the catalog.
func (e *Engine) CreateToken(ctx context.Context, name, symbol string, totalSupply int64) (*schema.Token, error) {
	existing, err := e.store.GetTokenBySymbol(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to check token symbol: %w", err)
	}
	if existing != nil {
		return nil, domain.ErrConstraintViolation
	}

	created, err := e.ledger.CreateToken(ctx, name, symbol, totalSupply)
	if err != nil {
		return nil, fmt.Errorf("failed to mint token %s: %w", symbol, err)
	}

	token := &schema.Token{
		Name:          name,
		Symbol:        symbol,
		TotalSupply:   totalSupply,
		LedgerTokenID: &created.LedgerTokenID,
	}
	if created.ContractAddress != "" {
		token.ContractAddress = &created.ContractAddress
	}
	if err := e.store.CreateToken(ctx, token); err != nil {
		return nil, fmt.Errorf("failed to record token %s: %w", symbol, err)
	}
	return token, nil
}

// GetBalance returns the ledger balance a wallet holds for a token
func (e *Engine) GetBalance(ctx context.Context, tokenID int64, walletAddress string) (int64, error) {
	if !domain.ValidWalletAddress(walletAddress) {
		return 0, fmt.Errorf("invalid wallet address %q", walletAddress)
	}
	token, err := e.store.GetToken(ctx, tokenID)
	if err != nil {
		return 0, fmt.Errorf("failed to load token %d: %w", tokenID, err)
	}
	if token == nil {
		return 0, domain.ErrNotFound
	}
	if token.LedgerTokenID == nil || *token.LedgerTokenID == "" {
		return 0, fmt.Errorf("token %q is not ready", token.Symbol)
	}
	return e.ledger.GetBalance(ctx, *token.LedgerTokenID, walletAddress)
}
