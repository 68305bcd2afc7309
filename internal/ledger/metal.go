package ledger

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dropforge/airdrop-engine/internal/adapter"
	"github.com/dropforge/airdrop-engine/internal/domain"
	"github.com/dropforge/airdrop-engine/internal/logger"

	"go.uber.org/zap"
)

// MetalLedger implements Ledger against the Metal token API
type MetalLedger struct {
	baseURL      string
	apiKey       string
	pollInterval time.Duration
	pollAttempts int
	timeout      time.Duration
	client       adapter.HTTPClient
	json         adapter.JSON
	clock        adapter.Clock
}

// NewMetalLedger creates a ledger client against the Metal API
func NewMetalLedger(
	baseURL, apiKey string,
	pollInterval time.Duration,
	pollAttempts int,
	timeout time.Duration,
	client adapter.HTTPClient,
	json adapter.JSON,
	clock adapter.Clock,
) *MetalLedger {
	return &MetalLedger{
		baseURL:      strings.TrimRight(baseURL, "/"),
		apiKey:       apiKey,
		pollInterval: pollInterval,
		pollAttempts: pollAttempts,
		timeout:      timeout,
		client:       client,
		json:         json,
		clock:        clock,
	}
}

func (l *MetalLedger) headers() map[string]string {
	return map[string]string{
		"x-api-key":    l.apiKey,
		"Content-Type": "application/json",
	}
}

type createTokenRequest struct {
	Name          string `json:"name"`
	Symbol        string `json:"symbol"`
	TotalSupply   int64  `json:"totalSupply"`
	CanDistribute bool   `json:"canDistribute"`
}

type createTokenResponse struct {
	JobID string `json:"jobId"`
}

type jobStatusResponse struct {
	Status string `json:"status"`
	Data   struct {
		ID      string `json:"id"`
		Address string `json:"address"`
	} `json:"data"`
}

// CreateToken submits a mint job and polls its status until the ledger
// reports success, the attempt budget runs out, or the context is cancelled.
func (l *MetalLedger) CreateToken(ctx context.Context, name, symbol string, totalSupply int64) (*CreatedToken, error) {
	payload, err := l.json.Marshal(createTokenRequest{
		Name:          name,
		Symbol:        symbol,
		TotalSupply:   totalSupply,
		CanDistribute: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode create-token request: %w", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, l.timeout)
	raw, err := l.client.Post(reqCtx, l.baseURL+"/merchant/create-token", l.headers(), bytes.NewReader(payload))
	cancel()
	if err != nil {
		return nil, fmt.Errorf("failed to submit create-token job: %w", err)
	}

	var created createTokenResponse
	if err := l.json.Unmarshal(raw, &created); err != nil {
		return nil, fmt.Errorf("failed to decode create-token response: %w", err)
	}
	if created.JobID == "" {
		return nil, fmt.Errorf("ledger returned no job id for token %s", symbol)
	}

	return l.pollCreateToken(ctx, created.JobID, symbol)
}

func (l *MetalLedger) pollCreateToken(ctx context.Context, jobID, symbol string) (*CreatedToken, error) {
	statusURL := fmt.Sprintf("%s/merchant/create-token/status/%s", l.baseURL, jobID)

	for attempt := 1; attempt <= l.pollAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		var status jobStatusResponse
		reqCtx, cancel := context.WithTimeout(ctx, l.timeout)
		err := l.client.Get(reqCtx, statusURL, l.headers(), &status)
		cancel()
		if err != nil {
			logger.WarnCtx(ctx, "ledger job status check failed",
				zap.String("job_id", jobID),
				zap.Int("attempt", attempt),
				zap.Error(err))
		} else {
			switch strings.ToLower(status.Status) {
			case "success", "completed":
				if status.Data.ID == "" {
					return nil, fmt.Errorf("ledger job %s completed without a token id", jobID)
				}
				return &CreatedToken{
					LedgerTokenID:   status.Data.ID,
					ContractAddress: status.Data.Address,
				}, nil
			case "failed", "error":
				return nil, fmt.Errorf("%w: job %s for token %s", domain.ErrLedgerJobFailed, jobID, symbol)
			}
		}

		l.clock.Sleep(l.pollInterval)
	}

	return nil, fmt.Errorf("%w: job %s for token %s after %d attempts",
		domain.ErrLedgerTimeout, jobID, symbol, l.pollAttempts)
}

type distributeRequest struct {
	SendToAddress string `json:"sendToAddress"`
	Amount        int64  `json:"amount"`
}

type distributeResponse struct {
	Success bool   `json:"success"`
	TxHash  string `json:"transactionHash"`
	Error   string `json:"error"`
}

// Distribute sends amount tokens to the given wallet address
func (l *MetalLedger) Distribute(ctx context.Context, ledgerTokenID, walletAddress string, amount int64) (*DistributionResult, error) {
	payload, err := l.json.Marshal(distributeRequest{
		SendToAddress: walletAddress,
		Amount:        amount,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode distribute request: %w", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	url := fmt.Sprintf("%s/token/%s/distribute", l.baseURL, ledgerTokenID)
	raw, err := l.client.Post(reqCtx, url, l.headers(), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to distribute tokens: %w", err)
	}

	var resp distributeResponse
	if err := l.json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode distribute response: %w", err)
	}

	return &DistributionResult{Success: resp.Success, TxHash: resp.TxHash, Error: resp.Error}, nil
}

type holderResponse struct {
	Balance int64 `json:"balance"`
}

// GetBalance returns the token balance held by a wallet address
func (l *MetalLedger) GetBalance(ctx context.Context, ledgerTokenID, walletAddress string) (int64, error) {
	reqCtx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	url := fmt.Sprintf("%s/token/%s/holder/%s", l.baseURL, ledgerTokenID, walletAddress)
	var resp holderResponse
	if err := l.client.Get(reqCtx, url, l.headers(), &resp); err != nil {
		return 0, fmt.Errorf("failed to fetch holder balance: %w", err)
	}
	return resp.Balance, nil
}
