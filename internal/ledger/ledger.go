// Package ledger talks to the external token ledger that mints and moves
// tokens on behalf of the engine. Token creation is asynchronous on the
// ledger side, so CreateToken polls a job until it completes.
package ledger

import (
	"context"
)

//go:generate mockgen -source=ledger.go -destination=../mocks/ledger_mock.go -package=mocks

// CreatedToken describes a token the ledger finished minting
type CreatedToken struct {
	LedgerTokenID   string
	ContractAddress string
}

// DistributionResult is the outcome of a single token transfer. On failure
// Error carries the provider's reason and TxHash any settlement reference the
// provider still reported.
type DistributionResult struct {
	Success bool
	TxHash  string
	Error   string
}

// Ledger is the external token custody and distribution service
type Ledger interface {
	// CreateToken mints a new token and waits for the ledger job to finish
	CreateToken(ctx context.Context, name, symbol string, totalSupply int64) (*CreatedToken, error)

	// Distribute sends amount tokens to the given wallet address
	Distribute(ctx context.Context, ledgerTokenID, walletAddress string, amount int64) (*DistributionResult, error)

	// GetBalance returns the token balance held by a wallet address
	GetBalance(ctx context.Context, ledgerTokenID, walletAddress string) (int64, error)
}
