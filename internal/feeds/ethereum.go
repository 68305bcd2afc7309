package feeds

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"

	"github.com/dropforge/airdrop-engine/internal/adapter"
	"github.com/dropforge/airdrop-engine/internal/domain"
	"github.com/dropforge/airdrop-engine/internal/logger"
)

// EthereumConfig holds the configuration for the Ethereum contract feed
type EthereumConfig struct {
	WebSocketURL string
	// Addresses restricts the subscription to the given contracts.
	// Empty means all contracts.
	Addresses []string
}

type ethFeed struct {
	client    adapter.EthClient
	addresses []common.Address
	clock     adapter.Clock
}

// Recognized event signatures. Logs with other signatures still flow
// through, keyed by their raw topic hash, so campaigns filtering on "any"
// see every interaction with a watched contract.
var (
	transferEventSignature = crypto.Keccak256Hash([]byte("Transfer(address,address,uint256)"))
	approvalEventSignature = crypto.Keccak256Hash([]byte("Approval(address,address,uint256)"))
	mintEventSignature     = crypto.Keccak256Hash([]byte("Mint(address,uint256)"))
)

var eventNames = map[common.Hash]string{
	transferEventSignature: "transfer",
	approvalEventSignature: "approval",
	mintEventSignature:     "mint",
}

// NewEthereumFeed creates a contract event feed backed by an Ethereum node
func NewEthereumFeed(cfg EthereumConfig, client adapter.EthClient, clock adapter.Clock) ContractEventFeed {
	addresses := make([]common.Address, 0, len(cfg.Addresses))
	for _, a := range cfg.Addresses {
		if common.IsHexAddress(a) {
			addresses = append(addresses, common.HexToAddress(a))
		}
	}
	return &ethFeed{client: client, addresses: addresses, clock: clock}
}

// SubscribeEvents subscribes to contract logs and normalizes each one
func (f *ethFeed) SubscribeEvents(ctx context.Context, fromBlock uint64, handler ContractEventHandler) error {
	query := ethereum.FilterQuery{
		Addresses: f.addresses,
	}
	if fromBlock > 0 {
		query.FromBlock = new(big.Int).SetUint64(fromBlock)
	}

	logs := make(chan types.Log)
	sub, err := f.client.SubscribeFilterLogs(ctx, query, logs)
	if err != nil {
		return fmt.Errorf("failed to subscribe to filter logs: %w", err)
	}
	defer func() {
		logger.InfoCtx(ctx, "Unsubscribing from contract logs")
		sub.Unsubscribe()
		logger.InfoCtx(ctx, "Unsubscribed from contract logs")
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-sub.Err():
			return fmt.Errorf("subscription error: %w", err)
		case vLog := <-logs:
			event, err := f.parseLog(vLog)
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.ErrorCtx(ctx, err, zap.String("message", "Error parsing log"))
				continue
			}
			if event == nil {
				continue
			}
			if err := handler(event); err != nil {
				logger.ErrorCtx(ctx, err, zap.String("message", "Error handling event"))
			}
		}
	}
}

// parseLog normalizes a raw log into a contract event. Logs without an
// extractable user address are skipped.
func (f *ethFeed) parseLog(vLog types.Log) (*domain.ContractEvent, error) {
	if len(vLog.Topics) == 0 {
		return nil, nil
	}

	name, known := eventNames[vLog.Topics[0]]
	if !known {
		name = vLog.Topics[0].Hex()
	}

	user := extractUserAddress(vLog)
	if user == (common.Address{}) {
		return nil, nil
	}

	return &domain.ContractEvent{
		ContractAddress: vLog.Address.String(),
		UserAddress:     user.String(),
		EventName:       name,
		EventData: map[string]any{
			"log_index": vLog.Index,
			"topics":    len(vLog.Topics),
		},
		TxHash:      vLog.TxHash.Hex(),
		BlockNumber: vLog.BlockNumber,
		Timestamp:   f.clock.Now().UTC(),
	}, nil
}

// extractUserAddress pulls the acting wallet out of the log's indexed
// topics. Transfers credit the recipient; everything else credits the first
// indexed address.
func extractUserAddress(vLog types.Log) common.Address {
	switch {
	case vLog.Topics[0] == transferEventSignature && len(vLog.Topics) >= 3:
		return common.BytesToAddress(vLog.Topics[2].Bytes())
	case len(vLog.Topics) >= 2:
		return common.BytesToAddress(vLog.Topics[1].Bytes())
	default:
		return common.Address{}
	}
}

// GetLatestBlock returns the latest block number
func (f *ethFeed) GetLatestBlock(ctx context.Context) (uint64, error) {
	header, err := f.client.HeaderByNumber(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to get latest block: %w", err)
	}
	return header.Number.Uint64(), nil
}

// Close closes the connection
func (f *ethFeed) Close() {
	if f.client == nil {
		return
	}

	f.client.Close()
	logger.Info("Ethereum WebSocket connection closed")
}
