package domain

import (
	"regexp"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// TriggerType determines which event source(s) an airdrop listens to.
type TriggerType string

const (
	TriggerContract TriggerType = "contract"
	TriggerXAccount TriggerType = "x_account"
	TriggerBoth     TriggerType = "both"
)

// IsValidTriggerType checks if a trigger type is valid
func IsValidTriggerType(t TriggerType) bool {
	return t == TriggerContract || t == TriggerXAccount || t == TriggerBoth
}

// IncludesContract reports whether the trigger type reacts to contract events
func (t TriggerType) IncludesContract() bool {
	return t == TriggerContract || t == TriggerBoth
}

// IncludesXAccount reports whether the trigger type reacts to X account events
func (t TriggerType) IncludesXAccount() bool {
	return t == TriggerXAccount || t == TriggerBoth
}

// InteractionKind is a specific X account interaction
type InteractionKind string

const (
	InteractionLike    InteractionKind = "like"
	InteractionRetweet InteractionKind = "retweet"
	InteractionComment InteractionKind = "comment"
	InteractionFollow  InteractionKind = "follow"
)

// IsValidInteractionKind checks if an interaction kind is valid
func IsValidInteractionKind(k InteractionKind) bool {
	return k == InteractionLike || k == InteractionRetweet ||
		k == InteractionComment || k == InteractionFollow
}

// EventType represents the channel an audited event arrived on
type EventType string

const (
	EventTypeContractInteraction EventType = "contract_interaction"
	EventTypeXAccountInteraction EventType = "x_account_interaction"
)

// ActivityStatus is the terminal status of a distribution attempt
type ActivityStatus string

const (
	ActivityCompleted  ActivityStatus = "completed"
	ActivityProcessing ActivityStatus = "processing"
	ActivityFailed     ActivityStatus = "failed"
)

// InteractionTypeAny matches every contract event name in an airdrop filter
const InteractionTypeAny = "any"

// ContractEvent is a normalized on-chain interaction.
// This is the standard format published to NATS by the contract event emitter.
type ContractEvent struct {
	ContractAddress string         `json:"contract_address"`
	UserAddress     string         `json:"user_address"`
	EventName       string         `json:"event_name"`
	EventData       map[string]any `json:"event_data,omitempty"`
	TxHash          string         `json:"tx_hash,omitempty"`
	BlockNumber     uint64         `json:"block_number,omitempty"`
	Timestamp       time.Time      `json:"timestamp"`
}

// Valid checks that the event carries well-formed addresses and an event name
func (e *ContractEvent) Valid() bool {
	return ValidWalletAddress(e.ContractAddress) &&
		ValidWalletAddress(e.UserAddress) &&
		e.EventName != ""
}

// SocialEvent is a normalized X account interaction
type SocialEvent struct {
	UserHandle   string          `json:"user_handle"`
	ClientHandle string          `json:"client_handle"`
	Interaction  InteractionKind `json:"interaction"`
	PostID       string          `json:"post_id,omitempty"`
	Details      map[string]any  `json:"details,omitempty"`
	Timestamp    time.Time       `json:"timestamp"`
}

// Valid checks that both handles are well-formed and the kind is known
func (e *SocialEvent) Valid() bool {
	return ValidXHandle(e.UserHandle) &&
		ValidXHandle(e.ClientHandle) &&
		IsValidInteractionKind(e.Interaction)
}

// XInteractionConfig is the per-kind toggle set for x_account airdrops
type XInteractionConfig struct {
	Like    bool `json:"like"`
	Retweet bool `json:"retweet"`
	Comment bool `json:"comment"`
	Follow  bool `json:"follow"`
}

// Allows reports whether the given interaction kind is enabled
func (c XInteractionConfig) Allows(kind InteractionKind) bool {
	switch kind {
	case InteractionLike:
		return c.Like
	case InteractionRetweet:
		return c.Retweet
	case InteractionComment:
		return c.Comment
	case InteractionFollow:
		return c.Follow
	default:
		return false
	}
}

var (
	walletAddressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)
	xHandlePattern       = regexp.MustCompile(`^@[A-Za-z0-9_]{1,15}$`)
)

// ValidWalletAddress reports whether address is a 0x-prefixed 40-hex-digit wallet address
func ValidWalletAddress(address string) bool {
	return walletAddressPattern.MatchString(address)
}

// NormalizeAddress normalizes an Ethereum address to its EIP-55 checksum form
func NormalizeAddress(address string) string {
	if !common.IsHexAddress(address) {
		return address
	}
	return common.HexToAddress(address).String()
}

// ValidXHandle reports whether handle is a normalized, well-formed X handle
func ValidXHandle(handle string) bool {
	return xHandlePattern.MatchString(handle)
}

// NormalizeHandle ensures a handle carries a single leading @
func NormalizeHandle(handle string) string {
	if handle == "" {
		return ""
	}
	if strings.HasPrefix(handle, "@") {
		return handle
	}
	return "@" + handle
}
