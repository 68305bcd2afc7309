package engine

import (
	"context"
	"sync"

	"github.com/dropforge/airdrop-engine/internal/store/schema"
)

// distributedFunc reports the airdrop's committed tokens_distributed counter
type distributedFunc func(ctx context.Context) (int64, error)

// admissionGate serializes the budget check for each airdrop so concurrent
// distributions cannot collectively blow past a campaign cap. A reservation
// holds the event's reward amount until the ledger call settles; the stored
// tokens_distributed counter only moves on commit, and reservations are
// released after that commit, so committed + pending never undercounts the
// tokens in flight.
//
// The committed counter is re-read under the gate's lock on every capped
// admission; a snapshot taken before an earlier event committed must not be
// trusted.
//
// A campaign is admitted while committed + pending reservations are still
// below the cap, so the final admitted event may carry the counter past it.
type admissionGate struct {
	mu      sync.Mutex
	pending map[int64]int64
}

func newAdmissionGate() *admissionGate {
	return &admissionGate{pending: make(map[int64]int64)}
}

// reserve admits an event against the airdrop's remaining budget and records
// an in-flight reservation for it. It returns false when the campaign cap is
// already reached.
func (g *admissionGate) reserve(ctx context.Context, airdrop *schema.Airdrop, amount int64, distributed distributedFunc) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if airdrop.MaxTokens != nil {
		committed, err := distributed(ctx)
		if err != nil {
			return false, err
		}
		if committed+g.pending[airdrop.ID] >= *airdrop.MaxTokens {
			return false, nil
		}
	}
	g.pending[airdrop.ID] += amount
	return true, nil
}

// release drops a reservation without counting it as distributed
func (g *admissionGate) release(airdropID, amount int64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.pending[airdropID] -= amount
	if g.pending[airdropID] <= 0 {
		delete(g.pending, airdropID)
	}
}
