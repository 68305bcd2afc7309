package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropforge/airdrop-engine/internal/store/schema"
)

func cappedAirdrop(id, max int64) *schema.Airdrop {
	a := &schema.Airdrop{}
	a.ID = id
	a.MaxTokens = &max
	return a
}

// counter stands in for the stored tokens_distributed column
type counter struct{ v int64 }

func (c *counter) read(context.Context) (int64, error) { return c.v, nil }

func mustReserve(t *testing.T, g *admissionGate, a *schema.Airdrop, amount int64, c *counter) bool {
	t.Helper()
	admitted, err := g.reserve(context.Background(), a, amount, c.read)
	require.NoError(t, err)
	return admitted
}

func TestGateUncappedAlwaysAdmits(t *testing.T) {
	g := newAdmissionGate()
	a := &schema.Airdrop{}
	a.ID = 1

	for i := 0; i < 100; i++ {
		admitted, err := g.reserve(context.Background(), a, 10, func(context.Context) (int64, error) {
			t.Fatal("uncapped admission must not read the counter")
			return 0, nil
		})
		require.NoError(t, err)
		assert.True(t, admitted)
	}
}

func TestGatePendingReservationsCountAgainstCap(t *testing.T) {
	g := newAdmissionGate()
	a := cappedAirdrop(1, 25)
	c := &counter{}

	// 0+0 < 25, 0+10 < 25, 0+20 < 25: three in-flight reservations admitted
	assert.True(t, mustReserve(t, g, a, 10, c))
	assert.True(t, mustReserve(t, g, a, 10, c))
	assert.True(t, mustReserve(t, g, a, 10, c))

	// 0+30 >= 25: the fourth is denied while the others are in flight
	assert.False(t, mustReserve(t, g, a, 10, c))
}

func TestGateReleaseFreesBudget(t *testing.T) {
	g := newAdmissionGate()
	a := cappedAirdrop(1, 20)
	c := &counter{}

	assert.True(t, mustReserve(t, g, a, 10, c))
	assert.True(t, mustReserve(t, g, a, 10, c))
	assert.False(t, mustReserve(t, g, a, 10, c))

	// A failed distribution returns its reservation
	g.release(a.ID, 10)
	assert.True(t, mustReserve(t, g, a, 10, c))
}

func TestGateDeniesWhenCounterReachedCap(t *testing.T) {
	g := newAdmissionGate()
	assert.False(t, mustReserve(t, g, cappedAirdrop(1, 25), 10, &counter{v: 25}))
	assert.False(t, mustReserve(t, g, cappedAirdrop(2, 25), 10, &counter{v: 30}))
}

func TestGateIgnoresStaleCounterSnapshot(t *testing.T) {
	g := newAdmissionGate()
	c := &counter{v: 15}

	// Both events carry the snapshot taken when the counter stood at 15.
	a := cappedAirdrop(1, 20)
	a.TokensDistributed = 15

	// The first event is admitted, commits past the cap and releases.
	assert.True(t, mustReserve(t, g, a, 10, c))
	c.v = 25
	g.release(a.ID, 10)

	// The second event's struct still says 15; the fresh read says 25.
	assert.False(t, mustReserve(t, g, a, 10, c))
}

func TestGateTracksAirdropsIndependently(t *testing.T) {
	g := newAdmissionGate()
	first := cappedAirdrop(1, 10)
	second := cappedAirdrop(2, 10)
	c := &counter{}

	assert.True(t, mustReserve(t, g, first, 10, c))
	assert.False(t, mustReserve(t, g, first, 10, c))
	assert.True(t, mustReserve(t, g, second, 10, c))
}

func TestGatePropagatesCounterReadError(t *testing.T) {
	g := newAdmissionGate()
	readErr := errors.New("database gone")

	admitted, err := g.reserve(context.Background(), cappedAirdrop(1, 20), 10, func(context.Context) (int64, error) {
		return 0, readErr
	})
	assert.ErrorIs(t, err, readErr)
	assert.False(t, admitted)

	// A failed check leaves no reservation behind
	c := &counter{v: 10}
	assert.True(t, mustReserve(t, g, cappedAirdrop(1, 20), 10, c))
}
