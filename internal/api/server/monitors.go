package server

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dropforge/airdrop-engine/internal/engine"
	"github.com/dropforge/airdrop-engine/internal/feeds"
	"github.com/dropforge/airdrop-engine/internal/logger"
	"github.com/dropforge/airdrop-engine/internal/monitor"
	"github.com/dropforge/airdrop-engine/internal/store/schema"
)

// CampaignMonitors polls the X feed for each active x_account campaign and
// feeds every observed interaction through the engine. Contract campaigns
// need no poller here: their events arrive through the emitter and bridge.
type CampaignMonitors struct {
	manager  *monitor.Manager
	feed     feeds.SocialEventFeed
	engine   *engine.Engine
	interval time.Duration

	mu      sync.Mutex
	cursors map[int64]string
}

// NewCampaignMonitors creates the campaign monitor controller
func NewCampaignMonitors(manager *monitor.Manager, feed feeds.SocialEventFeed, eng *engine.Engine, interval time.Duration) *CampaignMonitors {
	return &CampaignMonitors{
		manager:  manager,
		feed:     feed,
		engine:   eng,
		interval: interval,
		cursors:  make(map[int64]string),
	}
}

func monitorKey(airdropID int64) string {
	return fmt.Sprintf("airdrop:%d", airdropID)
}

// StartAirdropMonitor begins polling X for an airdrop's watched account.
// Starting an already-monitored airdrop is a no-op.
func (m *CampaignMonitors) StartAirdropMonitor(ctx context.Context, airdrop *schema.Airdrop) {
	if m.feed == nil {
		return
	}
	if !airdrop.TriggerType.IncludesXAccount() || airdrop.XAccount == nil {
		return
	}

	airdropID := airdrop.ID
	account := *airdrop.XAccount

	m.manager.Start(ctx, monitorKey(airdropID), m.interval, func(tickCtx context.Context) error {
		return m.poll(tickCtx, airdropID, account)
	})
}

// StopAirdropMonitor stops polling for an airdrop
func (m *CampaignMonitors) StopAirdropMonitor(airdropID int64) {
	m.manager.Stop(monitorKey(airdropID))

	m.mu.Lock()
	delete(m.cursors, airdropID)
	m.mu.Unlock()
}

// poll fetches interactions newer than the airdrop's cursor and submits each
// one to the engine
func (m *CampaignMonitors) poll(ctx context.Context, airdropID int64, account string) error {
	m.mu.Lock()
	cursor := m.cursors[airdropID]
	m.mu.Unlock()

	events, next, err := m.feed.FetchInteractions(ctx, account, cursor)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.cursors[airdropID] = next
	m.mu.Unlock()

	for i := range events {
		event := events[i]
		result, err := m.engine.SubmitSocialInteraction(ctx, &event)
		if err != nil {
			logger.ErrorCtx(ctx, err,
				zap.String("message", "Failed to process polled interaction"),
				zap.Int64("airdrop_id", airdropID),
				zap.String("user_handle", event.UserHandle))
			continue
		}
		logger.DebugCtx(ctx, "Polled interaction processed",
			zap.Int64("airdrop_id", airdropID),
			zap.Bool("distributed", result.Success),
			zap.String("outcome", result.Message))
	}
	return nil
}

// Resume starts monitors for every live campaign already in the store
func (m *CampaignMonitors) Resume(ctx context.Context, airdrops []schema.AirdropWithToken) {
	for i := range airdrops {
		m.StartAirdropMonitor(ctx, &airdrops[i].Airdrop)
	}
}
