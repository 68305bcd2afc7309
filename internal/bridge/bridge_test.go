package bridge_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropforge/airdrop-engine/internal/adapter"
	"github.com/dropforge/airdrop-engine/internal/bridge"
	"github.com/dropforge/airdrop-engine/internal/domain"
	"github.com/dropforge/airdrop-engine/internal/engine"
	"github.com/dropforge/airdrop-engine/internal/ledger"
	"github.com/dropforge/airdrop-engine/internal/logger"
	"github.com/dropforge/airdrop-engine/internal/messaging"
	"github.com/dropforge/airdrop-engine/internal/mocks"
	"github.com/dropforge/airdrop-engine/internal/oracle"
	"github.com/dropforge/airdrop-engine/internal/store"
	"github.com/dropforge/airdrop-engine/internal/store/schema"
)

func TestMain(m *testing.M) {
	// Initialize logger for tests
	err := logger.Initialize(logger.Config{
		Debug: false,
	})
	if err != nil {
		panic(err)
	}

	code := m.Run()
	os.Exit(code)
}

const (
	watchedContract = "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"
	userWallet      = "0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359"
)

// testBridgeMocks contains all the mocks needed for testing the bridge
type testBridgeMocks struct {
	ctrl     *gomock.Controller
	natsJS   *mocks.MockNatsJetStream
	natsConn *mocks.MockNatsConn
	js       *mocks.MockJetStream
	consumer *mocks.MockNatsConsumer
	consume  *mocks.MockConsumeContext
	ledger   *mocks.MockLedger
	oracle   *mocks.MockOracle
	store    store.Store
	engine   *engine.Engine
}

// setupTestBridge creates all the mocks and an engine over an in-memory store
func setupTestBridge(t *testing.T) *testBridgeMocks {
	ctrl := gomock.NewController(t)

	tm := &testBridgeMocks{
		ctrl:     ctrl,
		natsJS:   mocks.NewMockNatsJetStream(ctrl),
		natsConn: mocks.NewMockNatsConn(ctrl),
		js:       mocks.NewMockJetStream(ctrl),
		consumer: mocks.NewMockNatsConsumer(ctrl),
		consume:  mocks.NewMockConsumeContext(ctrl),
		ledger:   mocks.NewMockLedger(ctrl),
		oracle:   mocks.NewMockOracle(ctrl),
		store:    store.NewMemStore(adapter.NewClock()),
	}
	tm.engine = engine.New(tm.store, tm.ledger, tm.oracle, adapter.NewClock())
	return tm
}

func testConfig() bridge.Config {
	return bridge.Config{
		URL:            "nats://localhost:4222",
		StreamName:     "AIRDROP_EVENTS",
		ConsumerName:   "event-bridge",
		MaxReconnects:  10,
		ReconnectWait:  time.Second,
		ConnectionName: "test-bridge",
		AckWaitTimeout: 30 * time.Second,
		MaxDeliver:     3,
	}
}

// seedCampaign creates a ready token plus a live airdrop watching the contract
func seedCampaign(t *testing.T, s store.Store) {
	t.Helper()
	ctx := context.Background()

	id := "ledger-1"
	token := &schema.Token{
		Name:          "DropForge Token",
		Symbol:        "FORGE",
		TotalSupply:   1000000,
		LedgerTokenID: &id,
	}
	require.NoError(t, s.CreateToken(ctx, token))

	contract := watchedContract
	require.NoError(t, s.CreateAirdrop(ctx, &schema.Airdrop{
		Name:            "launch-drop",
		TokenID:         token.ID,
		TriggerType:     domain.TriggerContract,
		ContractAddress: &contract,
		TokenAmount:     10,
		StartDate:       time.Now().Add(-time.Hour),
		Active:          true,
	}))
}

func newTestBridge(t *testing.T, tm *testBridgeMocks) bridge.Bridge {
	t.Helper()
	tm.natsJS.EXPECT().
		Connect(testConfig().URL, gomock.Any()).
		Return(tm.natsConn, tm.js, nil)

	b, err := bridge.NewBridge(testConfig(), tm.natsJS, tm.engine, adapter.NewJSON())
	require.NoError(t, err)
	return b
}

// runBridge starts Run with a captured message handler and returns a deliver
// function plus a cancel that waits for Run to exit
func runBridge(t *testing.T, tm *testBridgeMocks, b bridge.Bridge) (func(adapter.Message), func()) {
	t.Helper()

	handlerCh := make(chan adapter.MessageHandler, 1)
	tm.js.EXPECT().
		CreateOrUpdateConsumer(gomock.Any(), "AIRDROP_EVENTS", gomock.Any()).
		DoAndReturn(func(ctx context.Context, stream string, cfg jetstream.ConsumerConfig) (adapter.Consumer, error) {
			assert.Equal(t, "event-bridge", cfg.Durable)
			assert.Equal(t, jetstream.AckExplicitPolicy, cfg.AckPolicy)
			assert.Equal(t, messaging.SubjectWildcard, cfg.FilterSubject)
			return tm.consumer, nil
		})
	tm.consumer.EXPECT().
		Info(gomock.Any()).
		Return(&jetstream.ConsumerInfo{Name: "event-bridge"}, nil)
	tm.consumer.EXPECT().
		Consume(gomock.Any()).
		DoAndReturn(func(handler adapter.MessageHandler, opts ...jetstream.PullConsumeOpt) (adapter.ConsumeContext, error) {
			handlerCh <- handler
			return tm.consume, nil
		})
	tm.consume.EXPECT().Stop()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- b.Run(ctx) }()

	var handler adapter.MessageHandler
	select {
	case handler = <-handlerCh:
	case <-time.After(time.Second):
		t.Fatal("consumer never started")
	}

	return func(msg adapter.Message) { handler(msg) }, func() {
		cancel()
		assert.ErrorIs(t, <-done, context.Canceled)
	}
}

func contractEventPayload(t *testing.T) []byte {
	t.Helper()
	raw, err := adapter.NewJSON().Marshal(&domain.ContractEvent{
		ContractAddress: watchedContract,
		UserAddress:     userWallet,
		EventName:       "Transfer",
		TxHash:          "0xabc",
		Timestamp:       time.Now(),
	})
	require.NoError(t, err)
	return raw
}

func TestNewBridgeConnectError(t *testing.T) {
	tm := setupTestBridge(t)

	tm.natsJS.EXPECT().
		Connect(gomock.Any(), gomock.Any()).
		Return(nil, nil, errors.New("connection refused"))

	_, err := bridge.NewBridge(testConfig(), tm.natsJS, tm.engine, adapter.NewJSON())
	assert.Error(t, err)
}

func TestRunProcessesContractEvent(t *testing.T) {
	tm := setupTestBridge(t)
	seedCampaign(t, tm.store)
	b := newTestBridge(t, tm)

	tm.oracle.EXPECT().
		EvaluateContractInteraction(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&oracle.Verdict{Eligible: true}, nil)
	tm.ledger.EXPECT().
		Distribute(gomock.Any(), "ledger-1", userWallet, int64(10)).
		Return(&ledger.DistributionResult{Success: true, TxHash: "0xdef"}, nil)

	deliver, shutdown := runBridge(t, tm, b)

	acked := make(chan struct{})
	msg := mocks.NewMockJetStreamMessage(tm.ctrl)
	msg.EXPECT().Subject().Return(messaging.SubjectContract).AnyTimes()
	msg.EXPECT().Data().Return(contractEventPayload(t))
	msg.EXPECT().Metadata().Return(&jetstream.MsgMetadata{NumDelivered: 1}, nil)
	msg.EXPECT().Ack().DoAndReturn(func() error {
		close(acked)
		return nil
	})

	deliver(msg)
	select {
	case <-acked:
	case <-time.After(time.Second):
		t.Fatal("message was never acked")
	}
	shutdown()

	// The distribution landed in the audit trail
	activities, err := tm.store.ListActivities(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, activities, 1)
	assert.Equal(t, domain.ActivityCompleted, activities[0].Status)
}

func TestRunTerminatesMalformedEvent(t *testing.T) {
	tm := setupTestBridge(t)
	b := newTestBridge(t, tm)
	deliver, shutdown := runBridge(t, tm, b)

	termed := make(chan struct{})
	msg := mocks.NewMockJetStreamMessage(tm.ctrl)
	msg.EXPECT().Subject().Return(messaging.SubjectContract).AnyTimes()
	msg.EXPECT().Data().Return([]byte(`{"contract_address":"bogus"}`))
	msg.EXPECT().Metadata().Return(&jetstream.MsgMetadata{NumDelivered: 1}, nil)
	msg.EXPECT().Term().DoAndReturn(func() error {
		close(termed)
		return nil
	})

	deliver(msg)
	select {
	case <-termed:
	case <-time.After(time.Second):
		t.Fatal("message was never terminated")
	}
	shutdown()
}

func TestRunTerminatesUnknownSubject(t *testing.T) {
	tm := setupTestBridge(t)
	b := newTestBridge(t, tm)
	deliver, shutdown := runBridge(t, tm, b)

	termed := make(chan struct{})
	msg := mocks.NewMockJetStreamMessage(tm.ctrl)
	msg.EXPECT().Subject().Return("interactions.telegram").AnyTimes()
	msg.EXPECT().Metadata().Return(&jetstream.MsgMetadata{NumDelivered: 1}, nil)
	msg.EXPECT().Term().DoAndReturn(func() error {
		close(termed)
		return nil
	})

	deliver(msg)
	select {
	case <-termed:
	case <-time.After(time.Second):
		t.Fatal("message was never terminated")
	}
	shutdown()
}

func TestRunTerminatesMalformedSocialEvent(t *testing.T) {
	tm := setupTestBridge(t)
	b := newTestBridge(t, tm)
	deliver, shutdown := runBridge(t, tm, b)

	// An unknown interaction kind is a poison message on the social subject
	// just as a bogus address is on the contract subject; redelivery cannot
	// repair it
	raw, err := adapter.NewJSON().Marshal(&domain.SocialEvent{
		UserHandle:   "@alice",
		ClientHandle: "@dropforge",
		Interaction:  domain.InteractionKind("quote"),
	})
	require.NoError(t, err)

	termed := make(chan struct{})
	msg := mocks.NewMockJetStreamMessage(tm.ctrl)
	msg.EXPECT().Subject().Return(messaging.SubjectSocial).AnyTimes()
	msg.EXPECT().Data().Return(raw)
	msg.EXPECT().Metadata().Return(&jetstream.MsgMetadata{NumDelivered: 1}, nil)
	msg.EXPECT().Term().DoAndReturn(func() error {
		close(termed)
		return nil
	})

	deliver(msg)
	select {
	case <-termed:
	case <-time.After(time.Second):
		t.Fatal("message was never terminated")
	}
	shutdown()
}

// failingStore simulates a storage outage for the campaign lookup
type failingStore struct{ store.Store }

func (s *failingStore) ListActiveAirdrops(context.Context) ([]schema.AirdropWithToken, error) {
	return nil, errors.New("database gone")
}

func TestRunNaksOnEngineError(t *testing.T) {
	tm := setupTestBridge(t)
	tm.engine = engine.New(&failingStore{Store: tm.store}, tm.ledger, tm.oracle, adapter.NewClock())
	b := newTestBridge(t, tm)
	deliver, shutdown := runBridge(t, tm, b)

	// A well-formed event failing on a transient engine error is requeued
	// and JetStream drops it once MaxDeliver is reached
	naked := make(chan struct{})
	msg := mocks.NewMockJetStreamMessage(tm.ctrl)
	msg.EXPECT().Subject().Return(messaging.SubjectContract).AnyTimes()
	msg.EXPECT().Data().Return(contractEventPayload(t))
	msg.EXPECT().Metadata().Return(&jetstream.MsgMetadata{NumDelivered: 1}, nil)
	msg.EXPECT().Nak().DoAndReturn(func() error {
		close(naked)
		return nil
	})

	deliver(msg)
	select {
	case <-naked:
	case <-time.After(time.Second):
		t.Fatal("message was never naked")
	}
	shutdown()
}

func TestRunConsumerCreationError(t *testing.T) {
	tm := setupTestBridge(t)
	b := newTestBridge(t, tm)

	tm.js.EXPECT().
		CreateOrUpdateConsumer(gomock.Any(), "AIRDROP_EVENTS", gomock.Any()).
		Return(nil, errors.New("stream not found"))

	err := b.Run(context.Background())
	assert.ErrorContains(t, err, "consumer")
}
