package ledger_test

import (
	"context"
	"errors"
	"io"
	"os"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropforge/airdrop-engine/internal/adapter"
	"github.com/dropforge/airdrop-engine/internal/domain"
	"github.com/dropforge/airdrop-engine/internal/ledger"
	"github.com/dropforge/airdrop-engine/internal/logger"
	"github.com/dropforge/airdrop-engine/internal/mocks"
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
	baseURL = "https://api.metal.build"
	wallet  = "0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359"
)

type testLedgerMocks struct {
	ctrl   *gomock.Controller
	client *mocks.MockHTTPClient
	clock  *mocks.MockClock
	ledger *ledger.MetalLedger
}

func setupTestLedger(t *testing.T, pollAttempts int) *testLedgerMocks {
	ctrl := gomock.NewController(t)

	tm := &testLedgerMocks{
		ctrl:   ctrl,
		client: mocks.NewMockHTTPClient(ctrl),
		clock:  mocks.NewMockClock(ctrl),
	}
	tm.clock.EXPECT().Sleep(gomock.Any()).AnyTimes()
	tm.ledger = ledger.NewMetalLedger(
		baseURL,
		"test-key",
		time.Second,
		pollAttempts,
		5*time.Second,
		tm.client,
		adapter.NewJSON(),
		tm.clock,
	)
	return tm
}

func jobStatus(status, id, address string) func(ctx context.Context, url string, headers map[string]string, result any) error {
	return func(ctx context.Context, url string, headers map[string]string, result any) error {
		raw := []byte(`{"status":"` + status + `","data":{"id":"` + id + `","address":"` + address + `"}}`)
		return adapter.NewJSON().Unmarshal(raw, result)
	}
}

func TestCreateTokenPollsUntilSuccess(t *testing.T) {
	tm := setupTestLedger(t, 10)
	ctx := context.Background()

	tm.client.EXPECT().
		Post(gomock.Any(), baseURL+"/merchant/create-token", gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, url string, headers map[string]string, body io.Reader) ([]byte, error) {
			assert.Equal(t, "test-key", headers["x-api-key"])
			return []byte(`{"jobId":"job-1"}`), nil
		})

	statusURL := baseURL + "/merchant/create-token/status/job-1"
	gomock.InOrder(
		tm.client.EXPECT().
			Get(gomock.Any(), statusURL, gomock.Any(), gomock.Any()).
			DoAndReturn(jobStatus("pending", "", "")),
		tm.client.EXPECT().
			Get(gomock.Any(), statusURL, gomock.Any(), gomock.Any()).
			DoAndReturn(jobStatus("pending", "", "")),
		tm.client.EXPECT().
			Get(gomock.Any(), statusURL, gomock.Any(), gomock.Any()).
			DoAndReturn(jobStatus("success", "ledger-1", "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed")),
	)

	created, err := tm.ledger.CreateToken(ctx, "DropForge Token", "FORGE", 1000000)
	require.NoError(t, err)
	assert.Equal(t, "ledger-1", created.LedgerTokenID)
	assert.Equal(t, "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", created.ContractAddress)
}

func TestCreateTokenJobFailed(t *testing.T) {
	tm := setupTestLedger(t, 10)
	ctx := context.Background()

	tm.client.EXPECT().
		Post(gomock.Any(), baseURL+"/merchant/create-token", gomock.Any(), gomock.Any()).
		Return([]byte(`{"jobId":"job-1"}`), nil)
	tm.client.EXPECT().
		Get(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(jobStatus("failed", "", ""))

	_, err := tm.ledger.CreateToken(ctx, "DropForge Token", "FORGE", 1000000)
	assert.ErrorIs(t, err, domain.ErrLedgerJobFailed)
}

func TestCreateTokenTimesOut(t *testing.T) {
	tm := setupTestLedger(t, 3)
	ctx := context.Background()

	tm.client.EXPECT().
		Post(gomock.Any(), baseURL+"/merchant/create-token", gomock.Any(), gomock.Any()).
		Return([]byte(`{"jobId":"job-1"}`), nil)
	tm.client.EXPECT().
		Get(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(jobStatus("pending", "", "")).
		Times(3)

	_, err := tm.ledger.CreateToken(ctx, "DropForge Token", "FORGE", 1000000)
	assert.ErrorIs(t, err, domain.ErrLedgerTimeout)
}

func TestCreateTokenToleratesStatusCheckErrors(t *testing.T) {
	tm := setupTestLedger(t, 10)
	ctx := context.Background()

	tm.client.EXPECT().
		Post(gomock.Any(), baseURL+"/merchant/create-token", gomock.Any(), gomock.Any()).
		Return([]byte(`{"jobId":"job-1"}`), nil)
	gomock.InOrder(
		tm.client.EXPECT().
			Get(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(errors.New("503 service unavailable")),
		tm.client.EXPECT().
			Get(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(jobStatus("completed", "ledger-1", "")),
	)

	created, err := tm.ledger.CreateToken(ctx, "DropForge Token", "FORGE", 1000000)
	require.NoError(t, err)
	assert.Equal(t, "ledger-1", created.LedgerTokenID)
}

func TestCreateTokenNoJobID(t *testing.T) {
	tm := setupTestLedger(t, 10)

	tm.client.EXPECT().
		Post(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]byte(`{}`), nil)

	_, err := tm.ledger.CreateToken(context.Background(), "DropForge Token", "FORGE", 1000000)
	assert.Error(t, err)
}

func TestCreateTokenSubmitError(t *testing.T) {
	tm := setupTestLedger(t, 10)

	tm.client.EXPECT().
		Post(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, errors.New("connection refused"))

	_, err := tm.ledger.CreateToken(context.Background(), "DropForge Token", "FORGE", 1000000)
	assert.Error(t, err)
}

func TestDistribute(t *testing.T) {
	tm := setupTestLedger(t, 10)

	tm.client.EXPECT().
		Post(gomock.Any(), baseURL+"/token/ledger-1/distribute", gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, url string, headers map[string]string, body io.Reader) ([]byte, error) {
			payload, err := io.ReadAll(body)
			require.NoError(t, err)
			assert.JSONEq(t, `{"sendToAddress":"`+wallet+`","amount":10}`, string(payload))
			return []byte(`{"success":true,"transactionHash":"0xabc"}`), nil
		})

	result, err := tm.ledger.Distribute(context.Background(), "ledger-1", wallet, 10)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "0xabc", result.TxHash)
}

func TestDistributeProviderFailure(t *testing.T) {
	tm := setupTestLedger(t, 10)

	tm.client.EXPECT().
		Post(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]byte(`{"success":false,"transactionHash":"0xdead","error":"insufficient treasury balance"}`), nil)

	// The provider's reason and settlement reference survive into the result
	result, err := tm.ledger.Distribute(context.Background(), "ledger-1", wallet, 10)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "0xdead", result.TxHash)
	assert.Equal(t, "insufficient treasury balance", result.Error)
}

func TestDistributeError(t *testing.T) {
	tm := setupTestLedger(t, 10)

	tm.client.EXPECT().
		Post(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, errors.New("502 bad gateway"))

	_, err := tm.ledger.Distribute(context.Background(), "ledger-1", wallet, 10)
	assert.Error(t, err)
}

func TestGetBalance(t *testing.T) {
	tm := setupTestLedger(t, 10)

	tm.client.EXPECT().
		Get(gomock.Any(), baseURL+"/token/ledger-1/holder/"+wallet, gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, url string, headers map[string]string, result any) error {
			return adapter.NewJSON().Unmarshal([]byte(`{"balance":42}`), result)
		})

	balance, err := tm.ledger.GetBalance(context.Background(), "ledger-1", wallet)
	require.NoError(t, err)
	assert.Equal(t, int64(42), balance)
}
