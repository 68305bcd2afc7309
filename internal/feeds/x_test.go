package feeds_test

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropforge/airdrop-engine/internal/adapter"
	"github.com/dropforge/airdrop-engine/internal/domain"
	"github.com/dropforge/airdrop-engine/internal/feeds"
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

func setupXFeed(t *testing.T) (*mocks.MockHTTPClient, feeds.SocialEventFeed) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockHTTPClient(ctrl)
	feed := feeds.NewXFeed(feeds.XConfig{
		BaseURL:     "https://api.twitter.com/2",
		BearerToken: "bearer-token",
	}, client, adapter.NewClock())
	return client, feed
}

const searchPayload = `{
	"data": [
		{"id": "101", "text": "RT @dropforge: token launch is live", "author_id": "u1"},
		{"id": "102", "text": "@dropforge when airdrop?", "author_id": "u2"},
		{"id": "103", "text": "@dropforge orphaned author", "author_id": "u9"}
	],
	"includes": {
		"users": [
			{"id": "u1", "username": "alice"},
			{"id": "u2", "username": "bob"}
		]
	},
	"meta": {"newest_id": "103"}
}`

func TestFetchInteractions(t *testing.T) {
	client, feed := setupXFeed(t)

	client.EXPECT().
		Get(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, url string, headers map[string]string, result interface{}) error {
			assert.True(t, strings.HasPrefix(url, "https://api.twitter.com/2/tweets/search/recent?"))
			assert.Contains(t, url, "query=%40dropforge")
			assert.NotContains(t, url, "since_id")
			assert.Equal(t, "Bearer bearer-token", headers["Authorization"])
			return adapter.NewJSON().Unmarshal([]byte(searchPayload), result)
		})

	events, cursor, err := feed.FetchInteractions(context.Background(), "@dropforge", "")
	require.NoError(t, err)
	assert.Equal(t, "103", cursor)

	// The tweet from the unknown author is dropped
	require.Len(t, events, 2)

	assert.Equal(t, "@alice", events[0].UserHandle)
	assert.Equal(t, "@dropforge", events[0].ClientHandle)
	assert.Equal(t, domain.InteractionRetweet, events[0].Interaction)
	assert.Equal(t, "101", events[0].PostID)

	assert.Equal(t, "@bob", events[1].UserHandle)
	assert.Equal(t, domain.InteractionComment, events[1].Interaction)
	assert.Equal(t, "102", events[1].PostID)
}

func TestFetchInteractionsPassesCursor(t *testing.T) {
	client, feed := setupXFeed(t)

	client.EXPECT().
		Get(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, url string, headers map[string]string, result interface{}) error {
			assert.Contains(t, url, "since_id=100")
			return adapter.NewJSON().Unmarshal([]byte(`{"meta":{}}`), result)
		})

	events, cursor, err := feed.FetchInteractions(context.Background(), "dropforge", "100")
	require.NoError(t, err)
	assert.Empty(t, events)
	// Cursor stays put when nothing new arrived
	assert.Equal(t, "100", cursor)
}

func TestFetchInteractionsError(t *testing.T) {
	client, feed := setupXFeed(t)

	client.EXPECT().
		Get(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(errors.New("429 too many requests"))

	_, cursor, err := feed.FetchInteractions(context.Background(), "@dropforge", "100")
	assert.Error(t, err)
	assert.Equal(t, "100", cursor)
}
