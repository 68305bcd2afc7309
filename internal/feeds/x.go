package feeds

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/dropforge/airdrop-engine/internal/adapter"
	"github.com/dropforge/airdrop-engine/internal/domain"
)

// XConfig holds the configuration for the X polling feed
type XConfig struct {
	BaseURL     string
	BearerToken string
}

type xFeed struct {
	baseURL string
	token   string
	client  adapter.HTTPClient
	clock   adapter.Clock
}

// NewXFeed creates a social event feed backed by the X recent search API
func NewXFeed(cfg XConfig, client adapter.HTTPClient, clock adapter.Clock) SocialEventFeed {
	return &xFeed{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.BearerToken,
		client:  client,
		clock:   clock,
	}
}

type searchResponse struct {
	Data []struct {
		ID       string `json:"id"`
		Text     string `json:"text"`
		AuthorID string `json:"author_id"`
	} `json:"data"`
	Includes struct {
		Users []struct {
			ID       string `json:"id"`
			Username string `json:"username"`
		} `json:"users"`
	} `json:"includes"`
	Meta struct {
		NewestID string `json:"newest_id"`
	} `json:"meta"`
}

// FetchInteractions returns mentions of the account newer than the cursor.
// Retweets and replies are classified by the leading text of the post; plain
// mentions count as comments.
func (f *xFeed) FetchInteractions(ctx context.Context, account string, cursor string) ([]domain.SocialEvent, string, error) {
	handle := strings.TrimPrefix(domain.NormalizeHandle(account), "@")

	query := url.Values{}
	query.Set("query", "@"+handle)
	query.Set("expansions", "author_id")
	query.Set("user.fields", "username")
	if cursor != "" {
		query.Set("since_id", cursor)
	}

	var resp searchResponse
	endpoint := fmt.Sprintf("%s/tweets/search/recent?%s", f.baseURL, query.Encode())
	headers := map[string]string{"Authorization": "Bearer " + f.token}
	if err := f.client.Get(ctx, endpoint, headers, &resp); err != nil {
		return nil, cursor, fmt.Errorf("failed to search mentions of @%s: %w", handle, err)
	}

	usernames := make(map[string]string, len(resp.Includes.Users))
	for _, u := range resp.Includes.Users {
		usernames[u.ID] = u.Username
	}

	now := f.clock.Now().UTC()
	events := make([]domain.SocialEvent, 0, len(resp.Data))
	for _, tweet := range resp.Data {
		author, ok := usernames[tweet.AuthorID]
		if !ok {
			continue
		}
		events = append(events, domain.SocialEvent{
			UserHandle:   domain.NormalizeHandle(author),
			ClientHandle: domain.NormalizeHandle(handle),
			Interaction:  classify(tweet.Text),
			PostID:       tweet.ID,
			Details:      map[string]any{"text": tweet.Text},
			Timestamp:    now,
		})
	}

	next := cursor
	if resp.Meta.NewestID != "" {
		next = resp.Meta.NewestID
	}
	return events, next, nil
}

// classify infers the interaction kind from the post text
func classify(text string) domain.InteractionKind {
	if strings.HasPrefix(text, "RT @") {
		return domain.InteractionRetweet
	}
	return domain.InteractionComment
}
