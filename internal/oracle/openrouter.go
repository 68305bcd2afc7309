package oracle

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dropforge/airdrop-engine/internal/adapter"
	"github.com/dropforge/airdrop-engine/internal/domain"
	"github.com/dropforge/airdrop-engine/internal/logger"
	"github.com/dropforge/airdrop-engine/internal/store/schema"

	"go.uber.org/zap"
)

// OpenRouterOracle evaluates eligibility through the OpenRouter chat
// completions API
type OpenRouterOracle struct {
	baseURL string
	apiKey  string
	model   string
	timeout time.Duration
	client  adapter.HTTPClient
	json    adapter.JSON
}

// NewOpenRouterOracle creates an oracle backed by OpenRouter
func NewOpenRouterOracle(baseURL, apiKey, model string, timeout time.Duration, client adapter.HTTPClient, json adapter.JSON) *OpenRouterOracle {
	return &OpenRouterOracle{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		timeout: timeout,
		client:  client,
		json:    json,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

const systemPrompt = "You are an airdrop eligibility checker. Given an observed user interaction " +
	"and an airdrop campaign's requirements, answer whether the interaction satisfies the campaign. " +
	"Start your answer with YES or NO, then explain briefly."

// EvaluateContractInteraction judges a contract event against an airdrop.
// Any failure to reach or parse the model yields an ineligible verdict.
func (o *OpenRouterOracle) EvaluateContractInteraction(ctx context.Context, event *domain.ContractEvent, airdrop *schema.AirdropWithToken) (*Verdict, error) {
	prompt := fmt.Sprintf(
		"Campaign %q rewards %d %s tokens for interacting with contract %s (event filter: %s).\n"+
			"Observed interaction: user %s emitted event %q on contract %s in transaction %s at block %d.\n"+
			"Is this user eligible?",
		airdrop.Name, airdrop.TokenAmount, airdrop.Token.Symbol,
		derefOr(airdrop.ContractAddress, "any"), derefOr(airdrop.InteractionType, domain.InteractionTypeAny),
		event.UserAddress, event.EventName, event.ContractAddress, event.TxHash, event.BlockNumber,
	)
	return o.evaluate(ctx, prompt)
}

// EvaluateXInteraction judges a social event against an airdrop
func (o *OpenRouterOracle) EvaluateXInteraction(ctx context.Context, event *domain.SocialEvent, airdrop *schema.AirdropWithToken) (*Verdict, error) {
	prompt := fmt.Sprintf(
		"Campaign %q rewards %d %s tokens for interacting with the X account %s.\n"+
			"Observed interaction: user %s performed a %q on account %s (post %s). Details: %v\n"+
			"Is this user eligible?",
		airdrop.Name, airdrop.TokenAmount, airdrop.Token.Symbol,
		derefOr(airdrop.XAccount, "any"),
		event.UserHandle, event.Interaction, event.ClientHandle, event.PostID, event.Details,
	)
	return o.evaluate(ctx, prompt)
}

func (o *OpenRouterOracle) evaluate(ctx context.Context, prompt string) (*Verdict, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	payload, err := o.json.Marshal(chatRequest{
		Model: o.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return &Verdict{Eligible: false, Reasoning: "oracle request could not be encoded"}, nil
	}

	headers := map[string]string{
		"Authorization": "Bearer " + o.apiKey,
		"Content-Type":  "application/json",
	}

	raw, err := o.client.Post(ctx, o.baseURL+"/chat/completions", headers, bytes.NewReader(payload))
	if err != nil {
		logger.WarnCtx(ctx, "oracle request failed, treating as ineligible",
			zap.Error(fmt.Errorf("%w: %v", domain.ErrOracleUnavailable, err)))
		return &Verdict{Eligible: false, Reasoning: domain.ErrOracleUnavailable.Error()}, nil
	}

	var resp chatResponse
	if err := o.json.Unmarshal(raw, &resp); err != nil || len(resp.Choices) == 0 {
		logger.WarnCtx(ctx, "oracle response could not be parsed, treating as ineligible", zap.Error(err))
		return &Verdict{Eligible: false, Reasoning: "eligibility check returned no answer"}, nil
	}

	content := resp.Choices[0].Message.Content
	return &Verdict{
		Eligible:  ParseEligibility(content),
		Reasoning: content,
	}, nil
}

// ParseEligibility extracts a yes/no eligibility decision from model output.
// The output is eligible when it affirms with "yes" and does not negate with
// "not eligible".
func ParseEligibility(output string) bool {
	lower := strings.ToLower(output)
	return strings.Contains(lower, "yes") && !strings.Contains(lower, "not eligible")
}

func derefOr(s *string, fallback string) string {
	if s == nil || *s == "" {
		return fallback
	}
	return *s
}
