package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/walletstory/walletstory/internal/domain"
	"github.com/walletstory/walletstory/internal/services/promptbuilder"
)

const (
	llmTimeout        = 60 * time.Second
	llmMaxRetries     = 3
	llmRetryDelay     = 2 * time.Second
	personalityTraits = 3
)

// NarrativeClient turns a wallet summary into a personality profile and a
// timeline of milestone events.
type NarrativeClient interface {
	GeneratePersonality(ctx context.Context, wc promptbuilder.WalletContext) (domain.Personality, error)
	GenerateTimeline(ctx context.Context, digest string) ([]domain.TimelineEvent, error)
}

// OpenAICompatibleClient talks to any chat-completions API that follows the
// OpenAI wire format (OpenAI, OpenRouter, local gateways).
type OpenAICompatibleClient struct {
	apiURL     string
	apiKey     string
	model      string
	httpClient *http.Client
	maxRetries int
	retryDelay time.Duration
}

// NewOpenAICompatibleClient creates a narrative client for the given endpoint.
func NewOpenAICompatibleClient(apiURL, apiKey, model string) *OpenAICompatibleClient {
	return &OpenAICompatibleClient{
		apiURL: apiURL,
		apiKey: apiKey,
		model:  model,
		httpClient: &http.Client{
			Timeout: llmTimeout,
		},
		maxRetries: llmMaxRetries,
		retryDelay: llmRetryDelay,
	}
}

// chatRequest represents the request structure for OpenAI-compatible APIs.
type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	ID      string    `json:"id"`
	Object  string    `json:"object"`
	Created int64     `json:"created"`
	Model   string    `json:"model"`
	Choices []choice  `json:"choices"`
	Error   *apiError `json:"error,omitempty"`
}

type choice struct {
	Index        int     `json:"index"`
	Message      message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code"`
}

// GeneratePersonality asks the model for the title/summary/traits/story
// profile and validates the declared shape (exactly three traits).
func (c *OpenAICompatibleClient) GeneratePersonality(ctx context.Context, wc promptbuilder.WalletContext) (domain.Personality, error) {
	content, err := c.complete(ctx, promptbuilder.PersonalitySystemPrompt, promptbuilder.BuildPersonalityPrompt(wc))
	if err != nil {
		return domain.Personality{}, err
	}

	var personality domain.Personality
	if err := json.Unmarshal(stripCodeFence(content), &personality); err != nil {
		return domain.Personality{}, errors.Wrap(err, "decode personality response")
	}
	if personality.Title == "" || personality.Story == "" {
		return domain.Personality{}, errors.New("personality response is missing title or story")
	}
	if len(personality.Traits) != personalityTraits {
		return domain.Personality{}, fmt.Errorf("expected %d traits, got %d", personalityTraits, len(personality.Traits))
	}
	return personality, nil
}

// GenerateTimeline asks the model for 5-7 milestone events, sorted by date.
func (c *OpenAICompatibleClient) GenerateTimeline(ctx context.Context, digest string) ([]domain.TimelineEvent, error) {
	content, err := c.complete(ctx, promptbuilder.TimelineSystemPrompt, promptbuilder.BuildTimelinePrompt(digest))
	if err != nil {
		return nil, err
	}

	var events []domain.TimelineEvent
	if err := json.Unmarshal(stripCodeFence(content), &events); err != nil {
		return nil, errors.Wrap(err, "decode timeline response")
	}

	// models occasionally return events out of order
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Date < events[j].Date
	})
	return events, nil
}

func (c *OpenAICompatibleClient) complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if c.apiKey == "" {
		return "", errors.New("LLM API key is empty")
	}

	reqBody := chatRequest{
		Model: c.model,
		Messages: []message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: 0.7,
		MaxTokens:   2000,
	}

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(c.retryDelay):
			}
		}

		response, err := c.sendRequest(ctx, reqBody)
		if err != nil {
			lastErr = err
			continue
		}
		return response, nil
	}

	return "", errors.Wrapf(lastErr, "failed after %d retries", c.maxRetries)
}

func (c *OpenAICompatibleClient) sendRequest(ctx context.Context, reqBody chatRequest) (string, error) {
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", errors.Wrap(err, "failed to create HTTP request")
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "HTTP request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, "failed to read response body")
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("LLM API returned status %d: %s", resp.StatusCode, string(body))
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", errors.Wrap(err, "failed to unmarshal response")
	}

	if chatResp.Error != nil {
		return "", fmt.Errorf("LLM API error: %s (type: %s, code: %s)",
			chatResp.Error.Message, chatResp.Error.Type, chatResp.Error.Code)
	}

	if len(chatResp.Choices) == 0 {
		return "", errors.New("LLM API returned no choices")
	}

	return chatResp.Choices[0].Message.Content, nil
}

// stripCodeFence unwraps ```json fences some models emit despite the
// instructions.
func stripCodeFence(content string) []byte {
	trimmed := strings.TrimSpace(content)
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```json")
		trimmed = strings.TrimPrefix(trimmed, "```")
		trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	}
	return []byte(strings.TrimSpace(trimmed))
}
