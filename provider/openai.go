package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"ollamaedit/logger"
	"ollamaedit/types"
)

const officialOpenAIURL = "https://api.openai.com"

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// OpenAI proposes edits through any OpenAI-compatible chat completions
// endpoint (OpenAI, Mistral, LM Studio, ...)
type OpenAI struct {
	config *types.ProviderConfig
	client *http.Client
}

// NewOpenAI creates an OpenAI-compatible provider. The configured URL is a
// base URL; an empty one means the official OpenAI endpoint.
func NewOpenAI(config *types.ProviderConfig) *OpenAI {
	cfg := *config
	if cfg.Model == "" {
		cfg.Model = types.DefaultOpenAIModel
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = types.DefaultMaxTokens
	}
	return &OpenAI{
		config: &cfg,
		client: &http.Client{Timeout: 300 * time.Second},
	}
}

func (o *OpenAI) Name() string { return "openai" }

// endpoint normalizes the configured base URL to the chat completions path
func (o *OpenAI) endpoint() string {
	base := o.config.URL
	if base == "" {
		base = officialOpenAIURL
	}
	base = strings.TrimRight(base, "/")
	base = strings.TrimSuffix(base, "/v1/chat/completions")
	base = strings.TrimSuffix(base, "/v1")
	return base + "/v1/chat/completions"
}

// Propose sends the edit exchange as chat messages and returns the cleaned
// replacement lines
func (o *OpenAI) Propose(ctx context.Context, req *Request) ([]string, error) {
	defer logger.Trace("openai.Propose")()

	var apiKey string
	if o.config.CredentialName != "" {
		apiKey = os.Getenv(o.config.CredentialName)
		if apiKey == "" {
			return nil, fmt.Errorf("missing %s environment variable", o.config.CredentialName)
		}
	} else {
		var err error
		apiKey, err = APIKeyFor(o.config.URL)
		if err != nil {
			return nil, err
		}
	}

	var messages []chatMessage
	for _, m := range EditMessages(req) {
		messages = append(messages, chatMessage{Role: m.Role, Content: m.Content})
	}

	headers := map[string]string{}
	if apiKey != "" {
		headers["Authorization"] = "Bearer " + apiKey
	}

	endpoint := o.endpoint()
	logger.Debug("openai request: endpoint=%s model=%s", endpoint, o.config.Model)

	body, err := postJSON(ctx, o.client, endpoint, headers, &chatRequest{
		Model:       o.config.Model,
		Messages:    messages,
		Temperature: o.config.Temperature,
		MaxTokens:   o.config.MaxTokens,
	})
	if err != nil {
		return nil, err
	}

	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode chat response: %w", err)
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("openai: %s", resp.Error.Message)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai: response contained no choices")
	}

	content := resp.Choices[0].Message.Content
	logger.Debug("openai response: %d chars", len(content))
	return CleanResponse(content), nil
}
