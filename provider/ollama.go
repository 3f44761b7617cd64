package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"ollamaedit/logger"
	"ollamaedit/types"
)

// generateRequest is the Ollama /api/generate request body. Raw mode skips
// server-side templating: the prompt is already a fully rendered chat.
type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Raw     bool            `json:"raw"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
}

type generateResponse struct {
	Response string `json:"response"`
	Error    string `json:"error"`
}

// Ollama proposes edits through an Ollama server's generate endpoint
type Ollama struct {
	config *types.ProviderConfig
	client *http.Client
}

// NewOllama creates an Ollama provider, filling in stock defaults for
// anything the config leaves unset
func NewOllama(config *types.ProviderConfig) *Ollama {
	cfg := *config
	if cfg.URL == "" {
		cfg.URL = types.DefaultOllamaURL
	}
	cfg.URL = strings.TrimRight(cfg.URL, "/")
	if cfg.Model == "" {
		cfg.Model = types.DefaultModel
	}
	return &Ollama{
		config: &cfg,
		client: &http.Client{Timeout: 300 * time.Second},
	}
}

func (o *Ollama) Name() string { return "ollama" }

// Propose renders the edit prompt, runs a non-streaming generate call and
// returns the cleaned replacement lines
func (o *Ollama) Propose(ctx context.Context, req *Request) ([]string, error) {
	defer logger.Trace("ollama.Propose")()

	prompt, err := BuildEditPrompt(req)
	if err != nil {
		return nil, err
	}

	endpoint := o.config.URL + "/api/generate"
	logger.Debug("ollama request: endpoint=%s model=%s prompt=%d chars", endpoint, o.config.Model, len(prompt))

	body, err := postJSON(ctx, o.client, endpoint, nil, &generateRequest{
		Model:  o.config.Model,
		Prompt: prompt,
		Stream: false,
		Raw:    true,
		Options: generateOptions{
			Temperature: o.config.Temperature,
			TopP:        o.config.TopP,
		},
	})
	if err != nil {
		return nil, err
	}

	var resp generateResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode generate response: %w", err)
	}
	if resp.Response == "" && resp.Error != "" {
		return nil, fmt.Errorf("ollama: %s", resp.Error)
	}

	logger.Debug("ollama response: %d chars", len(resp.Response))
	return CleanResponse(resp.Response), nil
}
