package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"ollamaedit/types"
)

// configEnvVar is the environment variable the plugin passes daemon
// settings through, as a JSON object
const configEnvVar = "OLLAMAEDIT_CONFIG"

// Config holds daemon settings. The plugin serializes it into the
// environment before spawning the relay client, so the daemon inherits it
// no matter which editor instance started it first.
type Config struct {
	Provider    string  `json:"provider"`
	URL         string  `json:"url"`
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
	MaxTokens   int     `json:"max_tokens"`
	// CredentialName overrides the endpoint-based API key lookup
	CredentialName string `json:"credential_name"`
	// SimulatedResponse short-circuits the provider; testing only
	SimulatedResponse string `json:"simulated_response"`
	// ContextLines is how many unchanged lines around the edit range are
	// sent to the model
	ContextLines int `json:"context_lines"`
	// InlineDiff renders proposals as reviewable change groups; false
	// applies them directly
	InlineDiff bool `json:"inline_diff"`
	// DebugImmediateShutdown makes the daemon exit as soon as the last
	// client disconnects
	DebugImmediateShutdown bool `json:"debug_immediate_shutdown"`
	LogLevel               string `json:"log_level"`
}

func defaultConfig() Config {
	return Config{
		Provider:     string(types.ProviderOllama),
		Temperature:  types.DefaultTemperature,
		TopP:         types.DefaultTopP,
		MaxTokens:    types.DefaultMaxTokens,
		ContextLines: types.DefaultContextLines,
		InlineDiff:   true,
		LogLevel:     "info",
	}
}

// loadConfig reads the environment config over the defaults. An unset
// variable yields the defaults unchanged.
func loadConfig() (Config, error) {
	config := defaultConfig()
	raw := os.Getenv(configEnvVar)
	if raw == "" {
		return config, nil
	}
	if err := json.Unmarshal([]byte(raw), &config); err != nil {
		return config, fmt.Errorf("invalid %s: %w", configEnvVar, err)
	}
	return config, nil
}

// providerConfig maps daemon settings onto the provider layer's config
func (c Config) providerConfig() *types.ProviderConfig {
	return &types.ProviderConfig{
		Provider:          types.ProviderType(c.Provider),
		URL:               c.URL,
		Model:             c.Model,
		Temperature:       c.Temperature,
		TopP:              c.TopP,
		MaxTokens:         c.MaxTokens,
		CredentialName:    c.CredentialName,
		SimulatedResponse: c.SimulatedResponse,
	}
}

// runtimeDir is where the socket, pid file and log live: next to the
// executable, so every editor instance using this install shares one daemon
func runtimeDir() (string, error) {
	execPath, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locate executable: %w", err)
	}
	return filepath.Dir(execPath), nil
}

func runtimePath(name string) string {
	dir, err := runtimeDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, name)
}

func socketPath() string { return runtimePath("ollamaedit.sock") }
func pidPath() string    { return runtimePath("ollamaedit.pid") }
func logPath() string    { return runtimePath("ollamaedit.log") }
