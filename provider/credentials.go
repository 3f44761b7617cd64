package provider

import (
	"fmt"
	"os"
	"strings"
)

// APIKeyFor resolves the API key for an OpenAI-compatible endpoint from the
// environment. An empty URL means the official OpenAI endpoint and requires
// OPENAI_API_KEY; known third-party hosts map to their own variables; any
// other endpoint falls back to OPENAI_API_KEY and may legitimately have no
// key at all (local servers).
func APIKeyFor(url string) (string, error) {
	if url == "" {
		key := os.Getenv("OPENAI_API_KEY")
		if key == "" {
			return "", fmt.Errorf("missing OPENAI_API_KEY environment variable")
		}
		return key, nil
	}

	if strings.HasPrefix(url, "https://api.mistral.ai/") {
		key := os.Getenv("MISTRAL_API_KEY")
		if key == "" {
			return "", fmt.Errorf("missing MISTRAL_API_KEY environment variable")
		}
		return key, nil
	}

	return os.Getenv("OPENAI_API_KEY"), nil
}
