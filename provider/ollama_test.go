package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ollamaedit/types"
)

func TestOllamaPropose(t *testing.T) {
	var got generateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		json.NewEncoder(w).Encode(generateResponse{Response: "int main(int argc, char *argv[])\n{" + StopMarker})
	}))
	defer server.Close()

	o := NewOllama(&types.ProviderConfig{
		URL:         server.URL,
		Model:       "test-model",
		Temperature: 0,
		TopP:        0.95,
	})

	lines, err := o.Propose(context.Background(), editRequest())
	require.NoError(t, err)

	assert.Equal(t, []string{"int main(int argc, char *argv[])", "{"}, lines)
	assert.Equal(t, "test-model", got.Model)
	assert.True(t, got.Raw)
	assert.False(t, got.Stream)
	assert.Equal(t, 0.95, got.Options.TopP)
	assert.True(t, strings.HasSuffix(got.Prompt, StartMarker), "prompt should be primed to the edit block")
}

func TestOllamaProposeBrotliResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("Accept-Encoding"), "br")

		payload, _ := json.Marshal(generateResponse{Response: "compressed line"})
		w.Header().Set("Content-Encoding", "br")
		bw := brotli.NewWriter(w)
		bw.Write(payload)
		bw.Close()
	}))
	defer server.Close()

	o := NewOllama(&types.ProviderConfig{URL: server.URL})

	lines, err := o.Propose(context.Background(), editRequest())
	require.NoError(t, err)
	assert.Equal(t, []string{"compressed line"}, lines)
}

func TestOllamaProposeServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer server.Close()

	o := NewOllama(&types.ProviderConfig{URL: server.URL})

	_, err := o.Propose(context.Background(), editRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestOllamaProposeAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(generateResponse{Error: "out of memory"})
	}))
	defer server.Close()

	o := NewOllama(&types.ProviderConfig{URL: server.URL})

	_, err := o.Propose(context.Background(), editRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of memory")
}

func TestOllamaDefaults(t *testing.T) {
	o := NewOllama(&types.ProviderConfig{})

	assert.Equal(t, types.DefaultOllamaURL, o.config.URL)
	assert.Equal(t, types.DefaultModel, o.config.Model)
}
