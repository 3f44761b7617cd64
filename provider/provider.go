package provider

import (
	"context"
	"fmt"

	"ollamaedit/types"
)

// Request carries the code window a proposal is generated for. Preamble
// and Postamble are unchanged context around the editable block; only the
// Code block is rewritten.
type Request struct {
	Instruction string
	Preamble    string
	Code        string
	Postamble   string
	FileType    string
}

// Provider generates an edit proposal for a code block. Propose blocks on
// network I/O for arbitrary latency and is expected to run off the thread
// that owns the buffer; it returns the rewritten block as lines.
type Provider interface {
	Name() string
	Propose(ctx context.Context, req *Request) ([]string, error)
}

// New creates the provider selected by config. A non-empty
// SimulatedResponse always wins so tests and dry runs never touch the
// network, matching the original plugin's simulate setting.
func New(config *types.ProviderConfig) (Provider, error) {
	if config.SimulatedResponse != "" {
		return &Static{Response: config.SimulatedResponse}, nil
	}
	switch config.Provider {
	case types.ProviderOllama, "":
		return NewOllama(config), nil
	case types.ProviderOpenAI:
		return NewOpenAI(config), nil
	case types.ProviderStatic:
		return &Static{Response: config.SimulatedResponse}, nil
	default:
		return nil, fmt.Errorf("unknown provider %q", config.Provider)
	}
}

// Static returns a canned response without any network access
type Static struct {
	Response string
}

func (s *Static) Name() string { return "static" }

func (s *Static) Propose(ctx context.Context, req *Request) ([]string, error) {
	return CleanResponse(s.Response), nil
}
