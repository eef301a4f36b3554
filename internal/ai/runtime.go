package ai

import (
	"context"
	"sort"
	"strings"
	"time"
)

// Provider names accepted by --provider and default_provider.
const (
	ProviderOpenRouter = "openrouter"
	ProviderOpenAI     = "openai"
)

// Runtime is a chat-completions backend.
type Runtime interface {
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)
}

// StreamRuntime is implemented by runtimes that can deliver content
// incrementally. onDelta sees each chunk in order.
type StreamRuntime interface {
	GenerateStream(ctx context.Context, req GenerateRequest, onDelta func(string)) error
}

// RuntimeConfig is what every provider factory is built from.
type RuntimeConfig struct {
	HTTPTimeout time.Duration
	APIKey      string
	// BaseURL overrides the provider endpoint; empty uses the default.
	BaseURL string
}

// RuntimeFactory builds a Runtime for one provider.
type RuntimeFactory func(RuntimeConfig) Runtime

var factories = map[string]RuntimeFactory{
	ProviderOpenRouter: func(c RuntimeConfig) Runtime {
		return NewClientWithBaseURL(c.APIKey, c.HTTPTimeout, c.BaseURL)
	},
	ProviderOpenAI: func(c RuntimeConfig) Runtime { return NewOpenAIClient(c) },
}

// RegisterRuntime adds or replaces a provider.
func RegisterRuntime(name string, f RuntimeFactory) { factories[name] = f }

// GetRuntime builds the named provider's runtime.
func GetRuntime(name string, cfg RuntimeConfig) (Runtime, bool) {
	f, ok := factories[name]
	if !ok {
		return nil, false
	}
	return f(cfg), true
}

// Providers returns the registered provider names, sorted.
func Providers() []string {
	out := make([]string, 0, len(factories))
	for name := range factories {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Complete runs req against rt and returns the full content. With a non-nil
// onDelta it streams when rt supports it; otherwise the whole answer is
// delivered to onDelta as a single chunk.
func Complete(ctx context.Context, rt Runtime, req GenerateRequest, onDelta func(string)) (string, error) {
	if sr, ok := rt.(StreamRuntime); ok && onDelta != nil {
		var sb strings.Builder
		err := sr.GenerateStream(ctx, req, func(d string) {
			sb.WriteString(d)
			onDelta(d)
		})
		if err != nil {
			return "", err
		}
		return sb.String(), nil
	}
	resp, err := rt.Generate(ctx, req)
	if err != nil {
		return "", err
	}
	content := resp.Content()
	if onDelta != nil && content != "" {
		onDelta(content)
	}
	return content, nil
}
