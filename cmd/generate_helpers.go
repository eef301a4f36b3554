package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/KaramelBytes/sitesmith-cli/internal/ai"
	cfgpkg "github.com/KaramelBytes/sitesmith-cli/internal/config"
	"github.com/KaramelBytes/sitesmith-cli/internal/generation"
	"github.com/KaramelBytes/sitesmith-cli/internal/metrics"
	"github.com/KaramelBytes/sitesmith-cli/internal/store"
	"github.com/KaramelBytes/sitesmith-cli/internal/thumbnail"
	"github.com/KaramelBytes/sitesmith-cli/internal/utils"
)

// openStore opens the configured backend. Callers must Close the store.
func openStore(c *cfgpkg.Global) (*store.Store, error) {
	backend, err := store.OpenBackend(store.Options{
		Kind:       c.StoreBackend,
		DataDir:    c.DataDir,
		SQLitePath: c.SQLitePath,
		Object: store.ObjectConfig{
			Endpoint:  c.ObjectEndpoint,
			AccessKey: c.ObjectAccessKey,
			SecretKey: c.ObjectSecretKey,
			Bucket:    c.ObjectBucket,
			Prefix:    c.ObjectPrefix,
			UseSSL:    c.ObjectUseSSL,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return store.New(backend, log), nil
}

type runtimeOptions struct {
	ProviderFlag string
	TimeoutSec   int
}

// buildRuntime picks the provider (flag, then config, then openrouter) and
// returns a runtime holding that provider's key.
func buildRuntime(c *cfgpkg.Global, opts runtimeOptions) (ai.Runtime, string, error) {
	httpTimeout := 60 * time.Second
	if c != nil && c.HTTPTimeoutSec > 0 {
		httpTimeout = time.Duration(c.HTTPTimeoutSec) * time.Second
	}
	if opts.TimeoutSec > 0 {
		httpTimeout = time.Duration(opts.TimeoutSec) * time.Second
	}

	providerName := strings.ToLower(strings.TrimSpace(opts.ProviderFlag))
	if providerName == "" && c != nil && c.DefaultProvider != "" {
		providerName = strings.ToLower(c.DefaultProvider)
	}
	if providerName == "" {
		providerName = ai.ProviderOpenRouter
	}

	rc := ai.RuntimeConfig{HTTPTimeout: httpTimeout}
	if c != nil {
		rc.BaseURL = c.BaseURL
		switch providerName {
		case ai.ProviderOpenAI:
			rc.APIKey = c.OpenAIAPIKey
		default:
			rc.APIKey = c.APIKey
		}
	}
	if strings.TrimSpace(rc.APIKey) == "" {
		return nil, providerName, generation.ErrNotConfigured
	}

	client, ok := ai.GetRuntime(providerName, rc)
	if !ok {
		return nil, providerName, fmt.Errorf("provider not supported: %s (use %s)", providerName, strings.Join(ai.Providers(), " or "))
	}
	return client, providerName, nil
}

// selectModel resolves the model: explicit flag, then config, then the
// provider default.
func selectModel(c *cfgpkg.Global, provider, explicit string) string {
	if explicit != "" {
		return explicit
	}
	if c != nil && c.DefaultModel != "" {
		return c.DefaultModel
	}
	if provider == ai.ProviderOpenAI {
		return ai.DefaultOpenAIModel
	}
	return ai.DefaultOpenRouterModel
}

// newService wires a generation service from config and flags.
func newService(c *cfgpkg.Global, opts runtimeOptions, model string) (*generation.Service, string, error) {
	rt, provider, err := buildRuntime(c, opts)
	if err != nil {
		return nil, provider, err
	}
	return &generation.Service{
		Runtime:     rt,
		Model:       selectModel(c, provider, model),
		Temperature: c.Temperature,
		Log:         log,
	}, provider, nil
}

// newSnapshotter builds a thumbnail snapshotter with configured geometry.
func newSnapshotter(c *cfgpkg.Global, m *metrics.Metrics) *thumbnail.Snapshotter {
	s := thumbnail.New(log, m)
	if c != nil {
		s.Width = c.ThumbnailWidth
		s.Height = c.ThumbnailHeight
		if c.ThumbnailTimeoutSec > 0 {
			s.Timeout = time.Duration(c.ThumbnailTimeoutSec) * time.Second
		}
	}
	return s
}

// explainError adds a user-facing hint for common failure classes.
func explainError(err error, provider, model string) error {
	var (
		genErr  *generation.GenerationError
		authErr *ai.AuthError
		nfErr   *ai.ModelNotFoundError
		qErr    *ai.QuotaExceededError
		sErr    *ai.ServerError
		unreach *ai.UnreachableError
	)
	switch {
	case errors.Is(err, generation.ErrNotConfigured):
		if provider == ai.ProviderOpenAI {
			return fmt.Errorf("%w (or set OPENAI_API_KEY)", err)
		}
		return fmt.Errorf("%w (or set OPENROUTER_API_KEY)", err)
	case errors.As(err, &genErr) && genErr.Capacity:
		return err
	case errors.As(err, &unreach):
		return fmt.Errorf("endpoint unreachable. Check your network and provider settings: %w", err)
	case errors.As(err, &authErr):
		return fmt.Errorf("authentication failed: check api_key in config (~/.sitesmith/config.yaml): %w", err)
	case errors.As(err, &nfErr):
		return fmt.Errorf("model not found (%s). Verify the model name with 'sitesmith models show': %w", model, err)
	case errors.As(err, &qErr):
		return fmt.Errorf("quota/billing issue. Check your provider account: %w", err)
	case errors.As(err, &sErr):
		return fmt.Errorf("provider appears unavailable (server error). Please retry later: %w", err)
	default:
		return err
	}
}

// deltaPrinter returns an onDelta callback that echoes chunks to w, or nil
// when streaming is off.
func deltaPrinter(enabled bool, w io.Writer) func(string) {
	if !enabled {
		return nil
	}
	if w == nil {
		w = os.Stdout
	}
	return func(d string) { fmt.Fprint(w, d) }
}

type outputOptions struct {
	JSON   bool
	Title  string
	Writer io.Writer
}

// formatAndWriteOutput prints v as indented JSON, or text under a title.
func formatAndWriteOutput(text string, v any, opts outputOptions) error {
	w := opts.Writer
	if w == nil {
		w = os.Stdout
	}
	if opts.JSON {
		b, err := utils.PrettyJSON(v)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(b))
		return nil
	}
	if opts.Title != "" {
		fmt.Fprintf(w, "\n=== %s ===\n", opts.Title)
	}
	fmt.Fprintln(w, text)
	return nil
}
