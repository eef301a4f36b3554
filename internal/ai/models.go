package ai

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
)

// Defaults used when neither --model nor default_model is set.
const (
	DefaultOpenRouterModel = "openai/gpt-3.5-turbo"
	DefaultOpenAIModel     = "gpt-3.5-turbo"
)

// ModelInfo is one catalog entry. Prices are USD per 1K tokens and only feed
// the `models show` table; providers bill what they bill.
type ModelInfo struct {
	Name          string
	ContextTokens int
	InputPerK     float64
	OutputPerK    float64
}

func entry(name string, ctxTokens int, in, out float64) ModelInfo {
	return ModelInfo{Name: name, ContextTokens: ctxTokens, InputPerK: in, OutputPerK: out}
}

var (
	catalogMu sync.RWMutex
	catalog   = indexModels(
		entry(DefaultOpenAIModel, 16385, 0.0005, 0.0015),
		entry("gpt-4o", 128000, 0.0025, 0.01),
		entry("gpt-4o-mini", 128000, 0.00015, 0.0006),
		entry("gpt-4.1", 1047576, 0.002, 0.008),
		entry("gpt-4.1-mini", 1047576, 0.0004, 0.0016),
		entry(DefaultOpenRouterModel, 16385, 0.0005, 0.0015),
		entry("openai/gpt-4o", 128000, 0.0025, 0.01),
		entry("openai/gpt-4o-mini", 128000, 0.00015, 0.0006),
		entry("anthropic/claude-3.5-sonnet", 200000, 0.003, 0.015),
		entry("anthropic/claude-3-haiku", 200000, 0.00025, 0.00125),
		entry("google/gemini-1.5-flash", 1000000, 0.000075, 0.0003),
		entry("meta-llama/llama-3.1-70b-instruct", 131072, 0.00012, 0.0003),
		entry("deepseek/deepseek-r1:free", 128000, 0, 0),
	)
)

func indexModels(ms ...ModelInfo) map[string]ModelInfo {
	out := make(map[string]ModelInfo, len(ms))
	for _, m := range ms {
		out[m.Name] = m
	}
	return out
}

// LookupModel returns the catalog entry for name.
func LookupModel(name string) (ModelInfo, bool) {
	catalogMu.RLock()
	defer catalogMu.RUnlock()
	mi, ok := catalog[name]
	return mi, ok
}

// EstimateCostUSD prices a call. ok is false for models missing from the
// catalog.
func EstimateCostUSD(model string, promptTokens, completionTokens int) (cost float64, ok bool) {
	mi, ok := LookupModel(model)
	if !ok {
		return 0, false
	}
	return float64(promptTokens)/1000*mi.InputPerK + float64(completionTokens)/1000*mi.OutputPerK, true
}

// fallbackPromptBudget applies to models the catalog does not know.
const fallbackPromptBudget = 4000

// PromptBudget is how many prompt tokens model can take while leaving most of
// its window for the generated page.
func PromptBudget(model string) int {
	mi, ok := LookupModel(model)
	if !ok || mi.ContextTokens <= 0 {
		return fallbackPromptBudget
	}
	return mi.ContextTokens / 4
}

// DecodeCatalog reads a JSON object of name to ModelInfo. Entries without a
// Name take their key.
func DecodeCatalog(r io.Reader) (map[string]ModelInfo, error) {
	var m map[string]ModelInfo
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	for k, v := range m {
		if v.Name == "" {
			v.Name = k
			m[k] = v
		}
	}
	return m, nil
}

// LoadCatalogFromJSON decodes a catalog file, e.g.
//
//	{"openai/gpt-4o-mini": {"ContextTokens": 128000, "InputPerK": 0.00015, "OutputPerK": 0.0006}}
func LoadCatalogFromJSON(path string) (map[string]ModelInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeCatalog(f)
}

// OverrideCatalog swaps the whole catalog. A nil map is ignored.
func OverrideCatalog(m map[string]ModelInfo) {
	if m == nil {
		return
	}
	catalogMu.Lock()
	catalog = m
	catalogMu.Unlock()
}

// MergeCatalog adds m on top of the current catalog.
func MergeCatalog(m map[string]ModelInfo) {
	catalogMu.Lock()
	defer catalogMu.Unlock()
	for k, v := range m {
		catalog[k] = v
	}
}

// Catalog returns a copy of the current catalog.
func Catalog() map[string]ModelInfo {
	catalogMu.RLock()
	defer catalogMu.RUnlock()
	out := make(map[string]ModelInfo, len(catalog))
	for k, v := range catalog {
		out[k] = v
	}
	return out
}
