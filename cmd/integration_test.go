package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KaramelBytes/sitesmith-cli/internal/ai"
	"github.com/KaramelBytes/sitesmith-cli/internal/generation"
	"github.com/KaramelBytes/sitesmith-cli/internal/preview"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// resetFlags clears Changed state and values left over from a previous
// Execute on every command.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if !f.Changed {
			return
		}
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// execute runs the root command with args and returns what it printed to
// stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	cfg = nil

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	old := os.Stdout
	os.Stdout = w
	done := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		done <- buf.String()
	}()

	rootCmd.SetArgs(args)
	runErr := rootCmd.Execute()

	os.Stdout = old
	_ = w.Close()
	out := <-done
	_ = r.Close()
	return out, runErr
}

// runCmd is a helper to execute the root command with args.
func runCmd(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execute(t, args...)
	if err != nil {
		t.Fatalf("command %v failed: %v\n%s", args, err, out)
	}
	return out
}

// isolate points HOME at a temp dir and clears credentials from the env.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(home)
	for _, k := range []string{
		"SITESMITH_API_KEY", "OPENROUTER_API_KEY",
		"SITESMITH_OPENAI_API_KEY", "OPENAI_API_KEY", "VITE_OPENAI_API_KEY",
		"SITESMITH_BASE_URL", "SITESMITH_DEFAULT_PROVIDER", "SITESMITH_FREE_PREVIEW_LIMIT",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	return home
}

func listSummaries(t *testing.T) []preview.Summary {
	t.Helper()
	out := runCmd(t, "list", "--json")
	var got []preview.Summary
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode list output %q: %v", out, err)
	}
	return got
}

func writeSite(t *testing.T, dir string, files map[string][]byte) {
	t.Helper()
	for name, data := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, data, 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

// 1x1 transparent GIF
var pixelGIF = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x01, 0x00, 0x01, 0x00, 0x80, 0x00, 0x00, 0xff, 0xff, 0xff,
	0x00, 0x00, 0x00, 0x21, 0xf9, 0x04, 0x01, 0x00, 0x00, 0x00, 0x00, 0x2c, 0x00, 0x00, 0x00, 0x00,
	0x01, 0x00, 0x01, 0x00, 0x00, 0x02, 0x02, 0x44, 0x01, 0x00, 0x3b,
}

func TestCLI_Import_List_Preview_Rename_Delete(t *testing.T) {
	home := isolate(t)
	site := filepath.Join(home, "site")
	writeSite(t, site, map[string][]byte{
		"about.html":      []byte(`<html><body><h1>About</h1></body></html>`),
		"index.html":      []byte(`<html><body style="background-image: url('img/hero.gif')"><img src="./img/logo.gif"><h1>Bakery</h1></body></html>`),
		"img/logo.gif":    pixelGIF,
		"img/hero.gif":    pixelGIF,
		"notes/draft.txt": []byte("skip me"),
	})

	runCmd(t, "signup", "--email", "baker@example.com", "--password", "pw", "--name", "Baker")
	if out := runCmd(t, "whoami"); !strings.Contains(out, "baker@example.com") || !strings.Contains(out, "Free Preview") {
		t.Fatalf("unexpected whoami output: %q", out)
	}

	out := runCmd(t, "import", site, "--exclude", "notes/**")
	if !strings.Contains(out, "✓ Imported \"index\"") || !strings.Contains(out, "with 4 files") {
		t.Fatalf("unexpected import output: %q", out)
	}

	sites := listSummaries(t)
	if len(sites) != 1 {
		t.Fatalf("expected 1 website, got %d", len(sites))
	}
	s := sites[0]
	if s.Type != "import" || s.Status != "draft" || s.Plan != "free" || s.Description != "Imported website" {
		t.Fatalf("unexpected summary: %+v", s)
	}
	if s.Files[0].Name != "index.html" {
		t.Fatalf("index.html must sort first, got %q", s.Files[0].Name)
	}
	if !s.HasThumbnail {
		t.Fatal("expected a thumbnail after import")
	}

	outPath := filepath.Join(home, "out.html")
	runCmd(t, "preview", s.ID, "--output", outPath)
	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read preview: %v", err)
	}
	html := string(data)
	if strings.Contains(html, "img/logo.gif") || strings.Contains(html, "img/hero.gif") {
		t.Fatalf("references were not resolved: %s", html)
	}
	if strings.Count(html, "data:image/gif;base64,") != 2 {
		t.Fatalf("expected two inlined images: %s", html)
	}
	if out := runCmd(t, "preview", s.ID, "--file", "about.html"); !strings.Contains(out, "<h1>About</h1>") {
		t.Fatalf("unexpected --file preview: %q", out)
	}

	runCmd(t, "rename", s.ID, "Corner", "Bakery")
	if got := listSummaries(t); got[0].Name != "Corner Bakery" {
		t.Fatalf("rename not applied: %+v", got[0])
	}
	if _, err := execute(t, "rename", "missing-id", "x"); err == nil {
		t.Fatal("expected rename of unknown id to fail")
	}

	runCmd(t, "upgrade", s.ID, "--plan", "professional")
	if got := listSummaries(t); got[0].Plan != "professional" || got[0].Status != "published" {
		t.Fatalf("upgrade not applied: %+v", got[0])
	}
	if _, err := execute(t, "upgrade", s.ID, "--plan", "enterprise", "--card", "4000 0000 0000 0002"); err == nil {
		t.Fatal("expected declined card to fail")
	}
	if got := listSummaries(t); got[0].Plan != "professional" {
		t.Fatalf("declined payment must leave the record untouched: %+v", got[0])
	}

	runCmd(t, "delete", s.ID)
	if got := listSummaries(t); len(got) != 0 {
		t.Fatalf("expected empty list after delete, got %d", len(got))
	}
}

func TestCLI_ImportRejectsSiteWithoutHTML(t *testing.T) {
	home := isolate(t)
	site := filepath.Join(home, "assets")
	writeSite(t, site, map[string][]byte{"style.css": []byte("body{}"), "logo.gif": pixelGIF})

	if _, err := execute(t, "import", site); err == nil || !strings.Contains(err.Error(), "HTML") {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := execute(t, "import", "--mode", "wordpress", site); err == nil {
		t.Fatal("expected wordpress validation error")
	}
	if got := listSummaries(t); len(got) != 0 {
		t.Fatalf("nothing must be stored on rejection, got %d", len(got))
	}
}

func fakeGenerationServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ai.GenerateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		content := `<!DOCTYPE html><html><body style="background:#f5e6d3"><h1>Fresh Bread</h1><p>Open daily.</p></body></html>`
		if len(req.Messages) > 0 && strings.Contains(req.Messages[0].Content, "consultant") {
			content = "Use warm colours and a large hero section."
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(ai.GenerateResponse{
			ID:      "gen-1",
			Choices: []ai.Choice{{Message: ai.Message{Role: "assistant", Content: content}}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCLI_GenerateStoresRecordAndEnforcesPreviewLimit(t *testing.T) {
	isolate(t)
	srv := fakeGenerationServer(t)
	t.Setenv("SITESMITH_API_KEY", "test-key")
	t.Setenv("SITESMITH_BASE_URL", srv.URL)
	t.Setenv("SITESMITH_FREE_PREVIEW_LIMIT", "1")

	runCmd(t, "signup", "--email", "new@example.com", "--password", "pw")
	out := runCmd(t, "generate", "A bakery landing page")
	if !strings.Contains(out, "Use warm colours") || !strings.Contains(out, `✓ Saved "AI Generated Website 1"`) {
		t.Fatalf("unexpected generate output: %q", out)
	}

	sites := listSummaries(t)
	if len(sites) != 1 {
		t.Fatalf("expected 1 website, got %d", len(sites))
	}
	s := sites[0]
	if s.Type != "builder" || s.Description != "A bakery landing page" || len(s.Files) != 1 || s.Files[0].Name != "index.html" {
		t.Fatalf("unexpected generated record: %+v", s)
	}
	if !s.HasThumbnail {
		t.Fatal("expected a thumbnail for the generated site")
	}

	_, err := execute(t, "generate", "Another one")
	if !errors.Is(err, generation.ErrPreviewLimit) {
		t.Fatalf("expected ErrPreviewLimit, got %v", err)
	}
}

func TestCLI_GenerateWithoutKeyFails(t *testing.T) {
	isolate(t)
	_, err := execute(t, "generate", "anything")
	if !errors.Is(err, generation.ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestCLI_ConfigSetAndShowMasksSecrets(t *testing.T) {
	isolate(t)
	runCmd(t, "config", "set", "api_key", "sk-abcdef123456")
	runCmd(t, "config", "set", "store_backend", "sqlite")
	if _, err := execute(t, "config", "set", "store_backend", "floppy"); err == nil {
		t.Fatal("expected invalid backend to be rejected")
	}
	out := runCmd(t, "config", "show")
	if strings.Contains(out, "sk-abcdef123456") || !strings.Contains(out, "api_key: sk-****456") {
		t.Fatalf("api key not masked: %q", out)
	}
	if !strings.Contains(out, "store_backend: sqlite") {
		t.Fatalf("store_backend not saved: %q", out)
	}
	if got := runCmd(t, "config", "get", "api_key", "--reveal"); strings.TrimSpace(got) != "sk-abcdef123456" {
		t.Fatalf("--reveal must print the raw key, got %q", got)
	}
	if _, err := execute(t, "config", "get", "no_such_key"); err == nil {
		t.Fatal("expected unknown key to fail")
	}

	// sqlite backend is usable end to end
	if got := listSummaries(t); len(got) != 0 {
		t.Fatalf("expected empty sqlite store, got %d", len(got))
	}
}

func TestCLI_ModelsShowMergesCatalogFile(t *testing.T) {
	home := isolate(t)
	p := filepath.Join(home, "models.json")
	writeSite(t, home, map[string][]byte{"models.json": []byte(`{"local/tiny": {"ContextTokens": 4096}}`)})

	out := runCmd(t, "models", "show", "--file", p, "--merge")
	if !strings.Contains(out, "local/tiny") || !strings.Contains(out, ai.DefaultOpenRouterModel) {
		t.Fatalf("merged catalog missing entries: %q", out)
	}
	if _, err := execute(t, "models", "show", "--file", filepath.Join(home, "missing.json")); err == nil {
		t.Fatal("expected error for a missing catalog file")
	}
}
