package generation_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/KaramelBytes/sitesmith-cli/internal/ai"
	"github.com/KaramelBytes/sitesmith-cli/internal/generation"
	"github.com/KaramelBytes/sitesmith-cli/internal/project"
)

type stubRuntime struct {
	replies map[string]string
	err     error
	reqs    []ai.GenerateRequest
}

func (s *stubRuntime) Generate(_ context.Context, req ai.GenerateRequest) (*ai.GenerateResponse, error) {
	s.reqs = append(s.reqs, req)
	if s.err != nil {
		return nil, s.err
	}
	sys := req.Messages[0].Content
	for key, reply := range s.replies {
		if strings.Contains(sys, key) {
			return &ai.GenerateResponse{Choices: []ai.Choice{{Message: ai.Message{Role: "assistant", Content: reply}}}}, nil
		}
	}
	return &ai.GenerateResponse{}, nil
}

type streamStub struct {
	stubRuntime
	chunks []string
}

func (s *streamStub) GenerateStream(_ context.Context, _ ai.GenerateRequest, onDelta func(string)) error {
	for _, c := range s.chunks {
		onDelta(c)
	}
	return nil
}

func TestCreateWebsite(t *testing.T) {
	rt := &stubRuntime{replies: map[string]string{
		"consultant":    "Use a warm palette.",
		"web developer": "<!DOCTYPE html><html><body>Bakery</body></html>",
	}}
	now := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)
	svc := &generation.Service{Runtime: rt, Model: "m", Now: func() time.Time { return now }}

	res, err := svc.CreateWebsite(context.Background(), "user-1", "  Build a bakery site ", 2)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if res.Analysis != "Use a warm palette." {
		t.Fatalf("unexpected analysis %q", res.Analysis)
	}
	rec := res.Record
	if rec.Name != "AI Generated Website 2" || rec.Description != "Build a bakery site" || rec.UserID != "user-1" {
		t.Fatalf("unexpected record %+v", rec)
	}
	if rec.Type != project.OriginBuilder || rec.Plan != project.PlanFree || rec.Status != project.StatusDraft {
		t.Fatalf("unexpected defaults %+v", rec)
	}
	if len(rec.Files) != 1 || rec.Files[0].Name != "index.html" || rec.Files[0].Type != "text/html" || !strings.Contains(rec.Files[0].Content, "Bakery") {
		t.Fatalf("unexpected files %+v", rec.Files)
	}
	if len(rt.reqs) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(rt.reqs))
	}
	for _, r := range rt.reqs {
		if r.Temperature != 0.7 || len(r.Messages) != 2 || r.Messages[1].Content != "Build a bakery site" {
			t.Fatalf("unexpected request %+v", r)
		}
	}
}

func TestErrorMapping(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		msg      string
		capacity bool
	}{
		{"rate limit", &ai.RateLimitError{APIError: &ai.APIError{StatusCode: 429}}, generation.CapacityMessage, true},
		{"quota", &ai.QuotaExceededError{APIError: &ai.APIError{StatusCode: 402}}, generation.CapacityMessage, true},
		{"auth", &ai.AuthError{APIError: &ai.APIError{StatusCode: 401, Message: "bad key"}}, "authentication failed: api error: status=401 message=bad key", false},
		{"plain", errors.New("boom"), "boom", false},
		{"empty", errors.New(""), generation.FallbackMessage, false},
	}
	for _, c := range cases {
		svc := &generation.Service{Runtime: &stubRuntime{err: c.err}, Model: "m"}
		_, err := svc.Analyze(context.Background(), "x")
		var ge *generation.GenerationError
		if !errors.As(err, &ge) {
			t.Fatalf("%s: expected GenerationError, got %T", c.name, err)
		}
		if ge.Message != c.msg || ge.Capacity != c.capacity {
			t.Errorf("%s: got %q capacity=%v", c.name, ge.Message, ge.Capacity)
		}
	}
}

func TestEmptyResponse(t *testing.T) {
	svc := &generation.Service{Runtime: &stubRuntime{}, Model: "m"}
	_, err := svc.GenerateSite(context.Background(), "x")
	if err == nil || err.Error() != generation.EmptyMessage {
		t.Fatalf("expected empty response error, got %v", err)
	}
}

func TestNotConfigured(t *testing.T) {
	svc := &generation.Service{}
	_, err := svc.Analyze(context.Background(), "x")
	if !errors.Is(err, generation.ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestStreamingCollectsDeltas(t *testing.T) {
	rt := &streamStub{chunks: []string{"<html>", "</html>"}}
	svc := &generation.Service{Runtime: rt, Model: "m"}
	var seen []string
	out, err := svc.GenerateSiteStream(context.Background(), "x", func(d string) { seen = append(seen, d) })
	if err != nil {
		t.Fatal(err)
	}
	if out != "<html></html>" || len(seen) != 2 {
		t.Fatalf("unexpected stream result %q %v", out, seen)
	}
}

func TestCheckPreviewLimit(t *testing.T) {
	records := []project.Record{
		{ID: "1", UserID: "u", Type: project.OriginBuilder},
		{ID: "2", UserID: "u", Type: project.OriginBuilder},
		{ID: "3", UserID: "u", Type: project.OriginImport},
		{ID: "4", UserID: "other", Type: project.OriginBuilder},
	}
	if err := generation.CheckPreviewLimit(records, "u", project.PlanFree, 3); err != nil {
		t.Fatalf("two previews should be allowed: %v", err)
	}
	records = append(records, project.Record{ID: "5", UserID: "u", Type: project.OriginBuilder})
	if err := generation.CheckPreviewLimit(records, "u", "", 3); !errors.Is(err, generation.ErrPreviewLimit) {
		t.Fatalf("expected ErrPreviewLimit, got %v", err)
	}
	if err := generation.CheckPreviewLimit(records, "u", project.PlanProfessional, 3); err != nil {
		t.Fatalf("paid plans are unlimited: %v", err)
	}
	if err := generation.CheckPreviewLimit(records, "u", project.PlanFree, 0); err != nil {
		t.Fatalf("zero disables the limit: %v", err)
	}
	if n := generation.BuilderCount(records, "u"); n != 3 {
		t.Fatalf("expected 3 builder records, got %d", n)
	}
}
