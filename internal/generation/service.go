// Package generation turns a natural-language prompt into a design analysis
// and a single-page website through an ai.Runtime.
package generation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/KaramelBytes/sitesmith-cli/internal/ai"
	"github.com/KaramelBytes/sitesmith-cli/internal/project"
	"go.uber.org/zap"
)

// DefaultTemperature is used when Service.Temperature is zero.
const DefaultTemperature = 0.7

// DefaultPreviewLimit is the number of builder websites a free account may
// create.
const DefaultPreviewLimit = 3

const consultantInstruction = `You are an AI website design consultant.
Analyze user requests and provide helpful guidance about website design and features.
Keep responses concise, professional, and focused on web development.`

const developerInstruction = `You are an expert web developer.
Generate clean, modern, and responsive website code based on user descriptions.
Only respond with one complete, self-contained HTML document, no explanations.
Inline all CSS in a <style> element and ensure the design is professional and beautiful.
Do not reference external scripts.`

// Service calls the generation runtime. The zero value is not usable; set
// Runtime and Model.
type Service struct {
	Runtime     ai.Runtime
	Model       string
	Temperature float64
	Log         *zap.Logger
	Now         func() time.Time
}

// Analyze asks the consultant for guidance on prompt.
func (s *Service) Analyze(ctx context.Context, prompt string) (string, error) {
	return s.complete(ctx, consultantInstruction, prompt, nil)
}

// GenerateSite asks the web developer for an HTML document.
func (s *Service) GenerateSite(ctx context.Context, prompt string) (string, error) {
	return s.complete(ctx, developerInstruction, prompt, nil)
}

// AnalyzeStream is Analyze with incremental output when the runtime streams.
func (s *Service) AnalyzeStream(ctx context.Context, prompt string, onDelta func(string)) (string, error) {
	return s.complete(ctx, consultantInstruction, prompt, onDelta)
}

// GenerateSiteStream is GenerateSite with incremental output.
func (s *Service) GenerateSiteStream(ctx context.Context, prompt string, onDelta func(string)) (string, error) {
	return s.complete(ctx, developerInstruction, prompt, onDelta)
}

func (s *Service) complete(ctx context.Context, system, prompt string, onDelta func(string)) (string, error) {
	if s.Runtime == nil {
		return "", &GenerationError{Message: ErrNotConfigured.Error(), Err: ErrNotConfigured}
	}
	temp := s.Temperature
	if temp == 0 {
		temp = DefaultTemperature
	}
	req := ai.GenerateRequest{
		Model: s.Model,
		Messages: []ai.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		Temperature: temp,
	}

	content, err := ai.Complete(ctx, s.Runtime, req, onDelta)
	if err != nil {
		s.logger().Debug("generation failed", zap.String("model", s.Model), zap.Bool("stream", onDelta != nil), zap.Error(err))
		return "", wrapError(err)
	}
	if content == "" {
		return "", &GenerationError{Message: EmptyMessage}
	}
	return content, nil
}

func (s *Service) logger() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}

// Result is the outcome of CreateWebsite.
type Result struct {
	Analysis string
	Record   project.Record
}

// CreateWebsite runs the analysis and then the generation, and returns a new
// unsaved builder record numbered seq.
func (s *Service) CreateWebsite(ctx context.Context, userID, prompt string, seq int) (*Result, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, fmt.Errorf("prompt cannot be empty")
	}
	analysis, err := s.Analyze(ctx, prompt)
	if err != nil {
		return nil, err
	}
	code, err := s.GenerateSite(ctx, prompt)
	if err != nil {
		return nil, err
	}
	return &Result{Analysis: analysis, Record: s.NewRecord(userID, prompt, code, seq)}, nil
}

// NewRecord builds the builder record holding generated markup.
func (s *Service) NewRecord(userID, prompt, code string, seq int) project.Record {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	ts := now()
	return project.Record{
		ID:           project.NewID(ts),
		UserID:       userID,
		Name:         fmt.Sprintf("AI Generated Website %d", seq),
		Description:  prompt,
		Status:       project.StatusDraft,
		LastModified: ts,
		Plan:         project.PlanFree,
		Type:         project.OriginBuilder,
		Files:        []project.File{{Name: "index.html", Type: "text/html", Content: code}},
	}
}

// BuilderCount counts builder records owned by userID.
func BuilderCount(records []project.Record, userID string) int {
	n := 0
	for _, r := range records {
		if r.Type == project.OriginBuilder && r.UserID == userID {
			n++
		}
	}
	return n
}

// CheckPreviewLimit refuses generation for free (or unknown) plans once the
// user owns limit builder records. A limit of zero or less disables it.
func CheckPreviewLimit(records []project.Record, userID string, plan project.Plan, limit int) error {
	if limit <= 0 || plan.Paid() {
		return nil
	}
	if BuilderCount(records, userID) >= limit {
		return ErrPreviewLimit
	}
	return nil
}
