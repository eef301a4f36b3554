// Package thumbnail renders best-effort preview images of website projects.
//
// Snapshots never fail loudly: any error, panic or timeout produces an empty
// result, which callers treat as "keep the previous thumbnail".
package thumbnail

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/png"
	"time"

	"github.com/KaramelBytes/sitesmith-cli/internal/metrics"
	"github.com/KaramelBytes/sitesmith-cli/internal/project"
	"github.com/KaramelBytes/sitesmith-cli/internal/resolver"
	"github.com/KaramelBytes/sitesmith-cli/internal/utils"
	"go.uber.org/zap"
)

// Defaults used when a Snapshotter field is zero.
const (
	DefaultWidth   = 1024
	DefaultHeight  = 768
	DefaultTimeout = 10 * time.Second
)

// Snapshotter turns a project's file set into a PNG data URI.
type Snapshotter struct {
	Rasterizer Rasterizer
	Width      int
	Height     int
	Timeout    time.Duration
	Log        *zap.Logger
	Metrics    *metrics.Metrics
}

// New returns a Snapshotter with the sketch rasterizer and default geometry.
func New(log *zap.Logger, m *metrics.Metrics) *Snapshotter {
	return &Snapshotter{Rasterizer: SketchRasterizer{}, Log: log, Metrics: m}
}

type result struct {
	uri string
	err error
}

// Snapshot renders the primary document of files with its image references
// resolved. It reports false when there is nothing to render or rendering
// failed for any reason.
func (s *Snapshotter) Snapshot(ctx context.Context, files []project.File) (string, bool) {
	log := s.Log
	if log == nil {
		log = zap.NewNop()
	}
	primary := project.SelectPrimary(files)
	if primary == nil {
		s.Metrics.Thumbnail(metrics.ResultSkipped)
		return "", false
	}

	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("rasterizer panic: %v", r)}
			}
		}()
		uri, err := s.render(ctx, primary.Content, files)
		done <- result{uri: uri, err: err}
	}()

	select {
	case <-ctx.Done():
		log.Debug("thumbnail timed out", zap.String("file", primary.Name), zap.Error(ctx.Err()))
		s.Metrics.Thumbnail(metrics.ResultTimeout)
		return "", false
	case r := <-done:
		if r.err != nil {
			log.Debug("thumbnail failed", zap.String("file", primary.Name), zap.Error(r.err))
			if errors.Is(r.err, context.DeadlineExceeded) {
				s.Metrics.Thumbnail(metrics.ResultTimeout)
			} else {
				s.Metrics.Thumbnail(metrics.ResultFailed)
			}
			return "", false
		}
		s.Metrics.Thumbnail(metrics.ResultOK)
		return r.uri, true
	}
}

func (s *Snapshotter) render(ctx context.Context, markup string, files []project.File) (string, error) {
	resolved, stats := resolver.ResolveStats(markup, files)
	s.Metrics.AddReferences(stats.Images, stats.Backgrounds)

	r := s.Rasterizer
	if r == nil {
		r = SketchRasterizer{}
	}
	w, h := s.Width, s.Height
	if w <= 0 {
		w = DefaultWidth
	}
	if h <= 0 {
		h = DefaultHeight
	}
	img, err := r.Rasterize(ctx, resolved, w, h)
	if err != nil {
		return "", err
	}
	if img == nil {
		return "", errors.New("rasterizer returned no image")
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("encode png: %w", err)
	}
	return utils.EncodeDataURI("image/png", buf.Bytes()), nil
}
