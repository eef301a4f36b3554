package thumbnail

import (
	"context"

	"github.com/KaramelBytes/sitesmith-cli/internal/project"
	"go.uber.org/zap"
)

// Refresh snapshots every record that needs a thumbnail, or every record
// with files when force is set. The returned map holds successes only and
// is meant for project.SetThumbnails.
func (s *Snapshotter) Refresh(ctx context.Context, records []project.Record, force bool, rep Reporter) map[string]string {
	if rep == nil {
		rep = NopReporter{}
	}
	var todo []project.Record
	for _, r := range records {
		if r.NeedsThumbnail() || (force && len(r.Files) > 0) {
			todo = append(todo, r)
		}
	}

	out := make(map[string]string, len(todo))
	rep.Start(len(todo))
	defer rep.Finish()
	for i, r := range todo {
		if ctx.Err() != nil {
			break
		}
		if uri, ok := s.Snapshot(ctx, r.Files); ok {
			out[r.ID] = uri
		} else if s.Log != nil {
			s.Log.Debug("thumbnail skipped", zap.String("id", r.ID))
		}
		rep.Update(i+1, r.Name)
	}
	return out
}
