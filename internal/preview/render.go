// Package preview renders stored websites with their image references
// resolved and serves them over HTTP.
package preview

import (
	"errors"
	"fmt"

	"github.com/KaramelBytes/sitesmith-cli/internal/project"
	"github.com/KaramelBytes/sitesmith-cli/internal/resolver"
)

var (
	ErrNoDocument    = errors.New("website has no HTML document to preview")
	ErrFileNotFound  = errors.New("file not found")
	ErrNotRenderable = errors.New("image files are shown as-is, not rendered")
)

// Render resolves the named file, or the primary document when name is
// empty, against the project's images.
func Render(files []project.File, name string) (string, resolver.Stats, error) {
	var f *project.File
	if name != "" {
		f = project.FindFile(files, name)
		if f == nil {
			return "", resolver.Stats{}, fmt.Errorf("%w: %s", ErrFileNotFound, name)
		}
		if f.IsImage() {
			return "", resolver.Stats{}, ErrNotRenderable
		}
	} else {
		f = project.SelectPrimary(files)
		if f == nil {
			return "", resolver.Stats{}, ErrNoDocument
		}
	}
	out, stats := resolver.ResolveStats(f.Content, files)
	return out, stats, nil
}
