// Package ingest turns a set of uploaded files into a new website record.
package ingest

import (
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/KaramelBytes/sitesmith-cli/internal/project"
)

// Mode selects the validation rule applied to an upload.
type Mode string

const (
	ModeStandard  Mode = "standard"
	ModeWordPress Mode = "wordpress"
)

// ParseMode accepts "standard" (or empty) and "wordpress".
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeStandard:
		return ModeStandard, nil
	case ModeWordPress:
		return ModeWordPress, nil
	}
	return "", fmt.Errorf("unknown import mode %q (use standard|wordpress)", s)
}

// RawFile is one uploaded file before ingestion.
type RawFile struct {
	Name string
	Type string
	Data []byte
}

// ValidationError reports an upload that was rejected before anything was
// read or stored.
type ValidationError struct {
	Mode    Mode
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Options carries the values Ingest cannot derive from the files.
type Options struct {
	UserID string
	Now    func() time.Time
}

// Ingest validates raw, reads every file, and returns the new record. The
// record has no thumbnail; callers add one best-effort.
func Ingest(raw []RawFile, mode Mode, opts Options) (*project.Record, error) {
	files := make([]RawFile, len(raw))
	copy(files, raw)
	SortFiles(files)

	var markup []RawFile
	for _, f := range files {
		if isMarkup(f) {
			markup = append(markup, f)
		}
	}
	if mode == ModeWordPress {
		if !hasWPConfig(files) {
			return nil, &ValidationError{Mode: mode, Message: "WordPress imports must include wp-config.php and the other WordPress files"}
		}
	} else if len(markup) == 0 {
		return nil, &ValidationError{Mode: mode, Message: "include at least one HTML or PHP file"}
	}

	out := make([]project.File, 0, len(files))
	for _, f := range files {
		content, err := readContent(f.Name, f.Type, f.Data)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f.Name, err)
		}
		typ := f.Type
		if typ == "" {
			typ = "text/plain"
		}
		out = append(out, project.File{Name: f.Name, Type: typ, Content: content})
	}

	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	ts := now()
	description := "Imported website"
	if mode == ModeWordPress {
		description = "Imported WordPress website"
	}
	return &project.Record{
		ID:           project.NewID(ts),
		UserID:       opts.UserID,
		Name:         baseName(mainFile(files, markup).Name),
		Description:  description,
		Status:       project.StatusDraft,
		LastModified: ts,
		Plan:         project.PlanFree,
		Type:         project.OriginImport,
		Files:        out,
	}, nil
}

// SortFiles orders index.html first, then home.html, then other .html files,
// keeping the relative order of everything else.
func SortFiles(files []RawFile) {
	sort.SliceStable(files, func(i, j int) bool {
		return rank(files[i].Name) < rank(files[j].Name)
	})
}

func rank(name string) int {
	n := strings.ToLower(name)
	switch {
	case n == "index.html":
		return 0
	case n == "home.html":
		return 1
	case strings.HasSuffix(n, ".html"):
		return 2
	}
	return 3
}

func isMarkup(f RawFile) bool {
	if f.Type == "text/html" {
		return true
	}
	n := strings.ToLower(f.Name)
	return strings.HasSuffix(n, ".html") || strings.HasSuffix(n, ".htm") || strings.HasSuffix(n, ".php")
}

func hasWPConfig(files []RawFile) bool {
	for _, f := range files {
		if f.Name == "wp-config.php" {
			return true
		}
	}
	return false
}

func mainFile(files, markup []RawFile) RawFile {
	for _, f := range markup {
		if n := strings.ToLower(f.Name); n == "index.html" || n == "home.html" {
			return f
		}
	}
	if len(markup) > 0 {
		return markup[0]
	}
	return files[0]
}

// baseName strips the last extension: "index.html" -> "index".
func baseName(name string) string {
	ext := path.Ext(name)
	if ext == "" || ext == name {
		return name
	}
	return strings.TrimSuffix(name, ext)
}
