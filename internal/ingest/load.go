package ingest

import (
	"fmt"
	"io/fs"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// LoadOptions filters files found under directory arguments. Patterns use
// doublestar syntax and match the slash-separated path relative to the
// directory; plain file arguments are matched by base name.
type LoadOptions struct {
	Include []string
	Exclude []string
}

// LoadPaths reads files and directory trees from disk into RawFiles in
// argument order, walking directories lexically.
func LoadPaths(paths []string, opts LoadOptions) ([]RawFile, error) {
	for _, p := range append(append([]string{}, opts.Include...), opts.Exclude...) {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid pattern %q", p)
		}
	}

	var out []RawFile
	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", root, err)
		}
		if !info.IsDir() {
			if !opts.match(filepath.Base(root)) {
				continue
			}
			f, err := loadFile(root)
			if err != nil {
				return nil, err
			}
			out = append(out, f)
			continue
		}
		err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if p != root && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			rel, err := filepath.Rel(root, p)
			if err != nil {
				return err
			}
			if !opts.match(filepath.ToSlash(rel)) {
				return nil
			}
			f, err := loadFile(p)
			if err != nil {
				return err
			}
			out = append(out, f)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", root, err)
		}
	}
	return out, nil
}

func (o LoadOptions) match(rel string) bool {
	for _, p := range o.Exclude {
		if ok, _ := doublestar.Match(p, rel); ok {
			return false
		}
	}
	if len(o.Include) == 0 {
		return true
	}
	for _, p := range o.Include {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

func loadFile(p string) (RawFile, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return RawFile{}, fmt.Errorf("read file: %w", err)
	}
	return RawFile{Name: filepath.Base(p), Type: DetectType(filepath.Base(p), data), Data: data}, nil
}

// DetectType guesses a mime type from the extension, then from content.
// Parameters such as charset are dropped.
func DetectType(name string, data []byte) string {
	t := mime.TypeByExtension(strings.ToLower(filepath.Ext(name)))
	if t == "" {
		t = http.DetectContentType(data)
	}
	if mt, _, err := mime.ParseMediaType(t); err == nil {
		return mt
	}
	return t
}
