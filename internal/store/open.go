package store

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Backend kinds selectable from configuration.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendObject = "object"
)

// Options selects and configures a backend.
type Options struct {
	Kind       string
	DataDir    string
	SQLitePath string
	Object     ObjectConfig
}

// OpenBackend builds the backend named by opts.Kind (default: file).
func OpenBackend(opts Options) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Kind)) {
	case "", BackendFile:
		if opts.DataDir == "" {
			return nil, fmt.Errorf("data dir is required for the file backend")
		}
		return NewFileBackend(opts.DataDir), nil
	case BackendSQLite:
		p := opts.SQLitePath
		if p == "" {
			if opts.DataDir == "" {
				return nil, fmt.Errorf("sqlite path or data dir is required")
			}
			p = filepath.Join(opts.DataDir, "sitesmith.db")
		}
		return OpenSQLite(p)
	case BackendObject:
		return NewObjectBackend(opts.Object)
	default:
		return nil, fmt.Errorf("unknown store backend %q (use file|sqlite|object)", opts.Kind)
	}
}
