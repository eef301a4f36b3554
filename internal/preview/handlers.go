package preview

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/KaramelBytes/sitesmith-cli/internal/project"
	"github.com/KaramelBytes/sitesmith-cli/internal/utils"
	"github.com/go-chi/chi/v5"
)

// Summary is a record without file contents.
type Summary struct {
	ID           string         `json:"id"`
	UserID       string         `json:"userId,omitempty"`
	Name         string         `json:"name"`
	Description  string         `json:"description"`
	Status       project.Status `json:"status"`
	Plan         project.Plan   `json:"plan"`
	Type         project.Origin `json:"type,omitempty"`
	LastModified time.Time      `json:"lastModified"`
	Files        []FileSummary  `json:"files"`
	HasThumbnail bool           `json:"hasThumbnail"`
}

// FileSummary names one file and its size.
type FileSummary struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Size int    `json:"size"`
}

// Summarize drops file contents from rec.
func Summarize(rec project.Record) Summary {
	files := make([]FileSummary, 0, len(rec.Files))
	for _, f := range rec.Files {
		files = append(files, FileSummary{Name: f.Name, Type: f.Type, Size: len(f.Content)})
	}
	return Summary{
		ID:           rec.ID,
		UserID:       rec.UserID,
		Name:         rec.Name,
		Description:  rec.Description,
		Status:       rec.Status,
		Plan:         rec.Plan,
		Type:         rec.Type,
		LastModified: rec.LastModified,
		Files:        files,
		HasThumbnail: utils.IsDataURI(rec.Thumbnail),
	}
}

func (s *Server) handleListWebsites(w http.ResponseWriter, r *http.Request) {
	records := s.store.Load(r.Context())
	out := make([]Summary, 0, len(records))
	for _, rec := range records {
		out = append(out, Summarize(rec))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetWebsite(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.record(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, Summarize(rec))
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.record(w, r)
	if !ok {
		return
	}
	s.serveRendered(w, rec, "")
}

func (s *Server) handlePreviewFile(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.record(w, r)
	if !ok {
		return
	}
	name := chi.URLParam(r, "name")
	if f := project.FindFile(rec.Files, name); f != nil && f.IsImage() {
		s.serveDataURI(w, f.Content)
		return
	}
	s.serveRendered(w, rec, name)
}

func (s *Server) serveRendered(w http.ResponseWriter, rec project.Record, name string) {
	markup, stats, err := Render(rec.Files, name)
	if err != nil {
		status := http.StatusUnprocessableEntity
		if errors.Is(err, ErrFileNotFound) {
			status = http.StatusNotFound
		}
		writeError(w, status, err)
		return
	}
	s.metrics.AddReferences(stats.Images, stats.Backgrounds)
	h := w.Header()
	h.Set("Content-Type", "text/html; charset=utf-8")
	h.Set("Content-Security-Policy", ContentSecurityPolicy)
	h.Set("X-Content-Type-Options", "nosniff")
	h.Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(markup))
}

func (s *Server) handleThumbnail(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.record(w, r)
	if !ok {
		return
	}
	if !utils.IsDataURI(rec.Thumbnail) {
		writeError(w, http.StatusNotFound, errors.New("no thumbnail"))
		return
	}
	s.serveDataURI(w, rec.Thumbnail)
}

func (s *Server) serveDataURI(w http.ResponseWriter, uri string) {
	mimeType, data, err := utils.DecodeDataURI(uri)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	h := w.Header()
	h.Set("Content-Type", mimeType)
	h.Set("Content-Length", strconv.Itoa(len(data)))
	h.Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
