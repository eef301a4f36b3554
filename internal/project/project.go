package project

import (
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/KaramelBytes/sitesmith-cli/internal/utils"
	"github.com/oklog/ulid/v2"
)

// Status is the publication state of a website.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

// Plan is the hosting plan attached to a website.
type Plan string

const (
	PlanFree         Plan = "free"
	PlanProfessional Plan = "professional"
	PlanEnterprise   Plan = "enterprise"
)

// ParsePlan normalizes a plan name such as "Professional" or "enterprise".
func ParsePlan(s string) (Plan, error) {
	switch Plan(strings.ToLower(strings.TrimSpace(s))) {
	case PlanFree:
		return PlanFree, nil
	case PlanProfessional:
		return PlanProfessional, nil
	case PlanEnterprise:
		return PlanEnterprise, nil
	}
	return "", fmt.Errorf("unknown plan %q (use free|professional|enterprise)", s)
}

// Paid reports whether the plan is a paid tier.
func (p Plan) Paid() bool {
	return p == PlanProfessional || p == PlanEnterprise
}

// Origin records how a website was created.
type Origin string

const (
	OriginBuilder Origin = "builder"
	OriginImport  Origin = "import"
)

// Record is a saved website project. The store owns the collection; callers
// hold copies and write back through the store.
type Record struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId,omitempty"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Status       Status    `json:"status"`
	LastModified time.Time `json:"lastModified"`
	Plan         Plan      `json:"plan"`
	Type         Origin    `json:"type,omitempty"`
	Files        []File    `json:"files,omitempty"`
	Thumbnail    string    `json:"thumbnail,omitempty"`
}

// ErrNotFound is returned when no record has the requested id.
var ErrNotFound = errors.New("website not found")

// NewID returns a unique, time-ordered identifier.
func NewID(now time.Time) string {
	return ulid.MustNew(ulid.Timestamp(now), rand.Reader).String()
}

// Primary returns the record's primary document, if any.
func (r Record) Primary() *File {
	return SelectPrimary(r.Files)
}

// NeedsThumbnail reports whether a thumbnail should be (re)generated: the
// record has files and its thumbnail is missing or a remote placeholder.
func (r Record) NeedsThumbnail() bool {
	if len(r.Files) == 0 {
		return false
	}
	return r.Thumbnail == "" || !utils.IsDataURI(r.Thumbnail)
}

// Find returns a copy of the record with the given id.
func Find(records []Record, id string) (Record, error) {
	for _, r := range records {
		if r.ID == id {
			return r, nil
		}
	}
	return Record{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Append returns a new collection with rec added at the end.
func Append(records []Record, rec Record) []Record {
	out := make([]Record, 0, len(records)+1)
	out = append(out, records...)
	return append(out, rec)
}

// Delete returns a new collection without the record with the given id.
func Delete(records []Record, id string) ([]Record, error) {
	out := make([]Record, 0, len(records))
	found := false
	for _, r := range records {
		if r.ID == id {
			found = true
			continue
		}
		out = append(out, r)
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return out, nil
}

// Rename sets a trimmed, non-empty name and touches LastModified.
func Rename(records []Record, id, name string, now time.Time) ([]Record, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("name cannot be empty")
	}
	return modify(records, id, func(r *Record) {
		r.Name = name
		r.LastModified = now
	})
}

// SetPlan changes the plan of a website.
func SetPlan(records []Record, id string, plan Plan, now time.Time) ([]Record, error) {
	return modify(records, id, func(r *Record) {
		r.Plan = plan
		r.LastModified = now
	})
}

// Publish marks a website as published.
func Publish(records []Record, id string, now time.Time) ([]Record, error) {
	return modify(records, id, func(r *Record) {
		r.Status = StatusPublished
		r.LastModified = now
	})
}

// SetThumbnails applies thumbnails by id. Ids no longer present are ignored.
func SetThumbnails(records []Record, thumbs map[string]string) []Record {
	out := make([]Record, len(records))
	copy(out, records)
	for i := range out {
		if t, ok := thumbs[out[i].ID]; ok && t != "" {
			out[i].Thumbnail = t
		}
	}
	return out
}

func modify(records []Record, id string, fn func(*Record)) ([]Record, error) {
	out := make([]Record, len(records))
	copy(out, records)
	for i := range out {
		if out[i].ID == id {
			fn(&out[i])
			return out, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}
