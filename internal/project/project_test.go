package project_test

import (
	"errors"
	"testing"
	"time"

	"github.com/KaramelBytes/sitesmith-cli/internal/project"
)

func names(files ...string) []project.File {
	out := make([]project.File, 0, len(files))
	for _, n := range files {
		out = append(out, project.File{Name: n, Type: "text/html"})
	}
	return out
}

func TestSelectPrimaryPriority(t *testing.T) {
	cases := []struct {
		name  string
		files []project.File
		want  string
	}{
		{"index wins", names("about.html", "index.html", "home.html"), "index.html"},
		{"home next", names("about.html", "home.html"), "home.html"},
		{"first html", names("about.html"), "about.html"},
		{"htm counts", []project.File{{Name: "style.css"}, {Name: "old.HTM"}}, "old.HTM"},
		{"case insensitive", names("about.html", "INDEX.HTML"), "INDEX.HTML"},
		{"empty", nil, ""},
		{"no html", []project.File{{Name: "style.css"}, {Name: "logo.png"}}, ""},
	}
	for _, c := range cases {
		got := project.SelectPrimary(c.files)
		switch {
		case c.want == "" && got != nil:
			t.Errorf("%s: expected nil, got %q", c.name, got.Name)
		case c.want != "" && (got == nil || got.Name != c.want):
			t.Errorf("%s: expected %q, got %+v", c.name, c.want, got)
		}
	}
}

func TestTransformsDoNotMutateInput(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	in := []project.Record{{ID: "a", Name: "Old", Plan: project.PlanFree}, {ID: "b", Name: "Other"}}

	out, err := project.Rename(in, "a", "  New name ", now)
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	if in[0].Name != "Old" {
		t.Fatalf("input mutated: %+v", in[0])
	}
	if out[0].Name != "New name" || !out[0].LastModified.Equal(now) {
		t.Fatalf("unexpected rename result: %+v", out[0])
	}

	out, err = project.SetPlan(out, "a", project.PlanEnterprise, now)
	if err != nil {
		t.Fatalf("set plan: %v", err)
	}
	if out[0].Plan != project.PlanEnterprise {
		t.Fatalf("plan not set: %+v", out[0])
	}

	out, err = project.Delete(out, "b")
	if err != nil || len(out) != 1 || len(in) != 2 {
		t.Fatalf("delete: err=%v out=%d in=%d", err, len(out), len(in))
	}
}

func TestRenameRejectsBlankAndMissing(t *testing.T) {
	in := []project.Record{{ID: "a", Name: "Site"}}
	if _, err := project.Rename(in, "a", "   ", time.Now()); err == nil {
		t.Fatal("expected error for blank name")
	}
	if _, err := project.Rename(in, "zzz", "x", time.Now()); !errors.Is(err, project.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := project.Delete(in, "zzz"); !errors.Is(err, project.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestNeedsThumbnail(t *testing.T) {
	files := names("index.html")
	cases := []struct {
		rec  project.Record
		want bool
	}{
		{project.Record{}, false},
		{project.Record{Files: files}, true},
		{project.Record{Files: files, Thumbnail: "https://images.unsplash.com/photo.jpg"}, true},
		{project.Record{Files: files, Thumbnail: "data:image/png;base64,AAA"}, false},
	}
	for i, c := range cases {
		if got := c.rec.NeedsThumbnail(); got != c.want {
			t.Errorf("case %d: got %v want %v", i, got, c.want)
		}
	}
}

func TestSetThumbnailsIgnoresUnknownAndEmpty(t *testing.T) {
	in := []project.Record{{ID: "a", Thumbnail: "old"}, {ID: "b"}}
	out := project.SetThumbnails(in, map[string]string{"a": "", "b": "data:image/png;base64,B", "gone": "x"})
	if out[0].Thumbnail != "old" {
		t.Fatalf("empty thumbnail must keep previous, got %q", out[0].Thumbnail)
	}
	if out[1].Thumbnail != "data:image/png;base64,B" {
		t.Fatalf("thumbnail not applied: %q", out[1].Thumbnail)
	}
	if in[1].Thumbnail != "" {
		t.Fatal("input mutated")
	}
}

func TestNewIDIsUniqueAndSortable(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	a := project.NewID(t0)
	b := project.NewID(t0.Add(time.Second))
	if a == b || a >= b {
		t.Fatalf("expected increasing ids, got %s then %s", a, b)
	}
}

func TestParsePlan(t *testing.T) {
	if p, err := project.ParsePlan("Professional"); err != nil || p != project.PlanProfessional {
		t.Fatalf("got %q %v", p, err)
	}
	if _, err := project.ParsePlan("gold"); err == nil {
		t.Fatal("expected error")
	}
}
