// Package resolver rewrites image references inside HTML markup so that a
// document can be previewed without access to its sibling asset files.
package resolver

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/KaramelBytes/sitesmith-cli/internal/project"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Stats counts the references rewritten by a resolution pass.
type Stats struct {
	Images      int
	Backgrounds int
}

// Total returns the number of rewritten references.
func (s Stats) Total() int { return s.Images + s.Backgrounds }

var documentPattern = regexp.MustCompile(`(?i)<(!doctype|html[\s>]|body[\s>])`)

var urlPattern = regexp.MustCompile(`(?i)url\(\s*['"]?([^'")]+)['"]?\s*\)`)

// Resolve returns markup with every <img src> and inline background image
// whose file name matches an image in pool replaced by that image's inlined
// content. The source markup is never modified.
func Resolve(markup string, pool []project.File) string {
	out, _ := ResolveStats(markup, pool)
	return out
}

// ResolveStats is Resolve plus a count of rewritten references.
func ResolveStats(markup string, pool []project.File) (string, Stats) {
	var stats Stats
	nodes, err := parse(markup)
	if err != nil {
		return markup, stats
	}

	images := lookup(pool)
	for _, n := range nodes {
		walk(n, func(el *html.Node) {
			if el.DataAtom == atom.Img {
				if rewriteImg(el, images) {
					stats.Images++
				}
			}
			if rewriteStyle(el, images) {
				stats.Backgrounds++
			}
		})
	}

	var buf bytes.Buffer
	for _, n := range nodes {
		if err := html.Render(&buf, n); err != nil {
			return markup, Stats{}
		}
	}
	return buf.String(), stats
}

// parse reads whole documents as documents so <html> and <body> attributes
// survive; anything else is a fragment.
func parse(markup string) ([]*html.Node, error) {
	if documentPattern.MatchString(markup) {
		doc, err := html.Parse(strings.NewReader(markup))
		if err != nil {
			return nil, err
		}
		return []*html.Node{doc}, nil
	}
	ctx := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	return html.ParseFragment(strings.NewReader(markup), ctx)
}

// lookup maps case-folded image names to files. Later entries win.
func lookup(pool []project.File) map[string]project.File {
	m := make(map[string]project.File, len(pool))
	for _, f := range pool {
		if f.IsImage() {
			m[strings.ToLower(f.Name)] = f
		}
	}
	return m
}

// FileName extracts the case-folded final path segment of a reference.
func FileName(ref string) string {
	if i := strings.LastIndex(ref, "/"); i >= 0 {
		ref = ref[i+1:]
	}
	return strings.ToLower(ref)
}

func walk(n *html.Node, fn func(*html.Node)) {
	if n.Type == html.ElementNode {
		fn(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

func rewriteImg(el *html.Node, images map[string]project.File) bool {
	for i, a := range el.Attr {
		if a.Namespace != "" || a.Key != "src" || a.Val == "" {
			continue
		}
		f, ok := images[FileName(a.Val)]
		if !ok {
			return false
		}
		el.Attr[i].Val = f.Content
		return true
	}
	return false
}

// rewriteStyle rewrites the first url(...) of the first background
// declaration that names a pooled image. Later layers and every other
// declaration are left as written.
func rewriteStyle(el *html.Node, images map[string]project.File) bool {
	idx := -1
	for i, a := range el.Attr {
		if a.Namespace == "" && a.Key == "style" {
			idx = i
			break
		}
	}
	if idx < 0 || !strings.Contains(strings.ToLower(el.Attr[idx].Val), "url(") {
		return false
	}
	style := el.Attr[idx].Val
	for _, d := range ParseStyle(style) {
		if d.Property != "background-image" && d.Property != "background" {
			continue
		}
		if value, ok := rewriteURL(d.Raw(style), images); ok {
			el.Attr[idx].Val = d.Replace(style, value)
			return true
		}
	}
	return false
}

func rewriteURL(value string, images map[string]project.File) (string, bool) {
	loc := urlPattern.FindStringSubmatchIndex(value)
	if loc == nil {
		return value, false
	}
	f, ok := images[FileName(strings.TrimSpace(value[loc[2]:loc[3]]))]
	if !ok {
		return value, false
	}
	return value[:loc[0]] + "url('" + f.Content + "')" + value[loc[1]:], true
}
