package resolver_test

import (
	"strings"
	"testing"

	"github.com/KaramelBytes/sitesmith-cli/internal/project"
	"github.com/KaramelBytes/sitesmith-cli/internal/resolver"
	"golang.org/x/net/html"
)

const logoURI = "data:image/png;base64,AAA"

func pool() []project.File {
	return []project.File{
		{Name: "index.html", Type: "text/html", Content: "<p>home</p>"},
		{Name: "logo.png", Type: "image/png", Content: logoURI},
		{Name: "Hero.JPG", Type: "image/jpeg", Content: "data:image/jpeg;base64,BBB"},
	}
}

// attrs collects the values of attr on every element named tag in markup.
func attrs(t *testing.T, markup, tag, attr string) []string {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		t.Fatalf("parse output: %v", err)
	}
	var out []string
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == tag {
			for _, a := range n.Attr {
				if a.Key == attr {
					out = append(out, a.Val)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(doc)
	return out
}

func TestResolveRewritesImgByFileName(t *testing.T) {
	out, stats := resolver.ResolveStats(`<img src="assets/Logo.PNG">`, pool())
	if got := strings.Count(out, `src="`+logoURI+`"`); got != 1 {
		t.Fatalf("expected exactly one rewritten src, got %d in %q", got, out)
	}
	if stats.Images != 1 || stats.Backgrounds != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestResolveIsCaseAndPathInsensitive(t *testing.T) {
	for _, src := range []string{"/x/y/Logo.png", "logo.png", "LOGO.PNG", "../img/logo.png"} {
		out := resolver.Resolve(`<img src="`+src+`" alt="x">`, pool())
		got := attrs(t, out, "img", "src")
		if len(got) != 1 || got[0] != logoURI {
			t.Errorf("src %q: got %v", src, got)
		}
	}
}

func TestResolveLeavesNonMatchingMarkup(t *testing.T) {
	in := `<div class="hero"><h1>Welcome</h1><img src="missing.png"/><p style="color: red">Hi</p></div>`
	if out := resolver.Resolve(in, pool()); out != in {
		t.Fatalf("expected unchanged markup\n in: %s\nout: %s", in, out)
	}
	// Normalization only: unmatched markup resolves the same as with no pool.
	messy := `<section><img src=other.gif><span style='background-image:url(none.png)'>x</span>`
	if a, b := resolver.Resolve(messy, pool()), resolver.Resolve(messy, nil); a != b {
		t.Fatalf("expected normalization-only change\n%s\n%s", a, b)
	}
}

func TestResolvePassesThroughInlinedSources(t *testing.T) {
	in := `<img src="` + logoURI + `"/>`
	out, stats := resolver.ResolveStats(in, pool())
	if out != in || stats.Total() != 0 {
		t.Fatalf("expected pass-through, got %q %+v", out, stats)
	}
}

func TestResolveRewritesFirstBackgroundLayerOnly(t *testing.T) {
	in := `<div style="color: blue; background-image: url('img/hero.jpg'), url(logo.png)">x</div>`
	out, stats := resolver.ResolveStats(in, pool())
	if stats.Backgrounds != 1 {
		t.Fatalf("expected one background rewrite, got %+v", stats)
	}
	styles := attrs(t, out, "div", "style")
	if len(styles) != 1 {
		t.Fatalf("expected one style, got %v", styles)
	}
	style := styles[0]
	if !strings.Contains(style, "url('data:image/jpeg;base64,BBB')") {
		t.Fatalf("first layer not rewritten: %q", style)
	}
	if !strings.Contains(style, "url(logo.png)") {
		t.Fatalf("second layer should be left as written: %q", style)
	}
	if !strings.Contains(style, "color: blue") {
		t.Fatalf("other declarations lost: %q", style)
	}
}

func TestResolveBackgroundShorthand(t *testing.T) {
	out := resolver.Resolve(`<header style="background: #fff url(&quot;/static/logo.png&quot;) no-repeat">x</header>`, pool())
	styles := attrs(t, out, "header", "style")
	if len(styles) != 1 || !strings.Contains(styles[0], "url('"+logoURI+"')") {
		t.Fatalf("shorthand not rewritten: %v", styles)
	}
}

func TestResolveOnlyUsesImageEntries(t *testing.T) {
	files := []project.File{{Name: "logo.png", Type: "text/plain", Content: "not an image"}}
	in := `<img src="logo.png"/>`
	if out := resolver.Resolve(in, files); out != in {
		t.Fatalf("non-image entries must not match: %q", out)
	}
}

func TestResolveLastDuplicateWins(t *testing.T) {
	files := []project.File{
		{Name: "Logo.png", Type: "image/png", Content: "data:image/png;base64,FIRST"},
		{Name: "logo.PNG", Type: "image/png", Content: "data:image/png;base64,SECOND"},
	}
	got := attrs(t, resolver.Resolve(`<img src="logo.png">`, files), "img", "src")
	if len(got) != 1 || got[0] != "data:image/png;base64,SECOND" {
		t.Fatalf("expected last entry to win, got %v", got)
	}
}

func TestResolveDoesNotTouchPool(t *testing.T) {
	files := pool()
	before := files[0].Content
	_ = resolver.Resolve(`<img src="logo.png"><div style="background-image:url(logo.png)"></div>`, files)
	if files[0].Content != before || files[1].Content != logoURI {
		t.Fatal("pool mutated by resolution")
	}
}

func TestFileName(t *testing.T) {
	cases := map[string]string{
		"a/b/C.png":  "c.png",
		"C.png":      "c.png",
		"dir/":       "",
		"/root.JPEG": "root.jpeg",
	}
	for in, want := range cases {
		if got := resolver.FileName(in); got != want {
			t.Errorf("%q: got %q want %q", in, got, want)
		}
	}
}

func TestResolveKeepsDocumentShell(t *testing.T) {
	in := `<!DOCTYPE html><html lang="en"><head><title>Shop</title></head>` +
		`<body style="background-image: url('img/hero.jpg')"><img src="logo.png"></body></html>`
	out, stats := resolver.ResolveStats(in, pool())
	if stats.Images != 1 || stats.Backgrounds != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if !strings.HasPrefix(out, "<!DOCTYPE html>") {
		t.Fatalf("doctype dropped: %q", out)
	}
	if got := attrs(t, out, "html", "lang"); len(got) != 1 || got[0] != "en" {
		t.Fatalf("html attributes dropped: %v", got)
	}
	styles := attrs(t, out, "body", "style")
	if len(styles) != 1 || !strings.Contains(styles[0], "data:image/jpeg;base64,BBB") {
		t.Fatalf("body background not rewritten: %v", styles)
	}
}

func TestResolveBackgroundKeepsOtherDeclarations(t *testing.T) {
	const hero = "url('data:image/jpeg;base64,BBB')"
	cases := []struct {
		name  string
		style string
		want  string
	}{
		{"only declaration", `background-image: url('img/hero.jpg')`, `background-image: ` + hero},
		{"trailing semicolon", `background-image: url(hero.jpg);`, `background-image: ` + hero + `;`},
		{"last declaration", `color:red; background-image:url(hero.jpg)`, `color:red; background-image:` + hero},
		{"middle declaration", `color:red; background-image: url(hero.jpg); margin: 0 auto`, `color:red; background-image: ` + hero + `; margin: 0 auto`},
		{"double quoted", `background: #fff url("hero.jpg") no-repeat`, `background: #fff ` + hero + ` no-repeat`},
		{"padded", `background-image: url( hero.jpg )`, `background-image: ` + hero},
		{"layers", `background-image: url(hero.jpg), url(logo.png)`, `background-image: ` + hero + `, url(logo.png)`},
		{"second background", `background-image: url(none.png); background: url(hero.jpg)`, `background-image: url(none.png); background: ` + hero},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			out, stats := resolver.ResolveStats(`<div style="`+html.EscapeString(c.style)+`">x</div>`, pool())
			if stats.Backgrounds != 1 {
				t.Fatalf("expected one background rewrite, got %+v", stats)
			}
			styles := attrs(t, out, "div", "style")
			if len(styles) != 1 || styles[0] != c.want {
				t.Fatalf("style = %q, want %q", styles, c.want)
			}
		})
	}
}

func TestParseStyle(t *testing.T) {
	style := `color: Red; background: url('data:image/png;base64,AA;BB') no-repeat ;margin:0 auto`
	decls := resolver.ParseStyle(style)
	if len(decls) != 3 {
		t.Fatalf("expected 3 declarations, got %+v", decls)
	}
	if decls[0].Property != "color" || decls[0].Value != "Red" {
		t.Fatalf("unexpected first declaration %+v", decls[0])
	}
	if got := decls[1].Raw(style); got != ` url('data:image/png;base64,AA;BB') no-repeat ` {
		t.Fatalf("data URI split apart: %q", got)
	}
	if decls[2].Property != "margin" || decls[2].Value != "0 auto" {
		t.Fatalf("last declaration without ';' lost its value: %+v", decls[2])
	}
	if got := decls[2].Replace(style, "4px"); got != `color: Red; background: url('data:image/png;base64,AA;BB') no-repeat ;margin:4px` {
		t.Fatalf("Replace changed other text: %q", got)
	}
	if got := resolver.ParseStyle("  ;; nonsense ; "); len(got) != 0 {
		t.Fatalf("expected no declarations, got %+v", got)
	}
}
