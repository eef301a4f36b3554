package thumbnail

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strconv"
	"strings"

	"github.com/KaramelBytes/sitesmith-cli/internal/resolver"
	"github.com/KaramelBytes/sitesmith-cli/internal/utils"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Rasterizer paints resolved markup onto a width×height canvas.
type Rasterizer interface {
	Rasterize(ctx context.Context, markup string, width, height int) (image.Image, error)
}

// SketchRasterizer draws a layout sketch of a document: text runs become
// bars, inlined images are scaled into place, and background colors fill
// their blocks. It does not run scripts or load remote resources.
type SketchRasterizer struct{}

const (
	margin    = 32
	charWidth = 7
	lineGap   = 6
	maxLines  = 6
)

var (
	white     = color.RGBA{255, 255, 255, 255}
	textGray  = color.RGBA{170, 170, 170, 255}
	headDark  = color.RGBA{51, 51, 51, 255}
	linkBlue  = color.RGBA{66, 110, 220, 255}
	imageTint = color.RGBA{225, 228, 232, 255}
)

// maxImagePixels caps what an inlined image may declare before it is drawn
// as a placeholder instead of being decoded.
const maxImagePixels = 4096 * 4096

var skipped = map[atom.Atom]bool{
	atom.Head: true, atom.Script: true, atom.Style: true, atom.Noscript: true,
	atom.Template: true, atom.Title: true, atom.Meta: true, atom.Link: true,
}

var headingSize = map[atom.Atom]int{
	atom.H1: 28, atom.H2: 22, atom.H3: 18, atom.H4: 16, atom.H5: 14, atom.H6: 14,
}

type paintOp struct {
	rect image.Rectangle
	fill color.Color
	img  image.Image
}

type sketch struct {
	ctx    context.Context
	width  int
	height int
	y      int
	ops    []paintOp
}

type frame struct {
	x0, x1 int
	ink    color.Color
	lineH  int
}

func (SketchRasterizer) Rasterize(ctx context.Context, markup string, width, height int) (image.Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid canvas %dx%d", width, height)
	}
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parse markup: %w", err)
	}

	s := &sketch{ctx: ctx, width: width, height: height, y: margin}
	if err := s.node(doc, frame{x0: margin, x1: width - margin, ink: textGray, lineH: 10}); err != nil {
		return nil, err
	}

	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(canvas, canvas.Bounds(), &image.Uniform{C: white}, image.Point{}, draw.Src)
	for _, op := range s.ops {
		if op.rect.Empty() {
			continue
		}
		if op.img != nil {
			scaleInto(canvas, op.rect, op.img)
			continue
		}
		draw.Draw(canvas, op.rect.Intersect(canvas.Bounds()), &image.Uniform{C: op.fill}, image.Point{}, draw.Over)
	}
	return canvas, nil
}

func (s *sketch) full() bool { return s.y >= s.height }

func (s *sketch) node(n *html.Node, f frame) error {
	if err := s.ctx.Err(); err != nil {
		return err
	}
	if s.full() {
		return nil
	}
	switch n.Type {
	case html.TextNode:
		s.text(n.Data, f)
		return nil
	case html.ElementNode:
		if skipped[n.DataAtom] {
			return nil
		}
		if n.DataAtom == atom.Img {
			s.image(attr(n, "src"), f)
			return nil
		}
	case html.DocumentNode:
	default:
		return nil
	}

	child := f
	if size, ok := headingSize[n.DataAtom]; ok {
		child.ink, child.lineH = headDark, size
	}
	if n.DataAtom == atom.A {
		child.ink = linkBlue
	}

	bg, hasBG := color.Color(nil), false
	if style := attr(n, "style"); style != "" {
		for _, d := range resolver.ParseStyle(style) {
			switch d.Property {
			case "background-color", "background":
				if c, ok := parseColor(d.Value); ok {
					bg, hasBG = c, true
				}
			case "color":
				if c, ok := parseColor(d.Value); ok {
					child.ink = c
				}
			}
		}
	}

	slot := -1
	start := s.y
	if hasBG {
		slot = len(s.ops)
		s.ops = append(s.ops, paintOp{})
		child.x0 += 8
		child.x1 -= 8
		s.y += 8
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := s.node(c, child); err != nil {
			return err
		}
	}
	if hasBG {
		s.y += 8
		if s.y-start < 48 {
			s.y = start + 48
		}
		rect := image.Rect(f.x0, start, f.x1, s.y)
		if n.DataAtom == atom.Body || n.DataAtom == atom.Html {
			rect = image.Rect(0, 0, s.width, s.height)
		}
		s.ops[slot] = paintOp{rect: rect, fill: bg}
	}
	if _, ok := headingSize[n.DataAtom]; ok || n.DataAtom == atom.P || n.DataAtom == atom.Div {
		s.y += lineGap
	}
	return nil
}

func (s *sketch) text(raw string, f frame) {
	words := strings.Fields(raw)
	if len(words) == 0 {
		return
	}
	chars := len(strings.Join(words, " "))
	perLine := (f.x1 - f.x0) / charWidth
	if perLine <= 0 {
		return
	}
	for line := 0; chars > 0 && line < maxLines && !s.full(); line++ {
		w := min(chars, perLine)
		s.ops = append(s.ops, paintOp{
			rect: image.Rect(f.x0, s.y, f.x0+w*charWidth, s.y+f.lineH),
			fill: f.ink,
		})
		chars -= w
		s.y += f.lineH + lineGap
	}
}

func (s *sketch) image(src string, f frame) {
	avail := f.x1 - f.x0
	var img image.Image
	if utils.IsDataURI(src) {
		if _, data, err := utils.DecodeDataURI(src); err == nil {
			img = decodeImage(data)
		}
	}
	if img == nil {
		s.ops = append(s.ops, paintOp{rect: image.Rect(f.x0, s.y, f.x0+min(160, avail), s.y+100), fill: imageTint})
		s.y += 100 + lineGap
		return
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return
	}
	if w > avail {
		h = h * avail / w
		w = avail
	}
	if h > 240 {
		w = w * 240 / h
		h = 240
	}
	if w == 0 || h == 0 {
		return
	}
	s.ops = append(s.ops, paintOp{rect: image.Rect(f.x0, s.y, f.x0+w, s.y+h), img: img})
	s.y += h + lineGap
}

// scaleInto draws src into dst's rect with nearest-neighbor sampling.
func scaleInto(dst *image.RGBA, rect image.Rectangle, src image.Image) {
	sb := src.Bounds()
	clip := rect.Intersect(dst.Bounds())
	for y := clip.Min.Y; y < clip.Max.Y; y++ {
		sy := sb.Min.Y + (y-rect.Min.Y)*sb.Dy()/rect.Dy()
		for x := clip.Min.X; x < clip.Max.X; x++ {
			sx := sb.Min.X + (x-rect.Min.X)*sb.Dx()/rect.Dx()
			dst.Set(x, y, src.At(sx, sy))
		}
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

var namedColors = map[string]color.RGBA{
	"black":   {0, 0, 0, 255},
	"white":   {255, 255, 255, 255},
	"red":     {255, 0, 0, 255},
	"green":   {0, 128, 0, 255},
	"blue":    {0, 0, 255, 255},
	"gray":    {128, 128, 128, 255},
	"grey":    {128, 128, 128, 255},
	"yellow":  {255, 255, 0, 255},
	"orange":  {255, 165, 0, 255},
	"purple":  {128, 0, 128, 255},
	"navy":    {0, 0, 128, 255},
	"teal":    {0, 128, 128, 255},
	"silver":  {192, 192, 192, 255},
	"maroon":  {128, 0, 0, 255},
	"olive":   {128, 128, 0, 255},
	"lime":    {0, 255, 0, 255},
	"aqua":    {0, 255, 255, 255},
	"fuchsia": {255, 0, 255, 255},
}

// parseColor understands #rgb, #rrggbb, rgb()/rgba() and basic color names.
// For a background shorthand the first recognizable token wins.
func parseColor(v string) (color.RGBA, bool) {
	v = strings.ToLower(strings.TrimSpace(v))
	if strings.HasPrefix(v, "rgb") {
		open, end := strings.IndexByte(v, '('), strings.IndexByte(v, ')')
		if open < 0 || end < open {
			return color.RGBA{}, false
		}
		parts := strings.FieldsFunc(v[open+1:end], func(r rune) bool { return r == ',' || r == ' ' || r == '/' })
		if len(parts) < 3 {
			return color.RGBA{}, false
		}
		var ch [3]uint8
		for i := 0; i < 3; i++ {
			n, err := strconv.Atoi(parts[i])
			if err != nil || n < 0 || n > 255 {
				return color.RGBA{}, false
			}
			ch[i] = uint8(n)
		}
		return color.RGBA{ch[0], ch[1], ch[2], 255}, true
	}
	for _, tok := range strings.Fields(v) {
		if c, ok := namedColors[tok]; ok {
			return c, true
		}
		if c, ok := parseHex(tok); ok {
			return c, true
		}
	}
	return color.RGBA{}, false
}

func parseHex(tok string) (color.RGBA, bool) {
	hex, ok := strings.CutPrefix(tok, "#")
	if !ok {
		return color.RGBA{}, false
	}
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return color.RGBA{}, false
	}
	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, false
	}
	return color.RGBA{uint8(n >> 16), uint8(n >> 8), uint8(n), 255}, true
}

// decodeImage returns nil for undecodable images and for images whose header
// declares more than maxImagePixels.
func decodeImage(data []byte) image.Image {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil || cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > maxImagePixels {
		return nil
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil
	}
	return img
}
