package thumbnail

import (
	"context"
	"encoding/base64"
	"image/color"
	"testing"
)

func TestParseColor(t *testing.T) {
	cases := []struct {
		in   string
		want color.RGBA
		ok   bool
	}{
		{"#fff", color.RGBA{255, 255, 255, 255}, true},
		{"#112233", color.RGBA{0x11, 0x22, 0x33, 255}, true},
		{"rgb(10, 20, 30)", color.RGBA{10, 20, 30, 255}, true},
		{"Navy", color.RGBA{0, 0, 128, 255}, true},
		{"url(a.png) no-repeat #000", color.RGBA{0, 0, 0, 255}, true},
		{"transparent", color.RGBA{}, false},
		{"#12345", color.RGBA{}, false},
	}
	for _, c := range cases {
		got, ok := parseColor(c.in)
		if ok != c.ok || got != c.want {
			t.Errorf("parseColor(%q) = %v %v, want %v %v", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestSketchPaintsBodyBackground(t *testing.T) {
	img, err := SketchRasterizer{}.Rasterize(context.Background(),
		`<body style="background:#003366"><h1>Title</h1></body>`, 200, 100)
	if err != nil {
		t.Fatalf("rasterize: %v", err)
	}
	r, g, b, _ := img.At(199, 99).RGBA()
	if r>>8 != 0x00 || g>>8 != 0x33 || b>>8 != 0x66 {
		t.Fatalf("expected body color in corner, got %d %d %d", r>>8, g>>8, b>>8)
	}
}

func TestSketchHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := (SketchRasterizer{}).Rasterize(ctx, "<p>x</p>", 10, 10); err == nil {
		t.Fatal("expected context error")
	}
}

func TestSketchReadsLastStyleDeclaration(t *testing.T) {
	cases := []struct {
		name  string
		style string
	}{
		{"background-color last", `padding: 4px; background-color: #003366`},
		{"background middle", `margin:0; background: #003366 url(x.png) no-repeat; color: white`},
		{"trailing semicolon", `background:#003366;`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			img, err := SketchRasterizer{}.Rasterize(context.Background(), `<body style="`+c.style+`"><p>x</p></body>`, 120, 80)
			if err != nil {
				t.Fatalf("rasterize: %v", err)
			}
			r, g, b, _ := img.At(119, 79).RGBA()
			if r>>8 != 0x00 || g>>8 != 0x33 || b>>8 != 0x66 {
				t.Fatalf("expected body color in corner, got %d %d %d", r>>8, g>>8, b>>8)
			}
		})
	}
}

func TestDecodeImageRejectsOversizedHeader(t *testing.T) {
	// GIF logical screen of 65535x65535 with no image data
	huge := []byte{'G', 'I', 'F', '8', '9', 'a', 0xff, 0xff, 0xff, 0xff, 0x00, 0x00, 0x00}
	if img := decodeImage(huge); img != nil {
		t.Fatalf("expected oversized image to be skipped, got %v", img.Bounds())
	}
	pixel := []byte{
		0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x01, 0x00, 0x01, 0x00, 0x80, 0x00, 0x00, 0xff, 0xff, 0xff,
		0x00, 0x00, 0x00, 0x21, 0xf9, 0x04, 0x01, 0x00, 0x00, 0x00, 0x00, 0x2c, 0x00, 0x00, 0x00, 0x00,
		0x01, 0x00, 0x01, 0x00, 0x00, 0x02, 0x02, 0x44, 0x01, 0x00, 0x3b,
	}
	if img := decodeImage(pixel); img == nil || img.Bounds().Dx() != 1 {
		t.Fatal("expected a 1x1 image")
	}
	if decodeImage([]byte("not an image")) != nil {
		t.Fatal("expected nil for garbage")
	}
}

func TestSketchDrawsPlaceholderForOversizedImage(t *testing.T) {
	huge := []byte{'G', 'I', 'F', '8', '9', 'a', 0xff, 0xff, 0xff, 0xff, 0x00, 0x00, 0x00}
	src := "data:image/gif;base64," + base64.StdEncoding.EncodeToString(huge)
	img, err := SketchRasterizer{}.Rasterize(context.Background(), `<img src="`+src+`">`, 300, 200)
	if err != nil {
		t.Fatalf("rasterize: %v", err)
	}
	r, g, b, _ := img.At(margin+10, margin+10).RGBA()
	if uint8(r>>8) != imageTint.R || uint8(g>>8) != imageTint.G || uint8(b>>8) != imageTint.B {
		t.Fatalf("expected placeholder tint, got %d %d %d", r>>8, g>>8, b>>8)
	}
}
