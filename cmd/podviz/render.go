package main

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
)

const (
	rowHeight  = 28
	rowGap     = 4
	marginLeft = 8
	marginTop  = 8
	fontSize   = 11
)

var rowPalette = []color.Color{
	color.RGBA{0xcf, 0xe8, 0xff, 0xff},
	color.RGBA{0xff, 0xe8, 0xcf, 0xff},
	color.RGBA{0xdf, 0xff, 0xd8, 0xff},
	color.RGBA{0xf0, 0xd8, 0xff, 0xff},
	color.RGBA{0xff, 0xd8, 0xe0, 0xff},
}

// renderer draws a span tree as a labeled byte-layout diagram: one row
// per nesting depth, each span a colored box positioned and sized
// proportionally to its byte offset and length, with labels drawn via
// freetype the way cmd/memanim renders its frame annotations.
type renderer struct {
	scale    float64 // pixels per byte
	font     *truetype.Font
	img      *image.NRGBA
	fontCtx  *freetype.Context
	maxDepth int
}

func newRenderer(totalBytes, width int, fontPath string) (*renderer, error) {
	fontData, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, fmt.Errorf("podviz: read font: %w", err)
	}
	font, err := freetype.ParseFont(fontData)
	if err != nil {
		return nil, fmt.Errorf("podviz: parse font: %w", err)
	}

	scale := 1.0
	if totalBytes > 0 {
		scale = float64(width-2*marginLeft) / float64(totalBytes)
	}

	return &renderer{scale: scale, font: font}, nil
}

// Render lays spans out into a PNG and writes it to path.
func (r *renderer) Render(spans []span, path string) error {
	r.maxDepth = 0
	measureDepth(spans, 0, &r.maxDepth)

	width := marginLeft*2 + int(totalWidth(spans)*r.scale)
	height := marginTop*2 + (r.maxDepth+1)*(rowHeight+rowGap)

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Over)

	fontCtx := freetype.NewContext()
	fontCtx.SetFont(r.font)
	fontCtx.SetFontSize(fontSize)
	fontCtx.SetDst(img)
	fontCtx.SetClip(img.Bounds())
	fontCtx.SetSrc(image.Black)

	r.img = img
	r.fontCtx = fontCtx

	r.drawSpans(spans, 0)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

func (r *renderer) drawSpans(spans []span, depth int) {
	y := marginTop + depth*(rowHeight+rowGap)
	fill := rowPalette[depth%len(rowPalette)]

	for _, s := range spans {
		x0 := marginLeft + int(float64(s.Offset)*r.scale)
		x1 := marginLeft + int(float64(s.Offset+s.Length)*r.scale)
		if x1 <= x0 {
			x1 = x0 + 1
		}
		rect := image.Rect(x0, y, x1, y+rowHeight)
		draw.Draw(r.img, rect, image.NewUniform(fill), image.Point{}, draw.Over)
		drawBoxOutline(r.img, rect, color.Black)

		label := s.Label
		if s.Detail != "" {
			label = label + " " + s.Detail
		}
		r.fontCtx.DrawString(label, freetype.Pt(x0+2, y+rowHeight-8))

		if len(s.Children) > 0 {
			r.drawSpans(s.Children, depth+1)
		}
	}
}

func drawBoxOutline(img *image.NRGBA, rect image.Rectangle, c color.Color) {
	for x := rect.Min.X; x < rect.Max.X; x++ {
		img.Set(x, rect.Min.Y, c)
		img.Set(x, rect.Max.Y-1, c)
	}
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		img.Set(rect.Min.X, y, c)
		img.Set(rect.Max.X-1, y, c)
	}
}

func measureDepth(spans []span, depth int, max *int) {
	if depth > *max {
		*max = depth
	}
	for _, s := range spans {
		if len(s.Children) > 0 {
			measureDepth(s.Children, depth+1, max)
		}
	}
}

func totalWidth(spans []span) int {
	max := 0
	for _, s := range spans {
		if end := s.Offset + s.Length; end > max {
			max = end
		}
	}
	return max
}
