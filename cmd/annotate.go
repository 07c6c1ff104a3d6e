package cmd

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"github.com/mj1618/clickaudit/internal/model"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// LabelMode controls what text is drawn on each annotated element.
type LabelMode int

const (
	// LabelSequence draws "[n]" sequence ids.
	LabelSequence LabelMode = iota
	// LabelKind draws "b1" / "l3": kind initial and kind id.
	LabelKind
)

var (
	buttonColor  = color.RGBA{R: 0, G: 90, B: 255, A: 255}
	linkColor    = color.RGBA{R: 255, G: 0, B: 0, A: 255}
	errorColor   = color.RGBA{R: 255, G: 160, B: 0, A: 255}
	textColor    = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	outlineColor = color.RGBA{R: 0, G: 0, B: 0, A: 200}
)

// AnnotatePNG decodes a full-page PNG screenshot, outlines every element
// that has a bounding box and re-encodes it. Boxes are in CSS pixels; scale
// converts them to image pixels (the device pixel ratio).
func AnnotatePNG(screenshot []byte, elements []model.InteractiveElement, scale float64, mode LabelMode) ([]byte, error) {
	img, err := png.Decode(bytes.NewReader(screenshot))
	if err != nil {
		return nil, fmt.Errorf("decode screenshot: %w", err)
	}
	out := AnnotateScreenshot(img, elements, scale, mode)
	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, fmt.Errorf("encode screenshot: %w", err)
	}
	return buf.Bytes(), nil
}

// AnnotateScreenshot draws a box and label for each element onto a copy of img.
func AnnotateScreenshot(img image.Image, elements []model.InteractiveElement, scale float64, mode LabelMode) *image.RGBA {
	if scale <= 0 {
		scale = 1
	}
	rgba := ImageToRGBA(img)
	for _, el := range elements {
		if el.BoundingBox == nil {
			continue
		}
		drawElementBox(rgba, el, scale, mode)
	}
	return rgba
}

// ImageToRGBA converts any image to RGBA
func ImageToRGBA(img image.Image) *image.RGBA {
	bounds := img.Bounds()
	rgba := image.NewRGBA(bounds)
	draw.Draw(rgba, bounds, img, bounds.Min, draw.Src)
	return rgba
}

func elementLabel(el model.InteractiveElement, mode LabelMode) string {
	if mode == LabelKind {
		kind := "l"
		if el.IsButton {
			kind = "b"
		}
		return fmt.Sprintf("%s%d", kind, el.KindID)
	}
	return fmt.Sprintf("[%d]", el.SequenceID)
}

func drawElementBox(img *image.RGBA, el model.InteractiveElement, scale float64, mode LabelMode) {
	b := el.BoundingBox
	x := int(b.X * scale)
	y := int(b.Y * scale)
	w := int(b.Width * scale)
	h := int(b.Height * scale)

	c := linkColor
	switch {
	case el.Error != "":
		c = errorColor
	case el.IsButton:
		c = buttonColor
	}
	drawRectangle(img, x, y, x+w, y+h, c)

	// Label sits just inside the top-left corner.
	drawTextWithOutline(img, elementLabel(el, mode), x+2, y+11, textColor, outlineColor)
}

// drawRectangle draws a rectangle outline clamped to the image.
func drawRectangle(img *image.RGBA, x1, y1, x2, y2 int, c color.Color) {
	r := image.Rect(x1, y1, x2, y2).Intersect(img.Bounds())
	if r.Empty() {
		return
	}
	for x := r.Min.X; x < r.Max.X; x++ {
		img.Set(x, r.Min.Y, c)
		img.Set(x, r.Max.Y-1, c)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		img.Set(r.Min.X, y, c)
		img.Set(r.Max.X-1, y, c)
	}
}

// drawTextWithOutline draws text with its baseline at (x, y) and a one
// pixel outline.
func drawTextWithOutline(img *image.RGBA, text string, x, y int, fg, outline color.Color) {
	draw1 := func(dx, dy int, c color.Color) {
		d := &font.Drawer{
			Dst:  img,
			Src:  image.NewUniform(c),
			Face: basicfont.Face7x13,
			Dot:  fixed.P(x+dx, y+dy),
		}
		d.DrawString(text)
	}
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			if dx != 0 || dy != 0 {
				draw1(dx, dy, outline)
			}
		}
	}
	draw1(0, 0, fg)
}
