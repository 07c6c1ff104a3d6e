// Package render turns SVG markup and fetched images into small,
// self-contained preview bitmaps.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"math"
	"strings"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"

	"github.com/mj1618/clickaudit/internal/dom"
	"github.com/mj1618/clickaudit/internal/svgprep"
)

// FitMode selects which edge a Fit constrains.
type FitMode int

const (
	FitWidth FitMode = iota
	FitHeight
)

func (m FitMode) String() string {
	if m == FitHeight {
		return "height"
	}
	return "width"
}

// Fit is a rasterization size strategy.
type Fit struct {
	Mode FitMode
	Size int
}

const (
	defaultFitSize = 200
	extremeFitSize = 40
	maxRasterEdge  = 4096
)

// FitFor picks a Fit for an SVG of the given intrinsic size. Very wide
// images are fitted to a short height and very tall ones to a narrow width
// so neither edge degenerates.
func FitFor(width, height float64) Fit {
	if width <= 0 || height <= 0 {
		return Fit{Mode: FitWidth, Size: defaultFitSize}
	}
	ratio := width / height
	switch {
	case ratio > 5:
		return Fit{Mode: FitHeight, Size: extremeFitSize}
	case ratio < 0.2:
		return Fit{Mode: FitWidth, Size: extremeFitSize}
	}
	return Fit{Mode: FitWidth, Size: defaultFitSize}
}

// Dimensions returns the output pixel size for an image of the given
// intrinsic size.
func (f Fit) Dimensions(width, height float64) (int, int) {
	size := float64(f.Size)
	if size <= 0 {
		size = defaultFitSize
	}
	var w, h float64
	if f.Mode == FitHeight {
		h = size
		w = size * width / height
	} else {
		w = size
		h = size * height / width
	}
	return clampEdge(w), clampEdge(h)
}

func clampEdge(v float64) int {
	n := int(math.Round(v))
	if n < 1 {
		return 1
	}
	if n > maxRasterEdge {
		return maxRasterEdge
	}
	return n
}

// Rasterizer renders SVG markup to PNG bytes.
type Rasterizer interface {
	Rasterize(svg string, fit Fit) ([]byte, error)
}

// OKSVG rasterizes with oksvg. Simplified mode ignores unsupported markup
// and drops styling, filter, mask and clip content before rendering.
type OKSVG struct {
	Simplified bool
}

var errEmptyViewBox = errors.New("render: svg has no drawable area")

// Rasterize renders svg at the size fit selects for its viewBox.
func (o OKSVG) Rasterize(svg string, fit Fit) (out []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("render: rasterizer panic: %v", r)
		}
	}()
	mode := oksvg.StrictErrorMode
	if o.Simplified {
		mode = oksvg.IgnoreErrorMode
		svg = Simplify(svg)
	}
	icon, err := oksvg.ReadIconStream(strings.NewReader(svg), mode)
	if err != nil {
		return nil, fmt.Errorf("render: read svg: %w", err)
	}
	vw, vh := icon.ViewBox.W, icon.ViewBox.H
	if vw <= 0 || vh <= 0 {
		return nil, errEmptyViewBox
	}
	w, h := fit.Dimensions(vw, vh)
	icon.SetTarget(0, 0, float64(w), float64(h))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	scanner := rasterx.NewScannerGV(w, h, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(w, h, scanner), 1.0)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("render: encode png: %w", err)
	}
	return buf.Bytes(), nil
}

var simplifiedDrop = []string{"style", "filter", "mask", "clipPath", "pattern", "script"}

// Simplify strips markup that commonly trips renderers. It returns svg
// unchanged when it cannot be parsed.
func Simplify(svg string) string {
	root, err := svgprep.Parse(svg)
	if err != nil {
		return svg
	}
	for _, n := range dom.FindAll(root, false, func(n *dom.Node) bool { return n.IsElement(simplifiedDrop...) }) {
		if n.Parent != nil {
			n.Parent.RemoveChild(n)
		}
	}
	for _, n := range append([]*dom.Node{root}, dom.Elements(root)...) {
		for _, a := range []string{"filter", "mask", "clip-path", "style", "class"} {
			n.RemoveAttr(a)
		}
	}
	return dom.OuterXML(root)
}

// Renderer renders a preview with a primary rasterizer and retries once
// with a fallback.
type Renderer struct {
	Primary  Rasterizer
	Fallback Rasterizer
}

// NewRenderer returns a Renderer using strict oksvg first and simplified
// oksvg as the retry.
func NewRenderer() *Renderer {
	return &Renderer{Primary: OKSVG{}, Fallback: OKSVG{Simplified: true}}
}

// Render returns PNG bytes or the error of the last attempt.
func (r *Renderer) Render(svg string, fit Fit) ([]byte, error) {
	out, err := r.Primary.Rasterize(svg, fit)
	if err == nil {
		return out, nil
	}
	if r.Fallback == nil {
		return nil, err
	}
	out, ferr := r.Fallback.Rasterize(svg, fit)
	if ferr != nil {
		return nil, fmt.Errorf("%w (retry: %v)", err, ferr)
	}
	return out, nil
}
