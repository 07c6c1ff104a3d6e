package render

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

// Thumbnailer downscales encoded image bytes.
type Thumbnailer interface {
	Thumbnail(data []byte, maxWidth, maxHeight int) ([]byte, error)
}

// DefaultJPEGQuality is used when Imaging.Quality is zero.
const DefaultJPEGQuality = 80

// Imaging thumbnails with disintegration/imaging. Output is JPEG on a white
// background; images smaller than the bounds are not enlarged.
type Imaging struct {
	Quality int
}

// Thumbnail decodes data (PNG, JPEG, GIF, BMP, TIFF or WebP), fits it within
// maxWidth x maxHeight preserving aspect ratio and encodes it as JPEG.
func (t Imaging) Thumbnail(data []byte, maxWidth, maxHeight int) ([]byte, error) {
	src, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("render: decode image: %w", err)
	}
	b := src.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("render: empty image")
	}
	if maxWidth <= 0 {
		maxWidth = defaultFitSize
	}
	if maxHeight <= 0 {
		maxHeight = defaultFitSize
	}
	fitted := imaging.Fit(src, maxWidth, maxHeight, imaging.Lanczos)
	fb := fitted.Bounds()
	canvas := imaging.New(fb.Dx(), fb.Dy(), color.White)
	canvas = imaging.Overlay(canvas, fitted, image.Pt(0, 0), 1.0)

	q := t.Quality
	if q <= 0 || q > 100 {
		q = DefaultJPEGQuality
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, canvas, imaging.JPEG, imaging.JPEGQuality(q)); err != nil {
		return nil, fmt.Errorf("render: encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// DataURI encodes data as a base64 data URI.
func DataURI(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}
