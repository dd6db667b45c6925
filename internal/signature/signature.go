// Package signature decodes hand-drawn signature images and prepares them for
// embedding in PDF documents.
package signature

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// DataURLPrefix is the prefix of a PNG data URL.
const DataURLPrefix = "data:image/png;base64,"

// ErrEmpty is returned for a blank signature.
var ErrEmpty = errors.New("signature is empty")

// Decode parses a PNG given as a data URL or as bare base64.
func Decode(dataURL string) (image.Image, error) {
	raw, err := DecodeBytes(dataURL)
	if err != nil {
		return nil, err
	}
	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode signature png: %w", err)
	}
	return img, nil
}

// DecodeBytes returns the raw PNG bytes behind a data URL.
func DecodeBytes(dataURL string) ([]byte, error) {
	s := strings.TrimSpace(dataURL)
	if s == "" {
		return nil, ErrEmpty
	}
	if strings.HasPrefix(s, "data:") {
		comma := strings.IndexByte(s, ',')
		if comma < 0 || !strings.HasSuffix(s[:comma], ";base64") {
			return nil, fmt.Errorf("signature: unsupported data url %q", s[:min(len(s), 32)])
		}
		s = s[comma+1:]
	}
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("signature base64: %w", err)
	}
	return raw, nil
}

// Normalize scales img to fit inside width x height, keeping its aspect ratio,
// and centers it on a white canvas. Transparent strokes end up on white.
func Normalize(img image.Image, width, height int) (*image.RGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid dimensions: %dx%d", width, height)
	}
	src := img.Bounds()
	if src.Empty() {
		return nil, ErrEmpty
	}

	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	scale := min(float64(width)/float64(src.Dx()), float64(height)/float64(src.Dy()))
	w := max(1, int(float64(src.Dx())*scale))
	h := max(1, int(float64(src.Dy())*scale))
	x0 := (width - w) / 2
	y0 := (height - h) / 2

	draw.CatmullRom.Scale(canvas, image.Rect(x0, y0, x0+w, y0+h), img, src, draw.Over, nil)
	return canvas, nil
}

// Caption writes text along the bottom edge of img in a dark grey fixed-width
// face, centered horizontally. Text wider than the image is truncated.
func Caption(img *image.RGBA, text string) {
	if text == "" {
		return
	}
	face := basicfont.Face7x13
	b := img.Bounds()

	for font.MeasureString(face, text).Ceil() > b.Dx() && len(text) > 1 {
		text = text[:len(text)-1]
	}
	textWidth := font.MeasureString(face, text).Ceil()
	metrics := face.Metrics()

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.Gray{Y: 0x40}),
		Face: face,
		Dot:  fixed.P(b.Min.X+(b.Dx()-textWidth)/2, b.Max.Y-metrics.Descent.Ceil()-2),
	}
	d.DrawString(text)
}

// EncodePNG encodes img as PNG.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode signature png: %w", err)
	}
	return buf.Bytes(), nil
}

// NormalizeDataURL decodes dataURL, normalizes it to width x height and
// returns PNG bytes.
func NormalizeDataURL(dataURL string, width, height int) ([]byte, error) {
	img, err := Decode(dataURL)
	if err != nil {
		return nil, err
	}
	canvas, err := Normalize(img, width, height)
	if err != nil {
		return nil, err
	}
	return EncodePNG(canvas)
}

// ToDataURL wraps PNG bytes in a data URL.
func ToDataURL(pngBytes []byte) string {
	return DataURLPrefix + base64.StdEncoding.EncodeToString(pngBytes)
}

// FromReader reads a PNG, normalizes it to width x height and returns it as a
// data URL.
func FromReader(r io.Reader, width, height int) (string, error) {
	img, err := png.Decode(r)
	if err != nil {
		return "", fmt.Errorf("decode signature png: %w", err)
	}
	canvas, err := Normalize(img, width, height)
	if err != nil {
		return "", err
	}
	b, err := EncodePNG(canvas)
	if err != nil {
		return "", err
	}
	return ToDataURL(b), nil
}

// FromFile is FromReader over the file at path.
func FromFile(path string, width, height int) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open signature: %w", err)
	}
	defer f.Close()
	return FromReader(f, width, height)
}
