// Package raster decodes icon bitmaps and composites them onto a single
// transparent PNG sheet laid out by the layout package.
package raster

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"github.com/disintegration/imaging"

	"spritegen/internal/layout"
)

// Decode parses one encoded bitmap.
func Decode(data []byte) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// Compose lays out images with padding pixels between neighbours and returns
// the placements (in input order) together with the encoded PNG sheet.
func Compose(images []image.Image, padding int) (layout.Result, []byte, error) {
	if len(images) == 0 {
		return layout.Result{}, nil, errors.New("compose sheet: no images")
	}

	sizes := make([]layout.Size, len(images))
	for i, img := range images {
		b := img.Bounds()
		sizes[i] = layout.Size{Width: b.Dx(), Height: b.Dy()}
	}
	placed := layout.Pack(sizes, padding)
	if placed.Width == 0 || placed.Height == 0 {
		return layout.Result{}, nil, errors.New("compose sheet: images are empty")
	}

	sheet := imaging.New(placed.Width, placed.Height, color.NRGBA{})
	for i, img := range images {
		r := placed.Rects[i]
		sheet = imaging.Paste(sheet, img, image.Pt(r.X, r.Y))
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, sheet, imaging.PNG, imaging.PNGCompressionLevel(png.DefaultCompression)); err != nil {
		return layout.Result{}, nil, fmt.Errorf("encode sheet: %w", err)
	}
	return placed, buf.Bytes(), nil
}
