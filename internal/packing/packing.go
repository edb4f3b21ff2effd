// Package packing adapts the raster and vector sheet builders to one Packer
// contract. A Packer either returns a complete Sheet or an error carrying
// services.ErrPacking; partial placements are never returned.
package packing

import (
	"context"
	"path/filepath"
	"strings"
)

// Placement is the position and size of one icon within its sheet.
type Placement struct {
	Name   string
	X      int
	Y      int
	Width  int
	Height int
}

// Sheet is a packed sprite image with its placements in packing order.
type Sheet struct {
	Extension string
	Icons     []Placement
	Image     []byte
	// Cached reports that the sheet came from the pack cache.
	Cached bool
}

// Packer packs the given files into a sheet with padding pixels of spacing.
type Packer interface {
	Pack(ctx context.Context, files []string, padding int) (*Sheet, error)
}

// IconName returns the file name without directory or extension.
func IconName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
