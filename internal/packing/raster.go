package packing

import (
	"context"
	"fmt"
	"image"

	"spritegen/internal/classify"
	"spritegen/internal/fileutil"
	"spritegen/internal/layout"
	"spritegen/internal/raster"
	"spritegen/internal/services"
)

// RasterEngine lays out and composites decoded bitmaps.
type RasterEngine interface {
	Decode(data []byte) (image.Image, error)
	Compose(images []image.Image, padding int) (layout.Result, []byte, error)
}

type defaultRasterEngine struct{}

func (defaultRasterEngine) Decode(data []byte) (image.Image, error) { return raster.Decode(data) }

func (defaultRasterEngine) Compose(images []image.Image, padding int) (layout.Result, []byte, error) {
	return raster.Compose(images, padding)
}

// RasterPacker packs PNG files into a PNG sheet.
type RasterPacker struct {
	fs     fileutil.FS
	engine RasterEngine
}

// NewRasterPacker returns a packer reading through fsys. A nil engine selects
// the binary-tree layout with imaging compositing.
func NewRasterPacker(fsys fileutil.FS, engine RasterEngine) *RasterPacker {
	if engine == nil {
		engine = defaultRasterEngine{}
	}
	return &RasterPacker{fs: fsys, engine: engine}
}

// Pack decodes every file and composites the sheet. Placements follow the
// order of files.
func (p *RasterPacker) Pack(ctx context.Context, files []string, padding int) (*Sheet, error) {
	images := make([]image.Image, len(files))
	for i, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := p.fs.ReadFile(file)
		if err != nil {
			return nil, services.Wrap(services.ErrPacking, "", "read icon", IconName(file), err)
		}
		img, err := p.engine.Decode(data)
		if err != nil {
			return nil, services.Wrap(services.ErrPacking, "", "decode icon", IconName(file), err)
		}
		images[i] = img
	}

	placed, sheet, err := p.engine.Compose(images, padding)
	if err != nil {
		return nil, services.Wrap(services.ErrPacking, "", "compose sheet", "", err)
	}
	if len(placed.Rects) != len(files) {
		return nil, services.Wrap(services.ErrPacking, "", "compose sheet",
			fmt.Sprintf("engine placed %d of %d icons", len(placed.Rects), len(files)), nil)
	}

	icons := make([]Placement, len(files))
	for i, file := range files {
		r := placed.Rects[i]
		icons[i] = Placement{Name: IconName(file), X: r.X, Y: r.Y, Width: r.Width, Height: r.Height}
	}
	return &Sheet{Extension: classify.ExtPNG, Icons: icons, Image: sheet}, nil
}
