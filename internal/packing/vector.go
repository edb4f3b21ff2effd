package packing

import (
	"context"
	"fmt"

	"spritegen/internal/classify"
	"spritegen/internal/fileutil"
	"spritegen/internal/services"
	"spritegen/internal/vector"
)

// VectorEngine compiles SVG sources into one document with per-shape
// geometry.
type VectorEngine interface {
	Compile(sources []vector.Source, padding int) (*vector.Sprite, error)
}

type defaultVectorEngine struct{}

func (defaultVectorEngine) Compile(sources []vector.Source, padding int) (*vector.Sprite, error) {
	return vector.Compile(sources, padding)
}

// VectorPacker packs SVG files into an SVG sheet.
type VectorPacker struct {
	fs     fileutil.FS
	engine VectorEngine
}

// NewVectorPacker returns a packer reading through fsys. A nil engine selects
// the built-in SVG stacker.
func NewVectorPacker(fsys fileutil.FS, engine VectorEngine) *VectorPacker {
	if engine == nil {
		engine = defaultVectorEngine{}
	}
	return &VectorPacker{fs: fsys, engine: engine}
}

// Pack compiles the files and converts each shape's geometry to an icon
// placement by stripping the engine's margin from the absolute position.
func (p *VectorPacker) Pack(ctx context.Context, files []string, padding int) (*Sheet, error) {
	sources := make([]vector.Source, len(files))
	for i, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := p.fs.ReadFile(file)
		if err != nil {
			return nil, services.Wrap(services.ErrPacking, "", "read icon", IconName(file), err)
		}
		sources[i] = vector.Source{Name: IconName(file), Data: data}
	}

	sprite, err := p.engine.Compile(sources, padding)
	if err != nil {
		return nil, services.Wrap(services.ErrPacking, "", "compile svg", "", err)
	}
	if len(sprite.Shapes) != len(files) {
		return nil, services.Wrap(services.ErrPacking, "", "compile svg",
			fmt.Sprintf("engine reported %d of %d shapes", len(sprite.Shapes), len(files)), nil)
	}

	icons := make([]Placement, len(sprite.Shapes))
	for i, shape := range sprite.Shapes {
		icons[i] = Placement{
			Name:   shape.Name,
			X:      stripMargin(shape.AbsoluteX, shape.OuterWidth, shape.InnerWidth),
			Y:      stripMargin(shape.AbsoluteY, shape.OuterHeight, shape.InnerHeight),
			Width:  shape.InnerWidth,
			Height: shape.InnerHeight,
		}
	}
	return &Sheet{Extension: classify.ExtSVG, Icons: icons, Image: sprite.SVG}, nil
}

// stripMargin converts an absolute outer position to the inner offset:
// |absolute - (outer-inner)/2|.
func stripMargin(absolute, outer, inner int) int {
	offset := absolute - (outer-inner)/2
	if offset < 0 {
		return -offset
	}
	return offset
}
