// Package artifact renders and writes the files generated for each sprite
// group (sheet image, SCSS fragment, TypeScript module) and the shared sizes
// stylesheet.
package artifact

import (
	"errors"
	"path/filepath"
	"strconv"

	"spritegen/internal/config"
	"spritegen/internal/fileutil"
	"spritegen/internal/naming"
	"spritegen/internal/packing"
	"spritegen/internal/services"
	"spritegen/internal/textutil"
)

// Header is the marker comment at the top of every generated text file.
const Header = "Do not edit. This file is generated automatically by spritegen."

// SizesName is the base name of the shared sizes stylesheet.
const SizesName = "sizes"

// Group is a validated packed sprite group ready for emission.
type Group struct {
	// Index is the group's position in the configured sprite list.
	Index     int
	Name      string
	Extension string
	Icons     []packing.Placement
	Image     []byte
}

// FileName returns the sprite sheet file name.
func (g Group) FileName() string {
	return g.Name + g.Extension
}

// Writer emits artifacts under the configured target folders. Every write
// creates missing directories and replaces the target file.
type Writer struct {
	fs           fileutil.FS
	targets      config.TargetFolder
	classes      config.Classes
	url          string
	helperModule string
}

// NewWriter returns a Writer for cfg.
func NewWriter(fsys fileutil.FS, cfg *config.Config) *Writer {
	return &Writer{
		fs:           fsys,
		targets:      cfg.TargetFolder,
		classes:      cfg.Classes,
		url:          cfg.URL,
		helperModule: cfg.HelperModule,
	}
}

// SpritePath returns where the sheet image of g is written.
func (w *Writer) SpritePath(g Group) string {
	return filepath.Join(w.targets.Icons, g.FileName())
}

// StylesheetPath returns where the SCSS fragment of g is written.
func (w *Writer) StylesheetPath(g Group) string {
	return filepath.Join(w.targets.SCSS, "_"+g.Name+".scss")
}

// ModulePath returns where the TypeScript module of g is written.
func (w *Writer) ModulePath(g Group) string {
	return filepath.Join(w.targets.TS, g.Name+".ts")
}

// SizesPath returns where the shared sizes stylesheet is written.
func (w *Writer) SizesPath() string {
	return filepath.Join(w.targets.SCSS, "_"+SizesName+".scss")
}

// WriteGroup writes the sheet image, stylesheet, and module for g. Errors
// carry services.ErrOutput.
func (w *Writer) WriteGroup(g Group) error {
	stylesheet, err := w.RenderStylesheet(g)
	if err != nil {
		return services.Wrap(services.ErrOutput, g.Name, "render stylesheet", "", err)
	}
	module, err := w.RenderModule(g)
	if err != nil {
		return services.Wrap(services.ErrOutput, g.Name, "render module", "", err)
	}

	files := []struct {
		op   string
		path string
		data []byte
	}{
		{"write sprite", w.SpritePath(g), g.Image},
		{"write stylesheet", w.StylesheetPath(g), stylesheet},
		{"write module", w.ModulePath(g), module},
	}
	for _, f := range files {
		if err := w.fs.WriteFile(f.path, f.data); err != nil {
			return services.Wrap(services.ErrOutput, g.Name, f.op, "", err)
		}
	}
	return nil
}

// WriteSizes writes the shared sizes stylesheet. sizes must already be sorted
// and deduplicated.
func (w *Writer) WriteSizes(sizes []int) error {
	data, err := w.RenderSizes(sizes)
	if err != nil {
		return services.Wrap(services.ErrOutput, "", "render sizes", "", err)
	}
	if err := w.fs.WriteFile(w.SizesPath(), data); err != nil {
		return services.Wrap(services.ErrOutput, "", "write sizes", "", err)
	}
	return nil
}

type iconRule struct {
	Class string
	X     int
	Y     int
}

type stylesheetData struct {
	Header string
	Base   string
	Sprite string
	URL    string
	Icons  []iconRule
}

// RenderStylesheet renders the SCSS fragment of g.
func (w *Writer) RenderStylesheet(g Group) ([]byte, error) {
	data := stylesheetData{
		Header: Header,
		Base:   w.classes.Base,
		Sprite: naming.ClassName(w.classes.Sprite, g.Index),
		URL:    naming.ResolveURL(w.url, g.FileName()),
		Icons:  make([]iconRule, len(g.Icons)),
	}
	for i, icon := range g.Icons {
		data.Icons[i] = iconRule{Class: naming.ClassName(w.classes.Icon, i), X: icon.X, Y: icon.Y}
	}
	return render("sprite.scss.tmpl", data)
}

type moduleIcon struct {
	Key      string
	FileName string
	Classes  string
	X        int
	Y        int
	Width    int
	Height   int
}

type moduleData struct {
	Header       string
	HelperModule string
	Name         string
	EnumName     string
	MapName      string
	Icons        []moduleIcon
}

// RenderModule renders the TypeScript module of g.
func (w *Writer) RenderModule(g Group) ([]byte, error) {
	data := moduleData{
		Header:       Header,
		HelperModule: w.helperModule,
		Name:         g.Name,
		EnumName:     textutil.Identifier(g.Name) + "Class",
		MapName:      textutil.LowerIdentifier(g.Name) + "Icons",
		Icons:        make([]moduleIcon, len(g.Icons)),
	}
	keys := make(map[string]struct{}, len(g.Icons))
	for i, icon := range g.Icons {
		key := textutil.Identifier(icon.Name)
		if _, taken := keys[key]; taken {
			key += "_" + strconv.Itoa(i)
		}
		keys[key] = struct{}{}
		data.Icons[i] = moduleIcon{
			Key:      key,
			FileName: icon.Name,
			Classes:  w.IconClasses(g.Index, i, icon.Width),
			X:        icon.X,
			Y:        icon.Y,
			Width:    icon.Width,
			Height:   icon.Height,
		}
	}
	return render("module.ts.tmpl", data)
}

// IconClasses returns the class list of the icon at position index within the
// group at groupIndex.
func (w *Writer) IconClasses(groupIndex, index, size int) string {
	return naming.ClassList(
		w.classes.Base,
		naming.ClassName(w.classes.Sprite, groupIndex),
		naming.ClassName(w.classes.Size, size),
		naming.ClassName(w.classes.Icon, index),
	)
}

type sizeRule struct {
	Value int
	Class string
}

type sizesData struct {
	Header string
	Base   string
	Sizes  []sizeRule
}

// RenderSizes renders the shared sizes stylesheet.
func (w *Writer) RenderSizes(sizes []int) ([]byte, error) {
	if len(sizes) == 0 {
		return nil, errors.New("render sizes: no sizes")
	}
	data := sizesData{Header: Header, Base: w.classes.Base, Sizes: make([]sizeRule, len(sizes))}
	for i, size := range sizes {
		data.Sizes[i] = sizeRule{Value: size, Class: naming.ClassName(w.classes.Size, size)}
	}
	return render("sizes.scss.tmpl", data)
}
