// Package vector stacks SVG documents into one combined SVG. Each source is
// nested as an <svg> element inside a box that carries a margin of padding
// units on every side; boxes are laid out with the layout package.
package vector

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"spritegen/internal/layout"
)

const svgNamespace = "http://www.w3.org/2000/svg"

// Source is one SVG document to stack.
type Source struct {
	Name string
	Data []byte
}

// Shape reports the geometry of one stacked source. Inner dimensions are the
// displayed size of the icon, outer dimensions include the margin, and the
// absolute position is the negated top-left corner of the outer box, ready to
// be used as a CSS background position.
type Shape struct {
	Name        string
	InnerWidth  int
	InnerHeight int
	OuterWidth  int
	OuterHeight int
	AbsoluteX   int
	AbsoluteY   int
}

// Sprite is the compiled document and its shapes in input order.
type Sprite struct {
	SVG    []byte
	Width  int
	Height int
	Shapes []Shape
}

type document struct {
	XMLName xml.Name
	Attrs   []xml.Attr `xml:",any,attr"`
	Inner   []byte     `xml:",innerxml"`
}

type parsed struct {
	name    string
	width   int
	height  int
	viewBox string
	// attrs are carried onto the nested <svg>; namespaces are prefixed
	// declarations hoisted to the root.
	attrs      []xml.Attr
	namespaces []xml.Attr
	inner      []byte
}

// Compile parses every source and writes the combined document.
func Compile(sources []Source, padding int) (*Sprite, error) {
	if len(sources) == 0 {
		return nil, errors.New("compile svg: no sources")
	}
	if padding < 0 {
		padding = 0
	}

	docs := make([]parsed, len(sources))
	sizes := make([]layout.Size, len(sources))
	for i, src := range sources {
		doc, err := parse(src)
		if err != nil {
			return nil, err
		}
		docs[i] = doc
		sizes[i] = layout.Size{Width: doc.width + 2*padding, Height: doc.height + 2*padding}
	}
	placed := layout.Pack(sizes, 0)

	namespaces := collectNamespaces(docs)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="%s"`, svgNamespace)
	for _, ns := range namespaces {
		fmt.Fprintf(&buf, ` xmlns:%s="%s"`, ns.Name.Local, escape(ns.Value))
	}
	fmt.Fprintf(&buf, ` width="%d" height="%d" viewBox="0 0 %d %d">`, placed.Width, placed.Height, placed.Width, placed.Height)

	sprite := &Sprite{Width: placed.Width, Height: placed.Height, Shapes: make([]Shape, len(docs))}
	for i, doc := range docs {
		r := placed.Rects[i]
		fmt.Fprintf(&buf, `<svg x="%d" y="%d" width="%d" height="%d" viewBox="%s"`,
			r.X+padding, r.Y+padding, doc.width, doc.height, escape(doc.viewBox))
		for _, attr := range doc.attrs {
			fmt.Fprintf(&buf, ` %s="%s"`, attr.Name.Local, escape(attr.Value))
		}
		buf.WriteByte('>')
		buf.Write(doc.inner)
		buf.WriteString(`</svg>`)

		sprite.Shapes[i] = Shape{
			Name:        doc.name,
			InnerWidth:  doc.width,
			InnerHeight: doc.height,
			OuterWidth:  r.Width,
			OuterHeight: r.Height,
			AbsoluteX:   -r.X,
			AbsoluteY:   -r.Y,
		}
	}
	buf.WriteString(`</svg>`)
	sprite.SVG = buf.Bytes()
	return sprite, nil
}

func parse(src Source) (parsed, error) {
	var doc document
	if err := xml.Unmarshal(src.Data, &doc); err != nil {
		return parsed{}, fmt.Errorf("parse %s: %w", src.Name, err)
	}
	if doc.XMLName.Local != "svg" {
		return parsed{}, fmt.Errorf("parse %s: root element is <%s>, want <svg>", src.Name, doc.XMLName.Local)
	}

	out := parsed{name: src.Name, inner: doc.Inner}
	var widthAttr, heightAttr string
	for _, attr := range doc.Attrs {
		switch {
		case attr.Name.Space == "xmlns":
			out.namespaces = append(out.namespaces, attr)
		case attr.Name.Space != "", attr.Name.Local == "xmlns":
			continue
		case attr.Name.Local == "width":
			widthAttr = attr.Value
		case attr.Name.Local == "height":
			heightAttr = attr.Value
		case attr.Name.Local == "viewBox":
			out.viewBox = strings.TrimSpace(attr.Value)
		case attr.Name.Local == "x", attr.Name.Local == "y", attr.Name.Local == "version":
			continue
		default:
			out.attrs = append(out.attrs, attr)
		}
	}

	vbWidth, vbHeight, hasViewBox := parseViewBox(out.viewBox)
	w, okW := parseLength(widthAttr)
	h, okH := parseLength(heightAttr)
	if !okW {
		w, okW = vbWidth, hasViewBox
	}
	if !okH {
		h, okH = vbHeight, hasViewBox
	}
	if !okW || !okH || w <= 0 || h <= 0 {
		return parsed{}, fmt.Errorf("parse %s: cannot determine dimensions", src.Name)
	}
	out.width = int(math.Ceil(w))
	out.height = int(math.Ceil(h))
	if !hasViewBox {
		out.viewBox = fmt.Sprintf("0 0 %s %s", formatFloat(w), formatFloat(h))
	}
	return out, nil
}

// collectNamespaces returns prefixed namespace declarations used by the
// sources, first declaration per prefix wins.
func collectNamespaces(docs []parsed) []xml.Attr {
	var out []xml.Attr
	seen := make(map[string]struct{})
	for _, doc := range docs {
		for _, attr := range doc.namespaces {
			if _, ok := seen[attr.Name.Local]; ok {
				continue
			}
			seen[attr.Name.Local] = struct{}{}
			out = append(out, attr)
		}
	}
	return out
}

func parseLength(value string) (float64, bool) {
	value = strings.TrimSpace(value)
	value = strings.TrimSuffix(value, "px")
	if value == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func parseViewBox(value string) (float64, float64, bool) {
	fields := strings.FieldsFunc(value, func(r rune) bool { return r == ' ' || r == ',' })
	if len(fields) != 4 {
		return 0, 0, false
	}
	w, errW := strconv.ParseFloat(fields[2], 64)
	h, errH := strconv.ParseFloat(fields[3], 64)
	if errW != nil || errH != nil {
		return 0, 0, false
	}
	return w, h, true
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func escape(value string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(value))
	return b.String()
}
