// Package layout places rectangles on a sheet with a growing binary-tree
// packer. Placement is deterministic for identical input.
package layout

import "sort"

// Size is the width and height of one rectangle.
type Size struct {
	Width  int
	Height int
}

// Rect is a placed rectangle.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Result holds placements in input order and the sheet dimensions.
type Result struct {
	Rects  []Rect
	Width  int
	Height int
}

type node struct {
	x, y, w, h int
	used       bool
	right      *node
	down       *node
}

type packer struct {
	root *node
}

// Pack places every size on one sheet, leaving padding pixels between
// neighbours. Rectangles are placed largest side first, but the returned
// slice follows the order of sizes.
func Pack(sizes []Size, padding int) Result {
	if len(sizes) == 0 {
		return Result{}
	}
	if padding < 0 {
		padding = 0
	}

	order := make([]int, len(sizes))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		sa, sb := sizes[order[a]], sizes[order[b]]
		if ma, mb := maxSide(sa), maxSide(sb); ma != mb {
			return ma > mb
		}
		return sa.Height > sb.Height
	})

	first := sizes[order[0]]
	p := &packer{root: &node{w: first.Width + padding, h: first.Height + padding}}

	result := Result{Rects: make([]Rect, len(sizes))}
	for _, idx := range order {
		s := sizes[idx]
		w, h := s.Width+padding, s.Height+padding
		n := p.find(p.root, w, h)
		if n != nil {
			n = p.split(n, w, h)
		} else {
			n = p.grow(w, h)
		}
		result.Rects[idx] = Rect{X: n.x, Y: n.y, Width: s.Width, Height: s.Height}
		result.Width = max(result.Width, n.x+s.Width)
		result.Height = max(result.Height, n.y+s.Height)
	}
	return result
}

func (p *packer) find(n *node, w, h int) *node {
	if n == nil {
		return nil
	}
	if n.used {
		if found := p.find(n.right, w, h); found != nil {
			return found
		}
		return p.find(n.down, w, h)
	}
	if w <= n.w && h <= n.h {
		return n
	}
	return nil
}

func (p *packer) split(n *node, w, h int) *node {
	n.used = true
	n.down = &node{x: n.x, y: n.y + h, w: n.w, h: n.h - h}
	n.right = &node{x: n.x + w, y: n.y, w: n.w - w, h: h}
	return n
}

func (p *packer) grow(w, h int) *node {
	canDown := w <= p.root.w
	canRight := h <= p.root.h
	shouldRight := canRight && p.root.h >= p.root.w+w
	shouldDown := canDown && p.root.w >= p.root.h+h

	switch {
	case shouldRight:
		return p.growRight(w, h)
	case shouldDown:
		return p.growDown(w, h)
	case canRight:
		return p.growRight(w, h)
	default:
		// Sorting by largest side first guarantees canDown here.
		return p.growDown(w, h)
	}
}

func (p *packer) growRight(w, h int) *node {
	old := p.root
	p.root = &node{
		used:  true,
		w:     old.w + w,
		h:     old.h,
		down:  old,
		right: &node{x: old.w, w: w, h: old.h},
	}
	return p.split(p.find(p.root, w, h), w, h)
}

func (p *packer) growDown(w, h int) *node {
	old := p.root
	p.root = &node{
		used:  true,
		w:     old.w,
		h:     old.h + h,
		down:  &node{y: old.h, w: old.w, h: h},
		right: old,
	}
	return p.split(p.find(p.root, w, h), w, h)
}

func maxSide(s Size) int {
	return max(s.Width, s.Height)
}
