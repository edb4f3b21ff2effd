package batch

import "sort"

// SizeRegistry is the run-scoped set of validated square icon sizes. It is
// not safe for concurrent use; the coordinator loop owns it.
type SizeRegistry struct {
	seen map[int]struct{}
}

// NewSizeRegistry returns an empty registry.
func NewSizeRegistry() *SizeRegistry {
	return &SizeRegistry{seen: make(map[int]struct{})}
}

// Add records size. Repeated sizes are ignored.
func (r *SizeRegistry) Add(size int) {
	r.seen[size] = struct{}{}
}

// Len returns the number of distinct sizes.
func (r *SizeRegistry) Len() int {
	return len(r.seen)
}

// Sorted returns the distinct sizes in ascending order.
func (r *SizeRegistry) Sorted() []int {
	sizes := make([]int, 0, len(r.seen))
	for size := range r.seen {
		sizes = append(sizes, size)
	}
	sort.Ints(sizes)
	return sizes
}
