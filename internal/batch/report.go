package batch

// Status is the outcome of one group.
type Status string

const (
	StatusSkipped   Status = "skipped"
	StatusGenerated Status = "generated"
	StatusFailed    Status = "failed"
)

// GroupReport summarises one configured group.
type GroupReport struct {
	Index  int
	Name   string
	Kind   string
	Status Status
	Icons  int
	Cached bool
	Err    error
}

// Report summarises a run. Groups follows configuration order.
type Report struct {
	RunID  string
	Groups []GroupReport
	// Sizes lists the sizes written to the shared stylesheet; empty when it
	// was not written.
	Sizes    []int
	SizesErr error
}

// Count returns how many groups ended with status.
func (r *Report) Count(status Status) int {
	n := 0
	for _, g := range r.Groups {
		if g.Status == status {
			n++
		}
	}
	return n
}

// HasFailures reports whether any group failed or the sizes stylesheet could
// not be written.
func (r *Report) HasFailures() bool {
	return r.Count(StatusFailed) > 0 || r.SizesErr != nil
}
