package agent

import (
	"github.com/cespare/xxhash/v2"
)

// LoopDetector observes the sequence of tool calls within a single run and
// reports when the run should be aborted as cycling. Implementations are
// stateful and must not be shared across runs.
type LoopDetector interface {
	// Observe records a requested call and returns true when a loop is detected.
	Observe(name, arguments string) bool
}

// RepeatDetector aborts a run after the same tool call (name plus arguments
// fingerprint) is requested threshold times consecutively.
type RepeatDetector struct {
	threshold int
	last      uint64
	count     int
}

var _ LoopDetector = (*RepeatDetector)(nil)

// NewRepeatDetector returns a detector that trips on threshold consecutive
// identical calls. A threshold below 2 is raised to 2.
func NewRepeatDetector(threshold int) *RepeatDetector {
	if threshold < 2 {
		threshold = 2
	}
	return &RepeatDetector{threshold: threshold}
}

// Observe implements LoopDetector.
func (d *RepeatDetector) Observe(name, arguments string) bool {
	h := xxhash.New()
	_, _ = h.WriteString(name)
	_, _ = h.Write([]byte{0})
	_, _ = h.WriteString(arguments)
	sum := h.Sum64()

	if sum == d.last && d.count > 0 {
		d.count++
	} else {
		d.last = sum
		d.count = 1
	}
	return d.count >= d.threshold
}
