package sequence

import "sync/atomic"

// Sequencer generates strictly monotonic, gapless sequence IDs starting at
// start+1. It is deterministic: the same call sequence always yields the
// same IDs.
type Sequencer struct {
	next atomic.Uint64
}

// New creates a sequencer starting from a given value.
// On fresh start → start = 0
// On resume → start = last issued seq
func New(start uint64) *Sequencer {
	s := &Sequencer{}
	s.next.Store(start)
	return s
}

// Next returns the next sequence ID.
func (s *Sequencer) Next() uint64 {
	return s.next.Add(1)
}

// Current returns the last issued sequence, 0 if none.
func (s *Sequencer) Current() uint64 {
	return s.next.Load()
}

// Reset sets the sequencer to a specific value.
// Only used when resuming from a durable store.
func (s *Sequencer) Reset(v uint64) {
	s.next.Store(v)
}
