package metrics

import (
	"sync"
	"time"
)

// BatchSample is one processed upload recorded for observability. Samples are
// advisory; nothing reads them for correctness.
type BatchSample struct {
	Tier         string
	RowCount     int
	FailureCount int
	Duration     time.Duration
	At           time.Time
}

// SampleRing is a bounded ring of recent batch samples. It is created once at
// process start, owned by whoever constructs it, and drained by the stats
// worker on its interval. When full, new samples overwrite the oldest.
type SampleRing struct {
	mu      sync.Mutex
	samples []BatchSample
	next    int
	filled  bool
}

// NewSampleRing builds a ring holding at most size samples.
func NewSampleRing(size int) *SampleRing {
	if size <= 0 {
		size = 1
	}
	return &SampleRing{samples: make([]BatchSample, size)}
}

// Record appends a sample, overwriting the oldest entry when full.
func (r *SampleRing) Record(sample BatchSample) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.samples[r.next] = sample
	r.next++
	if r.next == len(r.samples) {
		r.next = 0
		r.filled = true
	}
}

// Drain returns the buffered samples in insertion order and resets the ring.
func (r *SampleRing) Drain() []BatchSample {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []BatchSample
	if r.filled {
		out = append(out, r.samples[r.next:]...)
	}
	out = append(out, r.samples[:r.next]...)

	r.next = 0
	r.filled = false
	return out
}

// Len reports how many samples are currently buffered.
func (r *SampleRing) Len() int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.filled {
		return len(r.samples)
	}
	return r.next
}
