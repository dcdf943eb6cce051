package messaging

import (
	"sync"
)

// Recorder subscribes to an output message and keeps every sample it is asked to record.
type Recorder[T any] struct {
	mu      sync.Mutex
	in      *InMsg[T]
	samples []T
	times   []uint64
}

// NewRecorder links a new recorder to out.
func NewRecorder[T any](out *OutMsg[T]) *Recorder[T] {
	return &Recorder[T]{in: out.AddSubscriber()}
}

// Record appends the current payload if it has been written.
func (r *Recorder[T]) Record(clock uint64) {
	if !r.in.IsWritten() {
		return
	}
	p := r.in.Read()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.samples = append(r.samples, p)
	r.times = append(r.times, clock)
}

// Samples returns a copy of the recorded payloads.
func (r *Recorder[T]) Samples() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]T(nil), r.samples...)
}

// Times returns a copy of the clock values at which samples were recorded [ns].
func (r *Recorder[T]) Times() []uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]uint64(nil), r.times...)
}

// Len returns the number of recorded samples.
func (r *Recorder[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.samples)
}
