// Package metrics accumulates operational metrics for a voice session:
// answer latency, process memory, throughput and success tallies for
// answer generation and sentiment classification.
//
// A Recorder is created once per session and passed to every component
// that updates it. All operations are append-only.
package metrics

import (
	"sync"
	"time"
)

// Recorder is the session-lifetime metrics accumulator.
// It is safe for concurrent use; in practice the interaction loop is the
// only writer and the dashboard reads snapshots.
type Recorder struct {
	mu sync.Mutex

	latencies  []float64 // seconds
	memory     []float64 // MB
	throughput int
	answers    []int // 1 = success, 0 = failure
	sentiments []int

	onUpdate func(Snapshot)
}

// Snapshot is a point-in-time copy of the recorder state.
type Snapshot struct {
	Latencies  []float64 `json:"latencies"`
	Memory     []float64 `json:"memory"`
	Throughput int       `json:"throughput"`
	Answers    []int     `json:"answers"`
	Sentiments []int     `json:"sentiments"`
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// OnUpdate sets a callback that fires after every mutation.
// The callback receives a copy and runs on the caller's goroutine.
func (r *Recorder) OnUpdate(fn func(Snapshot)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onUpdate = fn
}

// RecordLatency appends a latency sample. Negative durations are clamped to zero.
func (r *Recorder) RecordLatency(d time.Duration) {
	s := d.Seconds()
	if s < 0 {
		s = 0
	}
	r.mutate(func() { r.latencies = append(r.latencies, s) })
}

// RecordMemory appends a memory sample in MB.
func (r *Recorder) RecordMemory(mb float64) {
	if mb < 0 {
		mb = 0
	}
	r.mutate(func() { r.memory = append(r.memory, mb) })
}

// SampleMemory reads the sampler and appends the result.
// A failing sampler records nothing and the error is returned.
func (r *Recorder) SampleMemory(s Sampler) error {
	mb, err := s.SampleMB()
	if err != nil {
		return err
	}
	r.RecordMemory(mb)
	return nil
}

// IncThroughput counts one successfully processed request.
func (r *Recorder) IncThroughput() {
	r.mutate(func() { r.throughput++ })
}

// RecordAnswer appends one entry to the answer-success tally.
func (r *Recorder) RecordAnswer(ok bool) {
	r.mutate(func() { r.answers = append(r.answers, tally(ok)) })
}

// RecordSentiment appends one entry to the sentiment-success tally.
func (r *Recorder) RecordSentiment(ok bool) {
	r.mutate(func() { r.sentiments = append(r.sentiments, tally(ok)) })
}

// Snapshot returns a copy of the current state.
func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

// Summary computes the report over everything recorded so far.
func (r *Recorder) Summary() Summary {
	return Summarize(r.Snapshot())
}

func (r *Recorder) mutate(fn func()) {
	r.mu.Lock()
	fn()
	cb := r.onUpdate
	var snap Snapshot
	if cb != nil {
		snap = r.snapshotLocked()
	}
	r.mu.Unlock()

	if cb != nil {
		cb(snap)
	}
}

// snapshotLocked must be called with mu held.
func (r *Recorder) snapshotLocked() Snapshot {
	return Snapshot{
		Latencies:  append([]float64(nil), r.latencies...),
		Memory:     append([]float64(nil), r.memory...),
		Throughput: r.throughput,
		Answers:    append([]int(nil), r.answers...),
		Sentiments: append([]int(nil), r.sentiments...),
	}
}

func tally(ok bool) int {
	if ok {
		return 1
	}
	return 0
}
