package metrics

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/shirou/gopsutil/v4/process"
)

const bytesPerMB = 1024 * 1024

// Sampler reports the current resident memory of the process in MB.
type Sampler interface {
	SampleMB() (float64, error)
}

// ProcessSampler reads the resident set size of the running process.
type ProcessSampler struct {
	once sync.Once
	proc *process.Process
	err  error
}

// NewProcessSampler creates a sampler for the current process.
func NewProcessSampler() *ProcessSampler {
	return &ProcessSampler{}
}

// SampleMB returns the process RSS in MB.
func (p *ProcessSampler) SampleMB() (float64, error) {
	p.once.Do(func() {
		p.proc, p.err = process.NewProcess(int32(os.Getpid()))
	})
	if p.err != nil {
		return 0, fmt.Errorf("metrics: open process: %w", p.err)
	}
	info, err := p.proc.MemoryInfoWithContext(context.Background())
	if err != nil {
		return 0, fmt.Errorf("metrics: memory info: %w", err)
	}
	return float64(info.RSS) / bytesPerMB, nil
}

// StaticSampler always reports the same value. Used in tests.
type StaticSampler float64

// SampleMB returns the fixed value.
func (s StaticSampler) SampleMB() (float64, error) {
	return float64(s), nil
}

var (
	_ Sampler = (*ProcessSampler)(nil)
	_ Sampler = StaticSampler(0)
)
