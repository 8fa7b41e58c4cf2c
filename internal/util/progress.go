package util

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"
)

const (
	DefaultProgressInterval = 500 * time.Millisecond

	progressMaxStep = 5.0
	progressCeiling = 90.0
	progressDone    = 100.0
)

// ProgressEstimate is a time-based guess. Simulated is always true: the
// extractor reports no real progress.
type ProgressEstimate struct {
	Percent   float64 `json:"percent"`
	Simulated bool    `json:"simulated"`
	Done      bool    `json:"done"`
}

// ProgressEstimator creeps towards 90% while work is running and jumps to
// 100% on Finish.
type ProgressEstimator struct {
	mu       sync.Mutex
	percent  float64
	done     bool
	interval time.Duration
	step     func() float64

	stop     chan struct{}
	stopOnce sync.Once
}

func NewProgressEstimator(interval time.Duration) *ProgressEstimator {
	if interval <= 0 {
		interval = DefaultProgressInterval
	}
	return &ProgressEstimator{
		interval: interval,
		step:     func() float64 { return rand.Float64() * progressMaxStep },
		stop:     make(chan struct{}),
	}
}

// Start ticks in the background until Finish is called or ctx ends.
func (p *ProgressEstimator) Start(ctx context.Context) {
	go func() {
		t := time.NewTicker(p.interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-p.stop:
				return
			case <-t.C:
				p.advance()
			}
		}
	}()
}

func (p *ProgressEstimator) advance() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.done {
		return
	}
	p.percent = min(p.percent+p.step(), progressCeiling)
}

func (p *ProgressEstimator) Finish() {
	p.mu.Lock()
	p.done = true
	p.percent = progressDone
	p.mu.Unlock()
	p.stopOnce.Do(func() { close(p.stop) })
}

func (p *ProgressEstimator) Estimate() ProgressEstimate {
	p.mu.Lock()
	defer p.mu.Unlock()
	return ProgressEstimate{Percent: p.percent, Simulated: true, Done: p.done}
}
