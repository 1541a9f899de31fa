package evb

import "sync"

// Progress is the shared cell the orchestrator publishes its fraction of
// completed work into. An external observer, typically on another goroutine,
// polls Fraction while ProcessRuns writes. Writes happen at roughly 1%
// granularity of the total expected record count.
type Progress struct {
	mu       sync.Mutex
	fraction float32
}

func (p *Progress) Set(fraction float32) {
	p.mu.Lock()
	p.fraction = fraction
	p.mu.Unlock()
}

// Fraction returns the last published value in [0, 1].
func (p *Progress) Fraction() float32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.fraction
}
