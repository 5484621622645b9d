package client

import (
	"sync"
	"sync/atomic"
)

// Source names a backend data source whose responses are sequenced
type Source string

const (
	SourceInventory    Source = "inventory"
	SourceMenu         Source = "menu"
	SourceWeeklySales  Source = "weekly_sales"
	SourceMonthlySales Source = "monthly_sales"
	SourcePrediction   Source = "prediction"
	SourceRestock      Source = "restock"
)

// Sequencer issues increasing request ids per source so that a slow response
// cannot overwrite a newer one.
type Sequencer struct {
	mu       sync.Mutex
	counters map[Source]*atomic.Uint64
}

// NewSequencer creates an empty sequencer
func NewSequencer() *Sequencer {
	return &Sequencer{counters: make(map[Source]*atomic.Uint64)}
}

func (s *Sequencer) counter(src Source) *atomic.Uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.counters[src]
	if !ok {
		c = new(atomic.Uint64)
		s.counters[src] = c
	}
	return c
}

// Next issues a new request id for src
func (s *Sequencer) Next(src Source) uint64 {
	return s.counter(src).Add(1)
}

// Latest returns the last id issued for src
func (s *Sequencer) Latest(src Source) uint64 {
	return s.counter(src).Load()
}

// IsLatest reports whether a response tagged id should still be applied
func (s *Sequencer) IsLatest(src Source, id uint64) bool {
	return s.Latest(src) == id
}
