package client

import (
	"context"
	"log"
	"time"
)

// DefaultPollInterval is how often sales and predictions are refreshed
const DefaultPollInterval = 5 * time.Minute

// Poller runs a task immediately and then on a fixed interval until its
// context is cancelled.
type Poller struct {
	Interval time.Duration
	Task     func(ctx context.Context) error
	Name     string
}

// NewPoller creates a poller
func NewPoller(name string, interval time.Duration, task func(ctx context.Context) error) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{Interval: interval, Task: task, Name: name}
}

// Run blocks until ctx is done
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()

	p.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

func (p *Poller) tick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if err := p.Task(ctx); err != nil {
		log.Printf("Poller %s: %v", p.Name, err)
	}
}
