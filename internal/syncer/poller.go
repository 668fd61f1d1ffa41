package syncer

import (
	"context"
	"sync"
	"time"
)

// Poller turns a reachability check into a connectivity event stream. It
// fires the handler on every state transition, starting with the first
// observation.
type Poller struct {
	check    func(ctx context.Context) bool
	interval time.Duration
	handler  func(online bool)

	once sync.Once
	done chan struct{}
}

func NewPoller(check func(ctx context.Context) bool, interval time.Duration, handler func(online bool)) *Poller {
	return &Poller{
		check:    check,
		interval: interval,
		handler:  handler,
		done:     make(chan struct{}),
	}
}

func (p *Poller) Start(ctx context.Context) {
	go p.loop(ctx)
}

func (p *Poller) loop(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	known := false
	online := false
	for {
		current := p.check(ctx)
		if !known || current != online {
			known = true
			online = current
			p.handler(online)
		}

		select {
		case <-ctx.Done():
			return
		case <-p.done:
			return
		case <-ticker.C:
		}
	}
}

// Stop is idempotent.
func (p *Poller) Stop() {
	p.once.Do(func() { close(p.done) })
}
