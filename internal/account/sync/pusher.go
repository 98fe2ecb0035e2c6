package sync

import (
	"context"
	gosync "sync"

	"github.com/discussions-app/core/internal/logging"
)

// pusher serializes whole-document pushes. The remote write is last-writer-
// wins, so two pushes racing each other could land out of order and drop the
// newer state. Holding pushes to a single in-flight write with a one-deep
// pending slot keeps them ordered and coalesces bursts of mutations into at
// most one trailing push.
type pusher struct {
	push func(ctx context.Context) error
	log  logging.Logger

	mu      gosync.Mutex
	running bool
	pending bool
	done    *gosync.Cond
}

func newPusher(push func(ctx context.Context) error, log logging.Logger) *pusher {
	p := &pusher{push: push, log: log}
	p.done = gosync.NewCond(&p.mu)
	return p
}

// Trigger requests a push. If one is already in flight, a single follow-up
// is remembered; further triggers while it is queued collapse into it.
func (p *pusher) Trigger(ctx context.Context) {
	p.mu.Lock()
	if p.running {
		p.pending = true
		p.mu.Unlock()
		return
	}
	p.running = true
	p.mu.Unlock()

	go p.loop(ctx)
}

func (p *pusher) loop(ctx context.Context) {
	for {
		if err := p.push(ctx); err != nil {
			// Reported only; the next mutation re-triggers.
			p.log.Error(ctx, "push failed", "error", err)
		}

		p.mu.Lock()
		if p.pending && ctx.Err() == nil {
			p.pending = false
			p.mu.Unlock()
			continue
		}
		p.running = false
		p.done.Broadcast()
		p.mu.Unlock()
		return
	}
}

// Wait blocks until the pusher is idle.
func (p *pusher) Wait() {
	p.mu.Lock()
	for p.running {
		p.done.Wait()
	}
	p.mu.Unlock()
}
