// Package authz mediates between flows that need an explicit user
// approval before submitting a transaction and whatever surface
// collects that approval (a terminal prompt, a dialog).
//
// A flow calls Request and blocks on the returned future. The
// collecting side lists Pending requests and settles each one exactly
// once with Resolve or Cancel. Unsettled requests expire after the
// broker timeout.
package authz

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrCancelled is returned to the waiting flow when the user
	// dismisses the request.
	ErrCancelled = errors.New("authorization cancelled")
	// ErrTimeout is returned when nobody settles the request in time.
	ErrTimeout = errors.New("authorization timed out")
	// ErrUnknownRequest is returned by Resolve and Cancel for ids that
	// are not pending, including ids that were already settled.
	ErrUnknownRequest = errors.New("unknown authorization request")
)

// DefaultTimeout bounds how long a request may stay pending.
const DefaultTimeout = 2 * time.Minute

// Request describes one pending approval.
type Request struct {
	ID string
	// Summary is a human readable description of what is being
	// authorized, e.g. "transfer 1.000 ATMOS to alice".
	Summary string
	Created time.Time
}

// Decision is what the collecting side hands back for a request.
type Decision struct {
	// Password is the wallet password entered by the user. Only
	// meaningful when the request was approved.
	Password []byte
}

type pending struct {
	req  Request
	done chan outcome
}

type outcome struct {
	decision Decision
	err      error
}

// Broker holds pending authorization requests keyed by id.
type Broker struct {
	timeout time.Duration
	notify  func(Request)

	mu      sync.Mutex
	waiting map[string]*pending
}

// Option configures a Broker.
type Option func(*Broker)

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(b *Broker) { b.timeout = d }
}

// WithNotify registers a hook invoked whenever a new request is
// created. The hook runs on the requesting goroutine and must not
// block.
func WithNotify(fn func(Request)) Option {
	return func(b *Broker) { b.notify = fn }
}

func NewBroker(opts ...Option) *Broker {
	b := &Broker{
		timeout: DefaultTimeout,
		waiting: make(map[string]*pending),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Ask registers a request and blocks until it is settled, times out or
// ctx is done. Each request is settled at most once.
func (b *Broker) Ask(ctx context.Context, summary string) (Decision, error) {
	p := &pending{
		req: Request{
			ID:      uuid.NewString(),
			Summary: summary,
			Created: time.Now(),
		},
		done: make(chan outcome, 1),
	}

	b.mu.Lock()
	b.waiting[p.req.ID] = p
	b.mu.Unlock()

	if b.notify != nil {
		b.notify(p.req)
	}

	timer := time.NewTimer(b.timeout)
	defer timer.Stop()

	select {
	case out := <-p.done:
		return out.decision, out.err
	case <-timer.C:
		b.remove(p.req.ID)
		return Decision{}, ErrTimeout
	case <-ctx.Done():
		b.remove(p.req.ID)
		return Decision{}, ctx.Err()
	}
}

// Resolve settles a pending request with an approval.
func (b *Broker) Resolve(id string, decision Decision) error {
	return b.settle(id, outcome{decision: decision})
}

// Cancel settles a pending request with ErrCancelled.
func (b *Broker) Cancel(id string) error {
	return b.settle(id, outcome{err: ErrCancelled})
}

func (b *Broker) settle(id string, out outcome) error {
	b.mu.Lock()
	p, ok := b.waiting[id]
	if ok {
		delete(b.waiting, id)
	}
	b.mu.Unlock()
	if !ok {
		return ErrUnknownRequest
	}
	p.done <- out
	return nil
}

func (b *Broker) remove(id string) {
	b.mu.Lock()
	delete(b.waiting, id)
	b.mu.Unlock()
}

// Pending returns the requests awaiting a decision, oldest first.
func (b *Broker) Pending() []Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	reqs := make([]Request, 0, len(b.waiting))
	for _, p := range b.waiting {
		reqs = append(reqs, p.req)
	}
	sort.Slice(reqs, func(i, j int) bool { return reqs[i].Created.Before(reqs[j].Created) })
	return reqs
}
