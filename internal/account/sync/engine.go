// Package sync reconciles the local account store with the remote snapshot.
// The remote copy is a single whole document: pulls replace local field
// contents, pushes replace the remote document. Per-field version stamps
// decide whether a field's remote contents can be adopted or must be reset.
package sync

import (
	"context"
	"errors"
	"fmt"
	gosync "sync"

	"github.com/discussions-app/core/internal/account"
	"github.com/discussions-app/core/internal/logging"
)

// RemoteStore is the remote account-store collaborator. Fetch returns
// (nil, nil) when no snapshot exists for the account yet.
type RemoteStore interface {
	Fetch(ctx context.Context) (*account.Snapshot, error)
	Replace(ctx context.Context, snap *account.Snapshot) error
}

// ErrNoSnapshot is reported when the remote store has nothing for this
// account. Local state is left untouched and the push gate stays closed.
var ErrNoSnapshot = errors.New("remote snapshot missing")

// ErrNotSynced is wrapped into push failures that happen because no pull
// has succeeded yet in this session.
var ErrNotSynced = errors.New("not synced from remote yet")

// Engine brings the local store and the remote snapshot into agreement:
// one pull at session start, then a push after every local mutation.
//
// The one ordering invariant enforced here is that a push never runs before
// a successful pull. Without the gate, a fresh session with an empty local
// store would overwrite the remote copy with nothing.
type Engine struct {
	store  *account.Store
	remote RemoteStore
	log    logging.Logger

	mu     gosync.Mutex
	synced bool

	pusher *pusher
}

func NewEngine(store *account.Store, remote RemoteStore, log logging.Logger) *Engine {
	e := &Engine{
		store:  store,
		remote: remote,
		log:    log.With("component", "sync"),
	}
	e.pusher = newPusher(e.pushOnce, e.log)
	return e
}

// Synced reports whether a pull has completed successfully this session.
func (e *Engine) Synced() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.synced
}

// Pull fetches the remote snapshot and merges it into the local store.
//
// Field contents are adopted wholesale (the remote copy is the single
// source of truth right after establishing trust), then every field whose
// schema version disagrees with this build is reset. A reset, as well as a
// snapshot predating version stamps entirely, is followed by an immediate
// push so the remote copy picks up the current vector.
//
// Any error leaves local state exactly as it was: nothing is applied until
// the fetch has succeeded, and the merge itself cannot fail halfway.
func (e *Engine) Pull(ctx context.Context) error {
	snap, err := e.remote.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("pull: %w", err)
	}
	if snap == nil {
		return fmt.Errorf("pull: %w", ErrNoSnapshot)
	}

	e.adoptScalars(snap)

	// Superset copy first: every field takes the snapshot's contents.
	for _, f := range account.Fields() {
		entries, err := snap.FieldEntries(f)
		if err != nil {
			return fmt.Errorf("pull: %w", err)
		}
		if err := e.store.Replace(f, entries); err != nil {
			return fmt.Errorf("pull: %w", err)
		}
	}

	local := account.CurrentVersions()

	if snap.Versions == nil {
		// Legacy snapshot from before per-field versioning: nothing in it
		// can be trusted to match the current representation.
		for _, f := range account.Fields() {
			if err := e.store.Clear(f); err != nil {
				return fmt.Errorf("pull: %w", err)
			}
		}
		e.markSynced()
		e.log.Info(ctx, "bootstrapped legacy snapshot, pushing current state")
		return e.Push(ctx)
	}

	var reset []account.Field
	for _, f := range account.Fields() {
		if snap.Versions[f] != local[f] {
			if err := e.store.Clear(f); err != nil {
				return fmt.Errorf("pull: %w", err)
			}
			reset = append(reset, f)
		}
	}

	e.markSynced()

	if len(reset) > 0 {
		e.log.Info(ctx, "field schema changed, reset and pushing", "fields", reset)
		return e.Push(ctx)
	}
	return nil
}

func (e *Engine) adoptScalars(snap *account.Snapshot) {
	// Scalars carry no version stamp; present means authoritative.
	var setting *account.BlockedContentSetting
	if snap.BlockedContentSetting != nil {
		v := account.BlockedContentSetting(*snap.BlockedContentSetting)
		setting = &v
	}
	e.store.AdoptScalars(snap.LastCheckedNotifications, setting, snap.UnsignedPostsIsSpam)
}

func (e *Engine) markSynced() {
	e.mu.Lock()
	e.synced = true
	e.mu.Unlock()
}

// Push replaces the remote snapshot with the store's current state. It is a
// silent no-op before the first successful pull. Failures are returned but
// not retried; the next mutation triggers a fresh push anyway.
func (e *Engine) Push(ctx context.Context) error {
	if !e.Synced() {
		return nil
	}
	return e.pushOnce(ctx)
}

func (e *Engine) pushOnce(ctx context.Context) error {
	if !e.Synced() {
		return nil
	}
	if err := e.remote.Replace(ctx, e.store.Snapshot()); err != nil {
		return fmt.Errorf("push: %w", err)
	}
	return nil
}

// SchedulePush requests an asynchronous push. Bursts of mutations coalesce:
// at most one push is in flight, and at most one more is queued behind it.
func (e *Engine) SchedulePush(ctx context.Context) {
	e.pusher.Trigger(ctx)
}

// Wait blocks until no scheduled push is running. Test and shutdown helper.
func (e *Engine) Wait() {
	e.pusher.Wait()
}
