// Package session assembles one logged-in account: key derivation from
// the wallet password, the account store, the reconciliation engine
// against the remote snapshot service and the durable offline copy.
package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/discussions-app/core/internal/account"
	"github.com/discussions-app/core/internal/account/sync"
	"github.com/discussions-app/core/internal/common"
	"github.com/discussions-app/core/internal/cryptox"
	"github.com/discussions-app/core/internal/localcache"
	"github.com/discussions-app/core/internal/logging"
	"github.com/discussions-app/core/internal/remote"
)

var ErrWrongPassword = errors.New("wrong password")

// Cache keys for per-account client state.
const (
	saltKey     = "account.salt"
	verifierKey = "account.verifier"
	snapshotKey = "account.snapshot"
)

const saltSize = 16

// AccountStore is the remote side of a session: the snapshot contract
// plus one-time account registration.
type AccountStore interface {
	sync.RemoteStore
	Register(ctx context.Context) error
}

// Options configures Login.
type Options struct {
	BaseURL string
	Cache   localcache.Cache
	Logger  logging.Logger
	// NewRemote overrides the HTTP client construction. Tests inject
	// fakes here.
	NewRemote func(keys *cryptox.AccountKeys) AccountStore
}

// Session is one authenticated account with its local and remote state
// wired together.
type Session struct {
	Store  *account.Store
	Engine *sync.Engine

	keys   *cryptox.AccountKeys
	salt   []byte
	remote AccountStore
	cache  localcache.Cache
	log    logging.Logger

	firstLogin bool
}

// Login derives the account identity from the password and assembles
// the session. The first login on a device generates a salt and stores
// a verifier; later logins check the password against it before any
// network traffic.
func Login(ctx context.Context, opts Options, password []byte) (*Session, error) {
	if opts.NewRemote == nil {
		opts.NewRemote = func(keys *cryptox.AccountKeys) AccountStore {
			return remote.NewClient(opts.BaseURL, keys, opts.Logger)
		}
	}

	salt, err := opts.Cache.Get(ctx, saltKey)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	first := salt == nil
	if first {
		salt = common.GenerateRandByteArray(saltSize)
		if err := opts.Cache.Set(ctx, saltKey, salt); err != nil {
			return nil, fmt.Errorf("login: %w", err)
		}
	}

	master := cryptox.DeriveMasterKey(password, salt)
	defer common.WipeByteArray(master)

	verifier := cryptox.MakeVerifier(master)
	stored, err := opts.Cache.Get(ctx, verifierKey)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	switch {
	case stored == nil:
		if err := opts.Cache.Set(ctx, verifierKey, verifier); err != nil {
			return nil, fmt.Errorf("login: %w", err)
		}
	case !bytes.Equal(stored, verifier):
		return nil, ErrWrongPassword
	}

	keys, err := cryptox.AccountKeysFromMaster(master)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	s := &Session{
		Store:      account.NewStore(),
		keys:       keys,
		salt:       salt,
		remote:     opts.NewRemote(keys),
		cache:      opts.Cache,
		log:        opts.Logger,
		firstLogin: first,
	}
	s.Engine = sync.NewEngine(s.Store, s.remote, opts.Logger)

	s.restoreOffline(ctx)

	s.Store.SetOnChange(func() {
		s.persistOffline(context.Background())
		s.Engine.SchedulePush(context.Background())
	})
	return s, nil
}

// PublicKey returns the account identity in its hex wire form.
func (s *Session) PublicKey() string {
	return s.keys.PublicHex()
}

// Keys exposes the signing pair for collaborators that sign transfers.
func (s *Session) Keys() *cryptox.AccountKeys {
	return s.keys
}

// Salt returns the key derivation salt, needed by collaborators that
// re-derive the signing key from a freshly entered password.
func (s *Session) Salt() []byte {
	return s.salt
}

// Start registers the account on first login and pulls the remote
// snapshot. A pull failure leaves the session usable on the offline
// copy; the error is returned so the caller can surface it.
func (s *Session) Start(ctx context.Context) error {
	if s.firstLogin {
		if err := s.remote.Register(ctx); err != nil {
			return fmt.Errorf("start: %w", err)
		}
	}
	if err := s.Engine.Pull(ctx); err != nil {
		s.log.Warn(ctx, "pull failed, running on offline copy", "error", err)
		return err
	}
	s.persistOffline(ctx)
	return nil
}

// Close waits out any scheduled push and drops the offline hook.
func (s *Session) Close() {
	s.Store.SetOnChange(nil)
	s.Engine.Wait()
}

// restoreOffline seeds the store from the cached snapshot image so a
// session is usable before (or without) the first pull.
func (s *Session) restoreOffline(ctx context.Context) {
	raw, err := s.cache.Get(ctx, snapshotKey)
	if err != nil || raw == nil {
		return
	}
	snap, err := account.DecodeSnapshot(raw)
	if err != nil {
		s.log.Warn(ctx, "discarding corrupt offline snapshot", "error", err)
		_ = s.cache.Remove(ctx, snapshotKey)
		return
	}
	for _, f := range account.Fields() {
		entries, err := snap.FieldEntries(f)
		if err != nil {
			continue
		}
		_ = s.Store.Replace(f, entries)
	}
	var setting *account.BlockedContentSetting
	if snap.BlockedContentSetting != nil {
		v := account.BlockedContentSetting(*snap.BlockedContentSetting)
		setting = &v
	}
	s.Store.AdoptScalars(snap.LastCheckedNotifications, setting, snap.UnsignedPostsIsSpam)
}

func (s *Session) persistOffline(ctx context.Context) {
	raw, err := account.EncodeSnapshot(s.Store.Snapshot())
	if err != nil {
		s.log.Error(ctx, "failed to encode offline snapshot", "error", err)
		return
	}
	if err := s.cache.Set(ctx, snapshotKey, raw); err != nil {
		s.log.Error(ctx, "failed to persist offline snapshot", "error", err)
	}
}
