// Package services implements the server-side business logic on top of
// the repositories.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/discussions-app/core/internal/account"
	"github.com/discussions-app/core/internal/common"
	"github.com/discussions-app/core/internal/cryptox"
	"github.com/discussions-app/core/internal/logging"
	"github.com/discussions-app/core/internal/server/auth"
	sc "github.com/discussions-app/core/internal/server/config"
	"github.com/discussions-app/core/internal/server/repositories/accounts"
)

// test seam
var nowFunc = time.Now

// ErrMalformedSnapshot rejects a replace whose body does not decode as
// a snapshot document.
var ErrMalformedSnapshot = errors.New("malformed snapshot")

// Archiver keeps a history of replaced snapshots. Optional; archiving
// failures never fail the write itself.
type Archiver interface {
	Archive(ctx context.Context, publicKey string, snapshot []byte) error
}

type AccountService struct {
	repo     accounts.Repository
	config   *sc.Config
	archiver Archiver
	log      logging.Logger
}

func NewAccountService(repo accounts.Repository, config *sc.Config, archiver Archiver, log logging.Logger) *AccountService {
	return &AccountService{repo: repo, config: config, archiver: archiver, log: log}
}

// Authorize verifies the signature challenge and issues an access
// token. The timestamp must fall within the configured window to keep a
// captured challenge from being replayed later.
func (s *AccountService) Authorize(ctx context.Context, publicKey string, ts int64, signature string) (string, error) {
	age := nowFunc().Sub(time.Unix(ts, 0))
	if age > s.config.ChallengeWindow || age < -s.config.ChallengeWindow {
		return "", common.ErrStaleChallenge
	}

	if !cryptox.Verify(publicKey, common.ChallengeMessage(publicKey, ts), signature) {
		return "", common.ErrInvalidSignature
	}

	token, err := auth.GenerateToken(publicKey, []byte(s.config.SecretKey), s.config.AccessTokenValidityDuration)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	return token, nil
}

// Register creates the account with its empty initial snapshot.
func (s *AccountService) Register(ctx context.Context, publicKey string) error {
	return s.repo.Create(ctx, publicKey)
}

// GetSnapshot returns the current snapshot blob.
func (s *AccountService) GetSnapshot(ctx context.Context, publicKey string) ([]byte, error) {
	acc, err := s.repo.Get(ctx, publicKey)
	if err != nil {
		return nil, err
	}
	return acc.Snapshot, nil
}

// ReplaceSnapshot overwrites the whole snapshot. The blob must decode
// as a snapshot document; beyond that the server does no field-level
// inspection. The previous contents go to the archiver.
func (s *AccountService) ReplaceSnapshot(ctx context.Context, publicKey string, snapshot []byte) error {
	if _, err := account.DecodeSnapshot(snapshot); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
	}

	prev, err := s.repo.Get(ctx, publicKey)
	if err != nil {
		return err
	}

	if err := s.repo.SaveSnapshot(ctx, publicKey, snapshot); err != nil {
		return err
	}

	if s.archiver != nil {
		if err := s.archiver.Archive(ctx, publicKey, prev.Snapshot); err != nil {
			s.log.Warn(ctx, "snapshot archive failed", "public_key", publicKey, "error", err)
		}
	}
	return nil
}
