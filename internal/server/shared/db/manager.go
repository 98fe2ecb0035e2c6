// Package db wires repository implementations to their storage backend.
package db

import (
	"context"

	"github.com/discussions-app/core/internal/server/repositories/accounts"
)

type RepositoryManager interface {
	Accounts() accounts.Repository
	RunMigrations(ctx context.Context) error
	Close() error
}
