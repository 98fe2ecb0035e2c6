// Package accounts stores registered identities and their snapshot
// blobs.
package accounts

import (
	"context"

	"github.com/discussions-app/core/internal/server/models"
)

type Repository interface {
	// Create registers a new account with an empty initial snapshot.
	// Returns common.ErrorAlreadyExists for a known public key.
	Create(ctx context.Context, publicKey string) error
	// Get returns the account record or common.ErrorNotFound.
	Get(ctx context.Context, publicKey string) (*models.Account, error)
	// SaveSnapshot replaces the snapshot blob wholesale. Returns
	// common.ErrorNotFound for an unregistered public key.
	SaveSnapshot(ctx context.Context, publicKey string, snapshot []byte) error
}
