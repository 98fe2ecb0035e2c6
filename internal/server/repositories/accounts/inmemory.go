package accounts

import (
	"context"
	"sync"
	"time"

	"github.com/discussions-app/core/internal/common"
	"github.com/discussions-app/core/internal/server/models"
)

// InMemoryRepository backs the handler tests and local development runs
// without a database.
type InMemoryRepository struct {
	mu       sync.RWMutex
	accounts map[string]*models.Account
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{accounts: make(map[string]*models.Account)}
}

func (r *InMemoryRepository) Create(_ context.Context, publicKey string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.accounts[publicKey]; ok {
		return common.ErrorAlreadyExists
	}
	now := time.Now()
	r.accounts[publicKey] = &models.Account{
		PublicKey: publicKey,
		Snapshot:  []byte("{}"),
		CreatedAt: now,
		UpdatedAt: now,
	}
	return nil
}

func (r *InMemoryRepository) Get(_ context.Context, publicKey string) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	acc, ok := r.accounts[publicKey]
	if !ok {
		return nil, common.ErrorNotFound
	}
	copied := *acc
	copied.Snapshot = append([]byte(nil), acc.Snapshot...)
	return &copied, nil
}

func (r *InMemoryRepository) SaveSnapshot(_ context.Context, publicKey string, snapshot []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	acc, ok := r.accounts[publicKey]
	if !ok {
		return common.ErrorNotFound
	}
	acc.Snapshot = append([]byte(nil), snapshot...)
	acc.UpdatedAt = time.Now()
	return nil
}
