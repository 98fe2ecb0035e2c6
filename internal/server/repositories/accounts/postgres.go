package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/discussions-app/core/internal/common"
	"github.com/discussions-app/core/internal/dbx"
	"github.com/discussions-app/core/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

const pgUniqueViolation = "23505"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, publicKey string) error {
	query :=
		`INSERT INTO accounts (public_key, snapshot, created_at, updated_at)
		 VALUES ($1, '{}'::bytea, now(), now())
		 `

	_, err := r.db.ExecContext(ctx, query, publicKey)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return common.ErrorAlreadyExists
		}
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, publicKey string) (*models.Account, error) {
	query :=
		`SELECT public_key, snapshot, created_at, updated_at FROM accounts
		 WHERE public_key = $1
		 `

	acc := &models.Account{}
	err := r.db.QueryRowContext(ctx, query, publicKey).
		Scan(&acc.PublicKey, &acc.Snapshot, &acc.CreatedAt, &acc.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return acc, nil
}

func (r *PostgresRepository) SaveSnapshot(ctx context.Context, publicKey string, snapshot []byte) error {
	query :=
		`UPDATE accounts SET snapshot = $2, updated_at = now()
		 WHERE public_key = $1
		 `

	res, err := r.db.ExecContext(ctx, query, publicKey, snapshot)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrorNotFound
	}

	return nil
}
