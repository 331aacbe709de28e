package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"minter/internal/domain"
	"minter/internal/infra"
	"minter/internal/sqlinline"
)

// MintRepositoryPG implements domain.MintRepository on PostgreSQL.
type MintRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewMintRepository creates a mint repository backed by the given executor.
func NewMintRepository(sql infra.SQLExecutor) *MintRepositoryPG {
	return &MintRepositoryPG{sql: sql}
}

// EnsureSchema creates the mints table when it does not exist yet.
func (r *MintRepositoryPG) EnsureSchema(ctx context.Context) error {
	if _, err := r.sql.Exec(ctx, sqlinline.QEnsureMintsTable); err != nil {
		return fmt.Errorf("ensure mints table: %w", err)
	}
	return nil
}

// Create inserts a new submission record.
func (r *MintRepositoryPG) Create(ctx context.Context, mint *domain.Mint) error {
	id, err := uuid.Parse(mint.ID)
	if err != nil {
		return fmt.Errorf("mint id: %w", err)
	}
	_, err = r.sql.Exec(ctx, sqlinline.QInsertMint,
		id,
		mint.Prompt,
		string(mint.State),
		string(mint.Status),
		mint.ImageURI,
		mint.TokenURI,
		mint.TxHash,
		mint.Error,
		mint.CreatedAt,
	)
	return err
}

// Update stores the current phase and outcome of a submission.
func (r *MintRepositoryPG) Update(ctx context.Context, mint *domain.Mint) error {
	id, err := uuid.Parse(mint.ID)
	if err != nil {
		return fmt.Errorf("mint id: %w", err)
	}
	tag, err := r.sql.Exec(ctx, sqlinline.QUpdateMint,
		id,
		string(mint.State),
		string(mint.Status),
		mint.ImageURI,
		mint.TokenURI,
		mint.TxHash,
		mint.Error,
		mint.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetByID fetches a submission by its identifier.
func (r *MintRepositoryPG) GetByID(ctx context.Context, id string) (*domain.Mint, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, domain.ErrNotFound
	}
	mint, err := scanMint(r.sql.QueryRow(ctx, sqlinline.QSelectMint, parsed))
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return mint, nil
}

// ListRecent returns the newest submissions first.
func (r *MintRepositoryPG) ListRecent(ctx context.Context, limit int) ([]domain.Mint, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.sql.Query(ctx, sqlinline.QListRecentMints, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Mint
	for rows.Next() {
		mint, err := scanMint(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *mint)
	}
	return out, rows.Err()
}

func scanMint(row pgx.Row) (*domain.Mint, error) {
	var (
		mint   domain.Mint
		state  string
		status string
	)
	if err := row.Scan(
		&mint.ID,
		&mint.Prompt,
		&state,
		&status,
		&mint.ImageURI,
		&mint.TokenURI,
		&mint.TxHash,
		&mint.Error,
		&mint.CreatedAt,
		&mint.UpdatedAt,
	); err != nil {
		return nil, err
	}
	mint.State = domain.State(state)
	mint.Status = domain.MintStatus(status)
	return &mint, nil
}

var _ domain.MintRepository = (*MintRepositoryPG)(nil)
