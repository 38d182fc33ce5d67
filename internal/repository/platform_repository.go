package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/helpdesk-central/ticket-hub/internal/domain"
)

// PlatformRepository stores intake credentials for external platforms.
type PlatformRepository interface {
	Create(ctx context.Context, platform *domain.Platform) error
	GetByAPIKey(ctx context.Context, apiKey string) (*domain.Platform, error)
	List(ctx context.Context) ([]domain.Platform, error)
	Delete(ctx context.Context, id int64) error
}

type platformRepository struct {
	pool *pgxpool.Pool
}

// NewPlatformRepository instantiates the repository.
func NewPlatformRepository(pool *pgxpool.Pool) PlatformRepository {
	return &platformRepository{pool: pool}
}

func (r *platformRepository) Create(ctx context.Context, platform *domain.Platform) error {
	const query = `
        INSERT INTO platforms (name, api_key, active_flag)
        VALUES ($1,$2,$3)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		platform.Name,
		platform.APIKey,
		platform.Active,
	).Scan(&platform.ID, &platform.CreatedAt)
}

func (r *platformRepository) GetByAPIKey(ctx context.Context, apiKey string) (*domain.Platform, error) {
	const query = `
        SELECT id, name, api_key, active_flag, created_at
        FROM platforms WHERE api_key=$1 AND active_flag`
	var platform domain.Platform
	if err := r.pool.QueryRow(ctx, query, apiKey).Scan(
		&platform.ID,
		&platform.Name,
		&platform.APIKey,
		&platform.Active,
		&platform.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &platform, nil
}

func (r *platformRepository) List(ctx context.Context) ([]domain.Platform, error) {
	const query = `
        SELECT id, name, api_key, active_flag, created_at
        FROM platforms ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Platform
	for rows.Next() {
		var platform domain.Platform
		if err := rows.Scan(
			&platform.ID,
			&platform.Name,
			&platform.APIKey,
			&platform.Active,
			&platform.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, platform)
	}
	return result, rows.Err()
}

func (r *platformRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM platforms WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
