package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/helpdesk-central/ticket-hub/internal/domain"
)

// AgentRepository handles persistence for staff accounts.
type AgentRepository interface {
	Create(ctx context.Context, agent *domain.Agent) error
	Update(ctx context.Context, agent *domain.Agent) error
	GetByID(ctx context.Context, id int64) (*domain.Agent, error)
	GetByUsername(ctx context.Context, username string) (*domain.Agent, error)
	List(ctx context.Context, filter AgentFilter) ([]domain.Agent, error)
	// Delete removes the account. Tickets referencing it fall back to
	// unassigned through the schema's ON DELETE SET NULL.
	Delete(ctx context.Context, id int64) error
}

// AgentFilter defines query params for agent listing.
type AgentFilter struct {
	Privileged *bool
	Active     *bool
	Limit      int
	Offset     int
}

type agentRepository struct {
	pool *pgxpool.Pool
}

// NewAgentRepository instantiates the repository.
func NewAgentRepository(pool *pgxpool.Pool) AgentRepository {
	return &agentRepository{pool: pool}
}

func (r *agentRepository) Create(ctx context.Context, agent *domain.Agent) error {
	const query = `
        INSERT INTO agents (username, first_name, last_name, email, password_hash, is_superuser, active_flag)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		agent.Username,
		agent.FirstName,
		agent.LastName,
		agent.Email,
		agent.PasswordHash,
		agent.Privileged,
		agent.Active,
	).Scan(&agent.ID, &agent.CreatedAt, &agent.UpdatedAt)
}

func (r *agentRepository) Update(ctx context.Context, agent *domain.Agent) error {
	const query = `
        UPDATE agents
        SET username=$1, first_name=$2, last_name=$3, email=$4, password_hash=$5, is_superuser=$6, active_flag=$7, updated_at=NOW()
        WHERE id=$8`
	cmd, err := r.pool.Exec(ctx, query,
		agent.Username,
		agent.FirstName,
		agent.LastName,
		agent.Email,
		agent.PasswordHash,
		agent.Privileged,
		agent.Active,
		agent.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *agentRepository) GetByID(ctx context.Context, id int64) (*domain.Agent, error) {
	const query = `
        SELECT id, username, first_name, last_name, email, password_hash, is_superuser, active_flag, created_at, updated_at
        FROM agents WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *agentRepository) GetByUsername(ctx context.Context, username string) (*domain.Agent, error) {
	const query = `
        SELECT id, username, first_name, last_name, email, password_hash, is_superuser, active_flag, created_at, updated_at
        FROM agents WHERE username=$1`
	return r.fetchSingle(ctx, query, username)
}

func (r *agentRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Agent, error) {
	var agent domain.Agent
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&agent.ID,
		&agent.Username,
		&agent.FirstName,
		&agent.LastName,
		&agent.Email,
		&agent.PasswordHash,
		&agent.Privileged,
		&agent.Active,
		&agent.CreatedAt,
		&agent.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &agent, nil
}

func (r *agentRepository) List(ctx context.Context, filter AgentFilter) ([]domain.Agent, error) {
	query := `
        SELECT id, username, first_name, last_name, email, password_hash, is_superuser, active_flag, created_at, updated_at
        FROM agents`
	args := []any{}
	clauses := []string{}

	if filter.Privileged != nil {
		args = append(args, *filter.Privileged)
		clauses = append(clauses, fmt.Sprintf("is_superuser=$%d", len(args)))
	}
	if filter.Active != nil {
		args = append(args, *filter.Active)
		clauses = append(clauses, fmt.Sprintf("active_flag=$%d", len(args)))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}

	query += " ORDER BY created_at DESC"
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	query += fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Agent
	for rows.Next() {
		var agent domain.Agent
		if err := rows.Scan(
			&agent.ID,
			&agent.Username,
			&agent.FirstName,
			&agent.LastName,
			&agent.Email,
			&agent.PasswordHash,
			&agent.Privileged,
			&agent.Active,
			&agent.CreatedAt,
			&agent.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, agent)
	}
	return result, rows.Err()
}

func (r *agentRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM agents WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
