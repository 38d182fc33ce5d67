package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/helpdesk-central/ticket-hub/internal/domain"
)

// ErrStaleAgent is returned by Update when the ticket's agent no longer
// matches the value observed at read time. The caller lost a claim race and
// must re-read before deciding anything.
var ErrStaleAgent = errors.New("ticket agent changed concurrently")

// TicketFilter captures listing parameters. VisibleToAgent restricts the
// result to unassigned-or-own tickets for non-privileged callers.
type TicketFilter struct {
	Statuses       []domain.TicketStatus
	Priorities     []domain.TicketPriority
	Platform       *string
	AgentID        *int64
	Unassigned     *bool
	VisibleToAgent *int64
	SearchTerm     *string
	SubmittedFrom  *time.Time
	SubmittedTo    *time.Time
	Limit          int
	Offset         int
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	// Update writes status, agent and the privileged-editable fields in one
	// statement, guarded by a compare-and-set on the agent observed at read
	// time. Submission date and platform name are never written.
	Update(ctx context.Context, ticket *domain.Ticket, expectedAgent *int64) error
	Delete(ctx context.Context, id int64) error
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (first_name, last_name, email, subject, message, platform_name, status, priority, agent_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id, submission_date`
	return r.pool.QueryRow(ctx, query,
		ticket.FirstName,
		ticket.LastName,
		ticket.Email,
		ticket.Subject,
		ticket.Message,
		ticket.PlatformName,
		ticket.Status,
		ticket.Priority,
		ticket.AgentID,
	).Scan(&ticket.ID, &ticket.SubmissionDate)
}

func (r *ticketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	const query = `
        SELECT id, first_name, last_name, email, subject, message, submission_date, platform_name, status, priority, agent_id
        FROM tickets WHERE id=$1`
	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&ticket.ID,
		&ticket.FirstName,
		&ticket.LastName,
		&ticket.Email,
		&ticket.Subject,
		&ticket.Message,
		&ticket.SubmissionDate,
		&ticket.PlatformName,
		&ticket.Status,
		&ticket.Priority,
		&ticket.AgentID,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket, expectedAgent *int64) error {
	const query = `
        UPDATE tickets
        SET first_name=$1, last_name=$2, email=$3, subject=$4, message=$5, status=$6, agent_id=$7
        WHERE id=$8 AND agent_id IS NOT DISTINCT FROM $9`
	cmd, err := r.pool.Exec(ctx, query,
		ticket.FirstName,
		ticket.LastName,
		ticket.Email,
		ticket.Subject,
		ticket.Message,
		ticket.Status,
		ticket.AgentID,
		ticket.ID,
		expectedAgent,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrStaleAgent
	}
	return nil
}

func (r *ticketRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM tickets WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	base := `SELECT id, first_name, last_name, email, subject, message, submission_date, platform_name, status, priority, agent_id
             FROM tickets`
	clauses := []string{"1=1"}
	args := []any{}

	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Priorities) > 0 {
		placeholders := make([]string, len(filter.Priorities))
		for i, pr := range filter.Priorities {
			args = append(args, pr)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("priority IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.Platform != nil {
		args = append(args, *filter.Platform)
		clauses = append(clauses, fmt.Sprintf("platform_name=$%d", len(args)))
	}
	if filter.AgentID != nil {
		args = append(args, *filter.AgentID)
		clauses = append(clauses, fmt.Sprintf("agent_id=$%d", len(args)))
	}
	if filter.Unassigned != nil {
		if *filter.Unassigned {
			clauses = append(clauses, "agent_id IS NULL")
		} else {
			clauses = append(clauses, "agent_id IS NOT NULL")
		}
	}
	if filter.VisibleToAgent != nil {
		args = append(args, *filter.VisibleToAgent)
		clauses = append(clauses, fmt.Sprintf("(agent_id IS NULL OR agent_id=$%d)", len(args)))
	}
	if filter.SubmittedFrom != nil {
		args = append(args, *filter.SubmittedFrom)
		clauses = append(clauses, fmt.Sprintf("submission_date >= $%d", len(args)))
	}
	if filter.SubmittedTo != nil {
		args = append(args, *filter.SubmittedTo)
		clauses = append(clauses, fmt.Sprintf("submission_date <= $%d", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf(
			"(LOWER(first_name) LIKE %s OR LOWER(last_name) LIKE %s OR LOWER(email) LIKE %s OR LOWER(subject) LIKE %s OR LOWER(message) LIKE %s)",
			placeholder, placeholder, placeholder, placeholder, placeholder))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY submission_date DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.FirstName,
			&ticket.LastName,
			&ticket.Email,
			&ticket.Subject,
			&ticket.Message,
			&ticket.SubmissionDate,
			&ticket.PlatformName,
			&ticket.Status,
			&ticket.Priority,
			&ticket.AgentID,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
