package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/facility-service/internal/domain"
)

// ErrVersionConflict indicates a concurrent writer updated the ticket between
// this caller's read and its conditional write.
var ErrVersionConflict = errors.New("ticket modified concurrently")

// TicketFilter captures listing parameters.
type TicketFilter struct {
	ReporterID *string
	AssigneeID *string
	Statuses   []domain.TicketStatus
	Limit      int
	Offset     int
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	// UpdateLifecycle persists a state transition conditionally on the
	// version read by the caller and bumps it. Returns ErrVersionConflict
	// when the row moved on since that read.
	UpdateLifecycle(ctx context.Context, ticket *domain.Ticket) error
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	notes, err := ticket.Notes.Encode()
	if err != nil {
		return err
	}
	const query = `
        INSERT INTO tickets (title, description, location, latitude, longitude, status, reporter_user_id, updated_by, update_notes)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id, version, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.Location,
		ticket.Latitude,
		ticket.Longitude,
		ticket.Status,
		ticket.ReporterID,
		ticket.UpdatedBy,
		string(notes),
	).Scan(&ticket.ID, &ticket.Version, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) UpdateLifecycle(ctx context.Context, ticket *domain.Ticket) error {
	notes, err := ticket.Notes.Encode()
	if err != nil {
		return err
	}
	const query = `
        UPDATE tickets SET status=$1, assignee_user_id=$2, assignment_date=$3, due_date=$4,
            resolution_date=$5, updated_by=$6, update_notes=$7, version=version+1, updated_at=NOW()
        WHERE id=$8 AND version=$9`
	cmd, err := r.pool.Exec(ctx, query,
		ticket.Status,
		ticket.AssigneeID,
		ticket.AssignmentDate,
		ticket.DueDate,
		ticket.ResolutionDate,
		ticket.UpdatedBy,
		string(notes),
		ticket.ID,
		ticket.Version,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrVersionConflict
	}
	ticket.Version++
	return nil
}

const ticketColumns = `id, title, description, location, latitude, longitude, status,
               reporter_user_id, assignee_user_id, assignment_date, due_date, resolution_date,
               updated_by, update_notes, version, created_at, updated_at`

func (r *ticketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1`
	var ticket domain.Ticket
	var rawNotes string
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&ticket.ID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Location,
		&ticket.Latitude,
		&ticket.Longitude,
		&ticket.Status,
		&ticket.ReporterID,
		&ticket.AssigneeID,
		&ticket.AssignmentDate,
		&ticket.DueDate,
		&ticket.ResolutionDate,
		&ticket.UpdatedBy,
		&rawNotes,
		&ticket.Version,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	ticket.Notes = domain.ParseNoteLedger([]byte(rawNotes))
	return &ticket, nil
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	base := `SELECT ` + ticketColumns + ` FROM tickets`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.ReporterID != nil {
		args = append(args, *filter.ReporterID)
		clauses = append(clauses, fmt.Sprintf("reporter_user_id=$%d", len(args)))
	}
	if filter.AssigneeID != nil {
		args = append(args, *filter.AssigneeID)
		clauses = append(clauses, fmt.Sprintf("assignee_user_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
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
		var rawNotes string
		if err := rows.Scan(
			&ticket.ID,
			&ticket.Title,
			&ticket.Description,
			&ticket.Location,
			&ticket.Latitude,
			&ticket.Longitude,
			&ticket.Status,
			&ticket.ReporterID,
			&ticket.AssigneeID,
			&ticket.AssignmentDate,
			&ticket.DueDate,
			&ticket.ResolutionDate,
			&ticket.UpdatedBy,
			&rawNotes,
			&ticket.Version,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
		); err != nil {
			return nil, err
		}
		ticket.Notes = domain.ParseNoteLedger([]byte(rawNotes))
		result = append(result, ticket)
	}
	return result, rows.Err()
}
