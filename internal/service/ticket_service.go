package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/facility-service/internal/authz"
	"github.com/spec-kit/facility-service/internal/domain"
	"github.com/spec-kit/facility-service/internal/events"
	"github.com/spec-kit/facility-service/internal/repository"
	apperrors "github.com/spec-kit/facility-service/pkg/util"
)

// TicketService covers ticket creation and role-scoped reads. Lifecycle
// transitions live in LifecycleService.
type TicketService struct {
	tickets    repository.TicketRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
	now        func() time.Time
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	UserRepo   repository.UserRepository
	Dispatcher events.Dispatcher
	Now        func() time.Time
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title       string
	Description string
	Location    string
	Latitude    *float64
	Longitude   *float64
	// ReporterID names the resident an admin files the ticket for;
	// residents always report for themselves.
	ReporterID string
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &TicketService{
		tickets:    deps.TicketRepo,
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
		now:        now,
	}
}

// Create opens a ticket in NOT_ASSIGNED. Residents report for themselves;
// admins may report on behalf of a resident.
func (s *TicketService) Create(ctx context.Context, actor *domain.User, input TicketCreateInput) (*domain.Ticket, error) {
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if title == "" || description == "" {
		return nil, apperrors.NewValidationError("title and description required", nil)
	}

	var reporterID string
	switch actor.Role {
	case domain.RoleResident:
		reporterID = actor.ID
	case domain.RoleAdmin:
		if input.ReporterID == "" {
			return nil, apperrors.NewValidationError("reporter required", nil)
		}
		reporter, err := s.users.GetByID(ctx, input.ReporterID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewNotFound("reporter", map[string]any{"reporter_id": input.ReporterID})
			}
			return nil, apperrors.MapError(err)
		}
		if reporter.Role != domain.RoleResident {
			return nil, apperrors.NewValidationError("reporter must be a resident", nil)
		}
		reporterID = reporter.ID
	default:
		return nil, apperrors.NewForbidden("workers cannot open tickets")
	}

	ticket := &domain.Ticket{
		Title:       title,
		Description: description,
		Location:    strings.TrimSpace(input.Location),
		Latitude:    input.Latitude,
		Longitude:   input.Longitude,
		Status:      domain.TicketStatusNotAssigned,
		ReporterID:  reporterID,
		UpdatedBy:   "N/A",
		Notes:       domain.NoteLedger{},
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventTicketCreated,
			TicketID:  ticket.ID,
			Actor:     events.Actor{UserID: actor.ID, Name: actor.Name, Role: actor.Role},
			Timestamp: s.now(),
			Payload: events.TicketCreatedPayload{
				Title:      ticket.Title,
				ReporterID: ticket.ReporterID,
			},
		})
	}
	return ticket, nil
}

// List returns tickets visible to the actor: admins every ticket, workers
// their assignments, residents their own reports.
func (s *TicketService) List(ctx context.Context, actor *domain.User, statuses []domain.TicketStatus, limit, offset int) ([]domain.Ticket, error) {
	filter := repository.TicketFilter{
		Statuses: statuses,
		Limit:    limit,
		Offset:   offset,
	}
	switch actor.Role {
	case domain.RoleAdmin:
	case domain.RoleWorker:
		id := actor.ID
		filter.AssigneeID = &id
	case domain.RoleResident:
		id := actor.ID
		filter.ReporterID = &id
	default:
		return nil, apperrors.NewForbidden("access denied")
	}

	tickets, err := s.tickets.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// Get fetches a ticket the actor is allowed to view.
func (s *TicketService) Get(ctx context.Context, actor *domain.User, ticketID int64) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	if !authz.CanView(actor, ticket) {
		return nil, apperrors.NewForbidden("access denied")
	}
	return ticket, nil
}
