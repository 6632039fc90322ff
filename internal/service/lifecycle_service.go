package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/facility-service/internal/authz"
	"github.com/spec-kit/facility-service/internal/config"
	"github.com/spec-kit/facility-service/internal/domain"
	"github.com/spec-kit/facility-service/internal/events"
	"github.com/spec-kit/facility-service/internal/repository"
	apperrors "github.com/spec-kit/facility-service/pkg/util"
)

const dueDateLayout = "2006-01-02"

// LifecycleService drives the ticket state machine:
// NOT_ASSIGNED -> ASSIGNED -> RESOLVED, with RESOLVED terminal. Every
// transition appends a ledger note and, once persisted, publishes an event
// that the notification side executes independently.
type LifecycleService struct {
	tickets    repository.TicketRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
	cfg        config.TicketConfig
	now        func() time.Time
}

// LifecycleDependencies bundles collaborators for the lifecycle engine.
type LifecycleDependencies struct {
	TicketRepo repository.TicketRepository
	UserRepo   repository.UserRepository
	Dispatcher events.Dispatcher
	// Now overrides the clock; nil means time.Now.
	Now func() time.Time
}

// NewLifecycleService constructs the service.
func NewLifecycleService(cfg config.TicketConfig, deps LifecycleDependencies) *LifecycleService {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &LifecycleService{
		tickets:    deps.TicketRepo,
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
		cfg:        cfg,
		now:        now,
	}
}

// Assign moves a NOT_ASSIGNED ticket to ASSIGNED: picks the worker, derives
// the due date from the chosen resolution duration, appends the assignment
// note and persists everything in one conditional update. Notifications go
// out only after the update commits.
func (s *LifecycleService) Assign(ctx context.Context, actor *domain.User, ticketID int64, workerID string, resolutionDays int) (*domain.Ticket, error) {
	if workerID == "" {
		return nil, apperrors.NewValidationError("worker required", nil)
	}
	if resolutionDays <= 0 {
		resolutionDays = s.cfg.DefaultResolutionDays
	}

	worker, err := s.users.GetByID(ctx, workerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("worker", map[string]any{"worker_id": workerID})
		}
		return nil, apperrors.MapError(err)
	}
	if worker.Role != domain.RoleWorker {
		return nil, apperrors.NewValidationError("assignee is not a facility worker", map[string]any{"worker_id": workerID})
	}

	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.Status == domain.TicketStatusResolved {
		return nil, apperrors.NewConflict("ticket already resolved", map[string]any{"ticket_id": ticketID})
	}
	if ticket.Status == domain.TicketStatusAssigned {
		return nil, apperrors.NewConflict("ticket already assigned", map[string]any{"ticket_id": ticketID})
	}
	if !authz.CanAssign(actor, ticket) {
		return nil, apperrors.NewForbidden("access denied")
	}

	now := s.now()
	dueDate := now.AddDate(0, 0, resolutionDays)

	ticket.Notes = ticket.Notes.Append(domain.Note{
		Text: fmt.Sprintf("Ticket assigned to %s with %d day(s) to resolve (due by %s)",
			worker.Name, resolutionDays, dueDate.Format(dueDateLayout)),
		AddedBy:   actor.Name,
		Timestamp: now,
	})
	ticket.Status = domain.TicketStatusAssigned
	ticket.AssigneeID = &worker.ID
	ticket.AssignmentDate = &now
	ticket.DueDate = &dueDate
	ticket.UpdatedBy = actor.Name

	if err := s.tickets.UpdateLifecycle(ctx, ticket); err != nil {
		return nil, mapLifecycleError(err, ticketID)
	}

	s.publish(ctx, actor, events.Event{
		Type:     events.EventTicketAssigned,
		TicketID: ticket.ID,
		Payload: events.TicketAssignedPayload{
			AssigneeID:     worker.ID,
			AssigneeName:   worker.Name,
			ReporterID:     ticket.ReporterID,
			Title:          ticket.Title,
			ResolutionDays: resolutionDays,
			DueDate:        dueDate,
		},
	})
	return ticket, nil
}

// Resolve moves an unresolved ticket to RESOLVED, classifying it on-time or
// overdue against the due date. A ticket without a due date resolves on time.
func (s *LifecycleService) Resolve(ctx context.Context, actor *domain.User, ticketID int64) (*domain.Ticket, error) {
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.Status == domain.TicketStatusResolved {
		return nil, apperrors.NewConflict("ticket already resolved", map[string]any{"ticket_id": ticketID})
	}
	if !authz.CanResolve(actor, ticket) {
		return nil, apperrors.NewForbidden("access denied")
	}

	now := s.now()
	overdue := ticket.Overdue(now)
	text := "Ticket resolved on time"
	if overdue {
		text = "Ticket resolved (past due date)"
	}

	ticket.Notes = ticket.Notes.Append(domain.Note{
		Text:      text,
		AddedBy:   actor.Name,
		Timestamp: now,
	})
	ticket.Status = domain.TicketStatusResolved
	ticket.ResolutionDate = &now
	ticket.UpdatedBy = actor.Name

	if err := s.tickets.UpdateLifecycle(ctx, ticket); err != nil {
		return nil, mapLifecycleError(err, ticketID)
	}

	s.publish(ctx, actor, events.Event{
		Type:     events.EventTicketResolved,
		TicketID: ticket.ID,
		Payload:  events.TicketResolvedPayload{Overdue: overdue},
	})
	return ticket, nil
}

// AddNote appends a free-form note to the ledger. With the legacy flag on
// the entry lands at the end unsorted, matching the historical behavior;
// otherwise the ledger is re-sorted like the other transitions do.
func (s *LifecycleService) AddNote(ctx context.Context, actor *domain.User, ticketID int64, text string) (*domain.Ticket, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.NewValidationError("note text required", nil)
	}

	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !authz.CanView(actor, ticket) {
		return nil, apperrors.NewForbidden("access denied")
	}

	note := domain.Note{
		Text:      text,
		AddedBy:   actor.Name,
		Timestamp: s.now(),
	}
	if s.cfg.LegacyNoteAppend {
		ticket.Notes = ticket.Notes.AppendUnsorted(note)
	} else {
		ticket.Notes = ticket.Notes.Append(note)
	}

	if err := s.tickets.UpdateLifecycle(ctx, ticket); err != nil {
		return nil, mapLifecycleError(err, ticketID)
	}

	s.publish(ctx, actor, events.Event{
		Type:     events.EventTicketNoteAdded,
		TicketID: ticket.ID,
		Payload:  events.TicketNoteAddedPayload{Note: text},
	})
	return ticket, nil
}

func (s *LifecycleService) getTicket(ctx context.Context, ticketID int64) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

func mapLifecycleError(err error, ticketID int64) error {
	if errors.Is(err, repository.ErrVersionConflict) {
		return apperrors.NewConflict("ticket modified concurrently, retry", map[string]any{"ticket_id": ticketID})
	}
	return apperrors.MapError(err)
}

func (s *LifecycleService) publish(ctx context.Context, actor *domain.User, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	event.ID = uuid.NewString()
	event.Timestamp = s.now()
	event.Actor = events.Actor{UserID: actor.ID, Name: actor.Name, Role: actor.Role}
	_ = s.dispatcher.Publish(ctx, event)
}
