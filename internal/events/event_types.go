package events

import (
	"time"

	"github.com/spec-kit/facility-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated   EventType = "ticket_created"
	EventTicketAssigned  EventType = "ticket_assigned"
	EventTicketResolved  EventType = "ticket_resolved"
	EventTicketNoteAdded EventType = "ticket_note_added"
)

// Actor identifies the user whose action produced an event.
type Actor struct {
	UserID string      `json:"user_id"`
	Name   string      `json:"name"`
	Role   domain.Role `json:"role"`
}

// Event represents a domain event emitted after a successful state change.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  int64       `json:"ticket_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Title      string `json:"title"`
	ReporterID string `json:"reporter_id"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	AssigneeID     string    `json:"assignee_id"`
	AssigneeName   string    `json:"assignee_name"`
	ReporterID     string    `json:"reporter_id"`
	Title          string    `json:"title"`
	ResolutionDays int       `json:"resolution_days"`
	DueDate        time.Time `json:"due_date"`
}

// TicketResolvedPayload payload.
type TicketResolvedPayload struct {
	Overdue bool `json:"overdue"`
}

// TicketNoteAddedPayload payload.
type TicketNoteAddedPayload struct {
	Note string `json:"note"`
}
