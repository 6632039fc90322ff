package domain

import "time"

// TicketStatus enumerates lifecycle states for maintenance tickets.
type TicketStatus string

const (
	TicketStatusNotAssigned TicketStatus = "NOT_ASSIGNED"
	TicketStatusAssigned    TicketStatus = "ASSIGNED"
	TicketStatusResolved    TicketStatus = "RESOLVED"
)

// Ticket is the aggregate for resident maintenance requests.
type Ticket struct {
	ID             int64
	Title          string
	Description    string
	Location       string
	Latitude       *float64
	Longitude      *float64
	Status         TicketStatus
	ReporterID     string
	AssigneeID     *string
	AssignmentDate *time.Time
	DueDate        *time.Time
	ResolutionDate *time.Time
	UpdatedBy      string
	Notes          NoteLedger
	Version        int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Overdue reports whether resolving at the given instant would miss the
// due date. A ticket without a due date is never overdue.
func (t *Ticket) Overdue(at time.Time) bool {
	return t.DueDate != nil && at.After(*t.DueDate)
}
