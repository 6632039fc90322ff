package dto

import (
	"time"

	"github.com/spec-kit/facility-service/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Location    string   `json:"location"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	ReporterID  string   `json:"reporter_id,omitempty"`
}

// AssignTicketRequest payload.
type AssignTicketRequest struct {
	WorkerID       string `json:"worker_id"`
	ResolutionDays int    `json:"resolution_days"`
}

// AddNoteRequest payload.
type AddNoteRequest struct {
	Text string `json:"text"`
}

// NoteResponse is one ledger entry.
type NoteResponse struct {
	Text      string    `json:"note"`
	AddedBy   string    `json:"added_by"`
	Timestamp time.Time `json:"timestamp"`
}

// TicketSummary response.
type TicketSummary struct {
	ID         int64               `json:"id"`
	Title      string              `json:"title"`
	Location   string              `json:"location"`
	Status     domain.TicketStatus `json:"status"`
	AssigneeID *string             `json:"assignee_id"`
	DueDate    *time.Time          `json:"due_date"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
}

// TicketDetailResponse provides full ticket info including the note ledger.
type TicketDetailResponse struct {
	ID             int64               `json:"id"`
	Title          string              `json:"title"`
	Description    string              `json:"description"`
	Location       string              `json:"location"`
	Latitude       *float64            `json:"latitude"`
	Longitude      *float64            `json:"longitude"`
	Status         domain.TicketStatus `json:"status"`
	ReporterID     string              `json:"reporter_id"`
	AssigneeID     *string             `json:"assignee_id"`
	AssignmentDate *time.Time          `json:"assignment_date"`
	DueDate        *time.Time          `json:"due_date"`
	ResolutionDate *time.Time          `json:"resolution_date"`
	UpdatedBy      string              `json:"updated_by"`
	Notes          []NoteResponse      `json:"notes"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}
