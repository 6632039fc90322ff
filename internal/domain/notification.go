package domain

import "time"

// Notification is an in-app message persisted for a single recipient.
// Records are append-only; the only mutation is flipping IsRead.
type Notification struct {
	ID          string
	RecipientID string
	Message     string
	TicketID    *int64
	IsRead      bool
	CreatedAt   time.Time
}
