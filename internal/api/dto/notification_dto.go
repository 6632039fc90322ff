package dto

import "time"

// NotificationResponse is one in-app notification.
type NotificationResponse struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	TicketID  *int64    `json:"ticket_id"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

// MarkReadRequest lists notification ids to flip to read.
type MarkReadRequest struct {
	IDs []string `json:"ids"`
}
