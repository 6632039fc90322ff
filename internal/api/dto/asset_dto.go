package dto

import (
	"time"

	"github.com/spec-kit/facility-service/internal/domain"
)

// AssetRequest payload for create/update.
type AssetRequest struct {
	Name         string             `json:"name"`
	Category     string             `json:"category"`
	Location     string             `json:"location"`
	SerialNumber string             `json:"serial_number"`
	Status       domain.AssetStatus `json:"status"`
}

// AssetResponse payload.
type AssetResponse struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	Category     string             `json:"category"`
	Location     string             `json:"location"`
	SerialNumber string             `json:"serial_number"`
	Status       domain.AssetStatus `json:"status"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}
