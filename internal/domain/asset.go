package domain

import "time"

// AssetStatus enumerates facility asset conditions.
type AssetStatus string

const (
	AssetStatusOperational AssetStatus = "OPERATIONAL"
	AssetStatusMaintenance AssetStatus = "MAINTENANCE"
	AssetStatusRetired     AssetStatus = "RETIRED"
)

// FacilityAsset models tracked equipment and fixtures.
type FacilityAsset struct {
	ID           string
	Name         string
	Category     string
	Location     string
	SerialNumber string
	Status       AssetStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
