package models

// Trip types accepted by the immediate matching endpoint.
const (
	TripTypeStandard  = "Standard"
	TripTypeEmergency = "Emergency"
)

// MatchRequest is the immediate-match input. Coordinates are pointers so a
// missing field is distinguishable from latitude/longitude zero.
type MatchRequest struct {
	PickupLat *float64 `json:"pickupLat" validate:"required,latitude"`
	PickupLng *float64 `json:"pickupLng" validate:"required,longitude"`
	TripType  string   `json:"tripType" validate:"omitempty,oneof=Standard Emergency"`
}

// MatchCandidate is one scored driver in a matching result.
type MatchCandidate struct {
	DriverID       string  `json:"id"`
	Name           string  `json:"name"`
	Phone          string  `json:"phone"`
	Rating         float64 `json:"rating"`
	Level          string  `json:"level"`
	DistanceKm     float64 `json:"distance"`
	EstimatedTime  float64 `json:"estimatedTime"`
	AcceptanceRate float64 `json:"acceptanceRate"`
	Score          float64 `json:"score"`
	TierBonus      float64 `json:"tierBonus"`
	TotalScore     float64 `json:"totalScore"`
}

// MatchResult is the outcome of one matching call. A zero-candidate outcome is
// Matched=false with a message, not an error.
type MatchResult struct {
	Matched       bool             `json:"matched"`
	BestDriver    *MatchCandidate  `json:"bestDriver,omitempty"`
	Alternatives  []MatchCandidate `json:"alternatives,omitempty"`
	AllCandidates []MatchCandidate `json:"allCandidates,omitempty"`
	Message       string           `json:"message,omitempty"`
}

// DriverDistance pairs a driver with its verified distance from the pickup
// point. The candidate set carries no ordering.
type DriverDistance struct {
	Driver     *Driver
	DistanceKm float64
}
