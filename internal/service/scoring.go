package service

import (
	"github.com/NoLS-Tanzania/nols-app-sub009/internal/config"
	"github.com/NoLS-Tanzania/nols-app-sub009/internal/models"
)

// etaHorizonMin is the ETA beyond which the time sub-score bottoms out.
const etaHorizonMin = 30.0

// TierOf derives a driver's tier from lifetime metrics. Crossing any one bar
// of a tier is enough.
func TierOf(d *models.Driver, cfg config.MatchingConfig) string {
	if d.LifetimeKm >= cfg.DiamondKm || d.TotalTrips >= cfg.DiamondTrips || d.ReviewCount >= cfg.DiamondReviews {
		return models.TierDiamond
	}
	if d.LifetimeKm >= cfg.GoldKm || d.TotalTrips >= cfg.GoldTrips || d.ReviewCount >= cfg.GoldReviews {
		return models.TierGold
	}
	return models.TierSilver
}

func tierScore(level string) float64 {
	switch level {
	case models.TierDiamond:
		return 3.0
	case models.TierGold:
		return 2.0
	default:
		return 1.0
	}
}

func tierRank(level string) int {
	switch level {
	case models.TierDiamond:
		return 3
	case models.TierGold:
		return 2
	default:
		return 1
	}
}

func tierBonus(level string, cfg config.MatchingConfig) float64 {
	switch level {
	case models.TierDiamond:
		return cfg.DiamondBonus
	case models.TierGold:
		return cfg.GoldBonus
	default:
		return 0.0
	}
}

// scoreCandidate computes the composite score for one driver at the given
// verified distance. radiusKm and speedKmh come from the trip type.
func scoreCandidate(d *models.Driver, distanceKm, radiusKm, speedKmh float64, cfg config.MatchingConfig) models.MatchCandidate {
	level := TierOf(d, cfg)
	acceptance := d.AcceptanceRate()
	etaMin := distanceKm / speedKmh * 60.0

	proximity := clamp01(1.0 - distanceKm/radiusKm)
	ratingScore := d.Rating / 5.0
	timeScore := clamp01(1.0 - etaMin/etaHorizonMin)

	composite := proximity*cfg.ProximityWeight +
		(tierScore(level)/3.0)*cfg.TierWeight +
		ratingScore*cfg.RatingWeight +
		acceptance*cfg.AcceptanceWeight +
		timeScore*cfg.TimeWeight

	bonus := tierBonus(level, cfg)

	return models.MatchCandidate{
		DriverID:       d.ID,
		Name:           d.Name,
		Phone:          d.Phone,
		Rating:         d.Rating,
		Level:          level,
		DistanceKm:     distanceKm,
		EstimatedTime:  etaMin,
		AcceptanceRate: acceptance,
		Score:          composite,
		TierBonus:      bonus,
		TotalScore:     composite + bonus,
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
