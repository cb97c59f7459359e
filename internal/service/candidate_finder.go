package service

import (
	"context"
	"log"

	"github.com/NoLS-Tanzania/nols-app-sub009/internal/cache"
	"github.com/NoLS-Tanzania/nols-app-sub009/internal/geo"
	"github.com/NoLS-Tanzania/nols-app-sub009/internal/models"
	"github.com/NoLS-Tanzania/nols-app-sub009/internal/repository"
)

// CandidateSource yields available drivers within a radius of a pickup point,
// with verified distances. The result carries no ordering.
type CandidateSource interface {
	FindNearby(ctx context.Context, lat, lng, radiusKm float64) ([]models.DriverDistance, error)
}

type candidateFinder struct {
	drivers   repository.DriverRepository
	locations cache.DriverLocationCache
}

func NewCandidateFinder(drivers repository.DriverRepository, locations cache.DriverLocationCache) CandidateSource {
	return &candidateFinder{drivers: drivers, locations: locations}
}

// FindNearby narrows with a bounding box in SQL, overlays fresher cached
// positions where present, then keeps only drivers whose exact great-circle
// distance is within the radius.
func (f *candidateFinder) FindNearby(ctx context.Context, lat, lng, radiusKm float64) ([]models.DriverDistance, error) {
	minLat, maxLat, minLng, maxLng := geo.BoundingBox(lat, lng, radiusKm)

	drivers, err := f.drivers.FindAvailableInBox(ctx, minLat, maxLat, minLng, maxLng)
	if err != nil {
		return nil, err
	}
	if len(drivers) == 0 {
		return []models.DriverDistance{}, nil
	}

	ids := make([]string, 0, len(drivers))
	for _, d := range drivers {
		ids = append(ids, d.ID)
	}
	fresh, err := f.locations.GetLocations(ctx, ids)
	if err != nil {
		// cache miss degrades freshness only; stored locations still serve
		log.Printf("location cache unavailable, using stored locations: %v", err)
		fresh = map[string]cache.Location{}
	}

	result := make([]models.DriverDistance, 0, len(drivers))
	for _, d := range drivers {
		dLat, dLng := *d.CurrentLat, *d.CurrentLng
		if loc, ok := fresh[d.ID]; ok {
			dLat, dLng = loc.Lat, loc.Lng
		}
		dist := geo.Haversine(lat, lng, dLat, dLng)
		if dist > radiusKm {
			continue
		}
		result = append(result, models.DriverDistance{Driver: d, DistanceKm: dist})
	}
	return result, nil
}
