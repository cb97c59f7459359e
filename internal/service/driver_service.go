package service

import (
	"context"
	"log"

	"github.com/NoLS-Tanzania/nols-app-sub009/internal/cache"
	apperrors "github.com/NoLS-Tanzania/nols-app-sub009/internal/errors"
	"github.com/NoLS-Tanzania/nols-app-sub009/internal/models"
	"github.com/NoLS-Tanzania/nols-app-sub009/internal/repository"
)

// DriverService keeps the candidate pool current: location pings and
// availability flips. Driver identity itself is owned by a collaborator.
type DriverService interface {
	GetDriver(ctx context.Context, id string) (*models.Driver, error)
	UpdateLocation(ctx context.Context, driverID string, lat, lng float64) error
	SetAvailability(ctx context.Context, driverID string, available bool) error
}

type driverService struct {
	drivers       repository.DriverRepository
	locationCache cache.DriverLocationCache
}

func NewDriverService(drivers repository.DriverRepository, locationCache cache.DriverLocationCache) DriverService {
	return &driverService{drivers: drivers, locationCache: locationCache}
}

func (s *driverService) GetDriver(ctx context.Context, id string) (*models.Driver, error) {
	driver, err := s.drivers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if driver == nil {
		return nil, apperrors.NotFound("driver")
	}
	return driver, nil
}

// UpdateLocation writes the cache first (the matching hot path reads it), then
// the durable last-known location.
func (s *driverService) UpdateLocation(ctx context.Context, driverID string, lat, lng float64) error {
	driver, err := s.GetDriver(ctx, driverID)
	if err != nil {
		return err
	}
	if !driver.Active {
		return apperrors.Forbidden("driver account is deactivated")
	}

	if s.locationCache != nil {
		if err := s.locationCache.UpdateLocation(ctx, driverID, lat, lng); err != nil {
			log.Printf("failed to cache location for driver %s: %v", driverID, err)
		}
	}
	return s.drivers.UpdateLocation(ctx, driverID, lat, lng)
}

func (s *driverService) SetAvailability(ctx context.Context, driverID string, available bool) error {
	driver, err := s.GetDriver(ctx, driverID)
	if err != nil {
		return err
	}
	if !driver.Active {
		return apperrors.Forbidden("driver account is deactivated")
	}

	if err := s.drivers.SetAvailability(ctx, driverID, available); err != nil {
		return err
	}
	if s.locationCache != nil {
		if err := s.locationCache.SetAvailability(ctx, driverID, available, driver.Rating); err != nil {
			log.Printf("failed to cache availability for driver %s: %v", driverID, err)
		}
	}
	return nil
}
