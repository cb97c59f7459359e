package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	driverGeoKey        = "dispatch:drivers:geo"
	driverLocationKey   = "dispatch:driver:%s:location"
	driverMetaKeyPrefix = "dispatch:driver:meta:"
	locationTTL         = 5 * time.Minute
)

// Location is a driver's last reported position. Entries expire after
// locationTTL so the overlay never serves positions older than that.
type Location struct {
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	UpdatedAt int64   `json:"updated_at"`
}

// DriverLocationCache is the live-location overlay on top of the Postgres
// last-known locations. Redis being down degrades matching freshness, not
// correctness.
type DriverLocationCache interface {
	UpdateLocation(ctx context.Context, driverID string, lat, lng float64) error
	GetLocations(ctx context.Context, driverIDs []string) (map[string]Location, error)
	SetAvailability(ctx context.Context, driverID string, available bool, rating float64) error
	RemoveDriver(ctx context.Context, driverID string) error
}

type driverLocationCache struct {
	redis *redis.Client
}

func NewDriverLocationCache(redisClient *redis.Client) DriverLocationCache {
	return &driverLocationCache{redis: redisClient}
}

func (c *driverLocationCache) UpdateLocation(ctx context.Context, driverID string, lat, lng float64) error {
	if err := c.redis.GeoAdd(ctx, driverGeoKey, &redis.GeoLocation{
		Name:      driverID,
		Longitude: lng,
		Latitude:  lat,
	}).Err(); err != nil {
		return err
	}

	loc := Location{Lat: lat, Lng: lng, UpdatedAt: time.Now().Unix()}
	data, err := json.Marshal(loc)
	if err != nil {
		return err
	}
	return c.redis.Set(ctx, locationKey(driverID), data, locationTTL).Err()
}

// GetLocations fetches fresh positions for the given drivers in one pipeline.
// Drivers without a fresh position are simply absent from the result.
func (c *driverLocationCache) GetLocations(ctx context.Context, driverIDs []string) (map[string]Location, error) {
	if len(driverIDs) == 0 {
		return map[string]Location{}, nil
	}

	pipe := c.redis.Pipeline()
	cmds := make(map[string]*redis.StringCmd, len(driverIDs))
	for _, id := range driverIDs {
		cmds[id] = pipe.Get(ctx, locationKey(id))
	}
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, err
	}

	result := make(map[string]Location, len(driverIDs))
	for id, cmd := range cmds {
		data, err := cmd.Bytes()
		if err != nil {
			continue
		}
		var loc Location
		if err := json.Unmarshal(data, &loc); err != nil {
			continue
		}
		result[id] = loc
	}
	return result, nil
}

func (c *driverLocationCache) SetAvailability(ctx context.Context, driverID string, available bool, rating float64) error {
	metaKey := driverMetaKeyPrefix + driverID
	if err := c.redis.HSet(ctx, metaKey, map[string]interface{}{
		"available": available,
		"rating":    fmt.Sprintf("%.1f", rating),
	}).Err(); err != nil {
		return err
	}
	if !available {
		return c.RemoveDriver(ctx, driverID)
	}
	return nil
}

func (c *driverLocationCache) RemoveDriver(ctx context.Context, driverID string) error {
	if err := c.redis.ZRem(ctx, driverGeoKey, driverID).Err(); err != nil {
		return err
	}
	return c.redis.Del(ctx, locationKey(driverID)).Err()
}

func locationKey(driverID string) string {
	return fmt.Sprintf(driverLocationKey, driverID)
}
