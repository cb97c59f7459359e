package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// AssignmentChannel is consumed by the notification collaborator, which owns
// actual SMS/push delivery.
const AssignmentChannel = "dispatch:assignments"

// Notifier informs a driver about an assignment change. Delivery is
// best-effort; assignment state never depends on it.
type Notifier interface {
	TripAssigned(ctx context.Context, driverID, tripID, message string) error
}

type assignmentEvent struct {
	DriverID string    `json:"driver_id"`
	TripID   string    `json:"trip_id"`
	Message  string    `json:"message"`
	At       time.Time `json:"at"`
}

type redisNotifier struct {
	redis *redis.Client
}

func NewRedisNotifier(redisClient *redis.Client) Notifier {
	return &redisNotifier{redis: redisClient}
}

func (n *redisNotifier) TripAssigned(ctx context.Context, driverID, tripID, message string) error {
	event := assignmentEvent{
		DriverID: driverID,
		TripID:   tripID,
		Message:  message,
		At:       time.Now(),
	}
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return n.redis.Publish(ctx, AssignmentChannel, data).Err()
}

// Nop discards notifications.
type Nop struct{}

func (Nop) TripAssigned(context.Context, string, string, string) error { return nil }
