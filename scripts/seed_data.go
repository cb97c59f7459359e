//go:build ignore

package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/NoLS-Tanzania/nols-app-sub009/internal/cache"
	"github.com/NoLS-Tanzania/nols-app-sub009/internal/config"
	"github.com/NoLS-Tanzania/nols-app-sub009/internal/database"
	"github.com/NoLS-Tanzania/nols-app-sub009/internal/models"
	"github.com/NoLS-Tanzania/nols-app-sub009/internal/repository"
)

// Dar es Salaam city centre
const (
	baseLat = -6.7924
	baseLng = 39.2083
)

var (
	firstNames = []string{"Juma", "Asha", "Baraka", "Neema", "Hassan", "Zawadi", "Rashid", "Amina", "Emmanuel", "Grace",
		"Salim", "Rehema", "David", "Fatuma", "Joseph", "Mariam", "Peter", "Halima", "Frank", "Upendo"}
	lastNames = []string{"Mwangi", "Komba", "Mushi", "Ndosi", "Shayo", "Massawe", "Kimaro", "Temba", "Lyimo", "Mrema"}

	pickupAddresses  = []string{"Julius Nyerere Intl Airport", "Kariakoo Market", "Mlimani City Mall", "Coco Beach", "Posta", "Ubungo Terminal"}
	dropoffAddresses = []string{"Masaki Peninsula", "Mbezi Beach", "Kigamboni Ferry", "Mikocheni", "Oyster Bay", "Tabata"}

	vehicleTypes = []string{"sedan", "suv", "van"}
)

func main() {
	rand.Seed(time.Now().UnixNano())

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.NewPostgres(cfg.DatabaseURL, cfg.DBMaxConnections, cfg.DBMaxIdleConnections)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer db.Close()

	redis, err := database.NewRedis(cfg.RedisURL, cfg.RedisPassword)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redis.Close()

	ctx := context.Background()

	driverRepo := repository.NewDriverRepository(db.DB)
	tripRepo := repository.NewTripRepository(db.DB)
	assignmentStore := repository.NewAssignmentStore(db.DB)
	locationCache := cache.NewDriverLocationCache(redis.Client)

	driverIDs := make([]string, 0, 40)

	log.Println("Creating 40 drivers...")
	for i := 0; i < 40; i++ {
		name := firstNames[rand.Intn(len(firstNames))] + " " + lastNames[rand.Intn(len(lastNames))]
		lat := baseLat + (rand.Float64()-0.5)*0.08
		lng := baseLng + (rand.Float64()-0.5)*0.08
		now := time.Now()

		driver := &models.Driver{
			Phone:      fmt.Sprintf("+2557%08d", rand.Intn(100000000)),
			Name:       name,
			Rating:     3.5 + rand.Float64()*1.5,
			Available:  rand.Float64() < 0.7,
			CurrentLat: &lat,
			CurrentLng: &lng,
			LocationAt: &now,
		}

		// Spread history so every tier shows up
		switch {
		case i < 8: // Diamond-grade history
			driver.TotalTrips = 200 + rand.Intn(400)
			driver.LifetimeKm = 500 + rand.Float64()*3000
			driver.ReviewCount = 100 + rand.Intn(200)
		case i < 20: // Gold-grade history
			driver.TotalTrips = 50 + rand.Intn(120)
			driver.LifetimeKm = 100 + rand.Float64()*350
			driver.ReviewCount = 25 + rand.Intn(60)
		case i < 36: // Silver
			driver.TotalTrips = rand.Intn(45)
			driver.LifetimeKm = rand.Float64() * 90
			driver.ReviewCount = rand.Intn(20)
		default:
			// brand-new drivers, no history at all
		}
		driver.AcceptedTrips = int(float64(driver.TotalTrips) * (0.75 + rand.Float64()*0.25))

		if err := driverRepo.Create(ctx, driver); err != nil {
			log.Fatalf("Failed to create driver: %v", err)
		}
		driverIDs = append(driverIDs, driver.ID)

		if driver.Available {
			if err := locationCache.UpdateLocation(ctx, driver.ID, lat, lng); err != nil {
				log.Printf("Warning: failed to cache location for %s: %v", driver.ID, err)
			}
		}
	}

	log.Println("Creating 25 scheduled trips...")
	for i := 0; i < 25; i++ {
		windowHours := []int{2, 4, 6, 24}[rand.Intn(4)]

		// Mix of trips before, inside, and past their claim window
		var scheduled time.Time
		switch i % 3 {
		case 0:
			scheduled = time.Now().Add(time.Duration(windowHours+2+rand.Intn(48)) * time.Hour)
		case 1:
			scheduled = time.Now().Add(time.Duration(rand.Intn(windowHours)) * time.Hour)
		default:
			scheduled = time.Now().Add(-time.Duration(1+rand.Intn(6)) * time.Hour)
		}

		trip := &models.ScheduledTrip{
			PickupLat:        baseLat + (rand.Float64()-0.5)*0.08,
			PickupLng:        baseLng + (rand.Float64()-0.5)*0.08,
			PickupAddress:    pickupAddresses[rand.Intn(len(pickupAddresses))],
			DropoffLat:       baseLat + (rand.Float64()-0.5)*0.12,
			DropoffLng:       baseLng + (rand.Float64()-0.5)*0.12,
			DropoffAddress:   dropoffAddresses[rand.Intn(len(dropoffAddresses))],
			ScheduledTime:    scheduled,
			VehicleType:      vehicleTypes[rand.Intn(len(vehicleTypes))],
			PaymentStatus:    models.PaymentStatusPaid,
			ClaimWindowHours: windowHours,
			ClaimLimit:       3 + rand.Intn(3),
			Status:           models.TripStatusScheduled,
		}
		if rand.Float64() < 0.3 {
			trip.PaymentStatus = models.PaymentStatusPending
		}

		if err := tripRepo.Create(ctx, trip); err != nil {
			log.Fatalf("Failed to create trip: %v", err)
		}

		// A few pending claims on trips whose window is open
		if i%3 != 1 {
			continue
		}
		claimants := 1 + rand.Intn(trip.ClaimLimit)
		for c := 0; c < claimants; c++ {
			driverID := driverIDs[rand.Intn(len(driverIDs))]
			err := assignmentStore.InTx(ctx, func(tx repository.AssignmentTx) error {
				pending, err := tx.HasPendingClaim(ctx, trip.ID, driverID)
				if err != nil || pending {
					return err
				}
				claim := &models.Claim{
					TripID:   trip.ID,
					DriverID: driverID,
					Status:   models.ClaimStatusPending,
				}
				if err := tx.InsertClaim(ctx, claim); err != nil {
					return err
				}
				return tx.IncrementClaimCount(ctx, trip.ID)
			})
			if err != nil {
				log.Fatalf("Failed to create claim: %v", err)
			}
		}
	}

	log.Println("Seed complete.")
}
