package service

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/NoLS-Tanzania/nols-app-sub009/internal/config"
	"github.com/NoLS-Tanzania/nols-app-sub009/internal/models"
)

type MatchingService interface {
	FindBestDriver(ctx context.Context, req *models.MatchRequest) (*models.MatchResult, error)
}

type matchingService struct {
	finder CandidateSource
	cfg    config.MatchingConfig
}

func NewMatchingService(finder CandidateSource, cfg config.MatchingConfig) MatchingService {
	return &matchingService{finder: finder, cfg: cfg}
}

// FindBestDriver runs one immediate-match pass: find candidates, score them,
// apply the trip-type tie-break rules. A zero-candidate outcome or an
// unreachable location store yields Matched=false, not an error.
func (s *matchingService) FindBestDriver(ctx context.Context, req *models.MatchRequest) (*models.MatchResult, error) {
	tripType := req.TripType
	if tripType == "" {
		tripType = models.TripTypeStandard
	}

	radiusKm := s.cfg.StandardRadiusKm
	speedKmh := s.cfg.StandardSpeedKmh
	if tripType == models.TripTypeEmergency {
		radiusKm = s.cfg.EmergencyRadiusKm
		speedKmh = s.cfg.EmergencySpeedKmh
	}

	candidates, err := s.finder.FindNearby(ctx, *req.PickupLat, *req.PickupLng, radiusKm)
	if err != nil {
		log.Printf("candidate lookup failed, returning degraded result: %v", err)
		return &models.MatchResult{
			Matched: false,
			Message: "driver location service is unavailable, no candidates could be found",
		}, nil
	}
	if len(candidates) == 0 {
		return &models.MatchResult{
			Matched: false,
			Message: fmt.Sprintf("no available drivers within %.0f km of the pickup point", radiusKm),
		}, nil
	}

	scored := make([]models.MatchCandidate, 0, len(candidates))
	for _, c := range candidates {
		scored = append(scored, scoreCandidate(c.Driver, c.DistanceKm, radiusKm, speedKmh, s.cfg))
	}
	sortCandidates(scored)

	var winner int
	if tripType == models.TripTypeEmergency {
		winner = s.selectEmergency(scored)
	} else {
		winner = s.selectStandard(scored)
	}

	best := scored[winner]
	alternatives := make([]models.MatchCandidate, 0, s.cfg.MaxAlternatives)
	for i := range scored {
		if i == winner || len(alternatives) == s.cfg.MaxAlternatives {
			continue
		}
		alternatives = append(alternatives, scored[i])
	}

	return &models.MatchResult{
		Matched:       true,
		BestDriver:    &best,
		Alternatives:  alternatives,
		AllCandidates: scored,
	}, nil
}

// sortCandidates orders by total score descending. Distance then driver id
// break exact ties so matching stays reproducible.
func sortCandidates(scored []models.MatchCandidate) {
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].TotalScore != scored[j].TotalScore {
			return scored[i].TotalScore > scored[j].TotalScore
		}
		if scored[i].DistanceKm != scored[j].DistanceKm {
			return scored[i].DistanceKm < scored[j].DistanceKm
		}
		return scored[i].DriverID < scored[j].DriverID
	})
}

// selectEmergency prefers the highest tier among candidates very close to the
// pickup; beyond that circle the top-sorted driver wins outright.
func (s *matchingService) selectEmergency(scored []models.MatchCandidate) int {
	winner := -1
	bestRank := 0
	for i, c := range scored {
		if c.DistanceKm > s.cfg.EmergencyTierRadiusKm {
			continue
		}
		if rank := tierRank(c.Level); rank > bestRank {
			winner = i
			bestRank = rank
		}
	}
	if winner == -1 {
		return 0
	}
	return winner
}

// selectStandard takes the top-sorted driver when they are close and highly
// rated; otherwise it scans the sorted list and the first Diamond or Gold
// driver within the distance/rating envelope of the top driver wins. Order
// matters: this is first-match-wins, not best-of-all-matches.
func (s *matchingService) selectStandard(scored []models.MatchCandidate) int {
	top := scored[0]
	if top.DistanceKm <= s.cfg.TopPickMaxKm && top.Rating >= s.cfg.TopPickMinRating {
		return 0
	}
	for i, c := range scored {
		switch c.Level {
		case models.TierDiamond:
			if c.DistanceKm <= s.cfg.DiamondDistanceFactor*top.DistanceKm && c.Rating >= top.Rating-s.cfg.DiamondRatingSlack {
				return i
			}
		case models.TierGold:
			if c.DistanceKm <= s.cfg.GoldDistanceFactor*top.DistanceKm && c.Rating >= top.Rating+s.cfg.GoldRatingEdge {
				return i
			}
		}
	}
	return 0
}
