package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/NoLS-Tanzania/nols-app-sub009/internal/models"
)

type fakeMatchingService struct {
	result *models.MatchResult
}

func (f *fakeMatchingService) FindBestDriver(ctx context.Context, req *models.MatchRequest) (*models.MatchResult, error) {
	return f.result, nil
}

func matchingRouter(result *models.MatchResult) http.Handler {
	r := chi.NewRouter()
	NewMatchingHandler(&fakeMatchingService{result: result}).RegisterRoutes(r)
	return r
}

func TestFindReturnsMatch(t *testing.T) {
	router := matchingRouter(&models.MatchResult{
		Matched: true,
		BestDriver: &models.MatchCandidate{
			DriverID: "driver-1", Name: "Juma", Rating: 4.8, Level: models.TierGold, TotalScore: 0.915,
		},
	})

	body := `{"pickupLat": -6.7924, "pickupLng": 39.2083, "tripType": "Standard"}`
	req := httptest.NewRequest(http.MethodPost, "/matching/find", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var got models.MatchResult
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if !got.Matched || got.BestDriver == nil || got.BestDriver.DriverID != "driver-1" {
		t.Errorf("response = %s, want a match on driver-1", rec.Body.String())
	}
}

func TestFindNoMatchShape(t *testing.T) {
	router := matchingRouter(&models.MatchResult{
		Matched: false,
		Message: "no available drivers within 3 km of the pickup point",
	})

	body := `{"pickupLat": -6.7924, "pickupLng": 39.2083}`
	req := httptest.NewRequest(http.MethodPost, "/matching/find", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var got struct {
		Matched bool                    `json:"matched"`
		Message string                  `json:"message"`
		Drivers []models.MatchCandidate `json:"drivers"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if got.Matched {
		t.Error("matched = true, want false")
	}
	if got.Message == "" {
		t.Error("no-match response must carry an explanation")
	}
	if got.Drivers == nil || len(got.Drivers) != 0 {
		t.Errorf("drivers = %v, want an empty array", got.Drivers)
	}
}

func TestFindRejectsBadInput(t *testing.T) {
	router := matchingRouter(&models.MatchResult{Matched: false})

	tests := []struct {
		name string
		body string
	}{
		{"Not JSON", "pickup here please"},
		{"Missing coordinates", `{"tripType": "Standard"}`},
		{"Latitude out of range", `{"pickupLat": 123.0, "pickupLng": 39.2}`},
		{"Unknown trip type", `{"pickupLat": -6.79, "pickupLng": 39.21, "tripType": "Scenic"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/matching/find", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestFindAcceptsZeroCoordinates(t *testing.T) {
	// (0, 0) is a legal pickup point and must not be treated as missing.
	router := matchingRouter(&models.MatchResult{Matched: false, Message: "no available drivers"})

	req := httptest.NewRequest(http.MethodPost, "/matching/find", strings.NewReader(`{"pickupLat": 0, "pickupLng": 0}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 for the zero coordinate", rec.Code)
	}
}
