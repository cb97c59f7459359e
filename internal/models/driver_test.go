package models

import (
	"math"
	"testing"
)

func TestAcceptanceRate(t *testing.T) {
	tests := []struct {
		name     string
		total    int
		accepted int
		want     float64
	}{
		{"No history uses the new-driver default", 0, 0, 0.90},
		{"Perfect record", 200, 200, 1.0},
		{"Partial record", 150, 120, 0.80},
		{"Single rejected trip", 1, 0, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &Driver{TotalTrips: tt.total, AcceptedTrips: tt.accepted}
			if got := d.AcceptanceRate(); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("AcceptanceRate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHasLocation(t *testing.T) {
	lat, lng := -6.79, 39.21

	d := &Driver{}
	if d.HasLocation() {
		t.Error("driver with no coordinates reports a location")
	}

	d.CurrentLat = &lat
	if d.HasLocation() {
		t.Error("driver with only a latitude reports a location")
	}

	d.CurrentLng = &lng
	if !d.HasLocation() {
		t.Error("driver with both coordinates reports no location")
	}
}
