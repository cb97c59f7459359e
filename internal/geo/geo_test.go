package geo

import (
	"math"
	"testing"
)

func TestHaversine(t *testing.T) {
	tests := []struct {
		name       string
		lat1, lng1 float64
		lat2, lng2 float64
		wantKm     float64
		tolerance  float64
	}{
		{
			name: "Same point",
			lat1: -6.7924, lng1: 39.2083,
			lat2: -6.7924, lng2: 39.2083,
			wantKm: 0, tolerance: 0.001,
		},
		{
			name: "Dar es Salaam to Zanzibar",
			lat1: -6.7924, lng1: 39.2083,
			lat2: -6.1659, lng2: 39.2026,
			wantKm: 69.7, tolerance: 1.0,
		},
		{
			name: "Roughly 1km north",
			lat1: -6.7924, lng1: 39.2083,
			lat2: -6.78341, lng2: 39.2083,
			wantKm: 1.0, tolerance: 0.01,
		},
		{
			name: "Across the antimeridian",
			lat1: 0, lng1: 179.9,
			lat2: 0, lng2: -179.9,
			wantKm: 22.24, tolerance: 0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Haversine(tt.lat1, tt.lng1, tt.lat2, tt.lng2)
			if math.Abs(got-tt.wantKm) > tt.tolerance {
				t.Errorf("Haversine() = %v km, want ~%v km", got, tt.wantKm)
			}
		})
	}
}

func TestHaversineSymmetric(t *testing.T) {
	a := Haversine(-6.79, 39.21, -6.82, 39.25)
	b := Haversine(-6.82, 39.25, -6.79, 39.21)
	if math.Abs(a-b) > 1e-9 {
		t.Errorf("Haversine is not symmetric: %v vs %v", a, b)
	}
}

func TestBoundingBox(t *testing.T) {
	minLat, maxLat, minLng, maxLng := BoundingBox(-6.7924, 39.2083, 5)

	if minLat >= maxLat || minLng >= maxLng {
		t.Fatalf("degenerate box: [%v,%v] x [%v,%v]", minLat, maxLat, minLng, maxLng)
	}

	// The box must contain every point within the radius. Probe the
	// cardinal extremes just inside 5km.
	probes := []struct{ lat, lng float64 }{
		{-6.7924 + 4.9/111.0, 39.2083},
		{-6.7924 - 4.9/111.0, 39.2083},
		{-6.7924, 39.2083 + 4.9/(111.0*math.Cos(-6.7924*math.Pi/180))},
		{-6.7924, 39.2083 - 4.9/(111.0*math.Cos(-6.7924*math.Pi/180))},
	}
	for i, p := range probes {
		if p.lat < minLat || p.lat > maxLat || p.lng < minLng || p.lng > maxLng {
			t.Errorf("probe %d (%v, %v) falls outside the box", i, p.lat, p.lng)
		}
	}
}

func TestBoundingBoxNearPole(t *testing.T) {
	minLat, maxLat, minLng, maxLng := BoundingBox(89.9, 0, 5)
	for _, v := range []float64{minLat, maxLat, minLng, maxLng} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("bounding box produced non-finite bound near pole: %v", v)
		}
	}
	if minLng >= maxLng {
		t.Errorf("longitude span collapsed near pole: [%v, %v]", minLng, maxLng)
	}
}
