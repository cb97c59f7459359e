package geo

import "math"

const earthRadiusKm = 6371.0

// kmPerDegreeLat is close enough for a pre-filter; the haversine pass does the
// exact check afterwards.
const kmPerDegreeLat = 111.0

// Haversine returns the great-circle distance between two points in km.
func Haversine(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

// BoundingBox returns the axis-aligned box that contains every point within
// radiusKm of the center. The box over-selects; candidates inside it still
// need an exact distance check.
func BoundingBox(lat, lng, radiusKm float64) (minLat, maxLat, minLng, maxLng float64) {
	latDelta := radiusKm / kmPerDegreeLat

	cosLat := math.Cos(toRad(lat))
	lngDelta := 180.0
	if cosLat > 1e-6 {
		lngDelta = radiusKm / (kmPerDegreeLat * cosLat)
	}

	return lat - latDelta, lat + latDelta, lng - lngDelta, lng + lngDelta
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180.0
}
