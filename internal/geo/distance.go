package geo

import "math"

// EarthRadiusKm is the mean Earth radius used for great-circle distances.
const EarthRadiusKm = 6371.0

// Coordinate is a point in decimal degrees.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// DistanceKm returns the haversine distance between a and b in kilometers.
// Inputs are not range checked.
func DistanceKm(a, b Coordinate) float64 {
	lat1 := toRadians(a.Latitude)
	lat2 := toRadians(b.Latitude)
	dLat := toRadians(b.Latitude - a.Latitude)
	dLng := toRadians(b.Longitude - a.Longitude)

	sinLat := math.Sin(dLat / 2)
	sinLng := math.Sin(dLng / 2)
	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLng*sinLng

	// rounding can push h just outside [0,1] for antipodal points
	h = math.Min(1, math.Max(0, h))

	return 2 * EarthRadiusKm * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// BoundingBox returns the latitude/longitude window that contains every point
// within radiusKm of center. Near the poles the longitude window spans the full range.
func BoundingBox(center Coordinate, radiusKm float64) (minLat, maxLat, minLng, maxLng float64) {
	angular := radiusKm / EarthRadiusKm
	dLat := toDegrees(angular)
	minLat = math.Max(-90, center.Latitude-dLat)
	maxLat = math.Min(90, center.Latitude+dLat)

	ratio := math.Sin(angular) / math.Cos(toRadians(center.Latitude))
	if ratio >= 1 || minLat == -90 || maxLat == 90 {
		return minLat, maxLat, -180, 180
	}
	dLng := toDegrees(math.Asin(ratio))
	minLng = center.Longitude - dLng
	maxLng = center.Longitude + dLng
	if minLng < -180 || maxLng > 180 {
		return minLat, maxLat, -180, 180
	}
	return minLat, maxLat, minLng, maxLng
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

func toDegrees(rad float64) float64 {
	return rad * 180 / math.Pi
}

// Round8 rounds a decimal-degree value to 8 fractional digits, the precision
// of the coordinate columns.
func Round8(v float64) float64 {
	return math.Round(v*1e8) / 1e8
}
