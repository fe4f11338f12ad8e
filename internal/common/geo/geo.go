// internal/common/geo/geo.go
// Great-circle distance helpers shared by profile, gym and matching code

package geo

import (
	"encoding/json"
	"fmt"
	"math"
)

const earthRadiusKm = 6371.0

// Point is a geographic point. On the wire it is a [longitude, latitude] pair.
type Point struct {
	Lng float64
	Lat float64
}

// NewPoint builds a point from longitude and latitude
func NewPoint(lng, lat float64) Point {
	return Point{Lng: lng, Lat: lat}
}

// IsZero reports whether p is the [0,0] sentinel used for "no location set"
func (p Point) IsZero() bool {
	return p.Lng == 0 && p.Lat == 0
}

// Valid reports whether the coordinates are within the WGS84 ranges
func (p Point) Valid() bool {
	return p.Lng >= -180 && p.Lng <= 180 && p.Lat >= -90 && p.Lat <= 90
}

// MarshalJSON encodes the point as [lng, lat]
func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{p.Lng, p.Lat})
}

// UnmarshalJSON decodes a [lng, lat] pair
func (p *Point) UnmarshalJSON(data []byte) error {
	var coords []float64
	if err := json.Unmarshal(data, &coords); err != nil {
		return fmt.Errorf("coordinates must be [longitude, latitude]: %w", err)
	}
	if len(coords) != 2 {
		return fmt.Errorf("coordinates must have exactly 2 values, got %d", len(coords))
	}
	p.Lng, p.Lat = coords[0], coords[1]
	return nil
}

// DistanceKm returns the haversine distance between a and b in kilometers
func DistanceKm(a, b Point) float64 {
	lat1 := toRadians(a.Lat)
	lat2 := toRadians(b.Lat)
	dLat := toRadians(b.Lat - a.Lat)
	dLng := toRadians(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKm * c
}

// BoundingBox is a lat/lng rectangle that contains every point within a radius
type BoundingBox struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

// BoundingBoxAround returns the box enclosing the circle of radiusKm around center.
// It is a cheap prefilter for SQL; callers still check the exact distance.
func BoundingBoxAround(center Point, radiusKm float64) BoundingBox {
	angular := radiusKm / earthRadiusKm
	latDelta := angular * 180 / math.Pi

	box := BoundingBox{
		MinLat: math.Max(center.Lat-latDelta, -90),
		MaxLat: math.Min(center.Lat+latDelta, 90),
		MinLng: -180,
		MaxLng: 180,
	}

	// Widest longitude reach of the circle is asin(sin r / cos lat). Near the
	// poles, or once the circle covers a pole, the span is everything.
	cosLat := math.Cos(toRadians(center.Lat))
	if arg := math.Sin(angular) / cosLat; cosLat > 1e-9 && arg < 1 && angular < math.Pi/2 {
		lngDelta := math.Asin(arg) * 180 / math.Pi
		box.MinLng = center.Lng - lngDelta
		box.MaxLng = center.Lng + lngDelta
	}

	return box
}

// WrapsAntimeridian reports whether the box crosses the ±180° meridian
func (b BoundingBox) WrapsAntimeridian() bool {
	return b.MinLng < -180 || b.MaxLng > 180
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
