// Package geo provides the distance math behind the nearby-site search.
package geo

import "math"

const earthRadiusKm = 6371.0

// Point is a WGS84 coordinate in degrees
type Point struct {
	Lat float64
	Lon float64
}

// BoundingBox is the lat/lon rectangle enclosing a circle.
// When MinLon > MaxLon the box crosses the antimeridian and covers
// longitudes >= MinLon together with longitudes <= MaxLon.
type BoundingBox struct {
	MinLat, MaxLat float64
	MinLon, MaxLon float64
}

// WrapsLongitude reports whether the box crosses the antimeridian
func (b BoundingBox) WrapsLongitude() bool {
	return b.MinLon > b.MaxLon
}

// Contains reports whether p lies inside the box
func (b BoundingBox) Contains(p Point) bool {
	if p.Lat < b.MinLat || p.Lat > b.MaxLat {
		return false
	}
	if b.WrapsLongitude() {
		return p.Lon >= b.MinLon || p.Lon <= b.MaxLon
	}
	return p.Lon >= b.MinLon && p.Lon <= b.MaxLon
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

// DistanceKm returns the great-circle distance between a and b using the haversine formula
func DistanceKm(a, b Point) float64 {
	dLat := radians(b.Lat - a.Lat)
	dLon := radians(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(a.Lat))*math.Cos(radians(b.Lat))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}

// Around returns a box that contains every point within radiusKm of center.
// The box is a coarse prefilter; callers still check DistanceKm.
func Around(center Point, radiusKm float64) BoundingBox {
	dLat := radiusKm / earthRadiusKm * 180 / math.Pi

	// near the poles a longitude band degenerates, so take the whole circle
	cosLat := math.Cos(radians(center.Lat))
	dLon := 180.0
	if cosLat > 1e-6 {
		dLon = math.Min(180, dLat/cosLat)
	}

	box := BoundingBox{
		MinLat: math.Max(-90, center.Lat-dLat),
		MaxLat: math.Min(90, center.Lat+dLat),
		MinLon: -180,
		MaxLon: 180,
	}
	// a circle over a pole reaches every meridian
	if dLon >= 180 || box.MaxLat >= 90 || box.MinLat <= -90 {
		return box
	}

	box.MinLon = center.Lon - dLon
	box.MaxLon = center.Lon + dLon
	if box.MinLon < -180 {
		box.MinLon += 360
	}
	if box.MaxLon > 180 {
		box.MaxLon -= 360
	}
	return box
}
