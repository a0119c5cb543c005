package geo

import (
	"math"
)

// Point is a WGS84 coordinate pair.
type Point struct {
	Latitude  float64
	Longitude float64
}

// RegionID names a coarse geographic region (a US state in the shipped table).
type RegionID string

// RegionUnknown is returned for points outside every known bounding box.
// Discovery treats it as "no regional restriction".
const RegionUnknown RegionID = ""

// DistanceKm calculates the great-circle distance between two points using the
// Haversine formula. Result is in kilometers.
func DistanceKm(a, b Point) float64 {
	const earthRadiusKm = 6371.0 // Earth's radius in kilometers

	lat1Rad := degToRad(a.Latitude)
	lon1Rad := degToRad(a.Longitude)
	lat2Rad := degToRad(b.Latitude)
	lon2Rad := degToRad(b.Longitude)

	dLat := lat2Rad - lat1Rad
	dLon := lon2Rad - lon1Rad

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKm * c
}

// IsWithinRadius reports whether p lies within radiusKm of origin.
// The boundary is inclusive: a point at exactly radiusKm is inside.
func IsWithinRadius(origin, p Point, radiusKm float64) bool {
	return DistanceKm(origin, p) <= radiusKm
}

// ValidPoint reports whether the coordinates are a plausible WGS84 pair.
func ValidPoint(p Point) bool {
	return p.Latitude >= -90 && p.Latitude <= 90 &&
		p.Longitude >= -180 && p.Longitude <= 180
}

// regionBounds is a rectangular approximation of a region. The rectangles are
// coarse and may overlap near borders; RegionOf resolves overlaps by taking the
// first match in table order.
type regionBounds struct {
	id                     RegionID
	minLat, maxLat         float64
	minLon, maxLon         float64
}

// Table order is significant: first match wins.
var regionTable = []regionBounds{
	{id: "AZ", minLat: 31.3, maxLat: 37.0, minLon: -114.9, maxLon: -109.0},
	{id: "NV", minLat: 35.0, maxLat: 42.0, minLon: -120.0, maxLon: -114.0},
	{id: "CA", minLat: 32.5, maxLat: 42.0, minLon: -124.5, maxLon: -114.1},
	{id: "TX", minLat: 25.8, maxLat: 36.5, minLon: -106.7, maxLon: -93.5},
	{id: "CO", minLat: 37.0, maxLat: 41.0, minLon: -109.1, maxLon: -102.0},
	{id: "UT", minLat: 37.0, maxLat: 42.0, minLon: -114.1, maxLon: -109.0},
	{id: "NM", minLat: 31.3, maxLat: 37.0, minLon: -109.1, maxLon: -103.0},
	{id: "WA", minLat: 45.5, maxLat: 49.0, minLon: -124.8, maxLon: -116.9},
	{id: "OR", minLat: 42.0, maxLat: 46.3, minLon: -124.6, maxLon: -116.5},
	{id: "NY", minLat: 40.5, maxLat: 45.0, minLon: -79.8, maxLon: -71.8},
	{id: "FL", minLat: 24.5, maxLat: 31.0, minLon: -87.6, maxLon: -80.0},
}

func (b regionBounds) contains(p Point) bool {
	return p.Latitude >= b.minLat && p.Latitude <= b.maxLat &&
		p.Longitude >= b.minLon && p.Longitude <= b.maxLon
}

// RegionOf resolves a point to its region via bounding-box membership.
// Points outside every box resolve to RegionUnknown with ok=false.
func RegionOf(p Point) (RegionID, bool) {
	for _, bounds := range regionTable {
		if bounds.contains(p) {
			return bounds.id, true
		}
	}
	return RegionUnknown, false
}

// KnownRegions returns every region id in the bounding-box table.
func KnownRegions() []RegionID {
	ids := make([]RegionID, 0, len(regionTable))
	for _, bounds := range regionTable {
		ids = append(ids, bounds.id)
	}
	return ids
}

func degToRad(deg float64) float64 {
	return deg * (math.Pi / 180.0)
}
