package domain

import (
	"time"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
)

// Geometry types understood by NormalizeGeometry.
const (
	GeometryPoint   = "Point"
	GeometryPolygon = "Polygon"
)

// NormalizeGeometry extracts a single coordinate from an event's geometry
// history. It uses the most recent (last) sample. The second return value is
// false when no usable location can be derived; that is an expected outcome,
// not an error.
func NormalizeGeometry(samples []GeometrySample) (Geo, bool) {
	if len(samples) == 0 {
		return Geo{}, false
	}
	return normalizeSample(samples[len(samples)-1])
}

func normalizeSample(s GeometrySample) (Geo, bool) {
	if s.Type != GeometryPoint && s.Type != GeometryPolygon {
		return Geo{}, false
	}
	if len(s.Coordinates) == 0 {
		return Geo{}, false
	}

	raw := s.Coordinates
	g, err := (&geojson.Geometry{Type: s.Type, Coordinates: &raw}).Decode()
	if err != nil {
		return Geo{}, false
	}

	var c geom.Coord
	switch t := g.(type) {
	case *geom.Point:
		if t.Empty() {
			return Geo{}, false
		}
		c = t.Coords()
	case *geom.Polygon:
		// First vertex of the first ring stands in for the whole shape.
		if t.NumLinearRings() == 0 || t.LinearRing(0).NumCoords() == 0 {
			return Geo{}, false
		}
		c = t.LinearRing(0).Coord(0)
	default:
		return Geo{}, false
	}
	if len(c) < 2 {
		return Geo{}, false
	}

	// GeoJSON is [lon, lat]; Geo is latitude-first.
	loc := Geo{Lat: c.Y(), Lon: c.X()}
	if !loc.Valid() {
		return Geo{}, false
	}
	return loc, true
}

// latestObservation returns the timestamp of the most recent geometry
// sample, or the zero time when it is missing or unparseable.
func latestObservation(samples []GeometrySample) time.Time {
	if len(samples) == 0 {
		return time.Time{}
	}
	t, _ := samples[len(samples)-1].Time()
	return t
}
