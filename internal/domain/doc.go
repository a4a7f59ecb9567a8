// Package domain models NASA EONET natural-event records and the pure
// transforms applied to them between the upstream feed and the presenters.
//
// # Data Source
//
// Events come from the Earth Observatory Natural Event Tracker (EONET) v3
// API, https://eonet.gsfc.nasa.gov/api/v3/events. The service polls the
// feed with status, limit, and lookback-days filters and decodes the
// "events" array of the response body into [RawEvent] values.
//
// # EONET Data Conventions
//
// Geometry history:
//
//	Each event carries an ordered list of geometry samples, oldest first.
//	Only the last (most recent) sample is used for placement.
//
// Coordinate order:
//
//	Coordinates follow GeoJSON: [longitude, latitude]. The internal model
//	is latitude-first ([Geo]), so axes are swapped during normalization.
//
//	Point:   [lon, lat]
//	Polygon: [[[lon, lat], [lon, lat], ...], ...]  (rings of vertices)
//
//	A polygon is represented by the first vertex of its first ring. This is
//	a display simplification, not a centroid.
//
// Categories:
//
//	An event may list several categories; the first is the primary one.
//	Titles are free text ("Wildfires", "Severe Storms", "Sea and Lake Ice").
//
// Unknown values:
//
//	Empty geometry, unrecognized geometry types ("LineString" and friends),
//	undecodable coordinates and out-of-range values all yield an absent
//	location. Absence is not an error: the event is still listed, it just
//	gets no map marker and no region.
//
// # Classification
//
// Category, icon and color tags come from an ordered substring rule list
// ([categoryRules]); the first case-insensitive match wins. Region tags come
// from an ordered list of latitude/longitude band predicates ([regionRules])
// with an "Oceanic/Global" catch-all. Both lists overlap at their edges, so
// their order is part of the contract.
//
// The region classifier is a coarse heuristic for grouping, not geocoding:
//
//	lat < -60                               Antarctica
//	lat >= 66.5                             Arctic
//	lat >= 7,  -170 <= lon <= -50           North America
//	-60 <= lat < 7, -92 <= lon <= -30       South America
//	lat >= 35, -25 <= lon < 60              Europe
//	-35 <= lat < 38, -20 <= lon < 52        Africa
//	lat >= -10, 25 <= lon <= 180            Asia
//	lat < -10, 110 <= lon <= 180            Oceania
//	otherwise                               Oceanic/Global
//
// # Aggregation
//
// [Aggregate] counts classified events per category and per
// category x region. [SummaryText] renders the report into the compact text
// the summarizer prompt is built from.
package domain
