package domain

// Region tags.
const (
	RegionAntarctica   = "Antarctica"
	RegionArctic       = "Arctic"
	RegionNorthAmerica = "North America"
	RegionSouthAmerica = "South America"
	RegionEurope       = "Europe"
	RegionAfrica       = "Africa"
	RegionAsia         = "Asia"
	RegionOceania      = "Oceania"
	RegionGlobal       = "Oceanic/Global"
)

type regionRule struct {
	region string
	match  func(lat, lon float64) bool
}

// regionRules is an ordered decision list. Bands overlap at their edges
// (Europe/Africa around the Mediterranean, Asia/Oceania around the equator)
// and earlier rules take precedence.
var regionRules = []regionRule{
	{RegionAntarctica, func(lat, _ float64) bool { return lat < -60 }},
	{RegionArctic, func(lat, _ float64) bool { return lat >= 66.5 }},
	{RegionNorthAmerica, func(lat, lon float64) bool { return lat >= 7 && lon >= -170 && lon <= -50 }},
	{RegionSouthAmerica, func(lat, lon float64) bool { return lat >= -60 && lat < 7 && lon >= -92 && lon <= -30 }},
	{RegionEurope, func(lat, lon float64) bool { return lat >= 35 && lon >= -25 && lon < 60 }},
	{RegionAfrica, func(lat, lon float64) bool { return lat >= -35 && lat < 38 && lon >= -20 && lon < 52 }},
	{RegionAsia, func(lat, lon float64) bool { return lat >= -10 && lon >= 25 && lon <= 180 }},
	{RegionOceania, func(lat, lon float64) bool { return lat < -10 && lon >= 110 && lon <= 180 }},
}

// ClassifyRegion returns the coarse region for a coordinate. Coordinates no
// band matches (open ocean, mostly) fall through to RegionGlobal.
func ClassifyRegion(g Geo) string {
	for _, r := range regionRules {
		if r.match(g.Lat, g.Lon) {
			return r.region
		}
	}
	return RegionGlobal
}
