// Package grid decides regional provider coverage and converts geographic
// coordinates into the regional provider's forecast grid.
package grid

import "math"

// Coverage box of the regional provider, in decimal degrees.
const (
	MinLat = 33.0
	MaxLat = 39.0
	MinLon = 124.0
	MaxLon = 132.0
)

// Lambert conformal conic parameters of the KMA short-term forecast grid.
const (
	earthRadiusKm = 6371.00877
	gridSpacingKm = 5.0
	stdParallel1  = 30.0
	stdParallel2  = 60.0
	originLon     = 126.0
	originLat     = 38.0
	originX       = 43
	originY       = 136
)

// InRegionalCoverage reports whether the coordinate lies inside the coverage box.
func InRegionalCoverage(lat, lon float64) bool {
	return lat >= MinLat && lat <= MaxLat && lon >= MinLon && lon <= MaxLon
}

// ToGrid projects lat/lon onto the integer grid cell (nx, ny) used to index
// regional forecasts.
func ToGrid(lat, lon float64) (int, int) {
	const degRad = math.Pi / 180.0

	re := earthRadiusKm / gridSpacingKm
	slat1 := stdParallel1 * degRad
	slat2 := stdParallel2 * degRad
	olon := originLon * degRad
	olat := originLat * degRad

	sn := math.Tan(math.Pi*0.25+slat2*0.5) / math.Tan(math.Pi*0.25+slat1*0.5)
	sn = math.Log(math.Cos(slat1)/math.Cos(slat2)) / math.Log(sn)
	sf := math.Tan(math.Pi*0.25 + slat1*0.5)
	sf = math.Pow(sf, sn) * math.Cos(slat1) / sn
	ro := math.Tan(math.Pi*0.25 + olat*0.5)
	ro = re * sf / math.Pow(ro, sn)

	ra := math.Tan(math.Pi*0.25 + lat*degRad*0.5)
	ra = re * sf / math.Pow(ra, sn)
	theta := lon*degRad - olon
	if theta > math.Pi {
		theta -= 2.0 * math.Pi
	}
	if theta < -math.Pi {
		theta += 2.0 * math.Pi
	}
	theta *= sn

	x := int(math.Floor(ra*math.Sin(theta) + originX + 0.5))
	y := int(math.Floor(ro - ra*math.Cos(theta) + originY + 0.5))
	return x, y
}
