package dispatch

import (
	"math"
	"strings"
)

// stateCoords maps state codes to approximate centroids (lat, lon).
var stateCoords = map[string][2]float64{
	"AL": {32.8, -86.8}, "AK": {64.0, -153.0}, "AZ": {34.3, -111.7},
	"AR": {34.9, -92.4}, "CA": {37.2, -119.4}, "CO": {39.0, -105.5},
	"CT": {41.6, -72.7}, "DE": {39.0, -75.5}, "FL": {28.6, -82.4},
	"GA": {32.6, -83.4}, "HI": {20.8, -156.3}, "ID": {44.4, -114.6},
	"IL": {40.0, -89.2}, "IN": {39.9, -86.3}, "IA": {42.0, -93.5},
	"KS": {38.5, -98.4}, "KY": {37.8, -85.7}, "LA": {31.0, -92.0},
	"ME": {45.3, -69.0}, "MD": {39.0, -76.8}, "MA": {42.2, -71.5},
	"MI": {44.3, -85.4}, "MN": {46.3, -94.3}, "MS": {32.7, -89.7},
	"MO": {38.4, -92.5}, "MT": {47.0, -109.6}, "NE": {41.5, -99.8},
	"NV": {39.3, -116.6}, "NH": {43.7, -71.6}, "NJ": {40.2, -74.7},
	"NM": {34.5, -106.0}, "NY": {42.9, -75.5}, "NC": {35.5, -79.4},
	"ND": {47.4, -100.5}, "OH": {40.4, -82.8}, "OK": {35.6, -97.5},
	"OR": {44.0, -120.5}, "PA": {40.9, -77.8}, "RI": {41.7, -71.5},
	"SC": {33.9, -80.9}, "SD": {44.4, -100.2}, "TN": {35.8, -86.3},
	"TX": {31.5, -99.4}, "UT": {39.3, -111.7}, "VT": {44.0, -72.7},
	"VA": {37.5, -78.8}, "WA": {47.4, -120.5}, "WV": {38.9, -80.5},
	"WI": {44.6, -89.7}, "WY": {43.0, -107.5}, "DC": {38.9, -77.0},
}

// defaultDistanceMi is used when either state is unknown.
const defaultDistanceMi = 1000

// estimateDistance approximates the distance in miles between two
// state centroids. One degree of latitude is about 69 miles; longitude
// is scaled down for mid-US latitudes.
func estimateDistance(state1, state2 string) float64 {
	c1, ok1 := stateCoords[strings.ToUpper(state1)]
	c2, ok2 := stateCoords[strings.ToUpper(state2)]
	if !ok1 || !ok2 {
		return defaultDistanceMi
	}

	latDiff := math.Abs(c1[0]-c2[0]) * 69
	lonDiff := math.Abs(c1[1]-c2[1]) * 55

	return math.Sqrt(latDiff*latDiff + lonDiff*lonDiff)
}
