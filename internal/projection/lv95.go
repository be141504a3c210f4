package projection

import "strings"

// isLV95 reports whether def describes the Swiss CH1903+ / LV95 grid.
func isLV95(def string) bool {
	lower := strings.ToLower(def)
	switch {
	case strings.Contains(lower, "epsg:2056"),
		strings.Contains(lower, "lv95"),
		strings.Contains(lower, "ch1903+"):
		return true
	case strings.Contains(lower, "+proj=somerc") && strings.Contains(lower, "+x_0=2600000"):
		return true
	}
	return false
}

// lv95ToWGS84 applies swisstopo's approximate LV95 to WGS84 formulas,
// accurate to about one metre within Switzerland.
func lv95ToWGS84(e, n float64) (lon, lat float64, err error) {
	y := (e - 2600000) / 1e6
	x := (n - 1200000) / 1e6

	lambda := 2.6779094 +
		4.728982*y +
		0.791484*y*x +
		0.1306*y*x*x -
		0.0436*y*y*y

	phi := 16.9023892 +
		3.238272*x -
		0.270978*y*y -
		0.002528*x*x -
		0.0447*y*y*x -
		0.0140*x*x*x

	// Results are in units of 10000", i.e. 1/0.36 degree.
	return lambda * 100 / 36, phi * 100 / 36, nil
}
