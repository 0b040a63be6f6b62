package parser

// ValidateCoordinate validates a single coordinate pair.
// S-57 lat/lon coordinates (COUN=1) must be within valid geographic bounds.
func ValidateCoordinate(lat, lon float64) error {
	if lat < -90.0 || lat > 90.0 || lon < -180.0 || lon > 180.0 {
		return &ErrInvalidCoordinate{Lat: lat, Lon: lon}
	}
	return nil
}
