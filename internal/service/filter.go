package service

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"biling/internal/models"
)

const earthRadiusKm = 6371.0

// RadiusUnlimited is the request sentinel that disables distance filtering.
const RadiusUnlimited = "unlimited"

// haversineKm returns the great-circle distance in kilometers between two
// points given in decimal degrees.
func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// parseRadiusKm parses a radius spec like "5km". An empty spec or the
// "unlimited" sentinel disables the filter (ok=false). A non-numeric or
// negative value is a caller error, never silently coerced.
func parseRadiusKm(spec string) (km float64, ok bool, err error) {
	trimmed := strings.TrimSpace(spec)
	if trimmed == "" || strings.EqualFold(trimmed, RadiusUnlimited) {
		return 0, false, nil
	}

	value := strings.TrimSuffix(strings.ToLower(trimmed), "km")
	km, parseErr := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if parseErr != nil || km < 0 {
		return 0, false, models.NewValidationError(fmt.Sprintf("Invalid radius %q", spec))
	}
	return km, true, nil
}

// matchesKeyword reports whether the listing title contains the keyword,
// case-insensitively. An empty keyword matches everything. Only the title is
// searched, not the content.
func matchesKeyword(title, keyword string) bool {
	if keyword == "" {
		return true
	}
	return strings.Contains(strings.ToLower(title), strings.ToLower(keyword))
}
