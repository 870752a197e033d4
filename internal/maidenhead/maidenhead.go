// Package maidenhead converts between Maidenhead grid locators and
// latitude/longitude.
package maidenhead

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

const edge = 1e-9

var ErrInvalidLocator = errors.New("invalid maidenhead locator")

// ToLatLon returns the centre of the subsquare named by the first 6
// characters of `grid`, anything past those is ignored.
func ToLatLon(grid string) (lat, lon float64, err error) {
	if len(grid) < 6 {
		return 0, 0, fmt.Errorf("%w: %q must be at least 6 characters long", ErrInvalidLocator, grid)
	}

	field := strings.ToUpper(grid[0:2])
	square := grid[2:4]
	subsquare := strings.ToLower(grid[4:6])

	for i := 0; i < 2; i++ {
		if field[i] < 'A' || field[i] > 'R' ||
			square[i] < '0' || square[i] > '9' ||
			subsquare[i] < 'a' || subsquare[i] > 'x' {
			return 0, 0, fmt.Errorf("%w: %q", ErrInvalidLocator, grid)
		}
	}

	lon = -180 + 20*float64(field[0]-'A') + 2*float64(square[0]-'0') + 5.0/60.0*(float64(subsquare[0]-'a')+0.5)
	lat = -90 + 10*float64(field[1]-'A') + float64(square[1]-'0') + 2.5/60.0*(float64(subsquare[1]-'a')+0.5)
	return lat, lon, nil
}

// FromLatLon returns the 6 character locator containing the point.
// Coordinates outside of the valid range are clamped to it.
func FromLatLon(lat, lon float64) string {
	// the northern and eastern edges belong to the last subsquare
	lat = math.Min(math.Max(lat, -90), 90-edge)
	lon = math.Min(math.Max(lon, -180), 180-edge)

	lon += 180
	lat += 90

	out := make([]byte, 6)

	out[0] = 'A' + byte(lon/20)
	out[1] = 'A' + byte(lat/10)
	lon -= math.Floor(lon/20) * 20
	lat -= math.Floor(lat/10) * 10

	out[2] = '0' + byte(lon/2)
	out[3] = '0' + byte(lat)
	lon -= math.Floor(lon/2) * 2
	lat -= math.Floor(lat)

	out[4] = 'a' + byte(lon*12)
	out[5] = 'a' + byte(lat*24)

	return string(out)
}
