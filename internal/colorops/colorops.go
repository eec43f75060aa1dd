// Package colorops implements the fixed-point color math shared by every
// stage of the PCE conversion pipeline: hex token parsing/formatting, RGB333
// lattice quantization, and squared-channel distance.
package colorops

import (
	"fmt"
	"strconv"
	"strings"
)

// Levels holds the eight legal values of one RGB333 channel, in ascending
// order: round(i/7*255) for i in 0..7.
var Levels = [8]uint8{0, 36, 73, 109, 146, 182, 219, 255}

// Parse parses a "#RRGGBB" token into its three 8-bit channels.
func Parse(token string) (r, g, b uint8, err error) {
	if len(token) != 7 || token[0] != '#' {
		return 0, 0, 0, fmt.Errorf("colorops: malformed color token %q", token)
	}
	v, err := strconv.ParseUint(token[1:], 16, 32)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("colorops: malformed color token %q: %w", token, err)
	}
	r = uint8(v >> 16)
	g = uint8(v >> 8)
	b = uint8(v)
	return r, g, b, nil
}

// Format renders an RGB triple as an uppercase "#RRGGBB" token, always 7
// characters.
func Format(r, g, b uint8) string {
	return strings.ToUpper(fmt.Sprintf("#%02x%02x%02x", r, g, b))
}

// Quantize3 folds an 8-bit channel value onto the nearest RGB333 lattice
// point: round(v/255*7) * 255/7, rounded to the nearest integer and snapped
// to the precomputed Levels table so the result is always exactly one of
// the eight legal values.
func Quantize3(v uint8) uint8 {
	idx := int((float64(v)/255.0)*7.0 + 0.5)
	if idx < 0 {
		idx = 0
	}
	if idx > 7 {
		idx = 7
	}
	return Levels[idx]
}

// DistSquared returns the squared Euclidean distance between two 8-bit RGB
// triples. No color-space conversion is applied; this is the distance
// function the hardware-accurate clusterer and encoder use throughout.
func DistSquared(r1, g1, b1, r2, g2, b2 uint8) int {
	dr := int(r1) - int(r2)
	dg := int(g1) - int(g2)
	db := int(b1) - int(b2)
	return dr*dr + dg*dg + db*db
}

// DistSquaredToken parses both tokens and returns their squared distance. If
// either token is malformed, it is treated as black (#000000) so callers in
// the clusterer never abort a run on a bad color (see the error-handling
// design: malformed tokens resolve to a fallback, never abort).
func DistSquaredToken(a, b string) int {
	r1, g1, b1, err1 := Parse(a)
	if err1 != nil {
		r1, g1, b1 = 0, 0, 0
	}
	r2, g2, b2, err2 := Parse(b)
	if err2 != nil {
		r2, g2, b2 = 0, 0, 0
	}
	return DistSquared(r1, g1, b1, r2, g2, b2)
}
