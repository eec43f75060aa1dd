// Package reportdata derives cosmetic, human-facing metadata (hue,
// lightness, usage, semantic role) for an already-finalized palette bank.
// It produces data only; no HTML rendering happens in this module, per
// spec.md §1's framing of the HTML report as an out-of-scope collaborator.
package reportdata

import (
	"sort"

	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/ochrefield/pcetile/internal/pce"
	"github.com/ochrefield/pcetile/internal/pceerr"
)

// PaletteColor is one palette entry's report metadata.
type PaletteColor struct {
	Color        string  `json:"color"`
	Hue          float64 `json:"hue"`
	Saturation   float64 `json:"saturation"`
	Lightness    float64 `json:"lightness"`
	UsagePercent float64 `json:"usage_percent"`
	Role         string  `json:"role"`
}

// Summary is the per-palette report metadata for one conversion result.
type Summary struct {
	Palettes [pce.MaxPalettes][]PaletteColor
}

// Describe computes hue/saturation/lightness and a semantic role for every
// palette color, and usage percentages from each tile's contribution to its
// assigned palette, mirroring the teacher's ExtractPalette/assignPaletteRoles
// shape but over already-clustered palettes rather than a fresh k-means run.
func Describe(palettes [pce.MaxPalettes][]string, tiles []pce.TileInfo, tilePaletteMap []int) (Summary, error) {
	var summary Summary

	usage := usageByPaletteColor(palettes, tiles, tilePaletteMap)

	for p, pal := range palettes {
		colors := make([]PaletteColor, 0, len(pal))
		for _, token := range pal {
			c, err := colorful.Hex(token)
			if err != nil {
				return Summary{}, pceerr.Wrap(pceerr.InvalidParameter, "invalid palette token in report data", err)
			}
			h, s, l := c.Hsl()
			colors = append(colors, PaletteColor{
				Color:        token,
				Hue:          h,
				Saturation:   s * 100,
				Lightness:    l * 100,
				UsagePercent: usage[p][token],
			})
		}
		assignRoles(colors)
		summary.Palettes[p] = colors
	}

	return summary, nil
}

// usageByPaletteColor tallies, for each palette and each of its color
// tokens, the percentage of pixels (across all tiles assigned to that
// palette) using that color.
func usageByPaletteColor(palettes [pce.MaxPalettes][]string, tiles []pce.TileInfo, tilePaletteMap []int) [pce.MaxPalettes]map[string]float64 {
	var totals [pce.MaxPalettes]map[string]int
	var grandTotal [pce.MaxPalettes]int
	for i := range totals {
		totals[i] = make(map[string]int)
	}

	for i, tile := range tiles {
		p := tilePaletteMap[i]
		for token, count := range tile.Counts {
			totals[p][token] += count
			grandTotal[p] += count
		}
	}

	var usage [pce.MaxPalettes]map[string]float64
	for p := range usage {
		usage[p] = make(map[string]float64, len(palettes[p]))
		for _, token := range palettes[p] {
			if grandTotal[p] == 0 {
				usage[p][token] = 0
				continue
			}
			usage[p][token] = float64(totals[p][token]) * 100.0 / float64(grandTotal[p])
		}
	}
	return usage
}

// assignRoles labels each color dark_shadow..highlight by lightness rank
// within its own palette, per the teacher's assignPaletteRoles.
func assignRoles(colors []PaletteColor) {
	n := len(colors)
	if n <= 1 {
		for i := range colors {
			colors[i].Role = "midtone"
		}
		return
	}

	byLightness := make([]int, n)
	for i := range byLightness {
		byLightness[i] = i
	}
	sort.Slice(byLightness, func(i, j int) bool {
		return colors[byLightness[i]].Lightness < colors[byLightness[j]].Lightness
	})

	rank := make([]int, n)
	for r, idx := range byLightness {
		rank[idx] = r
	}

	for i := range colors {
		ratio := float64(rank[i]) / float64(n-1)
		switch {
		case ratio < 0.2:
			colors[i].Role = "dark_shadow"
		case ratio < 0.4:
			colors[i].Role = "shadow"
		case ratio < 0.6:
			colors[i].Role = "midtone"
		case ratio < 0.8:
			colors[i].Role = "light"
		default:
			colors[i].Role = "highlight"
		}
	}
}
