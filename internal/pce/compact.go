package pce

import (
	"sort"

	"github.com/ochrefield/pcetile/internal/seeded"
)

// Compact implements spec.md §4.7: palettes are reordered so useful,
// used palettes (usage count descending, seeded tiebreak) come first,
// followed by all remaining palettes; the tile->palette map is remapped
// through the resulting old->new permutation.
func Compact(palettes [MaxPalettes][]string, tilePaletteMap []int, bg string, seed uint64) ([MaxPalettes][]string, []int) {
	usage := make([]int, MaxPalettes)
	for _, p := range tilePaletteMap {
		if p >= 0 && p < MaxPalettes {
			usage[p]++
		}
	}

	useful := make([]bool, MaxPalettes)
	for i, pal := range palettes {
		for _, c := range pal {
			if c != bg {
				useful[i] = true
				break
			}
		}
	}

	order := make([]int, MaxPalettes)
	for i := range order {
		order[i] = i
	}

	sort.SliceStable(order, func(i, j int) bool {
		oi, oj := order[i], order[j]
		usedI := useful[oi] && usage[oi] > 0
		usedJ := useful[oj] && usage[oj] > 0
		if usedI != usedJ {
			return usedI
		}
		if !usedI {
			// Preserve original relative order among non-used palettes.
			return false
		}
		if usage[oi] != usage[oj] {
			return usage[oi] > usage[oj]
		}
		return seeded.Hash64(seed, paletteKey(palettes[oi])) < seeded.Hash64(seed, paletteKey(palettes[oj]))
	})

	oldToNew := make([]int, MaxPalettes)
	var newPalettes [MaxPalettes][]string
	for newIdx, oldIdx := range order {
		oldToNew[oldIdx] = newIdx
		newPalettes[newIdx] = palettes[oldIdx]
	}

	newMap := make([]int, len(tilePaletteMap))
	for i, p := range tilePaletteMap {
		if p < 0 || p >= MaxPalettes {
			newMap[i] = p
			continue
		}
		newMap[i] = oldToNew[p]
	}

	return newPalettes, newMap
}

func paletteKey(pal []string) string {
	key := ""
	for _, c := range pal {
		key += c
	}
	return key
}
