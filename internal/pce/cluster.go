package pce

import (
	"sort"

	"github.com/ochrefield/pcetile/internal/colorops"
	"github.com/ochrefield/pcetile/internal/seeded"
)

// MaxPalettes is the fixed size of the hardware palette bank.
const MaxPalettes = 16

// MaxPaletteColors is the maximum number of colors a single palette may
// hold, including slot 0.
const MaxPaletteColors = 16

// ClusterResult is the output of Cluster: up to MaxPalettes working
// palettes (pre-compaction), the per-tile palette assignment, and the
// empty-tile bitmap.
type ClusterResult struct {
	Palettes       [MaxPalettes][]string
	TilePaletteMap []int
	EmptyTiles     []bool
}

// normalizeConstraint treats out-of-range or missing constraint values as
// "auto" (-1), per the error-handling design (§7).
func normalizeConstraint(constraints []int, i int) int {
	if constraints == nil || i >= len(constraints) {
		return -1
	}
	c := constraints[i]
	if c < 0 || c > MaxPalettes-1 {
		return -1
	}
	return c
}

// Cluster implements the per-tile palette clustering algorithm of
// spec.md §4.6. paletteSlots (1..16, typically `palette_count`) bounds how
// many palette slots are seeded and refined for unconstrained tiles;
// constrained tiles may still pin to any slot index in [0,15] regardless of
// paletteSlots.
func Cluster(tiles []TileInfo, bg string, paletteSlots int, constraints []int, seed uint64) ClusterResult {
	if paletteSlots < 1 {
		paletteSlots = 1
	}
	if paletteSlots > MaxPalettes {
		paletteSlots = MaxPalettes
	}

	n := len(tiles)
	empty := make([]bool, n)
	constraint := make([]int, n)
	assign := make([]int, n)
	for i, t := range tiles {
		empty[i] = t.IsEmpty(bg)
		constraint[i] = normalizeConstraint(constraints, i)
		assign[i] = -1
	}

	// Step 1/2: empty tiles map to palette 0; constrained non-empty tiles
	// pin to their forced slot.
	for i := range tiles {
		if empty[i] {
			assign[i] = 0
			continue
		}
		if constraint[i] != -1 {
			assign[i] = constraint[i]
		}
	}

	var palettes [MaxPalettes][]string
	pinned := make([]bool, MaxPalettes)

	// Preload constrained palettes with their tiles' colors, excluding bg,
	// truncated to MaxPaletteColors.
	for i := range tiles {
		if empty[i] || constraint[i] == -1 {
			continue
		}
		slot := constraint[i]
		pinned[slot] = true
		for _, c := range tiles[i].Colors {
			if c == bg {
				continue
			}
			if !contains(palettes[slot], c) && len(palettes[slot]) < MaxPaletteColors {
				palettes[slot] = append(palettes[slot], c)
			}
		}
	}

	// Global color frequency over non-empty tiles, for seeding step 3.
	globalFreq := map[string]int{}
	for i := range tiles {
		if empty[i] {
			continue
		}
		for c, cnt := range tiles[i].Counts {
			globalFreq[c] += cnt
		}
	}

	seedPalettes(tiles, empty, constraint, palettes[:], pinned, paletteSlots, bg, globalFreq, seed)

	// Step 4: 6 refinement iterations.
	for iter := 0; iter < 6; iter++ {
		for i := range tiles {
			if empty[i] || constraint[i] != -1 {
				continue
			}
			assign[i] = bestPaletteForTile(palettes[:paletteSlots], tiles[i].Colors, bg)
		}
		rebuildPalettes(tiles, empty, assign, palettes[:], bg, seed)
	}

	// Step 5: finalize each palette.
	for slot := 0; slot < MaxPalettes; slot++ {
		palettes[slot] = finalizePalette(palettes[slot], bg, seed)
	}

	return ClusterResult{Palettes: palettes, TilePaletteMap: assign, EmptyTiles: empty}
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

// seedPalettes implements spec.md §4.6 step 3: bucket non-empty,
// unconstrained tiles by dominant color, rank buckets by size descending
// (seeded tiebreak), then build a palette from the most representative
// tile of each bucket, in ranked order, into the slots below paletteSlots
// that are not already pinned; buckets left over once those slots run out
// seed nothing.
func seedPalettes(tiles []TileInfo, empty []bool, constraint []int, palettes [][]string, pinned []bool, paletteSlots int, bg string, globalFreq map[string]int, seed uint64) {
	type bucket struct {
		dominant string
		members  []int
	}
	buckets := map[string]*bucket{}
	order := []string{}
	for i := range tiles {
		if empty[i] || constraint[i] != -1 {
			continue
		}
		dom := dominantColor(tiles[i], bg, seed)
		b, ok := buckets[dom]
		if !ok {
			b = &bucket{dominant: dom}
			buckets[dom] = b
			order = append(order, dom)
		}
		b.members = append(b.members, i)
	}

	sort.Slice(order, func(i, j int) bool {
		bi, bj := buckets[order[i]], buckets[order[j]]
		if len(bi.members) != len(bj.members) {
			return len(bi.members) > len(bj.members)
		}
		return seeded.Hash64(seed, bi.dominant) < seeded.Hash64(seed, bj.dominant)
	})

	nextSlot := 0
	advance := func() int {
		for nextSlot < paletteSlots && pinned[nextSlot] {
			nextSlot++
		}
		if nextSlot >= paletteSlots {
			return -1
		}
		s := nextSlot
		nextSlot++
		return s
	}

	for _, dom := range order {
		slot := advance()
		if slot < 0 {
			break
		}
		b := buckets[dom]

		bestIdx, bestScore := -1, -1
		for _, idx := range b.members {
			score := 0
			for _, c := range tiles[idx].Colors {
				score += globalFreq[c]
			}
			if score > bestScore {
				bestScore = score
				bestIdx = idx
			}
		}
		if bestIdx < 0 {
			continue
		}

		type cc struct {
			color string
			count int
		}
		ordered := make([]cc, 0, len(tiles[bestIdx].Counts))
		for c, cnt := range tiles[bestIdx].Counts {
			ordered = append(ordered, cc{c, cnt})
		}
		sort.Slice(ordered, func(i, j int) bool {
			if ordered[i].count != ordered[j].count {
				return ordered[i].count > ordered[j].count
			}
			return seeded.Hash64(seed, ordered[i].color) < seeded.Hash64(seed, ordered[j].color)
		})

		built := make([]string, 0, MaxPaletteColors)
		for _, e := range ordered {
			if e.color == bg {
				continue
			}
			built = append(built, e.color)
			if len(built) >= MaxPaletteColors {
				break
			}
		}
		palettes[slot] = built
		pinned[slot] = true
	}
}

// dominantColor returns the highest-count color excluding bg, ties broken
// by seeded hash ascending.
func dominantColor(t TileInfo, bg string, seed uint64) string {
	best, bestCount := "", -1
	for c, cnt := range t.Counts {
		if c == bg {
			continue
		}
		if cnt > bestCount || (cnt == bestCount && seeded.Hash64(seed, c) < seeded.Hash64(seed, best)) {
			best, bestCount = c, cnt
		}
	}
	if best == "" {
		return bg
	}
	return best
}

// bestPaletteForTile scores the tile's colors against each candidate
// palette and returns the arg-min index; ties resolve to the lowest index.
// An empty palette is scored like any other, with bg as every color's
// nearest entry.
func bestPaletteForTile(palettes [][]string, tileColors []string, bg string) int {
	bestIdx, bestScore := 0, -1
	for idx, pal := range palettes {
		score := paletteCost(pal, tileColors, bg)
		if bestScore < 0 || score < bestScore {
			bestScore = score
			bestIdx = idx
		}
	}
	return bestIdx
}

// paletteCost computes Σ dist²(c, nearest_in_palette(c)) over the tile's
// color set, using bg as the nearest color when the palette is empty, per
// spec.md §4.6's distance rationale.
func paletteCost(palette []string, tileColors []string, bg string) int {
	total := 0
	for _, c := range tileColors {
		nearest := nearestInPalette(c, palette, bg)
		total += colorops.DistSquaredToken(c, nearest)
	}
	return total
}

func nearestInPalette(token string, palette []string, bg string) string {
	if len(palette) == 0 {
		return bg
	}
	best, bestDist := palette[0], colorops.DistSquaredToken(token, palette[0])
	for _, c := range palette[1:] {
		d := colorops.DistSquaredToken(token, c)
		if d < bestDist {
			bestDist = d
			best = c
		}
	}
	return best
}

// rebuildPalettes implements spec.md §4.6 step 4's rebuild: for every
// slot, recompute its color histogram from the non-empty tiles currently
// assigned to it (constrained and unconstrained alike) and keep its
// non-color-0 colors by count descending with seeded tiebreak, up to
// MaxPaletteColors. Color-0 is left out here and reinserted at slot 0 by
// finalizePalette. A slot with no assigned non-empty tiles keeps its
// previous colors.
func rebuildPalettes(tiles []TileInfo, empty []bool, assign []int, palettes [][]string, bg string, seed uint64) {
	freq := make([]map[string]int, MaxPalettes)
	for i := range freq {
		freq[i] = map[string]int{}
	}

	for i := range tiles {
		if empty[i] {
			continue
		}
		slot := assign[i]
		if slot < 0 || slot >= MaxPalettes {
			continue
		}
		for c, cnt := range tiles[i].Counts {
			freq[slot][c] += cnt
		}
	}

	for slot := 0; slot < MaxPalettes; slot++ {
		if len(freq[slot]) == 0 {
			continue
		}
		type cc struct {
			color string
			count int
		}
		ordered := make([]cc, 0, len(freq[slot]))
		for c, cnt := range freq[slot] {
			ordered = append(ordered, cc{c, cnt})
		}
		sort.Slice(ordered, func(i, j int) bool {
			if ordered[i].count != ordered[j].count {
				return ordered[i].count > ordered[j].count
			}
			return seeded.Hash64(seed, ordered[i].color) < seeded.Hash64(seed, ordered[j].color)
		})

		built := make([]string, 0, MaxPaletteColors)
		for _, e := range ordered {
			if e.color == bg {
				continue
			}
			built = append(built, e.color)
			if len(built) >= MaxPaletteColors {
				break
			}
		}
		palettes[slot] = built
	}
}

// finalizePalette implements spec.md §4.6 step 5: strip color-0, sort+dedup,
// truncate to 15, insert color-0 at slot 0, pad to 16 with color-0.
func finalizePalette(palette []string, bg string, seed uint64) []string {
	set := map[string]bool{}
	for _, c := range palette {
		if c != bg {
			set[c] = true
		}
	}
	list := make([]string, 0, len(set))
	for c := range set {
		list = append(list, c)
	}
	sort.Strings(list)
	if len(list) > MaxPaletteColors-1 {
		list = list[:MaxPaletteColors-1]
	}

	out := make([]string, 0, MaxPaletteColors)
	out = append(out, bg)
	out = append(out, list...)
	for len(out) < MaxPaletteColors {
		out = append(out, bg)
	}
	return out
}
