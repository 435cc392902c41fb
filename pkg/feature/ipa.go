package feature

import (
	"errors"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ErrEmptyInput is returned by FeaturesFromIPA for an empty string.
var ErrEmptyInput = errors.New("feature: empty IPA input")

// FeaturesFromIPA takes an IPA string whose first code point must be a
// base-glyph, optionally followed by diacritic code points, and returns
// the resulting feature vector (spec §4.A).
//
// The input is first decomposed (NFD) so that a precomposed rune
// carrying a combining mark and its already-decomposed equivalent parse
// identically; this mirrors the normalize-then-inspect pattern used
// elsewhere in the retrieval pack for diacritic-bearing runes.
func (m *Model) FeaturesFromIPA(ipa string) ([]Value, error) {
	if ipa == "" {
		return nil, ErrEmptyInput
	}
	decomposed := norm.NFD.String(ipa)
	runes := []rune(decomposed)

	base := string(runes[0])
	baseVec, ok := m.vectors[base]
	if !ok {
		return nil, &UnknownSymbolError{Symbol: runes[0], Source: ipa}
	}

	vec := make([]Value, len(baseVec))
	copy(vec, baseVec)

	for _, r := range runes[1:] {
		dc := string(r)
		overrides, ok := m.diacritics[dc]
		if !ok {
			return nil, &UnknownSymbolError{Symbol: r, Source: ipa}
		}
		for fname, v := range overrides {
			if v == NULL {
				continue
			}
			vec[m.index[fname]] = v
		}
	}
	return vec, nil
}

// IPAFromFeatures is the inverse of FeaturesFromIPA (spec §4.A):
//
//  1. an exact vector match wins outright;
//  2. otherwise, Hamming-nearest base-glyphs (distance <= IgnoreDistance)
//     are tried, nearest first, ties broken by base-glyph-table
//     insertion order;
//  3. for each candidate, the feature differences are partitioned and
//     matched against the diacritic table; the first candidate whose
//     diff set can be fully expressed wins;
//  4. the result is the base-glyph followed by its diacritics in
//     diacritic-table insertion order.
func (m *Model) IPAFromFeatures(vec []Value) (string, error) {
	if len(vec) != len(m.features) {
		return "", &LoadError{Kind: VectorLengthMismatch, Msg: "feature vector length does not match model"}
	}

	key := vectorKey(vec)
	var exact []string
	for _, g := range m.glyphs {
		if vectorKey(m.vectors[g]) == key {
			exact = append(exact, g)
		}
	}
	if len(exact) == 1 {
		return exact[0], nil
	}
	if len(exact) > 1 {
		return "", &AmbiguousFeatureSetError{Glyphs: exact}
	}

	ignore := m.IgnoreDistance
	if ignore == 0 {
		ignore = IgnoreDistance
	}

	type candidate struct {
		glyph string
		order int
		dist  int
		diffs []diffItem
	}

	var candidates []candidate
	for i, g := range m.glyphs {
		diffs, dist := m.hamming(vec, m.vectors[g])
		if dist == 0 || dist > ignore {
			continue
		}
		candidates = append(candidates, candidate{glyph: g, order: i, dist: dist, diffs: diffs})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].dist != candidates[j].dist {
			return candidates[i].dist < candidates[j].dist
		}
		return candidates[i].order < candidates[j].order
	})

	reverse := m.reverseDiacritics()

	for _, c := range candidates {
		if dcs, ok := expressDiffs(c.diffs, reverse); ok {
			return c.glyph + m.orderDiacritics(dcs), nil
		}
	}
	return "", &NoRepresentationError{}
}

type diffItem struct {
	feature string
	value   Value
}

// hamming returns the set of feature differences between a target
// vector and a base-glyph's vector, and its size (the Hamming distance).
func (m *Model) hamming(target, base []Value) ([]diffItem, int) {
	var diffs []diffItem
	for i, v := range target {
		if v != base[i] {
			diffs = append(diffs, diffItem{feature: m.features[i], value: v})
		}
	}
	return diffs, len(diffs)
}

// reverseDiacritics maps a canonical diff-set key to the diacritic
// string that produces it, first occurrence (diacritic-table insertion
// order) winning on a collision.
func (m *Model) reverseDiacritics() map[string]string {
	rev := make(map[string]string, len(m.diacritics))
	for _, dc := range m.diacriticOrder {
		k := diffSetKey(m.diacritics[dc])
		if _, exists := rev[k]; !exists {
			rev[k] = dc
		}
	}
	return rev
}

func diffSetKey(overrides map[string]Value) string {
	items := make([]diffItem, 0, len(overrides))
	for f, v := range overrides {
		items = append(items, diffItem{feature: f, value: v})
	}
	return diffItemsKey(items)
}

func diffItemsKey(items []diffItem) string {
	sorted := append([]diffItem(nil), items...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].feature < sorted[j].feature })
	var b strings.Builder
	for _, it := range sorted {
		b.WriteString(it.value.String())
		b.WriteString(it.feature)
		b.WriteByte(';')
	}
	return b.String()
}

// expressDiffs tries to partition diffs into blocks that each exactly
// match a diacritic's override set, enumerating set partitions of the
// diff list (bounded by IgnoreDistance, so this never explores more
// than 2^IgnoreDistance-ish blocks). Returns the chosen diacritics in
// the order their blocks were matched (the caller re-orders them by
// diacritic-table insertion order before concatenation).
func expressDiffs(diffs []diffItem, reverse map[string]string) ([]string, bool) {
	if len(diffs) == 0 {
		return nil, true
	}
	var best []string
	var search func(remaining []diffItem, chosen []string) bool
	search = func(remaining []diffItem, chosen []string) bool {
		if len(remaining) == 0 {
			best = append([]string(nil), chosen...)
			return true
		}
		// Try every non-empty subset that contains remaining[0] as the
		// next block (canonical partition enumeration: always grow the
		// block containing the first still-unassigned item).
		first := remaining[0]
		rest := remaining[1:]
		n := len(rest)
		for mask := 0; mask < (1 << n); mask++ {
			block := []diffItem{first}
			var leftover []diffItem
			for i := 0; i < n; i++ {
				if mask&(1<<i) != 0 {
					block = append(block, rest[i])
				} else {
					leftover = append(leftover, rest[i])
				}
			}
			dc, ok := reverse[diffItemsKey(block)]
			if !ok {
				continue
			}
			if search(leftover, append(chosen, dc)) {
				return true
			}
		}
		return false
	}
	ok := search(diffs, nil)
	return best, ok
}

// orderDiacritics renders a set of matched diacritics in diacritic-table
// insertion order, per spec §4.A step 4.
func (m *Model) orderDiacritics(chosen []string) string {
	set := make(map[string]bool, len(chosen))
	for _, d := range chosen {
		set[d] = true
	}
	var b strings.Builder
	for _, d := range m.diacriticOrder {
		if set[d] {
			b.WriteString(d)
		}
	}
	return b.String()
}
