package syllable

import "github.com/laut-go/diachron/pkg/phone"

// Weights are the per-syllable scoring weights used by Syllabify, with
// spec.md §4.C's stated defaults.
type Weights struct {
	HasOnset        float64
	NotOpen         float64 // applies only when the syllable has an onset
	ClosedNoOnset   float64 // applies only when the syllable has no onset
	NoClusters      float64
	SmallCluster    float64 // max cluster length <= 2
	OpenWithCluster float64
	StructuralFail  float64
}

// DefaultWeights are spec.md §4.C's stated defaults.
var DefaultWeights = Weights{
	HasOnset:        0.6,
	NotOpen:         0.1,
	ClosedNoOnset:   0.1,
	NoClusters:      0.7,
	SmallCluster:    0.3,
	OpenWithCluster: 0.2,
	StructuralFail:  -10,
}

// Syllabify splits a flat, un-delimited phoneme list into syllables by
// enumerating every contiguous partition, scoring each with weights,
// and selecting the argmax (spec.md §4.C). Ties are broken
// deterministically: partitions are enumerated in ascending order of a
// gap bitmask (bit i set means "split after phonemes[i]", bit 0 the
// leftmost gap), and the first partition to reach the best score wins.
func Syllabify(phonemes []*phone.Phoneme, weights Weights) *Word {
	n := len(phonemes)
	if n == 0 {
		return NewWord(nil)
	}
	gaps := n - 1
	if gaps > 20 {
		// 2^gaps partitions would be infeasible to enumerate; callers
		// syllabifying words this long should supply explicit
		// delimiters and use FromIPA instead.
		gaps = 20
	}

	bestScore := negInf
	var bestBounds []int

	total := 1 << uint(gaps)
	for mask := 0; mask < total; mask++ {
		bounds := boundsFromMask(mask, n, gaps)
		score := scoreCandidate(phonemes, bounds, weights)
		if score > bestScore {
			bestScore = score
			bestBounds = bounds
		}
	}

	syllables := make([]*Syllable, len(bestBounds)-1)
	for i := 0; i < len(bestBounds)-1; i++ {
		syllables[i] = NewSyllable(phonemes[bestBounds[i]:bestBounds[i+1]])
	}
	return NewWord(syllables)
}

const negInf = -1 << 30

// boundsFromMask turns a gap bitmask into syllable boundary indices,
// e.g. for 4 phonemes and a split after index 1, bounds = [0, 2, 4].
func boundsFromMask(mask, n, gaps int) []int {
	bounds := []int{0}
	for i := 0; i < gaps; i++ {
		if mask&(1<<uint(i)) != 0 {
			bounds = append(bounds, i+1)
		}
	}
	bounds = append(bounds, n)
	return bounds
}

func scoreCandidate(phonemes []*phone.Phoneme, bounds []int, w Weights) float64 {
	total := 0.0
	for i := 0; i < len(bounds)-1; i++ {
		syl := NewSyllable(phonemes[bounds[i]:bounds[i+1]])
		st, err := syl.GetStructure()
		if err != nil {
			return w.StructuralFail
		}
		hasOnset := len(st.Onset) > 0
		open := len(st.Coda) == 0
		var clusters []string
		if len(st.Onset) > 1 {
			clusters = append(clusters, "onset")
		}
		if len(st.Coda) > 1 {
			clusters = append(clusters, "coda")
		}

		if hasOnset {
			total += w.HasOnset
			if !open {
				total += w.NotOpen
			}
		} else if !open {
			total += w.ClosedNoOnset
		}

		if len(clusters) == 0 {
			total += w.NoClusters
		} else {
			max := 0
			if len(st.Onset) > max {
				max = len(st.Onset)
			}
			if len(st.Coda) > max {
				max = len(st.Coda)
			}
			if max <= 2 {
				total += w.SmallCluster
			}
			if open {
				total += w.OpenWithCluster
			}
		}
	}
	return total
}
