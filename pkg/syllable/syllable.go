// Package syllable implements Word and Syllable (spec.md §4.C): IPA
// construction, structure analysis (onset/nucleus/coda) and automatic
// syllabification, ported from pylaut/language/phonology/word.py.
package syllable

import (
	"fmt"
	"strings"

	"github.com/laut-go/diachron/pkg/phone"
)

// Position is a syllable's position within its Word.
type Position int

const (
	Initial Position = iota
	Medial
	Final
	Monosyllable
)

func (p Position) String() string {
	switch p {
	case Initial:
		return "initial"
	case Medial:
		return "medial"
	case Final:
		return "final"
	default:
		return "monosyllable"
	}
}

// MisshapenSyllableError is raised by GetStructure when a
// syllable has zero or more than one nucleus, or a vowel is found after
// the coda has started.
type MisshapenSyllableError struct {
	Reason string
}

func (e *MisshapenSyllableError) Error() string {
	return fmt.Sprintf("syllable: misshapen syllable: %s", e.Reason)
}

// Structure is the cached result of GetStructure.
type Structure struct {
	Onset, Nucleus, Coda []*phone.Phoneme
}

// Syllable is a sequence of Phonemes with a stress flag and a position
// within its Word, plus a lazily-computed, cached Structure.
type Syllable struct {
	Phonemes []*phone.Phoneme
	Stressed bool
	Position Position

	structure *Structure
}

// NewSyllable wraps phonemes, discarding any nil entries.
func NewSyllable(phonemes []*phone.Phoneme) *Syllable {
	out := make([]*phone.Phoneme, 0, len(phonemes))
	for _, p := range phonemes {
		if p != nil {
			out = append(out, p)
		}
	}
	return &Syllable{Phonemes: out}
}

// Copy returns an independent Syllable (phonemes deep-copied, structure
// cache dropped).
func (s *Syllable) Copy() *Syllable {
	out := &Syllable{Stressed: s.Stressed, Position: s.Position}
	out.Phonemes = make([]*phone.Phoneme, len(s.Phonemes))
	for i, p := range s.Phonemes {
		out.Phonemes[i] = p.Copy()
	}
	return out
}

// ContainsVowel reports whether any phoneme of s is a vowel.
func (s *Syllable) ContainsVowel() bool {
	for _, p := range s.Phonemes {
		if p.Phone.IsVowel() {
			return true
		}
	}
	return false
}

// findNuclei implements find_nuclei: reduce sonorities >10 to 10 and
// take the runs at the resulting maximum level, or the runs at the
// max level >=5 if no phone reaches 10, or none at all.
func (s *Syllable) findNuclei() []*phone.Phoneme {
	if len(s.Phonemes) == 0 {
		return nil
	}
	sonorities := make([]int, len(s.Phonemes))
	maxRaw := -1 << 31
	for i, p := range s.Phonemes {
		son := p.Phone.GetSonority()
		sonorities[i] = son
		if son > maxRaw {
			maxRaw = son
		}
	}

	var level int
	switch {
	case maxRaw >= 10:
		level = 10
		for i, son := range sonorities {
			if son > 10 {
				sonorities[i] = 10
			}
		}
	case maxRaw >= 5:
		level = maxRaw
	default:
		return nil
	}

	// Collapse adjacent phonemes at the same sonority level into a
	// single representative (the first of each run), matching
	// find_nuclei's run-collapsing pass.
	var nuclei []*phone.Phoneme
	for i, son := range sonorities {
		if son != level {
			continue
		}
		if i > 0 && sonorities[i-1] == level {
			continue
		}
		nuclei = append(nuclei, s.Phonemes[i])
	}
	return nuclei
}

// CountNuclei returns the number of candidate nuclei found by
// findNuclei.
func (s *Syllable) CountNuclei() int {
	return len(s.findNuclei())
}

// GetStructure returns the cached onset/nucleus/coda split, computing
// it on first call. Exactly one nucleus is required.
func (s *Syllable) GetStructure() (*Structure, error) {
	if s.structure != nil {
		return s.structure, nil
	}

	n := s.CountNuclei()
	if n < 1 {
		return nil, &MisshapenSyllableError{Reason: "no nucleus"}
	}
	if n > 1 {
		return nil, &MisshapenSyllableError{Reason: fmt.Sprintf("%d nuclei", n)}
	}

	var onset, nucleus, coda []*phone.Phoneme

	if s.ContainsVowel() {
		inNucleus, inCoda := false, false
		for _, p := range s.Phonemes {
			switch {
			case !inNucleus && !inCoda && p.Phone.IsConsonant():
				onset = append(onset, p)
			case !inNucleus && !inCoda && p.Phone.IsVowel():
				inNucleus = true
				nucleus = append(nucleus, p)
			case inNucleus && !inCoda && p.Phone.IsVowel():
				nucleus = append(nucleus, p)
			case inNucleus && !inCoda && p.Phone.IsConsonant():
				inCoda = true
				coda = append(coda, p)
			case inNucleus && inCoda && p.Phone.IsConsonant():
				coda = append(coda, p)
			case inNucleus && inCoda && p.Phone.IsVowel():
				return nil, &MisshapenSyllableError{Reason: "vowel found in coda"}
			}
		}
	} else {
		nc := s.findNuclei()[0]
		idx := -1
		for i, p := range s.Phonemes {
			if p == nc {
				idx = i
				break
			}
		}
		nucleus = []*phone.Phoneme{nc}
		onset = append(onset, s.Phonemes[:idx]...)
		if idx+1 < len(s.Phonemes) {
			coda = append(coda, s.Phonemes[idx+1:]...)
		}
	}

	s.structure = &Structure{Onset: onset, Nucleus: nucleus, Coda: coda}
	return s.structure, nil
}

// HasOnset, IsOpen, IsClosed and HasClusters all assume GetStructure
// has already succeeded; callers needing error propagation should call
// GetStructure directly first.

func (s *Syllable) HasOnset() bool {
	st, err := s.GetStructure()
	return err == nil && len(st.Onset) > 0
}

func (s *Syllable) IsOpen() bool {
	st, err := s.GetStructure()
	return err == nil && len(st.Coda) == 0
}

func (s *Syllable) IsClosed() bool { return !s.IsOpen() }

// HasClusters reports which of onset/coda are clusters (length > 1).
func (s *Syllable) HasClusters() []string {
	st, err := s.GetStructure()
	if err != nil {
		return nil
	}
	var out []string
	if len(st.Onset) > 1 {
		out = append(out, "onset")
	}
	if len(st.Coda) > 1 {
		out = append(out, "coda")
	}
	return out
}

// MaxClusterLength returns the longest onset/coda cluster length, or 0
// if there are no clusters.
func (s *Syllable) MaxClusterLength() int {
	st, err := s.GetStructure()
	if err != nil {
		return 0
	}
	max := 0
	if len(st.Onset) > 1 && len(st.Onset) > max {
		max = len(st.Onset)
	}
	if len(st.Coda) > 1 && len(st.Coda) > max {
		max = len(st.Coda)
	}
	return max
}

// String renders the syllable the way word.py's Syllable.__repr__ does:
// a leading "-" unless initial/monosyllable, a leading "'" if stressed,
// the phoneme symbols, and a trailing "-" unless final/monosyllable.
func (s *Syllable) String() string {
	var b strings.Builder
	if s.Position != Initial && s.Position != Monosyllable {
		b.WriteByte('-')
	}
	if s.Stressed {
		b.WriteByte('\'')
	}
	for _, p := range s.Phonemes {
		b.WriteString(p.Phone.Symbol())
	}
	if s.Position != Final && s.Position != Monosyllable {
		b.WriteByte('-')
	}
	return b.String()
}
