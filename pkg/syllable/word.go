package syllable

import (
	"fmt"
	"strings"

	"github.com/laut-go/diachron/pkg/feature"
	"github.com/laut-go/diachron/pkg/phone"
)

// Word is an ordered sequence of Syllables, with position labels
// (initial/medial/final, or monosyllable) assigned at construction.
type Word struct {
	Syllables []*Syllable
}

// NewWord wraps syllables and assigns their position labels, matching
// word.py's Word.__init__.
func NewWord(syllables []*Syllable) *Word {
	w := &Word{Syllables: syllables}
	w.assignPositions()
	return w
}

func (w *Word) assignPositions() {
	n := len(w.Syllables)
	if n == 0 {
		return
	}
	if n == 1 {
		w.Syllables[0].Position = Monosyllable
		return
	}
	w.Syllables[0].Position = Initial
	for _, s := range w.Syllables[1 : n-1] {
		s.Position = Medial
	}
	w.Syllables[n-1].Position = Final
}

// Phonemes flattens every syllable's phonemes into one slice, in word
// order.
func (w *Word) Phonemes() []*phone.Phoneme {
	var out []*phone.Phoneme
	for _, s := range w.Syllables {
		out = append(out, s.Phonemes...)
	}
	return out
}

// HasStress reports whether any syllable is stressed.
func (w *Word) HasStress() bool {
	for _, s := range w.Syllables {
		if s.Stressed {
			return true
		}
	}
	return false
}

// StressedPosition returns the index of the stressed syllable, or -1.
func (w *Word) StressedPosition() int {
	for i, s := range w.Syllables {
		if s.Stressed {
			return i
		}
	}
	return -1
}

// Copy returns an independent Word.
func (w *Word) Copy() *Word {
	syls := make([]*Syllable, len(w.Syllables))
	for i, s := range w.Syllables {
		syls[i] = s.Copy()
	}
	return NewWord(syls)
}

// String renders the Word the way word.py's Word.__repr__ does.
func (w *Word) String() string {
	var b strings.Builder
	b.WriteByte('/')
	for _, s := range w.Syllables {
		rep := s.String()
		switch s.Position {
		case Initial:
			b.WriteString(rep[:len(rep)-1])
			b.WriteByte('.')
		case Medial:
			b.WriteString(rep[1 : len(rep)-1])
			b.WriteByte('.')
		case Final:
			b.WriteString(rep[1:])
		default:
			b.WriteString(rep)
		}
	}
	b.WriteByte('/')
	return b.String()
}

// UnrecognizedSegmentError is raised by the IPA tokenizer when a rune
// sequence matches neither a base-glyph nor a diacritic of the model.
type UnrecognizedSegmentError struct {
	Remainder string
}

func (e *UnrecognizedSegmentError) Error() string {
	return fmt.Sprintf("syllable: unrecognized IPA segment at %q", e.Remainder)
}

// FromIPA builds a Word from an IPA string delimited per spec.md §4.C:
// a period delimits syllables, and an apostrophe prefixing a syllable
// marks primary stress. The apostrophe is first normalized to ".'" so
// a stress mark also acts as a syllable break, matching WordFactory's
// replace("'", ".'") step in pylaut's make_word.
func FromIPA(m *feature.Model, raw string) (*Word, error) {
	normalized := strings.ReplaceAll(raw, "'", ".'")
	var syllables []*Syllable
	for _, body := range strings.Split(normalized, ".") {
		if body == "" {
			continue
		}
		syl, err := makeSyllable(m, body)
		if err != nil {
			return nil, err
		}
		syllables = append(syllables, syl)
	}
	if len(syllables) == 0 {
		return nil, &UnrecognizedSegmentError{Remainder: raw}
	}
	return NewWord(syllables), nil
}

func makeSyllable(m *feature.Model, body string) (*Syllable, error) {
	stressed := false
	if strings.HasPrefix(body, "'") {
		stressed = true
		body = body[len("'"):]
	}
	tokens, err := tokenize(m, body)
	if err != nil {
		return nil, err
	}
	phonemes := make([]*phone.Phoneme, 0, len(tokens))
	for _, tok := range tokens {
		ph, err := phone.FromIPA(m, tok)
		if err != nil {
			return nil, err
		}
		phonemes = append(phonemes, phone.NewPhoneme(ph))
	}
	syl := NewSyllable(phonemes)
	syl.Stressed = stressed
	return syl, nil
}

// tokenize splits body into IPA phoneme tokens by greedy base-glyph
// matching (longest known base-glyph first) followed by greedy
// trailing-diacritic matching, per spec.md §4.C.
func tokenize(m *feature.Model, body string) ([]string, error) {
	runes := []rune(body)
	maxGlyph := maxRuneLen(m.Symbols())
	maxDC := maxRuneLen(m.Diacritics())

	var tokens []string
	i := 0
	for i < len(runes) {
		glyphLen := 0
		for length := maxGlyph; length >= 1; length-- {
			if i+length > len(runes) {
				continue
			}
			if _, ok := m.Vector(string(runes[i : i+length])); ok {
				glyphLen = length
				break
			}
		}
		if glyphLen == 0 {
			return nil, &UnrecognizedSegmentError{Remainder: string(runes[i:])}
		}
		j := i + glyphLen
		for j < len(runes) {
			dcLen := 0
			for length := maxDC; length >= 1; length-- {
				if j+length > len(runes) {
					continue
				}
				if m.IsDiacritic(string(runes[j : j+length])) {
					dcLen = length
					break
				}
			}
			if dcLen == 0 {
				break
			}
			j += dcLen
		}
		tokens = append(tokens, string(runes[i:j]))
		i = j
	}
	return tokens, nil
}

func maxRuneLen(symbols []string) int {
	max := 1
	for _, s := range symbols {
		if n := len([]rune(s)); n > max {
			max = n
		}
	}
	return max
}
