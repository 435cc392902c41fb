package soundlaw

import (
	"github.com/laut-go/diachron/pkg/feature"
	"github.com/laut-go/diachron/pkg/phone"
	"github.com/laut-go/diachron/pkg/syllable"
)

// Target tags whether a Rule rewrites a run of Phonemes or a whole
// Syllable, per spec.md §4.E's tagged-sum rule model.
type Target int

const (
	TargetPhoneme Target = iota
	TargetSyllable
)

// Cursor is the transducer's positional view into a Word while a Rule
// is being evaluated: the flat phoneme sequence, the syllable sequence,
// and the position currently under test. pkg/transducer owns advancing
// it; Domain/Condition/Codomain closures only ever read it.
type Cursor struct {
	Model *feature.Model

	flat      []*phone.Phoneme
	syllables []*syllable.Syllable
	sylOfFlat []int // flat index -> owning syllable index
	sylStart  []int // syllable index -> first flat index

	// PhonemeIndex/SyllableIndex are the position a rule's Domain is
	// being tested against. For a Width>1 phoneme rule, PhonemeIndex is
	// the first phoneme of the candidate window.
	PhonemeIndex  int
	SyllableIndex int
}

// NewCursor builds a Cursor over w. The Cursor is rebuilt by the
// transducer after every rewrite, so index tables always reflect the
// current state of the Word.
func NewCursor(m *feature.Model, w *syllable.Word) *Cursor {
	c := &Cursor{Model: m, syllables: w.Syllables}
	for si, syl := range w.Syllables {
		c.sylStart = append(c.sylStart, len(c.flat))
		for _, ph := range syl.Phonemes {
			c.flat = append(c.flat, ph)
			c.sylOfFlat = append(c.sylOfFlat, si)
		}
	}
	return c
}

// Len returns the number of phonemes in the flat sequence.
func (c *Cursor) Len() int { return len(c.flat) }

// PhonemeAtIndex returns the phoneme at an absolute flat index, or nil
// if out of range.
func (c *Cursor) PhonemeAtIndex(i int) *phone.Phoneme {
	if i < 0 || i >= len(c.flat) {
		return nil
	}
	return c.flat[i]
}

// PhonemeAt returns the phoneme offset positions from PhonemeIndex.
func (c *Cursor) PhonemeAt(offset int) *phone.Phoneme {
	return c.PhonemeAtIndex(c.PhonemeIndex + offset)
}

// Window returns the width phonemes starting at PhonemeIndex, or nil if
// that range runs past the end of the word.
func (c *Cursor) Window(width int) []*phone.Phoneme {
	if c.PhonemeIndex < 0 || c.PhonemeIndex+width > len(c.flat) {
		return nil
	}
	return c.flat[c.PhonemeIndex : c.PhonemeIndex+width]
}

// SyllableAtIndex returns the syllable at an absolute index, or nil.
func (c *Cursor) SyllableAtIndex(i int) *syllable.Syllable {
	if i < 0 || i >= len(c.syllables) {
		return nil
	}
	return c.syllables[i]
}

// SyllableAt returns the syllable offset positions from SyllableIndex.
func (c *Cursor) SyllableAt(offset int) *syllable.Syllable {
	return c.SyllableAtIndex(c.SyllableIndex + offset)
}

// SyllableOfPhoneme returns the index of the syllable that owns the
// flat phoneme at index i, or -1 if i is out of range.
func (c *Cursor) SyllableOfPhoneme(i int) int {
	if i < 0 || i >= len(c.sylOfFlat) {
		return -1
	}
	return c.sylOfFlat[i]
}

// SyllableStart returns the flat index of the first phoneme of
// syllable si, or -1 if si is out of range.
func (c *Cursor) SyllableStart(si int) int {
	if si < 0 || si >= len(c.sylStart) {
		return -1
	}
	return c.sylStart[si]
}

// Clause is one branch of a compiled arrow chain: Cond is nil for the
// unconditional default branch, which must be the last element of a
// Rule's Clauses.
type Clause struct {
	Cond             func(c *Cursor) bool
	PhonemeCodomain  func(c *Cursor) ([]*phone.Phoneme, error)
	SyllableCodomain func(c *Cursor) (*syllable.Syllable, error)
}

// Rule is a compiled statement: a domain predicate matched against a
// window of Width phonemes (Target == TargetPhoneme) or a single
// syllable (Target == TargetSyllable), and an ordered list of clauses
// evaluated first-match-wins.
//
// WholeWord is set by stdlib.Resyllabify and by the rule returned from
// stdlib.Preset's Rule method: it rewrites the whole
// Word in one step instead of being scanned position by position, and
// when set the transducer ignores Domain/Width/Clauses entirely.
type Rule struct {
	Pos       Pos
	Target    Target
	Width     int // phoneme-rule match width; ignored for syllable rules
	Domain    func(c *Cursor) bool
	Clauses   []Clause
	WholeWord func(m *feature.Model, w *syllable.Word) (*syllable.Word, error)
}

// Group is one compiled law: its rules in declared order, applied
// sequentially against the evolving Word (spec.md §4.E).
type Group struct {
	Name  string
	Rules []*Rule
}

// Program is a fully compiled document: its groups in declared order.
// A "GROUP ... END" source block expands to one runtime Group per
// contained law, so every law keeps its own name for diagnostics while
// the top level stays a flat, order-preserving list.
type Program struct {
	LibraryName    string
	LibraryVersion string
	Groups         []*Group
}

// Value is the resolved, model-independent-of-AST argument a library
// Func receives for each call-statement argument, after the compiler
// has tokenized phoneme literals against the active feature model and
// flattened feature brackets into an override map.
type Value struct {
	Phonemes     []string // one or more IPA symbols, already tokenized
	PhonemeLists [][]string
	Features     map[string]feature.Value
	FeatureOrder []string // declaration order, for deterministic iteration
	Number       float64
	HasNumber    bool
	Text         string
}

// Call is what a library Func is invoked with for one CALL statement.
type Call struct {
	Pos   Pos
	Model *feature.Model
	Name  string
	Args  []Value
}

// Func compiles one call statement into a Rule, closing over the
// resolved Call.Args (spec.md §9: "emit Rule objects whose fields hold
// the captured values explicitly").
type Func func(Call) (*Rule, error)

// Library resolves CALL statement names to compiled Funcs. pkg/stdlib
// provides the standard registry; an unrecognized name is not a
// CompileError -- the compiler instead emits an UnknownFunctionWarning
// and an identity rule, per spec.md §4.D.
type Library interface {
	Lookup(name string) (Func, bool)
}

// MapLibrary is the simplest Library: a plain name -> Func table.
type MapLibrary map[string]Func

func (l MapLibrary) Lookup(name string) (Func, bool) {
	fn, ok := l[name]
	return fn, ok
}

// IdentityRule returns a Rule that matches any single phoneme and
// leaves it unchanged, used as the Compile fallback for unrecognized
// call-statement function names.
func IdentityRule(pos Pos) *Rule {
	return &Rule{
		Pos:    pos,
		Target: TargetPhoneme,
		Width:  1,
		Domain: func(c *Cursor) bool { return c.PhonemeAtIndex(c.PhonemeIndex) != nil },
		Clauses: []Clause{{
			PhonemeCodomain: func(c *Cursor) ([]*phone.Phoneme, error) {
				return []*phone.Phoneme{c.PhonemeAtIndex(c.PhonemeIndex).Copy()}, nil
			},
		}},
	}
}
