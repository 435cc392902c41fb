// Package stdlib is the standard soundlaw.Library: Go closures
// grounded phoneme-for-phoneme on pylaut/pylautlang/lib.py's six
// change-function constructors (metathesis, lengthen,
// intervocal_voicing, merge, epenthesis, resyllabify), each compiling
// a CALL statement's resolved arguments into a *soundlaw.Rule.
package stdlib

import (
	"fmt"

	"github.com/laut-go/diachron/pkg/feature"
	"github.com/laut-go/diachron/pkg/phone"
	"github.com/laut-go/diachron/pkg/soundlaw"
	"github.com/laut-go/diachron/pkg/syllable"
)

// Library is the registry a program's call statements resolve against
// when it is passed to soundlaw.Compile.
var Library = soundlaw.MapLibrary{
	"Metathesis":        metathesis,
	"Lengthen":          lengthen,
	"IntervocalVoicing": intervocalVoicing,
	"Merge":             merge,
	"Epenthesis":        epenthesis,
	"Resyllabify":       resyllabify,
}

// predicate builds the same kind of dispatch pylaut's make_predicate
// does: a feature-bracket argument matches by feature, a phoneme
// argument matches by symbol.
func predicate(v soundlaw.Value) (func(*phone.Phoneme) bool, error) {
	switch {
	case v.Features != nil:
		overrides := v.Features
		return func(ph *phone.Phoneme) bool {
			for name, val := range overrides {
				if !ph.Phone.FeatureIs(name, val) {
					return false
				}
			}
			return true
		}, nil
	case len(v.Phonemes) == 1:
		sym := v.Phonemes[0]
		return func(ph *phone.Phoneme) bool { return ph.Phone.IsSymbol(sym) }, nil
	default:
		return nil, fmt.Errorf("expected a single phoneme or a feature bracket argument")
	}
}

func singlePhonemeTemplate(m *feature.Model, v soundlaw.Value) (*phone.Phoneme, error) {
	if len(v.Phonemes) != 1 {
		return nil, fmt.Errorf("expected a single phoneme argument")
	}
	ph, err := phone.FromIPA(m, v.Phonemes[0])
	if err != nil {
		return nil, err
	}
	return phone.NewPhoneme(ph), nil
}

// metathesis swaps two adjacent phonemes matching left/right
// predicates (lib.py's metathesis, This.forall(Phone)(pl) + This.at(1,
// pr) recast as a width-2 domain match).
func metathesis(call soundlaw.Call) (*soundlaw.Rule, error) {
	if len(call.Args) != 2 {
		return nil, fmt.Errorf("Metathesis(left, right) takes two arguments")
	}
	pl, err := predicate(call.Args[0])
	if err != nil {
		return nil, err
	}
	pr, err := predicate(call.Args[1])
	if err != nil {
		return nil, err
	}

	domain := func(c *soundlaw.Cursor) bool {
		win := c.Window(2)
		return win != nil && pl(win[0]) && pr(win[1])
	}
	codomain := func(c *soundlaw.Cursor) ([]*phone.Phoneme, error) {
		win := c.Window(2)
		return []*phone.Phoneme{win[1].Copy(), win[0].Copy()}, nil
	}
	return &soundlaw.Rule{
		Pos: call.Pos, Target: soundlaw.TargetPhoneme, Width: 2, Domain: domain,
		Clauses: []soundlaw.Clause{{PhonemeCodomain: codomain}},
	}, nil
}

// lengthen sets "long" on every phoneme matching the given predicate
// (lib.py's lengthen: change_feature(phoneme, "long", True)).
func lengthen(call soundlaw.Call) (*soundlaw.Rule, error) {
	if len(call.Args) != 1 {
		return nil, fmt.Errorf("Lengthen(phone) takes one argument")
	}
	if call.Model.FeatureIndex("long") < 0 {
		return nil, fmt.Errorf("feature model has no \"long\" feature")
	}
	match, err := predicate(call.Args[0])
	if err != nil {
		return nil, err
	}
	domain := func(c *soundlaw.Cursor) bool {
		ph := c.PhonemeAtIndex(c.PhonemeIndex)
		return ph != nil && match(ph)
	}
	codomain := func(c *soundlaw.Cursor) ([]*phone.Phoneme, error) {
		ph := c.PhonemeAtIndex(c.PhonemeIndex).Copy()
		if err := ph.Phone.SetFeature("long", feature.PLUS); err != nil {
			return nil, err
		}
		return []*phone.Phoneme{ph}, nil
	}
	return &soundlaw.Rule{
		Pos: call.Pos, Target: soundlaw.TargetPhoneme, Width: 1, Domain: domain,
		Clauses: []soundlaw.Clause{{PhonemeCodomain: codomain}},
	}, nil
}

// intervocalVoicing voices a phoneme matching the given predicate when
// flanked by vowels on both sides (lib.py's intervocal_voicing).
func intervocalVoicing(call soundlaw.Call) (*soundlaw.Rule, error) {
	if len(call.Args) != 1 {
		return nil, fmt.Errorf("IntervocalVoicing(phone) takes one argument")
	}
	if call.Model.FeatureIndex("voice") < 0 {
		return nil, fmt.Errorf("feature model has no \"voice\" feature")
	}
	match, err := predicate(call.Args[0])
	if err != nil {
		return nil, err
	}
	domain := func(c *soundlaw.Cursor) bool {
		ph := c.PhonemeAtIndex(c.PhonemeIndex)
		if ph == nil || !match(ph) {
			return false
		}
		prev := c.PhonemeAt(-1)
		next := c.PhonemeAt(1)
		return prev != nil && next != nil && prev.Phone.IsVowel() && next.Phone.IsVowel()
	}
	codomain := func(c *soundlaw.Cursor) ([]*phone.Phoneme, error) {
		ph := c.PhonemeAtIndex(c.PhonemeIndex).Copy()
		if err := ph.Phone.SetFeature("voice", feature.PLUS); err != nil {
			return nil, err
		}
		return []*phone.Phoneme{ph}, nil
	}
	return &soundlaw.Rule{
		Pos: call.Pos, Target: soundlaw.TargetPhoneme, Width: 1, Domain: domain,
		Clauses: []soundlaw.Clause{{PhonemeCodomain: codomain}},
	}, nil
}

// merge rewrites every phoneme matching any of a set of alternatives
// to a single target phoneme (lib.py's merge).
func merge(call soundlaw.Call) (*soundlaw.Rule, error) {
	if len(call.Args) != 2 {
		return nil, fmt.Errorf("Merge(phonemes, target) takes two arguments")
	}
	alts := call.Args[0]
	if len(alts.PhonemeLists) == 0 {
		return nil, fmt.Errorf("Merge's first argument must be a {...} list of phonemes")
	}
	syms := make(map[string]bool, len(alts.PhonemeLists))
	for _, lst := range alts.PhonemeLists {
		if len(lst) != 1 {
			return nil, fmt.Errorf("Merge's alternatives must each be a single phoneme")
		}
		syms[lst[0]] = true
	}
	target, err := singlePhonemeTemplate(call.Model, call.Args[1])
	if err != nil {
		return nil, err
	}

	domain := func(c *soundlaw.Cursor) bool {
		ph := c.PhonemeAtIndex(c.PhonemeIndex)
		return ph != nil && syms[ph.Phone.Symbol()]
	}
	codomain := func(*soundlaw.Cursor) ([]*phone.Phoneme, error) {
		return []*phone.Phoneme{target.Copy()}, nil
	}
	return &soundlaw.Rule{
		Pos: call.Pos, Target: soundlaw.TargetPhoneme, Width: 1, Domain: domain,
		Clauses: []soundlaw.Clause{{PhonemeCodomain: codomain}},
	}, nil
}

// epenthesis inserts a phoneme immediately after every phoneme
// matching the given predicate (lib.py's epenthesis).
func epenthesis(call soundlaw.Call) (*soundlaw.Rule, error) {
	if len(call.Args) != 2 {
		return nil, fmt.Errorf("Epenthesis(this, phoneme) takes two arguments")
	}
	match, err := predicate(call.Args[0])
	if err != nil {
		return nil, err
	}
	inserted, err := singlePhonemeTemplate(call.Model, call.Args[1])
	if err != nil {
		return nil, err
	}

	domain := func(c *soundlaw.Cursor) bool {
		ph := c.PhonemeAtIndex(c.PhonemeIndex)
		return ph != nil && match(ph)
	}
	codomain := func(c *soundlaw.Cursor) ([]*phone.Phoneme, error) {
		ph := c.PhonemeAtIndex(c.PhonemeIndex)
		return []*phone.Phoneme{ph.Copy(), inserted.Copy()}, nil
	}
	return &soundlaw.Rule{
		Pos: call.Pos, Target: soundlaw.TargetPhoneme, Width: 1, Domain: domain,
		Clauses: []soundlaw.Clause{{PhonemeCodomain: codomain}},
	}, nil
}

// resyllabify discards w's syllable boundaries and recomputes them
// with Syllabify's default weights (lib.py's resyllabify: return
// Resyllabify(), a sentinel the original engine dispatches specially
// rather than applying per-phoneme).
func resyllabify(call soundlaw.Call) (*soundlaw.Rule, error) {
	return &soundlaw.Rule{
		Pos:    call.Pos,
		Target: soundlaw.TargetSyllable,
		WholeWord: func(_ *feature.Model, w *syllable.Word) (*syllable.Word, error) {
			return syllable.Syllabify(w.Phonemes(), syllable.DefaultWeights), nil
		},
	}, nil
}
