// Package transducer drives a compiled soundlaw.Program against a
// syllable.Word: it owns the soundlaw.Cursor, the left-to-right scan
// over phonemes or syllables, splicing in each matched rule's
// codomain, and the failure-containment policy of spec.md §7(c) --
// a Domain/Condition/Codomain panic or error is logged and treated as
// a miss at that position, never as a reason to abort the Word.
package transducer

import (
	"fmt"

	"github.com/laut-go/diachron/pkg/feature"
	"github.com/laut-go/diachron/pkg/phone"
	"github.com/laut-go/diachron/pkg/soundlaw"
	"github.com/laut-go/diachron/pkg/syllable"
)

// Logger receives diagnostics for recovered runtime failures; compile
// warnings are returned by soundlaw.Compile and not logged here. The
// zero value of noopLogger (the package default when a caller passes nil) discards everything.
type Logger interface {
	Printf(format string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Printf(string, ...any) {}

func logOrNoop(lg Logger) Logger {
	if lg == nil {
		return noopLogger{}
	}
	return lg
}

// ApplyProgram runs every group of prog in declared order against w,
// each group running its own rules in declared order against the
// Word as it stood after the previous group (spec.md §4.E).
func ApplyProgram(m *feature.Model, w *syllable.Word, prog *soundlaw.Program, lg Logger) *syllable.Word {
	lg = logOrNoop(lg)
	for _, g := range prog.Groups {
		w = ApplyGroup(m, w, g, lg)
	}
	return w
}

// ApplyGroup runs every rule of g in declared order against w.
func ApplyGroup(m *feature.Model, w *syllable.Word, g *soundlaw.Group, lg Logger) *syllable.Word {
	for _, r := range g.Rules {
		w = ApplyRule(m, w, r, lg)
	}
	return w
}

// ApplyRule runs a single compiled rule across w once, left to right.
func ApplyRule(m *feature.Model, w *syllable.Word, rule *soundlaw.Rule, lg Logger) *syllable.Word {
	lg = logOrNoop(lg)
	if rule.WholeWord != nil {
		out, err := safeWholeWord(rule, m, w)
		if err != nil {
			lg.Printf("soundlaw: whole-word rewrite failed: %v", err)
			return w
		}
		return out
	}
	if rule.Target == soundlaw.TargetSyllable {
		return applySyllableRule(m, w, rule, lg)
	}
	return applyPhonemeRule(m, w, rule, lg)
}

func safeWholeWord(rule *soundlaw.Rule, m *feature.Model, w *syllable.Word) (out *syllable.Word, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("recovered panic: %v", r)
		}
	}()
	return rule.WholeWord(m, w)
}

func rebuildWord(sylPhonemes [][]*phone.Phoneme, stressed []bool) *syllable.Word {
	syls := make([]*syllable.Syllable, len(sylPhonemes))
	for i, phs := range sylPhonemes {
		syl := syllable.NewSyllable(phs)
		syl.Stressed = stressed[i]
		syls[i] = syl
	}
	return syllable.NewWord(syls)
}

func safeBool(lg Logger, label string, fn func() bool) (result bool) {
	defer func() {
		if r := recover(); r != nil {
			lg.Printf("soundlaw: recovered panic evaluating %s: %v", label, r)
			result = false
		}
	}()
	return fn()
}

// applyPhonemeRule evaluates rule.Domain, per syllable, within that
// syllable's own phoneme range: a phoneme rule's match window never
// spans a syllable boundary (a deliberate simplification of spec.md
// §4.E's contour-coalescing for multi-phoneme domains -- the common
// case, e.g. diphthong monophthongization, never crosses a syllable
// edge, and rules that would need to are outside this engine's scope).
// Relative conditions still see the whole Word through the Cursor, so
// "#" and cross-syllable lookaround keep working.
func applyPhonemeRule(m *feature.Model, w *syllable.Word, rule *soundlaw.Rule, lg Logger) *syllable.Word {
	sylPhonemes := make([][]*phone.Phoneme, len(w.Syllables))
	stressed := make([]bool, len(w.Syllables))
	for i, s := range w.Syllables {
		sylPhonemes[i] = append([]*phone.Phoneme{}, s.Phonemes...)
		stressed[i] = s.Stressed
	}
	curWord := rebuildWord(sylPhonemes, stressed)

	width := rule.Width
	if width < 1 {
		width = 1
	}

	for si := range sylPhonemes {
		pi := 0
		for pi+width <= len(sylPhonemes[si]) {
			cur := soundlaw.NewCursor(m, curWord)
			abs := cur.SyllableStart(si) + pi
			cur.PhonemeIndex = abs
			cur.SyllableIndex = si

			if !safeBool(lg, fmt.Sprintf("domain at syllable %d phoneme %d", si, pi), func() bool { return rule.Domain(cur) }) {
				pi++
				continue
			}

			advanced := false
			for _, cl := range rule.Clauses {
				hold := cl.Cond == nil || safeBool(lg, "condition", func() bool { return cl.Cond(cur) })
				if !hold {
					continue
				}
				out, err := safeCodomain(lg, cl, cur)
				if err != nil {
					lg.Printf("soundlaw: codomain error at syllable %d phoneme %d: %v", si, pi, err)
					break
				}
				newSlice := append([]*phone.Phoneme{}, sylPhonemes[si][:pi]...)
				newSlice = append(newSlice, out...)
				newSlice = append(newSlice, sylPhonemes[si][pi+width:]...)
				sylPhonemes[si] = newSlice
				curWord = rebuildWord(sylPhonemes, stressed)
				if len(out) > 0 {
					pi += len(out)
				} else {
					pi++
				}
				advanced = true
				break
			}
			if !advanced {
				pi++
			}
		}
	}
	return curWord
}

func safeCodomain(lg Logger, cl soundlaw.Clause, cur *soundlaw.Cursor) (out []*phone.Phoneme, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("recovered panic: %v", r)
		}
	}()
	return cl.PhonemeCodomain(cur)
}

// applySyllableRule evaluates a syllable-target rule once per syllable
// index, in order, against the Word as it stood when that index was
// reached.
func applySyllableRule(m *feature.Model, w *syllable.Word, rule *soundlaw.Rule, lg Logger) *syllable.Word {
	syls := append([]*syllable.Syllable{}, w.Syllables...)
	curWord := syllable.NewWord(syls)

	for si := 0; si < len(syls); si++ {
		cur := soundlaw.NewCursor(m, curWord)
		cur.SyllableIndex = si
		cur.PhonemeIndex = cur.SyllableStart(si)

		if !safeBool(lg, fmt.Sprintf("domain at syllable %d", si), func() bool { return rule.Domain(cur) }) {
			continue
		}
		for _, cl := range rule.Clauses {
			hold := cl.Cond == nil || safeBool(lg, "condition", func() bool { return cl.Cond(cur) })
			if !hold {
				continue
			}
			if cl.SyllableCodomain == nil {
				continue
			}
			replacement, err := safeSyllableCodomain(lg, cl, cur)
			if err != nil {
				lg.Printf("soundlaw: syllable codomain error at syllable %d: %v", si, err)
				break
			}
			syls[si] = replacement
			curWord = syllable.NewWord(syls)
			break
		}
	}
	return curWord
}

func safeSyllableCodomain(lg Logger, cl soundlaw.Clause, cur *soundlaw.Cursor) (s *syllable.Syllable, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("recovered panic: %v", r)
		}
	}()
	return cl.SyllableCodomain(cur)
}

// Resyllabify replaces w's syllable boundaries by re-running automatic
// syllabification over its flattened phonemes, per the resolved Open
// Question that rule application never implicitly re-syllabifies --
// only an explicit stdlib.Resyllabify call-statement does.
func Resyllabify(w *syllable.Word, weights syllable.Weights) *syllable.Word {
	return syllable.Syllabify(w.Phonemes(), weights)
}
