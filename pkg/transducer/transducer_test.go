package transducer

import (
	"testing"

	"github.com/laut-go/diachron/pkg/feature"
	"github.com/laut-go/diachron/pkg/phone"
	"github.com/laut-go/diachron/pkg/soundlaw"
	"github.com/laut-go/diachron/pkg/stdlib"
	"github.com/laut-go/diachron/pkg/syllable"
)

const testHeader = `
NAME transducer-test
SEGMENTS segments.txt
DIACRITICS diacritics.txt
FEATURES consonantal low high front back round voice continuant sonorant lateral nasal labial coronal
`

// labial/coronal keep p/t and b/d on distinct vectors, as the loader
// rejects two glyphs sharing one vector.
const testSegments = `
a - + - - + - + 0 0 0 0 0 0
i - - + + - - + 0 0 0 0 0 0
p + 0 0 0 0 0 - - - - - + -
b + 0 0 0 0 0 + - - - - + -
t + 0 0 0 0 0 - - - - - - +
d + 0 0 0 0 0 + - - - - - +
s + 0 0 0 0 0 - + - - - - +
z + 0 0 0 0 0 + + - - - - +
`

const testDiacritics = `
̥ -voice
`

func loadModel(t *testing.T) *feature.Model {
	t.Helper()
	m, err := feature.LoadBlobs([]byte(testHeader), []byte(testSegments), []byte(testDiacritics))
	if err != nil {
		t.Fatalf("LoadBlobs: %v", err)
	}
	return m
}

type captureLogger struct{ lines []string }

func (c *captureLogger) Printf(format string, args ...any) {
	c.lines = append(c.lines, format)
}

func TestApplyRuleSimpleRewrite(t *testing.T) {
	m := loadModel(t)
	prog, _, err := soundlaw.Compile(`CHANGE NAME "lenition" BEGIN /p/ -> /b/ END`, m, stdlib.Library)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	w, err := syllable.FromIPA(m, "apa")
	if err != nil {
		t.Fatalf("FromIPA: %v", err)
	}
	out := ApplyProgram(m, w, prog, nil)
	if got, want := out.String(), "/aba/"; got != want {
		t.Errorf("ApplyProgram = %q, want %q", got, want)
	}
}

func TestApplyGroupSequentialRules(t *testing.T) {
	m := loadModel(t)
	prog, _, err := soundlaw.Compile(`
CHANGE NAME "devoice then spirantize"
BEGIN
  /b/ -> /p/
  /p/ -> /s/
END`, m, nil)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	w, err := syllable.FromIPA(m, "aba")
	if err != nil {
		t.Fatalf("FromIPA: %v", err)
	}
	out := ApplyProgram(m, w, prog, nil)
	// b -> p first, then that same p -> s: the second rule in the
	// group sees the first rule's output, matching spec.md §4.E's
	// "runs its rules in declared order on the evolving Word".
	if got, want := out.String(), "/asa/"; got != want {
		t.Errorf("ApplyProgram = %q, want %q", got, want)
	}
}

func TestApplyRuleConditionalClause(t *testing.T) {
	m := loadModel(t)
	prog, _, err := soundlaw.Compile(`
CHANGE NAME "intervocalic voicing"
BEGIN
  /s/ => /z/ | [+high] _ [+high]
      => /s/
END`, m, nil)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	w, err := syllable.FromIPA(m, "isi.as")
	if err != nil {
		t.Fatalf("FromIPA: %v", err)
	}
	out := ApplyProgram(m, w, prog, nil)
	if got, want := out.String(), "/izi.as/"; got != want {
		t.Errorf("ApplyProgram = %q, want %q", got, want)
	}
}

func TestApplyRuleStdlibIntervocalVoicing(t *testing.T) {
	m := loadModel(t)
	prog, warnings, err := soundlaw.Compile(`CHANGE BEGIN IntervocalVoicing(/s/) END`, m, stdlib.Library)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	w, err := syllable.FromIPA(m, "asa")
	if err != nil {
		t.Fatalf("FromIPA: %v", err)
	}
	out := ApplyProgram(m, w, prog, nil)
	if got, want := out.String(), "/aza/"; got != want {
		t.Errorf("ApplyProgram = %q, want %q", got, want)
	}
}

func TestApplyRuleUnknownFunctionIsIdentity(t *testing.T) {
	m := loadModel(t)
	prog, warnings, err := soundlaw.Compile(`CHANGE BEGIN Frobnicate(/p/) END`, m, stdlib.Library)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if len(warnings) != 1 {
		t.Fatalf("warnings = %v, want 1", warnings)
	}
	w, err := syllable.FromIPA(m, "apa")
	if err != nil {
		t.Fatalf("FromIPA: %v", err)
	}
	out := ApplyProgram(m, w, prog, nil)
	if got, want := out.String(), "/apa/"; got != want {
		t.Errorf("identity rule changed the word: got %q, want %q", got, want)
	}
}

func TestResyllabify(t *testing.T) {
	m := loadModel(t)
	w, err := syllable.FromIPA(m, "p.a")
	if err != nil {
		t.Fatalf("FromIPA: %v", err)
	}
	out := Resyllabify(w, syllable.DefaultWeights)
	if len(out.Syllables) != 1 {
		t.Fatalf("len(Syllables) = %d, want 1 (pa alone forms one open syllable)", len(out.Syllables))
	}
}

func TestApplyRuleRecoversRuntimePanic(t *testing.T) {
	m := loadModel(t)
	panicky := &soundlaw.Rule{
		Target: soundlaw.TargetPhoneme,
		Width:  1,
		Domain: func(c *soundlaw.Cursor) bool { return c.PhonemeAtIndex(c.PhonemeIndex) != nil },
		Clauses: []soundlaw.Clause{{
			PhonemeCodomain: func(c *soundlaw.Cursor) ([]*phone.Phoneme, error) {
				panic("boom")
			},
		}},
	}

	w, err := syllable.FromIPA(m, "apa")
	if err != nil {
		t.Fatalf("FromIPA: %v", err)
	}
	lg := &captureLogger{}
	out := ApplyRule(m, w, panicky, lg)
	if got, want := out.String(), "/apa/"; got != want {
		t.Errorf("a panicking codomain should leave the word unchanged, got %q", got)
	}
	if len(lg.lines) == 0 {
		t.Errorf("panic should have been logged")
	}
}
