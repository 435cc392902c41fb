package soundlaw

import (
	"testing"

	"github.com/laut-go/diachron/pkg/feature"
	"github.com/laut-go/diachron/pkg/phone"
	"github.com/laut-go/diachron/pkg/syllable"
)

const testHeader = `
NAME soundlaw-test
SEGMENTS segments.txt
DIACRITICS diacritics.txt
FEATURES consonantal low high front back round voice continuant sonorant lateral nasal labial coronal
`

// labial/coronal keep p and t on distinct vectors, as the loader
// rejects two glyphs sharing one vector.
const testSegments = `
a - + - - + - + 0 0 0 0 0 0
i - - + + - - + 0 0 0 0 0 0
p + 0 0 0 0 0 - - - - - + -
b + 0 0 0 0 0 + - - - - + -
t + 0 0 0 0 0 - - - - - - +
s + 0 0 0 0 0 - + - - - - +
z + 0 0 0 0 0 + + - - - - +
m + 0 0 0 0 0 + - + - + + -
l + 0 0 0 0 0 + + + + - - +
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

func mustCompile(t *testing.T, m *feature.Model, src string) *Program {
	t.Helper()
	prog, warnings, err := Compile(src, m, nil)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	return prog
}

func wordFromIPA(t *testing.T, m *feature.Model, s string) *syllable.Word {
	t.Helper()
	w, err := syllable.FromIPA(m, s)
	if err != nil {
		t.Fatalf("syllable.FromIPA(%q): %v", s, err)
	}
	return w
}

func TestParseSimpleUnconditional(t *testing.T) {
	_, err := parseSource(`CHANGE NAME "p-lenition" BEGIN /p/ -> /b/ END`)
	if err != nil {
		t.Fatalf("parseSource: %v", err)
	}
}

func TestParseSyntaxError(t *testing.T) {
	_, err := parseSource(`CHANGE BEGIN /p/ b/ END`)
	if _, ok := err.(*SyntaxError); !ok {
		t.Fatalf("err = %v, want *SyntaxError", err)
	}
}

func TestCompileSimpleUnconditional(t *testing.T) {
	m := loadModel(t)
	prog := mustCompile(t, m, `CHANGE NAME "p-lenition" BEGIN /p/ -> /b/ END`)
	if len(prog.Groups) != 1 || len(prog.Groups[0].Rules) != 1 {
		t.Fatalf("unexpected program shape: %+v", prog)
	}
	r := prog.Groups[0].Rules[0]
	if r.Width != 1 || r.Target != TargetPhoneme {
		t.Fatalf("rule shape = %+v", r)
	}
}

func TestCompileMultiPhonemeDomain(t *testing.T) {
	m := loadModel(t)
	prog := mustCompile(t, m, `CHANGE NAME "monophthongization" BEGIN /ai/ -> /a/ END`)
	r := prog.Groups[0].Rules[0]
	if r.Width != 2 {
		t.Fatalf("Width = %d, want 2 (domain /ai/ tokenizes to two phonemes)", r.Width)
	}
}

func TestCompileMultipleUnconditional(t *testing.T) {
	m := loadModel(t)
	prog := mustCompile(t, m, `CHANGE NAME "devoicing" BEGIN {/b/,/z/} -> {/p/,/s/} END`)
	if len(prog.Groups[0].Rules) != 2 {
		t.Fatalf("len(Rules) = %d, want 2", len(prog.Groups[0].Rules))
	}
}

func TestCompileMultipleUnconditionalLengthMismatch(t *testing.T) {
	m := loadModel(t)
	_, _, err := Compile(`CHANGE BEGIN {/b/,/z/} -> {/p/} END`, m, nil)
	if _, ok := err.(*CompileError); !ok {
		t.Fatalf("err = %v, want *CompileError", err)
	}
}

func TestCompileFeatureChange(t *testing.T) {
	m := loadModel(t)
	prog := mustCompile(t, m, `CHANGE NAME "voicing" BEGIN [-voice] -> [+voice] END`)
	r := prog.Groups[0].Rules[0]
	ph := phone.NewPhoneme(mustPhone(t, m, "p"))
	c := NewCursor(m, wordFromIPA(t, m, "p"))
	if !r.Domain(c) {
		t.Fatalf("domain should match a voiceless phoneme")
	}
	out, err := r.Clauses[0].PhonemeCodomain(c)
	if err != nil {
		t.Fatalf("PhonemeCodomain: %v", err)
	}
	if out[0].Phone.Symbol() != "b" {
		t.Errorf("codomain symbol = %q, want %q", out[0].Phone.Symbol(), "b")
	}
	_ = ph
}

func mustPhone(t *testing.T, m *feature.Model, ipa string) *phone.Phone {
	t.Helper()
	p, err := phone.FromIPA(m, ipa)
	if err != nil {
		t.Fatalf("phone.FromIPA(%q): %v", ipa, err)
	}
	return p
}

func TestCompileConditionalClauses(t *testing.T) {
	m := loadModel(t)
	// s voices between vowels, stays voiceless otherwise.
	prog := mustCompile(t, m, `
CHANGE NAME "intervocalic voicing"
BEGIN
  /s/ => /z/ | [+high] _ [+high]
      => /s/
END`)
	r := prog.Groups[0].Rules[0]
	if len(r.Clauses) != 2 {
		t.Fatalf("len(Clauses) = %d, want 2", len(r.Clauses))
	}

	w := wordFromIPA(t, m, "isi")
	c := NewCursor(m, w)
	c.PhonemeIndex = 1
	if !r.Domain(c) {
		t.Fatalf("domain should match the medial s in isi")
	}
	if r.Clauses[0].Cond == nil || !r.Clauses[0].Cond(c) {
		t.Fatalf("first clause's condition should hold between two i's")
	}
	out, err := r.Clauses[0].PhonemeCodomain(c)
	if err != nil {
		t.Fatalf("PhonemeCodomain: %v", err)
	}
	if out[0].Phone.Symbol() != "z" {
		t.Errorf("codomain = %q, want %q", out[0].Phone.Symbol(), "z")
	}
}

func TestCompileUnknownFunctionWarning(t *testing.T) {
	m := loadModel(t)
	prog, warnings, err := Compile(`CHANGE BEGIN Frobnicate(/p/) END`, m, nil)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if len(warnings) != 1 || warnings[0].Name != "Frobnicate" {
		t.Fatalf("warnings = %v, want one for Frobnicate", warnings)
	}
	r := prog.Groups[0].Rules[0]
	c := NewCursor(m, wordFromIPA(t, m, "p"))
	out, err := r.Clauses[0].PhonemeCodomain(c)
	if err != nil || out[0].Phone.Symbol() != "p" {
		t.Errorf("identity rule should leave p unchanged, got %v, err %v", out, err)
	}
}

func TestCompileUnknownFeatureIsCompileError(t *testing.T) {
	m := loadModel(t)
	_, _, err := Compile(`CHANGE BEGIN [-nonexistent] -> [+voice] END`, m, nil)
	if _, ok := err.(*CompileError); !ok {
		t.Fatalf("err = %v, want *CompileError", err)
	}
}

func TestCompileLibraryHeader(t *testing.T) {
	m := loadModel(t)
	prog := mustCompile(t, m, `
LIBRARY "core"
VERSION "1.0"
CHANGE NAME "p-lenition" BEGIN /p/ -> /b/ END`)
	if prog.LibraryName != "core" || prog.LibraryVersion != "1.0" {
		t.Errorf("LibraryName/Version = %q/%q, want core/1.0", prog.LibraryName, prog.LibraryVersion)
	}
}

func TestCompileEdgeRelative(t *testing.T) {
	m := loadModel(t)
	// p becomes b only word-initially.
	prog := mustCompile(t, m, `CHANGE BEGIN /p/ => /b/ | # _ => /p/ END`)
	r := prog.Groups[0].Rules[0]

	wInitial := wordFromIPA(t, m, "pa")
	cInitial := NewCursor(m, wInitial)
	cInitial.PhonemeIndex = 0
	if r.Clauses[0].Cond == nil || !r.Clauses[0].Cond(cInitial) {
		t.Errorf("word-initial p should satisfy the # _ condition")
	}

	wMedial := wordFromIPA(t, m, "apa")
	cMedial := NewCursor(m, wMedial)
	cMedial.PhonemeIndex = 1
	if r.Clauses[0].Cond(cMedial) {
		t.Errorf("medial p should not satisfy the # _ condition")
	}
}
