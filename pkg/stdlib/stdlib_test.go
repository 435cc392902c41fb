package stdlib

import (
	"testing"

	"github.com/laut-go/diachron/pkg/feature"
	"github.com/laut-go/diachron/pkg/soundlaw"
	"github.com/laut-go/diachron/pkg/syllable"
)

const testHeader = `
NAME stdlib-test
SEGMENTS segments.txt
DIACRITICS diacritics.txt
FEATURES consonantal low high front back round voice continuant sonorant lateral nasal long labial coronal
`

// labial/coronal keep p and t on distinct vectors, as the loader
// rejects two glyphs sharing one vector.
const testSegments = `
a - + - - + - + 0 0 0 0 0 0 0
i - - + + - - + 0 0 0 0 0 0 0
p + 0 0 0 0 0 - - - - - - + -
b + 0 0 0 0 0 + - - - - - + -
t + 0 0 0 0 0 - - - - - - - +
s + 0 0 0 0 0 - + - - - - - +
z + 0 0 0 0 0 + + - - - - - +
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

func wordFromIPA(t *testing.T, m *feature.Model, s string) *syllable.Word {
	t.Helper()
	w, err := syllable.FromIPA(m, s)
	if err != nil {
		t.Fatalf("syllable.FromIPA(%q): %v", s, err)
	}
	return w
}

func phonemeValue(sym string) soundlaw.Value {
	return soundlaw.Value{Phonemes: []string{sym}}
}

func TestMetathesis(t *testing.T) {
	m := loadModel(t)
	fn, ok := Library.Lookup("Metathesis")
	if !ok {
		t.Fatal("Metathesis not registered")
	}
	rule, err := fn(soundlaw.Call{Model: m, Name: "Metathesis", Args: []soundlaw.Value{phonemeValue("s"), phonemeValue("t")}})
	if err != nil {
		t.Fatalf("Metathesis: %v", err)
	}
	w := wordFromIPA(t, m, "ast")
	c := soundlaw.NewCursor(m, w)
	c.PhonemeIndex = 1
	if !rule.Domain(c) {
		t.Fatalf("domain should match the st cluster")
	}
	out, err := rule.Clauses[0].PhonemeCodomain(c)
	if err != nil {
		t.Fatalf("codomain: %v", err)
	}
	if len(out) != 2 || out[0].Phone.Symbol() != "t" || out[1].Phone.Symbol() != "s" {
		t.Errorf("metathesis output = %v, want [t s]", out)
	}
}

func TestLengthen(t *testing.T) {
	m := loadModel(t)
	fn, ok := Library.Lookup("Lengthen")
	if !ok {
		t.Fatal("Lengthen not registered")
	}
	rule, err := fn(soundlaw.Call{Model: m, Name: "Lengthen", Args: []soundlaw.Value{phonemeValue("a")}})
	if err != nil {
		t.Fatalf("Lengthen: %v", err)
	}
	w := wordFromIPA(t, m, "a")
	c := soundlaw.NewCursor(m, w)
	c.PhonemeIndex = 0
	if !rule.Domain(c) {
		t.Fatalf("domain should match a")
	}
	out, err := rule.Clauses[0].PhonemeCodomain(c)
	if err != nil {
		t.Fatalf("codomain: %v", err)
	}
	if !out[0].Phone.FeatureIs("long", feature.PLUS) {
		t.Errorf("lengthened phoneme should be [+long]")
	}
}

func TestLengthenMissingFeatureIsError(t *testing.T) {
	m := loadModel(t)
	fn, _ := Library.Lookup("Lengthen")
	noLongHeader := `
NAME no-long
SEGMENTS segments.txt
DIACRITICS diacritics.txt
FEATURES consonantal low high front back round voice continuant sonorant lateral nasal
`
	stripped, err := feature.LoadBlobs([]byte(noLongHeader), []byte(`
a - + - - + - + 0 0 0 0
`), []byte(testDiacritics))
	if err != nil {
		t.Fatalf("LoadBlobs: %v", err)
	}
	_, err = fn(soundlaw.Call{Model: stripped, Name: "Lengthen", Args: []soundlaw.Value{phonemeValue("a")}})
	if err == nil {
		t.Fatalf("Lengthen should fail without a \"long\" feature in the model")
	}
	_ = m
}

func TestIntervocalVoicing(t *testing.T) {
	m := loadModel(t)
	fn, _ := Library.Lookup("IntervocalVoicing")
	rule, err := fn(soundlaw.Call{Model: m, Name: "IntervocalVoicing", Args: []soundlaw.Value{phonemeValue("s")}})
	if err != nil {
		t.Fatalf("IntervocalVoicing: %v", err)
	}

	medial := wordFromIPA(t, m, "asa")
	c := soundlaw.NewCursor(m, medial)
	c.PhonemeIndex = 1
	if !rule.Domain(c) {
		t.Fatalf("domain should match s between vowels")
	}
	out, err := rule.Clauses[0].PhonemeCodomain(c)
	if err != nil {
		t.Fatalf("codomain: %v", err)
	}
	if out[0].Phone.Symbol() != "z" {
		t.Errorf("codomain symbol = %q, want %q", out[0].Phone.Symbol(), "z")
	}

	initial := wordFromIPA(t, m, "sa")
	c2 := soundlaw.NewCursor(m, initial)
	c2.PhonemeIndex = 0
	if rule.Domain(c2) {
		t.Errorf("domain should not match word-initial s")
	}
}

func TestMerge(t *testing.T) {
	m := loadModel(t)
	fn, _ := Library.Lookup("Merge")
	alts := soundlaw.Value{PhonemeLists: [][]string{{"b"}, {"z"}}}
	rule, err := fn(soundlaw.Call{Model: m, Name: "Merge", Args: []soundlaw.Value{alts, phonemeValue("p")}})
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	for _, sym := range []string{"b", "z"} {
		w := wordFromIPA(t, m, sym)
		c := soundlaw.NewCursor(m, w)
		c.PhonemeIndex = 0
		if !rule.Domain(c) {
			t.Fatalf("domain should match %q", sym)
		}
		out, err := rule.Clauses[0].PhonemeCodomain(c)
		if err != nil {
			t.Fatalf("codomain: %v", err)
		}
		if out[0].Phone.Symbol() != "p" {
			t.Errorf("merge(%q) = %q, want %q", sym, out[0].Phone.Symbol(), "p")
		}
	}
}

func TestEpenthesis(t *testing.T) {
	m := loadModel(t)
	fn, _ := Library.Lookup("Epenthesis")
	rule, err := fn(soundlaw.Call{Model: m, Name: "Epenthesis", Args: []soundlaw.Value{phonemeValue("s"), phonemeValue("t")}})
	if err != nil {
		t.Fatalf("Epenthesis: %v", err)
	}
	w := wordFromIPA(t, m, "as")
	c := soundlaw.NewCursor(m, w)
	c.PhonemeIndex = 1
	if !rule.Domain(c) {
		t.Fatalf("domain should match s")
	}
	out, err := rule.Clauses[0].PhonemeCodomain(c)
	if err != nil {
		t.Fatalf("codomain: %v", err)
	}
	if len(out) != 2 || out[0].Phone.Symbol() != "s" || out[1].Phone.Symbol() != "t" {
		t.Errorf("epenthesis output = %v, want [s t]", out)
	}
}

func TestResyllabifyCall(t *testing.T) {
	m := loadModel(t)
	fn, _ := Library.Lookup("Resyllabify")
	rule, err := fn(soundlaw.Call{Model: m, Name: "Resyllabify"})
	if err != nil {
		t.Fatalf("Resyllabify: %v", err)
	}
	if rule.WholeWord == nil {
		t.Fatalf("Resyllabify should produce a WholeWord rule")
	}
	w := wordFromIPA(t, m, "s.a")
	out, err := rule.WholeWord(m, w)
	if err != nil {
		t.Fatalf("WholeWord: %v", err)
	}
	if len(out.Syllables) != 1 {
		t.Errorf("len(Syllables) = %d, want 1", len(out.Syllables))
	}
}
