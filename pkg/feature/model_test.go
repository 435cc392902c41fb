package feature

import (
	"strings"
	"testing"
)

const testHeader = `
NAME test
SEGMENTS segments.txt
DIACRITICS diacritics.txt
FEATURES son voice nasal
`

const testSegments = `
# son voice nasal
p - - -
b - + -
m - + +
a + + -
`

const testDiacritics = `
̃ +nasal
̥ -voice
`

func loadTestModel(t *testing.T) *Model {
	t.Helper()
	m, err := LoadBlobs([]byte(testHeader), []byte(testSegments), []byte(testDiacritics))
	if err != nil {
		t.Fatalf("LoadBlobs: %v", err)
	}
	return m
}

func TestLoadBlobsBasics(t *testing.T) {
	m := loadTestModel(t)
	if m.Name != "test" {
		t.Errorf("Name = %q, want %q", m.Name, "test")
	}
	want := []string{"son", "voice", "nasal"}
	got := m.Features()
	if len(got) != len(want) {
		t.Fatalf("Features() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Features()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if syms := m.Symbols(); len(syms) != 4 || syms[0] != "p" || syms[3] != "a" {
		t.Errorf("Symbols() = %v, want insertion order p b m a", syms)
	}
}

func TestLoadBlobsDuplicateVector(t *testing.T) {
	segments := testSegments + "q - - -\n" // q shares p's vector exactly
	_, err := LoadBlobs([]byte(testHeader), []byte(segments), []byte(testDiacritics))
	lerr, ok := err.(*LoadError)
	if !ok || lerr.Kind != DuplicateSymbol {
		t.Fatalf("err = %v, want *LoadError{Kind: DuplicateSymbol}", err)
	}
}

func TestLoadBlobsVectorLengthMismatch(t *testing.T) {
	segments := "p - -\n"
	_, err := LoadBlobs([]byte(testHeader), []byte(segments), nil)
	lerr, ok := err.(*LoadError)
	if !ok || lerr.Kind != VectorLengthMismatch {
		t.Fatalf("err = %v, want *LoadError{Kind: VectorLengthMismatch}", err)
	}
}

func TestFeaturesFromIPABase(t *testing.T) {
	m := loadTestModel(t)
	vec, err := m.FeaturesFromIPA("p")
	if err != nil {
		t.Fatalf("FeaturesFromIPA(p): %v", err)
	}
	if vectorKey(vec) != vectorKey(m.vectors["p"]) {
		t.Errorf("FeaturesFromIPA(p) = %v, want %v", vec, m.vectors["p"])
	}
}

func TestFeaturesFromIPADiacritic(t *testing.T) {
	m := loadTestModel(t)
	vec, err := m.FeaturesFromIPA("b" + "̃") // b + combining tilde (nasal)
	if err != nil {
		t.Fatalf("FeaturesFromIPA: %v", err)
	}
	if vectorKey(vec) != vectorKey(m.vectors["m"]) {
		t.Errorf("b-with-nasal = %v, want m's vector %v", vec, m.vectors["m"])
	}
}

func TestFeaturesFromIPAUnknownSymbol(t *testing.T) {
	m := loadTestModel(t)
	_, err := m.FeaturesFromIPA("z")
	if _, ok := err.(*UnknownSymbolError); !ok {
		t.Fatalf("err = %v, want *UnknownSymbolError", err)
	}
}

func TestFeaturesFromIPAEmpty(t *testing.T) {
	m := loadTestModel(t)
	if _, err := m.FeaturesFromIPA(""); err != ErrEmptyInput {
		t.Fatalf("err = %v, want ErrEmptyInput", err)
	}
}

func TestIPAFromFeaturesExactMatch(t *testing.T) {
	m := loadTestModel(t)
	ipa, err := m.IPAFromFeatures(m.vectors["b"])
	if err != nil {
		t.Fatalf("IPAFromFeatures: %v", err)
	}
	if ipa != "b" {
		t.Errorf("IPAFromFeatures(b's vector) = %q, want %q", ipa, "b")
	}
}

func TestIPAFromFeaturesDiacriticComposition(t *testing.T) {
	m := loadTestModel(t)
	// son=-, voice=-, nasal=+: one feature away from both p (nasal diff)
	// and m (voice diff). p comes first in base-glyph insertion order,
	// so p + nasal-diacritic must win.
	target := []Value{MINUS, MINUS, PLUS}
	ipa, err := m.IPAFromFeatures(target)
	if err != nil {
		t.Fatalf("IPAFromFeatures: %v", err)
	}
	want := "p" + "̃"
	if ipa != want {
		t.Errorf("IPAFromFeatures(target) = %q, want %q", ipa, want)
	}
}

func TestIPAFromFeaturesNoRepresentation(t *testing.T) {
	m := loadTestModel(t)
	m.IgnoreDistance = 1
	// son=+, voice=-, nasal=+ has no exact match and is at least
	// Hamming distance 2 from every base glyph, so with IgnoreDistance
	// lowered to 1 no candidate is even considered.
	target := []Value{PLUS, MINUS, PLUS}
	_, err := m.IPAFromFeatures(target)
	if _, ok := err.(*NoRepresentationError); !ok {
		t.Fatalf("err = %v, want *NoRepresentationError", err)
	}
}

func TestParseHeaderMissingFields(t *testing.T) {
	_, err := LoadBlobs([]byte("NAME test\n"), nil, nil)
	lerr, ok := err.(*LoadError)
	if !ok || lerr.Kind != MissingHeader {
		t.Fatalf("err = %v, want *LoadError{Kind: MissingHeader}", err)
	}
}

func TestStripCommentAndBlank(t *testing.T) {
	lines := strings.Split("# a comment\n\np 0 0 0 # trailing", "\n")
	if got := stripComment(lines[0]); got != "" {
		t.Errorf("stripComment(comment-only) = %q, want empty", got)
	}
	if got := stripComment(lines[1]); got != "" {
		t.Errorf("stripComment(blank) = %q, want empty", got)
	}
	if got := stripComment(lines[2]); got != "p 0 0 0" {
		t.Errorf("stripComment(trailing comment) = %q, want %q", got, "p 0 0 0")
	}
}
