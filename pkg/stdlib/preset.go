package stdlib

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/laut-go/diachron/pkg/feature"
	"github.com/laut-go/diachron/pkg/soundlaw"
	"github.com/laut-go/diachron/pkg/syllable"
)

// Preset is a JSON-described whole-word rewrite: prefix, suffix and
// substring replacement tables applied to a Word's IPA rendering,
// generalizing temporal-IPA/tipa's pkg/conversion/psr.Rule (which maps
// orthography <-> IPA the same way) to a whole-word sound change. Where
// psr.Rule keeps separate IPA/text rule sets because it bridges two
// notations, a Preset operates purely in IPA, so that split collapses
// to the single three-step algorithm below.
type Preset struct {
	Prefixes     map[string]string `json:"prefixes"`
	Suffixes     map[string]string `json:"suffixes"`
	Replacements map[string]string `json:"replacements"`
}

// LoadPreset reads a Preset document from path.
func LoadPreset(path string) (*Preset, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return LoadPresetBlob(b)
}

// LoadPresetBlob parses a Preset document from memory.
func LoadPresetBlob(blob []byte) (*Preset, error) {
	p := &Preset{}
	if err := json.Unmarshal(blob, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Convert applies the three-step process psr.Rule.Convert uses: prefix
// substitution, then suffix substitution, then unconditional
// replacements.
func (p *Preset) Convert(s string) string {
	for k, v := range p.Prefixes {
		if strings.HasPrefix(s, k) {
			s = v + s[len(k):]
		}
	}
	for k, v := range p.Suffixes {
		if strings.HasSuffix(s, k) {
			s = s[:len(s)-len(k)] + v
		}
	}
	for k, v := range p.Replacements {
		s = strings.ReplaceAll(s, k, v)
	}
	return s
}

// Rule compiles the Preset into a whole-word soundlaw.Rule: it
// converts the Word's bare IPA rendering (stress and syllable marks
// included, outer slashes stripped) and re-parses the result against
// m. A conversion that no longer parses leaves the Word unchanged and
// is reported through the transducer's Logger, per spec.md §7(c).
func (p *Preset) Rule(pos soundlaw.Pos) *soundlaw.Rule {
	return &soundlaw.Rule{
		Pos:    pos,
		Target: soundlaw.TargetSyllable,
		WholeWord: func(m *feature.Model, w *syllable.Word) (*syllable.Word, error) {
			raw := strings.Trim(w.String(), "/")
			converted := p.Convert(raw)
			return syllable.FromIPA(m, converted)
		},
	}
}
