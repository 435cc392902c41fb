// Package phone implements Phone and Phoneme (spec.md §4.B): a dense
// feature vector tied to a *feature.Model, its symbol derivation, and
// the monophone predicate set the rule DSL and transducer depend on.
package phone

import (
	"fmt"

	"github.com/laut-go/diachron/pkg/feature"
)

// UnknownFeatureError is raised by SetFeature for a name absent from
// the Phone's model.
type UnknownFeatureError struct {
	Feature string
}

func (e *UnknownFeatureError) Error() string {
	return fmt.Sprintf("phone: unknown feature %q", e.Feature)
}

// InvalidValueError is raised by SetFeature for a value outside
// {PLUS, MINUS, NULL}.
type InvalidValueError struct {
	Value feature.Value
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("phone: invalid feature value %v", e.Value)
}

// Phone is a dense feature vector over a model's canonical feature
// order, plus the symbol it was last derived from or set to.
type Phone struct {
	model  *feature.Model
	vector []feature.Value
	symbol string
}

// FromIPA constructs a Phone from an IPA string against m (spec §4.A's
// FeaturesFromIPA, then derives the canonical symbol from the result so
// that, e.g., a Phone built from a precomposed rune and one built from
// its NFD-decomposed equivalent carry the same symbol).
func FromIPA(m *feature.Model, ipa string) (*Phone, error) {
	vec, err := m.FeaturesFromIPA(ipa)
	if err != nil {
		return nil, err
	}
	p := &Phone{model: m, vector: vec}
	sym, err := m.IPAFromFeatures(vec)
	if err != nil {
		// Keep the input symbol if the round trip cannot re-derive one;
		// the vector itself is still valid and usable.
		p.symbol = ipa
		return p, nil
	}
	p.symbol = sym
	return p, nil
}

// Blank constructs a Phone with every feature NULL against m.
func Blank(m *feature.Model) *Phone {
	return &Phone{model: m, vector: make([]feature.Value, len(m.Features())), symbol: "0"}
}

// Model returns the feature model this Phone is defined against.
func (p *Phone) Model() *feature.Model { return p.model }

// Symbol returns the Phone's IPA symbol.
func (p *Phone) Symbol() string { return p.symbol }

// FeatureIs reports whether the named feature holds the given value.
// An unknown feature name is never true.
func (p *Phone) FeatureIs(name string, v feature.Value) bool {
	i := p.model.FeatureIndex(name)
	if i < 0 {
		return false
	}
	return p.vector[i] == v
}

// IsSymbol reports whether s equals this Phone's symbol.
func (p *Phone) IsSymbol(s string) bool { return p.symbol == s }

// SetFeature mutates the named feature and re-derives the symbol.
// Mutating a Phone already referenced elsewhere (e.g. inside a Syllable
// returned by a prior Transducer pass) is the caller's responsibility to
// avoid; Copy exists for exactly that reason.
func (p *Phone) SetFeature(name string, v feature.Value) error {
	i := p.model.FeatureIndex(name)
	if i < 0 {
		return &UnknownFeatureError{Feature: name}
	}
	if v != feature.PLUS && v != feature.MINUS && v != feature.NULL {
		return &InvalidValueError{Value: v}
	}
	p.vector[i] = v
	if sym, err := p.model.IPAFromFeatures(p.vector); err == nil {
		p.symbol = sym
	}
	return nil
}

// Vector returns a copy of the dense feature vector.
func (p *Phone) Vector() []feature.Value {
	out := make([]feature.Value, len(p.vector))
	copy(out, p.vector)
	return out
}

// Copy returns an independent Phone with the same model, vector and
// symbol.
func (p *Phone) Copy() *Phone {
	out := &Phone{model: p.model, vector: make([]feature.Value, len(p.vector)), symbol: p.symbol}
	copy(out.vector, p.vector)
	return out
}

// Phoneme wraps a Phone with optional subsystem tags (e.g. tone,
// length, stress-adjacent feature overlays that do not belong in the
// base feature model but that rules may still match against).
type Phoneme struct {
	Phone *Phone
	Tags  map[string]feature.Value
}

// NewPhoneme wraps p with no tags.
func NewPhoneme(p *Phone) *Phoneme {
	return &Phoneme{Phone: p}
}

// Tag returns a subsystem tag's value, defaulting to NULL if unset.
func (ph *Phoneme) Tag(name string) feature.Value {
	if ph.Tags == nil {
		return feature.NULL
	}
	return ph.Tags[name]
}

// SetTag sets a subsystem tag.
func (ph *Phoneme) SetTag(name string, v feature.Value) {
	if ph.Tags == nil {
		ph.Tags = make(map[string]feature.Value)
	}
	ph.Tags[name] = v
}

// Copy returns an independent Phoneme.
func (ph *Phoneme) Copy() *Phoneme {
	out := &Phoneme{Phone: ph.Phone.Copy()}
	if ph.Tags != nil {
		out.Tags = make(map[string]feature.Value, len(ph.Tags))
		for k, v := range ph.Tags {
			out.Tags[k] = v
		}
	}
	return out
}
