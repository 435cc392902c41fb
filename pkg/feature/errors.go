package feature

import "fmt"

// LoadErrorKind enumerates the ways a feature-set description can be
// malformed, per spec §4.A's load contract.
type LoadErrorKind string

const (
	MissingHeader        LoadErrorKind = "MissingHeader"
	DuplicateSymbol      LoadErrorKind = "DuplicateSymbol"
	VectorLengthMismatch LoadErrorKind = "VectorLengthMismatch"
	InvalidValue         LoadErrorKind = "InvalidValue"
	IOError              LoadErrorKind = "IOError"
)

// LoadError is raised by Load/LoadBlobs. It is a configuration-class
// error (fatal for the document being loaded, never recovered locally).
type LoadError struct {
	Kind LoadErrorKind
	Line int // 1-based, 0 if not applicable
	Msg  string
}

func (e *LoadError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("feature: %s at line %d: %s", e.Kind, e.Line, e.Msg)
	}
	return fmt.Sprintf("feature: %s: %s", e.Kind, e.Msg)
}

// UnknownSymbolError is raised by FeaturesFromIPA when a code point is
// neither a base-glyph nor a diacritic.
type UnknownSymbolError struct {
	Symbol rune
	Source string
}

func (e *UnknownSymbolError) Error() string {
	return fmt.Sprintf("feature: unknown symbol %q in %q", e.Symbol, e.Source)
}

// AmbiguousFeatureSetError is a model-load invariant violation: two
// base-glyphs share an identical vector, detected lazily the first time
// IPAFromFeatures' exact-match step finds more than one hit. Load()
// itself checks this eagerly and returns a *LoadError{Kind:
// DuplicateSymbol}; this type exists for the (unreachable, barring a
// bug in Load) case described in spec §4.A step 1.
type AmbiguousFeatureSetError struct {
	Glyphs []string
}

func (e *AmbiguousFeatureSetError) Error() string {
	return fmt.Sprintf("feature: ambiguous feature set, glyphs %v share a vector", e.Glyphs)
}

// NoRepresentationError is raised by IPAFromFeatures when no base-glyph
// plus diacritics can express the requested feature vector.
type NoRepresentationError struct{}

func (e *NoRepresentationError) Error() string {
	return "feature: no IPA representation found for feature vector"
}
