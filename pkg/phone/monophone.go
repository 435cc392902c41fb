package phone

import "github.com/laut-go/diachron/pkg/feature"

// Monophone feature names, matching the "monophone" feature-set text
// files this module ships: the predicate set below is ported
// feature-by-feature from PyLaut's MonoPhone class and depends on
// these names being present in the loaded *feature.Model.
const (
	FeatConsonantal = "consonantal"
	FeatLow         = "low"
	FeatHigh        = "high"
	FeatFront       = "front"
	FeatBack        = "back"
	FeatRound       = "round"
	FeatVoice       = "voice"
	FeatContinuant  = "continuant"
	FeatSonorant    = "sonorant"
	FeatLateral     = "lateral"
	FeatNasal       = "nasal"
)

// IsVowel reports whether p is [-consonantal].
func (p *Phone) IsVowel() bool {
	return p.FeatureIs(FeatConsonantal, feature.MINUS)
}

// IsConsonant reports whether p is [+consonantal].
func (p *Phone) IsConsonant() bool {
	return p.FeatureIs(FeatConsonantal, feature.PLUS)
}

// IsLowVowel reports whether p is a vowel with [+low].
func (p *Phone) IsLowVowel() bool {
	return p.IsVowel() && p.FeatureIs(FeatLow, feature.PLUS)
}

// IsHighVowel reports whether p is a vowel with [+high].
func (p *Phone) IsHighVowel() bool {
	return p.IsVowel() && p.FeatureIs(FeatHigh, feature.PLUS)
}

// IsMidVowel reports whether p is a vowel that is neither low nor high.
func (p *Phone) IsMidVowel() bool {
	return p.IsVowel() && !p.IsLowVowel() && !p.IsHighVowel()
}

// IsFrontVowel reports whether p is a vowel with [+front].
func (p *Phone) IsFrontVowel() bool {
	return p.IsVowel() && p.FeatureIs(FeatFront, feature.PLUS)
}

// IsBackVowel reports whether p is a vowel with [+back].
func (p *Phone) IsBackVowel() bool {
	return p.IsVowel() && p.FeatureIs(FeatBack, feature.PLUS)
}

// IsCentralVowel reports whether p is a vowel that is neither front nor
// back.
func (p *Phone) IsCentralVowel() bool {
	return p.IsVowel() && !p.IsFrontVowel() && !p.IsBackVowel()
}

// IsRoundedVowel reports whether p is a vowel with [+round].
func (p *Phone) IsRoundedVowel() bool {
	return p.IsVowel() && p.FeatureIs(FeatRound, feature.PLUS)
}

// IsVoicedConsonant reports whether p is a consonant with [+voice].
func (p *Phone) IsVoicedConsonant() bool {
	return p.IsConsonant() && p.FeatureIs(FeatVoice, feature.PLUS)
}

// IsStop reports whether p is a consonant with [-continuant].
func (p *Phone) IsStop() bool {
	return p.IsConsonant() && p.FeatureIs(FeatContinuant, feature.MINUS)
}

// IsNasalStop reports whether p is a stop with [+nasal].
func (p *Phone) IsNasalStop() bool {
	return p.IsStop() && p.FeatureIs(FeatNasal, feature.PLUS)
}

// IsApproximant reports whether p is a consonant, [+continuant] and
// [+sonorant].
func (p *Phone) IsApproximant() bool {
	return p.IsConsonant() && p.FeatureIs(FeatContinuant, feature.PLUS) && p.FeatureIs(FeatSonorant, feature.PLUS)
}

// IsLateralApproximant reports whether p is an approximant with
// [+lateral].
func (p *Phone) IsLateralApproximant() bool {
	return p.IsApproximant() && p.FeatureIs(FeatLateral, feature.PLUS)
}

// IsFricative reports whether p is a consonant, [+continuant] and
// [-sonorant].
func (p *Phone) IsFricative() bool {
	return p.IsConsonant() && p.FeatureIs(FeatContinuant, feature.PLUS) && p.FeatureIs(FeatSonorant, feature.MINUS)
}

// IsTone always returns false: the monophone model carries no tone tier.
func (p *Phone) IsTone() bool { return false }

// GetSonority implements spec.md §4.B's sonority scale, discriminated
// by predicate in the priority order below (matching MonoPhone's
// get_sonority cascade).
func (p *Phone) GetSonority() int {
	if p.IsVowel() {
		switch {
		case p.IsCentralVowel():
			return 10
		case p.IsLowVowel():
			return 13
		case p.IsMidVowel():
			return 12
		case p.IsHighVowel():
			return 11
		default:
			return -1
		}
	}
	switch {
	case p.IsLateralApproximant():
		return 8
	case p.IsApproximant():
		return 9
	case p.IsNasalStop():
		return 5
	case p.IsFricative() && p.IsVoicedConsonant():
		return 3
	case p.IsFricative():
		return 2
	case p.IsStop() && p.IsVoicedConsonant():
		return 2
	case p.IsStop():
		return 0
	default:
		return -1
	}
}
