package feature

import (
	"bufio"
	"fmt"
	"io/fs"
	"strings"
)

// IgnoreDistance is the default value of the constant the spec calls
// IGNORE_DISTANCE: Hamming candidates farther than this from a target
// feature vector are discarded by IPAFromFeatures. Callers that load a
// pkg/engineconfig document may override Model.IgnoreDistance per model.
const IgnoreDistance = 5

// Model is an immutable, shareable phonological feature model: a
// canonical feature order, a base-glyph -> feature-vector table, and a
// diacritic -> feature-override table. Once returned by Load/LoadBlobs
// its tables are never mutated, so it may be shared across goroutines
// and Words (spec §5); only the exported IgnoreDistance field may be
// set afterwards (engineconfig.Config.ApplyTo does so).
type Model struct {
	Name string

	features []string
	index    map[string]int // feature name -> position in features

	glyphs  []string           // insertion order, authoritative for tie-breaking
	vectors map[string][]Value // base-glyph -> dense vector, len(features)

	diacriticOrder []string                  // insertion order
	diacritics     map[string]map[string]Value // diacritic string -> {feature name: value}, NULL entries omitted

	IgnoreDistance int
}

// Features returns the canonical feature order. The returned slice must
// not be mutated by the caller.
func (m *Model) Features() []string { return m.features }

// FeatureIndex returns the position of name in the canonical order, or
// -1 if name is not a feature of this model.
func (m *Model) FeatureIndex(name string) int {
	if i, ok := m.index[name]; ok {
		return i
	}
	return -1
}

// Symbols returns every known base-glyph, in base-glyph-table insertion
// order (the order spec §9's Open Question designates authoritative for
// tie-breaking).
func (m *Model) Symbols() []string {
	out := make([]string, len(m.glyphs))
	copy(out, m.glyphs)
	return out
}

// Vector returns the stored feature vector for a base-glyph, and
// whether the glyph is known.
func (m *Model) Vector(glyph string) ([]Value, bool) {
	v, ok := m.vectors[glyph]
	return v, ok
}

// Diacritics returns every known diacritic string, in diacritic-table
// insertion order.
func (m *Model) Diacritics() []string {
	out := make([]string, len(m.diacriticOrder))
	copy(out, m.diacriticOrder)
	return out
}

// IsDiacritic reports whether s is a known diacritic of this model.
func (m *Model) IsDiacritic(s string) bool {
	_, ok := m.diacritics[s]
	return ok
}

func newModel(name string, features []string) *Model {
	idx := make(map[string]int, len(features))
	for i, f := range features {
		idx[f] = i
	}
	return &Model{
		Name:           name,
		features:       features,
		index:          idx,
		vectors:        make(map[string][]Value),
		diacritics:     make(map[string]map[string]Value),
		IgnoreDistance: IgnoreDistance,
	}
}

// Load reads a feature-set header file from fsys and the segment/
// diacritic table files it references, per spec §6's text format:
//
//	NAME <set name>
//	SEGMENTS <path to base-glyph table, relative to headerPath's dir>
//	DIACRITICS <path to diacritic table>
//	FEATURES <f1> <f2> ... <fN>
//
// followed by the two referenced files:
//
//	<glyph> <v1> <v2> ... <vN>   # one line per base-glyph, vi in {+,-,0}
//	<char> <±name> <±name> ...  # one line per diacritic
//
// Lines starting with '#' are comments in all three files.
func Load(fsys fs.FS, headerPath string) (*Model, error) {
	headerBlob, err := fs.ReadFile(fsys, headerPath)
	if err != nil {
		return nil, &LoadError{Kind: IOError, Msg: err.Error()}
	}

	name, segmentsPath, diacriticsPath, features, err := parseHeader(headerBlob)
	if err != nil {
		return nil, err
	}

	dir := ""
	if i := strings.LastIndexByte(headerPath, '/'); i >= 0 {
		dir = headerPath[:i+1]
	}

	segBlob, err := fs.ReadFile(fsys, dir+segmentsPath)
	if err != nil {
		return nil, &LoadError{Kind: IOError, Msg: err.Error()}
	}
	var dcBlob []byte
	if diacriticsPath != "" {
		dcBlob, err = fs.ReadFile(fsys, dir+diacriticsPath)
		if err != nil {
			return nil, &LoadError{Kind: IOError, Msg: err.Error()}
		}
	}

	return build(name, features, segBlob, dcBlob)
}

// LoadBlobs builds a Model directly from in-memory header, segment and
// diacritic documents, for callers that do not go through a
// filesystem (e.g. tests, or embedded feature sets).
func LoadBlobs(header, segments, diacritics []byte) (*Model, error) {
	name, _, _, features, err := parseHeader(header)
	if err != nil {
		return nil, err
	}
	return build(name, features, segments, diacritics)
}

func parseHeader(blob []byte) (name, segmentsPath, diacriticsPath string, features []string, err error) {
	scanner := bufio.NewScanner(strings.NewReader(string(blob)))
	haveFeatures := false
	for scanner.Scan() {
		line := stripComment(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		switch strings.ToUpper(fields[0]) {
		case "NAME":
			if len(fields) < 2 {
				return "", "", "", nil, &LoadError{Kind: MissingHeader, Msg: "NAME requires an argument"}
			}
			name = strings.Join(fields[1:], " ")
		case "SEGMENTS":
			if len(fields) < 2 {
				return "", "", "", nil, &LoadError{Kind: MissingHeader, Msg: "SEGMENTS requires a path"}
			}
			segmentsPath = fields[1]
		case "DIACRITICS":
			if len(fields) >= 2 {
				diacriticsPath = fields[1]
			}
		case "FEATURES":
			features = append([]string{}, fields[1:]...)
			haveFeatures = true
		default:
			return "", "", "", nil, &LoadError{Kind: MissingHeader, Msg: fmt.Sprintf("unknown header field %q", fields[0])}
		}
	}
	if err := scanner.Err(); err != nil {
		return "", "", "", nil, &LoadError{Kind: IOError, Msg: err.Error()}
	}
	if segmentsPath == "" || !haveFeatures {
		return "", "", "", nil, &LoadError{Kind: MissingHeader, Msg: "feature-set header missing SEGMENTS or FEATURES"}
	}
	return name, segmentsPath, diacriticsPath, features, nil
}

func build(name string, features []string, segBlob, dcBlob []byte) (*Model, error) {
	m := newModel(name, features)

	seen := make(map[string][]string) // vector key -> glyphs sharing it

	scanner := bufio.NewScanner(strings.NewReader(string(segBlob)))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := stripComment(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		glyph := fields[0]
		vals := fields[1:]
		if len(vals) != len(features) {
			return nil, &LoadError{Kind: VectorLengthMismatch, Line: lineNo,
				Msg: fmt.Sprintf("glyph %q has %d values, want %d", glyph, len(vals), len(features))}
		}
		vec := make([]Value, len(vals))
		for i, s := range vals {
			v, verr := ParseValue(s)
			if verr != nil {
				return nil, &LoadError{Kind: InvalidValue, Line: lineNo, Msg: verr.Error()}
			}
			vec[i] = v
		}
		if _, dup := m.vectors[glyph]; dup {
			return nil, &LoadError{Kind: DuplicateSymbol, Line: lineNo, Msg: fmt.Sprintf("glyph %q repeated", glyph)}
		}
		key := vectorKey(vec)
		if others := seen[key]; len(others) > 0 {
			return nil, &LoadError{Kind: DuplicateSymbol, Line: lineNo,
				Msg: fmt.Sprintf("glyph %q shares a feature vector with %v", glyph, others)}
		}
		seen[key] = append(seen[key], glyph)
		m.glyphs = append(m.glyphs, glyph)
		m.vectors[glyph] = vec
	}
	if err := scanner.Err(); err != nil {
		return nil, &LoadError{Kind: IOError, Msg: err.Error()}
	}
	if len(m.glyphs) == 0 {
		return nil, &LoadError{Kind: MissingHeader, Msg: "base-glyph table is empty"}
	}

	if dcBlob != nil {
		if err := loadDiacritics(m, dcBlob); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func loadDiacritics(m *Model, blob []byte) error {
	scanner := bufio.NewScanner(strings.NewReader(string(blob)))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := stripComment(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		ch := fields[0]
		overrides := make(map[string]Value, len(fields)-1)
		for _, tok := range fields[1:] {
			if len(tok) < 2 {
				return &LoadError{Kind: InvalidValue, Line: lineNo, Msg: fmt.Sprintf("malformed feature token %q", tok)}
			}
			v, err := ParseValue(tok[:1])
			if err != nil {
				return &LoadError{Kind: InvalidValue, Line: lineNo, Msg: err.Error()}
			}
			fname := tok[1:]
			if m.FeatureIndex(fname) < 0 {
				return &LoadError{Kind: InvalidValue, Line: lineNo, Msg: fmt.Sprintf("unknown feature %q", fname)}
			}
			if v != NULL {
				overrides[fname] = v
			}
		}
		if _, dup := m.diacritics[ch]; dup {
			return &LoadError{Kind: DuplicateSymbol, Line: lineNo, Msg: fmt.Sprintf("diacritic %q repeated", ch)}
		}
		m.diacriticOrder = append(m.diacriticOrder, ch)
		m.diacritics[ch] = overrides
	}
	return scanner.Err()
}

func stripComment(line string) string {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return ""
	}
	if idx := strings.IndexByte(line, '#'); idx >= 0 {
		line = strings.TrimSpace(line[:idx])
	}
	return line
}

func vectorKey(vec []Value) string {
	var b strings.Builder
	b.Grow(len(vec))
	for _, v := range vec {
		b.WriteString(v.String())
	}
	return b.String()
}
