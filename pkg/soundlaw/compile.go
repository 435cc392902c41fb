package soundlaw

import (
	"fmt"

	"github.com/laut-go/diachron/pkg/feature"
	"github.com/laut-go/diachron/pkg/phone"
	"github.com/laut-go/diachron/pkg/syllable"
)

// compiler holds the state threaded through one Compile call: the
// active feature model (phoneme literals tokenize against it and its
// base glyphs/diacritics), the function library for CALL statements,
// and the warnings accumulated along the way.
type compiler struct {
	model    *feature.Model
	lib      Library
	warnings []UnknownFunctionWarning
}

// Compile translates program source into a runtime Program against m,
// resolving CALL statements through lib. A syntactically valid program
// never fails Compile outright over an unrecognized function name --
// see UnknownFunctionWarning -- but does fail over domain/codomain
// length mismatches, unknown feature names, and similar semantic
// errors (*CompileError), or over malformed source (*SyntaxError).
func Compile(src string, m *feature.Model, lib Library) (*Program, []UnknownFunctionWarning, error) {
	ast, err := parseSource(src)
	if err != nil {
		return nil, nil, err
	}
	c := &compiler{model: m, lib: lib}
	prog := &Program{LibraryName: ast.LibraryName, LibraryVersion: ast.LibraryVersion}
	for _, item := range ast.Items {
		switch it := item.(type) {
		case *astLaw:
			g, err := c.compileLaw(it)
			if err != nil {
				return nil, nil, err
			}
			prog.Groups = append(prog.Groups, g)
		case *astGroup:
			for _, law := range it.Laws {
				g, err := c.compileLaw(law)
				if err != nil {
					return nil, nil, err
				}
				prog.Groups = append(prog.Groups, g)
			}
		}
	}
	return prog, c.warnings, nil
}

func (c *compiler) compileLaw(law *astLaw) (*Group, error) {
	g := &Group{Name: law.Meta.Name}
	for _, stmt := range law.Statements {
		rules, err := c.compileStatement(stmt)
		if err != nil {
			return nil, err
		}
		g.Rules = append(g.Rules, rules...)
	}
	return g, nil
}

func (c *compiler) compileStatement(stmt astStatement) ([]*Rule, error) {
	switch s := stmt.(type) {
	case *astSimpleStmt:
		r, err := c.compileSimpleStmt(s)
		if err != nil {
			return nil, err
		}
		return []*Rule{r}, nil
	case *astMultipleStmt:
		return c.compileMultipleStmt(s)
	case *astFeatureChangeStmt:
		r, err := c.compileFeatureChangeStmt(s)
		if err != nil {
			return nil, err
		}
		return []*Rule{r}, nil
	case *astReplaceByFeatureStmt:
		r, err := c.compileReplaceByFeatureStmt(s)
		if err != nil {
			return nil, err
		}
		return []*Rule{r}, nil
	case *astCallStmt:
		r, err := c.compileCallStmt(s)
		if err != nil {
			return nil, err
		}
		return []*Rule{r}, nil
	default:
		return nil, &CompileError{Msg: "unknown statement kind"}
	}
}

// tokenizePhoneme splits a phoneme literal's raw text into one or more
// IPA symbols by greedy base-glyph then trailing-diacritic matching,
// the same algorithm pkg/syllable's IPA tokenizer uses.
func tokenizePhoneme(m *feature.Model, raw string) ([]string, error) {
	runes := []rune(raw)
	maxGlyph := maxRuneLen(m.Symbols())
	maxDC := maxRuneLen(m.Diacritics())

	var tokens []string
	i := 0
	for i < len(runes) {
		glyphLen := 0
		for length := maxGlyph; length >= 1; length-- {
			if i+length > len(runes) {
				continue
			}
			if _, ok := m.Vector(string(runes[i : i+length])); ok {
				glyphLen = length
				break
			}
		}
		if glyphLen == 0 {
			return nil, fmt.Errorf("soundlaw: unrecognized IPA segment at %q", string(runes[i:]))
		}
		j := i + glyphLen
		for j < len(runes) {
			dcLen := 0
			for length := maxDC; length >= 1; length-- {
				if j+length > len(runes) {
					continue
				}
				if m.IsDiacritic(string(runes[j : j+length])) {
					dcLen = length
					break
				}
			}
			if dcLen == 0 {
				break
			}
			j += dcLen
		}
		tokens = append(tokens, string(runes[i:j]))
		i = j
	}
	return tokens, nil
}

func maxRuneLen(symbols []string) int {
	max := 1
	for _, s := range symbols {
		if n := len([]rune(s)); n > max {
			max = n
		}
	}
	return max
}

func (c *compiler) phonemeTemplate(raw string, pos Pos) ([]*phone.Phoneme, error) {
	syms, err := tokenizePhoneme(c.model, raw)
	if err != nil {
		return nil, &CompileError{Pos: pos, Msg: err.Error()}
	}
	out := make([]*phone.Phoneme, len(syms))
	for i, sym := range syms {
		ph, err := phone.FromIPA(c.model, sym)
		if err != nil {
			return nil, &CompileError{Pos: pos, Msg: fmt.Sprintf("unrecognized phoneme %q: %v", sym, err)}
		}
		out[i] = phone.NewPhoneme(ph)
	}
	return out, nil
}

func domainSymbols(template []*phone.Phoneme) []string {
	out := make([]string, len(template))
	for i, ph := range template {
		out[i] = ph.Phone.Symbol()
	}
	return out
}

func (c *compiler) compileSimpleStmt(s *astSimpleStmt) (*Rule, error) {
	domainTemplate, err := c.phonemeTemplate(s.Domain.Raw, s.Domain.Pos)
	if err != nil {
		return nil, err
	}
	width := len(domainTemplate)
	wantSyms := domainSymbols(domainTemplate)

	domain := func(c *Cursor) bool {
		win := c.Window(width)
		if win == nil {
			return false
		}
		for i, ph := range win {
			if ph.Phone.Symbol() != wantSyms[i] {
				return false
			}
		}
		return true
	}

	clauses := make([]Clause, len(s.Clauses))
	for i, cl := range s.Clauses {
		lit := cl.Codomain.(astPhonemeLit)
		template, err := c.phonemeTemplate(lit.Raw, lit.Pos)
		if err != nil {
			return nil, err
		}
		var cond func(*Cursor) bool
		if cl.Cond != nil {
			cond, err = c.compileCondition(cl.Cond)
			if err != nil {
				return nil, err
			}
		}
		clauses[i] = Clause{Cond: cond, PhonemeCodomain: staticPhonemeCodomain(template)}
	}
	return &Rule{Pos: s.Pos, Target: TargetPhoneme, Width: width, Domain: domain, Clauses: clauses}, nil
}

func staticPhonemeCodomain(template []*phone.Phoneme) func(*Cursor) ([]*phone.Phoneme, error) {
	return func(*Cursor) ([]*phone.Phoneme, error) {
		out := make([]*phone.Phoneme, len(template))
		for i, ph := range template {
			out[i] = ph.Copy()
		}
		return out, nil
	}
}

func (c *compiler) compileMultipleStmt(s *astMultipleStmt) ([]*Rule, error) {
	n := len(s.Domain.Items)
	domainTemplates := make([][]*phone.Phoneme, n)
	for i, item := range s.Domain.Items {
		t, err := c.phonemeTemplate(item.Raw, item.Pos)
		if err != nil {
			return nil, err
		}
		if len(t) != 1 {
			return nil, &CompileError{Pos: item.Pos, Msg: "multiple-unconditional domain entries must be single phonemes"}
		}
		domainTemplates[i] = t
	}

	// Pre-resolve every clause's codomain list once, checked for length.
	type resolvedClause struct {
		codomains []*phone.Phoneme // one per domain item, index-aligned
		cond      func(*Cursor) bool
	}
	resolved := make([]resolvedClause, len(s.Clauses))
	for ci, cl := range s.Clauses {
		list := cl.Codomain.(astPhonemeList)
		if len(list.Items) != n {
			return nil, &CompileError{Pos: list.Pos, Msg: fmt.Sprintf("codomain has %d entries, want %d to match the domain", len(list.Items), n)}
		}
		out := make([]*phone.Phoneme, n)
		for i, item := range list.Items {
			t, err := c.phonemeTemplate(item.Raw, item.Pos)
			if err != nil {
				return nil, err
			}
			if len(t) != 1 {
				return nil, &CompileError{Pos: item.Pos, Msg: "multiple-unconditional codomain entries must be single phonemes"}
			}
			out[i] = t[0]
		}
		var cond func(*Cursor) bool
		if cl.Cond != nil {
			var err error
			cond, err = c.compileCondition(cl.Cond)
			if err != nil {
				return nil, err
			}
		}
		resolved[ci] = resolvedClause{codomains: out, cond: cond}
	}

	rules := make([]*Rule, n)
	for i := 0; i < n; i++ {
		i := i
		sym := domainTemplates[i][0].Phone.Symbol()
		domain := func(c *Cursor) bool {
			ph := c.PhonemeAtIndex(c.PhonemeIndex)
			return ph != nil && ph.Phone.Symbol() == sym
		}
		clauses := make([]Clause, len(resolved))
		for ci, rc := range resolved {
			template := rc.codomains[i]
			clauses[ci] = Clause{Cond: rc.cond, PhonemeCodomain: staticPhonemeCodomain([]*phone.Phoneme{template})}
		}
		rules[i] = &Rule{Pos: s.Pos, Target: TargetPhoneme, Width: 1, Domain: domain, Clauses: clauses}
	}
	return rules, nil
}

func (c *compiler) compileFeatureBracket(br astFeatureBracket) (func(*phone.Phone) bool, error) {
	for _, ov := range br.Overrides {
		if c.model.FeatureIndex(ov.Name) < 0 {
			return nil, &CompileError{Pos: br.Pos, Msg: fmt.Sprintf("unknown feature %q", ov.Name)}
		}
	}
	overrides := append([]astFeatureOverride(nil), br.Overrides...)
	return func(ph *phone.Phone) bool {
		for _, ov := range overrides {
			if !ph.FeatureIs(ov.Name, ov.Value) {
				return false
			}
		}
		return true
	}, nil
}

func (c *compiler) compileFeatureChangeStmt(s *astFeatureChangeStmt) (*Rule, error) {
	match, err := c.compileFeatureBracket(s.Domain)
	if err != nil {
		return nil, err
	}
	domain := func(c *Cursor) bool {
		ph := c.PhonemeAtIndex(c.PhonemeIndex)
		return ph != nil && match(ph.Phone)
	}

	clauses := make([]Clause, len(s.Clauses))
	for i, cl := range s.Clauses {
		br := cl.Codomain.(astFeatureBracket)
		for _, ov := range br.Overrides {
			if c.model.FeatureIndex(ov.Name) < 0 {
				return nil, &CompileError{Pos: br.Pos, Msg: fmt.Sprintf("unknown feature %q", ov.Name)}
			}
		}
		overrides := append([]astFeatureOverride(nil), br.Overrides...)
		var cond func(*Cursor) bool
		if cl.Cond != nil {
			var err error
			cond, err = c.compileCondition(cl.Cond)
			if err != nil {
				return nil, err
			}
		}
		clauses[i] = Clause{Cond: cond, PhonemeCodomain: func(c *Cursor) ([]*phone.Phoneme, error) {
			ph := c.PhonemeAtIndex(c.PhonemeIndex)
			out := ph.Copy()
			for _, ov := range overrides {
				if err := out.Phone.SetFeature(ov.Name, ov.Value); err != nil {
					return nil, err
				}
			}
			return []*phone.Phoneme{out}, nil
		}}
	}
	return &Rule{Pos: s.Pos, Target: TargetPhoneme, Width: 1, Domain: domain, Clauses: clauses}, nil
}

func (c *compiler) compileReplaceByFeatureStmt(s *astReplaceByFeatureStmt) (*Rule, error) {
	match, err := c.compileFeatureBracket(s.Domain)
	if err != nil {
		return nil, err
	}
	domain := func(c *Cursor) bool {
		ph := c.PhonemeAtIndex(c.PhonemeIndex)
		return ph != nil && match(ph.Phone)
	}

	clauses := make([]Clause, len(s.Clauses))
	for i, cl := range s.Clauses {
		lit := cl.Codomain.(astPhonemeLit)
		template, err := c.phonemeTemplate(lit.Raw, lit.Pos)
		if err != nil {
			return nil, err
		}
		if len(template) != 1 {
			return nil, &CompileError{Pos: lit.Pos, Msg: "a replace-by-feature codomain must be a single phoneme"}
		}
		var cond func(*Cursor) bool
		if cl.Cond != nil {
			cond, err = c.compileCondition(cl.Cond)
			if err != nil {
				return nil, err
			}
		}
		clauses[i] = Clause{Cond: cond, PhonemeCodomain: staticPhonemeCodomain(template)}
	}
	return &Rule{Pos: s.Pos, Target: TargetPhoneme, Width: 1, Domain: domain, Clauses: clauses}, nil
}

func (c *compiler) compileCallStmt(s *astCallStmt) (*Rule, error) {
	fn, ok := func() (Func, bool) {
		if c.lib == nil {
			return nil, false
		}
		return c.lib.Lookup(s.Name)
	}()
	if !ok {
		c.warnings = append(c.warnings, UnknownFunctionWarning{Pos: s.Pos, Name: s.Name})
		return IdentityRule(s.Pos), nil
	}
	args := make([]Value, len(s.Args))
	for i, a := range s.Args {
		v, err := c.resolveArg(a)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	rule, err := fn(Call{Pos: s.Pos, Model: c.model, Name: s.Name, Args: args})
	if err != nil {
		return nil, &CompileError{Pos: s.Pos, Msg: fmt.Sprintf("%s: %v", s.Name, err)}
	}
	return rule, nil
}

func (c *compiler) resolveArg(a astArg) (Value, error) {
	switch v := a.(type) {
	case astArgPhoneme:
		syms, err := tokenizePhoneme(c.model, v.Lit.Raw)
		if err != nil {
			return Value{}, &CompileError{Pos: v.Lit.Pos, Msg: err.Error()}
		}
		return Value{Phonemes: syms}, nil
	case astArgPhonemeList:
		lists := make([][]string, len(v.Lits))
		for i, lit := range v.Lits {
			syms, err := tokenizePhoneme(c.model, lit.Raw)
			if err != nil {
				return Value{}, &CompileError{Pos: lit.Pos, Msg: err.Error()}
			}
			lists[i] = syms
		}
		return Value{PhonemeLists: lists}, nil
	case astArgFeature:
		m := make(map[string]feature.Value, len(v.Bracket.Overrides))
		order := make([]string, 0, len(v.Bracket.Overrides))
		for _, ov := range v.Bracket.Overrides {
			if c.model.FeatureIndex(ov.Name) < 0 {
				return Value{}, &CompileError{Pos: v.Bracket.Pos, Msg: fmt.Sprintf("unknown feature %q", ov.Name)}
			}
			m[ov.Name] = ov.Value
			order = append(order, ov.Name)
		}
		return Value{Features: m, FeatureOrder: order}, nil
	case astArgNumber:
		return Value{Number: v.Value, HasNumber: true}, nil
	case astArgString:
		return Value{Text: v.Value}, nil
	case astArgIdent:
		return Value{Text: v.Value}, nil
	default:
		return Value{}, &CompileError{Msg: "unknown argument kind"}
	}
}

// Conditions.

func (c *compiler) compileCondition(cond astCondition) (func(*Cursor) bool, error) {
	switch v := cond.(type) {
	case astNot:
		inner, err := c.compileCondition(v.Inner)
		if err != nil {
			return nil, err
		}
		return func(c *Cursor) bool { return !inner(c) }, nil
	case astAnd:
		l, err := c.compileCondition(v.Left)
		if err != nil {
			return nil, err
		}
		r, err := c.compileCondition(v.Right)
		if err != nil {
			return nil, err
		}
		return func(c *Cursor) bool { return l(c) && r(c) }, nil
	case astOr:
		l, err := c.compileCondition(v.Left)
		if err != nil {
			return nil, err
		}
		r, err := c.compileCondition(v.Right)
		if err != nil {
			return nil, err
		}
		return func(c *Cursor) bool { return l(c) || r(c) }, nil
	case astRelative:
		return c.compileRelative(v)
	case astPathBool:
		return c.compilePathBool(v)
	case astIn:
		return c.compileIn(v)
	case astIs:
		return c.compileIs(v)
	case astEq:
		return c.compileEq(v)
	default:
		return nil, &CompileError{Msg: "unknown condition kind"}
	}
}

type relSlotMatcher struct {
	offset int
	match  func(ph *phone.Phoneme) bool
}

// compileRelative implements the relative_expr family of PyLautLang's
// Transformer (relative_expr/offset/index) as a single closure: every
// non-"_" slot becomes an offset + predicate pair evaluated against the
// flat phoneme sequence anchored at the matched window's start, plus
// at most one leading and one trailing "#" edge-distance assertion
// (spec.md §4.D's Open Question on "#").
func (c *compiler) compileRelative(rel astRelative) (func(*Cursor) bool, error) {
	thisIdx := -1
	for i, slot := range rel.Slots {
		if slot.Kind == relCurrent {
			thisIdx = i
			break
		}
	}
	if thisIdx < 0 {
		return nil, &CompileError{Pos: rel.Pos, Msg: "relative expression missing _"}
	}

	var matchers []relSlotMatcher
	for i, slot := range rel.Slots {
		if i == thisIdx {
			continue
		}
		offset := i - thisIdx
		switch slot.Kind {
		case relPhoneme:
			syms, err := tokenizePhoneme(c.model, slot.Phoneme.Raw)
			if err != nil {
				return nil, &CompileError{Pos: rel.Pos, Msg: err.Error()}
			}
			if len(syms) != 1 {
				return nil, &CompileError{Pos: rel.Pos, Msg: "a relative expression slot must be a single phoneme"}
			}
			sym := syms[0]
			matchers = append(matchers, relSlotMatcher{offset: offset, match: func(ph *phone.Phoneme) bool {
				return ph.Phone.Symbol() == sym
			}})
		case relFeature:
			match, err := c.compileFeatureBracket(slot.Feature)
			if err != nil {
				return nil, err
			}
			matchers = append(matchers, relSlotMatcher{offset: offset, match: func(ph *phone.Phoneme) bool {
				return match(ph.Phone)
			}})
		}
	}

	leftCount := thisIdx
	rightCount := len(rel.Slots) - 1 - thisIdx
	leftEdge, rightEdge := rel.LeftEdge, rel.RightEdge

	return func(cur *Cursor) bool {
		base := cur.PhonemeIndex
		for _, m := range matchers {
			ph := cur.PhonemeAtIndex(base + m.offset)
			if ph == nil || !m.match(ph) {
				return false
			}
		}
		if leftEdge && base != leftCount {
			return false
		}
		if rightEdge && base != cur.Len()-1-rightCount {
			return false
		}
		return true
	}, nil
}

func (c *compiler) resolveSyllable(cur *Cursor, path astPathExpr) *syllable.Syllable {
	idx := path.Index.N
	if path.Index.Relative {
		idx = cur.SyllableIndex + path.Index.N
	}
	return cur.SyllableAtIndex(idx)
}

func (c *compiler) resolvePhoneme(cur *Cursor, path astPathExpr) *phone.Phoneme {
	idx := path.Index.N
	if path.Index.Relative {
		idx = cur.PhonemeIndex + path.Index.N
	}
	return cur.PhonemeAtIndex(idx)
}

func (c *compiler) compilePathBool(v astPathBool) (func(*Cursor) bool, error) {
	path := v.Path
	switch path.Field {
	case "is_monosyllable":
		if path.Counter != "Syllable" {
			return nil, &CompileError{Pos: path.Pos, Msg: "is_monosyllable applies to Syllable[...]"}
		}
		return func(cur *Cursor) bool {
			syl := c.resolveSyllable(cur, path)
			return syl != nil && syl.Position == syllable.Monosyllable
		}, nil
	case "is_stressed":
		if path.Counter != "Syllable" {
			return nil, &CompileError{Pos: path.Pos, Msg: "is_stressed applies to Syllable[...]"}
		}
		return func(cur *Cursor) bool {
			syl := c.resolveSyllable(cur, path)
			return syl != nil && syl.Stressed
		}, nil
	default:
		return nil, &CompileError{Pos: path.Pos, Msg: fmt.Sprintf("%q is not a boolean path field", path.Field)}
	}
}

func (c *compiler) compileIn(v astIn) (func(*Cursor) bool, error) {
	if v.Path.Counter != "Phoneme" || v.Entity.Counter != "Syllable" {
		return nil, &CompileError{Pos: v.Pos, Msg: "\"in\" requires Phoneme[...] in Syllable[...]"}
	}
	path, entity := v.Path, v.Entity
	return func(cur *Cursor) bool {
		idx := path.Index.N
		if path.Index.Relative {
			idx = cur.PhonemeIndex + path.Index.N
		}
		if cur.PhonemeAtIndex(idx) == nil {
			return false
		}
		want := entity.Index.N
		if entity.Index.Relative {
			want = cur.SyllableIndex + entity.Index.N
		}
		return cur.SyllableOfPhoneme(idx) == want
	}, nil
}

func pathString(cur *Cursor, rc *compiler, path astPathExpr) (string, bool) {
	switch path.Counter {
	case "Phoneme":
		ph := rc.resolvePhoneme(cur, path)
		if ph == nil {
			return "", false
		}
		if path.Field == "" {
			return ph.Phone.Symbol(), true
		}
		return "", false
	case "Syllable":
		syl := rc.resolveSyllable(cur, path)
		if syl == nil {
			return "", false
		}
		st, err := syl.GetStructure()
		switch path.Field {
		case "":
			return syl.String(), true
		case "onset":
			if err != nil {
				return "", false
			}
			return symbolsOf(st.Onset), true
		case "nucleus":
			if err != nil {
				return "", false
			}
			return symbolsOf(st.Nucleus), true
		case "coda":
			if err != nil {
				return "", false
			}
			return symbolsOf(st.Coda), true
		case "quality":
			if syl.ContainsVowel() {
				return "vowel", true
			}
			return "consonant", true
		}
	}
	return "", false
}

func symbolsOf(phs []*phone.Phoneme) string {
	out := ""
	for _, p := range phs {
		out += p.Phone.Symbol()
	}
	return out
}

func (c *compiler) compileIs(v astIs) (func(*Cursor) bool, error) {
	path := v.Path
	val := v.Value
	if path.Field == "is_monosyllable" || path.Field == "is_stressed" {
		b, err := c.compilePathBool(astPathBool{Path: path})
		if err != nil {
			return nil, err
		}
		if val.Kind != valBool {
			return nil, &CompileError{Pos: v.Pos, Msg: fmt.Sprintf("%q expects a boolean value", path.Field)}
		}
		want := val.Bool
		return func(cur *Cursor) bool { return b(cur) == want }, nil
	}
	want := val.Text
	return func(cur *Cursor) bool {
		s, ok := pathString(cur, c, path)
		return ok && s == want
	}, nil
}

func (c *compiler) compileEq(v astEq) (func(*Cursor) bool, error) {
	left, right := v.Left, v.Right
	return func(cur *Cursor) bool {
		ls, ok1 := pathString(cur, c, left)
		rs, ok2 := pathString(cur, c, right)
		return ok1 && ok2 && ls == rs
	}, nil
}
