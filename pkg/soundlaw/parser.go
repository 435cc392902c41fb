package soundlaw

import (
	"strconv"
	"strings"

	"github.com/laut-go/diachron/pkg/feature"
)

type parser struct {
	toks []token
	i    int
}

// parseSource lexes and parses src into an AST, independent of any feature
// model. Syntax errors are returned as *SyntaxError.
func parseSource(src string) (*astProgram, error) {
	lx := newLexer(src)
	var toks []token
	for {
		t, err := lx.next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, t)
		if t.kind == tEOF {
			break
		}
	}
	p := &parser{toks: toks}
	return p.parseProgram()
}

func (p *parser) cur() token  { return p.toks[p.i] }
func (p *parser) at(k tokenKind) bool { return p.cur().kind == k }
func (p *parser) atKeyword(kw string) bool {
	return p.cur().kind == tKeyword && p.cur().text == kw
}

func (p *parser) advance() token {
	t := p.toks[p.i]
	if p.i < len(p.toks)-1 {
		p.i++
	}
	return t
}

func (p *parser) expect(k tokenKind, what string) (token, error) {
	if !p.at(k) {
		return token{}, &SyntaxError{Pos: p.cur().pos, Msg: "expected " + what}
	}
	return p.advance(), nil
}

func (p *parser) expectKeyword(kw string) error {
	if !p.atKeyword(kw) {
		return &SyntaxError{Pos: p.cur().pos, Msg: "expected keyword " + kw}
	}
	p.advance()
	return nil
}

// parseProgram parses an optional "LIBRARY "name" VERSION "version""
// document header, in either order, before the law/group items --
// PyLautLang's sc_lib_name/sc_lib_version header recast as leading
// keyword-value pairs instead of a separate metadata file.
func (p *parser) parseProgram() (*astProgram, error) {
	prog := &astProgram{}
	for headerDone := false; !headerDone; {
		switch {
		case p.atKeyword("LIBRARY"):
			p.advance()
			s, err := p.expect(tString, "a string after LIBRARY")
			if err != nil {
				return nil, err
			}
			prog.LibraryName = s.text
		case p.atKeyword("VERSION"):
			p.advance()
			s, err := p.expect(tString, "a string after VERSION")
			if err != nil {
				return nil, err
			}
			prog.LibraryVersion = s.text
		default:
			headerDone = true
		}
	}
	for !p.at(tEOF) {
		item, err := p.parseItem()
		if err != nil {
			return nil, err
		}
		prog.Items = append(prog.Items, item)
	}
	return prog, nil
}

func (p *parser) parseItem() (astItem, error) {
	switch {
	case p.atKeyword("CHANGE"):
		return p.parseLaw()
	case p.atKeyword("GROUP"):
		return p.parseGroup()
	default:
		return nil, &SyntaxError{Pos: p.cur().pos, Msg: "expected CHANGE or GROUP"}
	}
}

func (p *parser) parseMeta() (astMeta, error) {
	var m astMeta
	for {
		switch {
		case p.atKeyword("NAME"):
			p.advance()
			s, err := p.expect(tString, "a string after NAME")
			if err != nil {
				return m, err
			}
			m.Name = s.text
		case p.atKeyword("DESCRIPTION"):
			p.advance()
			s, err := p.expect(tString, "a string after DESCRIPTION")
			if err != nil {
				return m, err
			}
			m.Description = s.text
		case p.atKeyword("DATE"):
			p.advance()
			s, err := p.expect(tString, "a string after DATE")
			if err != nil {
				return m, err
			}
			m.Date = s.text
		default:
			return m, nil
		}
	}
}

func (p *parser) parseLaw() (*astLaw, error) {
	pos := p.cur().pos
	p.advance() // CHANGE
	meta, err := p.parseMeta()
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("BEGIN"); err != nil {
		return nil, err
	}
	law := &astLaw{Pos: pos, Meta: meta}
	for !p.atKeyword("END") {
		if p.at(tEOF) {
			return nil, &SyntaxError{Pos: p.cur().pos, Msg: "unexpected end of input inside CHANGE block"}
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		law.Statements = append(law.Statements, stmt)
	}
	p.advance() // END
	return law, nil
}

func (p *parser) parseGroup() (*astGroup, error) {
	pos := p.cur().pos
	p.advance() // GROUP
	meta, err := p.parseMeta()
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("BEGIN"); err != nil {
		return nil, err
	}
	g := &astGroup{Pos: pos, Meta: meta}
	for !p.atKeyword("END") {
		if !p.atKeyword("CHANGE") {
			return nil, &SyntaxError{Pos: p.cur().pos, Msg: "expected CHANGE inside GROUP block"}
		}
		law, err := p.parseLaw()
		if err != nil {
			return nil, err
		}
		g.Laws = append(g.Laws, law)
	}
	p.advance() // END
	return g, nil
}

func (p *parser) parseStatement() (astStatement, error) {
	pos := p.cur().pos
	switch {
	case p.at(tPhoneme):
		lit := p.parsePhonemeLit()
		clauses, err := p.parseArrowChainPhoneme()
		if err != nil {
			return nil, err
		}
		return &astSimpleStmt{Pos: pos, Domain: lit, Clauses: clauses}, nil
	case p.at(tLBrace):
		list, err := p.parsePhonemeList()
		if err != nil {
			return nil, err
		}
		clauses, err := p.parseArrowChainPhonemeList()
		if err != nil {
			return nil, err
		}
		return &astMultipleStmt{Pos: pos, Domain: list, Clauses: clauses}, nil
	case p.at(tLBracket):
		br, err := p.parseFeatureBracket()
		if err != nil {
			return nil, err
		}
		// Disambiguate feature-change (codomain is a bracket) from
		// replace-by-feature (codomain is a phoneme literal) on the
		// first codomain we see.
		return p.parseArrowChainAfterFeatureDomain(pos, br)
	case p.at(tIdent):
		return p.parseCallStmt()
	default:
		return nil, &SyntaxError{Pos: pos, Msg: "expected a phoneme literal, {...}, [...] or a function call"}
	}
}

func (p *parser) parsePhonemeLit() astPhonemeLit {
	t := p.advance()
	return astPhonemeLit{Pos: t.pos, Raw: t.text}
}

func (p *parser) parsePhonemeList() (astPhonemeList, error) {
	pos := p.cur().pos
	if _, err := p.expect(tLBrace, "{"); err != nil {
		return astPhonemeList{}, err
	}
	list := astPhonemeList{Pos: pos}
	for {
		if !p.at(tPhoneme) {
			return astPhonemeList{}, &SyntaxError{Pos: p.cur().pos, Msg: "expected a phoneme literal in {...} list"}
		}
		list.Items = append(list.Items, p.parsePhonemeLit())
		if p.at(tComma) {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(tRBrace, "}"); err != nil {
		return astPhonemeList{}, err
	}
	return list, nil
}

func (p *parser) parseFeatureBracket() (astFeatureBracket, error) {
	pos := p.cur().pos
	if _, err := p.expect(tLBracket, "["); err != nil {
		return astFeatureBracket{}, err
	}
	br := astFeatureBracket{Pos: pos}
	for !p.at(tRBracket) {
		var v feature.Value
		switch {
		case p.at(tPlus):
			p.advance()
			v = feature.PLUS
		case p.at(tMinus):
			p.advance()
			v = feature.MINUS
		default:
			return astFeatureBracket{}, &SyntaxError{Pos: p.cur().pos, Msg: "expected + or - before a feature name"}
		}
		name, err := p.expect(tIdent, "a feature name")
		if err != nil {
			return astFeatureBracket{}, err
		}
		br.Overrides = append(br.Overrides, astFeatureOverride{Name: name.text, Value: v})
	}
	p.advance() // ]
	return br, nil
}

// parseArrowChainPhoneme parses "-> /x/" or one-or-more "=> /x/ | cond"
// clauses ending in a default "=> /x/".
func (p *parser) parseArrowChainPhoneme() ([]astClause, error) {
	var clauses []astClause
	if p.at(tArrow) {
		p.advance()
		if !p.at(tPhoneme) {
			return nil, &SyntaxError{Pos: p.cur().pos, Msg: "expected a phoneme literal after ->"}
		}
		lit := p.parsePhonemeLit()
		return []astClause{{Codomain: lit}}, nil
	}
	for p.at(tFatArrow) {
		p.advance()
		if !p.at(tPhoneme) {
			return nil, &SyntaxError{Pos: p.cur().pos, Msg: "expected a phoneme literal after =>"}
		}
		lit := p.parsePhonemeLit()
		if p.at(tPipe) {
			p.advance()
			cond, err := p.parseCondition()
			if err != nil {
				return nil, err
			}
			clauses = append(clauses, astClause{Codomain: lit, Cond: cond})
			continue
		}
		clauses = append(clauses, astClause{Codomain: lit})
		return clauses, nil
	}
	if len(clauses) == 0 {
		return nil, &SyntaxError{Pos: p.cur().pos, Msg: "expected -> or =>"}
	}
	return clauses, nil
}

func (p *parser) parseArrowChainPhonemeList() ([]astClause, error) {
	var clauses []astClause
	if p.at(tArrow) {
		p.advance()
		if !p.at(tLBrace) {
			return nil, &SyntaxError{Pos: p.cur().pos, Msg: "expected {...} after ->"}
		}
		list, err := p.parsePhonemeList()
		if err != nil {
			return nil, err
		}
		return []astClause{{Codomain: list}}, nil
	}
	for p.at(tFatArrow) {
		p.advance()
		if !p.at(tLBrace) {
			return nil, &SyntaxError{Pos: p.cur().pos, Msg: "expected {...} after =>"}
		}
		list, err := p.parsePhonemeList()
		if err != nil {
			return nil, err
		}
		if p.at(tPipe) {
			p.advance()
			cond, err := p.parseCondition()
			if err != nil {
				return nil, err
			}
			clauses = append(clauses, astClause{Codomain: list, Cond: cond})
			continue
		}
		clauses = append(clauses, astClause{Codomain: list})
		return clauses, nil
	}
	if len(clauses) == 0 {
		return nil, &SyntaxError{Pos: p.cur().pos, Msg: "expected -> or =>"}
	}
	return clauses, nil
}

// parseArrowChainAfterFeatureDomain parses the arrow chain following a
// feature-bracket domain, producing either an astFeatureChangeStmt
// (bracket codomain) or an astReplaceByFeatureStmt (phoneme codomain)
// depending on what follows the first arrow.
func (p *parser) parseArrowChainAfterFeatureDomain(pos Pos, domain astFeatureBracket) (astStatement, error) {
	isArrow := p.at(tArrow)
	isFat := p.at(tFatArrow)
	if !isArrow && !isFat {
		return nil, &SyntaxError{Pos: p.cur().pos, Msg: "expected -> or => after [...]"}
	}
	p.advance()

	var clauses []astClause
	replaceByFeature := false
	for {
		switch {
		case p.at(tLBracket):
			br, err := p.parseFeatureBracket()
			if err != nil {
				return nil, err
			}
			clauses = append(clauses, astClause{Codomain: br})
		case p.at(tPhoneme):
			replaceByFeature = true
			lit := p.parsePhonemeLit()
			clauses = append(clauses, astClause{Codomain: lit})
		default:
			return nil, &SyntaxError{Pos: p.cur().pos, Msg: "expected [...] or a phoneme literal as codomain"}
		}

		if isArrow {
			break // unconditional, single clause
		}
		if p.at(tPipe) {
			p.advance()
			cond, err := p.parseCondition()
			if err != nil {
				return nil, err
			}
			clauses[len(clauses)-1].Cond = cond
			if !p.at(tFatArrow) {
				break // no "=>" follows: the chain ends without a default clause
			}
			p.advance()
			continue
		}
		break // this clause had no "|", so it is the default
	}

	if replaceByFeature {
		return &astReplaceByFeatureStmt{Pos: pos, Domain: domain, Clauses: clauses}, nil
	}
	return &astFeatureChangeStmt{Pos: pos, Domain: domain, Clauses: clauses}, nil
}

func (p *parser) parseCallStmt() (*astCallStmt, error) {
	pos := p.cur().pos
	name, err := p.expect(tIdent, "a function name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tLParen, "("); err != nil {
		return nil, err
	}
	stmt := &astCallStmt{Pos: pos, Name: name.text}
	if !p.at(tRParen) {
		for {
			arg, err := p.parseArg()
			if err != nil {
				return nil, err
			}
			stmt.Args = append(stmt.Args, arg)
			if p.at(tComma) {
				p.advance()
				continue
			}
			break
		}
	}
	if _, err := p.expect(tRParen, ")"); err != nil {
		return nil, err
	}
	return stmt, nil
}

func (p *parser) parseArg() (astArg, error) {
	switch {
	case p.at(tPhoneme):
		return astArgPhoneme{Lit: p.parsePhonemeLit()}, nil
	case p.at(tLBrace):
		list, err := p.parsePhonemeList()
		if err != nil {
			return nil, err
		}
		return astArgPhonemeList{Lits: list.Items}, nil
	case p.at(tLBracket):
		br, err := p.parseFeatureBracket()
		if err != nil {
			return nil, err
		}
		return astArgFeature{Bracket: br}, nil
	case p.at(tString):
		return astArgString{Value: p.advance().text}, nil
	case p.at(tNumber):
		n, _ := strconv.ParseFloat(p.advance().text, 64)
		return astArgNumber{Value: n}, nil
	case p.at(tMinus):
		p.advance()
		n, err := p.expect(tNumber, "a number after -")
		if err != nil {
			return nil, err
		}
		v, _ := strconv.ParseFloat(n.text, 64)
		return astArgNumber{Value: -v}, nil
	case p.at(tIdent):
		return astArgIdent{Value: p.advance().text}, nil
	default:
		return nil, &SyntaxError{Pos: p.cur().pos, Msg: "expected a call argument"}
	}
}

// Conditions: parseCondition -> Or -> And -> Not -> Primary.

func (p *parser) parseCondition() (astCondition, error) { return p.parseOr() }

func (p *parser) parseOr() (astCondition, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.at(tPipe) {
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = astOr{Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (astCondition, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.at(tAmp) {
		p.advance()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = astAnd{Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseNot() (astCondition, error) {
	if p.at(tBang) {
		p.advance()
		inner, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return astNot{Inner: inner}, nil
	}
	return p.parsePrimaryCondition()
}

func (p *parser) parsePrimaryCondition() (astCondition, error) {
	if p.at(tLParen) {
		p.advance()
		c, err := p.parseCondition()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tRParen, ")"); err != nil {
			return nil, err
		}
		return c, nil
	}
	if p.atKeyword("Syllable") || p.atKeyword("Phoneme") {
		return p.parsePathCondition()
	}
	if p.at(tHash) || p.at(tPhoneme) || p.at(tLBracket) || p.at(tUnderscore) {
		return p.parseRelative()
	}
	return nil, &SyntaxError{Pos: p.cur().pos, Msg: "expected a condition"}
}

func (p *parser) parseRelative() (astCondition, error) {
	pos := p.cur().pos
	rel := astRelative{Pos: pos}
	sawUnderscore := false
	for {
		switch {
		case p.at(tHash):
			p.advance()
			if len(rel.Slots) == 0 && !sawUnderscore {
				rel.LeftEdge = true
			} else {
				rel.RightEdge = true
			}
		case p.at(tUnderscore):
			p.advance()
			if sawUnderscore {
				return nil, &SyntaxError{Pos: pos, Msg: "a relative expression may have only one _"}
			}
			sawUnderscore = true
			rel.Slots = append(rel.Slots, astRelSlot{Kind: relCurrent})
		case p.at(tPhoneme):
			rel.Slots = append(rel.Slots, astRelSlot{Kind: relPhoneme, Phoneme: p.parsePhonemeLit()})
		case p.at(tLBracket):
			br, err := p.parseFeatureBracket()
			if err != nil {
				return nil, err
			}
			rel.Slots = append(rel.Slots, astRelSlot{Kind: relFeature, Feature: br})
		default:
			goto done
		}
	}
done:
	if !sawUnderscore {
		return nil, &SyntaxError{Pos: pos, Msg: "a relative expression must contain _"}
	}
	return rel, nil
}

func (p *parser) parseIndexSpec() (astIndexSpec, error) {
	if p.at(tAt) {
		p.advance()
		neg := false
		if p.at(tMinus) {
			neg = true
			p.advance()
		} else if p.at(tPlus) {
			p.advance()
		}
		n, err := p.expect(tNumber, "a number after @")
		if err != nil {
			return astIndexSpec{}, err
		}
		v, _ := strconv.Atoi(n.text)
		if neg {
			v = -v
		}
		return astIndexSpec{Relative: true, N: v}, nil
	}
	n, err := p.expect(tNumber, "an index")
	if err != nil {
		return astIndexSpec{}, err
	}
	v, _ := strconv.Atoi(n.text)
	return astIndexSpec{Relative: false, N: v}, nil
}

func (p *parser) parsePathExpr() (astPathExpr, error) {
	pos := p.cur().pos
	counter := p.advance().text // "Syllable" or "Phoneme"
	if _, err := p.expect(tLBracket, "["); err != nil {
		return astPathExpr{}, err
	}
	idx, err := p.parseIndexSpec()
	if err != nil {
		return astPathExpr{}, err
	}
	if _, err := p.expect(tRBracket, "]"); err != nil {
		return astPathExpr{}, err
	}
	path := astPathExpr{Pos: pos, Counter: counter, Index: idx}
	if p.at(tDot) {
		p.advance()
		field, err := p.expect(tIdent, "a field name after .")
		if err != nil {
			return astPathExpr{}, err
		}
		path.Field = field.text
	}
	return path, nil
}

func (p *parser) parsePathCondition() (astCondition, error) {
	path, err := p.parsePathExpr()
	if err != nil {
		return nil, err
	}
	switch {
	case p.atKeyword("in"):
		p.advance()
		entity, err := p.parsePathExpr()
		if err != nil {
			return nil, err
		}
		return astIn{Pos: path.Pos, Path: path, Entity: entity}, nil
	case p.atKeyword("is"):
		p.advance()
		val, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		return astIs{Pos: path.Pos, Path: path, Value: val}, nil
	case p.at(tEquals):
		p.advance()
		if p.atKeyword("Syllable") || p.atKeyword("Phoneme") {
			right, err := p.parsePathExpr()
			if err != nil {
				return nil, err
			}
			return astEq{Pos: path.Pos, Left: path, Right: right}, nil
		}
		val, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		return astIs{Pos: path.Pos, Path: path, Value: val}, nil
	default:
		return astPathBool{Path: path}, nil
	}
}

func (p *parser) parseValue() (astValue, error) {
	switch {
	case p.at(tString):
		return astValue{Kind: valString, Text: p.advance().text}, nil
	case p.at(tNumber):
		v, _ := strconv.ParseFloat(p.cur().text, 64)
		p.advance()
		return astValue{Kind: valNumber, Number: v}, nil
	case p.at(tIdent):
		text := p.advance().text
		if strings.EqualFold(text, "true") || strings.EqualFold(text, "false") {
			return astValue{Kind: valBool, Bool: strings.EqualFold(text, "true")}, nil
		}
		return astValue{Kind: valIdent, Text: text}, nil
	default:
		return astValue{}, &SyntaxError{Pos: p.cur().pos, Msg: "expected a value after is"}
	}
}
