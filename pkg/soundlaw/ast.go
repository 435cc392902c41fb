package soundlaw

import "github.com/laut-go/diachron/pkg/feature"

// astProgram is the parsed, uncompiled tree of an entire document: a flat
// sequence of top-level laws and groups, in source order (spec.md
// §4.D's compilation contract processes them bottom-up but preserves
// this order for first-match-wins application).
type astProgram struct {
	LibraryName    string
	LibraryVersion string
	Items          []astItem
}

type astItem interface{ itemPos() Pos }

type astMeta struct {
	Name, Description, Date string
}

// astLaw is a single "CHANGE ... BEGIN ... END" block.
type astLaw struct {
	Pos        Pos
	Meta       astMeta
	Statements []astStatement
}

func (l *astLaw) itemPos() Pos { return l.Pos }

// astGroup is a "GROUP ... BEGIN ... END" block of laws applied in
// declared order against the evolving Word (spec.md §4.E).
type astGroup struct {
	Pos  Pos
	Meta astMeta
	Laws []*astLaw
}

func (g *astGroup) itemPos() Pos { return g.Pos }

type astStatement interface{ stmtPos() Pos }

// astPhonemeLit is the raw text of a /.../ literal. It may tokenize to
// more than one phoneme (e.g. /ai/), in which case the compiled Rule's
// domain is a contiguous multi-phoneme run (spec.md §4.E's contour
// coalescing).
type astPhonemeLit struct {
	Pos Pos
	Raw string
}

type astPhonemeList struct {
	Pos   Pos
	Items []astPhonemeLit
}

type astFeatureOverride struct {
	Name  string
	Value feature.Value
}

type astFeatureBracket struct {
	Pos       Pos
	Overrides []astFeatureOverride
}

// astClause is one branch of an arrow chain: "=> codomain | condition"
// for a conditional branch, or "-> codomain" / a trailing "=> codomain"
// with Cond == nil for the default/unconditional branch.
type astClause struct {
	Codomain any // astPhonemeLit | astPhonemeList | astFeatureBracket
	Cond     astCondition
}

type astSimpleStmt struct {
	Pos     Pos
	Domain  astPhonemeLit
	Clauses []astClause // Codomain is astPhonemeLit
}

func (s *astSimpleStmt) stmtPos() Pos { return s.Pos }

type astMultipleStmt struct {
	Pos     Pos
	Domain  astPhonemeList
	Clauses []astClause // Codomain is astPhonemeList
}

func (s *astMultipleStmt) stmtPos() Pos { return s.Pos }

type astFeatureChangeStmt struct {
	Pos     Pos
	Domain  astFeatureBracket
	Clauses []astClause // Codomain is astFeatureBracket
}

func (s *astFeatureChangeStmt) stmtPos() Pos { return s.Pos }

type astReplaceByFeatureStmt struct {
	Pos     Pos
	Domain  astFeatureBracket
	Clauses []astClause // Codomain is astPhonemeLit
}

func (s *astReplaceByFeatureStmt) stmtPos() Pos { return s.Pos }

type astCallStmt struct {
	Pos  Pos
	Name string
	Args []astArg
}

func (s *astCallStmt) stmtPos() Pos { return s.Pos }

type astArg interface{ isArg() }

type astArgPhoneme struct{ Lit astPhonemeLit }
type astArgPhonemeList struct{ Lits []astPhonemeLit }
type astArgFeature struct{ Bracket astFeatureBracket }
type astArgNumber struct{ Value float64 }
type astArgString struct{ Value string }
type astArgIdent struct{ Value string }

func (astArgPhoneme) isArg()     {}
func (astArgPhonemeList) isArg() {}
func (astArgFeature) isArg()     {}
func (astArgNumber) isArg()      {}
func (astArgString) isArg()      {}
func (astArgIdent) isArg()       {}

// Condition trees.

type astCondition interface{ isCondition() }

type astNot struct{ Inner astCondition }
type astAnd struct{ Left, Right astCondition }
type astOr struct{ Left, Right astCondition }

func (astNot) isCondition() {}
func (astAnd) isCondition() {}
func (astOr) isCondition()  {}

// astRelSlotKind tags what occupies one position in a relative
// expression template.
type astRelSlotKind int

const (
	relPhoneme astRelSlotKind = iota
	relFeature
	relHash
	relCurrent
)

type astRelSlot struct {
	Kind    astRelSlotKind
	Phoneme astPhonemeLit
	Feature astFeatureBracket
}

// astRelative is a relative_expr: a template of slots around the
// current-position marker "_", with "#" at either edge asserting
// absolute distance from the nearest word boundary instead of
// occupying a slot (spec.md §4.D's relative-expression Open Question).
type astRelative struct {
	Pos       Pos
	Slots     []astRelSlot // excludes any "#" entries; "_" is present
	LeftEdge  bool         // a "#" appeared immediately left of the template
	RightEdge bool         // a "#" appeared immediately right of the template
}

func (astRelative) isCondition() {}

type astIndexSpec struct {
	Relative bool // true for "@n" (relative to current), false for absolute "n"
	N        int
}

type astPathExpr struct {
	Pos     Pos
	Counter string // "Syllable" | "Phoneme"
	Index   astIndexSpec
	Field   string // "" | "nucleus" | "onset" | "coda" | "quality" | "is_monosyllable" | "is_stressed"
}

// astPathBool is a bare boolean-valued path used directly as a
// condition, e.g. "Syllable[0].is_stressed".
type astPathBool struct {
	Path astPathExpr
}

func (astPathBool) isCondition() {}

// astIn is "<counter>[<index>] in <something>" -- in this grammar the
// only "in" form spec.md names is membership of the current position
// within an indexed Syllable/Phoneme, so Entity is always a PathExpr
// whose Field is empty.
type astIn struct {
	Pos    Pos
	Path   astPathExpr
	Entity astPathExpr
}

func (astIn) isCondition() {}

type astIs struct {
	Pos   Pos
	Path  astPathExpr
	Value astValue
}

func (astIs) isCondition() {}

type astEq struct {
	Pos         Pos
	Left, Right astPathExpr
}

func (astEq) isCondition() {}

type astValueKind int

const (
	valIdent astValueKind = iota
	valString
	valNumber
	valBool
)

type astValue struct {
	Kind   astValueKind
	Text   string
	Number float64
	Bool   bool
}
