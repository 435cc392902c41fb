package soundlaw

import "fmt"

// SyntaxError is raised by the lexer/parser on malformed source (spec.md
// §7's taxonomy class (b), the compile-time half: a program that does
// not parse never produces a Program at all).
type SyntaxError struct {
	Pos Pos
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("soundlaw: syntax error at %s: %s", e.Pos, e.Msg)
}

// CompileError is raised by Compile for a syntactically valid program
// that fails a semantic check: a domain/codomain length mismatch in a
// multiple-unconditional statement, a feature name absent from the
// model, an out-of-range path field, and so on (spec.md §7 class (b)).
type CompileError struct {
	Pos Pos
	Msg string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("soundlaw: compile error at %s: %s", e.Pos, e.Msg)
}

// UnknownFunctionWarning is not an error: Compile records one of these
// per call to an unrecognized library function instead of failing the
// whole program, and compiles the call as an identity rule (spec.md
// §4.D's "unknown function-name fallback to identity rule + warning").
type UnknownFunctionWarning struct {
	Pos  Pos
	Name string
}

func (w UnknownFunctionWarning) String() string {
	return fmt.Sprintf("soundlaw: %s: unknown function %q, compiled as identity", w.Pos, w.Name)
}
