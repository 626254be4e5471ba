package convert

import (
	"fmt"

	"github.com/pentops/protoconv/internal/ast"
	"github.com/pentops/protoconv/internal/emit"
	"github.com/pentops/protoconv/internal/errpos"
	"github.com/pentops/protoconv/internal/lexer"
	"github.com/pentops/protoconv/internal/resolve"
)

// Stage is the pipeline step a conversion failed in.
type Stage int

const (
	Lex Stage = iota + 1
	Parse
	Resolve
	Emit
)

func (s Stage) String() string {
	switch s {
	case Lex:
		return "lex"
	case Parse:
		return "parse"
	case Resolve:
		return "resolve"
	case Emit:
		return "emit"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}

// ConversionError wraps the first failure of a conversion with the stage it
// happened in. Err is a *lexer.LexError, *ast.ParseError,
// *resolve.ResolutionError or *emit.EmitError.
type ConversionError struct {
	Stage Stage
	Err   error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("%s error: %s", e.Stage, e.Err)
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

func (e *ConversionError) ErrorPosition() *errpos.Position {
	return errpos.GetErrorPosition(e.Err)
}

// Convert runs one fragment holding a single message or enum through the
// lexer, parser, resolver and the emitter for target.
func Convert(fragment string, target emit.Target) (string, error) {
	emitter, err := emit.ForTarget(target)
	if err != nil {
		return "", &ConversionError{Stage: Emit, Err: err}
	}

	tokens, err := lexer.NewLexer(fragment).AllTokens()
	if err != nil {
		return "", &ConversionError{Stage: Lex, Err: err}
	}

	decl, err := ast.Parse(tokens)
	if err != nil {
		return "", &ConversionError{Stage: Parse, Err: err}
	}

	resolved, err := resolve.Resolve(decl)
	if err != nil {
		return "", &ConversionError{Stage: Resolve, Err: err}
	}

	out, err := emitter.Render(resolved)
	if err != nil {
		return "", &ConversionError{Stage: Emit, Err: err}
	}
	return out, nil
}

func ToTypeScript(fragment string) (string, error) {
	return Convert(fragment, emit.TypeScript)
}

func ToSwift(fragment string) (string, error) {
	return Convert(fragment, emit.Swift)
}

func ToKotlin(fragment string) (string, error) {
	return Convert(fragment, emit.Kotlin)
}

func ToDart(fragment string) (string, error) {
	return Convert(fragment, emit.Dart)
}
