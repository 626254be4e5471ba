// Package protocheck validates fragments with the protocompile front end,
// which is stricter than the conversion engine: duplicate field numbers,
// enums which do not start at zero and similar proto3 rules are errors here.
package protocheck

import (
	"bytes"

	"github.com/bufbuild/protocompile/parser"
	"github.com/bufbuild/protocompile/reporter"
	"github.com/pentops/protoconv/internal/errpos"
)

// syntaxPrefix shares the first line with the fragment so line numbers need
// no adjusting.
const syntaxPrefix = `syntax = "proto3"; `

// CheckFragment parses the fragment as the body of a proto3 file. Every
// reported problem is collected, the result is errpos.Errors positioned in
// the fragment, or nil.
func CheckFragment(filename string, fragment string) error {
	var errs errpos.Errors

	onError := func(err reporter.ErrorWithPos) error {
		errs = append(errs, fragmentError(filename, err))
		return nil
	}
	onWarning := func(reporter.ErrorWithPos) {}

	handler := reporter.NewHandler(reporter.NewReporter(onError, onWarning))

	source := []byte(syntaxPrefix + fragment)
	fileNode, err := parser.Parse(filename, bytes.NewReader(source), handler)
	if err == nil {
		_, err = parser.ResultFromAST(fileNode, true, handler)
	}

	if len(errs) > 0 {
		return errs
	}
	return err
}

func fragmentError(filename string, err reporter.ErrorWithPos) *errpos.Err {
	sourcePos := err.GetPosition()

	// SourcePos is 1 based
	pt := errpos.Point{
		Line:   sourcePos.Line - 1,
		Column: sourcePos.Col - 1,
		Offset: sourcePos.Offset - len(syntaxPrefix),
	}
	if pt.Line == 0 {
		pt.Column -= len(syntaxPrefix)
	}
	if pt.Column < 0 {
		pt.Column = 0
	}
	if pt.Offset < 0 {
		pt.Offset = 0
	}

	cause := err.Unwrap()
	if cause == nil {
		cause = err
	}

	return &errpos.Err{
		Pos: &errpos.Position{
			Filename: &filename,
			Start:    pt,
			End:      pt,
		},
		Err: cause,
	}
}
