// package errpos provides position based errors for fragment source text,
// printable for humans with a source excerpt.
package errpos

import (
	"errors"
	"fmt"
	"strings"
)

// Point is a single location in a source string. Line and Column are 0
// based, Offset is the byte offset from the start of the source.
type Point struct {
	Offset int
	Line   int
	Column int
}

func (p Point) String() string {
	return fmt.Sprintf("%d:%d", p.Line+1, p.Column+1)
}

// Position represents a span within a file-like string
type Position struct {
	// Optional filename, printed where a filename would usually be printed.
	Filename *string

	Start Point
	End   Point
}

func (p Position) String() string {
	prefix := ""
	if p.Filename != nil {
		prefix = *p.Filename + ":"
	}
	return fmt.Sprintf("%s%d:%d", prefix, p.Start.Line+1, p.Start.Column+1)
}

// PointPosition is a zero width Position at the given point.
func PointPosition(pt Point) *Position {
	return &Position{
		Start: pt,
		End:   pt,
	}
}

type HasPosition interface {
	error
	ErrorPosition() *Position
}

func GetErrorPosition(err error) *Position {
	var posErr HasPosition
	if errors.As(err, &posErr) {
		return posErr.ErrorPosition()
	}
	return nil
}

// Context is the location of an error within the declaration tree, e.g.
// Message.field_name
type Context []string

func (c Context) String() string {
	return strings.Join(c, ".")
}

// Errors allows a list of errors to be treated as a single error, e.g. the
// reporter errors of the strict checker.
type Errors []*Err

func (e Errors) Append(err error) Errors {
	if err == nil {
		return e
	}

	if errs, ok := AsErrors(err); ok {
		return append(e, errs...)
	}

	return append(e, &Err{
		Err: err,
	})
}

func (e Errors) Error() string {
	if len(e) == 1 {
		return e[0].Error()
	}
	if len(e) > 1 {
		return fmt.Sprintf("%s (and %d more errors)", e[0].Error(), len(e)-1)
	}
	return "<no errors>"
}

// AsErrors converts any error into Errors. Errors carrying a position
// (HasPosition) keep it, other errors are wrapped without one.
func AsErrors(err error) (Errors, bool) {
	if err == nil {
		return nil, false
	}

	if errs, ok := err.(Errors); ok {
		return errs, true
	}

	var single *Err
	if errors.As(err, &single) {
		return Errors{single}, true
	}

	if multi, ok := err.(interface{ Unwrap() []error }); ok {
		errs := multi.Unwrap()
		multiErrs := make(Errors, 0, len(errs))
		for _, e := range errs {
			multiErrs = multiErrs.Append(e)
		}
		return multiErrs, true
	}

	var posSingle HasPosition
	if errors.As(err, &posSingle) {
		return Errors{&Err{
			Pos: posSingle.ErrorPosition(),
			Err: err,
		}}, true
	}

	return Errors{&Err{Err: err}}, true
}

// Err wraps it all together.
type Err struct {
	Pos *Position
	Ctx Context
	Err error
}

var _ HasPosition = &Err{}

func (e *Err) Error() string {
	parts := make([]string, 0)
	if e.Pos != nil {
		parts = append(parts, e.Pos.String(), " ")
	}
	if len(e.Ctx) > 0 {
		parts = append(parts, "in ", e.Ctx.String(), ": ")
	}
	if e.Err == nil {
		parts = append(parts, "<nil error>")
	} else {
		parts = append(parts, e.Err.Error())
	}
	return strings.Join(parts, "")
}

func (e *Err) ErrorPosition() *Position {
	return e.Pos
}

// Unwrap implements errors.Wrapper, and is also the 'context free' error
func (e *Err) Unwrap() error {
	return e.Err
}

// AddContext adds context elements to an error.
// If err is nil, nil is returned.
// If the error is already an *Err, the context is added to the *start* of
// the existing context.
func AddContext(err error, ctx ...string) error {
	if err == nil {
		return nil
	}

	existing := &Err{}
	if !errors.As(err, &existing) {
		return &Err{
			Pos: GetErrorPosition(err),
			Ctx: ctx,
			Err: err,
		}
	}

	existing.Ctx = append(ctx, existing.Ctx...)
	return existing
}

// AddPosition adds a source position to an error.
// If the error already has a position it is returned unmodified, as the
// existing value is likely more specific.
func AddPosition(err error, pos Position) error {
	if err == nil {
		return nil
	}

	if GetErrorPosition(err) != nil {
		return err
	}

	return &Err{
		Pos: &pos,
		Err: err,
	}
}
