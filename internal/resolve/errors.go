package resolve

import (
	"fmt"

	"github.com/pentops/protoconv/internal/errpos"
)

type ResolutionErrorKind int

const (
	// InvalidMapKeyType: the map key is float, double or bytes
	InvalidMapKeyType ResolutionErrorKind = iota + 1

	// UnknownScalar: a scalar type name outside the supported set
	UnknownScalar
)

func (k ResolutionErrorKind) String() string {
	switch k {
	case InvalidMapKeyType:
		return "InvalidMapKeyType"
	case UnknownScalar:
		return "UnknownScalar"
	default:
		return fmt.Sprintf("ResolutionErrorKind(%d)", int(k))
	}
}

type ResolutionError struct {
	Kind ResolutionErrorKind

	// Field is the dotted path of the field, e.g. Outer.Inner.name
	Field string

	Pos errpos.Point
	Msg string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("%s %s: field %s: %s", e.Pos, e.Kind, e.Field, e.Msg)
}

func (e *ResolutionError) ErrorPosition() *errpos.Position {
	return errpos.PointPosition(e.Pos)
}
