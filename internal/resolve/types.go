package resolve

import (
	"fmt"
	"strings"

	"github.com/pentops/protoconv/internal/errpos"
)

// Kind is the target independent scalar set every emitter maps from.
type Kind int

const (
	Bool Kind = iota + 1
	Int32
	Int64
	UInt32
	UInt64
	Float32
	Float64
	String
	Bytes
)

func (k Kind) String() string {
	switch k {
	case Bool:
		return "Bool"
	case Int32:
		return "Int32"
	case Int64:
		return "Int64"
	case UInt32:
		return "UInt32"
	case UInt64:
		return "UInt64"
	case Float32:
		return "Float32"
	case Float64:
		return "Float64"
	case String:
		return "String"
	case Bytes:
		return "Bytes"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// IsValidMapKey is false for the kinds protobuf does not allow as map keys.
func (k Kind) IsValidMapKey() bool {
	switch k {
	case Float32, Float64, Bytes:
		return false
	default:
		return true
	}
}

// Is64Bit is true for the integer kinds which overflow a float64 mantissa.
func (k Kind) Is64Bit() bool {
	return k == Int64 || k == UInt64
}

// Type is one of Scalar, Ref, List or Map.
type Type interface {
	TypeName() string
	isType()
}

type Scalar struct {
	Kind Kind
}

func (Scalar) isType() {}

func (s Scalar) TypeName() string {
	return s.Kind.String()
}

// Ref is a symbolic reference to a message or enum, never linked to its
// declaration.
type Ref struct {
	// Name as written, without a leading dot
	Name string

	// Path is the nesting chain of the referenced declaration when it is
	// declared in the same fragment, starting at the top level declaration.
	// Nil for references to anything outside the fragment.
	Path []string
}

func (Ref) isType() {}

func (r Ref) TypeName() string {
	return r.Name
}

// IsLocal is true when the reference points at a declaration in the same
// fragment.
func (r Ref) IsLocal() bool {
	return len(r.Path) > 0
}

// FlatName joins the nesting chain for targets which hoist nested types to
// the top level, e.g. Outer_Inner. Non local references return Name.
func (r Ref) FlatName(sep string) string {
	if !r.IsLocal() {
		return r.Name
	}
	return strings.Join(r.Path, sep)
}

type List struct {
	Elem Type
}

func (List) isType() {}

func (l List) TypeName() string {
	return "List(" + l.Elem.TypeName() + ")"
}

type Map struct {
	Key   Scalar
	Value Type
}

func (Map) isType() {}

func (m Map) TypeName() string {
	return "Map(" + m.Key.TypeName() + ", " + m.Value.TypeName() + ")"
}

// Declaration is a *Message or *Enum ready for emitting.
type Declaration interface {
	DeclName() string
	DeclPath() []string
	isDeclaration()
}

type Message struct {
	Name string

	// Path is the nesting chain including Name
	Path []string

	Fields  []*Field
	Nested  []Declaration
	Comment string
	Pos     errpos.Point
}

func (*Message) isDeclaration() {}

func (m *Message) DeclName() string {
	return m.Name
}

func (m *Message) DeclPath() []string {
	return m.Path
}

type Field struct {
	Name     string
	Type     Type
	Number   int64
	Optional bool
	Comment  string
	Pos      errpos.Point
}

type Enum struct {
	Name    string
	Path    []string
	Values  []*EnumValue
	Comment string
	Pos     errpos.Point
}

func (*Enum) isDeclaration() {}

func (e *Enum) DeclName() string {
	return e.Name
}

func (e *Enum) DeclPath() []string {
	return e.Path
}

type EnumValue struct {
	Name    string
	Number  int64
	Comment string
	Pos     errpos.Point
}
