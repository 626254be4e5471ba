package ast

import (
	"fmt"

	"github.com/pentops/protoconv/internal/errpos"
	"github.com/pentops/protoconv/internal/lexer"
)

// Declaration is a top level or nested *Message or *Enum.
type Declaration interface {
	DeclName() string
	Source() SourceNode
	isDeclaration()
}

type SourceNode struct {
	Start lexer.Position
	End   lexer.Position

	// Comment is the doc comment: the comment block directly above the
	// node, followed by any comment on the same line as its terminator.
	Comment string
}

func (sn SourceNode) Position() errpos.Position {
	return errpos.Position{
		Start: sn.Start,
		End:   sn.End,
	}
}

func (sn SourceNode) Source() SourceNode {
	return sn
}

type Message struct {
	Name   string
	Fields []*Field

	// Nested holds message and enum declarations in source order
	Nested []Declaration

	SourceNode
}

func (*Message) isDeclaration() {}

func (m *Message) DeclName() string {
	return m.Name
}

type Field struct {
	Name     string
	Type     FieldType
	Number   int64
	Optional bool

	SourceNode
}

type Enum struct {
	Name   string
	Values []*EnumValue

	SourceNode
}

func (*Enum) isDeclaration() {}

func (e *Enum) DeclName() string {
	return e.Name
}

type EnumValue struct {
	Name   string
	Number int64

	SourceNode
}

// FieldType is one of ScalarType, NamedType, RepeatedType or MapType.
type FieldType interface {
	TypeName() string
	isFieldType()
}

// ScalarType is a builtin type by keyword, e.g. int32
type ScalarType struct {
	Name string
}

func (ScalarType) isFieldType() {}

func (st ScalarType) TypeName() string {
	return st.Name
}

// NamedType is a reference to a message or enum by (possibly dotted) name.
// It is not linked to anything at parse time.
type NamedType struct {
	Name string
}

func (NamedType) isFieldType() {}

func (nt NamedType) TypeName() string {
	return nt.Name
}

type RepeatedType struct {
	Elem FieldType
}

func (RepeatedType) isFieldType() {}

func (rt RepeatedType) TypeName() string {
	return "repeated " + rt.Elem.TypeName()
}

type MapType struct {
	Key   FieldType
	Value FieldType
}

func (MapType) isFieldType() {}

func (mt MapType) TypeName() string {
	return fmt.Sprintf("map<%s, %s>", mt.Key.TypeName(), mt.Value.TypeName())
}
