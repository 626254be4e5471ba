package resolve

import (
	"fmt"
	"strings"

	"github.com/pentops/protoconv/internal/ast"
)

var scalarKinds = map[string]Kind{
	"bool":     Bool,
	"int32":    Int32,
	"sint32":   Int32,
	"sfixed32": Int32,
	"int64":    Int64,
	"sint64":   Int64,
	"sfixed64": Int64,
	"uint32":   UInt32,
	"fixed32":  UInt32,
	"uint64":   UInt64,
	"fixed64":  UInt64,
	"float":    Float32,
	"double":   Float64,
	"string":   String,
	"bytes":    Bytes,
}

// ScalarKind maps a protobuf scalar keyword to its Kind.
func ScalarKind(name string) (Kind, bool) {
	kind, ok := scalarKinds[name]
	return kind, ok
}

// Resolve maps the parsed declaration to the intermediate types. Named
// types stay symbolic: nothing is looked up outside the fragment.
func Resolve(decl ast.Declaration) (Declaration, error) {
	rr := &resolver{
		local: map[string]struct{}{},
	}
	rr.collect(nil, decl)

	out, err := rr.declaration(nil, decl)
	if err != nil {
		return nil, err
	}
	return out, nil
}

type resolver struct {
	// local holds the dot joined path of every declaration in the fragment
	local map[string]struct{}
}

func (rr *resolver) collect(parent []string, decl ast.Declaration) {
	path := appendPath(parent, decl.DeclName())
	rr.local[strings.Join(path, ".")] = struct{}{}

	if msg, ok := decl.(*ast.Message); ok {
		for _, nested := range msg.Nested {
			rr.collect(path, nested)
		}
	}
}

// appendPath returns a new slice, the parent is shared between siblings.
func appendPath(parent []string, name string) []string {
	path := make([]string, len(parent), len(parent)+1)
	copy(path, parent)
	return append(path, name)
}

func (rr *resolver) declaration(parent []string, decl ast.Declaration) (Declaration, error) {
	switch decl := decl.(type) {
	case *ast.Message:
		return rr.message(parent, decl)
	case *ast.Enum:
		return rr.enum(parent, decl), nil
	default:
		return nil, fmt.Errorf("unknown declaration type %T", decl)
	}
}

func (rr *resolver) message(parent []string, msg *ast.Message) (*Message, error) {
	path := appendPath(parent, msg.Name)
	out := &Message{
		Name:    msg.Name,
		Path:    path,
		Comment: msg.Comment,
		Pos:     msg.Start,
		Fields:  make([]*Field, 0, len(msg.Fields)),
	}

	for _, field := range msg.Fields {
		fieldType, err := rr.fieldType(path, field.Type)
		if err != nil {
			err.Field = strings.Join(appendPath(path, field.Name), ".")
			err.Pos = field.Start
			return nil, err
		}

		out.Fields = append(out.Fields, &Field{
			Name:     field.Name,
			Type:     fieldType,
			Number:   field.Number,
			Optional: field.Optional,
			Comment:  field.Comment,
			Pos:      field.Start,
		})
	}

	for _, nested := range msg.Nested {
		decl, err := rr.declaration(path, nested)
		if err != nil {
			return nil, err
		}
		out.Nested = append(out.Nested, decl)
	}

	return out, nil
}

func (rr *resolver) enum(parent []string, enum *ast.Enum) *Enum {
	out := &Enum{
		Name:    enum.Name,
		Path:    appendPath(parent, enum.Name),
		Comment: enum.Comment,
		Pos:     enum.Start,
		Values:  make([]*EnumValue, 0, len(enum.Values)),
	}
	for _, value := range enum.Values {
		out.Values = append(out.Values, &EnumValue{
			Name:    value.Name,
			Number:  value.Number,
			Comment: value.Comment,
			Pos:     value.Start,
		})
	}
	return out
}

// fieldType returns errors without the field set, the caller adds it.
func (rr *resolver) fieldType(scope []string, ft ast.FieldType) (Type, *ResolutionError) {
	switch ft := ft.(type) {
	case ast.ScalarType:
		return rr.scalar(ft)

	case ast.NamedType:
		return rr.ref(scope, ft.Name), nil

	case ast.RepeatedType:
		elem, err := rr.fieldType(scope, ft.Elem)
		if err != nil {
			return nil, err
		}
		return List{Elem: elem}, nil

	case ast.MapType:
		keyType, ok := ft.Key.(ast.ScalarType)
		if !ok {
			return nil, &ResolutionError{
				Kind: InvalidMapKeyType,
				Msg:  fmt.Sprintf("map key %s is not a scalar type", ft.Key.TypeName()),
			}
		}
		key, err := rr.scalar(keyType)
		if err != nil {
			return nil, err
		}
		if !key.Kind.IsValidMapKey() {
			return nil, &ResolutionError{
				Kind: InvalidMapKeyType,
				Msg:  fmt.Sprintf("%s cannot be used as a map key, use an integer, bool or string type", keyType.Name),
			}
		}

		value, err := rr.fieldType(scope, ft.Value)
		if err != nil {
			return nil, err
		}
		return Map{Key: key, Value: value}, nil

	default:
		return nil, &ResolutionError{
			Kind: UnknownScalar,
			Msg:  fmt.Sprintf("unsupported field type %T", ft),
		}
	}
}

func (rr *resolver) scalar(st ast.ScalarType) (Scalar, *ResolutionError) {
	kind, ok := scalarKinds[st.Name]
	if !ok {
		return Scalar{}, &ResolutionError{
			Kind: UnknownScalar,
			Msg:  fmt.Sprintf("unknown scalar type %q", st.Name),
		}
	}
	return Scalar{Kind: kind}, nil
}

// ref looks the name up in the fragment the way protobuf scopes names: the
// innermost enclosing message first, then each parent out to the top. A
// leading dot only matches from the top.
func (rr *resolver) ref(scope []string, name string) Ref {
	if strings.HasPrefix(name, ".") {
		name = strings.TrimPrefix(name, ".")
		scope = nil
	}

	for depth := len(scope); depth >= 0; depth-- {
		candidate := name
		if depth > 0 {
			candidate = strings.Join(scope[:depth], ".") + "." + name
		}
		if _, ok := rr.local[candidate]; ok {
			return Ref{
				Name: name,
				Path: strings.Split(candidate, "."),
			}
		}
	}

	return Ref{Name: name}
}
