// Package protodesc exports a parsed fragment as a proto3 file descriptor.
// Named types are left as written, unlinked, the way the protobuf parser
// leaves them before linking.
package protodesc

import (
	"fmt"
	"math"
	"strings"

	"github.com/iancoleman/strcase"
	"github.com/pentops/golib/gl"
	"github.com/pentops/protoconv/internal/ast"
	"google.golang.org/protobuf/types/descriptorpb"
)

// descriptor.proto field numbers used in source code info paths
const (
	fileMessageTag    = 4
	fileEnumTag       = 5
	messageFieldTag   = 2
	messageNestedTag  = 3
	messageEnumTag    = 4
	enumValueTag      = 2
	enumValueNumberOK = math.MaxInt32
)

var scalarTypes = map[string]descriptorpb.FieldDescriptorProto_Type{
	"double":   descriptorpb.FieldDescriptorProto_TYPE_DOUBLE,
	"float":    descriptorpb.FieldDescriptorProto_TYPE_FLOAT,
	"int64":    descriptorpb.FieldDescriptorProto_TYPE_INT64,
	"uint64":   descriptorpb.FieldDescriptorProto_TYPE_UINT64,
	"int32":    descriptorpb.FieldDescriptorProto_TYPE_INT32,
	"fixed64":  descriptorpb.FieldDescriptorProto_TYPE_FIXED64,
	"fixed32":  descriptorpb.FieldDescriptorProto_TYPE_FIXED32,
	"bool":     descriptorpb.FieldDescriptorProto_TYPE_BOOL,
	"string":   descriptorpb.FieldDescriptorProto_TYPE_STRING,
	"bytes":    descriptorpb.FieldDescriptorProto_TYPE_BYTES,
	"uint32":   descriptorpb.FieldDescriptorProto_TYPE_UINT32,
	"sfixed32": descriptorpb.FieldDescriptorProto_TYPE_SFIXED32,
	"sfixed64": descriptorpb.FieldDescriptorProto_TYPE_SFIXED64,
	"sint32":   descriptorpb.FieldDescriptorProto_TYPE_SINT32,
	"sint64":   descriptorpb.FieldDescriptorProto_TYPE_SINT64,
}

// FileName is the file the declaration is exported as, e.g.
// UserPreferences is user_preferences.proto
func FileName(decl ast.Declaration) string {
	return strcase.ToSnake(decl.DeclName()) + ".proto"
}

// Build wraps the declaration in a proto3 file descriptor. Map fields get a
// synthesized map entry message, optional fields are proto3 optional with
// a synthetic oneof, and doc comments become source code info.
func Build(decl ast.Declaration) (*descriptorpb.FileDescriptorProto, error) {
	fb := &fileBuilder{
		fdp: &descriptorpb.FileDescriptorProto{
			Name:   gl.Ptr(FileName(decl)),
			Syntax: gl.Ptr("proto3"),
		},
	}

	switch decl := decl.(type) {
	case *ast.Message:
		path := []int32{fileMessageTag, 0}
		msg, err := fb.message(path, decl)
		if err != nil {
			return nil, err
		}
		fb.fdp.MessageType = append(fb.fdp.MessageType, msg)

	case *ast.Enum:
		path := []int32{fileEnumTag, 0}
		enum, err := fb.enum(path, decl)
		if err != nil {
			return nil, err
		}
		fb.fdp.EnumType = append(fb.fdp.EnumType, enum)

	default:
		return nil, fmt.Errorf("unknown declaration type %T", decl)
	}

	if len(fb.comments) > 0 {
		fb.fdp.SourceCodeInfo = &descriptorpb.SourceCodeInfo{
			Location: fb.comments,
		}
	}

	return fb.fdp, nil
}

type commentSet []*descriptorpb.SourceCodeInfo_Location

func (cs *commentSet) comment(path []int32, node ast.SourceNode) {
	if node.Comment == "" {
		return
	}

	lines := strings.Split(node.Comment, "\n")
	comment := &strings.Builder{}
	for _, line := range lines {
		comment.WriteString(" ")
		comment.WriteString(line)
		comment.WriteString("\n")
	}

	span := []int32{int32(node.Start.Line), int32(node.Start.Column), int32(node.End.Line), int32(node.End.Column)}
	if node.Start.Line == node.End.Line {
		span = []int32{int32(node.Start.Line), int32(node.Start.Column), int32(node.End.Column)}
	}

	*cs = append(*cs, &descriptorpb.SourceCodeInfo_Location{
		Path:            path,
		Span:            span,
		LeadingComments: gl.Ptr(comment.String()),
	})
}

type fileBuilder struct {
	fdp      *descriptorpb.FileDescriptorProto
	comments commentSet
}

// childPath copies, sibling paths must not share a backing array.
func childPath(parent []int32, tag int32, idx int) []int32 {
	path := make([]int32, len(parent), len(parent)+2)
	copy(path, parent)
	return append(path, tag, int32(idx))
}

func (fb *fileBuilder) message(path []int32, msg *ast.Message) (*descriptorpb.DescriptorProto, error) {
	desc := &descriptorpb.DescriptorProto{
		Name: gl.Ptr(msg.Name),
	}
	fb.comments.comment(path, msg.SourceNode)

	for idx, field := range msg.Fields {
		fieldPath := childPath(path, messageFieldTag, idx)
		fieldDesc, err := fb.field(desc, field)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", msg.Name, err)
		}
		fb.comments.comment(fieldPath, field.SourceNode)
		desc.Field = append(desc.Field, fieldDesc)
	}

	// synthetic oneofs follow any real oneof, which this format never has
	for _, fieldDesc := range desc.Field {
		if !fieldDesc.GetProto3Optional() {
			continue
		}
		fieldDesc.OneofIndex = gl.Ptr(int32(len(desc.OneofDecl)))
		desc.OneofDecl = append(desc.OneofDecl, &descriptorpb.OneofDescriptorProto{
			Name: gl.Ptr("_" + fieldDesc.GetName()),
		})
	}

	for _, nested := range msg.Nested {
		switch nested := nested.(type) {
		case *ast.Message:
			nestedPath := childPath(path, messageNestedTag, len(desc.NestedType))
			nestedDesc, err := fb.message(nestedPath, nested)
			if err != nil {
				return nil, fmt.Errorf("%s.%w", msg.Name, err)
			}
			desc.NestedType = append(desc.NestedType, nestedDesc)

		case *ast.Enum:
			nestedPath := childPath(path, messageEnumTag, len(desc.EnumType))
			nestedDesc, err := fb.enum(nestedPath, nested)
			if err != nil {
				return nil, fmt.Errorf("%s.%w", msg.Name, err)
			}
			desc.EnumType = append(desc.EnumType, nestedDesc)
		}
	}

	return desc, nil
}

func (fb *fileBuilder) field(parent *descriptorpb.DescriptorProto, field *ast.Field) (*descriptorpb.FieldDescriptorProto, error) {
	if field.Number < 1 || field.Number > math.MaxInt32 {
		return nil, fmt.Errorf("field %s: number %d out of range", field.Name, field.Number)
	}

	desc := &descriptorpb.FieldDescriptorProto{
		Name:     gl.Ptr(field.Name),
		JsonName: gl.Ptr(JSONName(field.Name)),
		Number:   gl.Ptr(int32(field.Number)),
		Label:    descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
	}

	fieldType := field.Type
	switch ft := fieldType.(type) {
	case ast.RepeatedType:
		desc.Label = descriptorpb.FieldDescriptorProto_LABEL_REPEATED.Enum()
		fieldType = ft.Elem

	case ast.MapType:
		entry, err := mapEntry(field.Name, ft)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", field.Name, err)
		}
		parent.NestedType = append(parent.NestedType, entry)
		desc.Label = descriptorpb.FieldDescriptorProto_LABEL_REPEATED.Enum()
		desc.TypeName = entry.Name
		return desc, nil
	}

	if err := setType(desc, fieldType); err != nil {
		return nil, fmt.Errorf("field %s: %w", field.Name, err)
	}

	if field.Optional {
		desc.Proto3Optional = gl.Ptr(true)
	}
	return desc, nil
}

func setType(desc *descriptorpb.FieldDescriptorProto, fieldType ast.FieldType) error {
	switch ft := fieldType.(type) {
	case ast.ScalarType:
		scalar, ok := scalarTypes[ft.Name]
		if !ok {
			return fmt.Errorf("unknown scalar type %q", ft.Name)
		}
		desc.Type = scalar.Enum()
		return nil

	case ast.NamedType:
		// message or enum is only known after linking
		desc.TypeName = gl.Ptr(ft.Name)
		return nil

	default:
		return fmt.Errorf("type %s cannot be used here", fieldType.TypeName())
	}
}

func mapEntry(fieldName string, mapType ast.MapType) (*descriptorpb.DescriptorProto, error) {
	key := &descriptorpb.FieldDescriptorProto{
		Name:     gl.Ptr("key"),
		JsonName: gl.Ptr("key"),
		Number:   gl.Ptr(int32(1)),
		Label:    descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
	}
	if err := setType(key, mapType.Key); err != nil {
		return nil, fmt.Errorf("map key: %w", err)
	}

	value := &descriptorpb.FieldDescriptorProto{
		Name:     gl.Ptr("value"),
		JsonName: gl.Ptr("value"),
		Number:   gl.Ptr(int32(2)),
		Label:    descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
	}
	if err := setType(value, mapType.Value); err != nil {
		return nil, fmt.Errorf("map value: %w", err)
	}

	return &descriptorpb.DescriptorProto{
		Name:  gl.Ptr(MapEntryName(fieldName)),
		Field: []*descriptorpb.FieldDescriptorProto{key, value},
		Options: &descriptorpb.MessageOptions{
			MapEntry: gl.Ptr(true),
		},
	}, nil
}

func (fb *fileBuilder) enum(path []int32, enum *ast.Enum) (*descriptorpb.EnumDescriptorProto, error) {
	desc := &descriptorpb.EnumDescriptorProto{
		Name: gl.Ptr(enum.Name),
	}
	fb.comments.comment(path, enum.SourceNode)

	for idx, value := range enum.Values {
		if value.Number < math.MinInt32 || value.Number > enumValueNumberOK {
			return nil, fmt.Errorf("%s: value %s: number %d out of range", enum.Name, value.Name, value.Number)
		}
		fb.comments.comment(childPath(path, enumValueTag, idx), value.SourceNode)
		desc.Value = append(desc.Value, &descriptorpb.EnumValueDescriptorProto{
			Name:   gl.Ptr(value.Name),
			Number: gl.Ptr(int32(value.Number)),
		})
	}

	return desc, nil
}

// JSONName is the default json_name protoc gives a field: underscores are
// dropped and the letter after each is upper cased.
func JSONName(name string) string {
	out := &strings.Builder{}
	upperNext := false
	for _, r := range name {
		if r == '_' {
			upperNext = true
			continue
		}
		if upperNext && 'a' <= r && r <= 'z' {
			r -= 'a' - 'A'
		}
		upperNext = false
		out.WriteRune(r)
	}
	return out.String()
}

// MapEntryName is the name protoc gives the synthesized entry message of a
// map field, e.g. by_id is ByIdEntry.
func MapEntryName(fieldName string) string {
	name := JSONName(fieldName)
	if name != "" && 'a' <= name[0] && name[0] <= 'z' {
		name = string(name[0]-('a'-'A')) + name[1:]
	}
	return name + "Entry"
}
