// Package protoprint prints an unlinked proto3 file descriptor back to
// .proto source, as built by protodesc.
package protoprint

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/protobuf/types/descriptorpb"
)

// descriptor.proto field numbers, matching the source code info paths
const (
	fileMessageTag   = 4
	fileEnumTag      = 5
	messageFieldTag  = 2
	messageNestedTag = 3
	messageEnumTag   = 4
	enumValueTag     = 2
)

func PrintFile(file *descriptorpb.FileDescriptorProto) (string, error) {
	fileData, err := printFile(file)
	if err != nil {
		return "", fmt.Errorf("in file %s: %w", file.GetName(), err)
	}
	return string(fileData), nil
}

type fileBuffer struct {
	out    *bytes.Buffer
	addGap bool
}

func (fb *fileBuffer) p(indent int, args ...interface{}) {
	if fb.addGap {
		fb.addGap = false
		fb.out.WriteString("\n")
	}
	fmt.Fprint(fb.out, strings.Repeat(" ", indent*2))
	for _, arg := range args {
		switch arg := arg.(type) {
		case string:
			fmt.Fprint(fb.out, arg)
		case []string:
			for _, subArg := range arg {
				fmt.Fprint(fb.out, subArg)
			}
		default:
			fmt.Fprintf(fb.out, "%v", arg)
		}
	}
	fb.out.WriteString("\n")
}

type fileBuilder struct {
	out      *fileBuffer
	ind      int
	comments map[string]string
}

func printFile(ff *descriptorpb.FileDescriptorProto) ([]byte, error) {
	p := &fileBuilder{
		out: &fileBuffer{
			out: &bytes.Buffer{},
		},
		comments: map[string]string{},
	}
	for _, loc := range ff.GetSourceCodeInfo().GetLocation() {
		if loc.LeadingComments != nil {
			p.comments[pathKey(loc.Path)] = loc.GetLeadingComments()
		}
	}
	return p.printFile(ff)
}

func pathKey(path []int32) string {
	return fmt.Sprint(path)
}

func childPath(parent []int32, tag int32, idx int) []int32 {
	path := make([]int32, len(parent), len(parent)+2)
	copy(path, parent)
	return append(path, tag, int32(idx))
}

func (fb *fileBuilder) p(args ...interface{}) {
	fb.out.p(fb.ind, args...)
}

func commentLines(comment string) []string {
	if comment == "" {
		return nil
	}
	lines := strings.Split(comment, "\n")
	lines = lines[:len(lines)-1] // comment strings end with a newline
	for i, line := range lines {
		lines[i] = fmt.Sprintf("//%s", line)
	}
	return lines
}

func (fb *fileBuilder) leadingComments(path []int32) {
	for _, part := range commentLines(fb.comments[pathKey(path)]) {
		fb.p(part)
	}
}

func (fb *fileBuilder) addGap() {
	fb.out.addGap = true
}

func (fb *fileBuilder) endElem(end ...interface{}) {
	// gaps should only occur between elements, not after the last one
	fb.out.addGap = false
	fb.p(end...)
}

func (fb fileBuilder) indent() fileBuilder {
	return fileBuilder{out: fb.out, ind: fb.ind + 1, comments: fb.comments}
}

func (fb *fileBuilder) printFile(ff *descriptorpb.FileDescriptorProto) ([]byte, error) {
	if ff.GetSyntax() != "proto3" {
		return nil, errors.New("only proto3 syntax is supported")
	}

	fb.p("syntax = \"proto3\";")
	fb.addGap()

	if ff.Package != nil {
		fb.p("package ", ff.GetPackage(), ";")
		fb.addGap()
	}

	for idx, msg := range ff.MessageType {
		if err := fb.printMessage([]int32{fileMessageTag, int32(idx)}, msg); err != nil {
			return nil, err
		}
		fb.addGap()
	}

	for idx, enum := range ff.EnumType {
		fb.printEnum([]int32{fileEnumTag, int32(idx)}, enum)
		fb.addGap()
	}

	return fb.out.out.Bytes(), nil
}

func (fb *fileBuilder) printMessage(path []int32, msg *descriptorpb.DescriptorProto) error {
	fb.leadingComments(path)

	if len(msg.Field) == 0 && len(msg.NestedType) == 0 && len(msg.EnumType) == 0 {
		fb.p("message ", msg.GetName(), " {}")
		return nil
	}

	fb.p("message ", msg.GetName(), " {")
	ind := fb.indent()

	mapEntries := map[string]*descriptorpb.DescriptorProto{}
	for _, nested := range msg.NestedType {
		if nested.GetOptions().GetMapEntry() {
			mapEntries[nested.GetName()] = nested
		}
	}

	for idx, field := range msg.Field {
		ind.leadingComments(childPath(path, messageFieldTag, idx))
		typeName, err := fieldTypeName(field, mapEntries)
		if err != nil {
			return fmt.Errorf("message %s: %w", msg.GetName(), err)
		}
		ind.p(typeName, " ", field.GetName(), " = ", field.GetNumber(), ";")
	}
	ind.addGap()

	for idx, nested := range msg.NestedType {
		if nested.GetOptions().GetMapEntry() {
			continue
		}
		if err := ind.printMessage(childPath(path, messageNestedTag, idx), nested); err != nil {
			return fmt.Errorf("message %s: %w", msg.GetName(), err)
		}
		ind.addGap()
	}

	for idx, enum := range msg.EnumType {
		ind.printEnum(childPath(path, messageEnumTag, idx), enum)
		ind.addGap()
	}

	fb.endElem("}")
	return nil
}

func (fb *fileBuilder) printEnum(path []int32, enum *descriptorpb.EnumDescriptorProto) {
	fb.leadingComments(path)

	if len(enum.Value) == 0 {
		fb.p("enum ", enum.GetName(), " {}")
		return
	}

	fb.p("enum ", enum.GetName(), " {")
	ind := fb.indent()
	for idx, value := range enum.Value {
		ind.leadingComments(childPath(path, enumValueTag, idx))
		ind.p(value.GetName(), " = ", value.GetNumber(), ";")
	}
	fb.endElem("}")
}

// fieldTypeName is the type as written in source, including the label.
// Map fields are printed from their entry message.
func fieldTypeName(field *descriptorpb.FieldDescriptorProto, mapEntries map[string]*descriptorpb.DescriptorProto) (string, error) {
	if entry, ok := mapEntries[field.GetTypeName()]; ok && field.GetLabel() == descriptorpb.FieldDescriptorProto_LABEL_REPEATED {
		if len(entry.Field) != 2 {
			return "", fmt.Errorf("map entry %s has %d fields", entry.GetName(), len(entry.Field))
		}
		key, err := elemTypeName(entry.Field[0])
		if err != nil {
			return "", err
		}
		value, err := elemTypeName(entry.Field[1])
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("map<%s, %s>", key, value), nil
	}

	elem, err := elemTypeName(field)
	if err != nil {
		return "", err
	}

	switch {
	case field.GetLabel() == descriptorpb.FieldDescriptorProto_LABEL_REPEATED:
		return "repeated " + elem, nil
	case field.GetProto3Optional():
		return "optional " + elem, nil
	default:
		return elem, nil
	}
}

func elemTypeName(field *descriptorpb.FieldDescriptorProto) (string, error) {
	if field.TypeName != nil {
		return field.GetTypeName(), nil
	}
	if field.Type == nil {
		return "", fmt.Errorf("field %s has no type", field.GetName())
	}
	typeName := strings.TrimPrefix(field.GetType().String(), "TYPE_")
	return strings.ToLower(typeName), nil
}
