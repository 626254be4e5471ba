package emit

import (
	"github.com/pentops/protoconv/internal/resolve"
)

var swiftLang = &language{
	target: Swift,
	scalars: map[resolve.Kind]string{
		resolve.Bool:    "Bool",
		resolve.Int32:   "Int32",
		resolve.UInt32:  "UInt32",
		resolve.Int64:   "Int64",
		resolve.UInt64:  "UInt64",
		resolve.Float32: "Float",
		resolve.Float64: "Double",
		resolve.String:  "String",
		resolve.Bytes:   "Data",
	},
	listOf: func(elem string) string {
		return "[" + elem + "]"
	},
	mapOf: func(key, value string) string {
		return "[" + key + ": " + value + "]"
	},
	indent:      "    ",
	hoistNested: false,
	reserved: wordSet(
		"associatedtype", "class", "deinit", "enum", "extension", "fileprivate",
		"func", "import", "init", "inout", "internal", "let", "open", "operator",
		"private", "precedencegroup", "protocol", "public", "rethrows",
		"static", "struct", "subscript", "typealias", "var",
		"break", "case", "catch", "continue", "default", "defer", "do", "else",
		"fallthrough", "for", "guard", "if", "in", "repeat", "return", "throw",
		"switch", "where", "while",
		"Any", "as", "await", "false", "is", "nil", "self", "Self", "super",
		"throws", "true", "try",
	),
	typeReserved: wordSet("Type", "Protocol"),
	fieldKeywords: keywordEscape,
	camelCases:    true,
	doc:           docSlash3,
}

type swiftEmitter struct {
	lang *language
}

func (sw swiftEmitter) Target() Target {
	return Swift
}

func (sw swiftEmitter) Render(decl resolve.Declaration) (string, error) {
	if err := sw.lang.checkDeclNames(decl); err != nil {
		return "", err
	}

	pp := newPrinter(sw.lang.indent)
	if err := sw.declaration(pp, decl); err != nil {
		return "", err
	}
	return pp.String(), nil
}

func (sw swiftEmitter) declaration(pp *printer, decl resolve.Declaration) error {
	switch decl := decl.(type) {
	case *resolve.Message:
		return sw.message(pp, decl)
	case *resolve.Enum:
		return sw.enum(pp, decl)
	default:
		return nil
	}
}

func (sw swiftEmitter) message(pp *printer, msg *resolve.Message) error {
	lang := sw.lang
	lang.docComment(pp, msg.Comment)
	if len(msg.Fields) == 0 && len(msg.Nested) == 0 {
		pp.p("struct ", msg.Name, ": Codable {}")
		return nil
	}

	pp.p("struct ", msg.Name, ": Codable {")
	ind := pp.indent()
	names := nameSet{}
	for _, field := range msg.Fields {
		name, err := lang.fieldName(msg, field)
		if err != nil {
			return err
		}
		if err := lang.claim(names, msg, name, field.Name); err != nil {
			return err
		}
		typeName := lang.typeName(field.Type)
		if field.Optional {
			typeName += "?"
		}
		lang.docComment(ind, field.Comment)
		ind.p("var ", name, ": ", typeName)
	}

	for idx, nested := range msg.Nested {
		if idx > 0 || len(msg.Fields) > 0 {
			ind.gap()
		}
		if err := sw.declaration(ind, nested); err != nil {
			return err
		}
	}
	pp.endElem("}")
	return nil
}

func (sw swiftEmitter) enum(pp *printer, enum *resolve.Enum) error {
	lang := sw.lang
	if len(enum.Values) == 0 {
		return lang.errorf(enum, "a Swift enum with raw values needs at least one case")
	}

	// raw values must be unique, so aliases cannot be expressed
	seen := make(map[int64]string, len(enum.Values))
	for _, value := range enum.Values {
		if other, ok := seen[value.Number]; ok {
			return lang.errorf(enum, "%s and %s share the raw value %d", other, value.Name, value.Number)
		}
		seen[value.Number] = value.Name
	}

	lang.docComment(pp, enum.Comment)
	pp.p("enum ", enum.Name, ": Int, Codable {")
	ind := pp.indent()
	names := nameSet{}
	for _, value := range enum.Values {
		name, err := lang.caseName(enum, value)
		if err != nil {
			return err
		}
		if err := lang.claim(names, enum, name, value.Name); err != nil {
			return err
		}
		lang.docComment(ind, value.Comment)
		ind.p("case ", name, " = ", value.Number)
	}
	pp.endElem("}")
	return nil
}
