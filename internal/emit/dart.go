package emit

import (
	"github.com/pentops/protoconv/internal/resolve"
)

var dartLang = &language{
	target: Dart,
	scalars: map[resolve.Kind]string{
		resolve.Bool:    "bool",
		resolve.Int32:   "int",
		resolve.UInt32:  "int",
		resolve.Int64:   "int",
		resolve.UInt64:  "int",
		resolve.Float32: "double",
		resolve.Float64: "double",
		resolve.String:  "String",
		resolve.Bytes:   "List<int>",
	},
	listOf: func(elem string) string {
		return "List<" + elem + ">"
	},
	mapOf: func(key, value string) string {
		return "Map<" + key + ", " + value + ">"
	},
	indent:      "  ",
	hoistNested: true,
	nestSep:     "_",
	reserved: wordSet(
		"assert", "await", "break", "case", "catch", "class", "const",
		"continue", "default", "do", "else", "enum", "extends", "false",
		"final", "finally", "for", "if", "in", "is", "new", "null", "rethrow",
		"return", "super", "switch", "this", "throw", "true", "try", "var",
		"void", "while", "with", "yield",
	),
	typeReserved: wordSet(
		"abstract", "as", "covariant", "deferred", "dynamic", "export",
		"extension", "external", "factory", "Function", "get", "implements",
		"import", "interface", "late", "library", "mixin", "operator", "part",
		"required", "set", "static", "typedef",
	),
	// Dart has no escaped identifiers
	fieldKeywords: keywordReject,
	camelCases:    true,
	doc:           docSlash3,
}

// dartEnumMembers are declared on every emitted enum
var dartEnumMembers = wordSet("value", "values", "index")

type dartEmitter struct {
	lang *language
}

func (dt dartEmitter) Target() Target {
	return Dart
}

func (dt dartEmitter) Render(decl resolve.Declaration) (string, error) {
	if err := dt.lang.checkDeclNames(decl); err != nil {
		return "", err
	}

	pp := newPrinter(dt.lang.indent)
	for idx, decl := range hoisted(decl) {
		if idx > 0 {
			pp.gap()
		}
		switch decl := decl.(type) {
		case *resolve.Message:
			if err := dt.message(pp, decl); err != nil {
				return "", err
			}
		case *resolve.Enum:
			if err := dt.enum(pp, decl); err != nil {
				return "", err
			}
		}
	}
	return pp.String(), nil
}

func (dt dartEmitter) message(pp *printer, msg *resolve.Message) error {
	lang := dt.lang
	name := lang.declName(msg)

	lang.docComment(pp, msg.Comment)
	pp.p("class ", name, " {")
	ind := pp.indent()

	if len(msg.Fields) == 0 {
		ind.p("const ", name, "();")
		pp.endElem("}")
		return nil
	}

	params := make([]string, 0, len(msg.Fields))
	names := nameSet{}
	for _, field := range msg.Fields {
		fieldName, err := lang.fieldName(msg, field)
		if err != nil {
			return err
		}
		if err := lang.claim(names, msg, fieldName, field.Name); err != nil {
			return err
		}
		typeName := lang.typeName(field.Type)
		if field.Optional {
			typeName += "?"
			params = append(params, "this."+fieldName+",")
		} else {
			params = append(params, "required this."+fieldName+",")
		}
		lang.docComment(ind, field.Comment)
		ind.p("final ", typeName, " ", fieldName, ";")
	}

	ind.gap()
	ind.p("const ", name, "({")
	paramInd := ind.indent()
	for _, param := range params {
		paramInd.p(param)
	}
	ind.p("});")
	pp.endElem("}")
	return nil
}

func (dt dartEmitter) enum(pp *printer, enum *resolve.Enum) error {
	lang := dt.lang
	name := lang.declName(enum)
	if len(enum.Values) == 0 {
		return lang.errorf(enum, "a Dart enum needs at least one value")
	}

	lang.docComment(pp, enum.Comment)
	pp.p("enum ", name, " {")
	ind := pp.indent()
	names := nameSet{}
	for idx, value := range enum.Values {
		caseName, err := lang.caseName(enum, value)
		if err != nil {
			return err
		}
		if err := lang.claim(names, enum, caseName, value.Name); err != nil {
			return err
		}
		if _, ok := dartEnumMembers[caseName]; ok {
			return lang.errorf(enum, "enum value %s would be named %q, which clashes with an enum member", value.Name, caseName)
		}
		terminator := ","
		if idx == len(enum.Values)-1 {
			terminator = ";"
		}
		lang.docComment(ind, value.Comment)
		ind.p(caseName, "(", value.Number, ")", terminator)
	}

	ind.gap()
	ind.p("const ", name, "(this.value);")
	ind.gap()
	ind.p("final int value;")
	pp.endElem("}")
	return nil
}
