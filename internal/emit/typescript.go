package emit

import (
	"github.com/pentops/protoconv/internal/resolve"
)

var typeScriptLang = &language{
	target: TypeScript,
	scalars: map[resolve.Kind]string{
		resolve.Bool:    "boolean",
		resolve.Int32:   "number",
		resolve.UInt32:  "number",
		resolve.Int64:   "bigint",
		resolve.UInt64:  "bigint",
		resolve.Float32: "number",
		resolve.Float64: "number",
		resolve.String:  "string",
		resolve.Bytes:   "Uint8Array",
	},
	// object keys are strings, the JSON mapping encodes 64 bit and bool
	// keys as their string form
	mapKeys: map[resolve.Kind]string{
		resolve.Int64:  "string",
		resolve.UInt64: "string",
		resolve.Bool:   "string",
	},
	listOf: func(elem string) string {
		return elem + "[]"
	},
	mapOf: func(key, value string) string {
		return "Record<" + key + ", " + value + ">"
	},
	indent:      "  ",
	hoistNested: true,
	nestSep:     "_",
	reserved: wordSet(
		"break", "case", "catch", "class", "const", "continue", "debugger",
		"default", "delete", "do", "else", "enum", "export", "extends", "false",
		"finally", "for", "function", "if", "import", "in", "instanceof", "new",
		"null", "return", "super", "switch", "this", "throw", "true", "try",
		"typeof", "var", "void", "while", "with",
		"implements", "interface", "let", "package", "private", "protected",
		"public", "static", "yield",
	),
	typeReserved: wordSet(
		"any", "bigint", "boolean", "never", "number", "object", "string",
		"symbol", "undefined", "unknown",
	),
	// interface properties and enum members may be reserved words
	fieldKeywords: keywordAllow,
	camelCases:    false,
	doc:           docBlock,
}

type typeScriptEmitter struct {
	lang *language
}

func (ts typeScriptEmitter) Target() Target {
	return TypeScript
}

func (ts typeScriptEmitter) Render(decl resolve.Declaration) (string, error) {
	if err := ts.lang.checkDeclNames(decl); err != nil {
		return "", err
	}

	pp := newPrinter(ts.lang.indent)
	for idx, decl := range hoisted(decl) {
		if idx > 0 {
			pp.gap()
		}
		switch decl := decl.(type) {
		case *resolve.Message:
			if err := ts.message(pp, decl); err != nil {
				return "", err
			}
		case *resolve.Enum:
			if err := ts.enum(pp, decl); err != nil {
				return "", err
			}
		}
	}
	return pp.String(), nil
}

func (ts typeScriptEmitter) message(pp *printer, msg *resolve.Message) error {
	lang := ts.lang
	lang.docComment(pp, msg.Comment)
	if len(msg.Fields) == 0 {
		pp.p("export interface ", lang.declName(msg), " {}")
		return nil
	}

	pp.p("export interface ", lang.declName(msg), " {")
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
		if field.Optional {
			name += "?"
		}
		lang.docComment(ind, field.Comment)
		ind.p(name, ": ", lang.typeName(field.Type), ";")
	}
	pp.endElem("}")
	return nil
}

func (ts typeScriptEmitter) enum(pp *printer, enum *resolve.Enum) error {
	lang := ts.lang
	lang.docComment(pp, enum.Comment)
	if len(enum.Values) == 0 {
		pp.p("export enum ", lang.declName(enum), " {}")
		return nil
	}

	pp.p("export enum ", lang.declName(enum), " {")
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
		ind.p(name, " = ", value.Number, ",")
	}
	pp.endElem("}")
	return nil
}
