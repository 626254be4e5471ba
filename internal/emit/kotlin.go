package emit

import (
	"math"

	"github.com/pentops/protoconv/internal/resolve"
)

var kotlinLang = &language{
	target: Kotlin,
	scalars: map[resolve.Kind]string{
		resolve.Bool:    "Boolean",
		resolve.Int32:   "Int",
		resolve.UInt32:  "Int",
		resolve.Int64:   "Long",
		resolve.UInt64:  "Long",
		resolve.Float32: "Float",
		resolve.Float64: "Double",
		resolve.String:  "String",
		resolve.Bytes:   "ByteArray",
	},
	listOf: func(elem string) string {
		return "List<" + elem + ">"
	},
	mapOf: func(key, value string) string {
		return "Map<" + key + ", " + value + ">"
	},
	indent:      "    ",
	hoistNested: false,
	reserved: wordSet(
		"as", "break", "class", "continue", "do", "else", "false", "for", "fun",
		"if", "in", "interface", "is", "null", "object", "package", "return",
		"super", "this", "throw", "true", "try", "typealias", "typeof", "val",
		"var", "when", "while",
	),
	fieldKeywords: keywordEscape,
	camelCases:    false,
	doc:           docBlock,
}

type kotlinEmitter struct {
	lang *language
}

func (kt kotlinEmitter) Target() Target {
	return Kotlin
}

func (kt kotlinEmitter) Render(decl resolve.Declaration) (string, error) {
	if err := kt.lang.checkDeclNames(decl); err != nil {
		return "", err
	}

	pp := newPrinter(kt.lang.indent)
	if err := kt.declaration(pp, decl); err != nil {
		return "", err
	}
	return pp.String(), nil
}

func (kt kotlinEmitter) declaration(pp *printer, decl resolve.Declaration) error {
	switch decl := decl.(type) {
	case *resolve.Message:
		return kt.message(pp, decl)
	case *resolve.Enum:
		return kt.enum(pp, decl)
	default:
		return nil
	}
}

func (kt kotlinEmitter) message(pp *printer, msg *resolve.Message) error {
	lang := kt.lang
	lang.docComment(pp, msg.Comment)

	// a data class needs at least one constructor property
	opener := "class " + msg.Name
	if len(msg.Fields) > 0 {
		pp.p("data class ", msg.Name, "(")
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
			lang.docComment(ind, field.Comment)
			if field.Optional {
				ind.p("val ", name, ": ", lang.typeName(field.Type), "? = null,")
			} else {
				ind.p("val ", name, ": ", lang.typeName(field.Type), ",")
			}
		}
		opener = ")"
	}

	if len(msg.Nested) == 0 {
		pp.endElem(opener)
		return nil
	}

	pp.endElem(opener, " {")
	ind := pp.indent()
	for idx, nested := range msg.Nested {
		if idx > 0 {
			ind.gap()
		}
		if err := kt.declaration(ind, nested); err != nil {
			return err
		}
	}
	pp.endElem("}")
	return nil
}

func (kt kotlinEmitter) enum(pp *printer, enum *resolve.Enum) error {
	lang := kt.lang
	for _, value := range enum.Values {
		if value.Number < math.MinInt32 || value.Number > math.MaxInt32 {
			return lang.errorf(enum, "value %s = %d does not fit the Int enum value", value.Name, value.Number)
		}
	}

	lang.docComment(pp, enum.Comment)
	pp.p("enum class ", enum.Name, "(val value: Int) {")
	ind := pp.indent()
	names := nameSet{}
	if len(enum.Values) == 0 {
		ind.p(";")
	}
	for idx, value := range enum.Values {
		name, err := lang.caseName(enum, value)
		if err != nil {
			return err
		}
		if err := lang.claim(names, enum, name, value.Name); err != nil {
			return err
		}
		terminator := ","
		if idx == len(enum.Values)-1 {
			terminator = ";"
		}
		lang.docComment(ind, value.Comment)
		ind.p(name, "(", value.Number, ")", terminator)
	}

	ind.gap()
	ind.p("companion object {")
	ind.indent().p("fun fromValue(value: Int): ", enum.Name, "? = entries.firstOrNull { it.value == value }")
	ind.endElem("}")
	pp.endElem("}")
	return nil
}
