package emit

import (
	"strings"
	"unicode"

	"github.com/iancoleman/strcase"
	"github.com/pentops/protoconv/internal/resolve"
)

// keywordPolicy is what a target does with a field or case name which is
// one of its reserved words.
type keywordPolicy int

const (
	keywordAllow keywordPolicy = iota
	keywordEscape
	keywordReject
)

type docStyle int

const (
	docBlock  docStyle = iota // /** ... */
	docSlash3                 // ///
)

// language is the read-only table for one target.
type language struct {
	target Target

	scalars map[resolve.Kind]string

	// mapKeys overrides scalars for map keys
	mapKeys map[resolve.Kind]string

	listOf func(elem string) string
	mapOf  func(key, value string) string

	indent string

	// hoistNested emits nested declarations at the top level, named by
	// their path joined with nestSep. Otherwise they are emitted inside the
	// parent and referenced by their dotted path.
	hoistNested bool
	nestSep     string

	reserved map[string]struct{}

	// typeReserved are words which may name a field but not a type
	typeReserved map[string]struct{}

	fieldKeywords keywordPolicy

	// camelCases converts enum case names to lowerCamel
	camelCases bool

	doc docStyle
}

func wordSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, word := range words {
		set[word] = struct{}{}
	}
	return set
}

func (lang *language) isReserved(name string) bool {
	_, ok := lang.reserved[name]
	return ok
}

// typeName renders a resolved type for use in a declaration.
func (lang *language) typeName(tt resolve.Type) string {
	switch tt := tt.(type) {
	case resolve.Scalar:
		return lang.scalars[tt.Kind]
	case resolve.Ref:
		return lang.refName(tt)
	case resolve.List:
		return lang.listOf(lang.typeName(tt.Elem))
	case resolve.Map:
		key, ok := lang.mapKeys[tt.Key.Kind]
		if !ok {
			key = lang.scalars[tt.Key.Kind]
		}
		return lang.mapOf(key, lang.typeName(tt.Value))
	default:
		return tt.TypeName()
	}
}

func (lang *language) refName(ref resolve.Ref) string {
	if !ref.IsLocal() {
		return ref.Name
	}
	if lang.hoistNested {
		return ref.FlatName(lang.nestSep)
	}
	return strings.Join(ref.Path, ".")
}

// declName is the name a declaration is emitted as.
func (lang *language) declName(decl resolve.Declaration) string {
	if lang.hoistNested {
		return strings.Join(decl.DeclPath(), lang.nestSep)
	}
	return decl.DeclName()
}

// memberName converts and checks a field or enum case name.
func (lang *language) memberName(decl resolve.Declaration, name string, camel bool) (string, error) {
	if camel {
		name = lowerCamel(name)
	}
	if !lang.isReserved(name) {
		return name, nil
	}

	switch lang.fieldKeywords {
	case keywordEscape:
		return "`" + name + "`", nil
	case keywordReject:
		return "", lang.errorf(decl, "%q is a reserved word", name)
	default:
		return name, nil
	}
}

func (lang *language) fieldName(decl resolve.Declaration, field *resolve.Field) (string, error) {
	return lang.memberName(decl, field.Name, true)
}

func (lang *language) caseName(decl resolve.Declaration, value *resolve.EnumValue) (string, error) {
	return lang.memberName(decl, value.Name, lang.camelCases)
}

// checkDeclNames checks every declaration name the target would emit: no
// reserved words, and no two declarations emitted under the same name.
func (lang *language) checkDeclNames(decl resolve.Declaration) error {
	if err := lang.checkReservedNames(decl); err != nil {
		return err
	}
	return lang.checkTypeNames(decl)
}

func (lang *language) checkReservedNames(decl resolve.Declaration) error {
	_, typeReserved := lang.typeReserved[decl.DeclName()]
	if typeReserved || lang.isReserved(decl.DeclName()) {
		return lang.errorf(decl, "declaration name %q is a reserved word", decl.DeclName())
	}
	if msg, ok := decl.(*resolve.Message); ok {
		for _, nested := range msg.Nested {
			if err := lang.checkReservedNames(nested); err != nil {
				return err
			}
		}
	}
	return nil
}

// checkTypeNames finds declarations which share an emitted name: any two
// hoisted declarations, or siblings nested in the same parent.
func (lang *language) checkTypeNames(decl resolve.Declaration) error {
	if lang.hoistNested {
		names := nameSet{}
		for _, each := range hoisted(decl) {
			if err := lang.claim(names, each, lang.declName(each), declPath(each)); err != nil {
				return err
			}
		}
		return nil
	}

	msg, ok := decl.(*resolve.Message)
	if !ok {
		return nil
	}
	names := nameSet{}
	for _, nested := range msg.Nested {
		if err := lang.claim(names, nested, nested.DeclName(), declPath(nested)); err != nil {
			return err
		}
		if err := lang.checkTypeNames(nested); err != nil {
			return err
		}
	}
	return nil
}

// nameSet maps each name emitted in one scope to the source name it came
// from.
type nameSet map[string]string

// claim records name as emitted for source, failing when another source
// already took it, e.g. foo_bar and fooBar both become fooBar.
func (lang *language) claim(names nameSet, decl resolve.Declaration, name string, source string) error {
	if other, ok := names[name]; ok {
		return lang.errorf(decl, "%s and %s are both emitted as %q", other, source, name)
	}
	names[name] = source
	return nil
}

func declPath(decl resolve.Declaration) string {
	return joinPath(decl.DeclPath(), decl.DeclName())
}

func (lang *language) errorf(decl resolve.Declaration, format string, args ...interface{}) *EmitError {
	return emitErrorf(lang.target, decl, format, args...)
}

// docComment prints the comment above the next line, nothing when empty.
func (lang *language) docComment(pp *printer, comment string) {
	if comment == "" {
		return
	}
	lines := strings.Split(comment, "\n")

	switch lang.doc {
	case docSlash3:
		for _, line := range lines {
			pp.p(strings.TrimRight("/// "+line, " "))
		}

	default:
		if len(lines) == 1 {
			pp.p("/** ", escapeBlockComment(lines[0]), " */")
			return
		}
		pp.p("/**")
		for _, line := range lines {
			pp.p(strings.TrimRight(" * "+escapeBlockComment(line), " "))
		}
		pp.p(" */")
	}
}

// escapeBlockComment stops a comment from closing the block early.
func escapeBlockComment(line string) string {
	return strings.ReplaceAll(line, "*/", "*\\/")
}

// lowerCamel converts proto snake_case and SCREAMING_CASE names. strcase
// works on bytes, so non ASCII names are kept as written.
func lowerCamel(name string) string {
	hasLower := false
	for _, r := range name {
		if r > unicode.MaxASCII {
			return name
		}
		if unicode.IsLower(r) {
			hasLower = true
		}
	}
	if !hasLower {
		name = strings.ToLower(name)
	}
	return strcase.ToLowerCamel(name)
}
