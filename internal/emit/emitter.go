package emit

import (
	"fmt"
	"strings"

	"github.com/pentops/protoconv/internal/errpos"
	"github.com/pentops/protoconv/internal/resolve"
)

// Emitter renders one resolved declaration as source text for its target.
// Emitters hold no state and are safe for concurrent use.
type Emitter interface {
	Target() Target
	Render(resolve.Declaration) (string, error)
}

// EmitError is a declaration the target cannot express.
type EmitError struct {
	Target Target

	// Decl is the dotted path of the declaration
	Decl string

	Pos errpos.Point
	Msg string
}

func (e *EmitError) Error() string {
	return fmt.Sprintf("%s %s: %s: %s", e.Pos, e.Target, e.Decl, e.Msg)
}

func (e *EmitError) ErrorPosition() *errpos.Position {
	return errpos.PointPosition(e.Pos)
}

func emitErrorf(target Target, decl resolve.Declaration, format string, args ...interface{}) *EmitError {
	err := &EmitError{
		Target: target,
		Msg:    fmt.Sprintf(format, args...),
	}
	switch decl := decl.(type) {
	case *resolve.Message:
		err.Decl = joinPath(decl.Path, decl.Name)
		err.Pos = decl.Pos
	case *resolve.Enum:
		err.Decl = joinPath(decl.Path, decl.Name)
		err.Pos = decl.Pos
	}
	return err
}

func joinPath(path []string, fallback string) string {
	if len(path) == 0 {
		return fallback
	}
	return strings.Join(path, ".")
}

// ForTarget returns the emitter for the target.
func ForTarget(target Target) (Emitter, error) {
	switch target {
	case TypeScript:
		return typeScriptEmitter{lang: typeScriptLang}, nil
	case Swift:
		return swiftEmitter{lang: swiftLang}, nil
	case Kotlin:
		return kotlinEmitter{lang: kotlinLang}, nil
	case Dart:
		return dartEmitter{lang: dartLang}, nil
	default:
		return nil, fmt.Errorf("no emitter for %s", target)
	}
}

// Render is a shortcut for ForTarget(target).Render(decl).
func Render(target Target, decl resolve.Declaration) (string, error) {
	emitter, err := ForTarget(target)
	if err != nil {
		return "", err
	}
	return emitter.Render(decl)
}

// hoisted flattens the declaration and everything nested in it, parent
// first, for targets which emit nested types at the top level.
func hoisted(decl resolve.Declaration) []resolve.Declaration {
	out := []resolve.Declaration{decl}
	if msg, ok := decl.(*resolve.Message); ok {
		for _, nested := range msg.Nested {
			out = append(out, hoisted(nested)...)
		}
	}
	return out
}
