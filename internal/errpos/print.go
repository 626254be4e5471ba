package errpos

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorsWithSource holds errors along with the source they refer to, so
// they can be printed with an excerpt.
type ErrorsWithSource struct {
	lines  []string
	Errors Errors
}

func (e ErrorsWithSource) HumanString(contextLines int) string {
	if len(e.Errors) == 0 {
		return "<no errors>"
	}

	lines := make([]string, 0, len(e.Errors))
	for idx, err := range e.Errors {
		if idx > 0 {
			lines = append(lines, "-----")
		}
		lines = append(lines, humanString(err, e.lines, contextLines))
	}

	return strings.Join(lines, "\n")
}

func (e ErrorsWithSource) Error() string {
	return e.Errors.Error()
}

func (e ErrorsWithSource) Unwrap() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e.Errors[0]
}

func AsErrorsWithSource(err error) (*ErrorsWithSource, bool) {
	var posErr *ErrorsWithSource
	if errors.As(err, &posErr) {
		return posErr, true
	}
	return nil, false
}

// AddSource attaches the source text to the error for printing.
func AddSource(err error, source string) *ErrorsWithSource {
	if withSource, ok := AsErrorsWithSource(err); ok {
		return withSource
	}

	input, _ := AsErrors(err)
	return &ErrorsWithSource{
		lines:  strings.Split(source, "\n"),
		Errors: input,
	}
}

// AddSourceFile is AddSource, also setting the filename of each error.
func AddSourceFile(err error, filename string, source string) *ErrorsWithSource {
	withSource := AddSource(err, source)
	for _, existing := range withSource.Errors {
		if existing.Pos == nil {
			existing.Pos = &Position{}
		}
		existing.Pos.Filename = &filename
	}
	return withSource
}

func humanString(err *Err, lines []string, context int) string {
	out := &strings.Builder{}

	out.WriteString("Conversion Error:\n")

	func() {
		if err.Pos == nil {
			out.WriteString("<no position information>\n")
			return
		}
		fmt.Fprintf(out, "Position: %s\n", err.Pos.String())

		startLine := err.Pos.Start.Line + 1
		startCol := err.Pos.Start.Column + 1
		if startLine > len(lines) || startLine < 1 {
			fmt.Fprintf(out, "<line %d out of range (%d)>\n", startLine, len(lines))
			return
		}

		for lineNum := startLine - context; lineNum < startLine; lineNum++ {
			if lineNum < 1 {
				continue
			}
			fmt.Fprintf(out, "  > %03d: %s\n", lineNum, tabsToSpaces(lines[lineNum-1]))
		}

		errLine := lines[startLine-1]
		prefix := fmt.Sprintf("  > %03d", startLine)
		fmt.Fprintf(out, "%s: %s\n", prefix, tabsToSpaces(errLine))

		if startCol == len(errLine)+1 {
			// the column may reference the EOF or EOL
			errLine += " "
		}

		if startCol < 1 || startCol > len(errLine) {
			fmt.Fprintf(out, "%s: <column %d out of range>\n", strings.Repeat(">", len(prefix)), startCol)
			return
		}

		marker := replaceRunes(errLine[:startCol-1], func(r rune) string {
			if r == '\t' {
				return "  "
			}
			return " "
		})
		fmt.Fprintf(out, "%s: %s^\n", strings.Repeat(">", len(prefix)), marker)
	}()

	if len(err.Ctx) > 0 {
		fmt.Fprintf(out, "Context: %s\n", err.Ctx.String())
	}
	if err.Err != nil {
		fmt.Fprintf(out, "Message: %s\n", err.Err.Error())
	}
	return out.String()
}

func tabsToSpaces(s string) string {
	return replaceRunes(s, func(r rune) string {
		if r == '\t' {
			return "  "
		}
		return string(r)
	})
}

func replaceRunes(s string, cb func(rune) string) string {
	out := &strings.Builder{}
	for _, r := range s {
		out.WriteString(cb(r))
	}
	return out.String()
}
