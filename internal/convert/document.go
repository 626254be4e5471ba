package convert

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/pentops/log.go/log"
	"github.com/pentops/protoconv/internal/emit"
	"golang.org/x/sync/errgroup"
)

// NothingFound is the document output when no part produced anything.
const NothingFound = "// No valid proto message or enum found"

// SplitDocument splits a multi declaration document before each top level
// message or enum keyword, including one following a closing brace on the
// same line. Braces inside nested declarations, comments and strings do not
// split. A keyword at the very start of a line always splits, so an unclosed
// declaration does not swallow the ones after it. Comment lines directly
// above a declaration move with it. Whitespace only parts are dropped.
func SplitDocument(text string) []string {
	splitter := &docSplitter{}
	for _, line := range strings.SplitAfter(text, "\n") {
		splitter.line(line)
	}
	splitter.flush()
	return splitter.parts
}

type docSplitter struct {
	parts []string

	current   []string
	isComment []bool

	depth   int
	inBlock bool
}

func (ds *docSplitter) line(line string) {
	trimmed := strings.TrimSpace(line)
	commentLine := ds.inBlock || strings.HasPrefix(trimmed, "//") || strings.HasPrefix(trimmed, "/*")

	if !ds.inBlock && startsDeclaration(trimmed) && (ds.depth == 0 || !isIndented(line)) {
		split := len(ds.current)
		for split > 0 && ds.isComment[split-1] {
			split--
		}
		leading := append([]string{}, ds.current[split:]...)
		leadingComment := append([]bool{}, ds.isComment[split:]...)
		ds.current = ds.current[:split]
		ds.isComment = ds.isComment[:split]
		ds.flush()
		ds.current = leading
		ds.isComment = leadingComment
		ds.depth = 0
	}

	rest := line
	for {
		cut := ds.scan(rest)
		if cut < 0 {
			break
		}
		ds.current = append(ds.current, rest[:cut])
		ds.isComment = append(ds.isComment, false)
		ds.flush()
		rest = rest[cut:]
		commentLine = false
	}

	ds.current = append(ds.current, rest)
	ds.isComment = append(ds.isComment, commentLine)
}

func (ds *docSplitter) flush() {
	part := strings.TrimSpace(strings.Join(ds.current, ""))
	if part != "" {
		ds.parts = append(ds.parts, part)
	}
	ds.current = nil
	ds.isComment = nil
}

// scan tracks brace depth and block comment state through text. It stops
// after a brace closing a top level declaration when another declaration
// follows on the same line, returning the offset to cut at, otherwise -1.
func (ds *docSplitter) scan(text string) int {
	for idx := 0; idx < len(text); idx++ {
		if ds.inBlock {
			if strings.HasPrefix(text[idx:], "*/") {
				ds.inBlock = false
				idx++
			}
			continue
		}

		switch ch := text[idx]; ch {
		case '/':
			if strings.HasPrefix(text[idx:], "//") {
				return -1
			}
			if strings.HasPrefix(text[idx:], "/*") {
				ds.inBlock = true
				idx++
			}
		case '"', '\'':
			end := strings.IndexByte(text[idx+1:], ch)
			if end < 0 {
				return -1
			}
			idx += end + 1
		case '{':
			ds.depth++
		case '}':
			if ds.depth == 0 {
				continue
			}
			ds.depth--
			if ds.depth == 0 && startsDeclaration(strings.TrimSpace(text[idx+1:])) {
				return idx + 1
			}
		}
	}
	return -1
}

func isIndented(line string) bool {
	return line != "" && (line[0] == ' ' || line[0] == '\t')
}

func startsDeclaration(trimmed string) bool {
	fields := strings.Fields(trimmed)
	if len(fields) == 0 {
		return false
	}
	return fields[0] == "message" || fields[0] == "enum"
}

// ConvertDocument converts each part of the document independently and
// joins the results in order. A failing part is replaced by an error
// comment holding the part and the error, it never affects other parts.
func ConvertDocument(ctx context.Context, text string, target emit.Target) string {
	parts := SplitDocument(text)
	ctx = log.WithFields(ctx, map[string]interface{}{
		"target": target.String(),
		"parts":  len(parts),
	})

	results := make([]string, len(parts))
	failed := make([]bool, len(parts))

	eg := &errgroup.Group{}
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for idx, part := range parts {
		eg.Go(func() error {
			out, err := Convert(part, target)
			if err != nil {
				log.WithFields(ctx, map[string]interface{}{
					"part":  idx,
					"error": err.Error(),
				}).Debug("part failed to convert")
				failed[idx] = true
				results[idx] = fmt.Sprintf("// Error converting part:\n%s\n// Error: %s\n\n", part, err)
				return nil
			}
			results[idx] = out + "\n\n"
			return nil
		})
	}
	// parts report failures inline, never through the group
	_ = eg.Wait()

	failCount := 0
	for _, partFailed := range failed {
		if partFailed {
			failCount++
		}
	}
	log.WithField(ctx, "failed", failCount).Debug("converted document")

	result := strings.Join(results, "")
	if result == "" {
		return NothingFound
	}
	return result
}
