package ast

import (
	"strings"

	"github.com/pentops/protoconv/internal/lexer"
)

// walkToken is a grammar token with the comments which surround it.
type walkToken struct {
	lexer.Token

	// leading is the comment block ending on the line before the token
	leading []string

	// trailing is a comment starting on the same line, after the token
	trailing []string
}

// attachComments removes COMMENT tokens from the stream, attaching each to
// the grammar token it documents.
// A comment is trailing when it starts on the line the previous grammar
// token ended on, otherwise it is part of the leading block of the next
// token, as long as the block is not separated from it by a blank line.
func attachComments(tokens []lexer.Token) []walkToken {
	out := make([]walkToken, 0, len(tokens))

	var pending []lexer.Token

	for _, tok := range tokens {
		if tok.Type != lexer.COMMENT {
			out = append(out, walkToken{
				Token:   tok,
				leading: leadingBlock(pending, tok),
			})
			pending = pending[:0]
			continue
		}

		if len(pending) == 0 && len(out) > 0 {
			prev := &out[len(out)-1]
			if prev.End.Line == tok.Start.Line {
				prev.trailing = append(prev.trailing, commentLines(tok.Lit)...)
				continue
			}
		}
		pending = append(pending, tok)
	}

	return out
}

// leadingBlock returns the lines of the contiguous comments directly above
// tok.
func leadingBlock(pending []lexer.Token, tok lexer.Token) []string {
	if len(pending) == 0 {
		return nil
	}

	// walk back from the token while each comment touches the next
	nextLine := tok.Start.Line
	first := len(pending)
	for idx := len(pending) - 1; idx >= 0; idx-- {
		comment := pending[idx]
		if comment.End.Line < nextLine-1 {
			break
		}
		first = idx
		nextLine = comment.Start.Line
	}

	var lines []string
	for _, comment := range pending[first:] {
		lines = append(lines, commentLines(comment.Lit)...)
	}
	return lines
}

// commentLines splits comment text into trimmed lines, dropping the
// decoration of `/** */` and `///` doc comments and empty edge lines.
func commentLines(text string) []string {
	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "*") || strings.HasPrefix(line, "/") {
			if rest := line[1:]; rest == "" || rest[0] == ' ' || rest[0] == '\t' {
				line = strings.TrimSpace(rest)
			}
		}
		lines = append(lines, line)
	}

	for len(lines) > 0 && lines[0] == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// docComment joins the leading and trailing comments of a node. Leading
// lines keep their line breaks, the trailing comment follows after a
// space.
func docComment(leading, trailing []string) string {
	doc := strings.Join(leading, "\n")
	tail := strings.Join(trailing, " ")
	if doc == "" {
		return tail
	}
	if tail == "" {
		return doc
	}
	return doc + " " + tail
}
