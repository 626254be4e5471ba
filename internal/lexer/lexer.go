package lexer

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/pentops/protoconv/internal/errpos"
)

// LexError is returned for any input which matches no token rule.
type LexError struct {
	Pos  Position
	Char rune // 0 when the problem is not a single character
	Msg  string
}

func (e *LexError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("%s %s", e.Pos, e.Msg)
	}
	return fmt.Sprintf("%s unexpected character %q", e.Pos, e.Char)
}

func (e *LexError) ErrorPosition() *errpos.Position {
	return errpos.PointPosition(e.Pos)
}

type Lexer struct {
	line   int // 0 based
	column int // 0 based

	ch       rune
	chOffset int // byte offset of ch
	offset   int // byte offset of the next rune
	data     string
	isEOL    bool
}

func NewLexer(data string) *Lexer {
	return &Lexer{
		data:   data,
		line:   0,
		column: -1,
	}
}

const eof = -1

func (l *Lexer) next() {
	if l.isEOL {
		l.line++
		l.column = 0
		l.isEOL = false
	} else {
		l.column++
	}

	l.chOffset = l.offset
	if l.offset >= len(l.data) {
		l.ch = eof
		return
	}

	r, size := utf8.DecodeRuneInString(l.data[l.offset:])
	l.offset += size

	if r == '\n' {
		// the EOL position is the end of this line, the next character
		// resets to n+1, 0
		l.isEOL = true
	}

	l.ch = r
}

func (l *Lexer) getPosition() Position {
	return Position{
		Offset: l.chOffset,
		Line:   l.line,
		Column: l.column,
	}
}

// endPosition is the position just after the current character.
func (l *Lexer) endPosition() Position {
	if l.ch == eof {
		return l.getPosition()
	}
	return Position{
		Offset: l.offset,
		Line:   l.line,
		Column: l.column + 1,
	}
}

func (l *Lexer) peek() rune {
	if l.offset >= len(l.data) {
		return eof
	}
	r, _ := utf8.DecodeRuneInString(l.data[l.offset:])
	return r
}

func (l *Lexer) errf(format string, args ...interface{}) error {
	return &LexError{
		Pos: l.getPosition(),
		Msg: fmt.Sprintf(format, args...),
	}
}

func (l *Lexer) tokenFrom(ty TokenType, start Position) Token {
	end := l.endPosition()
	return Token{
		Type:  ty,
		Lit:   l.data[start.Offset:end.Offset],
		Start: start,
		End:   end,
	}
}

// AllTokens lexes the whole input. The returned slice does not include the
// final EOF token. A lex failure aborts the whole input.
func (l *Lexer) AllTokens() ([]Token, error) {
	var tokens []Token
	for {
		tok, err := l.NextToken()
		if err != nil {
			return nil, err
		}
		if tok.Type == EOF {
			return tokens, nil
		}
		tokens = append(tokens, tok)
	}
}

// NextToken scans the input for the next token, skipping whitespace.
func (l *Lexer) NextToken() (Token, error) {
	for {
		l.next()
		if l.ch == eof {
			pos := l.getPosition()
			return Token{Type: EOF, Start: pos, End: pos}, nil
		}

		startPos := l.getPosition()

		if op, ok := operators[l.ch]; ok {
			return l.tokenFrom(op, startPos), nil
		}

		switch l.ch {
		case '/':
			switch l.peek() {
			case '/':
				lit := l.lexLineComment()
				tok := l.tokenFrom(COMMENT, startPos)
				tok.Lit = lit
				return tok, nil

			case '*':
				lit, err := l.lexBlockComment()
				if err != nil {
					return Token{}, err
				}
				tok := l.tokenFrom(COMMENT, startPos)
				tok.Lit = lit
				return tok, nil

			default:
				return Token{}, &LexError{Pos: startPos, Char: l.ch}
			}

		case '"', '\'':
			lit, err := l.lexString()
			if err != nil {
				return Token{}, err
			}
			tok := l.tokenFrom(STRING, startPos)
			tok.Lit = lit
			return tok, nil
		}

		if unicode.IsSpace(l.ch) {
			continue
		} else if isDigit(l.ch) {
			l.lexNumber()
			return l.tokenFrom(INT, startPos), nil
		} else if unicode.IsLetter(l.ch) {
			l.lexIdent()
			tok := l.tokenFrom(IDENT, startPos)
			if keyword, ok := asKeyword(tok.Lit); ok {
				tok.Type = keyword
			}
			return tok, nil
		}

		return Token{}, &LexError{Pos: startPos, Char: l.ch}
	}
}

func isDigit(r rune) bool {
	return '0' <= r && r <= '9'
}

func isHexDigit(r rune) bool {
	return isDigit(r) || ('a' <= r && r <= 'f') || ('A' <= r && r <= 'F')
}

// lexNumber consumes an integer literal, decimal or 0x hex.
func (l *Lexer) lexNumber() {
	if l.ch == '0' && (l.peek() == 'x' || l.peek() == 'X') {
		l.next()
		for isHexDigit(l.peek()) {
			l.next()
		}
		return
	}
	for isDigit(l.peek()) {
		l.next()
	}
}

// lexIdent consumes the remainder of an identifier.
func (l *Lexer) lexIdent() {
	for {
		next := l.peek()
		if unicode.IsLetter(next) || isDigit(next) || next == '_' {
			l.next()
		} else {
			return
		}
	}
}

// lexString scans until the matching quote and returns the unquoted
// literal. Escapes are kept as written, the value is never interpreted.
func (l *Lexer) lexString() (string, error) {
	quote := l.ch
	start := l.offset
	for {
		l.next()

		switch l.ch {
		case eof:
			return "", l.errf("unterminated string literal")
		case '\n':
			return "", l.errf("unexpected EOL in string literal")
		case quote:
			return l.data[start:l.chOffset], nil
		case '\\':
			if l.peek() == eof {
				return "", l.errf("unterminated string literal")
			}
			l.next()
		}
	}
}

func (l *Lexer) lexBlockComment() (string, error) {
	l.next() // consume the *
	start := l.offset
	for {
		l.next()
		if l.ch == eof {
			return "", l.errf("unterminated block comment")
		}
		if l.ch == '*' && l.peek() == '/' {
			text := l.data[start:l.chOffset]
			l.next()
			return text, nil
		}
	}
}

func (l *Lexer) lexLineComment() string {
	l.next() // consume the second /
	start := l.offset
	for {
		next := l.peek()
		if next == eof || next == '\n' {
			return l.data[start:l.offset]
		}
		l.next()
	}
}
