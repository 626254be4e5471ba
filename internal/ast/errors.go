package ast

import (
	"fmt"
	"strings"

	"github.com/pentops/protoconv/internal/errpos"
	"github.com/pentops/protoconv/internal/lexer"
)

type ParseErrorKind int

const (
	// UnexpectedTopLevelToken: the fragment does not start with message or
	// enum
	UnexpectedTopLevelToken ParseErrorKind = iota + 1

	// InvalidMapKeyType: the map key is not a scalar type keyword
	InvalidMapKeyType

	// UnexpectedEndOfInput: the input ended, or the enclosing block closed,
	// before the statement was complete
	UnexpectedEndOfInput

	// UnexpectedToken: any other grammar violation
	UnexpectedToken
)

func (k ParseErrorKind) String() string {
	switch k {
	case UnexpectedTopLevelToken:
		return "UnexpectedTopLevelToken"
	case InvalidMapKeyType:
		return "InvalidMapKeyType"
	case UnexpectedEndOfInput:
		return "UnexpectedEndOfInput"
	case UnexpectedToken:
		return "UnexpectedToken"
	default:
		return fmt.Sprintf("ParseErrorKind(%d)", int(k))
	}
}

type ParseError struct {
	Kind ParseErrorKind
	Pos  lexer.Position
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Pos, e.Kind, e.Msg)
}

func (e *ParseError) ErrorPosition() *errpos.Position {
	return errpos.PointPosition(e.Pos)
}

func parseErrf(kind ParseErrorKind, tok lexer.Token, format string, args ...interface{}) *ParseError {
	return &ParseError{
		Kind: kind,
		Pos:  tok.Start,
		Msg:  fmt.Sprintf(format, args...),
	}
}

// unexpectedToken builds the error for tok when one of expected was wanted.
// Reaching EOF, or a closing brace which was not wanted, means the
// statement was cut off.
func unexpectedToken(tok lexer.Token, expected ...lexer.TokenType) *ParseError {
	kind := UnexpectedToken
	if tok.Type == lexer.EOF {
		kind = UnexpectedEndOfInput
	} else if tok.Type == lexer.RBRACE && !containsType(expected, lexer.RBRACE) {
		kind = UnexpectedEndOfInput
	}

	return &ParseError{
		Kind: kind,
		Pos:  tok.Start,
		Msg:  expectMsg(tok, expected),
	}
}

func containsType(set []lexer.TokenType, tt lexer.TokenType) bool {
	for _, want := range set {
		if want == tt {
			return true
		}
	}
	return false
}

func expectMsg(tok lexer.Token, expected []lexer.TokenType) string {
	if len(expected) == 0 {
		return fmt.Sprintf("unexpected %s", tok)
	}
	if len(expected) == 1 {
		return fmt.Sprintf("unexpected %s, want %s", tok, expected[0])
	}
	expectSet := make([]string, len(expected))
	for i, e := range expected {
		expectSet[i] = e.String()
	}
	return fmt.Sprintf("unexpected %s, want one of %s", tok, strings.Join(expectSet, ", "))
}
