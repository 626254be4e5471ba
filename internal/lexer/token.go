package lexer

import (
	"fmt"
	"strconv"

	"github.com/pentops/protoconv/internal/errpos"
)

type TokenType int

const (
	INVALID TokenType = iota
	EOF

	literal_beg
	IDENT
	INT     // 123, 0x1F
	STRING  // "abc" or 'abc'
	COMMENT // text of a // or /* */ comment
	literal_end

	operator_beg
	LBRACE // {
	RBRACE // }
	LANGLE // <
	RANGLE // >
	SEMI   // ;
	COMMA  // ,
	ASSIGN // =
	LBRACK // [
	RBRACK // ]
	DOT    // .
	MINUS  // -
	LPAREN // (
	RPAREN // )
	operator_end

	keyword_beg
	MESSAGE  // message
	ENUM     // enum
	REPEATED // repeated
	OPTIONAL // optional
	MAP      // map
	RESERVED // reserved
	SCALAR   // int32, string, bytes...
	keyword_end

	AnyName
)

var tokens = [...]string{
	INVALID: "INVALID",
	EOF:     "EOF",

	literal_beg: "",
	IDENT:       "IDENT",
	INT:         "INT",
	STRING:      "STRING",
	COMMENT:     "COMMENT",
	literal_end: "",

	operator_beg: "",
	LBRACE:       "{",
	RBRACE:       "}",
	LANGLE:       "<",
	RANGLE:       ">",
	SEMI:         ";",
	COMMA:        ",",
	ASSIGN:       "=",
	LBRACK:       "[",
	RBRACK:       "]",
	DOT:          ".",
	MINUS:        "-",
	LPAREN:       "(",
	RPAREN:       ")",
	operator_end: "",

	keyword_beg: "",
	MESSAGE:     "message",
	ENUM:        "enum",
	REPEATED:    "repeated",
	OPTIONAL:    "optional",
	MAP:         "map",
	RESERVED:    "reserved",
	SCALAR:      "<scalar type>",
	keyword_end: "",

	AnyName: "<name>",
}

// ScalarTypeNames lists the scalar type keywords in the order protobuf
// documents them.
var ScalarTypeNames = []string{
	"double",
	"float",
	"int32",
	"int64",
	"uint32",
	"uint64",
	"sint32",
	"sint64",
	"fixed32",
	"fixed64",
	"sfixed32",
	"sfixed64",
	"bool",
	"string",
	"bytes",
}

type Position = errpos.Point

type Token struct {
	Type       TokenType
	Lit        string
	Start, End Position
}

func (tok Token) String() string {
	if tok.Type == SCALAR {
		return fmt.Sprintf("keyword(%s)", tok.Lit)
	}

	if tok.Type.IsLiteral() {
		short := tok.Lit
		if len(short) > 8 {
			short = short[:5] + "..."
		}
		return fmt.Sprintf("%s(%s)", tok.Type.String(), short)
	}

	if tok.Type.IsKeyword() {
		return fmt.Sprintf("keyword(%s)", tok.Type.String())
	}

	if tok.Type.IsOperator() {
		return fmt.Sprintf("operator('%s')", tok.Type.String())
	}

	return tok.Type.String()
}

func (tok TokenType) String() string {
	s := ""
	if 0 <= tok && tok < TokenType(len(tokens)) {
		s = tokens[tok]
	}
	if s == "" {
		s = "token(" + strconv.Itoa(int(tok)) + ")"
	}
	return s
}

var keywords map[string]TokenType

var operators map[rune]TokenType

func init() {
	keywords = make(map[string]TokenType, int(keyword_end-(keyword_beg+1))+len(ScalarTypeNames))
	for i := keyword_beg + 1; i < keyword_end; i++ {
		if i == SCALAR {
			continue
		}
		keywords[tokens[i]] = i
	}
	for _, name := range ScalarTypeNames {
		keywords[name] = SCALAR
	}

	operators = map[rune]TokenType{}
	for i := operator_beg + 1; i < operator_end; i++ {
		operators[rune(tokens[i][0])] = i
	}
}

// asKeyword maps an identifier to its keyword token or IDENT (if not a
// keyword).
func asKeyword(ident string) (TokenType, bool) {
	if tok, isKeyword := keywords[ident]; isKeyword {
		return tok, true
	}
	return IDENT, false
}

// IsKeyword returns true for tokens corresponding to keywords;
// it returns false otherwise.
func (tok TokenType) IsKeyword() bool { return keyword_beg < tok && tok < keyword_end }

// IsLiteral returns true for identifiers and basic type literals.
func (tok TokenType) IsLiteral() bool { return literal_beg < tok && tok < literal_end }

// IsOperator returns true for punctuation tokens.
func (tok TokenType) IsOperator() bool { return operator_beg < tok && tok < operator_end }

// IsName is true for tokens which may be used as a field or value name.
// Protobuf keywords are contextual, so `string string = 1;` is valid.
func (tok TokenType) IsName() bool {
	return tok == IDENT || tok.IsKeyword()
}

// IsScalarType reports whether name is a protobuf scalar type keyword.
func IsScalarType(name string) bool {
	return keywords[name] == SCALAR
}
