package ast

import (
	"strconv"
	"strings"

	"github.com/pentops/protoconv/internal/lexer"
)

// ParseFragment lexes and parses a fragment holding exactly one message or
// enum declaration. Lexer failures are returned as *lexer.LexError, grammar
// failures as *ParseError.
func ParseFragment(input string) (Declaration, error) {
	tokens, err := lexer.NewLexer(input).AllTokens()
	if err != nil {
		return nil, err
	}

	return Parse(tokens)
}

// Parse builds the declaration from the full token sequence of a fragment.
func Parse(tokens []lexer.Token) (Declaration, error) {
	ww := &Walker{
		tokens: attachComments(tokens),
	}

	decl, err := ww.walkFragment()
	if err != nil {
		return nil, err
	}
	return decl, nil
}

type Walker struct {
	tokens []walkToken
	offset int
}

func (ww *Walker) eofToken() walkToken {
	pos := lexer.Position{}
	if len(ww.tokens) > 0 {
		pos = ww.tokens[len(ww.tokens)-1].End
	}
	return walkToken{
		Token: lexer.Token{
			Type:  lexer.EOF,
			Start: pos,
			End:   pos,
		},
	}
}

func (ww *Walker) popToken() walkToken {
	if ww.offset >= len(ww.tokens) {
		return ww.eofToken()
	}
	tok := ww.tokens[ww.offset]
	ww.offset++
	return tok
}

func (ww *Walker) peekToken() walkToken {
	if ww.offset >= len(ww.tokens) {
		return ww.eofToken()
	}
	return ww.tokens[ww.offset]
}

func (ww *Walker) nextType() lexer.TokenType {
	return ww.peekToken().Type
}

// currentPos is the end of the last consumed token
func (ww *Walker) currentPos() lexer.Position {
	if ww.offset == 0 {
		return lexer.Position{}
	}
	return ww.tokens[ww.offset-1].End
}

func (ww *Walker) popType(tt lexer.TokenType) (walkToken, *ParseError) {
	tok := ww.popToken()
	if tok.Type != tt {
		return walkToken{}, unexpectedToken(tok.Token, tt)
	}
	return tok, nil
}

func (ww *Walker) walkFragment() (Declaration, *ParseError) {
	var decl Declaration
	var err *ParseError

	switch ww.nextType() {
	case lexer.MESSAGE:
		decl, err = ww.walkMessage()
	case lexer.ENUM:
		decl, err = ww.walkEnum()
	default:
		tok := ww.popToken()
		return nil, parseErrf(UnexpectedTopLevelToken, tok.Token, "unexpected %s, want %s or %s", tok, lexer.MESSAGE, lexer.ENUM)
	}
	if err != nil {
		return nil, err
	}

	if ww.nextType() != lexer.EOF {
		tok := ww.popToken()
		return nil, parseErrf(UnexpectedToken, tok.Token, "unexpected %s after the end of %s", tok, decl.DeclName())
	}

	return decl, nil
}

// walkDeclName reads the name of a message or enum.
func (ww *Walker) walkDeclName() (string, *ParseError) {
	tok, err := ww.popType(lexer.IDENT)
	if err != nil {
		return "", err
	}
	return tok.Lit, nil
}

// popName reads a field or enum value name. Keywords are contextual in
// protobuf, so any keyword is also a valid name.
func (ww *Walker) popName() (walkToken, *ParseError) {
	tok := ww.popToken()
	if !tok.Type.IsName() {
		return walkToken{}, unexpectedToken(tok.Token, lexer.AnyName)
	}
	return tok, nil
}

func (ww *Walker) popInt(allowNegative bool) (int64, *ParseError) {
	negative := false
	if allowNegative && ww.nextType() == lexer.MINUS {
		ww.popToken()
		negative = true
	}

	tok, err := ww.popType(lexer.INT)
	if err != nil {
		return 0, err
	}

	lit := tok.Lit
	if negative {
		lit = "-" + lit
	}

	// base 0 allows the protobuf 0x hex and 0 octal forms
	val, parseErr := strconv.ParseInt(lit, 0, 64)
	if parseErr != nil {
		return 0, parseErrf(UnexpectedToken, tok.Token, "invalid integer literal %q", lit)
	}
	return val, nil
}

func (ww *Walker) walkMessage() (*Message, *ParseError) {
	keyword, err := ww.popType(lexer.MESSAGE)
	if err != nil {
		return nil, err
	}

	name, err := ww.walkDeclName()
	if err != nil {
		return nil, err
	}

	opener, err := ww.popType(lexer.LBRACE)
	if err != nil {
		return nil, err
	}

	msg := &Message{
		Name: name,
		SourceNode: SourceNode{
			Start:   keyword.Start,
			Comment: docComment(keyword.leading, opener.trailing),
		},
	}

	for {
		switch ww.nextType() {
		case lexer.RBRACE:
			ww.popToken()
			msg.End = ww.currentPos()
			return msg, nil

		case lexer.EOF:
			return nil, unexpectedToken(ww.popToken().Token, lexer.RBRACE)

		case lexer.SEMI:
			// empty statement
			ww.popToken()

		case lexer.MESSAGE:
			nested, err := ww.walkMessage()
			if err != nil {
				return nil, err
			}
			msg.Nested = append(msg.Nested, nested)

		case lexer.ENUM:
			nested, err := ww.walkEnum()
			if err != nil {
				return nil, err
			}
			msg.Nested = append(msg.Nested, nested)

		case lexer.RESERVED:
			if err := ww.skipStatement(); err != nil {
				return nil, err
			}

		case lexer.MAP:
			field, err := ww.walkMapField()
			if err != nil {
				return nil, err
			}
			msg.Fields = append(msg.Fields, field)

		default:
			if ww.isIdentStatement("option") {
				if err := ww.skipStatement(); err != nil {
					return nil, err
				}
				continue
			}
			if ww.isIdentStatement("oneof") {
				fields, err := ww.walkOneof()
				if err != nil {
					return nil, err
				}
				msg.Fields = append(msg.Fields, fields...)
				continue
			}

			field, err := ww.walkField()
			if err != nil {
				return nil, err
			}
			msg.Fields = append(msg.Fields, field)
		}
	}
}

// isIdentStatement checks for a statement starting with a non-keyword
// word, which is followed by another name rather than being a type name in
// a field.
func (ww *Walker) isIdentStatement(word string) bool {
	tok := ww.peekToken()
	if tok.Type != lexer.IDENT || tok.Lit != word {
		return false
	}
	if ww.offset+1 >= len(ww.tokens) {
		return true
	}
	following := ww.tokens[ww.offset+1]
	// `option x = ...`, `oneof x {`, but `oneof x = 1;` is a field of type
	// oneof
	if word == "option" {
		return following.Type != lexer.DOT
	}
	return ww.offset+2 < len(ww.tokens) && ww.tokens[ww.offset+2].Type == lexer.LBRACE
}

// walkOneof flattens the members of a oneof into the message. Each member
// has explicit presence, so is marked optional.
func (ww *Walker) walkOneof() ([]*Field, *ParseError) {
	ww.popToken() // oneof
	if _, err := ww.popName(); err != nil {
		return nil, err
	}
	if _, err := ww.popType(lexer.LBRACE); err != nil {
		return nil, err
	}

	fields := make([]*Field, 0)
	for {
		switch ww.nextType() {
		case lexer.RBRACE:
			ww.popToken()
			return fields, nil

		case lexer.EOF:
			return nil, unexpectedToken(ww.popToken().Token, lexer.RBRACE)

		case lexer.SEMI:
			ww.popToken()

		default:
			if ww.isIdentStatement("option") {
				if err := ww.skipStatement(); err != nil {
					return nil, err
				}
				continue
			}
			field, err := ww.walkField()
			if err != nil {
				return nil, err
			}
			if _, repeated := field.Type.(RepeatedType); repeated {
				return nil, &ParseError{
					Kind: UnexpectedToken,
					Pos:  field.Start,
					Msg:  "oneof fields cannot be repeated",
				}
			}
			field.Optional = true
			fields = append(fields, field)
		}
	}
}

// walkType reads a scalar keyword or a (possibly dotted) type reference.
func (ww *Walker) walkType() (FieldType, *ParseError) {
	switch ww.nextType() {
	case lexer.SCALAR:
		return ScalarType{Name: ww.popToken().Lit}, nil

	case lexer.IDENT, lexer.DOT:
		parts := make([]string, 0, 1)
		if ww.nextType() == lexer.DOT {
			ww.popToken()
			parts = append(parts, "")
		}
		for {
			tok, err := ww.popType(lexer.IDENT)
			if err != nil {
				return nil, err
			}
			parts = append(parts, tok.Lit)
			if ww.nextType() != lexer.DOT {
				return NamedType{Name: strings.Join(parts, ".")}, nil
			}
			ww.popToken()
		}

	default:
		return nil, unexpectedToken(ww.popToken().Token, lexer.SCALAR, lexer.IDENT)
	}
}

func (ww *Walker) walkField() (*Field, *ParseError) {
	first := ww.peekToken()
	field := &Field{
		SourceNode: SourceNode{
			Start: first.Start,
		},
	}

	repeated := false
	switch ww.nextType() {
	case lexer.REPEATED:
		ww.popToken()
		repeated = true
	case lexer.OPTIONAL:
		ww.popToken()
		field.Optional = true
	}

	if ww.nextType() == lexer.MAP {
		tok := ww.popToken()
		return nil, parseErrf(UnexpectedToken, tok.Token, "map fields cannot be %s", first.Lit)
	}

	fieldType, err := ww.walkType()
	if err != nil {
		return nil, err
	}
	if repeated {
		fieldType = RepeatedType{Elem: fieldType}
	}
	field.Type = fieldType

	if err := ww.walkFieldTail(field); err != nil {
		return nil, err
	}
	field.Comment = docComment(first.leading, ww.tokens[ww.offset-1].trailing)
	return field, nil
}

func (ww *Walker) walkMapField() (*Field, *ParseError) {
	first, err := ww.popType(lexer.MAP)
	if err != nil {
		return nil, err
	}

	if _, err := ww.popType(lexer.LANGLE); err != nil {
		return nil, err
	}

	keyTok := ww.popToken()
	switch keyTok.Type {
	case lexer.SCALAR:
	case lexer.EOF, lexer.RBRACE:
		return nil, unexpectedToken(keyTok.Token, lexer.SCALAR)
	default:
		return nil, parseErrf(InvalidMapKeyType, keyTok.Token, "map key must be a scalar type, got %s", keyTok)
	}

	if _, err := ww.popType(lexer.COMMA); err != nil {
		return nil, err
	}

	valueType, err := ww.walkType()
	if err != nil {
		return nil, err
	}

	if _, err := ww.popType(lexer.RANGLE); err != nil {
		return nil, err
	}

	field := &Field{
		Type: MapType{
			Key:   ScalarType{Name: keyTok.Lit},
			Value: valueType,
		},
		SourceNode: SourceNode{
			Start: first.Start,
		},
	}
	if err := ww.walkFieldTail(field); err != nil {
		return nil, err
	}
	field.Comment = docComment(first.leading, ww.tokens[ww.offset-1].trailing)
	return field, nil
}

// walkFieldTail reads `name = number [options];`
func (ww *Walker) walkFieldTail(field *Field) *ParseError {
	name, err := ww.popName()
	if err != nil {
		return err
	}
	field.Name = name.Lit

	if _, err := ww.popType(lexer.ASSIGN); err != nil {
		return err
	}

	number, err := ww.popInt(false)
	if err != nil {
		return err
	}
	field.Number = number

	if err := ww.endStatement(); err != nil {
		return err
	}
	field.End = ww.currentPos()
	return nil
}

// endStatement skips any [options] and consumes the terminating semicolon.
func (ww *Walker) endStatement() *ParseError {
	if ww.nextType() == lexer.LBRACK {
		if err := ww.skipOptions(); err != nil {
			return err
		}
	}

	_, err := ww.popType(lexer.SEMI)
	return err
}

// skipOptions consumes a balanced [ ... ] option list. Option values are
// not interpreted.
func (ww *Walker) skipOptions() *ParseError {
	depth := 0
	for {
		tok := ww.popToken()
		switch tok.Type {
		case lexer.LBRACK:
			depth++
		case lexer.RBRACK:
			depth--
			if depth == 0 {
				return nil
			}
		case lexer.EOF, lexer.RBRACE, lexer.SEMI:
			return unexpectedToken(tok.Token, lexer.RBRACK)
		}
	}
}

// skipStatement consumes tokens up to and including the next semicolon,
// used for reserved and option statements.
func (ww *Walker) skipStatement() *ParseError {
	ww.popToken()
	for {
		tok := ww.popToken()
		switch tok.Type {
		case lexer.SEMI:
			return nil
		case lexer.EOF, lexer.RBRACE, lexer.LBRACE:
			return unexpectedToken(tok.Token, lexer.SEMI)
		}
	}
}

func (ww *Walker) walkEnum() (*Enum, *ParseError) {
	keyword, err := ww.popType(lexer.ENUM)
	if err != nil {
		return nil, err
	}

	name, err := ww.walkDeclName()
	if err != nil {
		return nil, err
	}

	opener, err := ww.popType(lexer.LBRACE)
	if err != nil {
		return nil, err
	}

	enum := &Enum{
		Name: name,
		SourceNode: SourceNode{
			Start:   keyword.Start,
			Comment: docComment(keyword.leading, opener.trailing),
		},
	}

	for {
		switch ww.nextType() {
		case lexer.RBRACE:
			ww.popToken()
			enum.End = ww.currentPos()
			return enum, nil

		case lexer.EOF:
			return nil, unexpectedToken(ww.popToken().Token, lexer.RBRACE)

		case lexer.SEMI:
			ww.popToken()

		case lexer.RESERVED:
			if err := ww.skipStatement(); err != nil {
				return nil, err
			}

		default:
			if ww.isIdentStatement("option") {
				if err := ww.skipStatement(); err != nil {
					return nil, err
				}
				continue
			}

			value, err := ww.walkEnumValue()
			if err != nil {
				return nil, err
			}
			enum.Values = append(enum.Values, value)
		}
	}
}

func (ww *Walker) walkEnumValue() (*EnumValue, *ParseError) {
	name, err := ww.popName()
	if err != nil {
		return nil, err
	}

	value := &EnumValue{
		Name: name.Lit,
		SourceNode: SourceNode{
			Start: name.Start,
		},
	}

	if _, err := ww.popType(lexer.ASSIGN); err != nil {
		return nil, err
	}

	number, err := ww.popInt(true)
	if err != nil {
		return nil, err
	}
	value.Number = number

	if err := ww.endStatement(); err != nil {
		return nil, err
	}
	value.End = ww.currentPos()
	value.Comment = docComment(name.leading, ww.tokens[ww.offset-1].trailing)

	return value, nil
}
