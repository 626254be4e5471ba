package ast

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/pentops/protoconv/internal/errpos"
	"github.com/pentops/protoconv/internal/lexer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tParse(t testing.TB, lines ...string) Declaration {
	t.Helper()
	input := strings.Join(lines, "\n")
	decl, err := ParseFragment(input)
	if err != nil {
		t.Log(errpos.AddSource(err, input).HumanString(2))
		t.Fatal("FATAL: unexpected error")
	}
	return decl
}

func assertDecl(t testing.TB, got, want Declaration) {
	t.Helper()
	if diff := cmp.Diff(want, got, cmpopts.IgnoreTypes(SourceNode{}), cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("declaration mismatch (-want +got):\n%s", diff)
	}
}

func scalar(name string) FieldType {
	return ScalarType{Name: name}
}

func named(name string) FieldType {
	return NamedType{Name: name}
}

func TestParseMessage(t *testing.T) {
	decl := tParse(t,
		`message User {`,
		`  string name = 1;`,
		`  int32 age = 2;`,
		`  repeated string tags = 3;`,
		`  map<string, int64> scores = 4;`,
		`  optional Address home = 5;`,
		`  .pkg.v1.Other other = 6;`,
		`  repeated google.protobuf.Timestamp times = 7;`,
		`}`,
	)

	assertDecl(t, decl, &Message{
		Name: "User",
		Fields: []*Field{
			{Name: "name", Type: scalar("string"), Number: 1},
			{Name: "age", Type: scalar("int32"), Number: 2},
			{Name: "tags", Type: RepeatedType{Elem: scalar("string")}, Number: 3},
			{Name: "scores", Type: MapType{Key: scalar("string"), Value: scalar("int64")}, Number: 4},
			{Name: "home", Type: named("Address"), Number: 5, Optional: true},
			{Name: "other", Type: named(".pkg.v1.Other"), Number: 6},
			{Name: "times", Type: RepeatedType{Elem: named("google.protobuf.Timestamp")}, Number: 7},
		},
	})
}

func TestParseEmpty(t *testing.T) {
	assertDecl(t, tParse(t, `message Empty {}`), &Message{Name: "Empty"})
	assertDecl(t, tParse(t, `enum Nothing {}`), &Enum{Name: "Nothing"})
	assertDecl(t, tParse(t, `message Semi { ; }`), &Message{Name: "Semi"})
}

func TestParseEnum(t *testing.T) {
	decl := tParse(t,
		`enum Color {`,
		`  RED = 0;`,
		`  GREEN = 1;`,
		`  BLUE = 0x2;`,
		`  NEGATIVE = -1;`,
		`}`,
	)

	assertDecl(t, decl, &Enum{
		Name: "Color",
		Values: []*EnumValue{
			{Name: "RED", Number: 0},
			{Name: "GREEN", Number: 1},
			{Name: "BLUE", Number: 2},
			{Name: "NEGATIVE", Number: -1},
		},
	})
}

func TestParseNested(t *testing.T) {
	decl := tParse(t,
		`message Outer {`,
		`  message Inner {`,
		`    string value = 1;`,
		`  }`,
		`  Inner inner = 1;`,
		`  enum Kind {`,
		`    KIND_UNSPECIFIED = 0;`,
		`  }`,
		`  Kind kind = 2;`,
		`}`,
	)

	assertDecl(t, decl, &Message{
		Name: "Outer",
		Fields: []*Field{
			{Name: "inner", Type: named("Inner"), Number: 1},
			{Name: "kind", Type: named("Kind"), Number: 2},
		},
		Nested: []Declaration{
			&Message{
				Name: "Inner",
				Fields: []*Field{
					{Name: "value", Type: scalar("string"), Number: 1},
				},
			},
			&Enum{
				Name: "Kind",
				Values: []*EnumValue{
					{Name: "KIND_UNSPECIFIED", Number: 0},
				},
			},
		},
	})
}

func TestParseKeywordNames(t *testing.T) {
	decl := tParse(t,
		`message Keywords {`,
		`  string message = 1;`,
		`  int32 map = 2;`,
		`  bool optional = 3;`,
		`  bytes int32 = 4;`,
		`}`,
	)

	assertDecl(t, decl, &Message{
		Name: "Keywords",
		Fields: []*Field{
			{Name: "message", Type: scalar("string"), Number: 1},
			{Name: "map", Type: scalar("int32"), Number: 2},
			{Name: "optional", Type: scalar("bool"), Number: 3},
			{Name: "int32", Type: scalar("bytes"), Number: 4},
		},
	})
}

func TestParseSkippedStatements(t *testing.T) {
	t.Run("message", func(t *testing.T) {
		decl := tParse(t,
			`message Foo {`,
			`  option deprecated = true;`,
			`  reserved 2, 15, 9 to 11;`,
			`  reserved "bar";`,
			`  string a = 1 [deprecated = true, (validate.rules).string.min_len = 1];`,
			`  oneof choice {`,
			`    option (x) = 1;`,
			`    string b = 3;`,
			`    int64 c = 4 [json_name = "cee"];`,
			`  }`,
			`}`,
		)

		assertDecl(t, decl, &Message{
			Name: "Foo",
			Fields: []*Field{
				{Name: "a", Type: scalar("string"), Number: 1},
				{Name: "b", Type: scalar("string"), Number: 3, Optional: true},
				{Name: "c", Type: scalar("int64"), Number: 4, Optional: true},
			},
		})
	})

	t.Run("enum", func(t *testing.T) {
		decl := tParse(t,
			`enum E {`,
			`  option allow_alias = true;`,
			`  reserved 5;`,
			`  A = 0;`,
			`  B = 0 [deprecated = true];`,
			`}`,
		)

		assertDecl(t, decl, &Enum{
			Name: "E",
			Values: []*EnumValue{
				{Name: "A", Number: 0},
				{Name: "B", Number: 0},
			},
		})
	})

	t.Run("types named like statements", func(t *testing.T) {
		decl := tParse(t,
			`message Foo {`,
			`  oneof value = 1;`,
			`  option.Type opt = 2;`,
			`}`,
		)

		assertDecl(t, decl, &Message{
			Name: "Foo",
			Fields: []*Field{
				{Name: "value", Type: named("oneof"), Number: 1},
				{Name: "opt", Type: named("option.Type"), Number: 2},
			},
		})
	})
}

func TestParseComments(t *testing.T) {
	decl := tParse(t,
		`// A user of the system.`,
		`// Second line.`,
		`message User {`,
		`  // The display name.`,
		`  string name = 1; // required`,
		``,
		`  // detached`,
		``,
		`  int32 age = 2;`,
		`  /** Lifecycle. */`,
		`  enum State {`,
		`    UNKNOWN = 0; // default`,
		`  }`,
		`}`,
	)

	msg, ok := decl.(*Message)
	require.True(t, ok, "expected *Message, got %T", decl)

	assert.Equal(t, "A user of the system.\nSecond line.", msg.Comment)
	require.Len(t, msg.Fields, 2)
	assert.Equal(t, "The display name. required", msg.Fields[0].Comment)
	assert.Equal(t, "", msg.Fields[1].Comment)

	require.Len(t, msg.Nested, 1)
	state, ok := msg.Nested[0].(*Enum)
	require.True(t, ok, "expected *Enum, got %T", msg.Nested[0])
	assert.Equal(t, "Lifecycle.", state.Comment)
	require.Len(t, state.Values, 1)
	assert.Equal(t, "default", state.Values[0].Comment)
}

func TestParsePositions(t *testing.T) {
	decl := tParse(t,
		`message Foo {`,
		`  int32 x = 1;`,
		`}`,
	)

	msg := decl.(*Message)
	assert.Equal(t, "1:1", msg.Start.String())
	assert.Equal(t, "3:2", msg.End.String())
	assert.Equal(t, "2:3", msg.Fields[0].Start.String())
	assert.Equal(t, "2:15", msg.Fields[0].End.String())
}

func TestParseDeterministic(t *testing.T) {
	input := "message Foo { map<string, Bar> bars = 1; repeated bytes blobs = 2; }"
	first, err := ParseFragment(input)
	require.NoError(t, err)
	second, err := ParseFragment(input)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestParseErrors(t *testing.T) {
	for _, tc := range []struct {
		name  string
		input string
		kind  ParseErrorKind
		pos   string
	}{{
		name:  "missing field number",
		input: `message Foo { int32 x = }`,
		kind:  UnexpectedEndOfInput,
		pos:   "1:25",
	}, {
		name:  "missing closing brace",
		input: `message Foo { int32 x = 1;`,
		kind:  UnexpectedEndOfInput,
		pos:   "1:27",
	}, {
		name:  "missing semicolon before close",
		input: `message Foo { int32 x = 1 }`,
		kind:  UnexpectedEndOfInput,
		pos:   "1:27",
	}, {
		name:  "message key in map",
		input: `message Foo { map<Foo, string> m = 1; }`,
		kind:  InvalidMapKeyType,
		pos:   "1:19",
	}, {
		name:  "missing map key",
		input: `message Foo { map<, string> m = 1; }`,
		kind:  InvalidMapKeyType,
		pos:   "1:19",
	}, {
		name:  "syntax preamble",
		input: `syntax = "proto3";`,
		kind:  UnexpectedTopLevelToken,
		pos:   "1:1",
	}, {
		name:  "service",
		input: `service Foo {}`,
		kind:  UnexpectedTopLevelToken,
		pos:   "1:1",
	}, {
		name:  "empty",
		input: "  \n ",
		kind:  UnexpectedTopLevelToken,
	}, {
		name:  "second declaration",
		input: `message Foo {} message Bar {}`,
		kind:  UnexpectedToken,
		pos:   "1:16",
	}, {
		name:  "missing name",
		input: `message { }`,
		kind:  UnexpectedToken,
		pos:   "1:9",
	}, {
		name:  "keyword as message name",
		input: `message map { }`,
		kind:  UnexpectedToken,
		pos:   "1:9",
	}, {
		name:  "repeated map",
		input: `message Foo { repeated map<string, string> m = 1; }`,
		kind:  UnexpectedToken,
		pos:   "1:24",
	}, {
		name:  "non numeric tag",
		input: `message Foo { string x = abc; }`,
		kind:  UnexpectedToken,
		pos:   "1:26",
	}, {
		name:  "tag overflow",
		input: `message Foo { int32 x = 99999999999999999999; }`,
		kind:  UnexpectedToken,
		pos:   "1:25",
	}, {
		name:  "negative tag",
		input: `message Foo { int32 x = -1; }`,
		kind:  UnexpectedToken,
		pos:   "1:25",
	}, {
		name:  "enum value without number",
		input: `enum E { A; }`,
		kind:  UnexpectedToken,
		pos:   "1:11",
	}, {
		name:  "repeated oneof member",
		input: `message Foo { oneof x { repeated string a = 1; } }`,
		kind:  UnexpectedToken,
		pos:   "1:25",
	}, {
		name:  "unclosed options",
		input: `message Foo { int32 a = 1 [deprecated = true; }`,
		kind:  UnexpectedToken,
		pos:   "1:45",
	}} {
		t.Run(tc.name, func(t *testing.T) {
			decl, err := ParseFragment(tc.input)
			require.Error(t, err)
			assert.Nil(t, decl)

			t.Log(errpos.AddSource(err, tc.input).HumanString(1))

			parseErr := &ParseError{}
			require.True(t, errors.As(err, &parseErr), "expected ParseError, got %T", err)
			assert.Equal(t, tc.kind, parseErr.Kind, parseErr.Msg)
			if tc.pos != "" {
				assert.Equal(t, tc.pos, parseErr.Pos.String())
			}
		})
	}
}

func TestParseLexError(t *testing.T) {
	decl, err := ParseFragment(`message Foo { int32 x# = 1; }`)
	require.Error(t, err)
	assert.Nil(t, decl)

	lexErr := &lexer.LexError{}
	require.True(t, errors.As(err, &lexErr), "expected LexError, got %T", err)
	assert.Equal(t, "1:22", lexErr.Pos.String())
}

func TestParseErrorMessage(t *testing.T) {
	_, err := ParseFragment(`message Foo { int32 x = }`)
	require.Error(t, err)
	assert.Equal(t, "1:25 UnexpectedEndOfInput: unexpected operator('}'), want INT", err.Error())
}
