package convert

import (
	"context"
	"strings"
	"testing"

	"github.com/pentops/protoconv/internal/emit"
	"github.com/stretchr/testify/assert"
)

func TestSplitDocument(t *testing.T) {
	for _, tc := range []struct {
		name  string
		input []string
		want  []string
	}{{
		name: "two declarations",
		input: []string{
			`message A { string x = 1; }`,
			`enum B { B_UNSPECIFIED = 0; }`,
		},
		want: []string{
			`message A { string x = 1; }`,
			`enum B { B_UNSPECIFIED = 0; }`,
		},
	}, {
		name: "nested declarations stay together",
		input: []string{
			`message Outer {`,
			`  message Inner {`,
			`    string v = 1;`,
			`  }`,
			`  enum Kind { K = 0; }`,
			`}`,
			`message Next {}`,
		},
		want: []string{
			"message Outer {\n  message Inner {\n    string v = 1;\n  }\n  enum Kind { K = 0; }\n}",
			`message Next {}`,
		},
	}, {
		name: "leading comments move with the declaration",
		input: []string{
			`// About A`,
			`message A {}`,
			``,
			`/* About`,
			`   B */`,
			`// more`,
			`enum B { X = 0; }`,
		},
		want: []string{
			"// About A\nmessage A {}",
			"/* About\n   B */\n// more\nenum B { X = 0; }",
		},
	}, {
		name: "braces in comments and strings",
		input: []string{
			`message A {`,
			`  // a } brace`,
			`  string x = 1 [json_name = "}"];`,
			`  /* { */`,
			`  message B {}`,
			`}`,
			`message C {}`,
		},
		want: []string{
			"message A {\n  // a } brace\n  string x = 1 [json_name = \"}\"];\n  /* { */\n  message B {}\n}",
			`message C {}`,
		},
	}, {
		name: "preamble is its own part",
		input: []string{
			`syntax = "proto3";`,
			``,
			`message A {}`,
		},
		want: []string{
			`syntax = "proto3";`,
			`message A {}`,
		},
	}, {
		name: "unclosed declaration stops at the next one",
		input: []string{
			`message A {`,
			`  int32 x = 1;`,
			``,
			`message B { string y = 1; }`,
			``,
			`enum C { C_UNSET = 0; }`,
		},
		want: []string{
			"message A {\n  int32 x = 1;",
			`message B { string y = 1; }`,
			`enum C { C_UNSET = 0; }`,
		},
	}, {
		name:  "declarations sharing a line",
		input: []string{`message A { int32 x = 1; } enum B { X = 0; } message C {}`},
		want: []string{
			`message A { int32 x = 1; }`,
			`enum B { X = 0; }`,
			`message C {}`,
		},
	}, {
		name:  "nested declaration on the same line",
		input: []string{`message A { message B {} enum C { X = 0; } }`},
		want:  []string{`message A { message B {} enum C { X = 0; } }`},
	}, {
		name:  "whitespace only",
		input: []string{"", "  ", "\t"},
		want:  nil,
	}, {
		name:  "identifiers starting with keywords",
		input: []string{`messages = 1;`, `enumerate {}`},
		want:  []string{"messages = 1;\nenumerate {}"},
	}} {
		t.Run(tc.name, func(t *testing.T) {
			got := SplitDocument(strings.Join(tc.input, "\n"))
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestConvertDocument(t *testing.T) {
	ctx := context.Background()

	doc := strings.Join([]string{
		`// A point`,
		`message Point {`,
		`  double x = 1;`,
		`}`,
		`message Broken {`,
		`  int32 x =`,
		`}`,
		`enum Axis { X = 0; Y = 1; }`,
	}, "\n")

	got := ConvertDocument(ctx, doc, emit.TypeScript)

	want := strings.Join([]string{
		`/** A point */`,
		`export interface Point {`,
		`  x: number;`,
		`}`,
		``,
		`// Error converting part:`,
		`message Broken {`,
		`  int32 x =`,
		`}`,
		`// Error: parse error: 3:1 UnexpectedEndOfInput: unexpected operator('}'), want INT`,
		``,
		`export enum Axis {`,
		`  X = 0,`,
		`  Y = 1,`,
		`}`,
		``,
		``,
	}, "\n")

	assert.Equal(t, want, got)
}

func TestConvertDocumentUnclosed(t *testing.T) {
	ctx := context.Background()

	doc := strings.Join([]string{
		`message A {`,
		`  int32 x = 1;`,
		``,
		`message B { string y = 1; }`,
		`enum C { C_UNSET = 0; } enum D { D_UNSET = 0; }`,
	}, "\n")

	got := ConvertDocument(ctx, doc, emit.TypeScript)

	assert.True(t, strings.HasPrefix(got, "// Error converting part:\nmessage A {\n  int32 x = 1;\n// Error: parse error: "), got)
	assert.Equal(t, 1, strings.Count(got, "// Error converting part:"), got)
	assert.Contains(t, got, "export interface B {\n  y: string;\n}")
	assert.Contains(t, got, "export enum C {\n  C_UNSET = 0,\n}")
	assert.Contains(t, got, "export enum D {\n  D_UNSET = 0,\n}")
}

func TestConvertDocumentNothing(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, NothingFound, ConvertDocument(ctx, "", emit.Swift))
	assert.Equal(t, NothingFound, ConvertDocument(ctx, "\n  \n", emit.Swift))
}

func TestConvertDocumentOrder(t *testing.T) {
	ctx := context.Background()

	names := []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J"}
	lines := make([]string, 0, len(names))
	for _, name := range names {
		lines = append(lines, "message "+name+" { string v = 1; }")
	}

	got := ConvertDocument(ctx, strings.Join(lines, "\n"), emit.Kotlin)
	last := -1
	for _, name := range names {
		idx := strings.Index(got, "data class "+name+"(")
		assert.Greater(t, idx, last, name)
		last = idx
	}
}
