package convert

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/pentops/protoconv/internal/ast"
	"github.com/pentops/protoconv/internal/emit"
	"github.com/pentops/protoconv/internal/errpos"
	"github.com/pentops/protoconv/internal/lexer"
	"github.com/pentops/protoconv/internal/resolve"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertColorEnum(t *testing.T) {
	out, err := ToTypeScript(`enum Color { RED = 0; GREEN = 1; BLUE = 2; }`)
	require.NoError(t, err)

	red := strings.Index(out, "RED = 0,")
	green := strings.Index(out, "GREEN = 1,")
	blue := strings.Index(out, "BLUE = 2,")
	require.True(t, red >= 0 && green >= 0 && blue >= 0, out)
	assert.Less(t, red, green)
	assert.Less(t, green, blue)
}

func TestConvertMap(t *testing.T) {
	fragment := `message Counter { map<string, int32> counts = 1; }`

	for target, want := range map[emit.Target]string{
		emit.TypeScript: "counts: Record<string, number>;",
		emit.Swift:      "var counts: [String: Int32]",
		emit.Kotlin:     "val counts: Map<String, Int>,",
		emit.Dart:       "final Map<String, int> counts;",
	} {
		out, err := Convert(fragment, target)
		require.NoError(t, err, target.String())
		assert.Contains(t, out, want, target.String())
	}
}

func TestConvertRepeatedScalar(t *testing.T) {
	fragment := `message Tags { repeated string values = 1; }`

	for target, want := range map[emit.Target]string{
		emit.TypeScript: "values: string[];",
		emit.Swift:      "var values: [String]",
		emit.Kotlin:     "val values: List<String>,",
		emit.Dart:       "final List<String> values;",
	} {
		out, err := Convert(fragment, target)
		require.NoError(t, err, target.String())
		assert.Contains(t, out, want, target.String())
	}
}

func TestConvertIdempotent(t *testing.T) {
	fragment := `
// Order line
message Line {
  string sku = 1;
  optional double price = 2;
  map<uint64, string> notes = 3;
  message Discount { float percent = 1; }
  repeated Discount discounts = 4;
}`

	for _, target := range emit.Targets() {
		first, err := Convert(fragment, target)
		require.NoError(t, err)
		second, err := Convert(fragment, target)
		require.NoError(t, err)
		assert.Equal(t, first, second, target.String())
	}
}

func TestConvertConcurrent(t *testing.T) {
	fragment := `message Point { double x = 1; double y = 2; }`
	want, err := ToKotlin(fragment)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]string, 16)
	for idx := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := ToKotlin(fragment)
			if err == nil {
				results[idx] = out
			}
		}()
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, want, got)
	}
}

func TestConvertStages(t *testing.T) {
	for _, tc := range []struct {
		name     string
		fragment string
		target   emit.Target
		stage    Stage
		check    func(t *testing.T, err error)
	}{{
		name:     "lex",
		fragment: `message Foo { int32 x# = 1; }`,
		target:   emit.Swift,
		stage:    Lex,
		check: func(t *testing.T, err error) {
			lexErr := &lexer.LexError{}
			assert.True(t, errors.As(err, &lexErr))
		},
	}, {
		name:     "parse, cut off",
		fragment: `message Foo { int32 x = }`,
		target:   emit.TypeScript,
		stage:    Parse,
		check: func(t *testing.T, err error) {
			parseErr := &ast.ParseError{}
			require.True(t, errors.As(err, &parseErr))
			assert.Equal(t, ast.UnexpectedEndOfInput, parseErr.Kind)
		},
	}, {
		name:     "parse, preamble",
		fragment: `syntax = "proto3";`,
		target:   emit.Dart,
		stage:    Parse,
		check: func(t *testing.T, err error) {
			parseErr := &ast.ParseError{}
			require.True(t, errors.As(err, &parseErr))
			assert.Equal(t, ast.UnexpectedTopLevelToken, parseErr.Kind)
		},
	}, {
		name:     "resolve",
		fragment: `message Foo { map<float, string> bad = 1; }`,
		target:   emit.Kotlin,
		stage:    Resolve,
		check: func(t *testing.T, err error) {
			resErr := &resolve.ResolutionError{}
			require.True(t, errors.As(err, &resErr))
			assert.Equal(t, resolve.InvalidMapKeyType, resErr.Kind)
			assert.Equal(t, "Foo.bad", resErr.Field)
		},
	}, {
		name:     "emit",
		fragment: `enum Empty {}`,
		target:   emit.Swift,
		stage:    Emit,
		check: func(t *testing.T, err error) {
			emitErr := &emit.EmitError{}
			assert.True(t, errors.As(err, &emitErr))
		},
	}, {
		name:     "unknown target",
		fragment: `enum Fine { A = 0; }`,
		target:   emit.Target(0),
		stage:    Emit,
	}} {
		t.Run(tc.name, func(t *testing.T) {
			out, err := Convert(tc.fragment, tc.target)
			require.Error(t, err)
			assert.Empty(t, out)

			convErr := &ConversionError{}
			require.True(t, errors.As(err, &convErr), "expected ConversionError, got %T", err)
			assert.Equal(t, tc.stage, convErr.Stage)
			assert.True(t, strings.HasPrefix(err.Error(), tc.stage.String()+" error: "), err.Error())

			if tc.check != nil {
				tc.check(t, err)
			}
		})
	}
}

func TestConversionErrorSource(t *testing.T) {
	fragment := "message Foo {\n  int32 x = \n}"
	_, err := ToDart(fragment)
	require.Error(t, err)

	pos := errpos.GetErrorPosition(err)
	require.NotNil(t, pos)
	assert.Equal(t, "3:1", pos.Start.String())

	human := errpos.AddSource(err, fragment).HumanString(1)
	assert.Contains(t, human, "UnexpectedEndOfInput")
	assert.Contains(t, human, "  > 003: }")
}
