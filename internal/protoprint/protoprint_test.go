package protoprint

import (
	"strings"
	"testing"

	"github.com/pentops/protoconv/internal/ast"
	"github.com/pentops/protoconv/internal/protodesc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/descriptorpb"
)

func tPrint(t *testing.T, fragment string) string {
	t.Helper()
	decl, err := ast.ParseFragment(fragment)
	require.NoError(t, err)
	fdp, err := protodesc.Build(decl)
	require.NoError(t, err)
	out, err := PrintFile(fdp)
	require.NoError(t, err)
	return out
}

func assertLines(t *testing.T, want []string, got string) {
	t.Helper()
	assert.Equal(t, strings.Join(want, "\n")+"\n", got)
}

func TestPrintMessage(t *testing.T) {
	got := tPrint(t, `
// An order
message Order {
  string id = 1;
  repeated Line lines = 2 [(validate.rules).repeated.min_items = 1];
  map<string, int64> totals = 3; // by currency
  optional double discount = 4;
  reserved 5;
  message Line { uint32 qty = 1; }
  enum State { STATE_UNSPECIFIED = 0; }
}`)

	assertLines(t, []string{
		`syntax = "proto3";`,
		``,
		`// An order`,
		`message Order {`,
		`  string id = 1;`,
		`  repeated Line lines = 2;`,
		`  // by currency`,
		`  map<string, int64> totals = 3;`,
		`  optional double discount = 4;`,
		``,
		`  message Line {`,
		`    uint32 qty = 1;`,
		`  }`,
		``,
		`  enum State {`,
		`    STATE_UNSPECIFIED = 0;`,
		`  }`,
		`}`,
	}, got)
}

func TestPrintEnum(t *testing.T) {
	got := tPrint(t, "enum Color {\n  // none\n  RED = 0;\n  GREEN = 0x1;\n  BACK = -1;\n}")

	assertLines(t, []string{
		`syntax = "proto3";`,
		``,
		`enum Color {`,
		`  // none`,
		`  RED = 0;`,
		`  GREEN = 1;`,
		`  BACK = -1;`,
		`}`,
	}, got)
}

func TestPrintEmpty(t *testing.T) {
	assertLines(t, []string{
		`syntax = "proto3";`,
		``,
		`message Nothing {}`,
	}, tPrint(t, `message Nothing {}`))
}

func TestPrintRoundTrip(t *testing.T) {
	fragment := `message Outer {
  .pkg.v1.Other other = 1;
  map<int32, Inner> inners = 2;
  message Inner { bytes data = 1; }
}`
	first := tPrint(t, fragment)

	// the printed form parses to the same descriptor
	body := strings.TrimPrefix(first, "syntax = \"proto3\";\n\n")
	second := tPrint(t, body)
	assert.Equal(t, first, second)
}

func TestPrintProto2(t *testing.T) {
	_, err := PrintFile(&descriptorpb.FileDescriptorProto{})
	assert.Error(t, err)
}
