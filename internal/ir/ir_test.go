package ir_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tzstack/michelvm/internal/ir"
	"github.com/tzstack/michelvm/internal/vmerrors"
)

func strp(s string) *string { return &s }

func TestMarshalLiteralLeaf(t *testing.T) {
	n := ir.Node{IntLit: strp("5")}
	data, err := json.Marshal(n)
	require.NoError(t, err)
	assert.JSONEq(t, `{"int":"5"}`, string(data))
}

func TestMarshalPrimWithArgs(t *testing.T) {
	n := ir.Node{
		Prim: "PUSH",
		Args: []ir.Arg{
			{Node: &ir.Node{Prim: "nat"}},
			{Node: &ir.Node{IntLit: strp("2")}},
		},
	}
	data, err := json.Marshal(n)
	require.NoError(t, err)
	assert.JSONEq(t, `{"prim":"PUSH","args":[{"prim":"nat"},{"int":"2"}]}`, string(data))
}

func TestMarshalBranchSequenceArg(t *testing.T) {
	n := ir.Node{
		Prim: "IF",
		Args: []ir.Arg{
			{Seq: []ir.Node{{Prim: "PUSH", Args: []ir.Arg{{Node: &ir.Node{Prim: "unit"}}, {Node: &ir.Node{Prim: "Unit"}}}}}},
			{Seq: []ir.Node{}},
		},
	}
	data, err := json.Marshal(n)
	require.NoError(t, err)

	var roundtrip ir.Node
	require.NoError(t, json.Unmarshal(data, &roundtrip))
	require.Len(t, roundtrip.Args, 2)
	assert.NotNil(t, roundtrip.Args[0].Seq)
	assert.Nil(t, roundtrip.Args[0].Node)
}

func TestUnmarshalRejectsEmptyNode(t *testing.T) {
	var n ir.Node
	err := json.Unmarshal([]byte(`{}`), &n)
	require.Error(t, err)
	assert.True(t, vmerrors.Is(err, vmerrors.KindInvalidIR))
}

func TestParseDocumentRoundTrip(t *testing.T) {
	doc := `[{"prim":"PUSH","args":[{"prim":"nat"},{"int":"2"}]},{"prim":"PUSH","args":[{"prim":"nat"},{"int":"3"}]},{"prim":"ADD"}]`
	nodes, err := ir.ParseDocument([]byte(doc))
	require.NoError(t, err)
	require.Len(t, nodes, 3)
	assert.Equal(t, "ADD", nodes[2].Prim)
}

func TestValidateDocumentRejectsMalformedNode(t *testing.T) {
	err := ir.ValidateDocument([]byte(`[{"prim":"ADD","int":"5"}]`))
	require.Error(t, err)
	assert.True(t, vmerrors.Is(err, vmerrors.KindInvalidIR))
}

func TestValidateDocumentRejectsNonArray(t *testing.T) {
	err := ir.ValidateDocument([]byte(`{"prim":"ADD"}`))
	require.Error(t, err)
}
