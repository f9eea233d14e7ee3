// Package ir implements the intermediate representation (component F): the
// {prim, args} tree format §4.F/§6 use to exchange parsed programs with
// front-ends other than the bundled program parser.
//
// Node/Arg mirror the teacher's ChainElement/Node tagged-struct idiom
// (devcmd's runtime/ir.ChainElement carries a Kind plus several
// optional-by-convention fields) rather than an interface hierarchy: one
// struct, a handful of nil-able fields, and a single exhaustive switch at
// the marshal/unmarshal boundary.
package ir

import (
	"encoding/json"

	"github.com/tzstack/michelvm/internal/vmerrors"
)

// Node is one IR tree node: either a primitive instruction application
// ({"prim": "ADD", "args": [...]}) or a literal leaf ({"int": "5"} /
// {"string": "hello"}).
type Node struct {
	Prim      string // empty for literal leaves
	IntLit    *string
	StringLit *string
	Args      []Arg
}

// Arg is a closed union of instruction-operand shapes: a bare node (another
// instruction or literal) or a sequence (a branch body / block operand, as
// used by IF's two branches or MAP's single block).
type Arg struct {
	Node *Node
	Seq  []Node
}

// IsLiteral reports whether n is an int/string literal leaf rather than a
// primitive application.
func (n Node) IsLiteral() bool {
	return n.IntLit != nil || n.StringLit != nil
}

// wireNode is the exact JSON shape §6 specifies, used only at the
// marshal/unmarshal boundary.
type wireNode struct {
	Prim   string            `json:"prim,omitempty"`
	Int    *string           `json:"int,omitempty"`
	String *string           `json:"string,omitempty"`
	Args   []json.RawMessage `json:"args,omitempty"`
}

// MarshalJSON renders n in the {prim,args}/{int:"…"}/{string:"…"} wire shape.
func (n Node) MarshalJSON() ([]byte, error) {
	raw, err := toWireNode(n)
	if err != nil {
		return nil, err
	}
	return json.Marshal(raw)
}

func toWireNode(n Node) (wireNode, error) {
	w := wireNode{Prim: n.Prim, Int: n.IntLit, String: n.StringLit}
	if len(n.Args) == 0 {
		return w, nil
	}
	w.Args = make([]json.RawMessage, len(n.Args))
	for i, a := range n.Args {
		raw, err := marshalArg(a)
		if err != nil {
			return wireNode{}, err
		}
		w.Args[i] = raw
	}
	return w, nil
}

func marshalArg(a Arg) (json.RawMessage, error) {
	if a.Seq != nil {
		return json.Marshal(a.Seq)
	}
	if a.Node == nil {
		return nil, vmerrors.New(vmerrors.KindInvalidIR, "IR arg has neither a node nor a sequence")
	}
	return json.Marshal(*a.Node)
}

// UnmarshalJSON parses the §6 wire shape back into a Node.
func (n *Node) UnmarshalJSON(data []byte) error {
	var w wireNode
	if err := json.Unmarshal(data, &w); err != nil {
		return vmerrors.Wrap(vmerrors.KindInvalidIR, "malformed IR node", err)
	}
	parsed, err := fromWireNode(w)
	if err != nil {
		return err
	}
	*n = parsed
	return nil
}

func fromWireNode(w wireNode) (Node, error) {
	if w.Prim == "" && w.Int == nil && w.String == nil {
		return Node{}, vmerrors.New(vmerrors.KindInvalidIR, "IR node has neither prim nor a literal field")
	}
	n := Node{Prim: w.Prim, IntLit: w.Int, StringLit: w.String}
	if len(w.Args) == 0 {
		return n, nil
	}
	n.Args = make([]Arg, len(w.Args))
	for i, raw := range w.Args {
		a, err := unmarshalArg(raw)
		if err != nil {
			return Node{}, err
		}
		n.Args[i] = a
	}
	return n, nil
}

// unmarshalArg distinguishes a bare node object from a sequence by peeking
// at the first non-whitespace byte: '[' means a JSON array of nodes.
func unmarshalArg(raw json.RawMessage) (Arg, error) {
	trimmed := trimLeadingSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var nodes []Node
		if err := json.Unmarshal(raw, &nodes); err != nil {
			return Arg{}, vmerrors.Wrap(vmerrors.KindInvalidIR, "malformed IR sequence arg", err)
		}
		return Arg{Seq: nodes}, nil
	}
	var node Node
	if err := json.Unmarshal(raw, &node); err != nil {
		return Arg{}, vmerrors.Wrap(vmerrors.KindInvalidIR, "malformed IR node arg", err)
	}
	return Arg{Node: &node}, nil
}

func trimLeadingSpace(b []byte) []byte {
	i := 0
	for i < len(b) && (b[i] == ' ' || b[i] == '\t' || b[i] == '\n' || b[i] == '\r') {
		i++
	}
	return b[i:]
}
