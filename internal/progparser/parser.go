// Package progparser implements the program parser (component E): turns a
// token stream from internal/proglexer into the internal/ir tree §4.F
// specifies.
//
// The four documented shapes (conditional, two-operand, one-operand,
// simple) plus the block-operand extension (§9 open question (c); see
// SPEC_FULL.md §3's Program parser entry) are all instances of one general
// rule: read the opcode name, then greedily consume operand nodes until a
// terminator (';', the enclosing '}', or end of input). This subsumes the
// "two-operand"/"one-operand"/"simple" distinction into a single operand
// loop rather than hand-coding three near-identical branches — the shape
// is recovered from how many operands happen to precede the terminator,
// not from a fixed arity table (arity belongs to internal/opcodes, a
// component downstream of parsing).
package progparser

import (
	"github.com/tzstack/michelvm/internal/ir"
	"github.com/tzstack/michelvm/internal/proglexer"
	"github.com/tzstack/michelvm/internal/vmerrors"
)

// conditionalOpcodes take two brace-delimited branch blocks (§4.E shape 1).
var conditionalOpcodes = map[string]bool{
	"IF": true, "IF_LEFT": true, "IF_SOME": true, "IF_NONE": true, "IF_CONS": true,
}

// blockOperandOpcodes take a single brace-delimited body (the extension;
// MAP/ITER's operand is itself an instruction sequence).
var blockOperandOpcodes = map[string]bool{
	"MAP": true, "ITER": true,
}

// Parse tokenizes and parses source into a top-level instruction sequence.
func Parse(source string) ([]ir.Node, error) {
	tokens, err := proglexer.Tokenize(source)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	nodes, err := p.parseSequence()
	if err != nil {
		return nil, err
	}
	if p.peek().Type != proglexer.EOF {
		return nil, vmerrors.ParseErrorAt("trailing garbage after program", p.peek().Pos.Offset)
	}
	return nodes, nil
}

type parser struct {
	tokens []proglexer.Token
	pos    int
}

func (p *parser) peek() proglexer.Token { return p.tokens[p.pos] }

func (p *parser) next() proglexer.Token {
	tok := p.tokens[p.pos]
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return tok
}

func (p *parser) expect(tt proglexer.TokenType, context string) (proglexer.Token, error) {
	tok := p.peek()
	if tok.Type != tt {
		return proglexer.Token{}, vmerrors.ParseErrorAt(
			context+": expected "+tt.String()+", found "+tok.Type.String(), tok.Pos.Offset)
	}
	return p.next(), nil
}

// parseSequence parses instructions until '}' or end of input, consuming
// ';' separators between (and optionally after) instructions.
func (p *parser) parseSequence() ([]ir.Node, error) {
	var nodes []ir.Node
	for {
		tok := p.peek()
		if tok.Type == proglexer.EOF || tok.Type == proglexer.RBRACE {
			return nodes, nil
		}
		if tok.Type == proglexer.SEMICOLON {
			p.next()
			continue
		}
		node, err := p.parseInstruction()
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
		if p.peek().Type == proglexer.SEMICOLON {
			p.next()
		}
	}
}

func (p *parser) parseInstruction() (ir.Node, error) {
	nameTok, err := p.expect(proglexer.IDENT, "instruction")
	if err != nil {
		return ir.Node{}, err
	}
	name := nameTok.Text

	if conditionalOpcodes[name] {
		thenBlock, err := p.parseBracedSequence()
		if err != nil {
			return ir.Node{}, err
		}
		elseBlock, err := p.parseBracedSequence()
		if err != nil {
			return ir.Node{}, err
		}
		return ir.Node{Prim: name, Args: []ir.Arg{{Seq: thenBlock}, {Seq: elseBlock}}}, nil
	}

	if blockOperandOpcodes[name] {
		body, err := p.parseBracedSequence()
		if err != nil {
			return ir.Node{}, err
		}
		return ir.Node{Prim: name, Args: []ir.Arg{{Seq: body}}}, nil
	}

	var args []ir.Arg
	for p.isOperandStart(p.peek()) {
		operand, err := p.parseOperand()
		if err != nil {
			return ir.Node{}, err
		}
		args = append(args, ir.Arg{Node: &operand})
	}
	return ir.Node{Prim: name, Args: args}, nil
}

// isOperandStart reports whether tok can begin an operand, as opposed to
// the next instruction's name or a terminator.
func (p *parser) isOperandStart(tok proglexer.Token) bool {
	switch tok.Type {
	case proglexer.INT, proglexer.STRING, proglexer.BYTES, proglexer.LPAREN, proglexer.LBRACE:
		return true
	case proglexer.IDENT:
		// Operands and instruction names are lexically identical (both
		// IDENT), so the one-operand/simple-instruction ambiguity is resolved
		// by the token's text alone: a bare keyword-shaped operand (a type
		// keyword or a capitalized constructor like True/False/Unit/None) is
		// consumed as an operand; anything else is treated as the next
		// instruction.
		return isOperandKeyword(tok.Text)
	default:
		return false
	}
}

func (p *parser) parseBracedSequence() ([]ir.Node, error) {
	if _, err := p.expect(proglexer.LBRACE, "block"); err != nil {
		return nil, err
	}
	nodes, err := p.parseSequence()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(proglexer.RBRACE, "block"); err != nil {
		return nil, err
	}
	return nodes, nil
}

// parseOperand parses one operand: a literal, a parenthesized compound
// node (type expression or constructor application), or a braced
// collection literal ({ elem; elem; ... }).
func (p *parser) parseOperand() (ir.Node, error) {
	tok := p.peek()
	switch tok.Type {
	case proglexer.INT:
		p.next()
		text := tok.Text
		return ir.Node{IntLit: &text}, nil
	case proglexer.STRING:
		p.next()
		text := tok.Text
		return ir.Node{StringLit: &text}, nil
	case proglexer.BYTES:
		// §6's wire/IR literal format spells bytes as lowercase hex with no
		// "0x" prefix; the lexer requires the prefix on the surface only to
		// disambiguate a bytes literal from a bare identifier.
		p.next()
		text := tok.Text[2:]
		return ir.Node{StringLit: &text}, nil
	case proglexer.IDENT:
		p.next()
		return ir.Node{Prim: tok.Text}, nil
	case proglexer.LPAREN:
		return p.parseParenthesizedOperand()
	case proglexer.LBRACE:
		return p.parseCollectionOperand()
	default:
		return ir.Node{}, vmerrors.ParseErrorAt("expected an operand, found "+tok.Type.String(), tok.Pos.Offset)
	}
}

// parseParenthesizedOperand parses "( NAME operand* )" — a compound type
// expression like (pair nat nat) or a constructor application like
// (Pair 1 2), grounded on Michelson's literal-data and type grammars.
func (p *parser) parseParenthesizedOperand() (ir.Node, error) {
	if _, err := p.expect(proglexer.LPAREN, "operand"); err != nil {
		return ir.Node{}, err
	}
	nameTok, err := p.expect(proglexer.IDENT, "operand")
	if err != nil {
		return ir.Node{}, err
	}
	var args []ir.Arg
	for p.peek().Type != proglexer.RPAREN {
		if p.peek().Type == proglexer.EOF {
			return ir.Node{}, vmerrors.ParseErrorAt("unbalanced parentheses in operand", nameTok.Pos.Offset)
		}
		operand, err := p.parseOperand()
		if err != nil {
			return ir.Node{}, err
		}
		args = append(args, ir.Arg{Node: &operand})
	}
	p.next() // consume RPAREN
	return ir.Node{Prim: nameTok.Text, Args: args}, nil
}

// parseCollectionOperand parses "{ operand; operand; ... }" — a list, set,
// or map literal, represented as a synthetic "%collection%" node whose args
// are the elements; the opcode handler building the concrete typed value
// knows from context (its own declared type operand) which container to
// build.
func (p *parser) parseCollectionOperand() (ir.Node, error) {
	if _, err := p.expect(proglexer.LBRACE, "collection literal"); err != nil {
		return ir.Node{}, err
	}
	var args []ir.Arg
	for p.peek().Type != proglexer.RBRACE {
		if p.peek().Type == proglexer.SEMICOLON {
			p.next()
			continue
		}
		if p.peek().Type == proglexer.EOF {
			return ir.Node{}, vmerrors.ParseErrorAt("unbalanced braces in collection literal", p.peek().Pos.Offset)
		}
		operand, err := p.parseOperand()
		if err != nil {
			return ir.Node{}, err
		}
		args = append(args, ir.Arg{Node: &operand})
	}
	p.next() // consume RBRACE
	return ir.Node{Prim: "%collection%", Args: args}, nil
}

// isOperandKeyword reports whether text is a recognized bare-word operand:
// a type keyword or a nullary data constructor. Anything else in operand
// position is assumed to be the next instruction.
func isOperandKeyword(text string) bool {
	if typeKeywords[text] {
		return true
	}
	return nullaryConstructors[text]
}

var typeKeywords = map[string]bool{
	"unit": true, "never": true, "bool": true, "int": true, "nat": true,
	"string": true, "chain_id": true, "bytes": true, "mutez": true,
	"key_hash": true, "key": true, "signature": true, "timestamp": true,
	"address": true, "operation": true, "ticket": true,
	"option": true, "list": true, "set": true,
	"pair": true, "or": true, "map": true, "big_map": true, "contract": true,
}

var nullaryConstructors = map[string]bool{
	"Unit": true, "True": true, "False": true, "None": true,
}
