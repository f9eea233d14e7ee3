// Package vmctx carries the execution context (§3.4): the read-only
// environment values certain opcodes (BALANCE, SENDER, SOURCE, AMOUNT, ...)
// expose, plus the instruction cursor threaded through the driver.
package vmctx

import "math/big"

// Context is the read-only environment a program executes against.
type Context struct {
	Amount      *big.Int // mutez
	Sender      string   // address
	Source      string   // address
	SelfAddress string   // address
	Balance     *big.Int // mutez
	Level       *big.Int // nat
	Now         *big.Int // timestamp, seconds since epoch
	ChainID     string

	// Pos is the index of the instruction about to execute, incremented by
	// the driver after each step and exposed here so handlers needing
	// position-sensitive diagnostics (parse errors referencing the
	// originating instruction) don't need a second threaded parameter.
	Pos int
}

// WithPos returns a copy of c with Pos set to pos; Context is otherwise
// immutable once constructed, matching the rest of the interpreter's
// copy-and-rewrite discipline.
func (c Context) WithPos(pos int) Context {
	c.Pos = pos
	return c
}
