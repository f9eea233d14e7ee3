// Package history implements the interpreter's execution history (component
// C continued): an append-only sequence of full-stack snapshots, one per
// executed instruction, with len(History) == instructions_executed + 1
// (the initial stack counts as snapshot zero).
//
// HistoryHash's canonical CBOR encode-then-sha256 approach is grounded on
// the teacher's plan hashing (planfmt.CanonicalPlan.MarshalBinary/Hash):
// the same two-step "deterministic encode, then hash the bytes" shape,
// adapted from a deploy-plan's canonical form to a stack snapshot.
package history

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/fxamacker/cbor/v2"

	"github.com/tzstack/michelvm/internal/stack"
	"github.com/tzstack/michelvm/internal/vmvalue"
)

// History is the append-only list of stack snapshots.
type History []stack.Stack

// Append returns a new History with snap recorded as the newest entry.
func (h History) Append(snap stack.Stack) History {
	out := make(History, len(h), len(h)+1)
	copy(out, h)
	return append(out, snap.Clone())
}

// canonicalCell mirrors the public Cell shape closely
// enough for deterministic CBOR encoding without round-tripping through
// vmvalue's richer struct (whose *Value pointer fields would otherwise
// defeat CBOR's canonical map-key ordering across runs).
type canonicalCell struct {
	Op  string
	Typ string
	Rep string
}

// snapshotToCanonical flattens one Stack snapshot into a canonical,
// pointer-free form safe for deterministic encoding.
func snapshotToCanonical(s stack.Stack) []canonicalCell {
	out := make([]canonicalCell, len(s))
	for i, cell := range s {
		out[i] = canonicalCell{
			Op:  cell.Op,
			Typ: cell.Value.Typ.String(),
			Rep: vmvalue.Repr(cell.Value),
		}
	}
	return out
}

// MarshalBinary produces the deterministic CBOR encoding of h.
func (h History) MarshalBinary() ([]byte, error) {
	encMode, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		return nil, err
	}
	canon := make([][]canonicalCell, len(h))
	for i, snap := range h {
		canon[i] = snapshotToCanonical(snap)
	}
	return encMode.Marshal(canon)
}

// Hash returns the sha256 digest of h's canonical encoding.
func (h History) Hash() ([32]byte, error) {
	data, err := h.MarshalBinary()
	if err != nil {
		return [32]byte{}, err
	}
	return sha256.Sum256(data), nil
}

// HistoryHash returns the hex-encoded sha256 digest of h's canonical form,
// a stable fingerprint two independent runs of the same program can compare.
func (h History) HistoryHash() (string, error) {
	sum, err := h.Hash()
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(sum[:]), nil
}
