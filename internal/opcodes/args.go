package opcodes

import (
	"math/big"
	"strconv"

	"github.com/tzstack/michelvm/internal/ir"
	"github.com/tzstack/michelvm/internal/vmerrors"
)

// bigFromInt converts a plain int (always non-negative here: SIZE results,
// comb indices) into a *big.Int for the vmvalue numeric constructors.
func bigFromInt(n int) *big.Int { return big.NewInt(int64(n)) }

// intArg reads the integer literal at args[idx], defaulting to def when the
// opcode was written without an operand (e.g. bare "DROP" means "DROP 1").
func intArg(args []ir.Arg, idx int, def int, opcode string) (int, error) {
	if idx >= len(args) {
		return def, nil
	}
	n := args[idx].Node
	if n == nil || n.IntLit == nil {
		return 0, vmerrors.InvalidLiteral("int", "<non-literal>", opcode)
	}
	v, err := strconv.Atoi(*n.IntLit)
	if err != nil {
		return 0, vmerrors.InvalidLiteral("int", *n.IntLit, opcode)
	}
	return v, nil
}

// requireIntArg reads a mandatory integer operand.
func requireIntArg(args []ir.Arg, idx int, opcode string) (int, error) {
	if idx >= len(args) {
		return 0, vmerrors.UnexpectedArgCount(idx+1, len(args), opcode)
	}
	return intArg(args, idx, 0, opcode)
}

func requireArgCount(args []ir.Arg, n int, opcode string) error {
	if len(args) != n {
		return vmerrors.UnexpectedArgCount(n, len(args), opcode)
	}
	return nil
}
