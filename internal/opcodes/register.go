// register.go doesn't wire anything itself — each <concern>ops.go file
// registers its own handlers into internal/dispatch's global Registry from
// its own init(), mirroring decorators.RegisterValue/RegisterAction's
// pattern of many small self-registering files feeding one shared table.
// This file only lists the full expected opcode surface, so a missing
// registration is a one-line diff away from being caught by
// TestAllExpectedOpcodesRegistered.
package opcodes

// ExpectedOpcodes is the full set of opcode names this package registers,
// drawn from SPEC_FULL.md §4.H's table plus its supplemented additions.
var ExpectedOpcodes = []string{
	"DROP", "DUP", "SWAP", "DIG", "DUG",
	"PAIR", "UNPAIR", "CAR", "CDR", "GET",
	"ADD", "SUB", "SUB_MUTEZ", "MUL", "EDIV", "NEG", "ABS", "INT", "ISNAT",
	"NOT", "AND", "OR", "XOR",
	"COMPARE", "EQ", "NEQ", "LT", "GT", "LE", "GE",
	"CONS", "NIL", "SIZE", "CONCAT", "MEM", "UPDATE", "MAP", "ITER",
	"EMPTY_SET", "EMPTY_MAP", "EMPTY_BIG_MAP",
	"SOME", "NONE", "LEFT", "RIGHT", "IF", "IF_LEFT", "IF_SOME", "IF_NONE", "IF_CONS",
	"BALANCE", "SENDER", "SOURCE", "SELF_ADDRESS", "AMOUNT", "NOW", "LEVEL", "CHAIN_ID", "NEVER", "UNIT",
	"KECCAK",
	"PUSH", "SLICE", "TICKET", "ADDRESS",
}
