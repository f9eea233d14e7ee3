package vmvalue

import (
	"strings"

	"github.com/tzstack/michelvm/internal/vmerrors"
	"github.com/tzstack/michelvm/internal/vmtypes"
)

// Compare implements the COMPARE opcode's total order (§4.H.3): numeric by
// value; string/bytes/key_hash/key/signature/chain_id lexicographic;
// booleans false < true; unit == unit; pair/option/or compared structurally
// left-to-right; address compared as (implicit < contract) then by base58.
//
// Per §9's open question (a), timestamp is treated as totally ordered by its
// underlying numeric value, the same as int/nat/mutez — not given special
// treatment the way the original source inconsistently did.
func Compare(a, b Value) (int, error) {
	if a.Typ.Kind != b.Typ.Kind {
		return 0, vmerrors.WrongType([]string{vmtypes.Render(a.Typ)}, vmtypes.Render(b.Typ), "COMPARE")
	}
	switch a.Typ.Kind {
	case vmtypes.KindUnit:
		return 0, nil
	case vmtypes.KindBool:
		return compareBool(a.Bool, b.Bool), nil
	case vmtypes.KindInt, vmtypes.KindNat, vmtypes.KindMutez, vmtypes.KindTimestamp:
		return a.Num.Cmp(b.Num), nil
	case vmtypes.KindString, vmtypes.KindKeyHash, vmtypes.KindKey, vmtypes.KindSignature, vmtypes.KindChainID:
		return strings.Compare(a.Str, b.Str), nil
	case vmtypes.KindBytes:
		return compareBytes(a.Bytes, b.Bytes), nil
	case vmtypes.KindAddress:
		return compareAddress(a.Str, b.Str), nil
	case vmtypes.KindPair:
		c, err := Compare(*a.PairL, *b.PairL)
		if err != nil || c != 0 {
			return c, err
		}
		return Compare(*a.PairR, *b.PairR)
	case vmtypes.KindOption:
		if a.Opt == nil && b.Opt == nil {
			return 0, nil
		}
		if a.Opt == nil {
			return -1, nil
		}
		if b.Opt == nil {
			return 1, nil
		}
		return Compare(*a.Opt, *b.Opt)
	case vmtypes.KindOr:
		if a.OrIsLeft != b.OrIsLeft {
			if a.OrIsLeft {
				return -1, nil
			}
			return 1, nil
		}
		return Compare(*a.OrInner, *b.OrInner)
	default:
		return 0, vmerrors.New(vmerrors.KindWrongType, "type is not comparable: "+vmtypes.Render(a.Typ))
	}
}

func compareBool(a, b bool) int {
	if a == b {
		return 0
	}
	if !a && b {
		return -1
	}
	return 1
}

func compareBytes(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}

// compareAddress orders implicit accounts (tz1/tz2/tz3) before originated
// contracts (KT1), then lexicographically by base58 text.
func compareAddress(a, b string) int {
	ra, rb := addressRank(a), addressRank(b)
	if ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}

func addressRank(addr string) int {
	if strings.HasPrefix(addr, "KT1") {
		return 1
	}
	return 0
}
