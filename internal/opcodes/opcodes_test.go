package opcodes_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tzstack/michelvm/internal/dispatch"
	_ "github.com/tzstack/michelvm/internal/opcodes"
	"github.com/tzstack/michelvm/internal/ir"
	"github.com/tzstack/michelvm/internal/stack"
	"github.com/tzstack/michelvm/internal/vmctx"
	"github.com/tzstack/michelvm/internal/vmtypes"
	"github.com/tzstack/michelvm/internal/vmvalue"
)

func baseCtx() vmctx.Context {
	return vmctx.Context{
		Amount:      big.NewInt(0),
		Balance:     big.NewInt(1000),
		Level:       big.NewInt(42),
		Now:         big.NewInt(1700000000),
		Sender:      "tz1VSUr8wwNhLAzempoch5d6hLRiTh8Cjcjb",
		Source:      "tz1VSUr8wwNhLAzempoch5d6hLRiTh8Cjcjb",
		SelfAddress: "KT1VJ8B6Pw3S2DKaaiGsEMmxHHtmEXn4AUzo",
		ChainID:     "NetXdQprcVkpaWU",
	}
}

func natCell(n int64) stack.Cell {
	v, err := vmvalue.NewNat(big.NewInt(n))
	if err != nil {
		panic(err)
	}
	return stack.Cell{Value: v}
}

func intCell(n int64) stack.Cell {
	return stack.Cell{Value: vmvalue.NewInt(big.NewInt(n))}
}

func boolCell(b bool) stack.Cell {
	return stack.Cell{Value: vmvalue.NewBool(b)}
}

// runSeq is a minimal recursive stand-in for internal/vm's driver,
// exercising dispatch.RunFunc's contract for branch opcodes.
func runSeq(nodes []ir.Node, st stack.Stack, ctx vmctx.Context) (stack.Stack, error) {
	for _, n := range nodes {
		h, err := dispatch.MustGet(n.Prim)
		if err != nil {
			return nil, err
		}
		resp, err := h(dispatch.Request{Stack: st, Args: n.Args, Ctx: ctx, Run: runSeq})
		if err != nil {
			return nil, err
		}
		st, ctx = resp.Stack, resp.Ctx
	}
	return st, nil
}

func TestDropDefaultAndN(t *testing.T) {
	h, _ := dispatch.Get("DROP")
	st := stack.Stack{natCell(1), natCell(2), natCell(3)}
	resp, err := h(dispatch.Request{Stack: st})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Stack.Depth())

	two := "2"
	resp, err = h(dispatch.Request{Stack: st, Args: []ir.Arg{{Node: &ir.Node{IntLit: &two}}}})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Stack.Depth())
}

func TestDropZeroIsNoop(t *testing.T) {
	h, _ := dispatch.Get("DROP")
	n := "0"
	_, err := h(dispatch.Request{Stack: stack.Stack{natCell(1)}, Args: []ir.Arg{{Node: &ir.Node{IntLit: &n}}}})
	require.Error(t, err)
}

func TestDupPushesCopy(t *testing.T) {
	h, _ := dispatch.Get("DUP")
	st := stack.Stack{natCell(5)}
	resp, err := h(dispatch.Request{Stack: st})
	require.NoError(t, err)
	require.Equal(t, 2, resp.Stack.Depth())
	assert.Equal(t, resp.Stack[0].Value.Num, resp.Stack[1].Value.Num)
}

func TestSwap(t *testing.T) {
	h, _ := dispatch.Get("SWAP")
	st := stack.Stack{natCell(1), natCell(2)}
	resp, err := h(dispatch.Request{Stack: st})
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.Stack[0].Value.Num.Int64())
	assert.Equal(t, int64(1), resp.Stack[1].Value.Num.Int64())
}

func TestDigDug(t *testing.T) {
	dig, _ := dispatch.Get("DIG")
	st := stack.Stack{natCell(1), natCell(2), natCell(3)}
	two := "2"
	resp, err := dig(dispatch.Request{Stack: st, Args: []ir.Arg{{Node: &ir.Node{IntLit: &two}}}})
	require.NoError(t, err)
	assert.Equal(t, int64(3), resp.Stack[0].Value.Num.Int64())

	dug, _ := dispatch.Get("DUG")
	resp2, err := dug(dispatch.Request{Stack: resp.Stack, Args: []ir.Arg{{Node: &ir.Node{IntLit: &two}}}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp2.Stack[0].Value.Num.Int64())
	assert.Equal(t, int64(3), resp2.Stack[2].Value.Num.Int64())
}

func TestCarCdr(t *testing.T) {
	pairV := vmvalue.NewPair(natCell(1).Value, natCell(2).Value)
	car, _ := dispatch.Get("CAR")
	resp, err := car(dispatch.Request{Stack: stack.Stack{{Value: pairV}}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.Stack[0].Value.Num.Int64())

	cdr, _ := dispatch.Get("CDR")
	resp2, err := cdr(dispatch.Request{Stack: stack.Stack{{Value: pairV}}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp2.Stack[0].Value.Num.Int64())
}

func TestGetCombIndexOnTriple(t *testing.T) {
	// pair(1, pair(2,3)) — right comb of 3 leaves. GET n's pair-projection
	// arm returns an optional field (§6), so every result is Some(...).
	p := vmvalue.NewPair(natCell(1).Value, vmvalue.NewPair(natCell(2).Value, natCell(3).Value))
	get, _ := dispatch.Get("GET")
	for n, want := range map[string]int64{"1": 1, "2": 2, "3": 2, "4": 3} {
		resp, err := get(dispatch.Request{Stack: stack.Stack{{Value: p}}, Args: []ir.Arg{{Node: &ir.Node{IntLit: &n}}}})
		require.NoError(t, err, "GET %s", n)
		result := resp.Stack[0].Value
		require.Equal(t, vmtypes.KindOption, result.Typ.Kind, "GET %s", n)
		require.NotNil(t, result.Opt, "GET %s", n)
		if n == "2" {
			// GET 2 = CDR once = pair(2,3); check that it is a pair.
			assert.Equal(t, vmtypes.KindPair, result.Opt.Typ.Kind)
			continue
		}
		assert.Equal(t, want, result.Opt.Num.Int64(), "GET %s", n)
	}
}

func TestAddTypeTable(t *testing.T) {
	add, _ := dispatch.Get("ADD")
	resp, err := add(dispatch.Request{Stack: stack.Stack{natCell(3), intCell(2)}})
	require.NoError(t, err)
	assert.Equal(t, vmtypes.KindInt, resp.Stack[0].Value.Typ.Kind)
	assert.Equal(t, int64(5), resp.Stack[0].Value.Num.Int64())
}

func TestAddRejectsIncompatibleKinds(t *testing.T) {
	add, _ := dispatch.Get("ADD")
	str := stack.Cell{Value: vmvalue.NewString("x")}
	_, err := add(dispatch.Request{Stack: stack.Stack{natCell(1), str}})
	require.Error(t, err)
}

func TestSubMutezForbidsPlainSub(t *testing.T) {
	sub, _ := dispatch.Get("SUB")
	mz1, _ := vmvalue.NewMutez(big.NewInt(5))
	mz2, _ := vmvalue.NewMutez(big.NewInt(3))
	_, err := sub(dispatch.Request{Stack: stack.Stack{{Value: mz2}, {Value: mz1}}})
	require.Error(t, err)
}

func TestSubMutezUnderflowYieldsNone(t *testing.T) {
	h, _ := dispatch.Get("SUB_MUTEZ")
	big5, _ := vmvalue.NewMutez(big.NewInt(5))
	big16, _ := vmvalue.NewMutez(big.NewInt(16))
	// top=5, second=16; top-second = 5-16 underflows.
	resp, err := h(dispatch.Request{Stack: stack.Stack{{Value: big5}, {Value: big16}}})
	require.NoError(t, err)
	assert.Nil(t, resp.Stack[0].Value.Opt)
}

func TestEdivByZeroYieldsNone(t *testing.T) {
	h, _ := dispatch.Get("EDIV")
	// top=dividend=7, second=divisor=0.
	resp, err := h(dispatch.Request{Stack: stack.Stack{natCell(7), natCell(0)}})
	require.NoError(t, err)
	assert.Nil(t, resp.Stack[0].Value.Opt)
}

func TestEdivRemainderNonNegative(t *testing.T) {
	h, _ := dispatch.Get("EDIV")
	// top=dividend=-7, second=divisor=3.
	resp, err := h(dispatch.Request{Stack: stack.Stack{intCell(-7), natCell(3)}})
	require.NoError(t, err)
	pair := resp.Stack[0].Value.Opt
	require.NotNil(t, pair)
	assert.True(t, pair.PairR.Num.Sign() >= 0)
}

func TestIsnat(t *testing.T) {
	h, _ := dispatch.Get("ISNAT")
	resp, err := h(dispatch.Request{Stack: stack.Stack{intCell(-1)}})
	require.NoError(t, err)
	assert.Nil(t, resp.Stack[0].Value.Opt)

	resp2, err := h(dispatch.Request{Stack: stack.Stack{intCell(4)}})
	require.NoError(t, err)
	assert.NotNil(t, resp2.Stack[0].Value.Opt)
}

func TestCompareAndSignTests(t *testing.T) {
	cmp, _ := dispatch.Get("COMPARE")
	// stack[0] (top) is pushed last; COMPARE(top, second) = COMPARE(3, 5) = -1.
	resp, err := cmp(dispatch.Request{Stack: stack.Stack{natCell(3), natCell(5)}})
	require.NoError(t, err)
	assert.Equal(t, int64(-1), resp.Stack[0].Value.Num.Int64())

	lt, _ := dispatch.Get("LT")
	boolResp, err := lt(dispatch.Request{Stack: resp.Stack})
	require.NoError(t, err)
	assert.True(t, boolResp.Stack[0].Value.Bool)
}

func TestConsAndNil(t *testing.T) {
	nilH, _ := dispatch.Get("NIL")
	typeNode := ir.Node{Prim: "nat"}
	resp, err := nilH(dispatch.Request{Args: []ir.Arg{{Node: &typeNode}}})
	require.NoError(t, err)
	require.Len(t, resp.Stack[0].Value.Elems, 0)

	cons, _ := dispatch.Get("CONS")
	resp2, err := cons(dispatch.Request{Stack: stack.Stack{natCell(9), resp.Stack[0]}})
	require.NoError(t, err)
	assert.Len(t, resp2.Stack[0].Value.Elems, 1)
}

func TestSizeOnListAndString(t *testing.T) {
	size, _ := dispatch.Get("SIZE")
	listVal, err := vmvalue.NewList(vmtypes.Scalar(vmtypes.KindNat), []vmvalue.Value{natCell(1).Value, natCell(2).Value})
	require.NoError(t, err)
	resp, err := size(dispatch.Request{Stack: stack.Stack{{Value: listVal}}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.Stack[0].Value.Num.Int64())
}

func TestConcatStrings(t *testing.T) {
	h, _ := dispatch.Get("CONCAT")
	a := stack.Cell{Value: vmvalue.NewString("foo")}
	b := stack.Cell{Value: vmvalue.NewString("bar")}
	resp, err := h(dispatch.Request{Stack: stack.Stack{b, a}})
	require.NoError(t, err)
	assert.Equal(t, "barfoo", resp.Stack[0].Value.Str)
}

func TestMemOnSet(t *testing.T) {
	setVal, err := vmvalue.NewSet(vmtypes.Scalar(vmtypes.KindNat), []vmvalue.Value{natCell(2).Value, natCell(3).Value})
	require.NoError(t, err)
	mem, _ := dispatch.Get("MEM")
	resp, err := mem(dispatch.Request{Stack: stack.Stack{natCell(2), {Value: setVal}}})
	require.NoError(t, err)
	assert.True(t, resp.Stack[0].Value.Bool)
}

func TestUpdateSetAdd(t *testing.T) {
	setVal, err := vmvalue.NewSet(vmtypes.Scalar(vmtypes.KindNat), []vmvalue.Value{natCell(2).Value, natCell(3).Value, natCell(4).Value, natCell(5).Value})
	require.NoError(t, err)
	update, _ := dispatch.Get("UPDATE")
	resp, err := update(dispatch.Request{Stack: stack.Stack{natCell(9), boolCell(true), {Value: setVal}}})
	require.NoError(t, err)
	assert.Len(t, resp.Stack[0].Value.Elems, 5)
}

func TestIfBranchSelection(t *testing.T) {
	ifH, _ := dispatch.Get("IF")
	thenBranch := []ir.Node{{Prim: "DROP"}}
	elseBranch := []ir.Node{{Prim: "DROP"}, {Prim: "DROP"}}
	resp, err := ifH(dispatch.Request{
		Stack: stack.Stack{boolCell(true), natCell(1), natCell(2)},
		Args:  []ir.Arg{{Seq: thenBranch}, {Seq: elseBranch}},
		Ctx:   baseCtx(),
		Run:   runSeq,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Stack.Depth())
}

func TestIfLeftUnwraps(t *testing.T) {
	ifLeft, _ := dispatch.Get("IF_LEFT")
	orVal := vmvalue.NewLeft(natCell(7).Value, vmtypes.Scalar(vmtypes.KindString))
	resp, err := ifLeft(dispatch.Request{
		Stack: stack.Stack{{Value: orVal}},
		Args:  []ir.Arg{{Seq: []ir.Node{{Prim: "DROP"}}}, {Seq: nil}},
		Ctx:   baseCtx(),
		Run:   runSeq,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, resp.Stack.Depth())
}

func TestMapOverList(t *testing.T) {
	listVal, err := vmvalue.NewList(vmtypes.Scalar(vmtypes.KindNat), []vmvalue.Value{natCell(1).Value, natCell(2).Value, natCell(3).Value})
	require.NoError(t, err)
	two := "2"
	body := []ir.Node{{Prim: "PUSH", Args: []ir.Arg{{Node: &ir.Node{Prim: "nat"}}, {Node: &ir.Node{IntLit: &two}}}}, {Prim: "MUL"}}
	mapH, _ := dispatch.Get("MAP")
	resp, err := mapH(dispatch.Request{
		Stack: stack.Stack{{Value: listVal}},
		Args:  []ir.Arg{{Seq: body}},
		Ctx:   baseCtx(),
		Run:   runSeq,
	})
	require.NoError(t, err)
	require.Len(t, resp.Stack[0].Value.Elems, 3)
	assert.Equal(t, int64(2), resp.Stack[0].Value.Elems[0].Num.Int64())
	assert.Equal(t, int64(6), resp.Stack[0].Value.Elems[2].Num.Int64())
}

func TestPushLiteral(t *testing.T) {
	push, _ := dispatch.Get("PUSH")
	five := "5"
	resp, err := push(dispatch.Request{Args: []ir.Arg{{Node: &ir.Node{Prim: "nat"}}, {Node: &ir.Node{IntLit: &five}}}})
	require.NoError(t, err)
	assert.Equal(t, int64(5), resp.Stack[0].Value.Num.Int64())
}

func TestPushPair(t *testing.T) {
	push, _ := dispatch.Get("PUSH")
	typeNode := ir.Node{Prim: "pair", Args: []ir.Arg{{Node: &ir.Node{Prim: "nat"}}, {Node: &ir.Node{Prim: "nat"}}}}
	one, two := "1", "2"
	litNode := ir.Node{Prim: "Pair", Args: []ir.Arg{{Node: &ir.Node{IntLit: &one}}, {Node: &ir.Node{IntLit: &two}}}}
	resp, err := push(dispatch.Request{Args: []ir.Arg{{Node: &typeNode}, {Node: &litNode}}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.Stack[0].Value.PairL.Num.Int64())
	assert.Equal(t, int64(2), resp.Stack[0].Value.PairR.Num.Int64())
}

func TestSliceOutOfRangeYieldsNone(t *testing.T) {
	slice, _ := dispatch.Get("SLICE")
	resp, err := slice(dispatch.Request{Stack: stack.Stack{natCell(10), natCell(0), {Value: vmvalue.NewString("hi")}}})
	require.NoError(t, err)
	assert.Nil(t, resp.Stack[0].Value.Opt)
}

func TestTicketZeroAmountYieldsNone(t *testing.T) {
	ticket, _ := dispatch.Get("TICKET")
	// top = content, second = amount; amount=0 must yield None.
	resp, err := ticket(dispatch.Request{Stack: stack.Stack{natCell(1), natCell(0)}, Ctx: baseCtx()})
	require.NoError(t, err)
	assert.Nil(t, resp.Stack[0].Value.Opt)
}

func TestContextPushes(t *testing.T) {
	balance, _ := dispatch.Get("BALANCE")
	resp, err := balance(dispatch.Request{Ctx: baseCtx()})
	require.NoError(t, err)
	assert.Equal(t, int64(1000), resp.Stack[0].Value.Num.Int64())

	sender, _ := dispatch.Get("SENDER")
	resp2, err := sender(dispatch.Request{Ctx: baseCtx()})
	require.NoError(t, err)
	assert.Equal(t, baseCtx().Sender, resp2.Stack[0].Value.Str)
}

func TestNowIsIndependentOfLevel(t *testing.T) {
	now, _ := dispatch.Get("NOW")
	level, _ := dispatch.Get("LEVEL")
	ctx := baseCtx()

	nowResp, err := now(dispatch.Request{Ctx: ctx})
	require.NoError(t, err)
	levelResp, err := level(dispatch.Request{Ctx: ctx})
	require.NoError(t, err)

	assert.Equal(t, ctx.Now.Int64(), nowResp.Stack[0].Value.Num.Int64())
	assert.Equal(t, ctx.Level.Int64(), levelResp.Stack[0].Value.Num.Int64())
	assert.NotEqual(t, nowResp.Stack[0].Value.Num.Int64(), levelResp.Stack[0].Value.Num.Int64())
}

func TestNotBoolAndNumeric(t *testing.T) {
	not, _ := dispatch.Get("NOT")
	resp, err := not(dispatch.Request{Stack: stack.Stack{boolCell(true)}})
	require.NoError(t, err)
	assert.False(t, resp.Stack[0].Value.Bool)

	resp2, err := not(dispatch.Request{Stack: stack.Stack{intCell(0)}})
	require.NoError(t, err)
	assert.Equal(t, int64(-1), resp2.Stack[0].Value.Num.Int64())
}

func TestAndOrBool(t *testing.T) {
	and, _ := dispatch.Get("AND")
	resp, err := and(dispatch.Request{Stack: stack.Stack{boolCell(false), boolCell(true)}})
	require.NoError(t, err)
	assert.False(t, resp.Stack[0].Value.Bool)

	or, _ := dispatch.Get("OR")
	resp2, err := or(dispatch.Request{Stack: stack.Stack{boolCell(false), boolCell(true)}})
	require.NoError(t, err)
	assert.True(t, resp2.Stack[0].Value.Bool)
}

func TestPairNAndUnpairN(t *testing.T) {
	pairN := "3"
	pair, _ := dispatch.Get("PAIR")
	resp, err := pair(dispatch.Request{
		Stack: stack.Stack{natCell(1), natCell(2), natCell(3)},
		Args:  []ir.Arg{{Node: &ir.Node{IntLit: &pairN}}},
	})
	require.NoError(t, err)
	require.Equal(t, 1, resp.Stack.Depth())

	unpair, _ := dispatch.Get("UNPAIR")
	resp2, err := unpair(dispatch.Request{
		Stack: resp.Stack,
		Args:  []ir.Arg{{Node: &ir.Node{IntLit: &pairN}}},
	})
	require.NoError(t, err)
	require.Equal(t, 3, resp2.Stack.Depth())
	assert.Equal(t, int64(1), resp2.Stack[0].Value.Num.Int64())
	assert.Equal(t, int64(3), resp2.Stack[2].Value.Num.Int64())
}

func TestAbsNegInt(t *testing.T) {
	abs, _ := dispatch.Get("ABS")
	resp, err := abs(dispatch.Request{Stack: stack.Stack{intCell(-5)}})
	require.NoError(t, err)
	assert.Equal(t, vmtypes.KindNat, resp.Stack[0].Value.Typ.Kind)
	assert.Equal(t, int64(5), resp.Stack[0].Value.Num.Int64())

	neg, _ := dispatch.Get("NEG")
	resp2, err := neg(dispatch.Request{Stack: stack.Stack{natCell(5)}})
	require.NoError(t, err)
	assert.Equal(t, int64(-5), resp2.Stack[0].Value.Num.Int64())

	intH, _ := dispatch.Get("INT")
	resp3, err := intH(dispatch.Request{Stack: stack.Stack{natCell(7)}})
	require.NoError(t, err)
	assert.Equal(t, vmtypes.KindInt, resp3.Stack[0].Value.Typ.Kind)
}

func TestKeccak(t *testing.T) {
	h, _ := dispatch.Get("KECCAK")
	resp, err := h(dispatch.Request{Stack: stack.Stack{{Value: vmvalue.NewBytes([]byte("abc"))}}})
	require.NoError(t, err)
	assert.Len(t, resp.Stack[0].Value.Bytes, 32)
}
