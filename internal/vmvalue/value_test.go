package vmvalue_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tzstack/michelvm/internal/vmerrors"
	"github.com/tzstack/michelvm/internal/vmtypes"
	"github.com/tzstack/michelvm/internal/vmvalue"
)

func bi(n int64) *big.Int { return big.NewInt(n) }

func TestNewNatRejectsNegative(t *testing.T) {
	_, err := vmvalue.NewNat(bi(-1))
	require.Error(t, err)
	assert.True(t, vmerrors.Is(err, vmerrors.KindInvalidNat))
}

func TestNewMutezRejectsNegative(t *testing.T) {
	_, err := vmvalue.NewMutez(bi(-5))
	require.Error(t, err)
	assert.True(t, vmerrors.Is(err, vmerrors.KindInvalidMutez))
}

func TestCompareNumeric(t *testing.T) {
	a, err := vmvalue.NewNat(bi(3))
	require.NoError(t, err)
	b, err := vmvalue.NewNat(bi(5))
	require.NoError(t, err)

	c, err := vmvalue.Compare(a, b)
	require.NoError(t, err)
	assert.Equal(t, -1, c)

	c, err = vmvalue.Compare(b, a)
	require.NoError(t, err)
	assert.Equal(t, 1, c)

	c, err = vmvalue.Compare(a, a)
	require.NoError(t, err)
	assert.Equal(t, 0, c)
}

func TestCompareBool(t *testing.T) {
	f, tr := vmvalue.NewBool(false), vmvalue.NewBool(true)
	c, err := vmvalue.Compare(f, tr)
	require.NoError(t, err)
	assert.Equal(t, -1, c)
}

func TestCompareStringLexicographic(t *testing.T) {
	c, err := vmvalue.Compare(vmvalue.NewString("abc"), vmvalue.NewString("abd"))
	require.NoError(t, err)
	assert.Equal(t, -1, c)
}

func TestComparePairStructural(t *testing.T) {
	n1, _ := vmvalue.NewNat(bi(1))
	n2, _ := vmvalue.NewNat(bi(2))
	p1 := vmvalue.NewPair(n1, vmvalue.NewString("x"))
	p2 := vmvalue.NewPair(n2, vmvalue.NewString("a"))

	c, err := vmvalue.Compare(p1, p2)
	require.NoError(t, err)
	assert.Equal(t, -1, c, "left projection decides before right is consulted")
}

func TestCompareOptionNoneBeforeSome(t *testing.T) {
	none := vmvalue.NewNone(vmtypes.Scalar(vmtypes.KindInt))
	some := vmvalue.NewSome(vmvalue.NewInt(bi(0)))
	c, err := vmvalue.Compare(none, some)
	require.NoError(t, err)
	assert.Equal(t, -1, c)
}

func TestCompareMismatchedKindsError(t *testing.T) {
	_, err := vmvalue.Compare(vmvalue.NewBool(true), vmvalue.NewString("x"))
	require.Error(t, err)
	assert.True(t, vmerrors.Is(err, vmerrors.KindWrongType))
}

func TestNewSetDeduplicates(t *testing.T) {
	n1, _ := vmvalue.NewNat(bi(1))
	n1b, _ := vmvalue.NewNat(bi(1))
	n2, _ := vmvalue.NewNat(bi(2))
	set, err := vmvalue.NewSet(vmtypes.Scalar(vmtypes.KindNat), []vmvalue.Value{n1, n1b, n2})
	require.NoError(t, err)
	assert.Len(t, set.Elems, 2)
}

func TestNewMapLastWriteWinsOnDuplicateKey(t *testing.T) {
	k, _ := vmvalue.NewNat(bi(1))
	v1 := vmvalue.NewString("first")
	v2 := vmvalue.NewString("second")
	m, err := vmvalue.NewMap(vmtypes.Scalar(vmtypes.KindNat), vmtypes.Scalar(vmtypes.KindString), []vmvalue.MapEntry{
		{Key: k, Val: v1},
		{Key: k, Val: v2},
	})
	require.NoError(t, err)
	require.Len(t, m.Entries, 1)
	assert.Equal(t, "second", m.Entries[0].Val.Str)
}

func TestNewMapRejectsNonComparableKey(t *testing.T) {
	_, err := vmvalue.NewMap(vmtypes.List(vmtypes.Scalar(vmtypes.KindInt)), vmtypes.Scalar(vmtypes.KindString), nil)
	require.Error(t, err)
}

func TestNewTicketRequiresPositiveAmount(t *testing.T) {
	_, err := vmvalue.NewTicket(vmvalue.NewString("x"), bi(0), "KT1VJ8B6Pw3S2DKaaiGsEMmxHHtmEXn4AUzo")
	require.Error(t, err)
}

func TestCarCdr(t *testing.T) {
	p := vmvalue.NewPair(vmvalue.NewInt(bi(1)), vmvalue.NewString("y"))
	car, err := vmvalue.Car(p)
	require.NoError(t, err)
	assert.Equal(t, vmtypes.KindInt, car.Typ.Kind)

	cdr, err := vmvalue.Cdr(p)
	require.NoError(t, err)
	assert.Equal(t, "y", cdr.Str)
}

func TestConsPrepends(t *testing.T) {
	elemType := vmtypes.Scalar(vmtypes.KindNat)
	n1, _ := vmvalue.NewNat(bi(1))
	n2, _ := vmvalue.NewNat(bi(2))
	list, err := vmvalue.NewList(elemType, []vmvalue.Value{n2})
	require.NoError(t, err)

	out, err := vmvalue.Cons(n1, list)
	require.NoError(t, err)
	require.Len(t, out.Elems, 2)
	assert.Equal(t, n1.Num, out.Elems[0].Num)
}

func TestSizeOverVariants(t *testing.T) {
	n, err := vmvalue.Size(vmvalue.NewString("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	n, err = vmvalue.Size(vmvalue.NewBytes([]byte{1, 2, 3}))
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestMapGetUpdateRoundTrip(t *testing.T) {
	k, _ := vmvalue.NewNat(bi(7))
	v := vmvalue.NewString("seven")
	m, err := vmvalue.NewMap(vmtypes.Scalar(vmtypes.KindNat), vmtypes.Scalar(vmtypes.KindString), nil)
	require.NoError(t, err)

	m, err = vmvalue.MapUpdate(k, &v, m)
	require.NoError(t, err)

	got, found, err := vmvalue.MapGet(k, m)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "seven", got.Str)

	m, err = vmvalue.MapUpdate(k, nil, m)
	require.NoError(t, err)
	_, found, err = vmvalue.MapGet(k, m)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestUnfoldFoldRoundTrip(t *testing.T) {
	a, _ := vmvalue.NewNat(bi(1))
	b, _ := vmvalue.NewNat(bi(2))
	c, _ := vmvalue.NewNat(bi(3))

	folded, err := vmvalue.Fold([]vmvalue.Value{a, b, c})
	require.NoError(t, err)

	leaves, err := vmvalue.Unfold(folded, 3)
	require.NoError(t, err)
	require.Len(t, leaves, 3)
	assert.Equal(t, c.Num, leaves[2].Num)
}

func TestClassifyAddress(t *testing.T) {
	assert.Equal(t, vmvalue.AddressContract, vmvalue.ClassifyAddress("KT1VJ8B6Pw3S2DKaaiGsEMmxHHtmEXn4AUzo"))
	assert.Equal(t, vmvalue.AddressInvalid, vmvalue.ClassifyAddress("not-an-address"))
}
