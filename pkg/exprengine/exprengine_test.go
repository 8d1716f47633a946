package exprengine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuemby/graphd/pkg/types"
)

func TestArithmeticPrecedenceAndGrouping(t *testing.T) {
	v, err := Eval("2 + 3 * 4", NullContext)
	require.NoError(t, err)
	assert.Equal(t, types.IntValue(14), v)

	v, err = Eval("(2 + 3) * 4", NullContext)
	require.NoError(t, err)
	assert.Equal(t, types.IntValue(20), v)
}

func TestIntFloatPromotion(t *testing.T) {
	v, err := Eval("1 + 2.5", NullContext)
	require.NoError(t, err)
	assert.Equal(t, types.FloatValue(3.5), v)
}

func TestPropertyReference(t *testing.T) {
	ctx := MapContext{"age": types.IntValue(30)}
	v, err := Eval("age >= 18 && age < 65", ctx)
	require.NoError(t, err)
	assert.Equal(t, types.BoolValue(true), v)
}

func TestUndefinedNameFails(t *testing.T) {
	_, err := Eval("missing + 1", NullContext)
	var undef *UndefinedNameError
	assert.ErrorAs(t, err, &undef)
	assert.Equal(t, "missing", undef.Name)
}

func TestLogicalShortCircuitSkipsUndefinedRightSide(t *testing.T) {
	v, err := Eval("false && missing", NullContext)
	require.NoError(t, err)
	assert.Equal(t, types.BoolValue(false), v)

	v, err = Eval("true || missing", NullContext)
	require.NoError(t, err)
	assert.Equal(t, types.BoolValue(true), v)
}

func TestStringConcatenationAndComparison(t *testing.T) {
	v, err := Eval(`"foo" + "bar"`, NullContext)
	require.NoError(t, err)
	assert.Equal(t, types.StringValue("foobar"), v)

	v, err = Eval(`"abc" < "abd"`, NullContext)
	require.NoError(t, err)
	assert.Equal(t, types.BoolValue(true), v)
}

func TestUnaryNegationAndNot(t *testing.T) {
	v, err := Eval("-5 + 2", NullContext)
	require.NoError(t, err)
	assert.Equal(t, types.IntValue(-3), v)

	v, err = Eval("!(1 == 1)", NullContext)
	require.NoError(t, err)
	assert.Equal(t, types.BoolValue(false), v)
}

func TestDivisionByZeroIsAnError(t *testing.T) {
	_, err := Eval("1 / 0", NullContext)
	assert.Error(t, err)
}

func TestTypeMismatchOnComparisonAcrossIncompatibleKinds(t *testing.T) {
	_, err := Eval("1 < true", NullContext)
	var mismatch *TypeMismatchError
	assert.ErrorAs(t, err, &mismatch)
}

func TestEqualityAcrossDifferentKindsIsFalseNotError(t *testing.T) {
	v, err := Eval(`1 == "1"`, NullContext)
	require.NoError(t, err)
	assert.Equal(t, types.BoolValue(false), v)
}
