package value

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonicalSortsAndCompacts(t *testing.T) {
	got, err := MarshalCanonical(Object{
		"z": Int(1),
		"a": Array{Bool(true), Null{}},
		"m": Object{"y": String("<&>"), "b": Float(2)},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"a":[true,null],"m":{"b":2,"y":"<&>"},"z":1}`, string(got))
}

func TestMarshalCanonicalFloats(t *testing.T) {
	tests := []struct {
		in   Float
		want string
	}{
		{0, "0"},
		{1.5, "1.5"},
		{-3, "-3"},
		{1e21, "1e+21"},
		{0.000001, "1e-06"},
	}

	for _, tt := range tests {
		got, err := MarshalCanonical(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, string(got))
	}
}

func TestMarshalCanonicalRejectsNonFinite(t *testing.T) {
	_, err := MarshalCanonical(Object{"x": Float(math.NaN())})
	assert.Error(t, err)

	_, err = MarshalCanonical(Float(math.Inf(1)))
	assert.Error(t, err)
}

func TestMarshalCanonicalNFC(t *testing.T) {
	// "e" + combining acute accent normalizes to the precomposed form.
	decomposed, err := MarshalCanonical(String("e\u0301"))
	require.NoError(t, err)
	composed, err := MarshalCanonical(String("\u00e9"))
	require.NoError(t, err)

	assert.Equal(t, composed, decomposed)
}

func TestMarshalCanonicalLineSeparators(t *testing.T) {
	got, err := MarshalCanonical(String("a\u2028b"))
	require.NoError(t, err)
	assert.Equal(t, "\"a\u2028b\"", string(got))

	// An escaped backslash followed by the text u2028 stays escaped.
	got, err = MarshalCanonical(String(`a\u2028b`))
	require.NoError(t, err)
	assert.Equal(t, `"a\\u2028b"`, string(got))
}

func TestFingerprintStable(t *testing.T) {
	a, err := RowFingerprint(Object{"name": String("a"), "n": Int(1)})
	require.NoError(t, err)
	b, err := RowFingerprint(Object{"n": Int(1), "name": String("a")})
	require.NoError(t, err)
	c, err := RowFingerprint(Object{"n": Int(2), "name": String("a")})
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}

func TestFingerprintDomainSeparation(t *testing.T) {
	obj := Object{"a": Int(1)}
	row, err := Fingerprint(DomainRow, obj)
	require.NoError(t, err)
	other, err := Fingerprint("wgrid/other/v1", obj)
	require.NoError(t, err)

	assert.NotEqual(t, row, other)
}

func TestRowFingerprintNilEqualsEmpty(t *testing.T) {
	a, err := RowFingerprint(nil)
	require.NoError(t, err)
	b, err := RowFingerprint(Object{})
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
