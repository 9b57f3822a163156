package value

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueSealed(t *testing.T) {
	var _ Value = Null{}
	var _ Value = String("test")
	var _ Value = Int(42)
	var _ Value = Float(1.5)
	var _ Value = Bool(true)
	var _ Value = Array{String("a"), Int(1)}
	var _ Value = Object{"key": String("value")}
}

func TestObjectSortedKeys(t *testing.T) {
	obj := Object{
		"zebra":  String("z"),
		"apple":  String("a"),
		"banana": String("b"),
	}

	assert.Equal(t, []string{"apple", "banana", "zebra"}, obj.SortedKeys())
}

func TestObjectSortedKeysUTF16Order(t *testing.T) {
	// U+1F600 encodes as surrogates 0xD83D 0xDE00, which sort before U+FF61
	// in UTF-16 even though the UTF-8 bytes sort after.
	obj := Object{
		"\U0001F600": Int(1),
		"\uff61":     Int(2),
	}

	assert.Equal(t, []string{"\U0001F600", "\uff61"}, obj.SortedKeys())
}

func TestCloneIsDeep(t *testing.T) {
	orig := Object{
		"name": String("a"),
		"tags": Array{String("x"), Object{"n": Int(1)}},
	}

	cp := orig.Clone()
	cp["name"] = String("b")
	cp["tags"].(Array)[1].(Object)["n"] = Int(99)

	assert.Equal(t, String("a"), orig["name"])
	assert.Equal(t, Int(1), orig["tags"].(Array)[1].(Object)["n"])
}

func TestCloneNil(t *testing.T) {
	assert.Equal(t, Null{}, Clone(nil))
	assert.Nil(t, Object(nil).Clone())
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{"same string", String("a"), String("a"), true},
		{"different string", String("a"), String("b"), false},
		{"int vs float", Int(1), Float(1), false},
		{"nil equals null", nil, Null{}, true},
		{"nested object", Object{"a": Array{Int(1)}}, Object{"a": Array{Int(1)}}, true},
		{"object missing key", Object{"a": Int(1)}, Object{"b": Int(1)}, false},
		{"array length", Array{Int(1)}, Array{Int(1), Int(2)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Equal(tt.a, tt.b))
		})
	}
}

func TestUnmarshalNumbers(t *testing.T) {
	var obj Object
	require.NoError(t, json.Unmarshal([]byte(`{"id": 9007199254740993, "amount": 12.5, "exp": 1e3}`), &obj))

	assert.Equal(t, Int(9007199254740993), obj["id"])
	assert.Equal(t, Float(12.5), obj["amount"])
	assert.Equal(t, Float(1000), obj["exp"])
}

func TestUnmarshalNullAndNested(t *testing.T) {
	v, err := Unmarshal([]byte(` {"a": null, "b": [true, "x"]} `))
	require.NoError(t, err)

	obj := v.(Object)
	assert.Equal(t, Null{}, obj["a"])
	assert.Equal(t, Array{Bool(true), String("x")}, obj["b"])
}

func TestMarshalJSONSortsKeys(t *testing.T) {
	data, err := json.Marshal(Object{"b": Int(2), "a": Null{}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":null,"b":2}`, string(data))
	assert.Equal(t, `{"a":null,"b":2}`, string(data))
}

func TestFromAny(t *testing.T) {
	v, err := FromAny(map[string]any{
		"name":   "a",
		"count":  3,
		"ratio":  0.5,
		"nested": map[any]any{"ok": true},
		"list":   []any{nil, int64(7)},
	})
	require.NoError(t, err)

	assert.Equal(t, Object{
		"name":   String("a"),
		"count":  Int(3),
		"ratio":  Float(0.5),
		"nested": Object{"ok": Bool(true)},
		"list":   Array{Null{}, Int(7)},
	}, v)
}

func TestFromAnyRejectsUnsupported(t *testing.T) {
	_, err := FromAny(map[string]any{"ch": make(chan int)})
	assert.Error(t, err)

	_, err = FromAny(map[any]any{1: "x"})
	assert.Error(t, err)
}

func TestToAnyRoundTrip(t *testing.T) {
	obj := Object{"a": Int(1), "b": Array{String("x"), Null{}}, "c": Float(2.5)}

	back, err := FromAny(ToAny(obj))
	require.NoError(t, err)
	assert.True(t, Equal(obj, back))
}
