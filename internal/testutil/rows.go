package testutil

import (
	"fmt"

	"github.com/roach88/wgrid/internal/value"
)

// Obj builds a row from alternating names and Go values.
// Panics on an odd argument count or a value value.FromAny rejects.
//
//	testutil.Obj("name", "a", "qty", 3)
func Obj(kv ...any) value.Object {
	if len(kv)%2 != 0 {
		panic("testutil.Obj: odd argument count")
	}
	obj := make(value.Object, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		name, ok := kv[i].(string)
		if !ok {
			panic(fmt.Sprintf("testutil.Obj: name at %d is %T", i, kv[i]))
		}
		v, err := value.FromAny(kv[i+1])
		if err != nil {
			panic(fmt.Sprintf("testutil.Obj: %s: %v", name, err))
		}
		obj[name] = v
	}
	return obj
}

// Named returns one row per name, each with a single "name" field.
func Named(names ...string) []value.Object {
	rows := make([]value.Object, len(names))
	for i, n := range names {
		rows[i] = value.Object{"name": value.String(n)}
	}
	return rows
}
