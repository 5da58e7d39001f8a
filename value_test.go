package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Value_equal(t *testing.T) {
	for _, tc := range []struct {
		name  string
		a, b  Value
		equal bool
	}{
		{"equal integers", Integer(5), Integer(5), true},
		{"unequal integers", Integer(5), Integer(6), false},
		{"equal booleans", Boolean(true), Boolean(true), true},
		{"unequal booleans", Boolean(true), Boolean(false), false},
		{"equal strings", String("ab"), String("ab"), true},
		{"unequal strings", String("ab"), String("ac"), false},
		{"equal tuples", Tuple(Integer(1), Integer(2)), Tuple(Integer(1), Integer(2)), true},
		{"unequal tuples", Tuple(Integer(1), Integer(2)), Tuple(Integer(1), Integer(3)), false},
		{"nested tuples", Tuple(Integer(1), Tuple(Integer(2), Integer(3))), Tuple(Integer(1), Tuple(Integer(2), Integer(3))), true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.equal, tc.a.equal(tc.b))
		})
	}
}

func Test_Value_text(t *testing.T) {
	for _, tc := range []struct {
		name string
		v    Value
		want string
	}{
		{"integer", Integer(42), "42"},
		{"negative integer", Integer(-7), "-7"},
		{"true", Boolean(true), "true"},
		{"false", Boolean(false), "false"},
		{"string", String("hello"), "hello"},
		{"tuple", Tuple(Integer(1), Integer(2)), "(1, 2)"},
		{"nested tuple", Tuple(Integer(1), Tuple(Integer(2), Integer(3))), "(1, (2, 3))"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.v.text())
		})
	}
}

func Test_Value_Func_closure_text(t *testing.T) {
	fn := &Function{}
	v := Closure(fn)
	require.True(t, v.IsClosure())
	assert.Equal(t, "<#closure>", v.text())
	assert.Same(t, fn, v.Func())
}

func Test_Value_tuple_accessors(t *testing.T) {
	v := Tuple(Integer(55), Integer(60))
	assert.Equal(t, Integer(55), v.First())
	assert.Equal(t, Integer(60), v.Second())
}

// Test_stringPool_concat_noTrample asserts that chained concatenation does
// not clobber an operand that itself came out of the pool (spec §5: "results
// are copied into a fresh pool slot so that chained concatenations do not
// trample their own operands").
func Test_stringPool_concat_noTrample(t *testing.T) {
	var sp stringPool
	a := sp.concat("a", "b")
	b := sp.concat(a, "c")
	c := sp.concat(b, "d")
	assert.Equal(t, "ab", a)
	assert.Equal(t, "abc", b)
	assert.Equal(t, "abcd", c)
}

func Test_stringPool_concat_wraps(t *testing.T) {
	var sp stringPool
	var results []string
	for i := 0; i < stringPoolSize*3; i++ {
		results = append(results, sp.concat("x", "y"))
	}
	for _, r := range results {
		assert.Equal(t, "xy", r)
	}
}
