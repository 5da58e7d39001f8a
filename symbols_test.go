package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_symbolTable_intern(t *testing.T) {
	st := newSymbolTable()

	a1 := st.intern("a")
	b1 := st.intern("b")
	a2 := st.intern("a")

	assert.Equal(t, a1, a2, "same name must yield the same index")
	assert.NotEqual(t, a1, b1, "different names must yield different indices")

	id, ok := st.lookup("a")
	require.True(t, ok)
	assert.Equal(t, a1, id)

	_, ok = st.lookup("never-seen")
	assert.False(t, ok)

	assert.Equal(t, "a", st.name(a1))
	assert.Equal(t, "b", st.name(b1))
}

func Test_symbolTable_anonymous_distinct(t *testing.T) {
	st := newSymbolTable()

	named := st.intern("f")
	anon1 := st.anonymous()
	anon2 := st.anonymous()

	assert.NotEqual(t, named, anon1)
	assert.NotEqual(t, anon1, anon2)
	assert.Equal(t, "", st.name(anon1), "anonymous entries have no resolvable name")
}

func Test_symbolTable_unknown_index(t *testing.T) {
	st := newSymbolTable()
	assert.Equal(t, "", st.name(0), "index 0 is reserved for 'no symbol'")
	assert.Equal(t, "", st.name(999))
}
