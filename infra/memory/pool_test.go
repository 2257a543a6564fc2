package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type slot struct{ v int }

func TestPool_Limit(t *testing.T) {
	p := NewPool(2, func() *slot { return &slot{} })

	a, ok := p.Get()
	require.True(t, ok)
	_, ok = p.Get()
	require.True(t, ok)

	assert.True(t, p.Full())
	_, ok = p.Get()
	assert.False(t, ok, "third Get must fail at limit 2")

	p.Put(a)
	assert.False(t, p.Full())
	assert.Equal(t, 1, p.Live())

	_, ok = p.Get()
	assert.True(t, ok)
}

func TestPool_Unbounded(t *testing.T) {
	p := NewPool(0, func() *slot { return &slot{} })
	for i := 0; i < 10_000; i++ {
		_, ok := p.Get()
		require.True(t, ok)
	}
	assert.Equal(t, 10_000, p.Live())
	assert.False(t, p.Full())
}

func TestPool_PutWithoutGetPanics(t *testing.T) {
	p := NewPool(1, func() *slot { return &slot{} })
	assert.Panics(t, func() { p.Put(&slot{}) })
}
