package sequence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequencer_StartsAtOneAndIsGapless(t *testing.T) {
	s := New(0)
	assert.Equal(t, uint64(0), s.Current())

	for want := uint64(1); want <= 1000; want++ {
		assert.Equal(t, want, s.Next())
	}
	assert.Equal(t, uint64(1000), s.Current())
}

func TestSequencer_Reset(t *testing.T) {
	s := New(0)
	s.Next()
	s.Reset(41)

	assert.Equal(t, uint64(42), s.Next())
}
