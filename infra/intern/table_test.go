package intern

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTable_FirstSeenOrder(t *testing.T) {
	tbl := NewTable()

	assert.Equal(t, uint32(0), tbl.ID("JPM"))
	assert.Equal(t, uint32(1), tbl.ID("IBM"))
	assert.Equal(t, uint32(0), tbl.ID("JPM"))

	name, ok := tbl.Name(1)
	assert.True(t, ok)
	assert.Equal(t, "IBM", name)

	_, ok = tbl.Name(7)
	assert.False(t, ok)

	_, ok = tbl.Lookup("MSFT")
	assert.False(t, ok)
	assert.Equal(t, 2, tbl.Len())
}

func TestTable_ConcurrentIDsAreStable(t *testing.T) {
	tbl := NewTable()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				tbl.ID(fmt.Sprintf("T%d", i))
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, tbl.Len())
	for i := 0; i < 100; i++ {
		name := fmt.Sprintf("T%d", i)
		id, ok := tbl.Lookup(name)
		assert.True(t, ok)
		got, _ := tbl.Name(id)
		assert.Equal(t, name, got)
	}
}
