package timeset

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSet(t *testing.T, ttl time.Duration, capacity int) (*Set, *clock.Mock) {
	t.Helper()
	clk := clock.NewMock()
	s, err := New(ttl, capacity, clk)
	require.NoError(t, err)
	return s, clk
}

func TestNew_InvalidTTL(t *testing.T) {
	_, err := New(0, 10, nil)
	assert.ErrorIs(t, err, ErrInvalidTTL)
}

func TestSet_PutIsAtMostOnceWithinWindow(t *testing.T) {
	s, clk := newTestSet(t, time.Minute, 16)

	assert.True(t, s.Put("m1"))
	assert.False(t, s.Put("m1"))

	clk.Add(59 * time.Second)
	assert.False(t, s.Put("m1"), "窗口从第一次出现开始计算")
	assert.True(t, s.Contains("m1"))

	clk.Add(2 * time.Second)
	assert.False(t, s.Contains("m1"))
	assert.True(t, s.Put("m1"), "过期后可以再次加入")
}

func TestSet_Prune(t *testing.T) {
	s, clk := newTestSet(t, 10*time.Second, 16)

	s.Put("a")
	s.Put("b")
	clk.Add(5 * time.Second)
	s.Put("c")

	clk.Add(6 * time.Second)
	assert.Equal(t, 2, s.Prune())
	assert.Equal(t, 1, s.Len())
	assert.True(t, s.Contains("c"))
}

func TestSet_CapacityEvictsOldest(t *testing.T) {
	s, _ := newTestSet(t, time.Hour, 2)

	s.Put("a")
	s.Put("b")
	s.Put("c")

	assert.False(t, s.Contains("a"))
	assert.True(t, s.Contains("b"))
	assert.True(t, s.Contains("c"))
}

func TestSet_RemoveAndClear(t *testing.T) {
	s, _ := newTestSet(t, time.Hour, 0)

	s.Put("a")
	s.Put("b")
	s.Remove("a")
	assert.False(t, s.Contains("a"))

	s.Clear()
	assert.Equal(t, 0, s.Len())
}

func TestSet_ConcurrentPut(t *testing.T) {
	s, _ := newTestSet(t, time.Hour, 1024)

	var wg sync.WaitGroup
	var mu sync.Mutex
	firsts := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if s.Put(fmt.Sprintf("msg-%d", j)) {
					mu.Lock()
					firsts++
					mu.Unlock()
				}
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, firsts)
}
