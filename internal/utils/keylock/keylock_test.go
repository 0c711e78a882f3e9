package keylock

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyLock_SerializesSameKey(t *testing.T) {
	kl := New()
	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := kl.Lock("student-1")
			defer unlock()
			v := counter
			counter = v + 1
		}()
	}
	wg.Wait()
	assert.Equal(t, 100, counter)
	assert.Equal(t, 0, kl.size())
}

func TestKeyLock_LockAllOverlappingSets(t *testing.T) {
	kl := New()
	a, b, c := 0, 0, 0
	balances := map[string]*int{"a": &a, "b": &b, "c": &c}
	var wg sync.WaitGroup
	sets := [][]string{{"a", "b"}, {"b", "a"}, {"c", "a", "a"}, {"b", "c"}}
	for i := 0; i < 50; i++ {
		for _, set := range sets {
			wg.Add(1)
			go func(keys []string) {
				defer wg.Done()
				unlock := kl.LockAll(keys)
				defer unlock()
				for _, k := range keys {
					*balances[k]++
				}
			}(set)
		}
	}
	wg.Wait()
	assert.Equal(t, 200, a)
	assert.Equal(t, 150, b)
	assert.Equal(t, 100, c)
	assert.Equal(t, 0, kl.size())
}
