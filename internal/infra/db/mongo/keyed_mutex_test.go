package mongo

import (
	"sync"
	"testing"
)

func TestKeyedMutexSerializesPerKey(t *testing.T) {
	km := newKeyedMutex()
	const workers = 16
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			km.Lock("listing-1")
			counter++
			km.Unlock("listing-1")
		}()
	}
	wg.Wait()

	if counter != workers {
		t.Errorf("counter = %d, want %d", counter, workers)
	}
}

func TestKeyedMutexPrunesReleasedEntries(t *testing.T) {
	km := newKeyedMutex()

	var wg sync.WaitGroup
	keys := []string{"a", "b", "c", "a", "b", "a"}
	for _, key := range keys {
		wg.Add(1)
		go func(key string) {
			defer wg.Done()
			km.Lock(key)
			km.Unlock(key)
		}(key)
	}
	wg.Wait()

	if n := km.size(); n != 0 {
		t.Errorf("entries after release = %d, want 0", n)
	}
}

func TestKeyedMutexIndependentKeysDoNotBlock(t *testing.T) {
	km := newKeyedMutex()
	km.Lock("held")
	defer km.Unlock("held")

	done := make(chan struct{})
	go func() {
		km.Lock("other")
		km.Unlock("other")
		close(done)
	}()
	<-done

	if n := km.size(); n != 1 {
		t.Errorf("entries while one key held = %d, want 1", n)
	}
}
