package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var epoch = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func TestClock_StartsAtStart(t *testing.T) {
	clock := NewClock(epoch, time.Second)
	assert.Equal(t, epoch, clock.Current())
}

func TestClock_NowAdvances(t *testing.T) {
	clock := NewClock(epoch, time.Second)

	assert.Equal(t, epoch.Add(time.Second), clock.Now())
	assert.Equal(t, epoch.Add(time.Second), clock.Current())

	assert.Equal(t, epoch.Add(2*time.Second), clock.Now())
	assert.Equal(t, epoch.Add(3*time.Second), clock.Now())
}

func TestClock_Reset(t *testing.T) {
	clock := NewClock(epoch, time.Minute)
	clock.Now()
	clock.Now()

	clock.Reset()
	assert.Equal(t, epoch, clock.Current())
	assert.Equal(t, epoch.Add(time.Minute), clock.Now())
}

func TestClock_ThreadSafe(t *testing.T) {
	clock := NewClock(epoch, time.Millisecond)
	const numGoroutines = 50
	const callsPerGoroutine = 100

	seen := make(chan time.Time, numGoroutines*callsPerGoroutine)
	var wg sync.WaitGroup
	for range numGoroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range callsPerGoroutine {
				seen <- clock.Now()
			}
		}()
	}
	wg.Wait()
	close(seen)

	unique := map[time.Time]bool{}
	for ts := range seen {
		unique[ts] = true
	}
	assert.Len(t, unique, numGoroutines*callsPerGoroutine)
	assert.Equal(t, epoch.Add(numGoroutines*callsPerGoroutine*time.Millisecond), clock.Current())
}
