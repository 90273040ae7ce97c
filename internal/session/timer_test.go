package session

import (
	"sync"
	"testing"
	"time"
)

func TestCountdown(t *testing.T) {
	t.Run("ticks down and expires once", func(t *testing.T) {
		var mu sync.Mutex
		var ticks []int
		expired := 0
		done := make(chan struct{})

		startCountdown(3, 2*time.Millisecond,
			func(remaining int) {
				mu.Lock()
				ticks = append(ticks, remaining)
				mu.Unlock()
			},
			func() {
				mu.Lock()
				expired++
				mu.Unlock()
				close(done)
			},
		)

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("countdown never expired")
		}
		time.Sleep(10 * time.Millisecond)

		mu.Lock()
		defer mu.Unlock()
		if expired != 1 {
			t.Errorf("expired %d times, want 1", expired)
		}
		want := []int{2, 1, 0}
		if len(ticks) != len(want) {
			t.Fatalf("ticks = %v, want %v", ticks, want)
		}
		for i := range want {
			if ticks[i] != want[i] {
				t.Fatalf("ticks = %v, want %v", ticks, want)
			}
		}
	})

	t.Run("stop prevents expiry", func(t *testing.T) {
		var mu sync.Mutex
		expired := false

		c := startCountdown(2, 5*time.Millisecond,
			func(int) {},
			func() {
				mu.Lock()
				expired = true
				mu.Unlock()
			},
		)
		c.Stop()

		time.Sleep(30 * time.Millisecond)
		mu.Lock()
		defer mu.Unlock()
		if expired {
			t.Error("countdown expired after Stop")
		}
	})

	t.Run("stop is idempotent", func(t *testing.T) {
		c := startCountdown(100, time.Millisecond, func(int) {}, func() {})
		c.Stop()
		c.Stop()
		c.Stop()
	})
}
