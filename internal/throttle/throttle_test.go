package throttle

import (
	"sync"
	"testing"
	"time"
)

func newTestLimiter(t *testing.T) (*Limiter, *time.Time) {
	t.Helper()

	current := time.Now()
	l := New(Config{
		MaxAttempts:   5,
		Window:        10 * time.Minute,
		SweepInterval: time.Hour,
	}, func() time.Time { return current })
	t.Cleanup(l.Close)

	return l, &current
}

func TestSixthAttemptWithinWindowDenied(t *testing.T) {
	l, _ := newTestLimiter(t)

	for i := 0; i < 5; i++ {
		if !l.Allow("10.0.0.1") {
			t.Fatalf("attempt %d should be allowed", i+1)
		}
	}
	if l.Allow("10.0.0.1") {
		t.Fatal("sixth attempt within window should be denied")
	}
}

func TestWindowElapseResetsCounter(t *testing.T) {
	l, clock := newTestLimiter(t)

	for i := 0; i < 6; i++ {
		l.Allow("10.0.0.1")
	}

	*clock = clock.Add(10 * time.Minute)
	if !l.Allow("10.0.0.1") {
		t.Fatal("attempt after elapsed window should be allowed")
	}
	// The reset attempt counts as the first of a fresh window.
	for i := 0; i < 4; i++ {
		if !l.Allow("10.0.0.1") {
			t.Fatalf("attempt %d of fresh window should be allowed", i+2)
		}
	}
	if l.Allow("10.0.0.1") {
		t.Fatal("budget of the fresh window should be exhausted")
	}
}

func TestKeysAreIndependent(t *testing.T) {
	l, _ := newTestLimiter(t)

	for i := 0; i < 6; i++ {
		l.Allow("10.0.0.1")
	}
	if !l.Allow("10.0.0.2") {
		t.Fatal("different address must have its own budget")
	}
}

func TestConcurrentAttemptsDoNotUndercount(t *testing.T) {
	l, _ := newTestLimiter(t)

	const attempts = 50
	results := make(chan bool, attempts)

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- l.Allow("10.0.0.1")
		}()
	}
	wg.Wait()
	close(results)

	allowed := 0
	for ok := range results {
		if ok {
			allowed++
		}
	}
	if allowed != 5 {
		t.Fatalf("expected exactly 5 allowed attempts, got %d", allowed)
	}
}

func TestEvictionBoundsMap(t *testing.T) {
	current := time.Now()
	l := New(Config{
		MaxAttempts:   5,
		Window:        10 * time.Minute,
		SweepInterval: time.Hour,
		MaxEntries:    8,
	}, func() time.Time { return current })
	defer l.Close()

	for i := 0; i < 8; i++ {
		l.Allow(string(rune('a' + i)))
	}
	if l.Len() != 8 {
		t.Fatalf("expected 8 tracked keys, got %d", l.Len())
	}

	// All existing windows elapse; the next insert over the cap sweeps them.
	current = current.Add(10 * time.Minute)
	l.Allow("fresh")
	if l.Len() != 1 {
		t.Fatalf("expected elapsed windows evicted, got %d keys", l.Len())
	}
}

func TestSweepLoopEvicts(t *testing.T) {
	var mu sync.Mutex
	current := time.Now()
	l := New(Config{
		MaxAttempts:   5,
		Window:        time.Millisecond,
		SweepInterval: 5 * time.Millisecond,
	}, func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return current
	})
	defer l.Close()

	l.Allow("10.0.0.1")

	mu.Lock()
	current = current.Add(time.Minute)
	mu.Unlock()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if l.Len() == 0 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("sweep loop did not evict elapsed window")
}
