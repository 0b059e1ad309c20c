package reactive_test

import (
	"sync"
	"testing"

	"github.com/boddenberg/crm-desk-go/internal/infra/reactive"
)

func TestSignal_GetSet(t *testing.T) {
	s := reactive.NewSignal(1)

	if got := s.Get(); got != 1 {
		t.Fatalf("expected 1, got %d", got)
	}

	s.Set(42)
	if got := s.Get(); got != 42 {
		t.Fatalf("expected 42, got %d", got)
	}
}

func TestSignal_Update(t *testing.T) {
	s := reactive.NewSignal([]string{"a"})

	s.Update(func(v []string) []string {
		return append(v, "b")
	})

	got := s.Get()
	if len(got) != 2 || got[1] != "b" {
		t.Errorf("expected [a b], got %v", got)
	}
}

func TestSignal_SubscribeNotifiesOnEverySet(t *testing.T) {
	s := reactive.NewSignal(0)

	var seen []int
	unsub := s.Subscribe(func(v int) {
		seen = append(seen, v)
	})

	s.Set(1)
	s.Set(2)
	unsub()
	s.Set(3)

	if len(seen) != 2 || seen[0] != 1 || seen[1] != 2 {
		t.Errorf("expected notifications [1 2], got %v", seen)
	}
}

func TestSignal_MultipleSubscribers(t *testing.T) {
	s := reactive.NewSignal("")

	var a, b string
	s.Subscribe(func(v string) { a = v })
	s.Subscribe(func(v string) { b = v })

	s.Set("x")
	if a != "x" || b != "x" {
		t.Errorf("expected both subscribers notified, got %q and %q", a, b)
	}
}

func TestSignal_ConcurrentAccess(t *testing.T) {
	s := reactive.NewSignal(0)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			s.Set(n)
		}(i)
		go func() {
			defer wg.Done()
			_ = s.Get()
		}()
	}
	wg.Wait()
}
