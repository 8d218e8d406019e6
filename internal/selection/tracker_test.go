package selection

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func TestBegin_SupersedesEarlierToken(t *testing.T) {
	tr := New()

	first, err := tr.Begin("main")
	if err != nil {
		t.Fatal(err)
	}
	if !tr.Current("main", first) {
		t.Fatal("first token should be current")
	}

	second, err := tr.Begin("main")
	if err != nil {
		t.Fatal(err)
	}
	if first == second {
		t.Fatal("tokens must differ")
	}
	if tr.Current("main", first) {
		t.Error("first token should be superseded")
	}
	if err := tr.Check("main", first); !errors.Is(err, ErrSuperseded) {
		t.Errorf("Check(first) = %v, want ErrSuperseded", err)
	}
	if err := tr.Check("main", second); err != nil {
		t.Errorf("Check(second) = %v", err)
	}
}

func TestWidgetsAreIndependent(t *testing.T) {
	tr := New()
	a, _ := tr.Begin("a")
	b, _ := tr.Begin("b")
	if _, err := tr.Begin("b"); err != nil {
		t.Fatal(err)
	}
	if !tr.Current("a", a) {
		t.Error("widget a superseded by widget b")
	}
	if tr.Current("b", b) {
		t.Error("widget b's first token should be stale")
	}
	if tr.Current("c", a) {
		t.Error("unknown widget must not be current")
	}
}

func TestWidgets(t *testing.T) {
	tr := New()
	now := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	tr.now = func() time.Time { return now }

	tr.Begin("old")
	now = now.Add(time.Minute)
	tr.Begin("new")
	tr.Begin("new")

	ws := tr.Widgets()
	if len(ws) != 2 || ws[0].Widget != "new" || ws[0].Requests != 2 {
		t.Fatalf("Widgets = %+v", ws)
	}
	if ws[1].IdleSecs != 60 {
		t.Errorf("old idle = %v, want 60", ws[1].IdleSecs)
	}
}

func TestSweep(t *testing.T) {
	tr := New()
	now := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	tr.now = func() time.Time { return now }

	tr.Begin("idle")
	now = now.Add(20 * time.Minute)
	tr.Begin("busy")
	now = now.Add(15 * time.Minute)

	if n := tr.sweep(30 * time.Minute); n != 1 {
		t.Fatalf("evicted %d, want 1", n)
	}
	if ws := tr.Widgets(); len(ws) != 1 || ws[0].Widget != "busy" {
		t.Errorf("after sweep: %+v", ws)
	}
}

func TestCheck_EvictedWidgetStaysCurrent(t *testing.T) {
	tr := New()
	now := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	tr.now = func() time.Time { return now }

	token, err := tr.Begin("slow")
	if err != nil {
		t.Fatal(err)
	}
	now = now.Add(time.Hour)
	if n := tr.sweep(30 * time.Minute); n != 1 {
		t.Fatalf("evicted %d, want 1", n)
	}
	if err := tr.Check("slow", token); err != nil {
		t.Errorf("Check after eviction = %v, want nil", err)
	}

	// A new request after eviction still supersedes the old token.
	if _, err := tr.Begin("slow"); err != nil {
		t.Fatal(err)
	}
	if err := tr.Check("slow", token); !errors.Is(err, ErrSuperseded) {
		t.Errorf("Check(old) = %v, want ErrSuperseded", err)
	}
}

func TestCheck_RefreshesLastSeen(t *testing.T) {
	tr := New()
	now := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	tr.now = func() time.Time { return now }

	token, _ := tr.Begin("w")
	now = now.Add(25 * time.Minute)
	if err := tr.Check("w", token); err != nil {
		t.Fatal(err)
	}
	now = now.Add(10 * time.Minute)
	if n := tr.sweep(30 * time.Minute); n != 0 {
		t.Errorf("evicted %d, want 0 after a recent check", n)
	}
}

func TestReaperStartStop(t *testing.T) {
	tr := New()
	tr.StartReaper(ReaperConfig{SweepInterval: 10 * time.Millisecond, EvictAfter: time.Hour})
	time.Sleep(30 * time.Millisecond)
	tr.Stop()
	tr.Stop()
}

func TestConcurrentBegin(t *testing.T) {
	tr := New()
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := tr.Begin("w"); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()
	if ws := tr.Widgets(); len(ws) != 1 || ws[0].Requests != 50 {
		t.Errorf("Widgets = %+v", ws)
	}
}
