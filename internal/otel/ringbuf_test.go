package otel

import (
	"fmt"
	"sync"
	"testing"
)

func TestRingKeepsOrder(t *testing.T) {
	r := NewRingBuffer(4)
	for i := 1; i <= 3; i++ {
		r.Push(Event{Seq: uint64(i)})
	}
	evs := r.Snapshot()
	if len(evs) != 3 {
		t.Fatalf("len = %d, want 3", len(evs))
	}
	for i, e := range evs {
		if e.Seq != uint64(i+1) {
			t.Errorf("evs[%d].Seq = %d", i, e.Seq)
		}
	}
}

func TestRingWrapsAround(t *testing.T) {
	r := NewRingBuffer(3)
	for i := 1; i <= 5; i++ {
		r.Push(Event{Seq: uint64(i)})
	}
	if r.Len() != 3 || r.Cap() != 3 {
		t.Fatalf("Len=%d Cap=%d", r.Len(), r.Cap())
	}
	evs := r.Snapshot()
	for i, want := range []uint64{3, 4, 5} {
		if evs[i].Seq != want {
			t.Errorf("evs[%d].Seq = %d, want %d", i, evs[i].Seq, want)
		}
	}
}

func TestRingLast(t *testing.T) {
	r := NewRingBuffer(4)
	if r.Last(2) != nil {
		t.Error("Last on empty ring should be nil")
	}
	for i := 1; i <= 6; i++ {
		r.Push(Event{Seq: uint64(i)})
	}

	tests := []struct {
		n    int
		want []uint64
	}{
		{0, nil},
		{-1, nil},
		{1, []uint64{6}},
		{3, []uint64{4, 5, 6}},
		{10, []uint64{3, 4, 5, 6}},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.n), func(t *testing.T) {
			got := r.Last(tt.n)
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i].Seq != tt.want[i] {
					t.Errorf("got[%d].Seq = %d, want %d", i, got[i].Seq, tt.want[i])
				}
			}
		})
	}
}

func TestRingStatsAndPrefix(t *testing.T) {
	r := NewRingBuffer(8)
	r.Push(Event{Kind: KindSearchStart})
	r.Push(Event{Kind: KindSearchComplete})
	r.Push(Event{Kind: KindRecommendStart})
	r.Push(Event{Kind: KindSearchStart})

	stats := r.Stats()
	if stats[KindSearchStart] != 2 || stats[KindSearchComplete] != 1 || stats[KindRecommendStart] != 1 {
		t.Errorf("Stats() = %v", stats)
	}
	if got := r.WithPrefix("search."); len(got) != 3 {
		t.Errorf("WithPrefix(search.) returned %d events, want 3", len(got))
	}
	if got := r.WithPrefix("image."); got != nil {
		t.Errorf("WithPrefix(image.) = %v, want nil", got)
	}
}

func TestRingCopiesExtra(t *testing.T) {
	r := NewRingBuffer(2)
	extra := map[string]any{"breaker": "closed"}
	r.Push(Event{Kind: KindSearchComplete, Extra: extra})
	extra["breaker"] = "open"

	if got := r.Snapshot()[0].Extra["breaker"]; got != "closed" {
		t.Errorf("Extra aliased caller map: %v", got)
	}
}

func TestRingDefaultSize(t *testing.T) {
	if got := NewRingBuffer(0).Cap(); got != DefaultRingSize {
		t.Errorf("Cap() = %d, want %d", got, DefaultRingSize)
	}
}

func TestRingConcurrentUse(t *testing.T) {
	r := NewRingBuffer(64)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				r.Push(Event{Kind: KindKeyPress})
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = r.Last(5)
				_ = r.Stats()
			}
		}()
	}
	wg.Wait()
	if r.Len() != 64 {
		t.Errorf("Len() = %d, want 64", r.Len())
	}
}
