package otel

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"
)

func writeLog(t *testing.T, evs ...Event) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	l := New(&buf, Options{})
	for _, e := range evs {
		l.Emit(e)
	}
	l.Close()
	return &buf
}

func TestFilterMatch(t *testing.T) {
	ev := Event{Kind: KindSearchError, Level: LevelWarn, Comp: "catalog", Seq: 4}

	tests := []struct {
		name string
		f    Filter
		want bool
	}{
		{"zero", Filter{}, true},
		{"prefix", Filter{KindPrefix: "search"}, true},
		{"other prefix", Filter{KindPrefix: "recommend"}, false},
		{"min level below", Filter{MinLevel: LevelInfo}, true},
		{"min level above", Filter{MinLevel: LevelError}, false},
		{"comp", Filter{Comp: "ui"}, false},
		{"seq", Filter{Seq: 4}, true},
		{"other seq", Filter{Seq: 5}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.f.Match(ev); got != tt.want {
				t.Errorf("Match() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReadTail(t *testing.T) {
	buf := writeLog(t,
		Event{Kind: KindSearchStart, Seq: 1},
		Event{Kind: KindRecommendStart, Seq: 2},
		Event{Kind: KindSearchStart, Seq: 3},
		Event{Kind: KindSearchStart, Seq: 4},
	)
	buf.WriteString("not json\n\n")

	got, err := ReadTail(buf, 2, Filter{KindPrefix: "search"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Event.Seq != 3 || got[1].Event.Seq != 4 {
		t.Fatalf("ReadTail() = %+v", got)
	}
	if !strings.Contains(string(got[1].Raw), `"seq":4`) {
		t.Errorf("Raw = %s", got[1].Raw)
	}
}

func TestReadTailZero(t *testing.T) {
	got, err := ReadTail(writeLog(t, Event{Kind: KindStartup}), 0, Filter{})
	if err != nil || got != nil {
		t.Errorf("ReadTail(0) = %v, %v", got, err)
	}
}

// growingReader returns EOF until more data is appended.
type growingReader struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (g *growingReader) Read(p []byte) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.buf.Len() == 0 {
		return 0, io.EOF
	}
	return g.buf.Read(p)
}

func (g *growingReader) append(b []byte) {
	g.mu.Lock()
	g.buf.Write(b)
	g.mu.Unlock()
}

func TestFollowPicksUpNewLines(t *testing.T) {
	g := &growingReader{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan Line, 4)
	done := make(chan error, 1)
	go func() {
		done <- Follow(ctx, g, Filter{KindPrefix: "recommend"}, 5*time.Millisecond, func(l Line) { got <- l })
	}()

	g.append(writeLog(t, Event{Kind: KindSearchStart}, Event{Kind: KindRecommendComplete, Count: 8}).Bytes())

	select {
	case l := <-got:
		if l.Event.Kind != KindRecommendComplete || l.Event.Count != 8 {
			t.Errorf("Follow delivered %+v", l.Event)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Follow did not deliver the appended event")
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Follow() error = %v", err)
	}
}

func TestFormat(t *testing.T) {
	ev := Event{
		Time:      time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC),
		Level:     LevelError,
		Kind:      KindRecommendError,
		Comp:      "catalog",
		Seq:       9,
		Dur:       12500 * time.Microsecond,
		ProductID: "15970",
		Status:    502,
		Err:       "bad gateway",
	}
	got := Format(ev)
	for _, want := range []string{"15:04:05.000", "ERROR", "recommend.error", "#9", "(12.5ms)", "id=15970", "status=502", "err=bad gateway"} {
		if !strings.Contains(got, want) {
			t.Errorf("Format() = %q, missing %q", got, want)
		}
	}
}
