package otel

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

// Filter selects events when reading a log back. Zero fields match anything.
type Filter struct {
	KindPrefix string
	MinLevel   Level
	Comp       string
	Seq        uint64
}

// Match reports whether e passes the filter.
func (f Filter) Match(e Event) bool {
	if f.KindPrefix != "" && !strings.HasPrefix(string(e.Kind), f.KindPrefix) {
		return false
	}
	if f.MinLevel != "" && e.Level.rank() < f.MinLevel.rank() {
		return false
	}
	if f.Comp != "" && e.Comp != f.Comp {
		return false
	}
	if f.Seq != 0 && e.Seq != f.Seq {
		return false
	}
	return true
}

// Line is a decoded event with the raw line it came from.
type Line struct {
	Event Event
	Raw   []byte
}

// maxLine bounds a single log line; events with large Extra maps fit.
const maxLine = 256 * 1024

// ReadTail returns the last n matching events in r. Lines that do not
// decode are skipped.
func ReadTail(r io.Reader, n int, f Filter) ([]Line, error) {
	if n <= 0 {
		return nil, nil
	}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)

	tail := make([]Line, 0, n)
	for sc.Scan() {
		l, ok := decodeLine(sc.Bytes(), f)
		if !ok {
			continue
		}
		if len(tail) == n {
			copy(tail, tail[1:])
			tail = tail[:n-1]
		}
		tail = append(tail, l)
	}
	return tail, sc.Err()
}

// Follow keeps reading r after EOF, polling every interval, and calls fn for
// each new matching event until ctx is done.
func Follow(ctx context.Context, r io.Reader, f Filter, interval time.Duration, fn func(Line)) error {
	br := bufio.NewReader(r)
	var pending []byte
	for {
		chunk, err := br.ReadBytes('\n')
		pending = append(pending, chunk...)
		if err == nil {
			if l, ok := decodeLine(pending, f); ok {
				fn(l)
			}
			pending = pending[:0]
			continue
		}
		if err != io.EOF {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(interval):
		}
	}
}

func decodeLine(raw []byte, f Filter) (Line, bool) {
	raw = []byte(strings.TrimRight(string(raw), "\r\n"))
	if len(raw) == 0 {
		return Line{}, false
	}
	var e Event
	if json.Unmarshal(raw, &e) != nil || !f.Match(e) {
		return Line{}, false
	}
	return Line{Event: e, Raw: raw}, true
}

// Format renders an event as one human-readable line.
func Format(e Event) string {
	lvl := strings.ToUpper(string(e.Level))
	if lvl == "" {
		lvl = "?"
	}
	parts := []string{fmt.Sprintf("%s %-5s [%-7s] %-20s", e.Time.Format("15:04:05.000"), lvl, e.Comp, e.Kind)}

	if e.Seq != 0 {
		parts = append(parts, fmt.Sprintf("#%d", e.Seq))
	}
	if e.Msg != "" {
		parts = append(parts, "- "+e.Msg)
	}
	if ms := e.DurMs; ms > 0 || e.Dur > 0 {
		if ms == 0 {
			ms = float64(e.Dur) / float64(time.Millisecond)
		}
		parts = append(parts, fmt.Sprintf("(%.*fms)", durPrecision(ms), ms))
	}
	if e.Count > 0 {
		parts = append(parts, fmt.Sprintf("n=%d", e.Count))
	}
	if e.Query != "" {
		parts = append(parts, fmt.Sprintf("q=%q", e.Query))
	}
	if e.ProductID != "" {
		parts = append(parts, "id="+e.ProductID)
	}
	if e.Status != 0 {
		parts = append(parts, fmt.Sprintf("status=%d", e.Status))
	}
	if e.Err != "" {
		parts = append(parts, "err="+e.Err)
	}
	return strings.Join(parts, " ")
}

func durPrecision(ms float64) int {
	switch {
	case ms >= 100:
		return 0
	case ms >= 1:
		return 1
	default:
		return 2
	}
}
