package otel

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
)

const defaultQueueSize = 4096

// Options configure a Logger. The zero value is usable.
type Options struct {
	// Ring receives every event accepted by Emit, whether or not the file
	// queue had room for it.
	Ring *RingBuffer
	// QueueSize bounds events waiting to be written. Default 4096.
	QueueSize int
}

// Logger appends events to a JSONL sink from a single writer goroutine.
// Emit never blocks the caller; events that do not fit in the queue are
// counted in Dropped and still reach the ring.
type Logger struct {
	sessionID string
	ring      *RingBuffer
	out       *bufio.Writer
	file      io.Closer

	mu     sync.RWMutex
	closed bool
	queue  chan Event

	dropped  atomic.Uint64
	writeErr error // owned by the writer goroutine until done is closed
	done     chan struct{}
}

// New starts a Logger writing to w. The caller keeps ownership of w.
func New(w io.Writer, opts Options) *Logger {
	size := opts.QueueSize
	if size <= 0 {
		size = defaultQueueSize
	}
	l := &Logger{
		sessionID: uuid.NewString(),
		ring:      opts.Ring,
		out:       bufio.NewWriter(w),
		queue:     make(chan Event, size),
		done:      make(chan struct{}),
	}
	go l.run()
	return l
}

// Open appends to the log file at path, creating it and its directory as
// needed. Close also closes the file.
func Open(path string, opts Options) (*Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create event log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open event log: %w", err)
	}
	l := New(f, opts)
	l.file = f
	return l, nil
}

// Discard returns a Logger with no file behind it. Events still reach
// opts.Ring.
func Discard(opts Options) *Logger {
	return New(io.Discard, opts)
}

func (l *Logger) run() {
	defer close(l.done)
	for e := range l.queue {
		l.write(e)
		// Flush once the burst is written.
		if len(l.queue) == 0 {
			l.flush()
		}
	}
	l.flush()
}

func (l *Logger) write(e Event) {
	line, err := json.Marshal(e)
	if err != nil {
		l.dropped.Add(1)
		return
	}
	if _, err := l.out.Write(append(line, '\n')); err != nil {
		l.dropped.Add(1)
		l.fail(err)
	}
}

func (l *Logger) flush() {
	if err := l.out.Flush(); err != nil {
		l.fail(err)
	}
}

func (l *Logger) fail(err error) {
	if l.writeErr == nil {
		l.writeErr = err
	}
}

// Emit stamps e with the time (if unset) and the session id, mirrors it into
// the ring and queues it for the file.
func (l *Logger) Emit(e Event) {
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	e.SessionID = l.sessionID
	e.Extra = maps.Clone(e.Extra)

	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		l.dropped.Add(1)
		return
	}
	if l.ring != nil {
		l.ring.Push(e)
	}
	select {
	case l.queue <- e:
	default:
		l.dropped.Add(1)
	}
}

// Info emits an info event.
func (l *Logger) Info(kind EventKind, comp, msg string) {
	l.Emit(Event{Level: LevelInfo, Kind: kind, Comp: comp, Msg: msg})
}

// Error emits an error event. A nil err is recorded as "".
func (l *Logger) Error(kind EventKind, comp string, err error) {
	e := Event{Level: LevelError, Kind: kind, Comp: comp}
	if err != nil {
		e.Err = err.Error()
	}
	l.Emit(e)
}

// SessionID identifies this run in every event.
func (l *Logger) SessionID() string {
	return l.sessionID
}

// Dropped returns how many events did not make it to the file.
func (l *Logger) Dropped() uint64 {
	return l.dropped.Load()
}

// Close writes out the queue and stops the writer. It returns the first
// write error, if any. Later calls return nil.
func (l *Logger) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	close(l.queue)
	l.mu.Unlock()

	<-l.done
	err := l.writeErr
	if l.file != nil {
		err = errors.Join(err, l.file.Close())
	}
	if err != nil {
		return fmt.Errorf("event log: %w", err)
	}
	return nil
}
