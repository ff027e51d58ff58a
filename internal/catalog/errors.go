package catalog

import (
	"errors"
	"fmt"
)

// ErrEmptyQuery is returned by Search when the text is blank after trimming.
// No request is made.
var ErrEmptyQuery = errors.New("catalog: empty search query")

// TransportError is the single failure kind the client reports: network
// failure, non-success status, open circuit, timeout, or a body that does not
// decode into valid product records.
type TransportError struct {
	Op     string // "search" or "recommend"
	URL    string
	Status int // HTTP status, 0 when no response was received
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("catalog: %s %s: status %d: %v", e.Op, e.URL, e.Status, e.Err)
	}
	return fmt.Sprintf("catalog: %s %s: %v", e.Op, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransport reports whether err is, or wraps, a *TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
