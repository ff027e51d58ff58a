// Package ui provides the Bubble Tea TUI for outfitter.
package ui

import (
	"time"

	"github.com/abelbrown/outfitter/internal/catalog"
	"github.com/abelbrown/outfitter/internal/session"
)

// SearchDone is sent when a search request finishes.
type SearchDone struct {
	Ticket   session.Ticket
	Products []catalog.Product
	Dur      time.Duration
	Err      error
}

// RecommendDone is sent when a recommendation request finishes.
type RecommendDone struct {
	Ticket   session.Ticket
	Products []catalog.Product
	Dur      time.Duration
	Err      error
}

// ImageProbed is sent when an image locator has been checked. A non-nil
// Err means the image does not load and the fallback is shown instead.
type ImageProbed struct {
	Locator string
	Err     error
}
