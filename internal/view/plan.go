// Package view derives a display plan from session state. Project is a pure
// function: it performs no I/O and keeps no state, so the TUI and the
// one-shot CLI commands render from the same plan.
package view

import (
	"fmt"

	"github.com/abelbrown/outfitter/internal/catalog"
	"github.com/abelbrown/outfitter/internal/session"
)

// DefaultFallbackImage is substituted for an image locator that failed to load.
const DefaultFallbackImage = "/fallback.jpg"

// Trigger labels.
const (
	TriggerIdleLabel = "Search"
	TriggerBusyLabel = "Searching..."
)

// Card is one renderable product.
type Card struct {
	ID          catalog.ProductID
	Rank        int // 1-based position; only set in the recommendations section
	DisplayName string
	Category    string
	Color       string
	Image       string // primary locator, or the fallback once it failed
	Fallback    bool   // Image is the fallback locator
	Details     []string
}

// Section is one of the two product lists.
type Section struct {
	Visible    bool
	Title      string
	Count      int
	CountLabel string
	Items      []Card
}

// Trigger is the search control.
type Trigger struct {
	Enabled bool
	Label   string
}

// Plan is everything the screen needs.
type Plan struct {
	Query           string
	Results         Section
	Recommendations Section
	Trigger         Trigger
	Selected        catalog.ProductID
}

// ImageStatus reports whether an image locator has failed to load. A nil
// ImageStatus means nothing has failed.
type ImageStatus interface {
	Failed(locator string) bool
}

// FailedImages is a set of locators known not to load.
type FailedImages map[string]bool

// Failed implements ImageStatus.
func (f FailedImages) Failed(locator string) bool {
	return f[locator]
}

// Options tune projection. The zero value uses DefaultFallbackImage.
type Options struct {
	FallbackImage string
}

// Project builds the display plan for a session snapshot.
func Project(snap session.Snapshot, images ImageStatus, opts Options) Plan {
	fallback := opts.FallbackImage
	if fallback == "" {
		fallback = DefaultFallbackImage
	}

	results := Section{
		Visible:    len(snap.Results) > 0,
		Title:      "Search Results",
		Count:      len(snap.Results),
		CountLabel: fmt.Sprintf("%d items found", len(snap.Results)),
		Items:      cards(snap.Results, images, fallback, false),
	}
	recs := Section{
		Visible:    len(snap.Recommendations) > 0,
		Title:      "Recommended For You",
		Count:      len(snap.Recommendations),
		CountLabel: fmt.Sprintf("%d suggestions", len(snap.Recommendations)),
		Items:      cards(snap.Recommendations, images, fallback, true),
	}

	trigger := Trigger{Enabled: true, Label: TriggerIdleLabel}
	if snap.Busy {
		trigger = Trigger{Enabled: false, Label: TriggerBusyLabel}
	}

	return Plan{
		Query:           snap.Query,
		Results:         results,
		Recommendations: recs,
		Trigger:         trigger,
		Selected:        snap.Selected,
	}
}

func cards(products []catalog.Product, images ImageStatus, fallback string, ranked bool) []Card {
	out := make([]Card, len(products))
	for i, p := range products {
		c := Card{
			ID:          p.ID,
			DisplayName: p.DisplayName,
			Category:    p.Category,
			Color:       p.Color,
			Image:       p.Image,
			Details:     p.Details(),
		}
		if ranked {
			c.Rank = i + 1
		}
		if images != nil && images.Failed(p.Image) {
			c.Image = fallback
			c.Fallback = true
		}
		out[i] = c
	}
	return out
}
