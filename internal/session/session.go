// Package session holds the interaction state of one browsing session:
// the query text, the current search results, the current recommendations,
// and the set of outstanding requests that drives the busy indicator.
//
// Session does no I/O. Callers dispatch a request through SubmitSearch or
// SelectResult, perform the network call themselves, and report the outcome
// with ApplySearch, ApplyRecommend, or Fail using the Ticket they were given.
//
// Busy is true exactly while at least one ticket is unresolved. Nothing
// prevents a second dispatch while busy; overlapping responses are ordered
// by the session's Ordering.
package session

import (
	"fmt"
	"strings"

	"github.com/abelbrown/outfitter/internal/catalog"
)

// Kind is the kind of request a ticket stands for.
type Kind int

const (
	KindSearch Kind = iota + 1
	KindRecommend
)

func (k Kind) String() string {
	switch k {
	case KindSearch:
		return "search"
	case KindRecommend:
		return "recommend"
	default:
		return "unknown"
	}
}

// Ordering decides which of several overlapping responses of the same kind
// ends up displayed.
type Ordering int

const (
	// OrderingLatest keeps the response to the most recently issued request
	// of each kind and drops responses to requests it superseded.
	OrderingLatest Ordering = iota
	// OrderingLastResponse applies every response as it arrives, so the
	// one that resolves last is what stays on screen.
	OrderingLastResponse
)

func (o Ordering) String() string {
	if o == OrderingLastResponse {
		return "last-response"
	}
	return "latest"
}

// ParseOrdering accepts "latest" or "last-response".
func ParseOrdering(s string) (Ordering, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "latest":
		return OrderingLatest, nil
	case "last-response", "last_response":
		return OrderingLastResponse, nil
	}
	return OrderingLatest, fmt.Errorf("session: unknown ordering %q", s)
}

// Ticket identifies one dispatched request. Subject is the query text for
// searches and the product id for recommendations.
type Ticket struct {
	Kind    Kind
	Seq     uint64
	Subject string
}

// Valid reports whether the ticket came from a dispatch.
func (t Ticket) Valid() bool {
	return t.Seq != 0
}

// Outcome reports what resolving a ticket did to the session.
type Outcome int

const (
	// Ignored: the ticket was unknown, already resolved, or of the wrong kind.
	Ignored Outcome = iota
	// Applied: the response replaced the displayed set.
	Applied
	// Discarded: the ticket was resolved but a newer request of the same
	// kind had been issued, so the response was dropped.
	Discarded
	// Failed: the ticket was resolved as a failure; nothing was replaced.
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Applied:
		return "applied"
	case Discarded:
		return "discarded"
	case Failed:
		return "failed"
	default:
		return "ignored"
	}
}

// Phase is a coarse view of what the session is waiting for.
type Phase int

const (
	Idle Phase = iota
	SearchInFlight
	RecommendInFlight
)

func (p Phase) String() string {
	switch p {
	case SearchInFlight:
		return "searching"
	case RecommendInFlight:
		return "recommending"
	default:
		return "idle"
	}
}

// Session is the interaction state machine. Not safe for concurrent use;
// it is owned by the UI event loop.
type Session struct {
	ordering Ordering

	query           string
	results         []catalog.Product
	recommendations []catalog.Product
	selected        catalog.ProductID

	seq     uint64
	pending map[uint64]Ticket
	latest  map[Kind]uint64
}

// New creates an idle session with empty result and recommendation sets.
func New(ordering Ordering) *Session {
	return &Session{
		ordering:        ordering,
		results:         []catalog.Product{},
		recommendations: []catalog.Product{},
		pending:         make(map[uint64]Ticket),
		latest:          make(map[Kind]uint64),
	}
}

// Ordering returns the response ordering policy.
func (s *Session) Ordering() Ordering {
	return s.ordering
}

// SetQuery records the user's query text. The session never changes it on
// its own.
func (s *Session) SetQuery(text string) {
	s.query = text
}

// Query returns the current query text.
func (s *Session) Query() string {
	return s.query
}

// SubmitSearch dispatches a search for the current query. It returns false,
// and changes nothing, when the query is blank after trimming. Being busy
// does not block a new search.
func (s *Session) SubmitSearch() (Ticket, bool) {
	if strings.TrimSpace(s.query) == "" {
		return Ticket{}, false
	}
	return s.dispatch(KindSearch, s.query), true
}

// SelectResult dispatches a recommendation request for a product in the
// current result set. Ids not in the result set are refused.
func (s *Session) SelectResult(id catalog.ProductID) (Ticket, bool) {
	if !catalog.Contains(s.results, id) {
		return Ticket{}, false
	}
	return s.dispatch(KindRecommend, id.String()), true
}

func (s *Session) dispatch(kind Kind, subject string) Ticket {
	s.seq++
	t := Ticket{Kind: kind, Seq: s.seq, Subject: subject}
	s.pending[t.Seq] = t
	s.latest[kind] = t.Seq
	return t
}

// resolve removes t from the pending set. It reports false for tickets that
// are not pending or whose kind does not match.
func (s *Session) resolve(t Ticket, kind Kind) bool {
	if !t.Valid() {
		return false
	}
	p, ok := s.pending[t.Seq]
	if !ok || p.Kind != kind || t.Kind != kind {
		return false
	}
	delete(s.pending, t.Seq)
	return true
}

func (s *Session) superseded(t Ticket) bool {
	return s.ordering == OrderingLatest && t.Seq < s.latest[t.Kind]
}

// ApplySearch resolves a search ticket with the service's answer. When
// applied, the result set is replaced and the recommendation set cleared.
func (s *Session) ApplySearch(t Ticket, products []catalog.Product) Outcome {
	if !s.resolve(t, KindSearch) {
		return Ignored
	}
	if s.superseded(t) {
		return Discarded
	}
	s.results = catalog.Clone(products)
	s.recommendations = []catalog.Product{}
	s.selected = ""
	return Applied
}

// ApplyRecommend resolves a recommend ticket with the service's answer.
// When applied, the recommendation set is replaced; results are untouched.
func (s *Session) ApplyRecommend(t Ticket, products []catalog.Product) Outcome {
	if !s.resolve(t, KindRecommend) {
		return Ignored
	}
	if s.superseded(t) {
		return Discarded
	}
	s.recommendations = catalog.Clone(products)
	s.selected = catalog.ProductID(t.Subject)
	return Applied
}

// Fail resolves a ticket whose request failed. Only the busy state changes.
func (s *Session) Fail(t Ticket) Outcome {
	if !s.resolve(t, t.Kind) {
		return Ignored
	}
	return Failed
}

// Busy reports whether any request is outstanding.
func (s *Session) Busy() bool {
	return len(s.pending) > 0
}

// Outstanding returns the number of unresolved tickets.
func (s *Session) Outstanding() int {
	return len(s.pending)
}

// Phase reports the kind of the most recently issued outstanding request.
func (s *Session) Phase() Phase {
	var newest Ticket
	for _, t := range s.pending {
		if t.Seq > newest.Seq {
			newest = t
		}
	}
	switch newest.Kind {
	case KindSearch:
		return SearchInFlight
	case KindRecommend:
		return RecommendInFlight
	default:
		return Idle
	}
}

// Results returns a copy of the current result set.
func (s *Session) Results() []catalog.Product {
	return catalog.Clone(s.results)
}

// Recommendations returns a copy of the current recommendation set.
func (s *Session) Recommendations() []catalog.Product {
	return catalog.Clone(s.recommendations)
}

// Selected returns the product the current recommendations were fetched
// for, or "" when there are none.
func (s *Session) Selected() catalog.ProductID {
	return s.selected
}

// Snapshot is a point-in-time copy of the session state.
type Snapshot struct {
	Query           string
	Results         []catalog.Product
	Recommendations []catalog.Product
	Selected        catalog.ProductID
	Busy            bool
	Phase           Phase
}

// Snapshot copies the current state.
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		Query:           s.query,
		Results:         s.Results(),
		Recommendations: s.Recommendations(),
		Selected:        s.selected,
		Busy:            s.Busy(),
		Phase:           s.Phase(),
	}
}
