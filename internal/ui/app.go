package ui

import (
	"errors"
	"fmt"

	"github.com/abelbrown/outfitter/internal/catalog"
	"github.com/abelbrown/outfitter/internal/otel"
	"github.com/abelbrown/outfitter/internal/session"
	"github.com/abelbrown/outfitter/internal/view"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// ObsConfig wires the event log into the UI. Both fields are optional.
type ObsConfig struct {
	Logger *otel.Logger
	Ring   *otel.RingBuffer
}

// AppConfig holds the command constructors and settings for App.
// App never talks to the catalog service itself: each constructor returns
// a tea.Cmd that performs the request and reports back with a message.
type AppConfig struct {
	Search     func(query string, t session.Ticket) tea.Cmd
	Recommend  func(id catalog.ProductID, t session.Ticket) tea.Cmd
	ProbeImage func(locator string) tea.Cmd // nil: images are never probed

	Ordering      session.Ordering
	FallbackImage string
	Obs           ObsConfig
}

type focus int

const (
	focusInput focus = iota
	focusList
)

// App is the root Bubble Tea model. The session it owns is the single
// source of truth; View projects it on every render.
type App struct {
	cfg  AppConfig
	sess *session.Session

	input   textinput.Model
	spinner spinner.Model
	spin    bool

	focus  focus
	cursor int

	images view.FailedImages
	probed map[string]bool

	err          error
	debugVisible bool

	width  int
	height int
	ready  bool
}

// NewApp creates an App with an idle session.
func NewApp(cfg AppConfig) App {
	ti := textinput.New()
	ti.Placeholder = "red shirt, denim jacket..."
	ti.Prompt = "> "
	ti.CharLimit = 256
	ti.Width = 40
	ti.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	return App{
		cfg:     cfg,
		sess:    session.New(cfg.Ordering),
		input:   ti,
		spinner: s,
		images:  view.FailedImages{},
		probed:  make(map[string]bool),
	}
}

// Init starts the cursor blink in the query input.
func (a App) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages and returns the updated model and any commands.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if otel.TraceEnabled() {
		a.emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindMsgReceived, Comp: "ui", Msg: fmt.Sprintf("%T", msg)})
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		a.input.Width = max(10, msg.Width-30)
		return a, nil

	case spinner.TickMsg:
		if !a.sess.Busy() {
			a.spin = false
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case SearchDone:
		return a.handleSearchDone(msg)

	case RecommendDone:
		return a.handleRecommendDone(msg)

	case ImageProbed:
		if msg.Err != nil {
			a.images[msg.Locator] = true
			a.emit(otel.Event{Level: otel.LevelWarn, Kind: otel.KindImageFallback, Comp: "ui", Msg: msg.Locator, Err: msg.Err.Error()})
		}
		return a, nil
	}

	return a, nil
}

func (a App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if otel.TraceEnabled() {
		a.emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindKeyPress, Comp: "ui", Msg: msg.String()})
	}
	if key.Matches(msg, keys.Quit) {
		return a, tea.Quit
	}

	a.err = nil

	if a.focus == focusList {
		return a.handleListKey(msg)
	}

	switch {
	case key.Matches(msg, keys.Submit):
		// Enter always submits, even while a request is outstanding.
		return a.submit()

	case key.Matches(msg, keys.Trigger):
		if a.sess.Busy() {
			return a, nil
		}
		return a.submit()

	case key.Matches(msg, keys.Focus):
		if len(a.sess.Results()) > 0 {
			a.focus = focusList
			a.input.Blur()
		}
		return a, nil
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	a.sess.SetQuery(a.input.Value())
	return a, cmd
}

func (a App) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	n := len(a.sess.Results())

	switch {
	case key.Matches(msg, keys.Leave):
		return a, tea.Quit

	case key.Matches(msg, keys.Debug):
		a.debugVisible = !a.debugVisible

	case key.Matches(msg, keys.Back):
		if a.debugVisible && msg.String() == "esc" {
			a.debugVisible = false
			return a, nil
		}
		a.focus = focusInput
		return a, a.input.Focus()

	case key.Matches(msg, keys.Down):
		if a.cursor < n-1 {
			a.cursor++
		}

	case key.Matches(msg, keys.Up):
		if a.cursor > 0 {
			a.cursor--
		}

	case key.Matches(msg, keys.Top):
		a.cursor = 0

	case key.Matches(msg, keys.Bottom):
		if n > 0 {
			a.cursor = n - 1
		}

	case key.Matches(msg, keys.Select):
		return a.selectCurrent()
	}
	return a, nil
}

// submit dispatches a search for the current query. Blank queries are ignored.
func (a App) submit() (tea.Model, tea.Cmd) {
	if a.cfg.Search == nil {
		return a, nil
	}
	t, ok := a.sess.SubmitSearch()
	if !ok {
		return a, nil
	}
	a.emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindSearchStart, Comp: "ui", Seq: t.Seq, Query: t.Subject})
	cmd := tea.Batch(a.cfg.Search(t.Subject, t), a.startSpinner())
	return a, cmd
}

// selectCurrent requests recommendations for the result under the cursor.
func (a App) selectCurrent() (tea.Model, tea.Cmd) {
	results := a.sess.Results()
	if a.cfg.Recommend == nil || a.cursor >= len(results) {
		return a, nil
	}
	id := results[a.cursor].ID
	t, ok := a.sess.SelectResult(id)
	if !ok {
		return a, nil
	}
	a.emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindRecommendStart, Comp: "ui", Seq: t.Seq, ProductID: t.Subject})
	cmd := tea.Batch(a.cfg.Recommend(id, t), a.startSpinner())
	return a, cmd
}

func (a *App) startSpinner() tea.Cmd {
	if a.spin {
		return nil
	}
	a.spin = true
	return a.spinner.Tick
}

func (a App) handleSearchDone(msg SearchDone) (tea.Model, tea.Cmd) {
	ev := otel.Event{Comp: "ui", Seq: msg.Ticket.Seq, Query: msg.Ticket.Subject, Dur: msg.Dur}

	if msg.Err != nil {
		if a.sess.Fail(msg.Ticket) == session.Failed {
			a.err = msg.Err
			a.emitFailure(ev, otel.KindSearchError, msg.Err)
		}
		return a.traced(msg, nil)
	}

	switch a.sess.ApplySearch(msg.Ticket, msg.Products) {
	case session.Applied:
		a.cursor = 0
		if len(msg.Products) == 0 && a.focus == focusList {
			a.focus = focusInput
			a.input.Focus()
		}
		ev.Level, ev.Kind, ev.Count = otel.LevelInfo, otel.KindSearchComplete, len(msg.Products)
		a.emit(ev)
		return a.traced(msg, a.probe(msg.Products))
	case session.Discarded:
		ev.Level, ev.Kind, ev.Count = otel.LevelDebug, otel.KindSearchDiscard, len(msg.Products)
		a.emit(ev)
	}
	return a.traced(msg, nil)
}

func (a App) handleRecommendDone(msg RecommendDone) (tea.Model, tea.Cmd) {
	ev := otel.Event{Comp: "ui", Seq: msg.Ticket.Seq, ProductID: msg.Ticket.Subject, Dur: msg.Dur}

	if msg.Err != nil {
		if a.sess.Fail(msg.Ticket) == session.Failed {
			a.err = msg.Err
			a.emitFailure(ev, otel.KindRecommendError, msg.Err)
		}
		return a.traced(msg, nil)
	}

	switch a.sess.ApplyRecommend(msg.Ticket, msg.Products) {
	case session.Applied:
		ev.Level, ev.Kind, ev.Count = otel.LevelInfo, otel.KindRecommendComplete, len(msg.Products)
		a.emit(ev)
		return a.traced(msg, a.probe(msg.Products))
	case session.Discarded:
		ev.Level, ev.Kind, ev.Count = otel.LevelDebug, otel.KindRecommendDiscard, len(msg.Products)
		a.emit(ev)
	}
	return a.traced(msg, nil)
}

// probe checks each image locator not seen before.
func (a App) probe(products []catalog.Product) tea.Cmd {
	if a.cfg.ProbeImage == nil {
		return nil
	}
	var cmds []tea.Cmd
	for _, p := range products {
		if a.probed[p.Image] {
			continue
		}
		a.probed[p.Image] = true
		cmds = append(cmds, a.cfg.ProbeImage(p.Image))
	}
	return tea.Batch(cmds...)
}

func (a App) emit(e otel.Event) {
	if a.cfg.Obs.Logger != nil {
		a.cfg.Obs.Logger.Emit(e)
	}
}

func (a App) emitFailure(ev otel.Event, kind otel.EventKind, err error) {
	ev.Level, ev.Kind, ev.Err = otel.LevelError, kind, err.Error()
	var te *catalog.TransportError
	if errors.As(err, &te) {
		ev.Status = te.Status
	}
	a.emit(ev)
}

func (a App) traced(msg tea.Msg, cmd tea.Cmd) (tea.Model, tea.Cmd) {
	if otel.TraceEnabled() {
		a.emit(otel.Event{
			Level: otel.LevelDebug,
			Kind:  otel.KindMsgHandled,
			Comp:  "ui",
			Msg:   fmt.Sprintf("%T busy=%v outstanding=%d", msg, a.sess.Busy(), a.sess.Outstanding()),
		})
	}
	return a, cmd
}

// Snapshot returns the current session state.
func (a App) Snapshot() session.Snapshot {
	return a.sess.Snapshot()
}

// Plan returns the display plan the next View renders.
func (a App) Plan() view.Plan {
	return a.project(a.sess.Snapshot())
}

func (a App) project(snap session.Snapshot) view.Plan {
	return view.Project(snap, a.images, view.Options{FallbackImage: a.cfg.FallbackImage})
}

// Cursor returns the result list cursor.
func (a App) Cursor() int {
	return a.cursor
}

// Err returns the error currently shown, if any.
func (a App) Err() error {
	return a.err
}
