package ui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/cinescope/internal/otel"
	"github.com/abelbrown/cinescope/internal/query"
	"github.com/abelbrown/cinescope/internal/tmdb"
	"github.com/abelbrown/cinescope/internal/trending"
)

// AppConfig holds the command constructors the App runs. The App never
// touches the network or the store directly; it only builds commands and
// applies the messages they return.
type AppConfig struct {
	// FetchMovies returns a Cmd that resolves to MoviesFetched for term,
	// stamped with seq.
	FetchMovies func(seq uint64, term string) tea.Cmd
	// RecordSearch returns a Cmd that resolves to SearchRecorded.
	RecordSearch func(term string, exemplar tmdb.Movie) tea.Cmd
	// LoadTrending returns a Cmd that resolves to TrendingLoaded.
	LoadTrending func() tea.Cmd

	Debounce time.Duration    // defaults to query.DefaultDebounce
	Ring     *otel.RingBuffer // debug overlay source; may be nil
	Events   *otel.Logger     // may be nil
}

// App is the root Bubble Tea model.
type App struct {
	cfg     AppConfig
	keys    keyMap
	help    help.Model
	input   textinput.Model
	spinner spinner.Model

	query    query.State
	trending []trending.Entry
	cursor   int

	modal bool
	debug bool

	width  int
	height int
	ready  bool
}

// NewApp creates the App. The initial discovery fetch is started by Init.
func NewApp(cfg AppConfig) App {
	if cfg.Debounce <= 0 {
		cfg.Debounce = query.DefaultDebounce
	}

	ti := textinput.New()
	ti.Placeholder = "Search for movies, genres, actors..."
	ti.Prompt = "⌕ "
	ti.PromptStyle = lipgloss.NewStyle().Foreground(colorHighlight).Bold(true)
	ti.TextStyle = lipgloss.NewStyle().Foreground(colorText)
	ti.CharLimit = 100
	ti.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(colorHighlight)

	a := App{
		cfg:     cfg,
		keys:    defaultKeyMap(),
		help:    help.New(),
		input:   ti,
		spinner: s,
	}
	a.query.Begin("")
	return a
}

// Init starts discovery, the trending read, the cursor blink and the spinner.
func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, a.spinner.Tick}
	if a.cfg.FetchMovies != nil {
		cmds = append(cmds, a.cfg.FetchMovies(a.query.Seq, a.query.Debounced))
	}
	if a.cfg.LoadTrending != nil {
		cmds = append(cmds, a.cfg.LoadTrending())
	}
	return tea.Batch(cmds...)
}

// Update handles messages and returns the updated model and any commands.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		a.input.Width = clamp(msg.Width-12, 10, 80)
		a.help.Width = msg.Width
		return a, nil

	case debounceTick:
		term, ok := a.query.Settle(msg.id)
		if !ok {
			return a, nil
		}
		return a, a.startFetch(a.query.Begin(term), term)

	case MoviesFetched:
		return a.applyResult(msg.Result)

	case SearchRecorded:
		// Failures were logged by the tracker and are never surfaced.
		if msg.Err != nil || a.cfg.LoadTrending == nil {
			return a, nil
		}
		return a, a.cfg.LoadTrending()

	case TrendingLoaded:
		if msg.Err != nil {
			a.trending = nil
			return a, nil
		}
		a.trending = msg.Entries
		return a, nil

	case spinner.TickMsg:
		// Let the tick chain die while idle; startFetch restarts it.
		if !a.query.Loading {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, a.keys.Quit) {
		return a, tea.Quit
	}

	if a.debug {
		if key.Matches(msg, a.keys.Debug, a.keys.Close) {
			a.debug = false
		}
		return a, nil
	}

	if a.modal {
		if key.Matches(msg, a.keys.Close, a.keys.Open) {
			a.modal = false
		}
		return a, nil
	}

	switch {
	case key.Matches(msg, a.keys.Debug):
		a.debug = true
		return a, nil

	case key.Matches(msg, a.keys.Retry):
		if a.query.View() != query.ViewError {
			return a, nil
		}
		term, seq := a.query.Retry()
		a.cfg.Events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindSearchRetry, Comp: "ui", Seq: seq, Query: term})
		return a, a.startFetch(seq, term)

	case key.Matches(msg, a.keys.Open):
		if a.query.View() == query.ViewGrid && a.cursor < len(a.query.Movies) {
			a.modal = true
			m := a.query.Movies[a.cursor]
			a.cfg.Events.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindModalOpen, Comp: "ui", Msg: m.Title})
		}
		return a, nil

	case key.Matches(msg, a.keys.Up):
		a.moveCursor(-gridColumns(a.width))
		return a, nil

	case key.Matches(msg, a.keys.Down):
		a.moveCursor(gridColumns(a.width))
		return a, nil

	case key.Matches(msg, a.keys.Next):
		a.moveCursor(1)
		return a, nil

	case key.Matches(msg, a.keys.Prev):
		a.moveCursor(-1)
		return a, nil

	case key.Matches(msg, a.keys.Close):
		if a.input.Value() == "" {
			return a, nil
		}
		a.input.SetValue("")
		return a, a.typed()

	case key.Matches(msg, a.keys.Quick):
		if a.input.Value() != "" {
			return a, nil
		}
		i := int(msg.Runes[0] - '1')
		if i < 0 || i >= len(quickSearches) {
			return a, nil
		}
		a.input.SetValue(quickSearches[i])
		a.input.CursorEnd()
		return a, a.typed()
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	if a.input.Value() == a.query.Raw {
		return a, cmd
	}
	return a, tea.Batch(cmd, a.typed())
}

// typed records the search box contents and arms the debounce timer.
func (a *App) typed() tea.Cmd {
	id := a.query.Type(a.input.Value())
	return tea.Tick(a.cfg.Debounce, func(time.Time) tea.Msg {
		return debounceTick{id: id}
	})
}

// startFetch issues the fetch for an already begun generation.
func (a *App) startFetch(seq uint64, term string) tea.Cmd {
	a.cursor = 0
	if a.cfg.FetchMovies == nil {
		return a.spinner.Tick
	}
	return tea.Batch(a.cfg.FetchMovies(seq, term), a.spinner.Tick)
}

func (a App) applyResult(r query.Result) (tea.Model, tea.Cmd) {
	if !a.query.Apply(r) {
		a.cfg.Events.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindSearchStale, Comp: "ui", Seq: r.Seq, Query: r.Term})
		return a, nil
	}
	if a.cursor >= len(a.query.Movies) {
		a.cursor = 0
	}
	if r.Record == nil || a.cfg.RecordSearch == nil {
		return a, nil
	}
	return a, a.cfg.RecordSearch(r.Term, *r.Record)
}

func (a *App) moveCursor(delta int) {
	n := len(a.query.Movies)
	if n == 0 || a.query.View() != query.ViewGrid {
		return
	}
	next := a.cursor + delta
	if next < 0 || next >= n {
		return
	}
	a.cursor = next
}

// View renders the UI.
func (a App) View() string {
	if !a.ready {
		return "Loading..."
	}
	if a.debug {
		return lipgloss.JoinVertical(lipgloss.Left,
			debugOverlay(a.cfg.Ring, a.width, a.height-1),
			debugStatusBar(a.width))
	}
	if a.modal && a.cursor < len(a.query.Movies) {
		return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center,
			renderModal(a.query.Movies[a.cursor], a.width))
	}

	top := lipgloss.JoinVertical(lipgloss.Left,
		renderHeader(a.width),
		SearchBox.Render(a.input.View()),
		renderQuickSearches(a.input.Value()),
		renderTrending(a.trending, a.width),
		renderMoviesHeader(&a.query, a.width),
	)

	status := renderStatusBar(&a.query, a.help.View(a.keys), a.width)
	remaining := a.height - lipgloss.Height(top) - lipgloss.Height(status)
	movies := renderMovies(&a.query, a.spinner.View(), a.cursor, a.width, remaining)

	return lipgloss.JoinVertical(lipgloss.Left, top, movies, status)
}

// Query returns the query state (for testing).
func (a App) Query() query.State {
	return a.query
}

// Cursor returns the current cursor position (for testing).
func (a App) Cursor() int {
	return a.cursor
}

// Trending returns the leaderboard entries (for testing).
func (a App) Trending() []trending.Entry {
	return a.trending
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
