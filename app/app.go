// Package app runs the interactive visualizer loop: it turns terminal events
// into board edits, launches searches, and keeps the screen in sync.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/pathviz/board"
	"github.com/lixenwraith/pathviz/config"
	"github.com/lixenwraith/pathviz/grid"
	"github.com/lixenwraith/pathviz/heuristic"
	"github.com/lixenwraith/pathviz/maze"
	"github.com/lixenwraith/pathviz/render"
	"github.com/lixenwraith/pathviz/search"
)

const (
	eventBuffer = 100
	mazeBraid   = 0.2
)

// Cues receives audible feedback requests
type Cues interface {
	PlayFound()
	PlayExhausted()
	PlayCancel()
	PlayTick()
}

// Recorder receives finished runs
type Recorder interface {
	Observe(heuristicName string, res search.Result)
}

type silentCues struct{}

func (silentCues) PlayFound()     {}
func (silentCues) PlayExhausted() {}
func (silentCues) PlayCancel()    {}
func (silentCues) PlayTick()      {}

type nopRecorder struct{}

func (nopRecorder) Observe(string, search.Result) {}

// Options carries optional collaborators; nil fields are replaced by no-ops
type Options struct {
	Cues     Cues
	Recorder Recorder
	Logger   *log.Logger
}

// App owns the board and screen for one interactive session
type App struct {
	screen   tcell.Screen
	board    *board.Board
	renderer *render.GridRenderer
	cues     Cues
	recorder Recorder
	logger   *log.Logger

	delay         time.Duration
	heuristicName string
	status        render.Status

	events        chan tcell.Event
	quitRequested bool
}

// New builds an app over an initialized screen
func New(screen tcell.Screen, cfg config.Config, opts Options) (*App, error) {
	if _, err := heuristic.ByName(cfg.Heuristic); err != nil {
		return nil, err
	}
	b, err := board.New(cfg.Rows, cfg.Cols)
	if err != nil {
		return nil, err
	}

	a := &App{
		screen:        screen,
		board:         b,
		renderer:      render.NewGridRenderer(screen),
		cues:          opts.Cues,
		recorder:      opts.Recorder,
		logger:        opts.Logger,
		delay:         cfg.Delay,
		heuristicName: cfg.Heuristic,
		events:        make(chan tcell.Event, eventBuffer),
	}
	if a.cues == nil {
		a.cues = silentCues{}
	}
	if a.recorder == nil {
		a.recorder = nopRecorder{}
	}
	if a.logger == nil {
		a.logger = log.Default()
	}
	a.status = render.Status{Heuristic: a.heuristicName, Message: "place start"}
	return a, nil
}

// Board exposes the edited board
func (a *App) Board() *board.Board { return a.board }

// Run processes events until quit or ctx is done
func (a *App) Run(ctx context.Context) error {
	a.screen.EnableMouse()
	go a.pump()

	a.draw()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-a.events:
			if ev == nil {
				return nil
			}
			if !a.handle(ctx, ev) {
				return nil
			}
		}
	}
}

// pump forwards screen events; PollEvent returns nil once the screen is finalized
func (a *App) pump() {
	for {
		ev := a.screen.PollEvent()
		a.events <- ev
		if ev == nil {
			return
		}
	}
}

// handle applies one event; returns false when the app should exit
func (a *App) handle(ctx context.Context, ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if isQuit(ev) {
			return false
		}
		if ev.Key() == tcell.KeyRune {
			switch ev.Rune() {
			case ' ':
				a.runSearch(ctx)
				if a.quitRequested {
					return false
				}
			case 'c', 'C':
				a.board.Clear()
				a.setStatus("cleared", render.ToneInfo)
			case 'm', 'M':
				a.generateMaze()
			case 'h', 'H':
				a.heuristicName = heuristic.Next(a.heuristicName)
				a.status.Heuristic = a.heuristicName
				a.setStatus("heuristic: "+a.heuristicName, render.ToneInfo)
			}
		}

	case *tcell.EventMouse:
		a.handleMouse(ev)

	case *tcell.EventResize:
		a.screen.Sync()
	}

	a.draw()
	return true
}

func isQuit(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyRune:
		return ev.Rune() == 'q' || ev.Rune() == 'Q'
	}
	return false
}

func (a *App) handleMouse(ev *tcell.EventMouse) {
	x, y := ev.Position()
	row, col, ok := render.CellAt(a.board.Grid(), x, y)
	if !ok {
		return
	}

	var (
		action board.Action
		err    error
	)
	switch buttons := ev.Buttons(); {
	case buttons&tcell.Button1 != 0:
		action, err = a.board.Primary(row, col)
	case buttons&tcell.Button2 != 0:
		action, err = a.board.Secondary(row, col)
	default:
		return
	}
	if err != nil {
		// CellAt already bounds-checked; anything here is a bug worth logging
		a.logger.Printf("app: pointer edit at (%d,%d): %v", row, col, err)
		return
	}

	switch action {
	case board.PlacedStart:
		a.setStatus("place end", render.ToneInfo)
	case board.PlacedEnd:
		a.setStatus("draw walls, SPACE to search", render.ToneInfo)
	}
}

func (a *App) generateMaze() {
	var open []maze.Point
	for _, c := range []*grid.Cell{a.board.Start(), a.board.End()} {
		if c != nil {
			open = append(open, maze.Point{Row: c.Row, Col: c.Col})
		}
	}
	g := a.board.Grid()
	layout := maze.Generate(maze.Config{Rows: g.Rows, Cols: g.Cols, Braiding: mazeBraid, Open: open})
	if err := a.board.ApplyBarriers(layout); err != nil {
		a.logger.Printf("app: apply maze: %v", err)
		a.setStatus("maze failed", render.ToneError)
		return
	}
	a.setStatus("maze generated", render.ToneInfo)
}

func (a *App) runSearch(ctx context.Context) {
	start, end, err := a.board.SearchRequest()
	if err != nil {
		a.setStatus("place start and end first", render.ToneError)
		return
	}
	h, err := heuristic.ByName(a.heuristicName)
	if err != nil {
		a.setStatus(err.Error(), render.ToneError)
		return
	}

	searchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.status.Searching = true
	a.status.Expanded = 0
	a.setStatus("", render.ToneInfo)

	// Order matters: the frame is drawn before the pause
	observer := search.Multi(
		search.ObserverFunc(func(s search.Step) {
			a.status.Expanded = s.Expanded
			a.draw()
		}),
		search.ObserverFunc(func(search.Step) { a.cues.PlayTick() }),
		search.ObserverFunc(func(search.Step) {
			if a.drainDuringSearch() {
				cancel()
				return
			}
			if a.delay > 0 {
				time.Sleep(a.delay)
			}
		}),
	)

	engine := search.New(
		search.WithHeuristic(h),
		search.WithObserver(observer),
		search.WithLogger(a.logger),
	)
	res, err := engine.Run(searchCtx, a.board.Grid(), start, end)
	a.status.Searching = false
	a.status.Expanded = res.Expanded
	a.recorder.Observe(a.heuristicName, res)

	switch {
	case res.Outcome == search.Cancelled:
		a.cues.PlayCancel()
		a.setStatus("search cancelled", render.ToneInfo)
	case err != nil:
		a.logger.Printf("app: search failed: %v", err)
		a.setStatus(fmt.Sprintf("search failed: %v", err), render.ToneError)
	case res.Outcome == search.PathFound:
		a.cues.PlayFound()
		a.setStatus(fmt.Sprintf("path found: %d cells, cost %.2f", len(res.Path), res.Cost), render.ToneOk)
	case res.Outcome == search.Exhausted:
		a.cues.PlayExhausted()
		a.setStatus("no path", render.ToneError)
	}

	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		a.logger.Printf("app: search %s ended with %v", res.RunID, err)
	}
}

// drainDuringSearch consumes pending events without blocking
// Returns true when the running search should stop
func (a *App) drainDuringSearch() bool {
	for {
		select {
		case ev := <-a.events:
			switch ev := ev.(type) {
			case nil:
				a.quitRequested = true
				return true
			case *tcell.EventKey:
				if isQuit(ev) {
					a.quitRequested = true
					return true
				}
				if ev.Key() == tcell.KeyRune && ev.Rune() == ' ' {
					return true
				}
			case *tcell.EventResize:
				a.screen.Sync()
			}
			// Pointer edits are dropped while the grid is being searched
		default:
			return false
		}
	}
}

func (a *App) setStatus(msg string, tone render.Tone) {
	a.status.Message = msg
	a.status.Tone = tone
}

func (a *App) draw() {
	a.renderer.Frame(a.board.Grid(), a.status)
}
