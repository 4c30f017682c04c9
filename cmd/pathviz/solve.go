package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lixenwraith/pathviz/board"
	"github.com/lixenwraith/pathviz/config"
	"github.com/lixenwraith/pathviz/grid"
	"github.com/lixenwraith/pathviz/heuristic"
	"github.com/lixenwraith/pathviz/maze"
	"github.com/lixenwraith/pathviz/search"
)

type solveOptions struct {
	start, end string
	maze       bool
	seed       int64
	braid      float64
}

func newSolveCmd(v *viper.Viper) *cobra.Command {
	opts := &solveOptions{}
	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Run one search without the interactive screen and print the grid",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, v)
			if err != nil {
				return err
			}
			if logFile := setupLogging(cfg.Debug); logFile != nil {
				defer logFile.Close()
			}
			return runSolve(cmd.Context(), cmd.OutOrStdout(), cfg, *opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.start, "start", "", "start cell as row,col (default top-left)")
	f.StringVar(&opts.end, "end", "", "end cell as row,col (default bottom-right)")
	f.BoolVar(&opts.maze, "maze", false, "fill the grid with a generated maze")
	f.Int64Var(&opts.seed, "seed", 0, "maze seed, 0 for time-based")
	f.Float64Var(&opts.braid, "braid", 0.2, "maze braiding 0.0 (perfect) to 1.0 (no dead ends)")
	return cmd
}

func runSolve(ctx context.Context, out io.Writer, cfg config.Config, opts solveOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	h, err := heuristic.ByName(cfg.Heuristic)
	if err != nil {
		return err
	}
	b, err := board.New(cfg.Rows, cfg.Cols)
	if err != nil {
		return err
	}

	defStart, defEnd := defaultEndpoints(cfg.Rows, cfg.Cols, opts.maze)
	start, err := parsePoint(opts.start, defStart)
	if err != nil {
		return fmt.Errorf("--start: %w", err)
	}
	end, err := parsePoint(opts.end, defEnd)
	if err != nil {
		return fmt.Errorf("--end: %w", err)
	}

	if opts.maze {
		layout := maze.Generate(maze.Config{
			Rows:     cfg.Rows,
			Cols:     cfg.Cols,
			Braiding: opts.braid,
			Open:     []maze.Point{start, end},
			Seed:     opts.seed,
		})
		if err := b.ApplyBarriers(layout); err != nil {
			return err
		}
	}

	for _, p := range []maze.Point{start, end} {
		action, err := b.Primary(p.Row, p.Col)
		if err != nil {
			return err
		}
		if action != board.PlacedStart && action != board.PlacedEnd {
			return fmt.Errorf("%w: cannot place endpoint at %d,%d", search.ErrInvalidRequest, p.Row, p.Col)
		}
	}

	startCell, endCell, err := b.SearchRequest()
	if err != nil {
		return err
	}
	engine := search.New(search.WithHeuristic(h), search.WithLogger(log.Default()))
	res, err := engine.Run(ctx, b.Grid(), startCell, endCell)
	if err != nil {
		return err
	}

	drawGrid(out, b.Grid())
	fmt.Fprintf(out, "\nRun:       %s\n", res.RunID)
	fmt.Fprintf(out, "Heuristic: %s\n", cfg.Heuristic)
	fmt.Fprintf(out, "Outcome:   %s\n", res.Outcome)
	if res.Outcome == search.PathFound {
		fmt.Fprintf(out, "Path:      %d cells, cost %.3f\n", len(res.Path), res.Cost)
	}
	fmt.Fprintf(out, "Expanded:  %d in %v\n", res.Expanded, res.Duration)
	return nil
}

// drawGrid prints one character per cell
func drawGrid(out io.Writer, g *grid.Grid) {
	var sb strings.Builder
	for _, row := range g.Snapshot() {
		for _, s := range row {
			switch s {
			case grid.Start:
				sb.WriteString("S")
			case grid.End:
				sb.WriteString("E")
			case grid.Barrier:
				sb.WriteString("█")
			case grid.Path:
				sb.WriteString("•")
			case grid.Visited:
				sb.WriteString("·")
			default:
				sb.WriteString(" ")
			}
		}
		sb.WriteString("\n")
	}
	fmt.Fprint(out, sb.String())
}

// defaultEndpoints picks opposite corners; with a maze they move onto the carved lattice
func defaultEndpoints(rows, cols int, withMaze bool) (start, end maze.Point) {
	start = maze.Point{Row: 0, Col: 0}
	end = maze.Point{Row: rows - 1, Col: cols - 1}
	if !withMaze || rows < 3 || cols < 3 {
		return start, end
	}
	lastOdd := func(n int) int {
		v := n - 2
		if v%2 == 0 {
			v--
		}
		return v
	}
	return maze.Point{Row: 1, Col: 1}, maze.Point{Row: lastOdd(rows), Col: lastOdd(cols)}
}

func parsePoint(s string, def maze.Point) (maze.Point, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return def, nil
	}
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return maze.Point{}, fmt.Errorf("expected row,col, got %q", s)
	}
	row, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return maze.Point{}, fmt.Errorf("row: %w", err)
	}
	col, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return maze.Point{}, fmt.Errorf("col: %w", err)
	}
	return maze.Point{Row: row, Col: col}, nil
}
