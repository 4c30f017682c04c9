// Package maze builds barrier layouts for the board.
//
// Layouts are carved with a recursive backtracker on the odd lattice, then
// optionally braided (dead ends opened into loops) without creating 2x2 open
// plazas or isolated pillars.
package maze

import (
	"math/rand"
	"time"
)

// Cell types
const (
	Wall    = true
	Passage = false
)

// Point is a (row, col) position
type Point struct {
	Row, Col int
}

type Config struct {
	Rows, Cols int

	// Braiding: 0.0 (perfect maze, a tree) to 1.0 (no dead ends).
	// Plaza and pillar constraints take precedence.
	Braiding float64

	// Open lists cells that must end up as Passage and connected to the carved rooms
	Open []Point

	Seed int64 // 0 = time-based
}

// Generate returns a Rows x Cols layout indexed [row][col], true = barrier
// Even dimensions carve on the largest odd sub-grid; the spare edge stays wall
func Generate(cfg Config) [][]bool {
	rows, cols := cfg.Rows, cfg.Cols
	if rows <= 0 || cols <= 0 {
		return nil
	}

	layout := make([][]bool, rows)
	for r := range layout {
		layout[r] = make([]bool, cols)
		for c := range layout[r] {
			layout[r][c] = Wall
		}
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	// Carving region is odd-sized so rooms sit on odd coordinates
	carveRows, carveCols := ensureOdd(rows), ensureOdd(cols)
	region := layout[:carveRows]
	recursiveBacktracker(region, carveCols, rng)
	if cfg.Braiding > 0 {
		applyBraiding(region, carveCols, cfg.Braiding, rng)
	}

	for _, p := range cfg.Open {
		forceOpen(layout, carveRows, carveCols, p)
	}

	return layout
}

func recursiveBacktracker(layout [][]bool, cols int, rng *rand.Rand) {
	rows := len(layout)
	if rows < 3 || cols < 3 {
		return
	}

	start := Point{1, 1}
	stack := []Point{start}
	layout[start.Row][start.Col] = Passage

	jumps := []Point{{-2, 0}, {2, 0}, {0, -2}, {0, 2}}

	for len(stack) > 0 {
		curr := stack[len(stack)-1]
		candidates := make([]Point, 0, 4)

		for _, d := range jumps {
			nr, nc := curr.Row+d.Row, curr.Col+d.Col
			// Keep a one-cell wall border
			if nr > 0 && nr < rows-1 && nc > 0 && nc < cols-1 && layout[nr][nc] == Wall {
				candidates = append(candidates, d)
			}
		}

		if len(candidates) == 0 {
			stack = stack[:len(stack)-1]
			continue
		}

		d := candidates[rng.Intn(len(candidates))]
		layout[curr.Row+d.Row/2][curr.Col+d.Col/2] = Passage
		next := Point{curr.Row + d.Row, curr.Col + d.Col}
		layout[next.Row][next.Col] = Passage
		stack = append(stack, next)
	}
}

func applyBraiding(layout [][]bool, cols int, probability float64, rng *rand.Rand) {
	rows := len(layout)
	steps := []Point{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}
	jumps := []Point{{-2, 0}, {2, 0}, {0, -2}, {0, 2}}

	for r := 1; r < rows-1; r += 2 {
		for c := 1; c < cols-1; c += 2 {
			if layout[r][c] == Wall {
				continue
			}

			exits := 0
			for _, d := range steps {
				if layout[r+d.Row][c+d.Col] == Passage {
					exits++
				}
			}
			if exits != 1 || rng.Float64() >= probability {
				continue
			}

			candidates := make([]Point, 0, 4)
			for _, j := range jumps {
				nr, nc := r+j.Row, c+j.Col
				wr, wc := r+j.Row/2, c+j.Col/2
				if nr < 0 || nr >= rows || nc < 0 || nc >= cols {
					continue
				}
				if layout[nr][nc] == Passage && layout[wr][wc] == Wall && canRemoveWall(layout, cols, wr, wc) {
					candidates = append(candidates, Point{wr, wc})
				}
			}

			if len(candidates) > 0 {
				p := candidates[rng.Intn(len(candidates))]
				layout[p.Row][p.Col] = Passage
			}
		}
	}
}

// canRemoveWall rejects removals that open a 2x2 plaza or leave an isolated pillar
func canRemoveWall(layout [][]bool, cols, r, c int) bool {
	rows := len(layout)
	open := func(tr, tc int) bool {
		if tr < 0 || tr >= rows || tc < 0 || tc >= cols {
			return false
		}
		return layout[tr][tc] == Passage
	}

	// Each 2x2 quadrant containing (r,c)
	for _, q := range [][2]int{{-1, -1}, {-1, 0}, {0, -1}, {0, 0}} {
		r0, c0 := r+q[0], c+q[1]
		count := 0
		for _, o := range [][2]int{{0, 0}, {0, 1}, {1, 0}, {1, 1}} {
			tr, tc := r0+o[0], c0+o[1]
			if (tr == r && tc == c) || open(tr, tc) {
				count++
			}
		}
		if count == 4 {
			return false
		}
	}

	steps := []Point{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}
	for _, d := range steps {
		nr, nc := r+d.Row, c+d.Col
		if nr < 0 || nr >= rows || nc < 0 || nc >= cols || layout[nr][nc] != Wall {
			continue
		}
		links := 0
		for _, d2 := range steps {
			wr, wc := nr+d2.Row, nc+d2.Col
			if wr == r && wc == c {
				continue
			}
			if wr >= 0 && wr < rows && wc >= 0 && wc < cols && layout[wr][wc] == Wall {
				links++
			}
		}
		if links == 0 {
			return false
		}
	}

	return true
}

// forceOpen clears p and carves a corridor from it to the nearest carved room
// Without a carved lattice it only guarantees one open orthogonal neighbor
func forceOpen(layout [][]bool, carveRows, carveCols int, p Point) {
	rows := len(layout)
	if rows == 0 || p.Row < 0 || p.Row >= rows || p.Col < 0 || p.Col >= len(layout[0]) {
		return
	}
	cols := len(layout[0])
	layout[p.Row][p.Col] = Passage

	if carveRows < 3 || carveCols < 3 {
		steps := []Point{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}
		for _, d := range steps {
			nr, nc := p.Row+d.Row, p.Col+d.Col
			if nr >= 0 && nr < rows && nc >= 0 && nc < cols && layout[nr][nc] == Passage {
				return
			}
		}
		for _, d := range steps {
			nr, nc := p.Row+d.Row, p.Col+d.Col
			if nr >= 0 && nr < rows && nc >= 0 && nc < cols {
				layout[nr][nc] = Passage
				return
			}
		}
		return
	}

	// Vertical leg along p's column, then horizontal leg along the room row
	room := Point{nearestRoom(p.Row, carveRows), nearestRoom(p.Col, carveCols)}
	for r := p.Row; r != room.Row; r += sign(room.Row - p.Row) {
		layout[r][p.Col] = Passage
	}
	for c := p.Col; c != room.Col; c += sign(room.Col - p.Col) {
		layout[room.Row][c] = Passage
	}
	layout[room.Row][room.Col] = Passage
}

// nearestRoom returns the odd index in [1, n-2] closest to v; n is odd and >= 3
func nearestRoom(v, n int) int {
	switch {
	case v < 1:
		return 1
	case v > n-2:
		return n - 2
	case v%2 == 0:
		return v - 1
	}
	return v
}

func sign(v int) int {
	if v < 0 {
		return -1
	}
	return 1
}

func ensureOdd(n int) int {
	if n%2 == 0 {
		return n - 1
	}
	return n
}
