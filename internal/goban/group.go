package goban

import (
	"go_arena/internal/domain/game"
)

// Group is a maximal 4-connected set of same-colored stones.
type Group struct {
	Color     game.Color
	Stones    []game.Stone
	Liberties int

	libertyIdx []int
	size       int
}

// LibertyPoints lists the distinct empty cells adjacent to the group.
func (g Group) LibertyPoints() []game.Point {
	pts := make([]game.Point, 0, len(g.libertyIdx))
	for _, i := range g.libertyIdx {
		pts = append(pts, game.Point{X: i % g.size, Y: i / g.size})
	}
	return pts
}

// ComputeGroup flood-fills from (x, y) over stones of the given color.
// The walk uses an explicit stack so board size never bounds recursion depth.
// If (x, y) does not hold color the result is empty with no liberties.
func ComputeGroup(b *Board, x, y int, color game.Color) Group {
	g := Group{Color: color, size: b.size}
	if c, ok := b.Get(x, y); !ok || c != color || color == game.Empty {
		return g
	}

	visited := make([]bool, len(b.cells))
	libertySeen := make([]bool, len(b.cells))
	stack := []int{b.index(x, y)}
	visited[stack[0]] = true
	adj := make([]int, 0, 4)

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		cx, cy := b.point(cur)
		g.Stones = append(g.Stones, game.Stone{X: cx, Y: cy, Color: color})

		adj = b.neighbors(adj[:0], cx, cy)
		for _, n := range adj {
			switch b.cells[n] {
			case game.Empty:
				if !libertySeen[n] {
					libertySeen[n] = true
					g.libertyIdx = append(g.libertyIdx, n)
				}
			case color:
				if !visited[n] {
					visited[n] = true
					stack = append(stack, n)
				}
			}
		}
	}

	g.Liberties = len(g.libertyIdx)
	return g
}

func HasLiberties(b *Board, x, y int, color game.Color) bool {
	return ComputeGroup(b, x, y, color).Liberties > 0
}
