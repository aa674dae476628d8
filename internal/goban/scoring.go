package goban

import (
	"go_arena/internal/domain/game"
)

// Territory counts the empty cells credited to each color. A cell counts
// for a color when at least one orthogonal neighbour holds that color and
// none holds the other. Dead stones and seki are not considered.
func Territory(b *Board) (black, white int) {
	adj := make([]int, 0, 4)
	for i, c := range b.cells {
		if c != game.Empty {
			continue
		}
		x, y := b.point(i)
		var sawBlack, sawWhite bool
		for _, n := range b.neighbors(adj[:0], x, y) {
			switch b.cells[n] {
			case game.Black:
				sawBlack = true
			case game.White:
				sawWhite = true
			}
		}
		switch {
		case sawBlack && !sawWhite:
			black++
		case sawWhite && !sawBlack:
			white++
		}
	}
	return black, white
}

// Score adds prisoners to territory: black is credited with every white
// stone it captured and vice versa.
func Score(b *Board, captured []game.Stone) (black, white int) {
	for _, s := range captured {
		switch s.Color {
		case game.White:
			black++
		case game.Black:
			white++
		}
	}
	tb, tw := Territory(b)
	return black + tb, white + tw
}
