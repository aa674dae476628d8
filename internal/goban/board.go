package goban

import (
	"fmt"
	"strings"

	"go_arena/internal/domain/game"
	errs "go_arena/internal/errors"
)

var validSizes = [...]int{9, 13, 19}

func ValidBoardSize(size int) bool {
	for _, s := range validSizes {
		if s == size {
			return true
		}
	}
	return false
}

// Board is a square grid stored row-major: cell (x, y) lives at y*size+x.
type Board struct {
	size  int
	cells []game.Color
}

func NewBoard(size int) (*Board, error) {
	if !ValidBoardSize(size) {
		return nil, fmt.Errorf("%w: got %d", errs.ErrInvalidSize, size)
	}
	return &Board{size: size, cells: make([]game.Color, size*size)}, nil
}

// Decode parses the canonical board string.
func Decode(s string, size int) (*Board, error) {
	if !ValidBoardSize(size) {
		return nil, fmt.Errorf("%w: %w", errs.ErrFormat, errs.ErrInvalidSize)
	}
	if len(s) != size*size {
		return nil, fmt.Errorf("%w: length %d, want %d", errs.ErrFormat, len(s), size*size)
	}
	b := &Board{size: size, cells: make([]game.Color, len(s))}
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '0':
		case '1':
			b.cells[i] = game.Black
		case '2':
			b.cells[i] = game.White
		default:
			return nil, fmt.Errorf("%w: unexpected %q at %d", errs.ErrFormat, s[i], i)
		}
	}
	return b, nil
}

func (b *Board) Encode() string {
	var sb strings.Builder
	sb.Grow(len(b.cells))
	for _, c := range b.cells {
		sb.WriteByte(c.Digit())
	}
	return sb.String()
}

func (b *Board) Size() int {
	return b.size
}

func (b *Board) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < b.size && y < b.size
}

// Get returns false for coordinates outside the board.
func (b *Board) Get(x, y int) (game.Color, bool) {
	if !b.InBounds(x, y) {
		return game.Empty, false
	}
	return b.cells[b.index(x, y)], true
}

// Set is a no-op outside the board and reports whether it wrote.
func (b *Board) Set(x, y int, c game.Color) bool {
	if !b.InBounds(x, y) {
		return false
	}
	b.cells[b.index(x, y)] = c
	return true
}

func (b *Board) Clone() *Board {
	clone := &Board{size: b.size, cells: make([]game.Color, len(b.cells))}
	copy(clone.cells, b.cells)
	return clone
}

func (b *Board) Count(c game.Color) int {
	n := 0
	for _, cell := range b.cells {
		if cell == c {
			n++
		}
	}
	return n
}

func (b *Board) IsEmptyBoard() bool {
	return b.Count(game.Empty) == len(b.cells)
}

func (b *Board) Equal(other *Board) bool {
	if other == nil || b.size != other.size {
		return false
	}
	for i := range b.cells {
		if b.cells[i] != other.cells[i] {
			return false
		}
	}
	return true
}

// String renders the board as rows of '.', 'X' (black) and 'O' (white).
func (b *Board) String() string {
	var sb strings.Builder
	for y := 0; y < b.size; y++ {
		for x := 0; x < b.size; x++ {
			switch b.cells[b.index(x, y)] {
			case game.Black:
				sb.WriteByte('X')
			case game.White:
				sb.WriteByte('O')
			default:
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func (b *Board) index(x, y int) int {
	return y*b.size + x
}

func (b *Board) point(i int) (int, int) {
	return i % b.size, i / b.size
}

var directions = [4][2]int{{0, 1}, {1, 0}, {0, -1}, {-1, 0}}

// neighbors appends the in-bounds orthogonal neighbours of (x, y) to dst.
func (b *Board) neighbors(dst []int, x, y int) []int {
	for _, d := range directions {
		nx, ny := x+d[0], y+d[1]
		if b.InBounds(nx, ny) {
			dst = append(dst, b.index(nx, ny))
		}
	}
	return dst
}
