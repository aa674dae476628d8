package goban

import (
	"fmt"
	"sort"

	"go_arena/internal/domain/game"
	errs "go_arena/internal/errors"
)

func sortedMoves(moves []game.Move) []game.Move {
	sorted := make([]game.Move, len(moves))
	for i, m := range moves {
		sorted[i] = m.Clone()
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Number < sorted[j].Number
	})
	return sorted
}

// Replay rebuilds a game from its move log. Moves are applied in move
// number order and the color of each is taken from its position in the
// log, black first. Placements are trusted: captures are recomputed but
// legality is not re-checked.
func Replay(size int, moves []game.Move) (*Engine, error) {
	e, err := New(size)
	if err != nil {
		return nil, err
	}

	for i, m := range sortedMoves(moves) {
		if e.finished {
			return nil, fmt.Errorf("%w: move %d recorded after the game ended", errs.ErrFormat, m.Number)
		}
		e.currentPlayer = game.ColorForMove(i)

		switch {
		case m.IsResign:
			if _, err := e.Resign(); err != nil {
				return nil, err
			}
		case m.IsPass:
			if _, err := e.Pass(); err != nil {
				return nil, err
			}
		case m.IsPlacement():
			x, y := *m.X, *m.Y
			if !e.board.InBounds(x, y) {
				return nil, fmt.Errorf("%w: move %d at (%d, %d) is off the board", errs.ErrFormat, m.Number, x, y)
			}
			captured := placeAndCapture(e.board, x, y, e.currentPlayer)
			e.commitPlacement(e.board, x, y, captured)
		default:
			return nil, fmt.Errorf("%w: move %d has no position", errs.ErrFormat, m.Number)
		}
		e.moves[len(e.moves)-1].PlayerID = m.PlayerID
	}
	return e, nil
}

// FromSnapshot trusts b as the current position and derives the rest of
// the state (log, captures, turn, ko, passes) from the move log.
func FromSnapshot(b *Board, moves []game.Move) *Engine {
	e := newEngine(b.Clone())
	sorted := sortedMoves(moves)

	for i := range sorted {
		sorted[i].Number = i + 1
		sorted[i].Color = game.ColorForMove(i)
		if sorted[i].CapturedStones == nil {
			sorted[i].CapturedStones = []game.Stone{}
		}
		e.capturedStones = append(e.capturedStones, sorted[i].CapturedStones...)
	}
	e.moves = sorted
	e.currentPlayer = game.ColorForMove(len(sorted))

	e.ko, e.passCount = tailState(sorted)
	if n := len(sorted); n > 0 && sorted[n-1].IsResign {
		e.finished = true
		e.winner = game.WinnerOf(sorted[n-1].Color.Opponent())
	}
	if !e.finished && e.passCount >= 2 {
		e.finish()
	}
	return e
}

// Restore rebuilds an engine from a full public snapshot, as held by a
// client of the simulation endpoints.
func Restore(s game.GameState) (*Engine, error) {
	b, err := Decode(s.Board, s.Size)
	if err != nil {
		return nil, err
	}
	e := newEngine(b)

	e.moves = make([]game.Move, len(s.Moves))
	for i, m := range s.Moves {
		e.moves[i] = m.Clone()
	}
	e.capturedStones = append([]game.Stone(nil), s.CapturedStones...)

	if s.KoPosition != nil {
		if !b.InBounds(s.KoPosition.X, s.KoPosition.Y) {
			return nil, fmt.Errorf("%w: ko position (%d, %d) is off the board", errs.ErrFormat, s.KoPosition.X, s.KoPosition.Y)
		}
		ko := *s.KoPosition
		e.ko = &ko
	}
	if s.CurrentPlayer != game.Empty {
		e.currentPlayer = s.CurrentPlayer
	}
	if s.PassCount > 0 {
		e.passCount = s.PassCount
	}
	e.finished = s.GameEnded
	e.winner = s.Winner
	e.blackScore = s.BlackScore
	e.whiteScore = s.WhiteScore
	return e, nil
}
