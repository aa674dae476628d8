package goban

import (
	"go_arena/internal/domain/game"
	errs "go_arena/internal/errors"
)

// Engine holds the full rule state of one game. It is not safe for
// concurrent use; callers serialize operations per game.
type Engine struct {
	board          *Board
	moves          []game.Move
	capturedStones []game.Stone
	ko             *game.Point
	currentPlayer  game.Color
	passCount      int
	finished       bool
	winner         game.Winner
	blackScore     int
	whiteScore     int
}

func New(size int) (*Engine, error) {
	b, err := NewBoard(size)
	if err != nil {
		return nil, err
	}
	return newEngine(b), nil
}

func newEngine(b *Board) *Engine {
	return &Engine{
		board:         b,
		currentPlayer: game.Black,
	}
}

func (e *Engine) Size() int {
	return e.board.Size()
}

func (e *Engine) Finished() bool {
	return e.finished
}

func (e *Engine) CurrentPlayer() game.Color {
	return e.currentPlayer
}

// Board returns a copy of the current board.
func (e *Engine) Board() *Board {
	return e.board.Clone()
}

// CheckMove reports whether the side to move may play at (x, y) without
// changing any state.
func (e *Engine) CheckMove(x, y int) error {
	_, _, err := e.evaluate(x, y, e.currentPlayer)
	return err
}

// PlaceStone plays a stone for the side to move. Legality is decided on a
// scratch board; nothing is committed unless the move is legal.
func (e *Engine) PlaceStone(x, y int) (game.Move, error) {
	next, captured, err := e.evaluate(x, y, e.currentPlayer)
	if err != nil {
		return game.Move{}, err
	}
	return e.commitPlacement(next, x, y, captured), nil
}

func (e *Engine) evaluate(x, y int, color game.Color) (*Board, []game.Stone, error) {
	if e.finished {
		return nil, nil, errs.ErrGameFinished
	}
	cell, ok := e.board.Get(x, y)
	if !ok {
		return nil, nil, errs.NewIllegalMove(errs.ReasonOutOfBounds, x, y)
	}
	if cell != game.Empty {
		return nil, nil, errs.NewIllegalMove(errs.ReasonOccupied, x, y)
	}
	if e.ko != nil && e.ko.X == x && e.ko.Y == y {
		return nil, nil, errs.NewIllegalMove(errs.ReasonKo, x, y)
	}

	next := e.board.Clone()
	captured := placeAndCapture(next, x, y, color)
	if !HasLiberties(next, x, y, color) {
		return nil, nil, errs.NewIllegalMove(errs.ReasonSuicide, x, y)
	}
	return next, captured, nil
}

// placeAndCapture puts a stone on b and removes every adjacent opponent
// group left without liberties.
func placeAndCapture(b *Board, x, y int, color game.Color) []game.Stone {
	b.Set(x, y, color)
	opponent := color.Opponent()

	var captured []game.Stone
	for _, n := range b.neighbors(make([]int, 0, 4), x, y) {
		if b.cells[n] != opponent {
			continue
		}
		nx, ny := b.point(n)
		group := ComputeGroup(b, nx, ny, opponent)
		if group.Liberties > 0 {
			continue
		}
		for _, s := range group.Stones {
			b.Set(s.X, s.Y, game.Empty)
		}
		captured = append(captured, group.Stones...)
	}
	return captured
}

func (e *Engine) commitPlacement(next *Board, x, y int, captured []game.Stone) game.Move {
	color := e.currentPlayer
	e.board = next

	if captured == nil {
		captured = []game.Stone{}
	}
	move := game.PlacementMove(len(e.moves)+1, x, y, color, captured)
	e.moves = append(e.moves, move)
	e.capturedStones = append(e.capturedStones, captured...)

	if len(captured) == 1 {
		ko := captured[0].Point()
		e.ko = &ko
	} else {
		e.ko = nil
	}

	e.currentPlayer = color.Opponent()
	e.passCount = 0
	return move.Clone()
}

// Pass ends the turn without a placement. Two consecutive passes finish
// the game.
func (e *Engine) Pass() (game.Move, error) {
	if e.finished {
		return game.Move{}, errs.ErrGameFinished
	}
	move := game.Move{
		Number:         len(e.moves) + 1,
		IsPass:         true,
		Color:          e.currentPlayer,
		CapturedStones: []game.Stone{},
	}
	e.moves = append(e.moves, move)
	e.passCount++
	e.currentPlayer = e.currentPlayer.Opponent()
	// a pass is not a single-stone capture
	e.ko = nil

	if e.passCount >= 2 {
		e.finish()
	}
	return move.Clone(), nil
}

// Resign finishes the game in favour of the opponent of the side to move.
// The resigning side is taken from turn order, not from who asked.
func (e *Engine) Resign() (game.Move, error) {
	if e.finished {
		return game.Move{}, errs.ErrGameFinished
	}
	move := game.Move{
		Number:         len(e.moves) + 1,
		IsResign:       true,
		Color:          e.currentPlayer,
		CapturedStones: []game.Stone{},
	}
	e.moves = append(e.moves, move)
	e.finished = true
	e.winner = game.WinnerOf(e.currentPlayer.Opponent())
	e.ko = nil
	return move.Clone(), nil
}

// Undo takes back the last record. Stones captured by an undone placement
// are put back on the board and dropped from the captured list; ko and the
// pass count return to what the remaining log implies.
func (e *Engine) Undo() (game.Move, error) {
	if e.finished {
		return game.Move{}, errs.ErrGameFinished
	}
	if len(e.moves) == 0 {
		return game.Move{}, errs.ErrNothingToUndo
	}

	last := e.moves[len(e.moves)-1]
	e.moves = e.moves[:len(e.moves)-1]

	if last.IsPlacement() {
		e.board.Set(*last.X, *last.Y, game.Empty)
		for _, s := range last.CapturedStones {
			e.board.Set(s.X, s.Y, s.Color)
		}
		keep := len(e.capturedStones) - len(last.CapturedStones)
		if keep < 0 {
			keep = 0
		}
		e.capturedStones = e.capturedStones[:keep]
	}

	e.currentPlayer = e.currentPlayer.Opponent()
	e.ko, e.passCount = tailState(e.moves)
	return last, nil
}

// tailState derives the ko cell and the consecutive pass count implied by
// the end of a move log. Live play, undo and snapshot hydration all agree
// on it.
func tailState(moves []game.Move) (*game.Point, int) {
	passes := 0
	for i := len(moves) - 1; i >= 0 && moves[i].IsPass; i-- {
		passes++
	}
	if n := len(moves); n > 0 {
		last := moves[n-1]
		if last.IsPlacement() && len(last.CapturedStones) == 1 {
			ko := last.CapturedStones[0].Point()
			return &ko, passes
		}
	}
	return nil, passes
}

// AttributeLast records which player submitted the last move.
func (e *Engine) AttributeLast(playerID string) {
	if n := len(e.moves); n > 0 {
		e.moves[n-1].PlayerID = playerID
	}
}

// MarkFinished applies a terminal result that was decided elsewhere, such
// as a persisted finished status.
func (e *Engine) MarkFinished(winner game.Winner, blackScore, whiteScore int) {
	e.finished = true
	e.winner = winner
	e.blackScore = blackScore
	e.whiteScore = whiteScore
	e.ko = nil
}

func (e *Engine) finish() {
	e.finished = true
	e.blackScore, e.whiteScore = Score(e.board, e.capturedStones)
	switch {
	case e.blackScore > e.whiteScore:
		e.winner = game.WinnerBlack
	case e.whiteScore > e.blackScore:
		e.winner = game.WinnerWhite
	default:
		e.winner = game.WinnerDraw
	}
}

// State returns a deep copy of the public game state.
func (e *Engine) State() game.GameState {
	moves := make([]game.Move, len(e.moves))
	for i, m := range e.moves {
		moves[i] = m.Clone()
	}
	captured := make([]game.Stone, len(e.capturedStones))
	copy(captured, e.capturedStones)

	var ko *game.Point
	if e.ko != nil {
		k := *e.ko
		ko = &k
	}

	return game.GameState{
		Board:          e.board.Encode(),
		Size:           e.board.Size(),
		Moves:          moves,
		CapturedStones: captured,
		KoPosition:     ko,
		CurrentPlayer:  e.currentPlayer,
		PassCount:      e.passCount,
		GameEnded:      e.finished,
		Winner:         e.winner,
		BlackScore:     e.blackScore,
		WhiteScore:     e.whiteScore,
	}
}
