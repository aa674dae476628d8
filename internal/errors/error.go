package errors

import (
	"errors"
	"fmt"
)

var (
	ErrSessionNotFound = errors.New("session was not found")
	ErrGameNotFound    = errors.New("game not found")
	ErrGameFinished    = errors.New("game is already finished")
	ErrIllegalMove     = errors.New("illegal move")
	ErrFormat          = errors.New("malformed board string")
	ErrInvalidSize     = errors.New("board size must be 9, 13 or 19")
	ErrNothingToUndo   = errors.New("no moves to undo")
	ErrPersistence     = errors.New("failed to persist game state")
	ErrInvalidQuery    = errors.New("invalid query parameters")
	ErrInternal        = errors.New("internal error")
)

type IllegalMoveReason string

const (
	ReasonOutOfBounds IllegalMoveReason = "OutOfBounds"
	ReasonOccupied    IllegalMoveReason = "Occupied"
	ReasonKo          IllegalMoveReason = "KoViolation"
	ReasonSuicide     IllegalMoveReason = "Suicide"
)

// IllegalMoveError is returned for a rejected placement. It matches
// ErrIllegalMove with errors.Is.
type IllegalMoveError struct {
	Reason IllegalMoveReason
	X, Y   int
}

func NewIllegalMove(reason IllegalMoveReason, x, y int) *IllegalMoveError {
	return &IllegalMoveError{Reason: reason, X: x, Y: y}
}

func (e *IllegalMoveError) Error() string {
	return fmt.Sprintf("illegal move at (%d, %d): %s", e.X, e.Y, e.Reason)
}

func (e *IllegalMoveError) Is(target error) bool {
	return target == ErrIllegalMove
}

// IllegalReason extracts the reason from err, if it is an illegal move.
func IllegalReason(err error) (IllegalMoveReason, bool) {
	var illegal *IllegalMoveError
	if errors.As(err, &illegal) {
		return illegal.Reason, true
	}
	return "", false
}
