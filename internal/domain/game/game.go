package game

import (
	"time"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusFinished Status = "finished"
)

type Winner string

const (
	WinnerNone  Winner = ""
	WinnerBlack Winner = "black"
	WinnerWhite Winner = "white"
	WinnerDraw  Winner = "draw"
)

func WinnerOf(c Color) Winner {
	switch c {
	case Black:
		return WinnerBlack
	case White:
		return WinnerWhite
	default:
		return WinnerNone
	}
}

// GameState is the public snapshot of a game handed to the transport layer.
type GameState struct {
	Board          string  `json:"board"`
	Size           int     `json:"size"`
	Moves          []Move  `json:"moves"`
	CapturedStones []Stone `json:"capturedStones"`
	KoPosition     *Point  `json:"koPosition"`
	CurrentPlayer  Color   `json:"currentPlayer"`
	PassCount      int     `json:"passCount"`
	GameEnded      bool    `json:"gameEnded"`
	Winner         Winner  `json:"winner"`
	BlackScore     int     `json:"blackScore"`
	WhiteScore     int     `json:"whiteScore"`
}

func (s GameState) Status() Status {
	if s.GameEnded {
		return StatusFinished
	}
	return StatusActive
}

// Game is the persisted record of a game. Moves live in their own
// collection and are attached on load.
type Game struct {
	ID          string     `json:"id" bson:"_id"`
	BoardSize   int        `json:"board_size" bson:"board_size"`
	Board       string     `json:"board" bson:"board"`
	Status      Status     `json:"status" bson:"status"`
	Winner      Winner     `json:"winner,omitempty" bson:"winner,omitempty"`
	WinnerID    string     `json:"winner_id,omitempty" bson:"winner_id,omitempty"`
	BlackScore  int        `json:"black_score" bson:"black_score"`
	WhiteScore  int        `json:"white_score" bson:"white_score"`
	PlayerBlack string     `json:"player_black" bson:"player_black"`
	PlayerWhite string     `json:"player_white" bson:"player_white"`
	CreatedAt   time.Time  `json:"created_at" bson:"created_at"`
	FinishedAt  *time.Time `json:"finished_at,omitempty" bson:"finished_at,omitempty"`
	Moves       []Move     `json:"moves,omitempty" bson:"-"`
}

// WinnerPlayerID maps a winner color onto the player holding it.
func (g Game) WinnerPlayerID(w Winner) string {
	switch w {
	case WinnerBlack:
		return g.PlayerBlack
	case WinnerWhite:
		return g.PlayerWhite
	default:
		return ""
	}
}

// Snapshot is what gets written back after every operation.
type Snapshot struct {
	BoardSize  int    `json:"board_size" bson:"board_size"`
	Board      string `json:"board" bson:"board"`
	BlackScore int    `json:"black_score" bson:"black_score"`
	WhiteScore int    `json:"white_score" bson:"white_score"`
	Status     Status `json:"status" bson:"status"`
	Winner     Winner `json:"winner,omitempty" bson:"winner,omitempty"`
}

func SnapshotOf(s GameState) Snapshot {
	return Snapshot{
		BoardSize:  s.Size,
		Board:      s.Board,
		BlackScore: s.BlackScore,
		WhiteScore: s.WhiteScore,
		Status:     s.Status(),
		Winner:     s.Winner,
	}
}

type CreateGameRequest struct {
	BoardSize   int    `json:"board_size"`
	PlayerBlack string `json:"player_black"`
	PlayerWhite string `json:"player_white"`
}

type GameCreateResponse struct {
	GameID string `json:"game_id"`
}

type PlaceStoneRequest struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// BoardPreview is the lightweight view kept in the Redis mirror.
type BoardPreview struct {
	GameID     string    `json:"game_id"`
	BoardSize  int       `json:"board_size"`
	Board      string    `json:"board"`
	Status     Status    `json:"status"`
	Winner     Winner    `json:"winner,omitempty"`
	BlackScore int       `json:"black_score"`
	WhiteScore int       `json:"white_score"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// MoveResult is returned by every mutating game operation.
type MoveResult struct {
	Success        bool      `json:"success"`
	State          GameState `json:"gameState"`
	CapturedStones []Stone   `json:"capturedStones"`
	Move           *Move     `json:"move,omitempty"`
	Persisted      bool      `json:"persisted"`
}

// SimulationRequest carries a client-held position for the stateless
// simulation endpoints.
type SimulationRequest struct {
	X         int       `json:"x"`
	Y         int       `json:"y"`
	GameState GameState `json:"gameState"`
}

// SimulationResetRequest starts a fresh simulation board.
type SimulationResetRequest struct {
	BoardSize int `json:"board_size"`
}

// GameExport is a portable dump of a simulation position.
type GameExport struct {
	BoardSize      int       `json:"boardSize"`
	Board          string    `json:"boardState"`
	Moves          []Move    `json:"moves"`
	CapturedStones []Stone   `json:"capturedStones"`
	CurrentPlayer  Color     `json:"currentPlayer"`
	PassCount      int       `json:"passCount"`
	KoPosition     *Point    `json:"koPosition"`
	GameEnded      bool      `json:"gameEnded"`
	Winner         Winner    `json:"winner"`
	BlackScore     int       `json:"blackScore"`
	WhiteScore     int       `json:"whiteScore"`
	ExportedAt     time.Time `json:"exportedAt"`
}

func ExportOf(s GameState, at time.Time) GameExport {
	return GameExport{
		BoardSize:      s.Size,
		Board:          s.Board,
		Moves:          s.Moves,
		CapturedStones: s.CapturedStones,
		CurrentPlayer:  s.CurrentPlayer,
		PassCount:      s.PassCount,
		KoPosition:     s.KoPosition,
		GameEnded:      s.GameEnded,
		Winner:         s.Winner,
		BlackScore:     s.BlackScore,
		WhiteScore:     s.WhiteScore,
		ExportedAt:     at,
	}
}
