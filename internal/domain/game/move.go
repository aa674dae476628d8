package game

// Color is the content of a single board cell.
type Color int8

const (
	Empty Color = iota
	Black
	White
)

func (c Color) Opponent() Color {
	switch c {
	case Black:
		return White
	case White:
		return Black
	default:
		return Empty
	}
}

func (c Color) String() string {
	switch c {
	case Black:
		return "black"
	case White:
		return "white"
	default:
		return ""
	}
}

// Digit is the character used for the color in the canonical board string.
func (c Color) Digit() byte {
	return '0' + byte(c)
}

func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Color) UnmarshalText(text []byte) error {
	switch string(text) {
	case "black", "1":
		*c = Black
	case "white", "2":
		*c = White
	default:
		*c = Empty
	}
	return nil
}

// ColorForMove returns the color that plays the move with the given
// 0-based index in the log. Black always opens.
func ColorForMove(index int) Color {
	if index%2 == 0 {
		return Black
	}
	return White
}

type Point struct {
	X int `json:"x" bson:"x"`
	Y int `json:"y" bson:"y"`
}

type Stone struct {
	X     int   `json:"x" bson:"x"`
	Y     int   `json:"y" bson:"y"`
	Color Color `json:"color" bson:"color"`
}

func (s Stone) Point() Point {
	return Point{X: s.X, Y: s.Y}
}

// @name Move
type Move struct {
	Number         int     `json:"moveNumber" bson:"move_number"`
	X              *int    `json:"x" bson:"x"`
	Y              *int    `json:"y" bson:"y"`
	IsPass         bool    `json:"isPass" bson:"is_pass"`
	IsResign       bool    `json:"isResign" bson:"is_resign"`
	Color          Color   `json:"color" bson:"color"`
	PlayerID       string  `json:"playerId,omitempty" bson:"player_id,omitempty"`
	CapturedStones []Stone `json:"capturedStones" bson:"captured_stones"`
}

func (m Move) IsPlacement() bool {
	return !m.IsPass && !m.IsResign && m.X != nil && m.Y != nil
}

func PlacementMove(number, x, y int, color Color, captured []Stone) Move {
	return Move{
		Number:         number,
		X:              &x,
		Y:              &y,
		Color:          color,
		CapturedStones: captured,
	}
}

// Clone returns a copy that shares no memory with m.
func (m Move) Clone() Move {
	c := m
	if m.X != nil {
		x := *m.X
		c.X = &x
	}
	if m.Y != nil {
		y := *m.Y
		c.Y = &y
	}
	if m.CapturedStones != nil {
		c.CapturedStones = make([]Stone, len(m.CapturedStones))
		copy(c.CapturedStones, m.CapturedStones)
	}
	return c
}
