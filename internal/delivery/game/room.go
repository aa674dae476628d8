package game

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"go_arena/internal/domain/game"
)

const (
	wsIdlePingInterval = 30 * time.Second
	wsWriteWait        = 10 * time.Second
	wsSendBuffer       = 16
)

const (
	EventMoveMade    = "move-made"
	EventInvalidMove = "invalid-move"
	EventError       = "error"
)

type socketRequest struct {
	Type string `json:"type"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
}

type socketEvent struct {
	Event    string           `json:"event"`
	PlayerID string           `json:"playerId,omitempty"`
	Result   *game.MoveResult `json:"result,omitempty"`
	Reason   string           `json:"reason,omitempty"`
	Message  string           `json:"message,omitempty"`
}

func moveMadeEvent(playerID string, res game.MoveResult) socketEvent {
	return socketEvent{Event: EventMoveMade, PlayerID: playerID, Result: &res}
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

func newClient(conn *websocket.Conn) *client {
	return &client{conn: conn, send: make(chan []byte, wsSendBuffer)}
}

// sendJSON queues msg without blocking; a client that cannot keep up
// misses the event.
func (c *client) sendJSON(msg socketEvent) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

// writePump owns all writes to the connection until send is closed.
func (c *client) writePump() error {
	ticker := time.NewTicker(wsIdlePingInterval)
	defer ticker.Stop()
	defer c.conn.Close()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return nil
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return err
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return err
			}
		}
	}
}

// Rooms tracks the connected clients of every game.
type Rooms struct {
	log   *zap.SugaredLogger
	mu    sync.Mutex
	games map[string]map[*client]struct{}
}

func NewRooms(log *zap.SugaredLogger) *Rooms {
	return &Rooms{
		log:   log,
		games: make(map[string]map[*client]struct{}),
	}
}

func (r *Rooms) Join(gameID string, c *client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.games[gameID]
	if !ok {
		room = make(map[*client]struct{})
		r.games[gameID] = room
	}
	room[c] = struct{}{}
}

func (r *Rooms) Leave(gameID string, c *client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.games[gameID]
	if !ok {
		return
	}
	if _, ok := room[c]; ok {
		delete(room, c)
		close(c.send)
	}
	if len(room) == 0 {
		delete(r.games, gameID)
	}
}

func (r *Rooms) Broadcast(gameID string, msg socketEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for c := range r.games[gameID] {
		c.sendJSON(msg)
	}
}

func (r *Rooms) Size(gameID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.games[gameID])
}
