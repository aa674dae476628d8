package game

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"go_arena/internal/domain/game"
	errs "go_arena/internal/errors"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleGameSocket joins the caller to the game's room. Moves sent over the
// socket go through the same use case as the HTTP endpoints.
func (g *GameHandler) HandleGameSocket(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "id")
	playerID, err := g.players.PlayerID(r)
	if err != nil {
		g.writeError(w, err)
		return
	}
	if _, err := g.gameUC.GetState(r.Context(), gameID); err != nil {
		g.writeError(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.log.Error("upgrade error: ", err)
		return
	}

	c := newClient(conn)
	g.rooms.Join(gameID, c)
	defer g.rooms.Leave(gameID, c)
	go func() {
		if err := c.writePump(); err != nil {
			g.log.Warnf("game %s: write to %q failed: %v", gameID, playerID, err)
		}
	}()

	g.log.Infof("player %q joined game %s", playerID, gameID)
	ctx := context.WithoutCancel(r.Context())
	for {
		var req socketRequest
		if err := conn.ReadJSON(&req); err != nil {
			var closeErr *websocket.CloseError
			if !errors.As(err, &closeErr) {
				g.log.Warnf("game %s: read from %q failed: %v", gameID, playerID, err)
			}
			return
		}
		g.handleSocketRequest(ctx, c, gameID, playerID, req)
	}
}

func (g *GameHandler) handleSocketRequest(ctx context.Context, c *client, gameID, playerID string, req socketRequest) {
	var (
		res game.MoveResult
		err error
	)
	switch req.Type {
	case "move":
		res, err = g.gameUC.PlaceStone(ctx, gameID, req.X, req.Y, playerID)
	case "pass":
		res, err = g.gameUC.Pass(ctx, gameID, playerID)
	case "resign":
		res, err = g.gameUC.Resign(ctx, gameID, playerID)
	default:
		c.sendJSON(socketEvent{Event: EventError, Message: "unknown message type " + req.Type})
		return
	}

	if res.Success {
		g.rooms.Broadcast(gameID, moveMadeEvent(playerID, res))
	}
	if err == nil {
		return
	}
	if reason, ok := errs.IllegalReason(err); ok {
		c.sendJSON(socketEvent{Event: EventInvalidMove, Reason: string(reason), Message: err.Error()})
		return
	}
	if statusFor(err) == http.StatusInternalServerError {
		g.log.Errorf("game %s: %v", gameID, err)
	}
	c.sendJSON(socketEvent{Event: EventError, Message: err.Error()})
}
