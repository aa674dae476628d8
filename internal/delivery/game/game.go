package game

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"go_arena/internal/delivery/auth"
	"go_arena/internal/domain/game"
	errs "go_arena/internal/errors"
	"go_arena/internal/httpresponse"
	gameuc "go_arena/internal/usecase/game"
	"go_arena/internal/utils"
)

type GameHandler struct {
	log     *zap.SugaredLogger
	gameUC  *gameuc.GameUseCase
	players auth.PlayerResolver
	rooms   *Rooms
}

func NewGameHandler(log *zap.SugaredLogger, gameUC *gameuc.GameUseCase, players auth.PlayerResolver) *GameHandler {
	return &GameHandler{
		log:     log,
		gameUC:  gameUC,
		players: players,
		rooms:   NewRooms(log),
	}
}

func (g *GameHandler) Routes(r chi.Router) {
	r.Route("/games", func(r chi.Router) {
		r.Post("/", g.HandleNewGame)
		r.Get("/history", g.HandleHistory)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", g.HandleGetState)
			r.Get("/board", g.HandleGetBoard)
			r.Post("/move", g.HandleMove)
			r.Post("/pass", g.HandlePass)
			r.Post("/resign", g.HandleResign)
			r.Post("/undo", g.HandleUndo)
			r.Get("/ws", g.HandleGameSocket)
		})
	})
	r.Route("/simulation", func(r chi.Router) {
		r.Get("/state", g.HandleSimulationState)
		r.Post("/move", g.HandleSimulationMove)
		r.Post("/undo", g.HandleSimulationUndo)
		r.Post("/reset", g.HandleSimulationReset)
		r.Post("/export", g.HandleSimulationExport)
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errs.ErrIllegalMove),
		errors.Is(err, errs.ErrNothingToUndo),
		errors.Is(err, errs.ErrInvalidQuery),
		errors.Is(err, errs.ErrInvalidSize),
		errors.Is(err, errs.ErrFormat):
		return http.StatusBadRequest
	case errors.Is(err, errs.ErrSessionNotFound):
		return http.StatusUnauthorized
	case errors.Is(err, errs.ErrGameNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrGameFinished):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (g *GameHandler) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		g.log.Error(err)
		httpresponse.WriteErrorResponse(w, status, "Internal server error")
		return
	}
	resp := httpresponse.ErrorResponse{ErrorDescription: err.Error()}
	if reason, ok := errs.IllegalReason(err); ok {
		resp.Reason = string(reason)
	}
	httpresponse.WriteResponseWithStatus(w, status, resp)
}

func (g *GameHandler) HandleNewGame(w http.ResponseWriter, r *http.Request) {
	var req game.CreateGameRequest
	if err := utils.DecodeJSONRequest(r, &req); err != nil {
		g.log.Error("JSON decode error: ", err)
		httpresponse.WriteErrorResponse(w, http.StatusBadRequest, httpresponse.MALFORMEDJSON_errorDesc)
		return
	}

	created, err := g.gameUC.CreateGame(r.Context(), req.BoardSize, req.PlayerBlack, req.PlayerWhite)
	if err != nil {
		g.writeError(w, err)
		return
	}

	g.log.Info("New Game Created with id: " + created.ID)
	httpresponse.WriteResponseWithStatus(w, http.StatusCreated, game.GameCreateResponse{GameID: created.ID})
}

func (g *GameHandler) HandleGetState(w http.ResponseWriter, r *http.Request) {
	state, err := g.gameUC.GetState(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		g.writeError(w, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, state)
}

func (g *GameHandler) HandleGetBoard(w http.ResponseWriter, r *http.Request) {
	preview, err := g.gameUC.GetBoardPreview(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		g.writeError(w, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, preview)
}

// HandleHistory lists a player's games, newest first:
// GET /games/history?userId=...&limit=10&offset=0
func (g *GameHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit, err := intParam(query.Get("limit"))
	if err != nil {
		httpresponse.WriteErrorResponse(w, http.StatusBadRequest, "limit must be a number")
		return
	}
	offset, err := intParam(query.Get("offset"))
	if err != nil {
		httpresponse.WriteErrorResponse(w, http.StatusBadRequest, "offset must be a number")
		return
	}

	games, err := g.gameUC.History(r.Context(), query.Get("userId"), limit, offset)
	if err != nil {
		g.writeError(w, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, games)
}

func intParam(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}

func (g *GameHandler) HandleMove(w http.ResponseWriter, r *http.Request) {
	var req game.PlaceStoneRequest
	if err := utils.DecodeJSONRequest(r, &req); err != nil {
		g.log.Error("JSON decode error: ", err)
		httpresponse.WriteErrorResponse(w, http.StatusBadRequest, httpresponse.MALFORMEDJSON_errorDesc)
		return
	}
	g.mutate(w, r, func(gameID, playerID string) (game.MoveResult, error) {
		return g.gameUC.PlaceStone(r.Context(), gameID, req.X, req.Y, playerID)
	})
}

func (g *GameHandler) HandlePass(w http.ResponseWriter, r *http.Request) {
	g.mutate(w, r, func(gameID, playerID string) (game.MoveResult, error) {
		return g.gameUC.Pass(r.Context(), gameID, playerID)
	})
}

func (g *GameHandler) HandleResign(w http.ResponseWriter, r *http.Request) {
	g.mutate(w, r, func(gameID, playerID string) (game.MoveResult, error) {
		return g.gameUC.Resign(r.Context(), gameID, playerID)
	})
}

func (g *GameHandler) HandleUndo(w http.ResponseWriter, r *http.Request) {
	g.mutate(w, r, func(gameID, playerID string) (game.MoveResult, error) {
		return g.gameUC.Undo(r.Context(), gameID, playerID)
	})
}

// mutate resolves the player, runs op and pushes applied results to the
// game's WebSocket room.
func (g *GameHandler) mutate(w http.ResponseWriter, r *http.Request, op func(gameID, playerID string) (game.MoveResult, error)) {
	playerID, err := g.players.PlayerID(r)
	if err != nil {
		g.writeError(w, err)
		return
	}
	gameID := chi.URLParam(r, "id")

	res, err := op(gameID, playerID)
	if res.Success {
		g.rooms.Broadcast(gameID, moveMadeEvent(playerID, res))
	}
	if err != nil {
		g.writeError(w, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, res)
}
