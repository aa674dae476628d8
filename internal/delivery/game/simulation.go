package game

import (
	"net/http"
	"strconv"
	"time"

	"go_arena/internal/domain/game"
	"go_arena/internal/goban"
	"go_arena/internal/httpresponse"
	"go_arena/internal/utils"
)

// Simulation endpoints are stateless: the client sends the whole position
// and gets the next one back. Nothing is stored.

const defaultSimulationSize = 19

func (g *GameHandler) HandleSimulationState(w http.ResponseWriter, r *http.Request) {
	size := defaultSimulationSize
	if raw := r.URL.Query().Get("board_size"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			httpresponse.WriteErrorResponse(w, http.StatusBadRequest, "board_size must be a number")
			return
		}
		size = parsed
	}
	g.writeEmptySimulation(w, size)
}

// HandleSimulationReset is the POST form of HandleSimulationState.
func (g *GameHandler) HandleSimulationReset(w http.ResponseWriter, r *http.Request) {
	var req game.SimulationResetRequest
	if err := utils.DecodeJSONRequest(r, &req); err != nil {
		g.log.Error("JSON decode error: ", err)
		httpresponse.WriteErrorResponse(w, http.StatusBadRequest, httpresponse.MALFORMEDJSON_errorDesc)
		return
	}
	size := req.BoardSize
	if size == 0 {
		size = defaultSimulationSize
	}
	g.writeEmptySimulation(w, size)
}

func (g *GameHandler) writeEmptySimulation(w http.ResponseWriter, size int) {
	e, err := goban.New(size)
	if err != nil {
		g.writeError(w, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, e.State())
}

// HandleSimulationExport validates a client-held position and returns it
// as a timestamped export document.
func (g *GameHandler) HandleSimulationExport(w http.ResponseWriter, r *http.Request) {
	e, _, ok := g.restoreSimulation(w, r)
	if !ok {
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, game.ExportOf(e.State(), time.Now().UTC()))
}

func (g *GameHandler) HandleSimulationMove(w http.ResponseWriter, r *http.Request) {
	e, req, ok := g.restoreSimulation(w, r)
	if !ok {
		return
	}
	move, err := e.PlaceStone(req.X, req.Y)
	if err != nil {
		g.writeError(w, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, game.MoveResult{
		Success:        true,
		State:          e.State(),
		CapturedStones: move.CapturedStones,
		Move:           &move,
	})
}

func (g *GameHandler) HandleSimulationUndo(w http.ResponseWriter, r *http.Request) {
	e, _, ok := g.restoreSimulation(w, r)
	if !ok {
		return
	}
	undone, err := e.Undo()
	if err != nil {
		g.writeError(w, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, game.MoveResult{
		Success:        true,
		State:          e.State(),
		CapturedStones: undone.CapturedStones,
		Move:           &undone,
	})
}

func (g *GameHandler) restoreSimulation(w http.ResponseWriter, r *http.Request) (*goban.Engine, game.SimulationRequest, bool) {
	var req game.SimulationRequest
	if err := utils.DecodeJSONRequest(r, &req); err != nil {
		g.log.Error("JSON decode error: ", err)
		httpresponse.WriteErrorResponse(w, http.StatusBadRequest, httpresponse.MALFORMEDJSON_errorDesc)
		return nil, req, false
	}
	e, err := goban.Restore(req.GameState)
	if err != nil {
		g.writeError(w, err)
		return nil, req, false
	}
	return e, req, true
}
