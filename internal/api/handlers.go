package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"grid-clash/internal/grid"
	"grid-clash/internal/sim"
)

type handlers struct {
	view     ViewInterface
	battle   BattleInterface
	renderer FrameRenderer
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// stateResponse wraps the view state with battle progress for clients that
// show a turn counter.
type stateResponse struct {
	Turn  uint64      `json:"turn"`
	Units int         `json:"units"`
	View  interface{} `json:"view"`
}

func (h *handlers) state(w http.ResponseWriter, r *http.Request) {
	resp := stateResponse{
		Turn:  h.battle.Turn(),
		Units: h.battle.UnitCount(),
		View:  h.view.State(),
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

type selectRequest struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (h *handlers) selectCell(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RecordRejected("invalid")
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	h.view.SelectCell(req.Row, req.Col)
	w.WriteHeader(http.StatusAccepted)
}

type placeRequest struct {
	Type string `json:"type"`
	Team string `json:"team"`
	Row  int    `json:"row"`
	Col  int    `json:"col"`
}

func (h *handlers) place(w http.ResponseWriter, r *http.Request) {
	var req placeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RecordRejected("invalid")
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	id, err := h.battle.Place(req.Type, req.Team, grid.Coord{Row: req.Row, Col: req.Col})
	if err != nil {
		// A bad cell or bad type is the client's mistake; only an
		// occupied cell is a conflict with current board state.
		status := http.StatusConflict
		if errors.Is(err, sim.ErrOutOfBounds) || errors.Is(err, sim.ErrUnknownType) {
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{"unitId": id})
}

func (h *handlers) frame(w http.ResponseWriter, r *http.Request) {
	data, err := h.renderer.RenderPNG(h.view.State())
	if err != nil {
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(data)
}
