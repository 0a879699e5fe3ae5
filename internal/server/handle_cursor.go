package server

import (
	"net/http"

	"github.com/playperu/quizbowl/internal/quizbowl"
)

// CursorRequest is the request body for POST /api/games/{gameID}/cursor.
// Action is "next", "previous" or "set"; Index is used by "set".
type CursorRequest struct {
	Action string `json:"action"`
	Index  *int   `json:"index,omitempty"`
}

type CursorResponse struct {
	CycleIndex     int `json:"cycleIndex"`
	PlayableCycles int `json:"playableCycles"`
}

func handleCursor(games *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CursorRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		switch req.Action {
		case "next", "previous":
		case "set":
			if req.Index == nil {
				writeError(w, http.StatusBadRequest, "index is required for set")
				return
			}
		default:
			writeError(w, http.StatusBadRequest, `action must be "next", "previous" or "set"`)
			return
		}

		var resp CursorResponse
		err := games.Update(r.Context(), gameID(r), "cursor_moved", func(_ string, g *quizbowl.Game) error {
			switch req.Action {
			case "next":
				g.NextCycle()
			case "previous":
				g.PreviousCycle()
			case "set":
				if err := g.SetCycleIndex(*req.Index); err != nil {
					return err
				}
			}
			resp = CursorResponse{CycleIndex: g.CycleIndex(), PlayableCycles: len(g.PlayableCycles())}
			return nil
		})
		if err != nil {
			writeDomainError(w, games.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
