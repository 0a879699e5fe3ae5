package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/playperu/quizbowl/internal/quizbowl"
)

// CycleResponse is one question of a game with everything recorded on it.
type CycleResponse struct {
	Index         int                    `json:"index"`
	Tossup        quizbowl.Tossup        `json:"tossup"`
	Bonus         *quizbowl.Bonus        `json:"bonus,omitempty"`
	IsOvertime    bool                   `json:"isOvertime"`
	ThrownOut     bool                   `json:"thrownOut"`
	Answered      bool                   `json:"answered"`
	CorrectTeam   string                 `json:"correctTeam,omitempty"`
	ActivePlayers []quizbowl.Player      `json:"activePlayers"`
	Events        []quizbowl.EventRecord `json:"events"`
}

// BuzzRequest is the request body for POST .../cycles/{cycleIndex}/buzz.
// Points are computed from the position and the current format.
type BuzzRequest struct {
	Player    quizbowl.PlayerRef `json:"player"`
	Position  int                `json:"position"`
	IsCorrect bool               `json:"isCorrect"`
}

// UndoResponse reports the event removed by an undo, if any.
type UndoResponse struct {
	Removed *quizbowl.EventRecord `json:"removed"`
	Cycle   CycleResponse         `json:"cycle"`
}

func cycleResponse(g *quizbowl.Game, index int) (CycleResponse, error) {
	c, err := g.Cycle(index)
	if err != nil {
		return CycleResponse{}, err
	}
	active, err := g.ActivePlayers(index)
	if err != nil {
		return CycleResponse{}, err
	}

	p := g.Packet()
	resp := CycleResponse{
		Index:         index,
		Tossup:        p.Tossups[index],
		IsOvertime:    g.Format().IsOvertime(index),
		ThrownOut:     c.IsThrownOut(),
		Answered:      c.IsAnswered(),
		ActivePlayers: active,
		Events:        []quizbowl.EventRecord{},
	}
	if index < len(p.Bonuses) {
		resp.Bonus = &p.Bonuses[index]
	}
	if team, ok := c.CorrectTeam(); ok {
		resp.CorrectTeam = team
	}
	if resp.ActivePlayers == nil {
		resp.ActivePlayers = []quizbowl.Player{}
	}
	for _, ev := range c.Events() {
		resp.Events = append(resp.Events, quizbowl.RecordOf(ev))
	}
	return resp, nil
}

func cycleParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	idx, err := strconv.Atoi(chi.URLParam(r, "cycleIndex"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid cycle index")
		return 0, false
	}
	return idx, true
}

func handleGetCycle(games *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		idx, ok := cycleParam(w, r)
		if !ok {
			return
		}
		var resp CycleResponse
		err := games.View(r.Context(), gameID(r), func(_ string, g *quizbowl.Game) error {
			var err error
			resp, err = cycleResponse(g, idx)
			return err
		})
		if err != nil {
			writeDomainError(w, games.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func handleAppendEvent(games *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		idx, ok := cycleParam(w, r)
		if !ok {
			return
		}
		var rec quizbowl.EventRecord
		if err := readJSON(r, &rec); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		ev, err := rec.Event()
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		var resp CycleResponse
		err = games.Update(r.Context(), gameID(r), "event_appended", func(_ string, g *quizbowl.Game) error {
			if err := g.AppendEvent(idx, ev); err != nil {
				return err
			}
			var err error
			resp, err = cycleResponse(g, idx)
			return err
		})
		if err != nil {
			writeDomainError(w, games.logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, resp)
	}
}

func handleBuzz(games *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		idx, ok := cycleParam(w, r)
		if !ok {
			return
		}
		var req BuzzRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		var resp CycleResponse
		err := games.Update(r.Context(), gameID(r), "event_appended", func(_ string, g *quizbowl.Game) error {
			points, err := g.BuzzPoints(idx, req.Position, req.IsCorrect)
			if err != nil {
				return err
			}
			ev := quizbowl.TossupAnswer{
				TossupIndex: idx,
				Marker: quizbowl.BuzzMarker{
					Player:    req.Player,
					Position:  req.Position,
					IsCorrect: req.IsCorrect,
					Points:    points,
				},
			}
			if err := g.AppendEvent(idx, ev); err != nil {
				return err
			}
			resp, err = cycleResponse(g, idx)
			return err
		})
		if err != nil {
			writeDomainError(w, games.logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, resp)
	}
}

func handleThrowOut(games *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		idx, ok := cycleParam(w, r)
		if !ok {
			return
		}
		var resp CycleResponse
		err := games.Update(r.Context(), gameID(r), "question_thrown_out", func(_ string, g *quizbowl.Game) error {
			if err := g.ThrowOutCycle(idx); err != nil {
				return err
			}
			var err error
			resp, err = cycleResponse(g, idx)
			return err
		})
		if err != nil {
			writeDomainError(w, games.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// handleUndoEvent removes the newest event of a kind from a cycle. Undoing
// on a cycle with nothing of that kind succeeds with a null removed field.
func handleUndoEvent(games *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		idx, ok := cycleParam(w, r)
		if !ok {
			return
		}
		kind, ok := quizbowl.ParseEventKind(chi.URLParam(r, "kind"))
		if !ok {
			writeError(w, http.StatusBadRequest, "unknown event kind")
			return
		}

		var resp UndoResponse
		err := games.Update(r.Context(), gameID(r), "event_undone", func(_ string, g *quizbowl.Game) error {
			removed, err := g.RemoveLastEvent(idx, kind)
			if err != nil {
				return err
			}
			if removed != nil {
				rec := quizbowl.RecordOf(removed)
				resp.Removed = &rec
			}
			resp.Cycle, err = cycleResponse(g, idx)
			return err
		})
		if err != nil {
			writeDomainError(w, games.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
