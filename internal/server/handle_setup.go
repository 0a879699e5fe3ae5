package server

import (
	"errors"
	"net/http"

	"github.com/playperu/quizbowl/internal/packet"
	"github.com/playperu/quizbowl/internal/quizbowl"
)

const maxPacketBytes = 4 << 20

var errPacketNotConfirmed = errors.New("loading a packet discards every recorded event; retry with ?confirm=true")

// FormatRequest is the request body for PUT /api/games/{gameID}/format.
type FormatRequest struct {
	Name         string               `json:"name,omitempty"`
	CustomFormat *quizbowl.GameFormat `json:"customFormat,omitempty"`
}

// PlayersRequest is the request body for PUT /api/games/{gameID}/players.
type PlayersRequest struct {
	Players []quizbowl.Player `json:"players"`
}

// NewPlayerRequest is the request body for POST /api/games/{gameID}/players.
// The player joins during CycleIndex, or the current cycle when omitted.
type NewPlayerRequest struct {
	Name       string `json:"name"`
	TeamName   string `json:"teamName"`
	CycleIndex *int   `json:"cycleIndex,omitempty"`
}

func hasEvents(g *quizbowl.Game) bool {
	for _, c := range g.Cycles() {
		if !c.IsEmpty() {
			return true
		}
	}
	return false
}

// handleLoadPacket reads a YAML or JSON packet. Replacing a packet that
// already has events requires ?confirm=true.
func handleLoadPacket(games *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		p, err := packet.Parse(http.MaxBytesReader(w, r.Body, maxPacketBytes))
		if err != nil {
			writeDomainError(w, games.logger, &quizbowl.ValidationError{Field: "packet", Message: err.Error()})
			return
		}
		confirmed := r.URL.Query().Get("confirm") == "true"

		id := gameID(r)
		var resp GameStateResponse
		err = games.Update(r.Context(), id, "packet_loaded", func(name string, g *quizbowl.Game) error {
			if hasEvents(g) && !confirmed {
				return errPacketNotConfirmed
			}
			g.LoadPacket(p)
			resp = gameState(id, name, g)
			return nil
		})
		if errors.Is(err, errPacketNotConfirmed) {
			writeError(w, http.StatusPreconditionFailed, err.Error())
			return
		}
		if err != nil {
			writeDomainError(w, games.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func handleSetFormat(games *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req FormatRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Name == "" && req.CustomFormat == nil {
			writeError(w, http.StatusBadRequest, "name or customFormat is required")
			return
		}
		format, err := resolveFormat(req.Name, req.CustomFormat, "")
		if err != nil {
			writeDomainError(w, games.logger, err)
			return
		}

		id := gameID(r)
		var resp GameStateResponse
		err = games.Update(r.Context(), id, "format_changed", func(name string, g *quizbowl.Game) error {
			g.SetGameFormat(format)
			resp = gameState(id, name, g)
			return nil
		})
		if err != nil {
			writeDomainError(w, games.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func handleSetPlayers(games *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req PlayersRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		for _, p := range req.Players {
			if p.Name == "" || p.TeamName == "" {
				writeError(w, http.StatusBadRequest, "every player needs a name and a teamName")
				return
			}
		}

		id := gameID(r)
		var resp GameStateResponse
		err := games.Update(r.Context(), id, "roster_changed", func(name string, g *quizbowl.Game) error {
			g.SetPlayers(req.Players)
			resp = gameState(id, name, g)
			return nil
		})
		if err != nil {
			writeDomainError(w, games.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func handleAddPlayer(games *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req NewPlayerRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		var added quizbowl.Player
		err := games.Update(r.Context(), gameID(r), "player_joined", func(_ string, g *quizbowl.Game) error {
			cycle := g.CycleIndex()
			if req.CycleIndex != nil {
				cycle = *req.CycleIndex
			}
			var err error
			added, err = g.AddNewPlayer(cycle, req.Name, req.TeamName)
			return err
		})
		if err != nil {
			writeDomainError(w, games.logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, added)
	}
}
