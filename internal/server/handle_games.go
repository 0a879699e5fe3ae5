package server

import (
	"net/http"
	"strings"

	"github.com/playperu/quizbowl/internal/packet"
	"github.com/playperu/quizbowl/internal/quizbowl"
)

// CreateGameRequest is the request body for POST /api/games.
type CreateGameRequest struct {
	Name         string               `json:"name"`
	ModeratorPin string               `json:"moderatorPin,omitempty"`
	Format       string               `json:"format,omitempty"`
	CustomFormat *quizbowl.GameFormat `json:"customFormat,omitempty"`
	Packet       *quizbowl.Packet     `json:"packet,omitempty"`
	Players      []quizbowl.Player    `json:"players,omitempty"`
}

// GameStateResponse is the moderator's view of a game.
type GameStateResponse struct {
	ID             string               `json:"id"`
	Name           string               `json:"name"`
	Format         quizbowl.GameFormat  `json:"format"`
	Teams          []string             `json:"teams"`
	Players        []quizbowl.Player    `json:"players"`
	CycleIndex     int                  `json:"cycleIndex"`
	CycleCount     int                  `json:"cycleCount"`
	PlayableCycles int                  `json:"playableCycles"`
	UpdateNeeded   bool                 `json:"updateNeeded"`
	Scores         []quizbowl.TeamScore `json:"scores"`
}

// DumpResponse is the full ledger, for recovering a game by hand.
type DumpResponse struct {
	ID   string            `json:"id"`
	Name string            `json:"name"`
	Game quizbowl.Snapshot `json:"game"`
}

// ScoreResponse is the scoreboard with its per-cycle breakdown.
type ScoreResponse struct {
	Scores []quizbowl.TeamScore  `json:"scores"`
	Cycles []quizbowl.CycleScore `json:"cycles"`
}

type FormatInfo struct {
	Name   string              `json:"name"`
	Format quizbowl.GameFormat `json:"format"`
}

func gameState(id, name string, g *quizbowl.Game) GameStateResponse {
	return GameStateResponse{
		ID:             id,
		Name:           name,
		Format:         g.Format(),
		Teams:          g.Teams(),
		Players:        g.Players(),
		CycleIndex:     g.CycleIndex(),
		CycleCount:     len(g.Cycles()),
		PlayableCycles: len(g.PlayableCycles()),
		UpdateNeeded:   g.IsUpdateNeeded(),
		Scores:         g.Scores(),
	}
}

// resolveFormat picks a custom format over a preset name, and the default
// preset when neither is given.
func resolveFormat(name string, custom *quizbowl.GameFormat, fallback string) (quizbowl.GameFormat, error) {
	if custom != nil {
		if err := custom.Validate(); err != nil {
			return quizbowl.GameFormat{}, &quizbowl.ValidationError{Field: "customFormat", Message: err.Error()}
		}
		return *custom, nil
	}
	if strings.TrimSpace(name) == "" {
		name = fallback
	}
	f, err := quizbowl.FormatByName(name)
	if err != nil {
		return quizbowl.GameFormat{}, &quizbowl.ValidationError{Field: "format", Message: err.Error()}
	}
	return f, nil
}

func handleListFormats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out := []FormatInfo{}
		for _, name := range quizbowl.FormatNames() {
			f, _ := quizbowl.FormatByName(name)
			out = append(out, FormatInfo{Name: name, Format: f})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func handleListGames(games *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := games.List(r.Context())
		if err != nil {
			writeDomainError(w, games.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func handleCreateGame(games *Registry, defaultFormat string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateGameRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		req.Name = strings.TrimSpace(req.Name)
		if req.Name == "" {
			writeError(w, http.StatusBadRequest, "name is required")
			return
		}

		format, err := resolveFormat(req.Format, req.CustomFormat, defaultFormat)
		if err != nil {
			writeDomainError(w, games.logger, err)
			return
		}

		g := quizbowl.NewGame()
		g.SetGameFormat(format)
		if req.Packet != nil {
			if err := packet.Validate(*req.Packet); err != nil {
				writeDomainError(w, games.logger, &quizbowl.ValidationError{Field: "packet", Message: err.Error()})
				return
			}
			g.LoadPacket(*req.Packet)
		}
		g.SetPlayers(req.Players)

		id, err := games.Create(r.Context(), req.Name, req.ModeratorPin, g)
		if err != nil {
			writeDomainError(w, games.logger, err)
			return
		}

		var resp GameStateResponse
		err = games.View(r.Context(), id, func(name string, g *quizbowl.Game) error {
			resp = gameState(id, name, g)
			return nil
		})
		if err != nil {
			writeDomainError(w, games.logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, resp)
	}
}

func handleGetGame(games *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := gameID(r)
		var resp GameStateResponse
		err := games.View(r.Context(), id, func(name string, g *quizbowl.Game) error {
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

func handleDeleteGame(games *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := games.Delete(r.Context(), gameID(r)); err != nil {
			writeDomainError(w, games.logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleDumpGame(games *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := gameID(r)
		var resp DumpResponse
		err := games.View(r.Context(), id, func(name string, g *quizbowl.Game) error {
			resp = DumpResponse{ID: id, Name: name, Game: g.Snapshot()}
			return nil
		})
		if err != nil {
			writeDomainError(w, games.logger, err)
			return
		}
		w.Header().Set("Content-Disposition", `attachment; filename="game-`+id+`.json"`)
		writeJSON(w, http.StatusOK, resp)
	}
}

func handleScore(games *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var resp ScoreResponse
		err := games.View(r.Context(), gameID(r), func(_ string, g *quizbowl.Game) error {
			resp = ScoreResponse{Scores: g.Scores(), Cycles: g.CycleScores()}
			return nil
		})
		if err != nil {
			writeDomainError(w, games.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
