package server

import (
	"net/http"
	"strings"
	"testing"

	"github.com/playperu/quizbowl/internal/quizbowl"
)

func TestCreateAndGetGame(t *testing.T) {
	env := newTestRouter(t)
	id := env.createGame(t, "")

	w := env.do(t, http.MethodGet, "/api/games/"+id, nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := decode[GameStateResponse](t, w)
	if resp.Name != "Round 1" {
		t.Errorf("name = %q", resp.Name)
	}
	if resp.Format.DisplayName != "Standard w/ powers" {
		t.Errorf("default format = %q", resp.Format.DisplayName)
	}
	if resp.CycleCount != 4 || resp.PlayableCycles != 4 {
		t.Errorf("cycles = %d, playable = %d", resp.CycleCount, resp.PlayableCycles)
	}
	if len(resp.Teams) != 2 || resp.Teams[0] != "Lima" {
		t.Errorf("teams = %v", resp.Teams)
	}

	w = env.do(t, http.MethodGet, "/api/games", nil, "")
	list := decode[[]GameSummary](t, w)
	if len(list) != 1 || list[0].ID != id {
		t.Errorf("list = %+v", list)
	}
}

func TestCreateGameValidation(t *testing.T) {
	env := newTestRouter(t)

	tests := []struct {
		name      string
		body      any
		wantCode  int
		wantField string
	}{
		{"bad json", "{", http.StatusBadRequest, ""},
		{"missing name", CreateGameRequest{Name: "  "}, http.StatusBadRequest, ""},
		{"unknown format", CreateGameRequest{Name: "g", Format: "nope"}, http.StatusUnprocessableEntity, "format"},
		{
			"invalid custom format",
			CreateGameRequest{Name: "g", CustomFormat: &quizbowl.GameFormat{RegulationTossupCount: -1}},
			http.StatusUnprocessableEntity, "customFormat",
		},
		{
			"empty packet",
			CreateGameRequest{Name: "g", Packet: &quizbowl.Packet{}},
			http.StatusUnprocessableEntity, "packet",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/api/games", tt.body, "")
			if w.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d: %s", tt.wantCode, w.Code, w.Body.String())
			}
			resp := decode[ErrorResponse](t, w)
			if resp.Field != tt.wantField {
				t.Errorf("field = %q, want %q", resp.Field, tt.wantField)
			}
		})
	}
}

func TestListFormats(t *testing.T) {
	env := newTestRouter(t)
	w := env.do(t, http.MethodGet, "/api/formats", nil, "")
	formats := decode[[]FormatInfo](t, w)
	if len(formats) != len(quizbowl.FormatNames()) {
		t.Fatalf("got %d formats", len(formats))
	}
	if formats[0].Name != "acf" || formats[0].Format.TossupValue != 10 {
		t.Errorf("first format = %+v", formats[0])
	}
}

func TestModeratorPin(t *testing.T) {
	env := newTestRouter(t)
	id := env.createGame(t, "4321")

	// Reads stay open.
	if w := env.do(t, http.MethodGet, "/api/games/"+id+"/score", nil, ""); w.Code != http.StatusOK {
		t.Errorf("score without pin: expected 200, got %d", w.Code)
	}

	cursor := CursorRequest{Action: "next"}
	if w := env.do(t, http.MethodPost, "/api/games/"+id+"/cursor", cursor, ""); w.Code != http.StatusUnauthorized {
		t.Errorf("no pin: expected 401, got %d", w.Code)
	}
	if w := env.do(t, http.MethodPost, "/api/games/"+id+"/cursor", cursor, "1111"); w.Code != http.StatusUnauthorized {
		t.Errorf("wrong pin: expected 401, got %d", w.Code)
	}
	if w := env.do(t, http.MethodPost, "/api/games/"+id+"/cursor", cursor, "4321"); w.Code != http.StatusOK {
		t.Errorf("right pin: expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestUnknownGame(t *testing.T) {
	env := newTestRouter(t)
	w := env.do(t, http.MethodGet, "/api/games/missing", nil, "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if resp := decode[ErrorResponse](t, w); resp.Error != "game not found" {
		t.Errorf("error = %q", resp.Error)
	}
}

func TestDeleteGame(t *testing.T) {
	env := newTestRouter(t)
	id := env.createGame(t, "")

	if w := env.do(t, http.MethodDelete, "/api/games/"+id, nil, ""); w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", w.Code, w.Body.String())
	}
	if w := env.do(t, http.MethodGet, "/api/games/"+id, nil, ""); w.Code != http.StatusNotFound {
		t.Errorf("after delete: expected 404, got %d", w.Code)
	}
}

func TestDumpGame(t *testing.T) {
	env := newTestRouter(t)
	id := env.createGame(t, "")

	w := env.do(t, http.MethodGet, "/api/games/"+id+"/dump", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, id) {
		t.Errorf("content-disposition = %q", cd)
	}
	dump := decode[DumpResponse](t, w)
	if _, err := quizbowl.FromSnapshot(dump.Game); err != nil {
		t.Errorf("dump does not restore: %v", err)
	}
}

func TestSetupEndpoints(t *testing.T) {
	env := newTestRouter(t)
	id := env.createGame(t, "")
	base := "/api/games/" + id

	w := env.do(t, http.MethodPut, base+"/format", FormatRequest{Name: "pace"}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("set format: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if got := decode[GameStateResponse](t, w).Format.DisplayName; got != "PACE NSC" {
		t.Errorf("format = %q", got)
	}
	if w := env.do(t, http.MethodPut, base+"/format", FormatRequest{}, ""); w.Code != http.StatusBadRequest {
		t.Errorf("empty format: expected 400, got %d", w.Code)
	}

	w = env.do(t, http.MethodPost, base+"/players", NewPlayerRequest{Name: "  Dora ", TeamName: "Cusco"}, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("add player: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if p := decode[quizbowl.Player](t, w); p.Name != "Dora" || p.IsStarter {
		t.Errorf("player = %+v", p)
	}

	w = env.do(t, http.MethodPost, base+"/players", NewPlayerRequest{Name: "Dora", TeamName: "Cusco"}, "")
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("duplicate player: expected 422, got %d", w.Code)
	}
	if resp := decode[ErrorResponse](t, w); resp.Field != "name" {
		t.Errorf("field = %q", resp.Field)
	}

	w = env.do(t, http.MethodPut, base+"/players", PlayersRequest{Players: []quizbowl.Player{{Name: "X"}}}, "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("player without team: expected 400, got %d", w.Code)
	}
}

func TestLoadPacket(t *testing.T) {
	env := newTestRouter(t)
	id := env.createGame(t, "")
	base := "/api/games/" + id

	yamlPacket := `
tossups:
  - question: Only one question
    answer: yes
`
	w := env.do(t, http.MethodPut, base+"/packet", yamlPacket, "")
	if w.Code != http.StatusOK {
		t.Fatalf("load packet: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if got := decode[GameStateResponse](t, w).CycleCount; got != 1 {
		t.Errorf("cycle count = %d, want 1", got)
	}

	buzz := BuzzRequest{Player: ana, Position: 0, IsCorrect: true}
	if w := env.do(t, http.MethodPost, base+"/cycles/0/buzz", buzz, ""); w.Code != http.StatusCreated {
		t.Fatalf("buzz: expected 201, got %d: %s", w.Code, w.Body.String())
	}

	w = env.do(t, http.MethodPut, base+"/packet", yamlPacket, "")
	if w.Code != http.StatusPreconditionFailed {
		t.Fatalf("replace without confirm: expected 412, got %d", w.Code)
	}
	w = env.do(t, http.MethodPut, base+"/packet?confirm=true", yamlPacket, "")
	if w.Code != http.StatusOK {
		t.Fatalf("replace with confirm: expected 200, got %d", w.Code)
	}
	if got := scoreOf(decode[GameStateResponse](t, w).Scores, "Lima"); got != 0 {
		t.Errorf("score after reload = %d, want 0", got)
	}

	if w := env.do(t, http.MethodPut, base+"/packet", "tossups: []", ""); w.Code != http.StatusUnprocessableEntity {
		t.Errorf("empty packet: expected 422, got %d", w.Code)
	}
}
