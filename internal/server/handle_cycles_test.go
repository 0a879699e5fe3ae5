package server

import (
	"net/http"
	"testing"

	"github.com/playperu/quizbowl/internal/quizbowl"
)

func TestBuzzAndBonusScoring(t *testing.T) {
	env := newTestRouter(t)
	id := env.createGame(t, "")
	base := "/api/games/" + id

	// "Alpha beta (*) gamma one": a buzz before the marker is a power.
	w := env.do(t, http.MethodPost, base+"/cycles/0/buzz", BuzzRequest{Player: celia, Position: 1, IsCorrect: false}, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("neg: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	w = env.do(t, http.MethodPost, base+"/cycles/0/buzz", BuzzRequest{Player: ana, Position: 1, IsCorrect: true}, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("power: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	cycle := decode[CycleResponse](t, w)
	if !cycle.Answered || cycle.CorrectTeam != "Lima" {
		t.Errorf("cycle = %+v", cycle)
	}
	if len(cycle.Events) != 2 || cycle.Events[1].TossupAnswer.Marker.Points != 15 {
		t.Errorf("events = %+v", cycle.Events)
	}

	bonus := quizbowl.EventRecord{
		Type: quizbowl.KindBonusAnswer,
		BonusAnswer: &quizbowl.BonusAnswer{
			BonusIndex:    0,
			ReceivingTeam: "Lima",
			CorrectParts:  []quizbowl.BonusPart{{Index: 0, Points: 10}, {Index: 2, Points: 10}},
		},
	}
	if w := env.do(t, http.MethodPost, base+"/cycles/0/events", bonus, ""); w.Code != http.StatusCreated {
		t.Fatalf("bonus: expected 201, got %d: %s", w.Code, w.Body.String())
	}

	w = env.do(t, http.MethodGet, base+"/score", nil, "")
	score := decode[ScoreResponse](t, w)
	if got := scoreOf(score.Scores, "Lima"); got != 35 {
		t.Errorf("Lima = %d, want 35", got)
	}
	if got := scoreOf(score.Scores, "Cusco"); got != -5 {
		t.Errorf("Cusco = %d, want -5", got)
	}
	if len(score.Cycles) != 4 || score.Cycles[0].Bonus["Lima"] != 20 {
		t.Errorf("cycles = %+v", score.Cycles)
	}
}

func TestAppendEventErrors(t *testing.T) {
	env := newTestRouter(t)
	id := env.createGame(t, "")
	base := "/api/games/" + id

	correct := quizbowl.EventRecord{
		Type: quizbowl.KindTossupAnswer,
		TossupAnswer: &quizbowl.TossupAnswer{
			TossupIndex: 1,
			Marker:      quizbowl.BuzzMarker{Player: beto, Position: 4, IsCorrect: true, Points: 10},
		},
	}
	if w := env.do(t, http.MethodPost, base+"/cycles/1/events", correct, ""); w.Code != http.StatusCreated {
		t.Fatalf("first buzz: expected 201, got %d: %s", w.Code, w.Body.String())
	}

	tests := []struct {
		name     string
		path     string
		body     any
		wantCode int
	}{
		{"second correct buzz", base + "/cycles/1/events", correct, http.StatusConflict},
		{"index mismatch", base + "/cycles/2/events", correct, http.StatusConflict},
		{"cycle out of range", base + "/cycles/9/events", correct, http.StatusNotFound},
		{"bad cycle index", base + "/cycles/x/events", correct, http.StatusBadRequest},
		{"tag without payload", base + "/cycles/1/events", quizbowl.EventRecord{Type: quizbowl.KindSubstitution}, http.StatusBadRequest},
		{"bad json", base + "/cycles/1/events", "[", http.StatusBadRequest},
		{
			"bonus for the wrong team",
			base + "/cycles/1/events",
			quizbowl.EventRecord{Type: quizbowl.KindBonusAnswer, BonusAnswer: &quizbowl.BonusAnswer{BonusIndex: 1, ReceivingTeam: "Cusco"}},
			http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, tt.path, tt.body, "")
			if w.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d: %s", tt.wantCode, w.Code, w.Body.String())
			}
		})
	}

	// Rejected events leave the ledger as it was.
	w := env.do(t, http.MethodGet, base+"/cycles/1", nil, "")
	if got := len(decode[CycleResponse](t, w).Events); got != 1 {
		t.Errorf("events = %d, want 1", got)
	}
}

func TestUndoEvent(t *testing.T) {
	env := newTestRouter(t)
	id := env.createGame(t, "")
	base := "/api/games/" + id

	env.do(t, http.MethodPost, base+"/cycles/0/buzz", BuzzRequest{Player: ana, Position: 4, IsCorrect: true}, "")

	w := env.do(t, http.MethodDelete, base+"/cycles/0/events/tossupAnswer", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("undo: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := decode[UndoResponse](t, w)
	if resp.Removed == nil || resp.Removed.TossupAnswer.Marker.Player != ana {
		t.Errorf("removed = %+v", resp.Removed)
	}
	if resp.Cycle.Answered || len(resp.Cycle.Events) != 0 {
		t.Errorf("cycle after undo = %+v", resp.Cycle)
	}

	// Nothing left to undo is not an error.
	w = env.do(t, http.MethodDelete, base+"/cycles/0/events/tossupAnswer", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("empty undo: expected 200, got %d", w.Code)
	}
	if resp := decode[UndoResponse](t, w); resp.Removed != nil {
		t.Errorf("removed = %+v, want nil", resp.Removed)
	}

	if w := env.do(t, http.MethodDelete, base+"/cycles/0/events/nonsense", nil, ""); w.Code != http.StatusBadRequest {
		t.Errorf("unknown kind: expected 400, got %d", w.Code)
	}
}

func TestThrowOut(t *testing.T) {
	env := newTestRouter(t)
	id := env.createGame(t, "")
	base := "/api/games/" + id

	env.do(t, http.MethodPost, base+"/cycles/2/buzz", BuzzRequest{Player: celia, Position: 4, IsCorrect: true}, "")

	w := env.do(t, http.MethodPost, base+"/cycles/2/throw-out", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("throw out: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	cycle := decode[CycleResponse](t, w)
	if !cycle.ThrownOut || cycle.Answered {
		t.Errorf("cycle = %+v", cycle)
	}
	if len(cycle.Events) != 1 || cycle.Events[0].Type != quizbowl.KindThrowOutQuestion {
		t.Errorf("events = %+v", cycle.Events)
	}

	if w := env.do(t, http.MethodPost, base+"/cycles/2/throw-out", nil, ""); w.Code != http.StatusConflict {
		t.Errorf("second throw out: expected 409, got %d", w.Code)
	}
	if w := env.do(t, http.MethodPost, base+"/cycles/2/buzz", BuzzRequest{Player: ana, Position: 0, IsCorrect: true}, ""); w.Code != http.StatusConflict {
		t.Errorf("buzz after throw out: expected 409, got %d", w.Code)
	}

	w = env.do(t, http.MethodGet, base+"/score", nil, "")
	if got := scoreOf(decode[ScoreResponse](t, w).Scores, "Cusco"); got != 0 {
		t.Errorf("Cusco = %d, want 0", got)
	}
}

func TestGetCycle(t *testing.T) {
	env := newTestRouter(t)
	id := env.createGame(t, "")

	w := env.do(t, http.MethodGet, "/api/games/"+id+"/cycles/3", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	cycle := decode[CycleResponse](t, w)
	if cycle.Index != 3 || cycle.Tossup.Answer != "four" || cycle.Bonus == nil {
		t.Errorf("cycle = %+v", cycle)
	}
	if len(cycle.ActivePlayers) != 3 {
		t.Errorf("active players = %v", cycle.ActivePlayers)
	}

	if w := env.do(t, http.MethodGet, "/api/games/"+id+"/cycles/-1", nil, ""); w.Code != http.StatusNotFound {
		t.Errorf("negative index: expected 404, got %d", w.Code)
	}
}

func TestCursor(t *testing.T) {
	env := newTestRouter(t)
	id := env.createGame(t, "")
	path := "/api/games/" + id + "/cursor"

	three := 3
	nine := 9
	tests := []struct {
		name      string
		req       CursorRequest
		wantCode  int
		wantIndex int
	}{
		{"next", CursorRequest{Action: "next"}, http.StatusOK, 1},
		{"previous", CursorRequest{Action: "previous"}, http.StatusOK, 0},
		{"previous at start", CursorRequest{Action: "previous"}, http.StatusOK, 0},
		{"set", CursorRequest{Action: "set", Index: &three}, http.StatusOK, 3},
		{"next at end", CursorRequest{Action: "next"}, http.StatusOK, 3},
		{"set out of range", CursorRequest{Action: "set", Index: &nine}, http.StatusNotFound, 0},
		{"set without index", CursorRequest{Action: "set"}, http.StatusBadRequest, 0},
		{"unknown action", CursorRequest{Action: "jump"}, http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, path, tt.req, "")
			if w.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d: %s", tt.wantCode, w.Code, w.Body.String())
			}
			if tt.wantCode != http.StatusOK {
				return
			}
			if got := decode[CursorResponse](t, w).CycleIndex; got != tt.wantIndex {
				t.Errorf("cycleIndex = %d, want %d", got, tt.wantIndex)
			}
		})
	}
}
