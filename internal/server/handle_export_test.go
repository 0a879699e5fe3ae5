package server

import (
	"context"
	"net/http"
	"testing"

	"github.com/playperu/quizbowl/internal/sheets"
)

const testSheetURL = "https://docs.google.com/spreadsheets/d/abc123/edit"

func TestExportFlow(t *testing.T) {
	env := newTestRouter(t)
	id := env.createGame(t, "")
	base := "/api/games/" + id

	env.do(t, http.MethodPost, base+"/cycles/0/buzz", BuzzRequest{Player: ana, Position: 4, IsCorrect: true}, "")

	w := env.do(t, http.MethodGet, base+"/export", nil, "")
	if st := decode[sheets.Status](t, w); st.State != sheets.NotStarted {
		t.Fatalf("initial state = %q", st.State)
	}

	req := sheets.Request{SheetURL: testSheetURL, Type: sheets.TJSheets, Round: 1}
	w = env.do(t, http.MethodPost, base+"/export", req, "")
	if w.Code != http.StatusOK {
		t.Fatalf("export: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if st := decode[sheets.Status](t, w); st.State != sheets.Done || st.SheetID != "abc123" {
		t.Fatalf("status = %+v", st)
	}

	w = env.do(t, http.MethodGet, base, nil, "")
	if decode[GameStateResponse](t, w).UpdateNeeded {
		t.Error("successful export should clear updateNeeded")
	}
	cells, err := env.store.ReadRound(context.Background(), "abc123", 1)
	if err != nil || len(cells) == 0 {
		t.Fatalf("round not written: %v", err)
	}

	// Exporting the same round again asks before overwriting.
	env.do(t, http.MethodPost, base+"/cycles/1/buzz", BuzzRequest{Player: celia, Position: 4, IsCorrect: true}, "")
	w = env.do(t, http.MethodPost, base+"/export", req, "")
	if st := decode[sheets.Status](t, w); st.State != sheets.OverwritePrompt {
		t.Fatalf("status = %+v, want overwrite prompt", st)
	}
	w = env.do(t, http.MethodPost, base+"/export/confirm", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("confirm: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if st := decode[sheets.Status](t, w); st.State != sheets.Done {
		t.Fatalf("status after confirm = %+v", st)
	}

	if w := env.do(t, http.MethodPost, base+"/export/confirm", nil, ""); w.Code != http.StatusConflict {
		t.Errorf("confirm without prompt: expected 409, got %d", w.Code)
	}

	w = env.do(t, http.MethodPost, base+"/export/reset", nil, "")
	if st := decode[sheets.Status](t, w); st.State != sheets.NotStarted {
		t.Errorf("status after reset = %+v", st)
	}
}

func TestExportCancelAtPrompt(t *testing.T) {
	env := newTestRouter(t)
	id := env.createGame(t, "")
	base := "/api/games/" + id

	if err := env.store.WriteRound(context.Background(), "abc123", sheets.UCSDSheets, 2, [][]string{{"old"}}); err != nil {
		t.Fatalf("seed round: %v", err)
	}

	req := sheets.Request{SheetURL: testSheetURL, Type: sheets.UCSDSheets, Round: 2}
	w := env.do(t, http.MethodPost, base+"/export", req, "")
	if st := decode[sheets.Status](t, w); st.State != sheets.OverwritePrompt {
		t.Fatalf("status = %+v", st)
	}

	w = env.do(t, http.MethodDelete, base+"/export", nil, "")
	if st := decode[sheets.Status](t, w); st.State != sheets.Cancelled {
		t.Fatalf("status after cancel = %+v", st)
	}

	cells, _ := env.store.ReadRound(context.Background(), "abc123", 2)
	if len(cells) != 1 || cells[0][0] != "old" {
		t.Errorf("cancelled export overwrote the round: %v", cells)
	}

	w = env.do(t, http.MethodGet, base, nil, "")
	if !decode[GameStateResponse](t, w).UpdateNeeded {
		t.Error("cancelled export should leave updateNeeded set")
	}
}

func TestExportValidation(t *testing.T) {
	env := newTestRouter(t)
	id := env.createGame(t, "")
	path := "/api/games/" + id + "/export"

	tests := []struct {
		name      string
		req       sheets.Request
		wantField string
	}{
		{"missing url", sheets.Request{Round: 1}, "sheetUrl"},
		{"foreign url", sheets.Request{SheetURL: "https://example.com/x", Round: 1}, "sheetUrl"},
		{"round zero", sheets.Request{SheetURL: testSheetURL}, "round"},
		{"unknown type", sheets.Request{SheetURL: testSheetURL, Round: 1, Type: "xls"}, "type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, path, tt.req, "")
			if w.Code != http.StatusUnprocessableEntity {
				t.Fatalf("expected 422, got %d: %s", w.Code, w.Body.String())
			}
			if resp := decode[ErrorResponse](t, w); resp.Field != tt.wantField {
				t.Errorf("field = %q, want %q", resp.Field, tt.wantField)
			}
		})
	}
}
