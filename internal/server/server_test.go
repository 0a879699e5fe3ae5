package server

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/playperu/quizbowl/internal/database"
	"github.com/playperu/quizbowl/internal/migrations"
	"github.com/playperu/quizbowl/internal/quizbowl"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := migrations.Run(db); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	return db
}

type testEnv struct {
	router *chi.Mux
	games  *Registry
	store  *DocStore
}

// newTestRouter wires the API on an in-memory database. Saves only happen
// on Flush.
func newTestRouter(t *testing.T) testEnv {
	t.Helper()
	store := NewDocStore(newTestDB(t))
	games := NewRegistry(store, store, NewBroker(), discardLogger(), time.Hour)
	t.Cleanup(func() { games.Flush(context.Background()) })

	r := chi.NewRouter()
	addRoutes(r, games, "powers")
	return testEnv{router: r, games: games, store: store}
}

// do sends body as JSON unless it is already a string.
func (e testEnv) do(t *testing.T, method, path string, body any, pin string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rd = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, rd)
	if pin != "" {
		req.Header.Set(pinHeader, pin)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	return v
}

func testPacket() *quizbowl.Packet {
	p := &quizbowl.Packet{}
	for _, q := range []string{"one", "two", "three", "four"} {
		p.Tossups = append(p.Tossups, quizbowl.Tossup{
			Question: "Alpha beta (*) gamma " + q,
			Answer:   q,
		})
		p.Bonuses = append(p.Bonuses, quizbowl.Bonus{
			Leadin: "Bonus " + q,
			Parts: []quizbowl.BonusQuestion{
				{Question: "a", Answer: "a"},
				{Question: "b", Answer: "b"},
				{Question: "c", Answer: "c"},
			},
		})
	}
	return p
}

var (
	ana   = quizbowl.PlayerRef{Name: "Ana", TeamName: "Lima"}
	beto  = quizbowl.PlayerRef{Name: "Beto", TeamName: "Lima"}
	celia = quizbowl.PlayerRef{Name: "Celia", TeamName: "Cusco"}
)

// createGame creates a four-question game between Lima and Cusco.
func (e testEnv) createGame(t *testing.T, pin string) string {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/games", CreateGameRequest{
		Name:         "Round 1",
		ModeratorPin: pin,
		Packet:       testPacket(),
		Players: []quizbowl.Player{
			{Name: ana.Name, TeamName: ana.TeamName, IsStarter: true},
			{Name: beto.Name, TeamName: beto.TeamName, IsStarter: true},
			{Name: celia.Name, TeamName: celia.TeamName, IsStarter: true},
		},
	}, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("create game: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	return decode[GameStateResponse](t, w).ID
}

func scoreOf(scores []quizbowl.TeamScore, team string) int {
	for _, s := range scores {
		if s.Team == team {
			return s.Score
		}
	}
	return 0
}
