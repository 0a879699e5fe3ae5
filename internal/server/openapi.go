package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"

	"github.com/playperu/quizbowl/internal/quizbowl"
	"github.com/playperu/quizbowl/internal/sheets"
)

// ErrorResponse is returned for all error responses. Field names the
// offending input on validation failures.
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// HealthResponse maps each checked dependency to its status.
type HealthResponse map[string]struct {
	Status string `json:"status"`
}

type gamePath struct {
	GameID string `path:"gameID"`
}

type moderatorHeader struct {
	Pin string `header:"X-Moderator-Pin" description:"Moderator pin, required when the game has one."`
}

type packetQuery struct {
	Confirm bool `query:"confirm" description:"Replace a packet that already has recorded events."`
}

type cyclePath struct {
	GameID     string `path:"gameID"`
	CycleIndex int    `path:"cycleIndex"`
}

type undoPath struct {
	GameID     string `path:"gameID"`
	CycleIndex int    `path:"cycleIndex"`
	Kind       string `path:"kind" enum:"tossupAnswer,bonusAnswer,tossupProtest,bonusProtest,substitution,playerJoins,throwOutQuestion"`
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "Quiz Bowl Scorekeeper API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Moderator API for recording and scoring quiz bowl games.")

	// GET /healthz
	getHealthz, _ := r.NewOperationContext(http.MethodGet, "/healthz")
	getHealthz.SetSummary("Health check")
	getHealthz.SetDescription("Returns the health status of the game store.")
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(getHealthz)

	// GET /ws/games/{gameID}
	getFeed, _ := r.NewOperationContext(http.MethodGet, "/ws/games/{gameID}")
	getFeed.SetSummary("Scoreboard feed")
	getFeed.SetDescription("Upgrades to a WebSocket connection that pushes the game's scores after every change.")
	getFeed.AddReqStructure(gamePath{})
	getFeed.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusSwitchingProtocols),
		openapi.WithContentType("text/plain"))
	_ = r.AddOperation(getFeed)

	// GET /api/formats
	listFormats, _ := r.NewOperationContext(http.MethodGet, "/api/formats")
	listFormats.SetSummary("List formats")
	listFormats.SetDescription("Returns the built-in game format presets.")
	listFormats.AddRespStructure([]FormatInfo{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(listFormats)

	// GET /api/games
	listGames, _ := r.NewOperationContext(http.MethodGet, "/api/games")
	listGames.SetSummary("List games")
	listGames.SetDescription("Returns every stored game with its teams and question count.")
	listGames.AddRespStructure([]GameSummary{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(listGames)

	// POST /api/games
	createGame, _ := r.NewOperationContext(http.MethodPost, "/api/games")
	createGame.SetSummary("Create game")
	createGame.SetDescription("Creates a game from a format, an optional packet and a roster.")
	createGame.AddReqStructure(CreateGameRequest{})
	createGame.AddRespStructure(GameStateResponse{}, openapi.WithHTTPStatus(http.StatusCreated))
	createGame.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	createGame.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnprocessableEntity))
	_ = r.AddOperation(createGame)

	// GET /api/games/{gameID}
	getGame, _ := r.NewOperationContext(http.MethodGet, "/api/games/{gameID}")
	getGame.SetSummary("Get game")
	getGame.SetDescription("Returns the game's format, roster, cursor and scores.")
	getGame.AddReqStructure(gamePath{})
	getGame.AddRespStructure(GameStateResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getGame.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getGame)

	// DELETE /api/games/{gameID}
	deleteGame, _ := r.NewOperationContext(http.MethodDelete, "/api/games/{gameID}")
	deleteGame.SetSummary("Delete game")
	deleteGame.AddReqStructure(gamePath{})
	deleteGame.AddReqStructure(moderatorHeader{})
	deleteGame.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusNoContent))
	deleteGame.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	deleteGame.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(deleteGame)

	// GET /api/games/{gameID}/dump
	dumpGame, _ := r.NewOperationContext(http.MethodGet, "/api/games/{gameID}/dump")
	dumpGame.SetSummary("Dump game")
	dumpGame.SetDescription("Downloads the full event ledger as JSON.")
	dumpGame.AddReqStructure(gamePath{})
	dumpGame.AddRespStructure(DumpResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	dumpGame.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(dumpGame)

	// GET /api/games/{gameID}/score
	getScore, _ := r.NewOperationContext(http.MethodGet, "/api/games/{gameID}/score")
	getScore.SetSummary("Get score")
	getScore.SetDescription("Returns team totals and the per-cycle breakdown over playable cycles.")
	getScore.AddReqStructure(gamePath{})
	getScore.AddRespStructure(ScoreResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getScore.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getScore)

	// GET /api/games/{gameID}/events
	getEvents, _ := r.NewOperationContext(http.MethodGet, "/api/games/{gameID}/events")
	getEvents.SetSummary("SSE event stream")
	getEvents.SetDescription("Server-Sent Events stream of score updates. The first event is the current state.")
	getEvents.AddReqStructure(gamePath{})
	getEvents.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK),
		openapi.WithContentType("text/event-stream"))
	_ = r.AddOperation(getEvents)

	// PUT /api/games/{gameID}/packet
	putPacket, _ := r.NewOperationContext(http.MethodPut, "/api/games/{gameID}/packet")
	putPacket.SetSummary("Load packet")
	putPacket.SetDescription("Replaces the packet with a YAML or JSON document. Every cycle is reset.")
	putPacket.AddReqStructure(gamePath{})
	putPacket.AddReqStructure(packetQuery{})
	putPacket.AddReqStructure(moderatorHeader{})
	putPacket.AddReqStructure(quizbowl.Packet{})
	putPacket.AddRespStructure(GameStateResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	putPacket.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusPreconditionFailed))
	putPacket.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnprocessableEntity))
	_ = r.AddOperation(putPacket)

	// PUT /api/games/{gameID}/format
	putFormat, _ := r.NewOperationContext(http.MethodPut, "/api/games/{gameID}/format")
	putFormat.SetSummary("Set format")
	putFormat.SetDescription("Switches to a preset or custom format. Recorded tossup points are kept.")
	putFormat.AddReqStructure(gamePath{})
	putFormat.AddReqStructure(moderatorHeader{})
	putFormat.AddReqStructure(FormatRequest{})
	putFormat.AddRespStructure(GameStateResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	putFormat.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	putFormat.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnprocessableEntity))
	_ = r.AddOperation(putFormat)

	// PUT /api/games/{gameID}/players
	putPlayers, _ := r.NewOperationContext(http.MethodPut, "/api/games/{gameID}/players")
	putPlayers.SetSummary("Set roster")
	putPlayers.SetDescription("Replaces the starting roster.")
	putPlayers.AddReqStructure(gamePath{})
	putPlayers.AddReqStructure(moderatorHeader{})
	putPlayers.AddReqStructure(PlayersRequest{})
	putPlayers.AddRespStructure(GameStateResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	putPlayers.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	_ = r.AddOperation(putPlayers)

	// POST /api/games/{gameID}/players
	addPlayer, _ := r.NewOperationContext(http.MethodPost, "/api/games/{gameID}/players")
	addPlayer.SetSummary("Add player")
	addPlayer.SetDescription("Adds a player who joins mid-game, recorded on the given or current cycle.")
	addPlayer.AddReqStructure(gamePath{})
	addPlayer.AddReqStructure(moderatorHeader{})
	addPlayer.AddReqStructure(NewPlayerRequest{})
	addPlayer.AddRespStructure(quizbowl.Player{}, openapi.WithHTTPStatus(http.StatusCreated))
	addPlayer.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnprocessableEntity))
	_ = r.AddOperation(addPlayer)

	// POST /api/games/{gameID}/cursor
	postCursor, _ := r.NewOperationContext(http.MethodPost, "/api/games/{gameID}/cursor")
	postCursor.SetSummary("Move cursor")
	postCursor.SetDescription("Moves to the next, previous or a given cycle.")
	postCursor.AddReqStructure(gamePath{})
	postCursor.AddReqStructure(moderatorHeader{})
	postCursor.AddReqStructure(CursorRequest{})
	postCursor.AddRespStructure(CursorResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postCursor.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postCursor.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(postCursor)

	// GET /api/games/{gameID}/cycles/{cycleIndex}
	getCycle, _ := r.NewOperationContext(http.MethodGet, "/api/games/{gameID}/cycles/{cycleIndex}")
	getCycle.SetSummary("Get cycle")
	getCycle.SetDescription("Returns one question with its events and active players.")
	getCycle.AddReqStructure(cyclePath{})
	getCycle.AddRespStructure(CycleResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getCycle.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getCycle)

	// POST /api/games/{gameID}/cycles/{cycleIndex}/events
	postEvent, _ := r.NewOperationContext(http.MethodPost, "/api/games/{gameID}/cycles/{cycleIndex}/events")
	postEvent.SetSummary("Record event")
	postEvent.SetDescription("Validates and appends an event to the cycle. Invalid events change nothing.")
	postEvent.AddReqStructure(cyclePath{})
	postEvent.AddReqStructure(moderatorHeader{})
	postEvent.AddReqStructure(quizbowl.EventRecord{})
	postEvent.AddRespStructure(CycleResponse{}, openapi.WithHTTPStatus(http.StatusCreated))
	postEvent.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postEvent.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	postEvent.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postEvent)

	// DELETE /api/games/{gameID}/cycles/{cycleIndex}/events/{kind}
	undoEvent, _ := r.NewOperationContext(http.MethodDelete, "/api/games/{gameID}/cycles/{cycleIndex}/events/{kind}")
	undoEvent.SetSummary("Undo event")
	undoEvent.SetDescription("Removes the newest event of a kind from the cycle.")
	undoEvent.AddReqStructure(undoPath{})
	undoEvent.AddReqStructure(moderatorHeader{})
	undoEvent.AddRespStructure(UndoResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	undoEvent.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	undoEvent.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(undoEvent)

	// POST /api/games/{gameID}/cycles/{cycleIndex}/buzz
	postBuzz, _ := r.NewOperationContext(http.MethodPost, "/api/games/{gameID}/cycles/{cycleIndex}/buzz")
	postBuzz.SetSummary("Record buzz")
	postBuzz.SetDescription("Records a tossup buzz, valuing it from the word position and the current format.")
	postBuzz.AddReqStructure(cyclePath{})
	postBuzz.AddReqStructure(moderatorHeader{})
	postBuzz.AddReqStructure(BuzzRequest{})
	postBuzz.AddRespStructure(CycleResponse{}, openapi.WithHTTPStatus(http.StatusCreated))
	postBuzz.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postBuzz)

	// POST /api/games/{gameID}/cycles/{cycleIndex}/throw-out
	postThrowOut, _ := r.NewOperationContext(http.MethodPost, "/api/games/{gameID}/cycles/{cycleIndex}/throw-out")
	postThrowOut.SetSummary("Throw out question")
	postThrowOut.SetDescription("Clears the cycle's answers and marks the question thrown out.")
	postThrowOut.AddReqStructure(cyclePath{})
	postThrowOut.AddReqStructure(moderatorHeader{})
	postThrowOut.AddRespStructure(CycleResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postThrowOut.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(postThrowOut)

	// GET /api/games/{gameID}/export
	getExport, _ := r.NewOperationContext(http.MethodGet, "/api/games/{gameID}/export")
	getExport.SetSummary("Export status")
	getExport.AddReqStructure(gamePath{})
	getExport.AddRespStructure(sheets.Status{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getExport)

	// POST /api/games/{gameID}/export
	postExport, _ := r.NewOperationContext(http.MethodPost, "/api/games/{gameID}/export")
	postExport.SetSummary("Start export")
	postExport.SetDescription("Writes the scoresheet to a spreadsheet round. Stops at a prompt when the round already has data.")
	postExport.AddReqStructure(gamePath{})
	postExport.AddReqStructure(moderatorHeader{})
	postExport.AddReqStructure(sheets.Request{})
	postExport.AddRespStructure(sheets.Status{}, openapi.WithHTTPStatus(http.StatusOK))
	postExport.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	postExport.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnprocessableEntity))
	_ = r.AddOperation(postExport)

	// POST /api/games/{gameID}/export/confirm
	confirmExport, _ := r.NewOperationContext(http.MethodPost, "/api/games/{gameID}/export/confirm")
	confirmExport.SetSummary("Confirm overwrite")
	confirmExport.SetDescription("Accepts the overwrite prompt and writes the round.")
	confirmExport.AddReqStructure(gamePath{})
	confirmExport.AddReqStructure(moderatorHeader{})
	confirmExport.AddRespStructure(sheets.Status{}, openapi.WithHTTPStatus(http.StatusOK))
	confirmExport.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(confirmExport)

	// POST /api/games/{gameID}/export/reset
	resetExport, _ := r.NewOperationContext(http.MethodPost, "/api/games/{gameID}/export/reset")
	resetExport.SetSummary("Reset export")
	resetExport.SetDescription("Returns a finished, failed or cancelled export to its initial state.")
	resetExport.AddReqStructure(gamePath{})
	resetExport.AddReqStructure(moderatorHeader{})
	resetExport.AddRespStructure(sheets.Status{}, openapi.WithHTTPStatus(http.StatusOK))
	resetExport.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(resetExport)

	// DELETE /api/games/{gameID}/export
	cancelExport, _ := r.NewOperationContext(http.MethodDelete, "/api/games/{gameID}/export")
	cancelExport.SetSummary("Cancel export")
	cancelExport.AddReqStructure(gamePath{})
	cancelExport.AddReqStructure(moderatorHeader{})
	cancelExport.AddRespStructure(sheets.Status{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(cancelExport)

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
