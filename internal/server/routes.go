package server

import (
	"github.com/go-chi/chi/v5"
	"github.com/swaggest/swgui/v5emb"
)

func addRoutes(r chi.Router, games *Registry, defaultFormat string) {
	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("Quiz Bowl Scorekeeper API", "/openapi.json", "/docs"))

	r.Get("/api/formats", handleListFormats())
	r.Get("/api/games", handleListGames(games))
	r.Post("/api/games", handleCreateGame(games, defaultFormat))

	// Per-game routes. Reads are open, changes need the moderator pin.
	r.Route("/api/games/{gameID}", func(r chi.Router) {
		r.Use(gameMiddleware(games))
		r.Use(moderatorMiddleware(games))

		r.Get("/", handleGetGame(games))
		r.Delete("/", handleDeleteGame(games))
		r.Get("/dump", handleDumpGame(games))
		r.Get("/score", handleScore(games))
		r.Get("/events", handleEvents(games))

		r.Put("/packet", handleLoadPacket(games))
		r.Put("/format", handleSetFormat(games))
		r.Put("/players", handleSetPlayers(games))
		r.Post("/players", handleAddPlayer(games))
		r.Post("/cursor", handleCursor(games))

		r.Route("/cycles/{cycleIndex}", func(r chi.Router) {
			r.Get("/", handleGetCycle(games))
			r.Post("/events", handleAppendEvent(games))
			r.Delete("/events/{kind}", handleUndoEvent(games))
			r.Post("/buzz", handleBuzz(games))
			r.Post("/throw-out", handleThrowOut(games))
		})

		r.Route("/export", func(r chi.Router) {
			r.Get("/", handleExportStatus(games))
			r.Post("/", handleStartExport(games))
			r.Post("/confirm", handleConfirmExport(games))
			r.Post("/reset", handleResetExport(games))
			r.Delete("/", handleCancelExport(games))
		})
	})
}
