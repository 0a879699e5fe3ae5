package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

const pinHeader = "X-Moderator-Pin"

// gameMiddleware rejects requests for games that do not exist.
func gameMiddleware(games *Registry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, err := games.get(r.Context(), chi.URLParam(r, "gameID")); err != nil {
				writeDomainError(w, games.logger, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// moderatorMiddleware requires the game's moderator pin on mutating
// requests. Reads stay open so scoreboards can follow along.
func moderatorMiddleware(games *Registry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}
			if err := games.CheckPin(r.Context(), chi.URLParam(r, "gameID"), r.Header.Get(pinHeader)); err != nil {
				writeDomainError(w, games.logger, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func gameID(r *http.Request) string {
	return chi.URLParam(r, "gameID")
}
