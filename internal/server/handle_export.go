package server

import (
	"net/http"

	"github.com/playperu/quizbowl/internal/quizbowl"
	"github.com/playperu/quizbowl/internal/sheets"
)

func scoresheet(r *http.Request, games *Registry) (sheets.Scoresheet, *sheets.Exporter, error) {
	var ss sheets.Scoresheet
	err := games.View(r.Context(), gameID(r), func(_ string, g *quizbowl.Game) error {
		ss = sheets.NewScoresheet(g)
		return nil
	})
	if err != nil {
		return ss, nil, err
	}
	exp, err := games.Exporter(r.Context(), gameID(r))
	return ss, exp, err
}

func handleStartExport(games *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req sheets.Request
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		ss, exp, err := scoresheet(r, games)
		if err != nil {
			writeDomainError(w, games.logger, err)
			return
		}
		st, err := exp.Start(r.Context(), req, ss)
		if err != nil {
			writeDomainError(w, games.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, st)
	}
}

func handleConfirmExport(games *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ss, exp, err := scoresheet(r, games)
		if err != nil {
			writeDomainError(w, games.logger, err)
			return
		}
		st, err := exp.Confirm(r.Context(), ss)
		if err != nil {
			writeDomainError(w, games.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, st)
	}
}

func handleCancelExport(games *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		exp, err := games.Exporter(r.Context(), gameID(r))
		if err != nil {
			writeDomainError(w, games.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, exp.Cancel())
	}
}

func handleExportStatus(games *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		exp, err := games.Exporter(r.Context(), gameID(r))
		if err != nil {
			writeDomainError(w, games.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, exp.Status())
	}
}

func handleResetExport(games *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		exp, err := games.Exporter(r.Context(), gameID(r))
		if err != nil {
			writeDomainError(w, games.logger, err)
			return
		}
		if err := exp.Reset(); err != nil {
			writeDomainError(w, games.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, exp.Status())
	}
}
