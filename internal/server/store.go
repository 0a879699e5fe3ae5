package server

import (
	"context"
	"errors"
	"time"

	"github.com/playperu/quizbowl/internal/quizbowl"
)

var ErrNotFound = errors.New("not found")

// gameDoc is the durable form of a game: its metadata plus the full ledger
// snapshot.
type gameDoc struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	PinHash   string            `json:"pinHash,omitempty"`
	CreatedAt string            `json:"createdAt"`
	UpdatedAt string            `json:"updatedAt"`
	Snapshot  quizbowl.Snapshot `json:"snapshot"`
}

// GameSummary is one entry of the game list.
type GameSummary struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Teams        []string `json:"teams"`
	Questions    int      `json:"questions"`
	UpdateNeeded bool     `json:"updateNeeded"`
	HasPin       bool     `json:"hasPin"`
	CreatedAt    string   `json:"createdAt"`
	UpdatedAt    string   `json:"updatedAt"`
}

func (d gameDoc) summary() GameSummary {
	var teams []string
	seen := make(map[string]struct{})
	for _, p := range d.Snapshot.Players {
		if _, ok := seen[p.TeamName]; ok {
			continue
		}
		seen[p.TeamName] = struct{}{}
		teams = append(teams, p.TeamName)
	}
	return GameSummary{
		ID:           d.ID,
		Name:         d.Name,
		Teams:        teams,
		Questions:    d.Snapshot.Packet.Len(),
		UpdateNeeded: d.Snapshot.UpdateNeeded,
		HasPin:       d.PinHash != "",
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

// Store persists game documents. Implementations also serve as the
// spreadsheet backend for exports.
type Store interface {
	ListGames(ctx context.Context) ([]GameSummary, error)
	GetGame(ctx context.Context, id string) (gameDoc, error)
	PutGame(ctx context.Context, doc gameDoc) error
	DeleteGame(ctx context.Context, id string) error
}

func nowUTC() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05.000Z")
}
