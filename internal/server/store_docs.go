package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/playperu/quizbowl/internal/sheets"
)

// DocStore implements Store on libSQL with the game snapshot kept in a
// JSONB data column. Tables are created by the migrations package.
type DocStore struct {
	db *sql.DB
}

func NewDocStore(db *sql.DB) *DocStore {
	return &DocStore{db: db}
}

func (s *DocStore) ListGames(ctx context.Context) ([]GameSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT json(data) FROM games ORDER BY created_at, id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	games := []GameSummary{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var d gameDoc
		if err := json.Unmarshal([]byte(data), &d); err != nil {
			return nil, err
		}
		games = append(games, d.summary())
	}
	return games, rows.Err()
}

func (s *DocStore) GetGame(ctx context.Context, id string) (gameDoc, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT json(data) FROM games WHERE id = ?`, id,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return gameDoc{}, ErrNotFound
	}
	if err != nil {
		return gameDoc{}, err
	}
	var d gameDoc
	if err := json.Unmarshal([]byte(data), &d); err != nil {
		return gameDoc{}, fmt.Errorf("decoding game %s: %w", id, err)
	}
	return d, nil
}

func (s *DocStore) PutGame(ctx context.Context, d gameDoc) error {
	data, err := json.Marshal(d)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO games (id, name, pin_hash, created_at, updated_at, data) VALUES (?, ?, ?, ?, ?, jsonb(?))
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name, pin_hash = excluded.pin_hash,
		   updated_at = excluded.updated_at, data = excluded.data`,
		d.ID, d.Name, d.PinHash, d.CreatedAt, d.UpdatedAt, string(data),
	)
	return err
}

func (s *DocStore) DeleteGame(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM games WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// RoundExists reports whether a scoresheet round was already exported.
func (s *DocStore) RoundExists(ctx context.Context, sheetID string, round int) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM scoresheet_rounds WHERE sheet_id = ? AND round = ?`, sheetID, round,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// WriteRound stores the cells of an exported round, replacing any earlier
// export of the same round.
func (s *DocStore) WriteRound(ctx context.Context, sheetID string, sheetType sheets.SheetType, round int, cells [][]string) error {
	data, err := json.Marshal(cells)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO scoresheet_rounds (sheet_id, sheet_type, round, exported_at, data) VALUES (?, ?, ?, ?, jsonb(?))
		 ON CONFLICT(sheet_id, round) DO UPDATE SET sheet_type = excluded.sheet_type,
		   exported_at = excluded.exported_at, data = excluded.data`,
		sheetID, string(sheetType), round, nowUTC(), string(data),
	)
	return err
}

// ReadRound returns the cells of an exported round.
func (s *DocStore) ReadRound(ctx context.Context, sheetID string, round int) ([][]string, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT json(data) FROM scoresheet_rounds WHERE sheet_id = ? AND round = ?`, sheetID, round,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var cells [][]string
	if err := json.Unmarshal([]byte(data), &cells); err != nil {
		return nil, err
	}
	return cells, nil
}
