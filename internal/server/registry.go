package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/playperu/quizbowl/internal/autosave"
	"github.com/playperu/quizbowl/internal/quizbowl"
	"github.com/playperu/quizbowl/internal/sheets"
)

var errBadPin = errors.New("invalid moderator pin")

// liveGame is a game loaded into memory. The core game is not safe for
// concurrent use, so every access goes through mu.
type liveGame struct {
	mu        sync.Mutex
	id        string
	name      string
	pinHash   string
	createdAt string
	game      *quizbowl.Game
	deleted   bool
	exporter  *sheets.Exporter
}

// Registry keeps loaded games in memory, loads them lazily from the store,
// and writes them back through a debounced autosave.
type Registry struct {
	store  Store
	sheet  sheets.Sheet
	broker *Broker
	logger *slog.Logger
	saver  *autosave.Saver

	mu    sync.RWMutex
	games map[string]*liveGame
}

func NewRegistry(store Store, sheet sheets.Sheet, broker *Broker, logger *slog.Logger, saveDelay time.Duration) *Registry {
	r := &Registry{
		store:  store,
		sheet:  sheet,
		broker: broker,
		logger: logger,
		games:  make(map[string]*liveGame),
	}
	r.saver = autosave.New(saveDelay, r.save, logger)
	return r
}

func (r *Registry) get(ctx context.Context, id string) (*liveGame, error) {
	r.mu.RLock()
	lg, ok := r.games[id]
	r.mu.RUnlock()
	if ok {
		return lg, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Double-check after acquiring write lock.
	if lg, ok := r.games[id]; ok {
		return lg, nil
	}

	doc, err := r.store.GetGame(ctx, id)
	if err != nil {
		return nil, err
	}
	g, err := quizbowl.FromSnapshot(doc.Snapshot)
	if err != nil {
		return nil, fmt.Errorf("restoring game %s: %w", id, err)
	}
	lg = r.newLiveGame(doc.ID, doc.Name, doc.PinHash, doc.CreatedAt, g)
	r.games[id] = lg
	return lg, nil
}

func (r *Registry) newLiveGame(id, name, pinHash, createdAt string, g *quizbowl.Game) *liveGame {
	lg := &liveGame{
		id:        id,
		name:      name,
		pinHash:   pinHash,
		createdAt: createdAt,
		game:      g,
	}
	lg.exporter = sheets.NewExporter(r.sheet, r.logger.With("game_id", id), func(ss sheets.Scoresheet) {
		err := r.Update(context.Background(), id, "exported", func(_ string, g *quizbowl.Game) error {
			if !g.MarkExported(ss.Revision) {
				r.logger.Info("game changed during export", "game_id", id)
			}
			return nil
		})
		if err != nil {
			r.logger.Error("marking export complete failed", "game_id", id, "error", err)
		}
	})
	return lg
}

// Create stores a new game and returns its ID. An empty pin leaves the game
// open to every client.
func (r *Registry) Create(ctx context.Context, name, pin string, g *quizbowl.Game) (string, error) {
	var pinHash string
	if pin != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
		if err != nil {
			return "", fmt.Errorf("hashing pin: %w", err)
		}
		pinHash = string(hash)
	}

	id := uuid.NewString()
	now := nowUTC()
	doc := gameDoc{
		ID:        id,
		Name:      strings.TrimSpace(name),
		PinHash:   pinHash,
		CreatedAt: now,
		UpdatedAt: now,
		Snapshot:  g.Snapshot(),
	}
	if err := r.store.PutGame(ctx, doc); err != nil {
		return "", fmt.Errorf("storing game: %w", err)
	}

	r.mu.Lock()
	r.games[id] = r.newLiveGame(id, doc.Name, pinHash, now, g)
	r.mu.Unlock()

	r.logger.Info("game created", "game_id", id, "name", doc.Name)
	return id, nil
}

// List returns the stored games.
func (r *Registry) List(ctx context.Context) ([]GameSummary, error) {
	return r.store.ListGames(ctx)
}

// View runs fn with exclusive access to the game without marking it dirty.
func (r *Registry) View(ctx context.Context, id string, fn func(name string, g *quizbowl.Game) error) error {
	lg, err := r.get(ctx, id)
	if err != nil {
		return err
	}
	lg.mu.Lock()
	defer lg.mu.Unlock()
	if lg.deleted {
		return ErrNotFound
	}
	return fn(lg.name, lg.game)
}

// Update runs fn with exclusive access to the game. When fn succeeds the
// game is scheduled for saving and subscribers are told about the change.
func (r *Registry) Update(ctx context.Context, id, change string, fn func(name string, g *quizbowl.Game) error) error {
	lg, err := r.get(ctx, id)
	if err != nil {
		return err
	}

	lg.mu.Lock()
	if lg.deleted {
		lg.mu.Unlock()
		return ErrNotFound
	}
	if err := fn(lg.name, lg.game); err != nil {
		lg.mu.Unlock()
		return err
	}
	event := liveEvent(change, id, lg.game)
	lg.mu.Unlock()

	r.saver.Schedule(id)
	r.broker.Publish(id, event)
	return nil
}

func liveEvent(change, id string, g *quizbowl.Game) LiveEvent {
	return LiveEvent{
		Type:         change,
		GameID:       id,
		CycleIndex:   g.CycleIndex(),
		UpdateNeeded: g.IsUpdateNeeded(),
		Scores:       g.Scores(),
	}
}

// Current returns the JSON-encoded live state of a game, the first message
// a new scoreboard subscriber receives.
func (r *Registry) Current(ctx context.Context, id string) ([]byte, error) {
	var event LiveEvent
	err := r.View(ctx, id, func(_ string, g *quizbowl.Game) error {
		event = liveEvent("state", id, g)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return json.Marshal(event)
}

// Subscribe returns a channel of live events for the game.
func (r *Registry) Subscribe(id string) chan []byte {
	return r.broker.Subscribe(id)
}

func (r *Registry) Unsubscribe(id string, ch chan []byte) {
	r.broker.Unsubscribe(id, ch)
}

// Delete removes the game from memory and from the store. Pending saves are
// dropped and a save already writing finishes first.
func (r *Registry) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	lg, ok := r.games[id]
	delete(r.games, id)
	r.mu.Unlock()

	if ok {
		lg.mu.Lock()
		lg.deleted = true
		lg.mu.Unlock()
		lg.exporter.Cancel()
	}
	r.saver.Forget(id)

	if err := r.store.DeleteGame(ctx, id); err != nil {
		return err
	}
	r.broker.Publish(id, LiveEvent{Type: "deleted", GameID: id})
	r.logger.Info("game deleted", "game_id", id)
	return nil
}

// CheckPin verifies the moderator pin of a game.
func (r *Registry) CheckPin(ctx context.Context, id, pin string) error {
	lg, err := r.get(ctx, id)
	if err != nil {
		return err
	}
	if lg.pinHash == "" {
		return nil
	}
	if bcrypt.CompareHashAndPassword([]byte(lg.pinHash), []byte(pin)) != nil {
		return errBadPin
	}
	return nil
}

// Exporter returns the spreadsheet exporter of a game.
func (r *Registry) Exporter(ctx context.Context, id string) (*sheets.Exporter, error) {
	lg, err := r.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return lg.exporter, nil
}

// Flush writes every pending game to the store.
func (r *Registry) Flush(ctx context.Context) error {
	return r.saver.Flush(ctx)
}

func (r *Registry) save(ctx context.Context, id string) error {
	r.mu.RLock()
	lg, ok := r.games[id]
	r.mu.RUnlock()
	if !ok {
		return nil
	}

	lg.mu.Lock()
	defer lg.mu.Unlock()
	if lg.deleted {
		return nil
	}
	doc := gameDoc{
		ID:        lg.id,
		Name:      lg.name,
		PinHash:   lg.pinHash,
		CreatedAt: lg.createdAt,
		UpdatedAt: nowUTC(),
		Snapshot:  lg.game.Snapshot(),
	}

	// Delete waits on lg.mu, so a game cannot be written back once removed.
	if err := r.store.PutGame(ctx, doc); err != nil {
		return fmt.Errorf("saving game %s: %w", id, err)
	}
	return nil
}
