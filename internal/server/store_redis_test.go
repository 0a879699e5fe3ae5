package server

import (
	"bytes"
	"context"
	"errors"
	"os"
	"reflect"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/playperu/quizbowl/internal/quizbowl"
	"github.com/playperu/quizbowl/internal/sheets"
)

func deadRedis() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         "localhost:1",
		DialTimeout:  10 * time.Millisecond,
		ReadTimeout:  10 * time.Millisecond,
		WriteTimeout: 10 * time.Millisecond,
		MaxRetries:   -1,
	})
}

func TestGameDocCBOR(t *testing.T) {
	doc := testDoc("g1")
	g, err := quizbowl.FromSnapshot(doc.Snapshot)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	err = g.AppendEvent(0, quizbowl.TossupAnswer{
		TossupIndex: 0,
		Marker:      quizbowl.BuzzMarker{Player: ana, Position: 1, IsCorrect: true, Points: 15},
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	doc.Snapshot = g.Snapshot()
	doc.PinHash = "hash"

	first, err := encodeGameDoc(doc)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	second, _ := encodeGameDoc(doc)
	if !bytes.Equal(first, second) {
		t.Error("encoding is not deterministic")
	}

	got, err := decodeGameDoc(first)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(got, doc) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, doc)
	}
}

func TestRedisStoreUnavailable(t *testing.T) {
	ctx := context.Background()
	rdb := deadRedis()
	defer rdb.Close()
	store := NewRedisStore(rdb)

	if _, err := store.ListGames(ctx); err == nil {
		t.Error("ListGames: expected error")
	}
	if _, err := store.GetGame(ctx, "g1"); err == nil || errors.Is(err, ErrNotFound) {
		t.Errorf("GetGame: expected connection error, got %v", err)
	}
	if err := store.PutGame(ctx, testDoc("g1")); err == nil {
		t.Error("PutGame: expected error")
	}
}

// TestRedisStoreLive runs against a real server when QUIZBOWL_TEST_REDIS_URL
// is set.
func TestRedisStoreLive(t *testing.T) {
	url := os.Getenv("QUIZBOWL_TEST_REDIS_URL")
	if url == "" {
		t.Skip("QUIZBOWL_TEST_REDIS_URL not set")
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	rdb := redis.NewClient(opt)
	defer rdb.Close()

	ctx := context.Background()
	store := NewRedisStore(rdb)
	id := "test-" + time.Now().Format("150405.000000")
	t.Cleanup(func() {
		store.DeleteGame(ctx, id)
		rdb.Del(ctx, sheetRoundKey(id, 1))
	})

	if err := store.PutGame(ctx, testDoc(id)); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, err := store.GetGame(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Game "+id {
		t.Errorf("name = %q", got.Name)
	}

	list, err := store.ListGames(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	found := false
	for _, s := range list {
		found = found || s.ID == id
	}
	if !found {
		t.Errorf("game %s missing from list", id)
	}

	if err := store.WriteRound(ctx, id, sheets.TJSheets, 1, [][]string{{"x"}}); err != nil {
		t.Fatalf("write round: %v", err)
	}
	if exists, err := store.RoundExists(ctx, id, 1); err != nil || !exists {
		t.Errorf("RoundExists = %v, %v", exists, err)
	}

	if err := store.DeleteGame(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.GetGame(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}
