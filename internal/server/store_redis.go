package server

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/fxamacker/cbor/v2"
	"github.com/redis/go-redis/v9"

	"github.com/playperu/quizbowl/internal/sheets"
)

const (
	redisGamesKey   = "quizbowl:games"
	redisGamePrefix = "quizbowl:game:"
	redisSheetKey   = "quizbowl:sheet:"
)

var (
	cborEnc cbor.EncMode
	cborDec cbor.DecMode
)

func init() {
	var err error
	cborEnc, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("server: CBOR encoder initialization failed: " + err.Error())
	}
	cborDec, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic("server: CBOR decoder initialization failed: " + err.Error())
	}
}

type sheetRoundDoc struct {
	SheetType  string     `json:"sheetType"`
	ExportedAt string     `json:"exportedAt"`
	Cells      [][]string `json:"cells"`
}

// RedisStore implements Store with one CBOR-encoded document per game and a
// set indexing the game IDs.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) ListGames(ctx context.Context) ([]GameSummary, error) {
	ids, err := s.rdb.SMembers(ctx, redisGamesKey).Result()
	if err != nil {
		return nil, err
	}
	games := []GameSummary{}
	if len(ids) == 0 {
		return games, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = redisGamePrefix + id
	}
	values, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			// Index entry without a document; the game was deleted mid-list.
			continue
		}
		d, err := decodeGameDoc([]byte(raw))
		if err != nil {
			return nil, fmt.Errorf("decoding game %s: %w", ids[i], err)
		}
		games = append(games, d.summary())
	}
	sort.Slice(games, func(i, j int) bool {
		if games[i].CreatedAt != games[j].CreatedAt {
			return games[i].CreatedAt < games[j].CreatedAt
		}
		return games[i].ID < games[j].ID
	})
	return games, nil
}

func (s *RedisStore) GetGame(ctx context.Context, id string) (gameDoc, error) {
	raw, err := s.rdb.Get(ctx, redisGamePrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return gameDoc{}, ErrNotFound
	}
	if err != nil {
		return gameDoc{}, err
	}
	return decodeGameDoc(raw)
}

func (s *RedisStore) PutGame(ctx context.Context, d gameDoc) error {
	data, err := encodeGameDoc(d)
	if err != nil {
		return err
	}
	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, redisGamePrefix+d.ID, data, 0)
		pipe.SAdd(ctx, redisGamesKey, d.ID)
		return nil
	})
	return err
}

func (s *RedisStore) DeleteGame(ctx context.Context, id string) error {
	var del *redis.IntCmd
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, redisGamePrefix+id)
		pipe.SRem(ctx, redisGamesKey, id)
		return nil
	})
	if err != nil {
		return err
	}
	if del.Val() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *RedisStore) RoundExists(ctx context.Context, sheetID string, round int) (bool, error) {
	n, err := s.rdb.Exists(ctx, sheetRoundKey(sheetID, round)).Result()
	return n > 0, err
}

func (s *RedisStore) WriteRound(ctx context.Context, sheetID string, sheetType sheets.SheetType, round int, cells [][]string) error {
	data, err := cborEnc.Marshal(sheetRoundDoc{
		SheetType:  string(sheetType),
		ExportedAt: nowUTC(),
		Cells:      cells,
	})
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, sheetRoundKey(sheetID, round), data, 0).Err()
}

func sheetRoundKey(sheetID string, round int) string {
	return redisSheetKey + sheetID + ":round:" + strconv.Itoa(round)
}

func encodeGameDoc(d gameDoc) ([]byte, error) {
	return cborEnc.Marshal(d)
}

func decodeGameDoc(data []byte) (gameDoc, error) {
	var d gameDoc
	err := cborDec.Unmarshal(data, &d)
	return d, err
}
