package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/kirtilabs/kirti/config"
)

const (
	keyPrefix = "kirti:"

	latestMessageKey = "ui:latest-message"
	matchedUserKey   = "ui:matched-user"
	transcriptsKey   = "assistant:transcripts"
	logsKey          = "logs"

	maxTranscripts = 50
	maxLogs        = 100
)

// Cache is the interface for the shared Redis-backed state: the latest
// assistant message shown by the UI, the last matched-user snapshot, recent
// transcripts and log lines.
type Cache interface {
	SetLatestMessage(text string) error
	GetLatestMessage() (string, error)
	SaveMatchSnapshot(data []byte) error
	LoadMatchSnapshot() ([]byte, error)
	AddTranscript(entry string) error
	RecentTranscripts(n int64) ([]string, error)
	AddLogLine(line string) error
	Ping() error
	Close() error
}

type DB struct {
	rdb *redis.Client
	ctx context.Context
}

// New connects to Redis. An empty address means the cache is disabled and
// New returns nil without error.
func New(cfg *config.RedisConfig) (*DB, error) {
	if cfg == nil || cfg.Addr == "" {
		return nil, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ctx := context.Background()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("could not connect to cache at %s: %w", cfg.Addr, err)
	}
	return &DB{rdb: rdb, ctx: ctx}, nil
}

func (db *DB) Ping() error {
	return db.rdb.Ping(db.ctx).Err()
}

func (db *DB) Close() error {
	return db.rdb.Close()
}

func (db *DB) SetLatestMessage(text string) error {
	return db.rdb.Set(db.ctx, keyPrefix+latestMessageKey, text, 0).Err()
}

func (db *DB) GetLatestMessage() (string, error) {
	text, err := db.rdb.Get(db.ctx, keyPrefix+latestMessageKey).Result()
	if err == redis.Nil {
		return "", nil
	}
	return text, err
}

func (db *DB) SaveMatchSnapshot(data []byte) error {
	return db.rdb.Set(db.ctx, keyPrefix+matchedUserKey, data, 0).Err()
}

func (db *DB) LoadMatchSnapshot() ([]byte, error) {
	data, err := db.rdb.Get(db.ctx, keyPrefix+matchedUserKey).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	return data, err
}

// AddTranscript pushes one transcript entry onto a capped list.
func (db *DB) AddTranscript(entry string) error {
	return db.addCapped(keyPrefix+transcriptsKey, entry, maxTranscripts)
}

func (db *DB) RecentTranscripts(n int64) ([]string, error) {
	return db.rdb.LRange(db.ctx, keyPrefix+transcriptsKey, 0, n-1).Result()
}

func (db *DB) AddLogLine(line string) error {
	return db.addCapped(keyPrefix+logsKey, line, maxLogs)
}

func (db *DB) addCapped(key, value string, max int64) error {
	pipe := db.rdb.Pipeline()
	pipe.LPush(db.ctx, key, value)
	pipe.LTrim(db.ctx, key, 0, max-1)
	_, err := pipe.Exec(db.ctx)
	return err
}
