// Copyright (c) Microsoft. All rights reserved.

// Package redisstore persists agent conversation threads in Redis.
//
// Each thread's messages live in a Redis list, one JSON-encoded message per
// element, so history survives process restarts and can be shared between
// replicas of an agent service:
//
//	store, err := redisstore.NewClient(ctx, redisstore.Config{Address: "localhost:6379"})
//	agent := agentkit.NewAgent(chat,
//	    agentkit.WithMessageStoreFactory(store.StoreFactory()),
//	)
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gopkg.in/yaml.v3"

	"github.com/microsoft/agentkit"
)

const defaultKeyPrefix = "agentkit:thread"

// Duration is a [time.Duration] that also unmarshals from YAML strings
// like "24h" or "90m".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("redisstore: invalid duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

// Config holds Redis connection parameters.
type Config struct {
	Address   string   `yaml:"address"`
	Password  string   `yaml:"password"`
	DB        int      `yaml:"db"`
	KeyPrefix string   `yaml:"key_prefix"`
	TTL       Duration `yaml:"ttl"`
}

// Client wraps a Redis connection and hands out per-thread stores.
type Client struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// NewClient connects to Redis and verifies the connection with a ping.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.Address == "" {
		return nil, errors.New("redisstore: address is required")
	}
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = defaultKeyPrefix
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redisstore: ping: %w", err)
	}

	return &Client{rdb: rdb, prefix: prefix, ttl: time.Duration(cfg.TTL)}, nil
}

// Close releases the underlying connection pool.
func (c *Client) Close() error { return c.rdb.Close() }

// Store returns the message store for a thread key. Two stores created with
// the same key share history.
func (c *Client) Store(key string) *Store {
	return &Store{
		rdb: c.rdb,
		key: c.prefix + ":" + key,
		ttl: c.ttl,
	}
}

// StoreFactory returns a factory creating a fresh store per thread,
// suitable for [agentkit.WithMessageStoreFactory].
func (c *Client) StoreFactory() func() agentkit.MessageStore {
	return func() agentkit.MessageStore {
		return c.Store(uuid.NewString())
	}
}

// Store is a Redis-backed [agentkit.MessageStore].
type Store struct {
	rdb *redis.Client
	key string
	ttl time.Duration
}

var _ agentkit.MessageStore = (*Store)(nil)

// Key returns the full Redis key backing this store.
func (s *Store) Key() string { return s.key }

// ListMessages returns all stored messages in insertion order.
func (s *Store) ListMessages(ctx context.Context) ([]agentkit.Message, error) {
	raw, err := s.rdb.LRange(ctx, s.key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redisstore: list %s: %w", s.key, err)
	}

	msgs := make([]agentkit.Message, 0, len(raw))
	for i, item := range raw {
		var msg agentkit.Message
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			return nil, fmt.Errorf("redisstore: decode message %d in %s: %w", i, s.key, err)
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

// AddMessages appends messages to the thread and refreshes its TTL.
func (s *Store) AddMessages(ctx context.Context, msgs []agentkit.Message) error {
	if len(msgs) == 0 {
		return nil
	}

	values := make([]any, 0, len(msgs))
	for i := range msgs {
		b, err := json.Marshal(msgs[i])
		if err != nil {
			return fmt.Errorf("redisstore: encode message %d: %w", i, err)
		}
		values = append(values, b)
	}

	pipe := s.rdb.TxPipeline()
	pipe.RPush(ctx, s.key, values...)
	if s.ttl > 0 {
		pipe.Expire(ctx, s.key, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redisstore: append to %s: %w", s.key, err)
	}
	return nil
}

// Serialize returns the store's state pointer. The messages themselves stay
// in Redis; the key is enough to reattach.
func (s *Store) Serialize() (map[string]any, error) {
	return map[string]any{"key": s.key}, nil
}
