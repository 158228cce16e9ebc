// Tencent is pleased to support the open source community by making trpc-a2a-go available.
//
// Copyright (C) 2025 THL A29 Limited, a Tencent company.  All rights reserved.
//
// trpc-a2a-go is licensed under the Apache License Version 2.0.

// Package redis provides a Redis-backed runtime.TaskStore, for deployments
// that need task state to survive a process restart or to be shared across
// replicas of the same agent.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/a2arun/a2a-go/protocol"
)

const defaultKeyPrefix = "a2a:task:"

// client is the subset of *redis.Client's method set TaskStore depends on,
// narrow enough to fake in tests without a live Redis server.
type client interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *goredis.StatusCmd
	Get(ctx context.Context, key string) *goredis.StringCmd
	Del(ctx context.Context, keys ...string) *goredis.IntCmd
	Keys(ctx context.Context, pattern string) *goredis.StringSliceCmd
}

// TaskStore is a runtime.TaskStore backed by Redis: every task is stored as
// a JSON blob under keyPrefix+id, with TTL delegated to Redis's own key
// expiration rather than tracked separately.
type TaskStore struct {
	client    client
	keyPrefix string
}

// Option configures a TaskStore.
type Option func(*TaskStore)

// WithKeyPrefix overrides the default "a2a:task:" Redis key prefix.
func WithKeyPrefix(prefix string) Option {
	return func(s *TaskStore) {
		if prefix != "" {
			s.keyPrefix = prefix
		}
	}
}

// NewTaskStore wraps an existing *redis.Client. The caller owns the
// client's lifecycle (including Close).
func NewTaskStore(c *goredis.Client, opts ...Option) *TaskStore {
	s := &TaskStore{client: c, keyPrefix: defaultKeyPrefix}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *TaskStore) key(id string) string {
	return s.keyPrefix + id
}

// Set stores task under key, JSON-encoded. ttl <= 0 means the entry never
// expires, matching runtime.TaskStore's contract.
func (s *TaskStore) Set(key string, task protocol.Task, ttl time.Duration) error {
	data, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("redis task store: marshal task %s: %w", key, err)
	}
	if ttl < 0 {
		ttl = 0
	}
	if err := s.client.Set(context.Background(), s.key(key), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis task store: set %s: %w", key, err)
	}
	return nil
}

// Get fetches task by key. A missing key reports absent, not an error.
func (s *TaskStore) Get(key string) (protocol.Task, bool, error) {
	data, err := s.client.Get(context.Background(), s.key(key)).Bytes()
	if err == goredis.Nil {
		return protocol.Task{}, false, nil
	}
	if err != nil {
		return protocol.Task{}, false, fmt.Errorf("redis task store: get %s: %w", key, err)
	}
	var task protocol.Task
	if err := json.Unmarshal(data, &task); err != nil {
		return protocol.Task{}, false, fmt.Errorf("redis task store: unmarshal task %s: %w", key, err)
	}
	return task, true, nil
}

// Delete removes key, reporting whether it was present.
func (s *TaskStore) Delete(key string) (bool, error) {
	n, err := s.client.Del(context.Background(), s.key(key)).Result()
	if err != nil {
		return false, fmt.Errorf("redis task store: delete %s: %w", key, err)
	}
	return n > 0, nil
}

// Keys lists every task id currently stored under keyPrefix.
func (s *TaskStore) Keys() ([]string, error) {
	matched, err := s.client.Keys(context.Background(), s.keyPrefix+"*").Result()
	if err != nil {
		return nil, fmt.Errorf("redis task store: keys: %w", err)
	}
	keys := make([]string, 0, len(matched))
	for _, k := range matched {
		if !strings.HasPrefix(k, s.keyPrefix) {
			continue
		}
		keys = append(keys, strings.TrimPrefix(k, s.keyPrefix))
	}
	return keys, nil
}
