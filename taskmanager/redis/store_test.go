// Tencent is pleased to support the open source community by making trpc-a2a-go available.
//
// Copyright (C) 2025 THL A29 Limited, a Tencent company.  All rights reserved.
//
// trpc-a2a-go is licensed under the Apache License Version 2.0.

package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a2arun/a2a-go/protocol"
)

// fakeClient is an in-memory stand-in for the narrow client interface
// TaskStore depends on, so these tests never need a live Redis server.
type fakeClient struct {
	data map[string]string
}

func newFakeClient() *fakeClient {
	return &fakeClient{data: make(map[string]string)}
}

func (f *fakeClient) Set(_ context.Context, key string, value interface{}, _ time.Duration) *goredis.StatusCmd {
	cmd := goredis.NewStatusCmd(context.Background())
	switch v := value.(type) {
	case string:
		f.data[key] = v
	case []byte:
		f.data[key] = string(v)
	}
	cmd.SetVal("OK")
	return cmd
}

func (f *fakeClient) Get(_ context.Context, key string) *goredis.StringCmd {
	cmd := goredis.NewStringCmd(context.Background())
	v, ok := f.data[key]
	if !ok {
		cmd.SetErr(goredis.Nil)
		return cmd
	}
	cmd.SetVal(v)
	return cmd
}

func (f *fakeClient) Del(_ context.Context, keys ...string) *goredis.IntCmd {
	cmd := goredis.NewIntCmd(context.Background())
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	cmd.SetVal(n)
	return cmd
}

func (f *fakeClient) Keys(_ context.Context, _ string) *goredis.StringSliceCmd {
	cmd := goredis.NewStringSliceCmd(context.Background())
	keys := make([]string, 0, len(f.data))
	for k := range f.data {
		keys = append(keys, k)
	}
	cmd.SetVal(keys)
	return cmd
}

func newTestStore() (*TaskStore, *fakeClient) {
	fc := newFakeClient()
	return &TaskStore{client: fc, keyPrefix: defaultKeyPrefix}, fc
}

func TestTaskStore_SetGet(t *testing.T) {
	store, _ := newTestStore()
	task, err := protocolTaskBuilder("ctx-1")
	require.NoError(t, err)

	require.NoError(t, store.Set(task.ID, task, time.Minute))

	got, found, err := store.Get(task.ID)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, task.ID, got.ID)
	assert.Equal(t, task.ContextID, got.ContextID)
}

func TestTaskStore_GetMissing(t *testing.T) {
	store, _ := newTestStore()
	_, found, err := store.Get("does-not-exist")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestTaskStore_Delete(t *testing.T) {
	store, _ := newTestStore()
	task, err := protocolTaskBuilder("ctx-2")
	require.NoError(t, err)
	require.NoError(t, store.Set(task.ID, task, 0))

	deleted, err := store.Delete(task.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	_, found, err := store.Get(task.ID)
	require.NoError(t, err)
	assert.False(t, found)

	deletedAgain, err := store.Delete(task.ID)
	require.NoError(t, err)
	assert.False(t, deletedAgain)
}

func TestTaskStore_Keys(t *testing.T) {
	store, _ := newTestStore()
	t1, err := protocolTaskBuilder("ctx-3")
	require.NoError(t, err)
	t2, err := protocolTaskBuilder("ctx-4")
	require.NoError(t, err)
	require.NoError(t, store.Set(t1.ID, t1, 0))
	require.NoError(t, store.Set(t2.ID, t2, 0))

	keys, err := store.Keys()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{t1.ID, t2.ID}, keys)
}

func TestTaskStore_KeyPrefixIsolatesOtherData(t *testing.T) {
	store, fc := newTestStore()
	task, err := protocolTaskBuilder("ctx-5")
	require.NoError(t, err)
	require.NoError(t, store.Set(task.ID, task, 0))

	fc.data["unrelated:key"] = "value"

	keys, err := store.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{task.ID}, keys)
}

func TestTaskStore_StoresValidJSON(t *testing.T) {
	store, fc := newTestStore()
	task, err := protocolTaskBuilder("ctx-6")
	require.NoError(t, err)
	require.NoError(t, store.Set(task.ID, task, 0))

	raw, ok := fc.data[store.key(task.ID)]
	require.True(t, ok)
	var decoded protocol.Task
	require.NoError(t, json.Unmarshal([]byte(raw), &decoded))
	assert.Equal(t, task.ID, decoded.ID)
}

func protocolTaskBuilder(contextID string) (protocol.Task, error) {
	return protocol.Task{
		ID:        protocol.GenerateTaskID(),
		ContextID: contextID,
		Status:    protocol.NewTaskStatus(protocol.TaskStateSubmitted, nil),
	}, nil
}
