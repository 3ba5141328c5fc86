// Package session owns the per-client authentication lifecycle: durable
// client-scoped storage, the session state machine, and route gating.
package session

import (
	"context"
	"sync"
)

// Keys of the two durable entries that make up a persisted session
const (
	TokenKey = "auth_token"
	UserKey  = "user_data"
)

// Storage is the durable string storage of one browser client
type Storage interface {
	// Get returns the value and whether it was present
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	// Remove deletes the key; removing an absent key is not an error
	Remove(ctx context.Context, key string) error
}

// KV is namespaced durable storage shared by all clients
type KV interface {
	Get(ctx context.Context, namespace, key string) (string, bool, error)
	Set(ctx context.Context, namespace, key, value string) error
	Remove(ctx context.Context, namespace, key string) error
	// Ping reports whether the backend is usable
	Ping(ctx context.Context) error
	Close() error
}

// Scoped returns the Storage of a single namespace
func Scoped(kv KV, namespace string) Storage {
	return scopedStorage{kv: kv, ns: namespace}
}

type scopedStorage struct {
	kv KV
	ns string
}

func (s scopedStorage) Get(ctx context.Context, key string) (string, bool, error) {
	return s.kv.Get(ctx, s.ns, key)
}

func (s scopedStorage) Set(ctx context.Context, key, value string) error {
	return s.kv.Set(ctx, s.ns, key, value)
}

func (s scopedStorage) Remove(ctx context.Context, key string) error {
	return s.kv.Remove(ctx, s.ns, key)
}

// MemoryKV keeps everything in process memory
type MemoryKV struct {
	mu   sync.RWMutex
	data map[string]map[string]string
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string]map[string]string)}
}

func (m *MemoryKV) Get(ctx context.Context, namespace, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[namespace][key]
	return v, ok, nil
}

func (m *MemoryKV) Set(ctx context.Context, namespace, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ns, ok := m.data[namespace]
	if !ok {
		ns = make(map[string]string)
		m.data[namespace] = ns
	}
	ns[key] = value
	return nil
}

func (m *MemoryKV) Remove(ctx context.Context, namespace, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ns, ok := m.data[namespace]; ok {
		delete(ns, key)
		if len(ns) == 0 {
			delete(m.data, namespace)
		}
	}
	return nil
}

func (m *MemoryKV) Ping(ctx context.Context) error {
	return nil
}

func (m *MemoryKV) Close() error {
	return nil
}
