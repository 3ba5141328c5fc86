package session

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"
)

// Registry hands out one Manager per browser client. Managers are created
// on first use with storage scoped to the client and start restoring in
// the background straight away.
type Registry struct {
	kv         KV
	opts       Options
	maxClients int // 0 = unlimited

	mu      sync.Mutex
	clients map[string]*clientEntry
}

type clientEntry struct {
	manager  *Manager
	lastSeen time.Time
}

func NewRegistry(kv KV, opts Options, maxClients int) *Registry {
	if maxClients < 0 {
		maxClients = 0
	}
	return &Registry{
		kv:         kv,
		opts:       opts,
		maxClients: maxClients,
		clients:    make(map[string]*clientEntry),
	}
}

// Session returns the Manager of clientID, creating it if needed
func (r *Registry) Session(clientID string) *Manager {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.clients[clientID]; ok {
		e.lastSeen = time.Now()
		return e.manager
	}

	opts := r.opts
	opts.ClientID = clientID
	m := NewManager(Scoped(r.kv, clientID), opts)
	r.clients[clientID] = &clientEntry{manager: m, lastSeen: time.Now()}

	go m.Restore(context.Background())

	r.cleanupIfNeeded(clientID)
	return m
}

// Len returns the number of managers held in memory
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}

// cleanupIfNeeded drops the least recently seen managers beyond maxClients.
// Storage is durable, so a dropped client restores on its next request.
// A request that fetched a manager just before it was dropped still finishes
// on it; a login made that way reaches storage but a replacement manager
// that already restored keeps the old state until it is itself dropped.
// Must be called with lock held.
func (r *Registry) cleanupIfNeeded(keep string) {
	if r.maxClients <= 0 || len(r.clients) <= r.maxClients {
		return
	}

	ids := make([]string, 0, len(r.clients))
	for id, e := range r.clients {
		if id == keep || e.manager.Pending() {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return r.clients[ids[i]].lastSeen.Before(r.clients[ids[j]].lastSeen)
	})

	removeCount := len(r.clients) - r.maxClients
	for i := 0; i < removeCount && i < len(ids); i++ {
		slog.Debug("evicting idle session manager", "client_id", ids[i])
		delete(r.clients, ids[i])
	}
}
