package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/Sadab-Ansari/Contract-SPA-Dashboard/model"
	"golang.org/x/sync/singleflight"
)

// ErrContractNotFound is returned when an ID is absent from the loaded set
var ErrContractNotFound = errors.New("contract not found")

// ContractStore holds the immutable contract set for the life of the process.
// The set is fetched from its Source on first use; a failed fetch is not
// kept, so the next caller fetches again.
type ContractStore struct {
	source Source

	mu        sync.RWMutex
	contracts []*model.Contract
	byID      map[string]*model.Contract
	loaded    bool
	loadedAt  time.Time
	lastErr   error

	flight singleflight.Group
}

func NewContractStore(source Source) *ContractStore {
	return &ContractStore{source: source}
}

// Ensure loads the contract set unless it is already loaded. Concurrent
// callers share one fetch, which keeps running when a caller gives up so
// the others still get its result.
func (s *ContractStore) Ensure(ctx context.Context) error {
	s.mu.RLock()
	loaded := s.loaded
	s.mu.RUnlock()
	if loaded {
		return nil
	}

	ch := s.flight.DoChan("load", func() (any, error) {
		return nil, s.load(context.WithoutCancel(ctx))
	})
	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *ContractStore) load(ctx context.Context) error {
	s.mu.RLock()
	loaded := s.loaded
	s.mu.RUnlock()
	if loaded {
		return nil
	}

	start := time.Now()
	contracts, err := s.source.Fetch(ctx)
	if err != nil {
		s.mu.Lock()
		s.lastErr = err
		s.mu.Unlock()
		slog.Error("failed to load contracts", "source", s.source.Name(), "error", err)
		return err
	}

	byID := make(map[string]*model.Contract, len(contracts))
	for _, c := range contracts {
		byID[c.ID] = c
	}

	s.mu.Lock()
	s.contracts = contracts
	s.byID = byID
	s.loaded = true
	s.loadedAt = time.Now()
	s.lastErr = nil
	s.mu.Unlock()

	slog.Info("contracts loaded",
		"source", s.source.Name(),
		"count", len(contracts),
		"latency_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// All returns the loaded set in document order. Callers must not modify it.
func (s *ContractStore) All() []*model.Contract {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.contracts
}

func (s *ContractStore) Get(id string) (*model.Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.byID[id]; ok {
		return c, nil
	}
	return nil, ErrContractNotFound
}

// Count returns the number of contracts in the store
func (s *ContractStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.contracts)
}

// Loaded reports whether the set has been fetched successfully
func (s *ContractStore) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// LastError returns the error of the most recent failed fetch, if any
func (s *ContractStore) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// SourceName describes where the contract set comes from
func (s *ContractStore) SourceName() string {
	return s.source.Name()
}
