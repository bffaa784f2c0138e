package storage

import (
	"context"
	"sync"

	"agora/internal/model"
)

type MemoryStore struct {
	mu           sync.RWMutex
	initialized  bool
	configs      map[string]model.RunConfig
	diagnostics  map[string][]model.TickDiagnostics
	snapshots    map[string][]model.AgentSnapshot
	odds         map[string][]model.OddsResult
	correlations map[string][]model.CorrelationResult
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.configs = make(map[string]model.RunConfig)
	s.diagnostics = make(map[string][]model.TickDiagnostics)
	s.snapshots = make(map[string][]model.AgentSnapshot)
	s.odds = make(map[string][]model.OddsResult)
	s.correlations = make(map[string][]model.CorrelationResult)
	return nil
}

func (s *MemoryStore) SaveRunConfig(_ context.Context, cfg model.RunConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.configs[cfg.RunID] = cfg
	return nil
}

func (s *MemoryStore) GetRunConfig(_ context.Context, runID string) (model.RunConfig, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cfg, ok := s.configs[runID]
	return cfg, ok, nil
}

func (s *MemoryStore) SaveTickDiagnostics(_ context.Context, runID string, diagnostics []model.TickDiagnostics) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := make([]model.TickDiagnostics, len(diagnostics))
	copy(copied, diagnostics)
	s.diagnostics[runID] = copied
	return nil
}

func (s *MemoryStore) GetTickDiagnostics(_ context.Context, runID string) ([]model.TickDiagnostics, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	diagnostics, ok := s.diagnostics[runID]
	if !ok {
		return nil, false, nil
	}
	copied := make([]model.TickDiagnostics, len(diagnostics))
	copy(copied, diagnostics)
	return copied, true, nil
}

func (s *MemoryStore) SaveAgentSnapshots(_ context.Context, runID string, snapshots []model.AgentSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := make([]model.AgentSnapshot, len(snapshots))
	copy(copied, snapshots)
	s.snapshots[runID] = copied
	return nil
}

func (s *MemoryStore) GetAgentSnapshots(_ context.Context, runID string) ([]model.AgentSnapshot, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshots, ok := s.snapshots[runID]
	if !ok {
		return nil, false, nil
	}
	copied := make([]model.AgentSnapshot, len(snapshots))
	copy(copied, snapshots)
	return copied, true, nil
}

func (s *MemoryStore) SaveOddsReport(_ context.Context, runID string, results []model.OddsResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := make([]model.OddsResult, len(results))
	copy(copied, results)
	s.odds[runID] = copied
	return nil
}

func (s *MemoryStore) GetOddsReport(_ context.Context, runID string) ([]model.OddsResult, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results, ok := s.odds[runID]
	if !ok {
		return nil, false, nil
	}
	copied := make([]model.OddsResult, len(results))
	copy(copied, results)
	return copied, true, nil
}

func (s *MemoryStore) SaveCorrelationReport(_ context.Context, runID string, results []model.CorrelationResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := make([]model.CorrelationResult, len(results))
	copy(copied, results)
	s.correlations[runID] = copied
	return nil
}

func (s *MemoryStore) GetCorrelationReport(_ context.Context, runID string) ([]model.CorrelationResult, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results, ok := s.correlations[runID]
	if !ok {
		return nil, false, nil
	}
	copied := make([]model.CorrelationResult, len(results))
	copy(copied, results)
	return copied, true, nil
}
