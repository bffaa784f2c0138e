//go:build sqlite

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"agora/internal/model"

	_ "modernc.org/sqlite"
)

type SQLiteStore struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

func newSQLiteStore(path string) (Store, error) {
	return NewSQLiteStore(path), nil
}

func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("sqlite path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return err
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}

	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	return nil
}

func (s *SQLiteStore) SaveRunConfig(ctx context.Context, cfg model.RunConfig) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	payload, err := EncodeRunConfig(cfg)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO run_configs (run_id, schema_version, codec_version, payload)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(run_id) DO UPDATE SET
			schema_version = excluded.schema_version,
			codec_version = excluded.codec_version,
			payload = excluded.payload
	`, cfg.RunID, cfg.SchemaVersion, cfg.CodecVersion, payload)
	return err
}

func (s *SQLiteStore) GetRunConfig(ctx context.Context, runID string) (model.RunConfig, bool, error) {
	var payload []byte
	ok, err := s.queryPayload(ctx, `SELECT payload FROM run_configs WHERE run_id = ?`, runID, &payload)
	if err != nil || !ok {
		return model.RunConfig{}, false, err
	}

	cfg, err := DecodeRunConfig(payload)
	if err != nil {
		return model.RunConfig{}, false, fmt.Errorf("decode run config %s: %w", runID, err)
	}
	return cfg, true, nil
}

func (s *SQLiteStore) SaveTickDiagnostics(ctx context.Context, runID string, diagnostics []model.TickDiagnostics) error {
	payload, err := EncodeTickDiagnostics(diagnostics)
	if err != nil {
		return err
	}
	return s.upsertPayload(ctx, "tick_diagnostics", runID, payload)
}

func (s *SQLiteStore) GetTickDiagnostics(ctx context.Context, runID string) ([]model.TickDiagnostics, bool, error) {
	var payload []byte
	ok, err := s.queryPayload(ctx, `SELECT payload FROM tick_diagnostics WHERE run_id = ?`, runID, &payload)
	if err != nil || !ok {
		return nil, false, err
	}

	diagnostics, err := DecodeTickDiagnostics(payload)
	if err != nil {
		return nil, false, fmt.Errorf("decode tick diagnostics %s: %w", runID, err)
	}
	return diagnostics, true, nil
}

func (s *SQLiteStore) SaveAgentSnapshots(ctx context.Context, runID string, snapshots []model.AgentSnapshot) error {
	payload, err := EncodeAgentSnapshots(snapshots)
	if err != nil {
		return err
	}
	return s.upsertPayload(ctx, "agent_snapshots", runID, payload)
}

func (s *SQLiteStore) GetAgentSnapshots(ctx context.Context, runID string) ([]model.AgentSnapshot, bool, error) {
	var payload []byte
	ok, err := s.queryPayload(ctx, `SELECT payload FROM agent_snapshots WHERE run_id = ?`, runID, &payload)
	if err != nil || !ok {
		return nil, false, err
	}

	snapshots, err := DecodeAgentSnapshots(payload)
	if err != nil {
		return nil, false, fmt.Errorf("decode agent snapshots %s: %w", runID, err)
	}
	return snapshots, true, nil
}

func (s *SQLiteStore) SaveOddsReport(ctx context.Context, runID string, results []model.OddsResult) error {
	payload, err := EncodeOddsReport(results)
	if err != nil {
		return err
	}
	return s.upsertPayload(ctx, "odds_reports", runID, payload)
}

func (s *SQLiteStore) GetOddsReport(ctx context.Context, runID string) ([]model.OddsResult, bool, error) {
	var payload []byte
	ok, err := s.queryPayload(ctx, `SELECT payload FROM odds_reports WHERE run_id = ?`, runID, &payload)
	if err != nil || !ok {
		return nil, false, err
	}

	results, err := DecodeOddsReport(payload)
	if err != nil {
		return nil, false, fmt.Errorf("decode odds report %s: %w", runID, err)
	}
	return results, true, nil
}

func (s *SQLiteStore) SaveCorrelationReport(ctx context.Context, runID string, results []model.CorrelationResult) error {
	payload, err := EncodeCorrelationReport(results)
	if err != nil {
		return err
	}
	return s.upsertPayload(ctx, "correlation_reports", runID, payload)
}

func (s *SQLiteStore) GetCorrelationReport(ctx context.Context, runID string) ([]model.CorrelationResult, bool, error) {
	var payload []byte
	ok, err := s.queryPayload(ctx, `SELECT payload FROM correlation_reports WHERE run_id = ?`, runID, &payload)
	if err != nil || !ok {
		return nil, false, err
	}

	results, err := DecodeCorrelationReport(payload)
	if err != nil {
		return nil, false, fmt.Errorf("decode correlation report %s: %w", runID, err)
	}
	return results, true, nil
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, errors.New("store is not initialized")
	}
	return s.db, nil
}

func (s *SQLiteStore) upsertPayload(ctx context.Context, table, runID string, payload []byte) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (run_id, payload)
		VALUES (?, ?)
		ON CONFLICT(run_id) DO UPDATE SET
			payload = excluded.payload
	`, table)
	_, err = db.ExecContext(ctx, query, runID, payload)
	return err
}

func (s *SQLiteStore) queryPayload(ctx context.Context, query, runID string, payload *[]byte) (bool, error) {
	db, err := s.getDB()
	if err != nil {
		return false, err
	}

	err = db.QueryRowContext(ctx, query, runID).Scan(payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS run_configs (
			run_id TEXT PRIMARY KEY,
			schema_version INTEGER NOT NULL,
			codec_version INTEGER NOT NULL,
			payload BLOB NOT NULL
		);
		CREATE TABLE IF NOT EXISTS tick_diagnostics (
			run_id TEXT PRIMARY KEY,
			payload BLOB NOT NULL
		);
		CREATE TABLE IF NOT EXISTS agent_snapshots (
			run_id TEXT PRIMARY KEY,
			payload BLOB NOT NULL
		);
		CREATE TABLE IF NOT EXISTS odds_reports (
			run_id TEXT PRIMARY KEY,
			payload BLOB NOT NULL
		);
		CREATE TABLE IF NOT EXISTS correlation_reports (
			run_id TEXT PRIMARY KEY,
			payload BLOB NOT NULL
		);
	`)
	return err
}
