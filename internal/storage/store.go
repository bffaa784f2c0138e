package storage

import (
	"context"

	"agora/internal/model"
)

// Store defines persistence operations for simulation runs and their
// derived reports.
type Store interface {
	Init(ctx context.Context) error
	SaveRunConfig(ctx context.Context, cfg model.RunConfig) error
	GetRunConfig(ctx context.Context, runID string) (model.RunConfig, bool, error)
	SaveTickDiagnostics(ctx context.Context, runID string, diagnostics []model.TickDiagnostics) error
	GetTickDiagnostics(ctx context.Context, runID string) ([]model.TickDiagnostics, bool, error)
	SaveAgentSnapshots(ctx context.Context, runID string, snapshots []model.AgentSnapshot) error
	GetAgentSnapshots(ctx context.Context, runID string) ([]model.AgentSnapshot, bool, error)
	SaveOddsReport(ctx context.Context, runID string, results []model.OddsResult) error
	GetOddsReport(ctx context.Context, runID string) ([]model.OddsResult, bool, error)
	SaveCorrelationReport(ctx context.Context, runID string, results []model.CorrelationResult) error
	GetCorrelationReport(ctx context.Context, runID string) ([]model.CorrelationResult, bool, error)
}
