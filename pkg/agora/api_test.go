package agora

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	client, err := New(Options{
		StoreKind:  "memory",
		ResultsDir: filepath.Join(t.TempDir(), "results"),
		ExportsDir: filepath.Join(t.TempDir(), "exports"),
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	t.Cleanup(func() {
		_ = client.Close()
	})
	return client
}

func TestRunEndToEnd(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	summary, err := client.Run(ctx, RunRequest{
		RunID:           "run-e2e",
		Agents:          40,
		TimeSpan:        20,
		Seed:            5,
		PercentMinority: 0.5,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if summary.RunID != "run-e2e" {
		t.Fatalf("unexpected run id: %s", summary.RunID)
	}
	if len(summary.Odds) != 4 {
		t.Fatalf("expected 4 odds benchmarks, got %d", len(summary.Odds))
	}
	if _, err := os.Stat(filepath.Join(summary.ArtifactsDir, "config.json")); err != nil {
		t.Fatalf("expected config artifact: %v", err)
	}
	if _, err := os.Stat(filepath.Join(summary.ArtifactsDir, "diagnostics.csv")); err != nil {
		t.Fatalf("expected diagnostics artifact: %v", err)
	}

	diagnostics, err := client.Diagnostics(ctx, DiagnosticsRequest{RunID: "run-e2e"})
	if err != nil {
		t.Fatalf("diagnostics: %v", err)
	}
	if len(diagnostics) != 20 || diagnostics[0].Time != 1 || diagnostics[19].Time != 20 {
		t.Fatalf("expected 20 ticks, got %d", len(diagnostics))
	}

	odds, err := client.Odds(ctx, OddsRequest{RunID: "run-e2e"})
	if err != nil {
		t.Fatalf("odds: %v", err)
	}
	if len(odds) != 4 {
		t.Fatalf("expected persisted odds report, got %+v", odds)
	}

	runs, err := client.Runs(ctx, RunsRequest{})
	if err != nil {
		t.Fatalf("runs: %v", err)
	}
	if len(runs) != 1 || runs[0].RunID != "run-e2e" || runs[0].Agents != 40 {
		t.Fatalf("unexpected run listing: %+v", runs)
	}

	export, err := client.Export(ctx, ExportRequest{Latest: true})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if export.RunID != "run-e2e" {
		t.Fatalf("expected latest export run-e2e, got %s", export.RunID)
	}
	if _, err := os.Stat(filepath.Join(export.Directory, "odds_report.json")); err != nil {
		t.Fatalf("expected exported odds report: %v", err)
	}
}

func TestRunDefaultsRunID(t *testing.T) {
	client := newTestClient(t)

	summary, err := client.Run(context.Background(), RunRequest{
		Agents:          40,
		TimeSpan:        10,
		Seed:            3,
		PercentMinority: 0.5,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.RunID == "" {
		t.Fatal("expected a generated run id")
	}
}

func TestRunDeterministicBySeed(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	first, err := client.Run(ctx, RunRequest{RunID: "a", Agents: 40, TimeSpan: 15, Seed: 9, PercentMinority: 0.5})
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := client.Run(ctx, RunRequest{RunID: "b", Agents: 40, TimeSpan: 15, Seed: 9, PercentMinority: 0.5})
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if first.FinalDepression != second.FinalDepression || first.FinalConcealment != second.FinalConcealment {
		t.Fatal("identical seeds must produce identical outcomes")
	}
	for i := range first.Odds {
		if first.Odds[i].Value != second.Odds[i].Value {
			t.Fatalf("odds %s differ across identical seeds", first.Odds[i].Label)
		}
	}
}

func TestRunRejectsBadBias(t *testing.T) {
	client := newTestClient(t)

	_, err := client.Run(context.Background(), RunRequest{PolicyBias: "sideways"})
	if err == nil {
		t.Fatal("expected error for unknown policy bias")
	}
}

func TestSensitivityEndToEnd(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	summary, err := client.Sensitivity(ctx, SensitivityRequest{Base: RunRequest{
		RunID:           "sweep",
		Agents:          30,
		TimeSpan:        10,
		Seed:            2,
		PercentMinority: 0.4,
	}})
	if err != nil {
		t.Fatalf("sensitivity: %v", err)
	}

	if len(summary.Correlations) != 6 {
		t.Fatalf("expected 6 correlation results, got %d", len(summary.Correlations))
	}
	for _, result := range summary.Correlations {
		if len(result.Levels) != 6 {
			t.Fatalf("%s: expected 6 sweep levels, got %d", result.Label, len(result.Levels))
		}
	}
	if _, err := os.Stat(filepath.Join(summary.ArtifactsDir, "correlations.json")); err != nil {
		t.Fatalf("expected correlations artifact: %v", err)
	}

	correlations, ok, err := client.store.GetCorrelationReport(ctx, "sweep")
	if err != nil || !ok || len(correlations) != 6 {
		t.Fatalf("expected persisted correlation report: ok=%v err=%v", ok, err)
	}
}

func TestSensitivityHoldsPopulationConstant(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	base := RunRequest{Agents: 30, TimeSpan: 10, Seed: 9, PercentMinority: 0.4}

	runReq := base
	runReq.RunID = "const-base"
	run, err := client.Run(ctx, runReq)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	sweepReq := base
	sweepReq.RunID = "const-sweep"
	summary, err := client.Sensitivity(ctx, SensitivityRequest{Base: sweepReq})
	if err != nil {
		t.Fatalf("sensitivity: %v", err)
	}

	// The second sweep level multiplies the first variable by 1.0, leaving
	// every parameter at its base value; with the population rebuilt from
	// the same seed the trial must reproduce the standalone run exactly.
	first := summary.Correlations[0]
	if len(first.DepressionPcts) < 2 || len(first.ConcealPcts) < 2 {
		t.Fatalf("expected at least two sweep levels, got %+v", first)
	}
	if first.DepressionPcts[1] != run.FinalDepression {
		t.Fatalf("unit-multiplier trial depression %v differs from base run %v",
			first.DepressionPcts[1], run.FinalDepression)
	}
	if first.ConcealPcts[1] != run.FinalConcealment {
		t.Fatalf("unit-multiplier trial concealment %v differs from base run %v",
			first.ConcealPcts[1], run.FinalConcealment)
	}
}

func TestResolveRunIDValidation(t *testing.T) {
	client := newTestClient(t)

	if _, err := client.Export(context.Background(), ExportRequest{}); err == nil {
		t.Fatal("expected error without run id or latest")
	}
	if _, err := client.Export(context.Background(), ExportRequest{RunID: "x", Latest: true}); err == nil {
		t.Fatal("expected error for run id together with latest")
	}
	if _, err := client.Diagnostics(context.Background(), DiagnosticsRequest{Latest: true}); err == nil {
		t.Fatal("expected error with no runs recorded")
	}
}
