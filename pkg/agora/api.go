// Package agora is the public client for running minority-stress
// simulations, benchmarking them against literature odds ratios, and
// inspecting persisted runs.
package agora

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"agora/internal/member"
	"agora/internal/model"
	"agora/internal/policy"
	"agora/internal/sensitivity"
	"agora/internal/sim"
	"agora/internal/society"
	"agora/internal/stats"
	"agora/internal/storage"
)

const (
	defaultResultsDir = "results"
	defaultExportsDir = "exports"
	defaultDBPath     = "agora.db"
)

type Options struct {
	StoreKind  string
	DBPath     string
	ResultsDir string
	ExportsDir string
}

type Client struct {
	store       storage.Store
	initialized bool

	resultsDir string
	exportsDir string
}

type RunRequest struct {
	RunID           string
	Agents          int
	TimeSpan        int
	Seed            int64
	PercentMinority float64
	MeanDegree      int
	NeighborHops    int

	SupportDepressionImpact      float64
	ConcealDiscriminateImpact    float64
	DiscriminateConcealImpact    float64
	DiscriminateDepressionImpact float64
	ConcealDepressionImpact      float64

	ForcedPolicyScore *float64
	PolicyBias        string

	PlotFrames bool
	PlotEvery  int
}

type RunSummary struct {
	RunID             string
	ArtifactsDir      string
	FinalDepression   float64
	FinalConcealment  float64
	Odds              []model.OddsResult
	OddsInRange       bool
	OddsOutsideLabels []string
}

type SensitivityRequest struct {
	Base RunRequest
}

type SensitivitySummary struct {
	RunID        string
	ArtifactsDir string
	Odds         []model.OddsResult
	OddsInRange  bool
	Correlations []model.CorrelationResult
}

type RunsRequest struct {
	Limit int
}

type RunItem struct {
	RunID           string
	CreatedAtUTC    string
	Agents          int
	TimeSpan        int
	Seed            int64
	PercentMinority float64
	FinalDepression float64
	FinalConceal    float64
	OddsInRange     bool
}

type DiagnosticsRequest struct {
	RunID  string
	Latest bool
	Limit  int
}

type OddsRequest struct {
	RunID  string
	Latest bool
}

type ExportRequest struct {
	RunID  string
	Latest bool
	OutDir string
}

type ExportSummary struct {
	RunID     string
	Directory string
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	resultsDir := opts.ResultsDir
	if resultsDir == "" {
		resultsDir = defaultResultsDir
	}
	exportsDir := opts.ExportsDir
	if exportsDir == "" {
		exportsDir = defaultExportsDir
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}

	return &Client{
		store:      store,
		resultsDir: resultsDir,
		exportsDir: exportsDir,
	}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Init(ctx context.Context) error {
	return c.ensureStore(ctx)
}

func (c *Client) Run(ctx context.Context, req RunRequest) (RunSummary, error) {
	req = withRunDefaults(req)
	bias, err := biasFromName(req.PolicyBias)
	if err != nil {
		return RunSummary{}, err
	}
	if err := c.ensureStore(ctx); err != nil {
		return RunSummary{}, err
	}

	outcome, err := c.simulate(req, bias)
	if err != nil {
		return RunSummary{}, err
	}

	odds, err := sensitivity.OddsRatioTests(outcome.network)
	if err != nil {
		return RunSummary{}, err
	}
	inRange, outside := sensitivity.AllInRange(odds)

	runDir, err := c.persistRun(ctx, req, bias, outcome, odds, nil)
	if err != nil {
		return RunSummary{}, err
	}

	return RunSummary{
		RunID:             req.RunID,
		ArtifactsDir:      filepath.Clean(runDir),
		FinalDepression:   outcome.finalDepression,
		FinalConcealment:  outcome.finalConceal,
		Odds:              odds,
		OddsInRange:       inRange,
		OddsOutsideLabels: outside,
	}, nil
}

func (c *Client) Sensitivity(ctx context.Context, req SensitivityRequest) (SensitivitySummary, error) {
	base := withRunDefaults(req.Base)
	bias, err := biasFromName(base.PolicyBias)
	if err != nil {
		return SensitivitySummary{}, err
	}
	if err := c.ensureStore(ctx); err != nil {
		return SensitivitySummary{}, err
	}

	outcome, err := c.simulate(base, bias)
	if err != nil {
		return SensitivitySummary{}, err
	}
	odds, err := sensitivity.OddsRatioTests(outcome.network)
	if err != nil {
		return SensitivitySummary{}, err
	}
	inRange, _ := sensitivity.AllInRange(odds)

	baseParams := sensitivity.Params{
		PercentMinority: base.PercentMinority,
		Impacts:         impactsFromRequest(base),
	}
	// Every trial rebuilds the population from the base seed: the network
	// stays constant across the sweep and only the parameters vary.
	correlations, err := sensitivity.CorrelationSweep(baseParams, func(p sensitivity.Params) (float64, float64, error) {
		trialReq := base
		trialReq.PercentMinority = p.PercentMinority
		trialReq.SupportDepressionImpact = p.Impacts.SupportDepression
		trialReq.ConcealDiscriminateImpact = p.Impacts.ConcealDiscriminate
		trialReq.DiscriminateConcealImpact = p.Impacts.DiscriminateConceal
		trialReq.DiscriminateDepressionImpact = p.Impacts.DiscriminateDepression
		trialReq.ConcealDepressionImpact = p.Impacts.ConcealDepression
		trialReq.PlotFrames = false

		trialOutcome, err := c.simulate(trialReq, bias)
		if err != nil {
			return 0, 0, err
		}
		return trialOutcome.finalDepression, trialOutcome.finalConceal, nil
	})
	if err != nil {
		return SensitivitySummary{}, err
	}

	runDir, err := c.persistRun(ctx, base, bias, outcome, odds, correlations)
	if err != nil {
		return SensitivitySummary{}, err
	}

	return SensitivitySummary{
		RunID:        base.RunID,
		ArtifactsDir: filepath.Clean(runDir),
		Odds:         odds,
		OddsInRange:  inRange,
		Correlations: correlations,
	}, nil
}

func (c *Client) Runs(_ context.Context, req RunsRequest) ([]RunItem, error) {
	if req.Limit <= 0 {
		req.Limit = 20
	}

	entries, err := stats.ListRunIndex(c.resultsDir)
	if err != nil {
		return nil, err
	}
	if len(entries) > req.Limit {
		entries = entries[:req.Limit]
	}

	out := make([]RunItem, 0, len(entries))
	for _, e := range entries {
		out = append(out, RunItem{
			RunID:           e.RunID,
			CreatedAtUTC:    e.CreatedAtUTC,
			Agents:          e.Agents,
			TimeSpan:        e.TimeSpan,
			Seed:            e.Seed,
			PercentMinority: e.PercentMinority,
			FinalDepression: e.FinalDepression,
			FinalConceal:    e.FinalConceal,
			OddsInRange:     e.OddsInRange,
		})
	}
	return out, nil
}

func (c *Client) Diagnostics(ctx context.Context, req DiagnosticsRequest) ([]model.TickDiagnostics, error) {
	if req.Limit < 0 {
		return nil, errors.New("limit must be >= 0")
	}
	runID, err := c.resolveRunID(req.RunID, req.Latest)
	if err != nil {
		return nil, err
	}
	if err := c.ensureStore(ctx); err != nil {
		return nil, err
	}

	diagnostics, ok, err := c.store.GetTickDiagnostics(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("diagnostics not found for run id: %s", runID)
	}
	if req.Limit > 0 && len(diagnostics) > req.Limit {
		diagnostics = diagnostics[len(diagnostics)-req.Limit:]
	}
	out := make([]model.TickDiagnostics, len(diagnostics))
	copy(out, diagnostics)
	return out, nil
}

func (c *Client) Odds(ctx context.Context, req OddsRequest) ([]model.OddsResult, error) {
	runID, err := c.resolveRunID(req.RunID, req.Latest)
	if err != nil {
		return nil, err
	}
	if err := c.ensureStore(ctx); err != nil {
		return nil, err
	}

	results, ok, err := c.store.GetOddsReport(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("odds report not found for run id: %s", runID)
	}
	out := make([]model.OddsResult, len(results))
	copy(out, results)
	return out, nil
}

func (c *Client) Export(_ context.Context, req ExportRequest) (ExportSummary, error) {
	runID, err := c.resolveRunID(req.RunID, req.Latest)
	if err != nil {
		return ExportSummary{}, err
	}
	if req.OutDir == "" {
		req.OutDir = c.exportsDir
	}

	exportedDir, err := stats.ExportRunArtifacts(c.resultsDir, runID, req.OutDir)
	if err != nil {
		return ExportSummary{}, err
	}
	return ExportSummary{RunID: runID, Directory: filepath.Clean(exportedDir)}, nil
}

type runOutcome struct {
	network         *sim.Network
	diagnostics     []model.TickDiagnostics
	snapshots       []model.AgentSnapshot
	finalDepression float64
	finalConceal    float64
}

func (c *Client) simulate(req RunRequest, bias policy.Bias) (runOutcome, error) {
	registry, err := member.BuildPopulation(member.PopulationConfig{
		Agents:          req.Agents,
		PercentMinority: req.PercentMinority,
		MeanDegree:      req.MeanDegree,
		NeighborHops:    req.NeighborHops,
		Seed:            req.Seed,
	})
	if err != nil {
		return runOutcome{}, err
	}

	network, err := sim.NewNetwork(sim.Config{
		Registry: registry,
		Ledger:   policy.NewLedger(req.TimeSpan),
		Seed:     req.Seed,
	})
	if err != nil {
		return runOutcome{}, err
	}

	var plotter sim.Plotter
	if req.PlotFrames {
		filePlotter, err := stats.NewFilePlotter(filepath.Join(c.resultsDir, req.RunID))
		if err != nil {
			return runOutcome{}, err
		}
		plotter = filePlotter
	}

	impacts := impactsFromRequest(req)
	overrides := sim.StepOverrides{
		PolicyScore: req.ForcedPolicyScore,
		Bias:        bias,
	}

	diagnostics := make([]model.TickDiagnostics, 0, req.TimeSpan)
	for t := 1; t <= req.TimeSpan; t++ {
		if err := network.Step(t, impacts, overrides); err != nil {
			return runOutcome{}, err
		}

		depressionPct, err := network.PercentAttr(sim.AttrDepression, true)
		if err != nil {
			return runOutcome{}, err
		}
		concealPct, err := network.PercentAttr(sim.AttrConcealment, true)
		if err != nil {
			return runOutcome{}, err
		}
		diagnostics = append(diagnostics, model.TickDiagnostics{
			Time:                  t,
			PolicyScore:           network.Ledger().Score(),
			PotentialScore:        network.Ledger().PotentialScore(),
			DepressionPct:         depressionPct,
			ConcealmentPct:        concealPct,
			MinorityDepressionAvg: network.MinorityDepressionAvg(),
		})

		if plotter != nil && t%req.PlotEvery == 0 {
			if err := network.Visualize(plotter, t); err != nil {
				return runOutcome{}, err
			}
		}
	}

	snapshots := make([]model.AgentSnapshot, 0, registry.NumAgents())
	for id, agent := range registry.Agents() {
		snapshot := member.Snapshot(id, agent)
		snapshot.SchemaVersion = storage.CurrentSchemaVersion
		snapshot.CodecVersion = storage.CurrentCodecVersion
		snapshots = append(snapshots, snapshot)
	}

	outcome := runOutcome{
		network:     network,
		diagnostics: diagnostics,
		snapshots:   snapshots,
	}
	if len(diagnostics) > 0 {
		last := diagnostics[len(diagnostics)-1]
		outcome.finalDepression = last.DepressionPct
		outcome.finalConceal = last.ConcealmentPct
	}
	return outcome, nil
}

func (c *Client) persistRun(ctx context.Context, req RunRequest, bias policy.Bias, outcome runOutcome, odds []model.OddsResult, correlations []model.CorrelationResult) (string, error) {
	cfg := model.RunConfig{
		VersionedRecord: model.VersionedRecord{
			SchemaVersion: storage.CurrentSchemaVersion,
			CodecVersion:  storage.CurrentCodecVersion,
		},
		RunID:                        req.RunID,
		Agents:                       req.Agents,
		TimeSpan:                     req.TimeSpan,
		Seed:                         req.Seed,
		PercentMinority:              req.PercentMinority,
		MeanDegree:                   req.MeanDegree,
		NeighborHops:                 req.NeighborHops,
		SupportDepressionImpact:      req.SupportDepressionImpact,
		ConcealDiscriminateImpact:    req.ConcealDiscriminateImpact,
		DiscriminateConcealImpact:    req.DiscriminateConcealImpact,
		DiscriminateDepressionImpact: req.DiscriminateDepressionImpact,
		ConcealDepressionImpact:      req.ConcealDepressionImpact,
		ForcedPolicyScore:            req.ForcedPolicyScore,
		PolicyBias:                   int(bias),
	}

	if err := c.store.SaveRunConfig(ctx, cfg); err != nil {
		return "", err
	}
	if err := c.store.SaveTickDiagnostics(ctx, req.RunID, outcome.diagnostics); err != nil {
		return "", err
	}
	if err := c.store.SaveAgentSnapshots(ctx, req.RunID, outcome.snapshots); err != nil {
		return "", err
	}
	if err := c.store.SaveOddsReport(ctx, req.RunID, odds); err != nil {
		return "", err
	}
	if correlations != nil {
		if err := c.store.SaveCorrelationReport(ctx, req.RunID, correlations); err != nil {
			return "", err
		}
	}

	runDir, err := stats.WriteRunArtifacts(c.resultsDir, stats.RunArtifacts{
		Config:       cfg,
		Diagnostics:  outcome.diagnostics,
		Snapshots:    outcome.snapshots,
		Odds:         odds,
		Correlations: correlations,
	})
	if err != nil {
		return "", err
	}

	inRange, _ := sensitivity.AllInRange(odds)
	if err := stats.AppendRunIndex(c.resultsDir, stats.RunIndexEntry{
		RunID:           req.RunID,
		Agents:          req.Agents,
		TimeSpan:        req.TimeSpan,
		Seed:            req.Seed,
		PercentMinority: req.PercentMinority,
		FinalDepression: outcome.finalDepression,
		FinalConceal:    outcome.finalConceal,
		OddsInRange:     inRange,
		CreatedAtUTC:    time.Now().UTC().Format(time.RFC3339Nano),
	}); err != nil {
		return "", err
	}
	return runDir, nil
}

func (c *Client) ensureStore(ctx context.Context) error {
	if c.initialized {
		return nil
	}
	if err := c.store.Init(ctx); err != nil {
		return err
	}
	c.initialized = true
	return nil
}

func (c *Client) resolveRunID(runID string, latest bool) (string, error) {
	if runID != "" && latest {
		return "", errors.New("use either run id or latest")
	}
	if latest {
		entries, err := stats.ListRunIndex(c.resultsDir)
		if err != nil {
			return "", err
		}
		if len(entries) == 0 {
			return "", errors.New("no runs available")
		}
		return entries[0].RunID, nil
	}
	if runID == "" {
		return "", errors.New("run id or latest is required")
	}
	return runID, nil
}

func withRunDefaults(req RunRequest) RunRequest {
	if req.RunID == "" {
		req.RunID = uuid.NewString()
	}
	if req.Agents <= 0 {
		req.Agents = 100
	}
	if req.TimeSpan <= 0 {
		req.TimeSpan = 100
	}
	if req.PercentMinority <= 0 {
		req.PercentMinority = 0.1
	}
	if req.MeanDegree <= 0 {
		req.MeanDegree = 4
	}
	if req.SupportDepressionImpact == 0 && req.ConcealDiscriminateImpact == 0 &&
		req.DiscriminateConcealImpact == 0 && req.DiscriminateDepressionImpact == 0 &&
		req.ConcealDepressionImpact == 0 {
		req.SupportDepressionImpact = 1.0
		req.ConcealDiscriminateImpact = 1.0
		req.DiscriminateConcealImpact = 1.0
		req.DiscriminateDepressionImpact = 1.0
		req.ConcealDepressionImpact = 1.0
	}
	if req.PlotEvery <= 0 {
		req.PlotEvery = 10
	}
	return req
}

func impactsFromRequest(req RunRequest) society.Impacts {
	return society.Impacts{
		SupportDepression:      req.SupportDepressionImpact,
		ConcealDiscriminate:    req.ConcealDiscriminateImpact,
		DiscriminateConceal:    req.DiscriminateConcealImpact,
		DiscriminateDepression: req.DiscriminateDepressionImpact,
		ConcealDepression:      req.ConcealDepressionImpact,
	}
}

func biasFromName(name string) (policy.Bias, error) {
	switch name {
	case "", "any":
		return policy.BiasAny, nil
	case "nondiscriminatory":
		return policy.BiasNonDiscriminatory, nil
	case "discriminatory":
		return policy.BiasDiscriminatory, nil
	default:
		return policy.BiasAny, fmt.Errorf("unsupported policy bias: %s", name)
	}
}
