package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"agora/internal/storage"
	agoraapi "agora/pkg/agora"
)

const (
	resultsDir = "results"
	exportsDir = "exports"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "init":
		return runInit(ctx, args[1:])
	case "run":
		return runRun(ctx, args[1:])
	case "sensitivity":
		return runSensitivity(ctx, args[1:])
	case "runs":
		return runRuns(ctx, args[1:])
	case "diagnostics":
		return runDiagnostics(ctx, args[1:])
	case "odds":
		return runOdds(ctx, args[1:])
	case "export":
		return runExport(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func usageError(msg string) error {
	return fmt.Errorf(`%s

usage: agoractl <command> [flags]

commands:
  init         initialize the store backend
  run          run one simulation and benchmark its odds ratios
  sensitivity  run the full sensitivity sweep around a base configuration
  runs         list persisted runs, newest first
  diagnostics  print per-tick diagnostics for a run
  odds         print the odds-ratio report for a run
  export       copy a run's artifacts to an export directory`, msg)
}

func runInit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "agora.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := agoraapi.New(agoraapi.Options{StoreKind: *storeKind, DBPath: *dbPath})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err := client.Init(ctx); err != nil {
		return err
	}

	fmt.Printf("initialized store=%s\n", *storeKind)
	return nil
}

func newRunFlagSet(name string) (*flag.FlagSet, *runFlags) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	flags := &runFlags{
		configPath:      fs.String("config", "", "optional run config YAML path"),
		runID:           fs.String("run-id", "", "explicit run id (optional)"),
		agents:          fs.Int("agents", 0, "population size"),
		timeSpan:        fs.Int("time-span", 0, "simulation length in ticks"),
		seed:            fs.Int64("seed", 1, "rng seed"),
		percentMinority: fs.Float64("percent-minority", 0, "minority share of the population [0,1]"),
		meanDegree:      fs.Int("mean-degree", 0, "mean contacts per agent"),
		neighborHops:    fs.Int("neighbor-hops", 0, "neighborhood radius for exposure (default first-degree)"),
		policyScore:     fs.Float64("policy-score", 0, "enforce policies with this score on enforcement ticks"),
		policyBias:      fs.String("policy-bias", "", "enforced policy bias: any|nondiscriminatory|discriminatory"),
		plotFrames:      fs.Bool("plot", false, "write network frames during the run"),
		plotEvery:       fs.Int("plot-every", 0, "ticks between plotted frames"),
		storeKind:       fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite"),
		dbPath:          fs.String("db-path", "agora.db", "sqlite database path"),
	}
	return fs, flags
}

type runFlags struct {
	configPath      *string
	runID           *string
	agents          *int
	timeSpan        *int
	seed            *int64
	percentMinority *float64
	meanDegree      *int
	neighborHops    *int
	policyScore     *float64
	policyBias      *string
	plotFrames      *bool
	plotEvery       *int
	storeKind       *string
	dbPath          *string
}

func (f *runFlags) buildRequest(fs *flag.FlagSet) (agoraapi.RunRequest, error) {
	req, err := loadOrDefaultRunRequest(*f.configPath)
	if err != nil {
		return agoraapi.RunRequest{}, err
	}

	set := map[string]bool{}
	fs.Visit(func(fl *flag.Flag) { set[fl.Name] = true })

	if set["run-id"] {
		req.RunID = *f.runID
	}
	if set["agents"] {
		req.Agents = *f.agents
	}
	if set["time-span"] {
		req.TimeSpan = *f.timeSpan
	}
	if set["seed"] {
		req.Seed = *f.seed
	}
	if set["percent-minority"] {
		req.PercentMinority = *f.percentMinority
	}
	if set["mean-degree"] {
		req.MeanDegree = *f.meanDegree
	}
	if set["neighbor-hops"] {
		req.NeighborHops = *f.neighborHops
	}
	if set["policy-score"] {
		score := *f.policyScore
		req.ForcedPolicyScore = &score
	}
	if set["policy-bias"] {
		req.PolicyBias = *f.policyBias
	}
	if set["plot"] {
		req.PlotFrames = *f.plotFrames
	}
	if set["plot-every"] {
		req.PlotEvery = *f.plotEvery
	}
	if req.Seed == 0 {
		req.Seed = *f.seed
	}
	return req, nil
}

func (f *runFlags) newClient() (*agoraapi.Client, error) {
	return agoraapi.New(agoraapi.Options{
		StoreKind:  *f.storeKind,
		DBPath:     *f.dbPath,
		ResultsDir: resultsDir,
		ExportsDir: exportsDir,
	})
}

func runRun(ctx context.Context, args []string) error {
	fs, flags := newRunFlagSet("run")
	if err := fs.Parse(args); err != nil {
		return err
	}
	req, err := flags.buildRequest(fs)
	if err != nil {
		return err
	}

	client, err := flags.newClient()
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summary, err := client.Run(ctx, req)
	if err != nil {
		return err
	}

	fmt.Printf("run=%s artifacts=%s\n", summary.RunID, summary.ArtifactsDir)
	fmt.Printf("final depression=%.4f concealment=%.4f\n", summary.FinalDepression, summary.FinalConcealment)
	for _, result := range summary.Odds {
		status := "in-range"
		if !result.InRange {
			status = "outside"
		}
		fmt.Printf("  %-36s %.4f [%g, %g] %s\n", result.Label, result.Value, result.Low, result.High, status)
	}
	if !summary.OddsInRange {
		fmt.Printf("benchmarks outside literature range: %v\n", summary.OddsOutsideLabels)
	}
	return nil
}

func runSensitivity(ctx context.Context, args []string) error {
	fs, flags := newRunFlagSet("sensitivity")
	if err := fs.Parse(args); err != nil {
		return err
	}
	req, err := flags.buildRequest(fs)
	if err != nil {
		return err
	}

	client, err := flags.newClient()
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summary, err := client.Sensitivity(ctx, agoraapi.SensitivityRequest{Base: req})
	if err != nil {
		return err
	}

	fmt.Printf("run=%s artifacts=%s odds-in-range=%v\n", summary.RunID, summary.ArtifactsDir, summary.OddsInRange)
	for _, result := range summary.Correlations {
		fmt.Printf("  %-36s depression r=%+.4f concealment r=%+.4f\n", result.Label, result.DepressionR, result.ConcealmentR)
	}
	return nil
}

func runRuns(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	limit := fs.Int("limit", 20, "maximum entries to list")
	asJSON := fs.Bool("json", false, "emit JSON instead of table output")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := agoraapi.New(agoraapi.Options{ResultsDir: resultsDir})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	items, err := client.Runs(ctx, agoraapi.RunsRequest{Limit: *limit})
	if err != nil {
		return err
	}

	if *asJSON {
		return printJSON(items)
	}
	for _, item := range items {
		fmt.Printf("%s agents=%d ticks=%d seed=%d minority=%.2f depression=%.4f conceal=%.4f in-range=%v %s\n",
			item.RunID, item.Agents, item.TimeSpan, item.Seed, item.PercentMinority,
			item.FinalDepression, item.FinalConceal, item.OddsInRange, item.CreatedAtUTC)
	}
	return nil
}

func runDiagnostics(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("diagnostics", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "use the newest run")
	limit := fs.Int("limit", 0, "print only the last N ticks (0 prints all)")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "agora.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := agoraapi.New(agoraapi.Options{StoreKind: *storeKind, DBPath: *dbPath, ResultsDir: resultsDir})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	diagnostics, err := client.Diagnostics(ctx, agoraapi.DiagnosticsRequest{RunID: *runID, Latest: *latest, Limit: *limit})
	if err != nil {
		return err
	}

	for _, tick := range diagnostics {
		fmt.Printf("t=%d policy=%.4f potential=%.4f depression=%.4f conceal=%.4f minority-depression=%.4f\n",
			tick.Time, tick.PolicyScore, tick.PotentialScore, tick.DepressionPct, tick.ConcealmentPct, tick.MinorityDepressionAvg)
	}
	return nil
}

func runOdds(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("odds", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "use the newest run")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "agora.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := agoraapi.New(agoraapi.Options{StoreKind: *storeKind, DBPath: *dbPath, ResultsDir: resultsDir})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	results, err := client.Odds(ctx, agoraapi.OddsRequest{RunID: *runID, Latest: *latest})
	if err != nil {
		return err
	}

	for _, result := range results {
		status := "in-range"
		if !result.InRange {
			status = "outside"
		}
		fmt.Printf("%-36s %.4f [%g, %g] %s\n", result.Label, result.Value, result.Low, result.High, status)
	}
	return nil
}

func runExport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "export the newest run")
	outDir := fs.String("out", exportsDir, "export directory")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := agoraapi.New(agoraapi.Options{ResultsDir: resultsDir, ExportsDir: *outDir})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summary, err := client.Export(ctx, agoraapi.ExportRequest{RunID: *runID, Latest: *latest, OutDir: *outDir})
	if err != nil {
		return err
	}

	fmt.Printf("exported run=%s dir=%s\n", summary.RunID, summary.Directory)
	return nil
}

func printJSON(value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
