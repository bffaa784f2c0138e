package stats

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"agora/internal/model"
)

const runIndexFile = "run_index.json"

// RunArtifacts is everything one simulation run leaves on disk.
type RunArtifacts struct {
	Config       model.RunConfig           `json:"config"`
	Diagnostics  []model.TickDiagnostics   `json:"diagnostics,omitempty"`
	Snapshots    []model.AgentSnapshot     `json:"snapshots,omitempty"`
	Odds         []model.OddsResult        `json:"odds,omitempty"`
	Correlations []model.CorrelationResult `json:"correlations,omitempty"`
}

type RunIndexEntry struct {
	RunID           string  `json:"run_id"`
	Agents          int     `json:"agents"`
	TimeSpan        int     `json:"time_span"`
	Seed            int64   `json:"seed"`
	PercentMinority float64 `json:"percent_minority"`
	FinalDepression float64 `json:"final_depression_pct"`
	FinalConceal    float64 `json:"final_concealment_pct"`
	OddsInRange     bool    `json:"odds_in_range"`
	CreatedAtUTC    string  `json:"created_at_utc"`
}

func WriteRunArtifacts(baseDir string, artifacts RunArtifacts) (string, error) {
	if artifacts.Config.RunID == "" {
		return "", fmt.Errorf("run id is required")
	}

	runDir := filepath.Join(baseDir, artifacts.Config.RunID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, "config.json"), artifacts.Config); err != nil {
		return "", err
	}
	if err := WriteDiagnosticsSeries(runDir, artifacts.Diagnostics); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, "agent_snapshots.json"), artifacts.Snapshots); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, "odds_report.json"), artifacts.Odds); err != nil {
		return "", err
	}
	if artifacts.Correlations != nil {
		if err := writeJSON(filepath.Join(runDir, "correlations.json"), artifacts.Correlations); err != nil {
			return "", err
		}
	}

	return runDir, nil
}

func AppendRunIndex(baseDir string, entry RunIndexEntry) error {
	if entry.RunID == "" {
		return fmt.Errorf("run id is required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return err
	}

	index, err := ListRunIndex(baseDir)
	if err != nil {
		return err
	}

	for i := range index {
		if index[i].RunID == entry.RunID {
			index[i] = entry
			return writeJSON(filepath.Join(baseDir, runIndexFile), index)
		}
	}

	index = append(index, entry)
	return writeJSON(filepath.Join(baseDir, runIndexFile), index)
}

func ListRunIndex(baseDir string) ([]RunIndexEntry, error) {
	path := filepath.Join(baseDir, runIndexFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunIndexEntry{}, nil
		}
		return nil, err
	}

	var entries []RunIndexEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}

	type indexedEntry struct {
		entry RunIndexEntry
		idx   int
	}
	indexed := make([]indexedEntry, len(entries))
	for i := range entries {
		indexed[i] = indexedEntry{entry: entries[i], idx: i}
	}
	sort.Slice(indexed, func(i, j int) bool {
		if indexed[i].entry.CreatedAtUTC == indexed[j].entry.CreatedAtUTC {
			// Prefer later appended entries for equal timestamps.
			return indexed[i].idx > indexed[j].idx
		}
		return indexed[i].entry.CreatedAtUTC > indexed[j].entry.CreatedAtUTC
	})

	sorted := make([]RunIndexEntry, 0, len(indexed))
	for _, item := range indexed {
		sorted = append(sorted, item.entry)
	}
	return sorted, nil
}

func ExportRunArtifacts(baseDir, runID, outDir string) (string, error) {
	if runID == "" {
		return "", fmt.Errorf("run id is required")
	}

	src := filepath.Join(baseDir, runID)
	if _, err := os.Stat(src); err != nil {
		return "", err
	}

	dst := filepath.Join(outDir, runID)
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return "", err
	}

	files := []string{"config.json", "diagnostics.csv", "agent_snapshots.json", "odds_report.json"}
	for _, file := range files {
		if err := copyFile(filepath.Join(src, file), filepath.Join(dst, file)); err != nil {
			return "", err
		}
	}
	correlationsPath := filepath.Join(src, "correlations.json")
	if _, err := os.Stat(correlationsPath); err == nil {
		if err := copyFile(correlationsPath, filepath.Join(dst, "correlations.json")); err != nil {
			return "", err
		}
	} else if err != nil && !os.IsNotExist(err) {
		return "", err
	}

	return dst, nil
}

func ReadRunConfig(baseDir, runID string) (model.RunConfig, bool, error) {
	path := filepath.Join(baseDir, runID, "config.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.RunConfig{}, false, nil
		}
		return model.RunConfig{}, false, err
	}

	var cfg model.RunConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return model.RunConfig{}, false, err
	}
	return cfg, true, nil
}

func ReadOddsReport(baseDir, runID string) ([]model.OddsResult, bool, error) {
	path := filepath.Join(baseDir, runID, "odds_report.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var results []model.OddsResult
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, false, err
	}
	return results, true, nil
}

func WriteDiagnosticsSeries(runDir string, diagnostics []model.TickDiagnostics) error {
	path := filepath.Join(runDir, "diagnostics.csv")
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	header := []string{"time", "policy_score", "potential_score", "depression_pct", "concealment_pct", "minority_depression_avg"}
	if err := writer.Write(header); err != nil {
		return err
	}
	for _, tick := range diagnostics {
		record := []string{
			strconv.Itoa(tick.Time),
			strconv.FormatFloat(tick.PolicyScore, 'f', -1, 64),
			strconv.FormatFloat(tick.PotentialScore, 'f', -1, 64),
			strconv.FormatFloat(tick.DepressionPct, 'f', -1, 64),
			strconv.FormatFloat(tick.ConcealmentPct, 'f', -1, 64),
			strconv.FormatFloat(tick.MinorityDepressionAvg, 'f', -1, 64),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func ReadDiagnosticsSeries(baseDir, runID string) ([]model.TickDiagnostics, bool, error) {
	path := filepath.Join(baseDir, runID, "diagnostics.csv")
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return []model.TickDiagnostics{}, true, nil
		}
		return nil, false, err
	}
	if len(header) < 6 {
		return nil, false, fmt.Errorf("diagnostics header must have at least 6 columns")
	}

	diagnostics := make([]model.TickDiagnostics, 0, 128)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, false, err
		}
		if len(record) < 6 {
			return nil, false, fmt.Errorf("diagnostics row must have at least 6 columns")
		}
		tick, err := parseDiagnosticsRecord(record)
		if err != nil {
			return nil, false, err
		}
		diagnostics = append(diagnostics, tick)
	}
	return diagnostics, true, nil
}

func parseDiagnosticsRecord(record []string) (model.TickDiagnostics, error) {
	time, err := strconv.Atoi(strings.TrimSpace(record[0]))
	if err != nil {
		return model.TickDiagnostics{}, err
	}
	values := make([]float64, 5)
	for i := 0; i < 5; i++ {
		value, err := strconv.ParseFloat(strings.TrimSpace(record[i+1]), 64)
		if err != nil {
			return model.TickDiagnostics{}, err
		}
		values[i] = value
	}
	return model.TickDiagnostics{
		Time:                  time,
		PolicyScore:           values[0],
		PotentialScore:        values[1],
		DepressionPct:         values[2],
		ConcealmentPct:        values[3],
		MinorityDepressionAvg: values[4],
	}, nil
}

func writeJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
