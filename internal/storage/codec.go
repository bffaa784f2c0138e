package storage

import (
	"encoding/json"

	"agora/internal/model"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

func EncodeRunConfig(cfg model.RunConfig) ([]byte, error) {
	return json.Marshal(cfg)
}

func DecodeRunConfig(payload []byte) (model.RunConfig, error) {
	var cfg model.RunConfig
	if err := json.Unmarshal(payload, &cfg); err != nil {
		return model.RunConfig{}, err
	}
	return cfg, nil
}

func EncodeTickDiagnostics(diagnostics []model.TickDiagnostics) ([]byte, error) {
	return json.Marshal(diagnostics)
}

func DecodeTickDiagnostics(payload []byte) ([]model.TickDiagnostics, error) {
	var diagnostics []model.TickDiagnostics
	if err := json.Unmarshal(payload, &diagnostics); err != nil {
		return nil, err
	}
	return diagnostics, nil
}

func EncodeAgentSnapshots(snapshots []model.AgentSnapshot) ([]byte, error) {
	return json.Marshal(snapshots)
}

func DecodeAgentSnapshots(payload []byte) ([]model.AgentSnapshot, error) {
	var snapshots []model.AgentSnapshot
	if err := json.Unmarshal(payload, &snapshots); err != nil {
		return nil, err
	}
	return snapshots, nil
}

func EncodeOddsReport(results []model.OddsResult) ([]byte, error) {
	return json.Marshal(results)
}

func DecodeOddsReport(payload []byte) ([]model.OddsResult, error) {
	var results []model.OddsResult
	if err := json.Unmarshal(payload, &results); err != nil {
		return nil, err
	}
	return results, nil
}

func EncodeCorrelationReport(results []model.CorrelationResult) ([]byte, error) {
	return json.Marshal(results)
}

func DecodeCorrelationReport(payload []byte) ([]model.CorrelationResult, error) {
	var results []model.CorrelationResult
	if err := json.Unmarshal(payload, &results); err != nil {
		return nil, err
	}
	return results, nil
}
