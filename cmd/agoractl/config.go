package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	agoraapi "agora/pkg/agora"
)

// runConfigFile is the YAML shape accepted by -config. Impact magnitudes
// default to 1.0 when the whole block is omitted.
type runConfigFile struct {
	RunID           string  `yaml:"run_id"`
	Agents          int     `yaml:"agents"`
	TimeSpan        int     `yaml:"time_span"`
	Seed            int64   `yaml:"seed"`
	PercentMinority float64 `yaml:"percent_minority"`
	MeanDegree      int     `yaml:"mean_degree"`
	NeighborHops    int     `yaml:"neighbor_hops"`

	Impacts struct {
		SupportDepression      float64 `yaml:"support_depression"`
		ConcealDiscriminate    float64 `yaml:"conceal_discriminate"`
		DiscriminateConceal    float64 `yaml:"discriminate_conceal"`
		DiscriminateDepression float64 `yaml:"discriminate_depression"`
		ConcealDepression      float64 `yaml:"conceal_depression"`
	} `yaml:"impacts"`

	Policy struct {
		Score *float64 `yaml:"score"`
		Bias  string   `yaml:"bias"`
	} `yaml:"policy"`

	Plot struct {
		Frames bool `yaml:"frames"`
		Every  int  `yaml:"every"`
	} `yaml:"plot"`
}

func loadRunRequestFromConfig(path string) (agoraapi.RunRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return agoraapi.RunRequest{}, err
	}

	var cfg runConfigFile
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return agoraapi.RunRequest{}, err
	}

	return agoraapi.RunRequest{
		RunID:                        cfg.RunID,
		Agents:                       cfg.Agents,
		TimeSpan:                     cfg.TimeSpan,
		Seed:                         cfg.Seed,
		PercentMinority:              cfg.PercentMinority,
		MeanDegree:                   cfg.MeanDegree,
		NeighborHops:                 cfg.NeighborHops,
		SupportDepressionImpact:      cfg.Impacts.SupportDepression,
		ConcealDiscriminateImpact:    cfg.Impacts.ConcealDiscriminate,
		DiscriminateConcealImpact:    cfg.Impacts.DiscriminateConceal,
		DiscriminateDepressionImpact: cfg.Impacts.DiscriminateDepression,
		ConcealDepressionImpact:      cfg.Impacts.ConcealDepression,
		ForcedPolicyScore:            cfg.Policy.Score,
		PolicyBias:                   cfg.Policy.Bias,
		PlotFrames:                   cfg.Plot.Frames,
		PlotEvery:                    cfg.Plot.Every,
	}, nil
}

func loadOrDefaultRunRequest(configPath string) (agoraapi.RunRequest, error) {
	if configPath == "" {
		return agoraapi.RunRequest{}, nil
	}
	req, err := loadRunRequestFromConfig(configPath)
	if err != nil {
		return agoraapi.RunRequest{}, fmt.Errorf("load config: %w", err)
	}
	return req, nil
}
