package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/80-20-Human-In-The-Loop/Django-Mercury-Performance-Testing-sub000/analyzer"
)

// LoadScoringThresholds reads the optional YAML threshold override file.
// An empty path returns the contract defaults. Partially specified files are
// fine: the scorer backfills missing tables with defaults.
func LoadScoringThresholds(path string) (analyzer.ScoringThresholds, error) {
	if path == "" {
		return analyzer.DefaultScoringThresholds(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return analyzer.ScoringThresholds{}, fmt.Errorf("reading thresholds file %s: %w", path, err)
	}

	var thresholds analyzer.ScoringThresholds
	if err := yaml.Unmarshal(data, &thresholds); err != nil {
		return analyzer.ScoringThresholds{}, fmt.Errorf("parsing thresholds file %s: %w", path, err)
	}
	return thresholds, nil
}
