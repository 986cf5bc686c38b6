package compliance

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the compliance rule set the engine evaluates against. The
// state denylist is configuration supplied by the compliance-of-record
// source, not hard-coded truth; the shipped default is only a
// fallback for deployments that have not mounted a rules file.
type Config struct {
	BlockedStates     []string `yaml:"blocked_states"`
	HighRiskThreshold float64  `yaml:"high_risk_threshold"`
}

// defaultBlockedStates mirrors the denylist of record at the time of
// writing. Two-letter USPS codes, uppercase.
var defaultBlockedStates = []string{
	"AK", "AR", "CO", "DE", "HI", "ID", "IA", "KS", "KY", "LA",
	"MN", "MS", "MT", "NV", "ND", "OR", "RI", "SD", "UT", "VT",
	"WA", "WV", "WY",
}

// DefaultConfig returns the compiled-in rule set.
func DefaultConfig() Config {
	return Config{
		BlockedStates:     append([]string(nil), defaultBlockedStates...),
		HighRiskThreshold: 0.8,
	}
}

// LoadConfig reads a YAML rules file. An empty path returns the
// default configuration; fields missing from the file keep their
// defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read compliance config: %w", err)
	}
	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Config{}, fmt.Errorf("parse compliance config: %w", err)
	}
	if len(file.BlockedStates) > 0 {
		cfg.BlockedStates = file.BlockedStates
	}
	if file.HighRiskThreshold > 0 {
		cfg.HighRiskThreshold = file.HighRiskThreshold
	}
	return cfg, nil
}

func (c Config) blockedSet() map[string]struct{} {
	set := make(map[string]struct{}, len(c.BlockedStates))
	for _, code := range c.BlockedStates {
		set[strings.ToUpper(strings.TrimSpace(code))] = struct{}{}
	}
	return set
}
