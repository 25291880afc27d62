// Package config loads the optional .claude/autoeng.yaml (or .json) document
// that lets an operator tune reviewer, repo-map and context-budget defaults.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ReviewerConfig tunes external-reviewer invocation.
type ReviewerConfig struct {
	Bin            string `json:"bin,omitempty" yaml:"bin,omitempty"`
	TimeoutSeconds int    `json:"timeout_seconds,omitempty" yaml:"timeout_seconds,omitempty"`
	MaxRetries     int    `json:"max_retries,omitempty" yaml:"max_retries,omitempty"`
}

// RepoMapConfig tunes the repository-map engine.
type RepoMapConfig struct {
	MinIntervalSecs int      `json:"min_interval_secs,omitempty" yaml:"min_interval_secs,omitempty"`
	Formats         []string `json:"formats,omitempty" yaml:"formats,omitempty"`
	Languages       []string `json:"languages,omitempty" yaml:"languages,omitempty"`
}

// ContextBudgets overrides the per-mode context assembler size budgets.
type ContextBudgets struct {
	Autonomous int `json:"autonomous,omitempty" yaml:"autonomous,omitempty"`
	Review     int `json:"review,omitempty" yaml:"review,omitempty"`
	Task       int `json:"task,omitempty" yaml:"task,omitempty"`
}

// ContextConfig groups context-assembler tunables.
type ContextConfig struct {
	Budgets ContextBudgets `json:"budgets,omitempty" yaml:"budgets,omitempty"`
}

// LoggingConfig controls the CLI's stdlib logger verbosity.
type LoggingConfig struct {
	Level string `json:"level,omitempty" yaml:"level,omitempty"`
}

// Config is the decoded .claude/autoeng.yaml / .json document.
type Config struct {
	Reviewer ReviewerConfig `json:"reviewer,omitempty" yaml:"reviewer,omitempty"`
	RepoMap  RepoMapConfig  `json:"repo_map,omitempty" yaml:"repo_map,omitempty"`
	Context  ContextConfig  `json:"context,omitempty" yaml:"context,omitempty"`
	Logging  LoggingConfig  `json:"logging,omitempty" yaml:"logging,omitempty"`
}

// Default returns the built-in configuration used when no document is present.
func Default() Config {
	return Config{
		Reviewer: ReviewerConfig{TimeoutSeconds: 30, MaxRetries: 3},
		RepoMap:  RepoMapConfig{MinIntervalSecs: 10, Formats: []string{"toon"}},
		Context: ContextConfig{Budgets: ContextBudgets{
			Autonomous: 80000,
			Review:     40000,
			Task:       30000,
		}},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Filename is the config file this loader looks for, in priority order.
var Filename = []string{"autoeng.yaml", "autoeng.yml", "autoeng.json"}

// Load looks for .claude/<Filename> under projectRoot and strictly decodes
// it, rejecting unknown top-level keys. A missing file yields Default(), nil.
func Load(projectRoot string) (Config, error) {
	for _, name := range Filename {
		path := filepath.Join(projectRoot, ".claude", name)
		b, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return Config{}, fmt.Errorf("read %s: %w", path, err)
		}
		cfg := Default()
		if err := decodeStrict(path, b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
		return cfg, nil
	}
	return Default(), nil
}

func decodeStrict(path string, b []byte, cfg *Config) error {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return decodeJSONStrict(b, cfg)
	}
	return decodeYAMLStrict(b, cfg)
}

func decodeJSONStrict(b []byte, cfg *Config) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return err
	}
	var trailing any
	if err := dec.Decode(&trailing); err != io.EOF {
		if err == nil {
			return fmt.Errorf("json: multiple top-level values are not allowed")
		}
		return err
	}
	return nil
}

func decodeYAMLStrict(b []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return err
	}
	var trailing any
	if err := dec.Decode(&trailing); err != io.EOF {
		if err == nil {
			return fmt.Errorf("yaml: multiple documents are not allowed")
		}
		return err
	}
	return nil
}
