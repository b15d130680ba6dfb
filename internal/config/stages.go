package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// StageConfig maps named stages to ordered task lists. It mirrors the
// per-project JSON file:
//
//	{ "tests": { "preCommit": ["lint", "typecheck"], "prePush": [...] } }
type StageConfig struct {
	Tests struct {
		PreCommit []string `json:"preCommit"`
		PrePush   []string `json:"prePush"`
	} `json:"tests"`
}

// DefaultStages returns the built-in stage lists used when the project has
// no stage config file or it cannot be parsed.
func DefaultStages() *StageConfig {
	var s StageConfig
	s.Tests.PreCommit = []string{"lint", "typecheck"}
	s.Tests.PrePush = []string{"lint", "typecheck", "build", "website"}
	return &s
}

// LoadStages reads the stage configuration from buildcheck.json at the
// project root. An absent or unparsable file falls back to the defaults;
// empty lists inside an otherwise valid file also fall back so a partial
// config never disables a stage entirely.
func LoadStages(root string) *StageConfig {
	data, err := os.ReadFile(filepath.Join(root, "buildcheck.json"))
	if err != nil {
		return DefaultStages()
	}
	var s StageConfig
	if err := json.Unmarshal(data, &s); err != nil {
		return DefaultStages()
	}
	defaults := DefaultStages()
	if len(s.Tests.PreCommit) == 0 {
		s.Tests.PreCommit = defaults.Tests.PreCommit
	}
	if len(s.Tests.PrePush) == 0 {
		s.Tests.PrePush = defaults.Tests.PrePush
	}
	return &s
}

// Resolve maps a stage selector to its ordered task list. The second return
// is false for an unrecognized stage.
func (s *StageConfig) Resolve(stage string) ([]string, bool) {
	switch stage {
	case "pre-commit", "":
		return s.Tests.PreCommit, true
	case "pre-push":
		return s.Tests.PrePush, true
	case "ci":
		return []string{"lint", "typecheck", "build", "test", "website"}, true
	}
	return nil, false
}
