// Package config loads the small optional startup file described in
// SPEC_FULL.md §4.9. It is grounded in the teacher's layer-loading style
// (decode YAML into a plain struct and return it) but scoped to the
// single field kiln currently needs overridable from outside the binary.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/kilnsh/kiln/internal/logger"
)

// Config is the decoded form of a kilnrc file.
type Config struct {
	// Prompt, if set, overrides the default prompt template (SPEC_FULL.md §6).
	Prompt string `yaml:"prompt"`
}

// Path returns the kilnrc file kiln should load: $KILN_CONFIG if set,
// otherwise ~/.kilnrc.yaml.
func Path() (string, error) {
	if p := os.Getenv("KILN_CONFIG"); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".kilnrc.yaml"), nil
}

// Load reads and decodes the kilnrc file at path. A missing file is not an
// error: it returns a zero-value Config. A malformed file is a user error
// that is logged and otherwise ignored, also returning a zero-value
// Config — a typo in a dotfile must never prevent the shell from starting.
func Load(path string) Config {
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Noticef("cannot read %s: %v", path, err)
		}
		return Config{}
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		fmt.Fprintf(os.Stderr, "kiln: ignoring malformed %s: %v\n", path, err)
		return Config{}
	}
	return cfg
}
