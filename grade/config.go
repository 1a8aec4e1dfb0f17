// CLAUDE:SUMMARY Configuration for the evaluation engine: viewports, weights, thresholds, YAML loading.
package grade

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hazyhaar/domgrade/idgen"
	"github.com/hazyhaar/domgrade/layout"
	"github.com/hazyhaar/domgrade/rules"
)

// Config configures the evaluation engine. The zero value is usable: every
// field falls back to its documented default.
type Config struct {
	// Viewports to evaluate (default: mobile 375, tablet 1024, desktop 1280).
	Viewports []layout.Viewport `json:"viewports" yaml:"viewports"`

	// Weights for layout-similarity aggregation (default: layout.DefaultWeights).
	Weights layout.Weights `json:"weights" yaml:"weights"`

	// Thresholds for the responsive rule battery.
	Thresholds rules.Thresholds `json:"thresholds" yaml:"thresholds"`

	// IDs generates run identifiers (default: UUIDv7).
	IDs idgen.Generator `json:"-" yaml:"-"`

	// Logger for debug/error messages.
	Logger *slog.Logger `json:"-" yaml:"-"`
}

func (c *Config) defaults() {
	if len(c.Viewports) == 0 {
		c.Viewports = layout.DefaultViewports()
	}
	if c.Weights == nil {
		c.Weights = layout.DefaultWeights()
	}
	if c.IDs == nil {
		c.IDs = idgen.UUIDv7()
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// LoadConfigFile reads a YAML config file and validates its weight table.
func LoadConfigFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("grade: read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("grade: parse config %s: %w", path, err)
	}
	if cfg.Weights != nil {
		if err := cfg.Weights.Validate(); err != nil {
			return Config{}, fmt.Errorf("grade: config %s: %w", path, err)
		}
	}
	return cfg, nil
}
