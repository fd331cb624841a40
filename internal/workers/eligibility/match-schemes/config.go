// internal/workers/eligibility/match-schemes/config.go
package matchschemes

import (
	"fmt"
	"time"

	"yojanamitra/internal/common/config"
)

type Config struct {
	Enabled bool
	Timeout time.Duration
}

func DefaultConfig() *Config {
	return &Config{
		Enabled: true,
		Timeout: 30 * time.Second,
	}
}

// ConfigFrom reads the workers.match-schemes section.
func ConfigFrom(app *config.Config) *Config {
	cfg := DefaultConfig()
	if app == nil {
		return cfg
	}
	w := config.GetWorkerConfig(app, TaskType)
	cfg.Enabled = w.Enabled
	if w.Timeout > 0 {
		cfg.Timeout = config.GetDuration(w.Timeout)
	}
	return cfg
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	return nil
}
