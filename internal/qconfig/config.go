// Package qconfig holds this tool's defaults: the simplification options
// and logging settings, overridable by an optional YAML file and finally by
// CLI flags (flags always win, matching the flags-over-file-over-defaults
// precedence this is adapted from).
package qconfig

// Config is the full set of tunable defaults.
type Config struct {
	Algorithm         string        `yaml:"algorithm"`
	DistanceThreshold float64       `yaml:"distance_threshold"`
	Logging           LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Algorithm:         "PairContract",
		DistanceThreshold: 0,
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
