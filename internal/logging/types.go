package logging

// #region config

// Config selects the logger's level, encoding and sinks. OutputPaths defaults
// to stderr so command output on stdout stays clean.
type Config struct {
	Level       string   `mapstructure:"level" json:"level"`   // debug, info, warn or error
	Format      string   `mapstructure:"format" json:"format"` // json or console
	OutputPaths []string `mapstructure:"output_paths" json:"output_paths"`
}

// DefaultConfig returns info-level JSON on stderr.
func DefaultConfig() Config {
	return Config{
		Level:       "info",
		Format:      "json",
		OutputPaths: []string{"stderr"},
	}
}

// #endregion config
