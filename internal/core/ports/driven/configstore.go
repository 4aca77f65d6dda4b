package driven

// ConfigStore provides access to application configuration.
// Keys use dot notation ("embedding.provider"); the TOML adapter
// flattens nested tables into these keys on load.
type ConfigStore interface {
	// Get retrieves a configuration value by key.
	Get(key string) (any, bool)

	// GetString returns "" if the key doesn't exist or isn't a string.
	GetString(key string) string

	// GetInt returns 0 if the key doesn't exist or isn't an integer.
	GetInt(key string) int

	// GetFloat returns 0 if the key doesn't exist or isn't numeric.
	GetFloat(key string) float64

	// GetBool returns false if the key doesn't exist or isn't a boolean.
	GetBool(key string) bool

	// Set stores a configuration value and persists immediately.
	Set(key string, value any) error

	// Load reads configuration from storage.
	Load() error

	// Path returns the configuration file path.
	Path() string
}
