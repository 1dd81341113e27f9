package driven

// ConfigStore provides access to application configuration.
// Implementations handle persistence (e.g., TOML files) and type conversion.
type ConfigStore interface {
	// Get retrieves a configuration value by key.
	// Returns the value and a boolean indicating if the key exists.
	Get(key string) (any, bool)

	// GetString retrieves a string configuration value.
	// Returns empty string if key doesn't exist or isn't a string.
	GetString(key string) string

	// GetInt retrieves an integer configuration value.
	// Returns 0 if key doesn't exist or isn't an integer.
	GetInt(key string) int

	// GetBool retrieves a boolean configuration value.
	// Returns false if key doesn't exist or isn't a boolean.
	GetBool(key string) bool

	// Set stores a configuration value.
	// The value is persisted immediately.
	Set(key string, value any) error

	// SetString stores a raw string value, coercing it to the key's
	// native type when the key is a well-known one.
	SetString(key, raw string) error

	// Save persists the current configuration to storage.
	Save() error

	// Load reads configuration from storage.
	Load() error

	// Path returns the configuration file path.
	Path() string
}

// Well-known configuration keys.
const (
	ConfigKeyBackend           = "storage.backend"
	ConfigKeyIndexPath         = "index.path"
	ConfigKeyKBDirectory       = "kb.directory"
	ConfigKeyKBWatch           = "kb.watch"
	ConfigKeySegmentByHeadings = "kb.segment_by_headings"
	ConfigKeyMinSegmentLength  = "kb.min_segment_length"
)
