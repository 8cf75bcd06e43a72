package driven

// ConfigStore is a flat key/value view over the settings file.
// Keys are dotted ("retrieval.threshold"). Typed getters return the zero
// value for missing or mistyped keys.
type ConfigStore interface {
	Get(key string) (any, bool)
	GetString(key string) string
	GetInt(key string) int
	GetFloat(key string) float64
	GetBool(key string) bool
	GetStringSlice(key string) []string

	// Set changes a value in memory. Save writes it out.
	Set(key string, value any) error
	Save() error

	// Load rereads the file, replacing unsaved values.
	Load() error

	// Path is the backing file.
	Path() string
}
