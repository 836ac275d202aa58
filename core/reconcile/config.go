package reconcile

// Config holds reconciler settings.
type Config struct {
	// Namespace is the UUID namespace for row ids. Empty uses DefaultNamespace.
	// Changing it changes every row id, so it must stay fixed for a database.
	Namespace string `mapstructure:"namespace" default:""`
	// CacheTTLSeconds is how long the stored reference index is reused.
	// If zero, the index is reloaded on every run.
	CacheTTLSeconds int `mapstructure:"cache_ttl_seconds" default:"300"`
}
