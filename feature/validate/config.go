package validate

// Config holds validator settings.
type Config struct {
	// RequestsPerMinute limits validation requests served over HTTP.
	RequestsPerMinute int `mapstructure:"requests_per_minute" default:"30"`
	// Burst is the number of requests allowed at once.
	Burst int `mapstructure:"burst" default:"2"`
}
