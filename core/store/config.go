package store

// Config holds loader settings.
type Config struct {
	// BatchSize is the number of rows per INSERT statement.
	BatchSize int `mapstructure:"batch_size" default:"500"`
	// Migrate runs Migrate before every import.
	Migrate bool `mapstructure:"migrate" default:"false"`
}
