package source

// Config holds the snapshot locations used when a request names none.
type Config struct {
	// OFMX is the location of the OFMX snapshot.
	OFMX string `mapstructure:"ofmx" default:""`
	// Shapes is the location of the OFMX shape extension.
	Shapes string `mapstructure:"shapes" default:""`
	// ARINC is the location of the ARINC-424 snapshot.
	ARINC string `mapstructure:"arinc" default:""`
	// OpenAIR is the location of the OpenAIR shape file.
	OpenAIR string `mapstructure:"openair" default:""`
	// Cycle is the AIRAC cycle stamped on ARINC records without one.
	Cycle string `mapstructure:"cycle" default:""`
	// Prefix is the default key prefix for bucket scans.
	Prefix string `mapstructure:"prefix" default:""`
	// MaxArchiveMB bounds bucket archives buffered in memory.
	MaxArchiveMB int `mapstructure:"max_archive_mb" default:"512"`
}
