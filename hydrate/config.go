package hydrate

// Config holds configuration for a Loader.
type Config struct {
	// TableName is the DynamoDB table holding the entries.
	TableName string

	// Segments is the number of parallel scan segments.
	// Default: 4
	// Max: 64
	Segments int

	// PageSize caps the items returned per Scan call (0 = DynamoDB default, 1MB pages).
	PageSize int32

	// PagesPerSecond throttles Scan calls across all segments (0 = unlimited).
	PagesPerSecond float64

	// SkipExpired filters out items with a passed TTL on the server.
	// Expired items that slip through are still dropped locally.
	SkipExpired bool

	// Roots are registered in the database before loading, in order.
	Roots []string
}

// DefaultConfig returns sensible defaults for a medium-sized table.
func DefaultConfig() Config {
	return Config{
		Segments:    4,
		PageSize:    500,
		SkipExpired: true,
	}
}

// validate ensures config values are within acceptable bounds.
func (c *Config) validate() {
	if c.Segments < 1 {
		c.Segments = 1
	}
	if c.Segments > 64 {
		c.Segments = 64
	}
	if c.PageSize < 0 {
		c.PageSize = 0
	}
	if c.PagesPerSecond < 0 {
		c.PagesPerSecond = 0
	}
}
