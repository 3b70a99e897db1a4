package watch

import "time"

// Config holds configuration for a Watcher.
type Config struct {
	// Root is the directory to watch recursively.
	Root string

	// ReferenceRoot is the reference prefix Root maps to, e.g. "ws1/".
	ReferenceRoot string

	// Debounce is how long to wait for more changes before delivering a batch.
	// Default: 100ms
	Debounce time.Duration

	// IgnorePatterns are glob patterns matched against each path element.
	IgnorePatterns []string

	// BufferSize is the number of undelivered changes held before new ones
	// are dropped.
	// Default: 1000
	BufferSize int
}

// DefaultConfig returns sensible defaults for editor-driven workspaces.
func DefaultConfig() Config {
	return Config{
		Debounce:       100 * time.Millisecond,
		IgnorePatterns: []string{".git", "node_modules", ".idea", "*.swp", "*.tmp", "__pycache__"},
		BufferSize:     1000,
	}
}

// validate ensures config values are within acceptable bounds.
func (c *Config) validate() {
	if c.Debounce <= 0 {
		c.Debounce = 100 * time.Millisecond
	}
	if c.BufferSize <= 0 {
		c.BufferSize = 1000
	}
}
