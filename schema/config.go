package schema

// Config names the item attributes the schema reads without decoding the payload.
type Config struct {
	// CategoryAttr holds the category tag.
	// Default: "entity_type"
	CategoryAttr string

	// IDAttr holds the entry id.
	// Default: "id"
	IDAttr string

	// ReferenceAttr holds the entry reference.
	// Default: "reference"
	ReferenceAttr string

	// TTLAttr holds the expiry time in Unix seconds. Items whose TTL has
	// passed are treated as deleted.
	// Default: "ttl"
	TTLAttr string
}

// DefaultConfig returns the attribute names used by the bundled schemas.
func DefaultConfig() Config {
	return Config{
		CategoryAttr:  "entity_type",
		IDAttr:        "id",
		ReferenceAttr: "reference",
		TTLAttr:       "ttl",
	}
}

// validate fills in defaults for empty attribute names.
func (c *Config) validate() {
	d := DefaultConfig()
	if c.CategoryAttr == "" {
		c.CategoryAttr = d.CategoryAttr
	}
	if c.IDAttr == "" {
		c.IDAttr = d.IDAttr
	}
	if c.ReferenceAttr == "" {
		c.ReferenceAttr = d.ReferenceAttr
	}
	if c.TTLAttr == "" {
		c.TTLAttr = d.TTLAttr
	}
}
