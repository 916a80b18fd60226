package markdown

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Policy decides what happens to a content file that cannot be used.
type Policy string

const (
	// PolicySkip drops the file and records a Diagnostic.
	PolicySkip Policy = "skip"
	// PolicyFail aborts aggregation.
	PolicyFail Policy = "fail"
)

// DefaultPattern selects content files inside a route directory.
const DefaultPattern = "*.md"

// Config configures the markdown plugin.
type Config struct {
	Routes     []string `yaml:"routes"`
	Pattern    string   `yaml:"pattern"`
	OnInvalid  Policy   `yaml:"on_invalid"`
	Extensions []string `yaml:"extensions"`
	Unsafe     bool     `yaml:"unsafe"`
	HeadingIDs bool     `yaml:"heading_ids"`
}

// Validate normalises defaults and validates the configuration.
func (c *Config) Validate() error {
	if c.Pattern == "" {
		c.Pattern = DefaultPattern
	}
	if c.OnInvalid == "" {
		c.OnInvalid = PolicySkip
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Routes, validation.Each(validation.Required, validation.By(routeName))),
		validation.Field(&c.OnInvalid, validation.In(PolicySkip, PolicyFail)),
	)
}

func routeName(v any) error {
	s, _ := v.(string)
	for _, r := range s {
		if r == '/' || r == '\\' {
			return fmt.Errorf("route %q must be a single directory name", s)
		}
	}
	if s == "." || s == ".." {
		return fmt.Errorf("route %q must be a single directory name", s)
	}
	return nil
}
