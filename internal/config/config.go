// Package config loads the runtime-safety settings the analyzer consults
// when assigning output identifiers and resolving the standard library
// location — supplied by configuration rather than hard-coded so the
// target runtime's reserved surface can change without a rebuild.
package config

import (
	_ "embed"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

// Config is the analyzer's runtime-safety configuration: the set of
// names unsafe to use verbatim as an out_id (reserved words and builtins
// of the target VM runtime), and the standard-library directory holding
// embutidos.ama, the built-in module loaded at analyzer construction.
// "usa" paths are not resolved against it.
type Config struct {
	StdLib         string   `yaml:"std_lib"`
	ReservedWords  []string `yaml:"reserved_words"`
	Builtins       []string `yaml:"builtins"`

	reserved map[string]struct{}
	builtins map[string]struct{}
}

// Default returns the configuration embedded at build time.
func Default() (*Config, error) {
	return Load(defaultYAML)
}

// Load parses yaml-encoded configuration bytes.
func Load(data []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	c.index()
	return &c, nil
}

func (c *Config) index() {
	c.reserved = make(map[string]struct{}, len(c.ReservedWords))
	for _, w := range c.ReservedWords {
		c.reserved[w] = struct{}{}
	}
	c.builtins = make(map[string]struct{}, len(c.Builtins))
	for _, w := range c.Builtins {
		c.builtins[w] = struct{}{}
	}
}

// IsValidName reports whether name is safe to use verbatim as the
// emitter's out_id: not a reserved word of the target runtime, not
// surrounded by double underscores, and not a known target-runtime
// builtin.
func (c *Config) IsValidName(name string) bool {
	if len(name) >= 4 && name[:2] == "__" && name[len(name)-2:] == "__" {
		return false
	}
	if _, reserved := c.reserved[name]; reserved {
		return false
	}
	if _, builtin := c.builtins[name]; builtin {
		return false
	}
	return true
}
