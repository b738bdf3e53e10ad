package deepcopy

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config extends the pipeline's built-in classification tables with
// type-name entries, typically loaded from a YAML file at startup.
// Names are matched against reflect.Type.String(), so entries look like
// "mypkg.Handle" or "*mypkg.Registry".
//
// Exclusion entries win over immutable entries for the same name. Map
// types always use the container copier; a container entry naming a
// non-map type marks it non-copyable, since linked structures hide their
// nodes behind unexported fields that a reflective walk cannot rebuild.
type Config struct {
	// Immutable lists type names copied by sharing the original reference.
	Immutable []string `yaml:"immutable"`
	// NotCopyable lists type names that must always fail to copy.
	NotCopyable []string `yaml:"notCopyable"`
	// Containers lists type names with container-special structure. Map
	// kinds confirm their dedicated copier; anything else becomes
	// non-copyable.
	Containers []string `yaml:"containers"`
}

// LoadConfig reads a Config from a YAML file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("deepcopy: read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("deepcopy: parse config: %w", err)
	}
	return &cfg, nil
}
