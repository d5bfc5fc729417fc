// Package config holds the optional on-disk configuration. Everything has a
// sensible default; running without any config file is the common case.
package config

import (
	"context"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gitlab.com/tozd/go/errors"
)

// Config are the tunables a site can pin in a config file.
type Config struct {
	// RemoveOriginal makes move mode the default instead of copy.
	RemoveOriginal bool `json:"remove_original,omitempty" yaml:"remove_original,omitempty" hcl:"remove_original,optional"`

	// ContainerExtensions lists the file extensions probed for HDF5
	// metadata after a transfer.
	ContainerExtensions []string `json:"container_extensions,omitempty" yaml:"container_extensions,omitempty" hcl:"container_extensions,optional"`

	// AttributeNames extends the built-in list of traceability attribute
	// names the patcher probes.
	AttributeNames []string `json:"attribute_names,omitempty" yaml:"attribute_names,omitempty" hcl:"attribute_names,optional"`

	// Ignore lists glob patterns for files excluded from the cohort even
	// when they match the prefix.
	Ignore []string `json:"ignore,omitempty" yaml:"ignore,omitempty" hcl:"ignore,optional"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		ContainerExtensions: []string{".h5", ".nxs"},
	}
}

// Validate checks a loaded configuration and fills defaulted fields.
func Validate(ctx context.Context, cfg *Config) error {
	if len(cfg.ContainerExtensions) == 0 {
		cfg.ContainerExtensions = Default().ContainerExtensions
	}
	for i, ext := range cfg.ContainerExtensions {
		if !strings.HasPrefix(ext, ".") {
			return errors.Errorf("container extension %q must start with a dot", ext)
		}
		cfg.ContainerExtensions[i] = strings.ToLower(ext)
	}
	for _, pattern := range cfg.Ignore {
		if !doublestar.ValidatePattern(pattern) {
			return errors.Errorf("invalid ignore pattern %q", pattern)
		}
	}
	return nil
}
