// Package config loads the marple configuration file: per-interface default
// visualizers, event-merge aggregation groups, and the default top-N bucket
// count.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ensoft/marple/pkg/display"
	"github.com/ensoft/marple/pkg/record"
)

const defaultTop = 5

// DisplayConfig maps collected interfaces to preferred visualizers.
type DisplayConfig struct {
	// Interfaces maps an interface name to its default visualizer, consulted
	// when the user gave no override for the section's datatype family.
	Interfaces map[string]display.Visualizer `yaml:"interfaces"`

	// Top is the default top-N bucket count for aggregation.
	Top int `yaml:"top"`
}

// AggregateGroup declares a set of interfaces whose event sections are
// merged into one timeline when they appear together in a file.
type AggregateGroup struct {
	Interfaces []string           `yaml:"interfaces"`
	Visualizer display.Visualizer `yaml:"visualizer"`
}

type Config struct {
	Display   DisplayConfig    `yaml:"display"`
	Aggregate []AggregateGroup `yaml:"aggregate"`
}

// Default is the configuration used when no config file is given.
func Default() *Config {
	c := &Config{}
	c.fillDefault()
	return c
}

func (c *Config) fillDefault() {
	if c.Display.Top == 0 {
		c.Display.Top = defaultTop
	}
	if c.Display.Interfaces == nil {
		c.Display.Interfaces = map[string]display.Visualizer{}
	}
}

// validate catches a bad configuration at startup, before any data file is
// touched.
func (c *Config) validate() error {
	if err := display.ValidateDefaults(c.Display.Interfaces); err != nil {
		return err
	}
	if c.Display.Top < 0 {
		return fmt.Errorf("config: display.top must not be negative, got %d", c.Display.Top)
	}
	for i, group := range c.Aggregate {
		if len(group.Interfaces) < 2 {
			return fmt.Errorf("config: aggregate group %d needs at least two interfaces", i)
		}
		if !group.Visualizer.Compatible(record.DatatypeEvent) {
			return fmt.Errorf("config: aggregate group %d: visualizer %q cannot render a merged event timeline",
				i, group.Visualizer)
		}
	}
	return nil
}

// Parse loads and validates a configuration file.
func Parse(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	defer file.Close()

	var conf Config
	dec := yaml.NewDecoder(file)
	dec.KnownFields(true)
	if err := dec.Decode(&conf); err != nil {
		return nil, fmt.Errorf("config: can't parse %s: %w", path, err)
	}

	conf.fillDefault()
	if err := conf.validate(); err != nil {
		return nil, err
	}
	return &conf, nil
}
