// Package utils holds attack configuration loading and logger setup
// for callers wiring the inner maximizers into a training loop.
package utils

import (
	"fmt"
	"os"

	"golang.org/x/exp/rand"
	"gopkg.in/yaml.v3"

	"advmax/attack"
)

// AttackConfig is the on-disk form of an inner-maximizer setup.
type AttackConfig struct {
	Method     string  `yaml:"method"`
	Iterations int     `yaml:"iterations"`
	Epsilon    float64 `yaml:"epsilon"`
	Alpha      float64 `yaml:"alpha"`
	Sample     bool    `yaml:"sample"`
	GramsWidth int     `yaml:"grams_width"`
	GramsSteps int     `yaml:"grams_steps"`
	Seed       uint64  `yaml:"seed"`
	Verbose    bool    `yaml:"verbose"`
}

// LoadAttackConfig reads and validates an attack configuration file.
func LoadAttackConfig(path string) (*AttackConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	var cfg AttackConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration against the closed method set and
// the parameter ranges the searches expect.
func (c *AttackConfig) Validate() error {
	valid := false
	for _, m := range attack.Methods() {
		if attack.Method(c.Method) == m {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("unknown method %q", c.Method)
	}
	if c.Iterations < 0 {
		return fmt.Errorf("iterations must not be negative")
	}
	if c.Epsilon < 0 {
		return fmt.Errorf("epsilon must not be negative")
	}
	if c.Alpha < 0 || c.Alpha > 1 {
		return fmt.Errorf("alpha must be in [0,1]")
	}
	if c.GramsWidth < 0 {
		return fmt.Errorf("grams_width must not be negative")
	}
	if c.GramsSteps < 0 {
		return fmt.Errorf("grams_steps must not be negative")
	}
	return nil
}

// Attack converts the file form into a ready attack.Config.
func (c *AttackConfig) Attack() attack.Config {
	cfg := attack.Config{
		Method:     attack.Method(c.Method),
		Iterations: c.Iterations,
		Epsilon:    c.Epsilon,
		Alpha:      c.Alpha,
		Sample:     c.Sample,
		GramsWidth: c.GramsWidth,
		GramsSteps: c.GramsSteps,
		Logger:     NewLogger(c.Verbose),
	}
	if c.Seed != 0 {
		cfg.Rand = rand.New(rand.NewSource(c.Seed))
	}
	return cfg
}
