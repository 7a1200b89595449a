package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config carries engine-wide tunables that sit outside the
// architectural state a Session manipulates directly: default region
// layout for the CLI harness, the step budget a host should apply
// before treating a plugin call as hung, and diagnostic verbosity.
type Config struct {
	// Execution settings
	Execution struct {
		MaxSteps     uint64 `toml:"max_steps"`
		ProgramBase  uint32 `toml:"program_base"`
		ProgramSize  uint32 `toml:"program_size"`
		DataBase     uint32 `toml:"data_base"`
		DataSize     uint32 `toml:"data_size"`
		ServiceBase  uint32 `toml:"service_base"`
		ServiceSize  uint32 `toml:"service_size"`
		DefaultEntry string `toml:"default_entry"`
	} `toml:"execution"`

	// Debugger settings
	Debugger struct {
		HistorySize    int  `toml:"history_size"`
		AutoSaveBreaks bool `toml:"auto_save_breakpoints"`
		ShowRegisters  bool `toml:"show_registers"`
	} `toml:"debugger"`

	// Diagnostics settings: how much the host's simulated service API
	// reports over the UART sink (host.ExampleHost's log).
	Diagnostics struct {
		UARTVerbosity string `toml:"uart_verbosity"` // quiet, normal, verbose
		TraceSteps    bool   `toml:"trace_steps"`
	} `toml:"diagnostics"`
}

// DefaultConfig returns a configuration with the LPC1114 memory map
// (service@0x300, code@0x6000, header@0x7000, data@0x10000200) and
// conservative execution defaults.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Execution.MaxSteps = 1000000
	cfg.Execution.ProgramBase = 0x6000
	cfg.Execution.ProgramSize = 0x1000
	cfg.Execution.DataBase = 0x10000200
	cfg.Execution.DataSize = 0x2000
	cfg.Execution.ServiceBase = 0x300
	cfg.Execution.ServiceSize = 0x40
	cfg.Execution.DefaultEntry = "0x7000"

	cfg.Debugger.HistorySize = 1000
	cfg.Debugger.AutoSaveBreaks = true
	cfg.Debugger.ShowRegisters = true

	cfg.Diagnostics.UARTVerbosity = "normal"
	cfg.Diagnostics.TraceSteps = false

	return cfg
}

// Validate rejects configurations that would make Configure or the
// CLI harness misbehave: zero-length regions, or regions that overlap.
func (c *Config) Validate() error {
	regions := []struct {
		name        string
		base, limit uint64
	}{
		{"program", uint64(c.Execution.ProgramBase), uint64(c.Execution.ProgramBase) + uint64(c.Execution.ProgramSize)},
		{"data", uint64(c.Execution.DataBase), uint64(c.Execution.DataBase) + uint64(c.Execution.DataSize)},
		{"service", uint64(c.Execution.ServiceBase), uint64(c.Execution.ServiceBase) + uint64(c.Execution.ServiceSize)},
	}
	for _, r := range regions {
		if r.base >= r.limit {
			return fmt.Errorf("config: %s region has zero or negative size", r.name)
		}
	}
	for i := range regions {
		for j := range regions {
			if i == j {
				continue
			}
			a, b := regions[i], regions[j]
			if a.base < b.limit && b.base < a.limit {
				return fmt.Errorf("config: %s region overlaps %s region", a.name, b.name)
			}
		}
	}
	if c.Execution.MaxSteps == 0 {
		return fmt.Errorf("config: max_steps must be greater than zero")
	}
	return nil
}

// DefaultConfigPath returns the platform-specific config file path
// using os.UserConfigDir, falling back to the current directory when
// the platform has no notion of one.
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "pluginrun.toml"
	}
	dir = filepath.Join(dir, "pluginrun")
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "pluginrun.toml"
	}
	return filepath.Join(dir, "config.toml")
}

// Load loads configuration from the default config file.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigPath())
}

// LoadFrom loads configuration from the specified file. A missing
// file is not an error: the defaults are returned unchanged.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save saves configuration to the default config file.
func (c *Config) Save() error {
	return c.SaveTo(DefaultConfigPath())
}

// SaveTo saves configuration to the specified file.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path) // #nosec G304 -- user config file path
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}
