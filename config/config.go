// Package config loads the optional veikkd TOML configuration. All
// values have defaults; the daemon runs fine with no file at all.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/veikk/veikkd-go/core"
)

type Config struct {
	Log        LogConfig        `toml:"log"`
	Server     ServerConfig     `toml:"server"`
	Activation ActivationConfig `toml:"activation"`
}

type LogConfig struct {
	// File enables rotating file logging instead of stderr.
	File    string `toml:"file"`
	Verbose bool   `toml:"verbose"`
}

type ServerConfig struct {
	Addr string `toml:"addr"`
}

// ActivationConfig controls the deferred subsystem enable commands.
// The delays are staggered because the firmware drops commands that
// arrive too close together; ordering pen < buttons < pad is enforced
// even if the file says otherwise.
type ActivationConfig struct {
	PenDelayMS     int  `toml:"pen_delay_ms"`
	ButtonsDelayMS int  `toml:"buttons_delay_ms"`
	PadDelayMS     int  `toml:"pad_delay_ms"`
	VerifyPresence bool `toml:"verify_presence"`
	Retries        int  `toml:"retries"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr: "127.0.0.1:9639",
		},
		Activation: ActivationConfig{
			PenDelayMS:     100,
			ButtonsDelayMS: 200,
			PadDelayMS:     300,
			VerifyPresence: true,
			Retries:        0,
		},
	}
}

// Load reads the file over the defaults. A missing file is not an
// error; the defaults are returned unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// ActivationPolicy converts the file representation for the manager.
func (c *Config) ActivationPolicy() core.ActivationPolicy {
	return core.ActivationPolicy{
		PenDelay:       time.Duration(c.Activation.PenDelayMS) * time.Millisecond,
		ButtonsDelay:   time.Duration(c.Activation.ButtonsDelayMS) * time.Millisecond,
		PadDelay:       time.Duration(c.Activation.PadDelayMS) * time.Millisecond,
		VerifyPresence: c.Activation.VerifyPresence,
		Retries:        c.Activation.Retries,
	}
}
