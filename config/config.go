// Package config handles gravix.toml configuration.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/DarkerMinecraft/Gravix/errors"
	"github.com/DarkerMinecraft/Gravix/marshal"
	"github.com/DarkerMinecraft/Gravix/registry"
)

// EnvLogLevel overrides Log.Level when set.
const EnvLogLevel = "GRAVIX_LOG_LEVEL"

// Config is the full gravix.toml document.
type Config struct {
	Bridge   Bridge   `toml:"bridge"`
	Log      Log      `toml:"log"`
	Wasm     Wasm     `toml:"wasm"`
	Entities []Entity `toml:"entity"`
}

// Bridge configures method resolution and argument limits.
type Bridge struct {
	Policy       string `toml:"policy"`
	MaxStringLen uint32 `toml:"max_string_len"`
}

// Log configures the zap logger.
type Log struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Wasm configures the WebAssembly host module.
type Wasm struct {
	ModuleName string `toml:"module_name"`
}

// Entity describes a scene entity the console creates at startup.
type Entity struct {
	Name       string   `toml:"name"`
	Script     string   `toml:"script"`
	Components []string `toml:"components"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Bridge: Bridge{
			Policy:       registry.FirstDeclared.String(),
			MaxStringLen: marshal.DefaultMaxStringLen,
		},
		Log: Log{
			Level:  "info",
			Format: "console",
		},
		Wasm: Wasm{
			ModuleName: "gravix",
		},
	}
}

// Load reads path, fills unset fields from Default, applies environment
// overrides and validates the result.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err,
			fmt.Sprintf("cannot read %s", path))
	}
	cfg, err := Parse(string(data))
	if err != nil {
		return Config{}, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err,
			fmt.Sprintf("parse error in %s", path))
	}
	return cfg, nil
}

// Parse decodes a TOML document the same way Load does.
func Parse(data string) (Config, error) {
	var cfg Config
	md, err := toml.Decode(data, &cfg)
	if err != nil {
		return Config{}, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Value(keys).
			Detail("unknown keys: %s", strings.Join(keys, ", ")).
			Build()
	}

	cfg.applyDefaults()
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	def := Default()
	if c.Bridge.Policy == "" {
		c.Bridge.Policy = def.Bridge.Policy
	}
	if c.Bridge.MaxStringLen == 0 {
		c.Bridge.MaxStringLen = def.Bridge.MaxStringLen
	}
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = def.Log.Format
	}
	if c.Wasm.ModuleName == "" {
		c.Wasm.ModuleName = def.Wasm.ModuleName
	}
}

func (c *Config) applyEnv() {
	if lvl := strings.TrimSpace(os.Getenv(EnvLogLevel)); lvl != "" {
		c.Log.Level = lvl
	}
}

// Validate checks every field and reports the first problem.
func (c Config) Validate() error {
	if _, err := registry.ParsePolicy(c.Bridge.Policy); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return invalid("log.level", c.Log.Level, "want debug, info, warn or error")
	}
	switch strings.ToLower(c.Log.Format) {
	case "console", "json":
	default:
		return invalid("log.format", c.Log.Format, "want console or json")
	}
	if c.Wasm.ModuleName == "" {
		return invalid("wasm.module_name", "", "cannot be empty")
	}

	seen := make(map[string]bool, len(c.Entities))
	for i, e := range c.Entities {
		if e.Name == "" {
			return invalid(fmt.Sprintf("entity[%d].name", i), "", "cannot be empty")
		}
		if seen[e.Name] {
			return invalid(fmt.Sprintf("entity[%d].name", i), e.Name, "duplicate entity name")
		}
		seen[e.Name] = true
	}
	return nil
}

// Policy returns the configured resolution policy.
func (c Config) Policy() registry.Policy {
	p, err := registry.ParsePolicy(c.Bridge.Policy)
	if err != nil {
		return registry.FirstDeclared
	}
	return p
}

func invalid(key, value, msg string) error {
	return errors.New(errors.PhaseConfig, errors.KindInvalidInput).
		Value(value).
		Detail("%s %q: %s", key, value, msg).
		Build()
}
