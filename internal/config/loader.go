// Package config provides configuration loading, defaults, and validation
// for the scoredock pipeline.
package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix used by all settings.
const envPrefix = "SCOREDOCK"

// envBoundKeys is the full set of configuration keys.  Each is bound
// explicitly so that Unmarshal sees environment-only values; automatic env
// lookup alone does not surface keys absent from the config file.
var envBoundKeys = []string{
	"logging.level",
	"logging.format",
	"logging.output_paths",
	"logging.error_output_paths",
	"data.root",
	"data.path_marker",
	"tools.converter",
	"tools.qvina",
	"tools.gnina",
	"tools.autogrid",
	"tools.autodock_gpu",
	"tools.probe_timeout",
	"backends.qvina.box_size",
	"backends.qvina.exhaustiveness",
	"backends.qvina.num_runs",
	"backends.gnina.box_size",
	"backends.gnina.exhaustiveness",
	"backends.gnina.cnn_scoring",
	"backends.autodock_gpu.box_size",
	"backends.autodock_gpu.exhaustiveness",
	"backends.autodock_gpu.num_runs",
	"batch.workers",
	"metrics.enabled",
	"metrics.namespace",
	"metrics.subsystem",
	"metrics.listen_addr",
}

// newViper builds a pre-configured Viper instance with the pipeline's
// standard settings: YAML file type, SCOREDOCK_ env prefix, automatic env
// binding, and a key replacer that maps "." → "_" so that nested keys like
// "batch.workers" resolve to "SCOREDOCK_BATCH_WORKERS".
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range envBoundKeys {
		_ = v.BindEnv(key)
	}
	return v
}

// Load reads the YAML file at configPath, merges any SCOREDOCK_* environment
// variable overrides, applies defaults for unset fields, and validates the
// result.  It returns a fully-populated *Config or a descriptive error.
func Load(configPath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}

	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config entirely from SCOREDOCK_* environment
// variables, with no config file required.  This is the loading strategy for
// containerised deployments and for bare CLI use on workstations.
//
// Environment variable naming convention:
//
//	SCOREDOCK_<SECTION>_<FIELD>   e.g.  SCOREDOCK_BATCH_WORKERS, SCOREDOCK_DATA_ROOT
func LoadFromEnv() (*Config, error) {
	v := newViper()
	// No config file — rely solely on env vars and defaults.
	return unmarshalAndFinalize(v)
}

// unmarshalAndFinalize unmarshals viper state into a Config struct, applies
// defaults, and validates the result.
func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}

	return cfg, nil
}

// Watch monitors configPath for changes and invokes onChange with the newly
// parsed Config whenever the file is modified on disk.  It is intended for
// hot-reloading non-critical settings such as log level and batch worker
// count; callers are responsible for applying only the safe subset of
// changes at runtime.
//
// Watch is non-blocking; it starts a background goroutine managed by viper.
// A changed file that fails to parse or validate is skipped and onChange is
// not called.
func Watch(configPath string, onChange func(*Config)) {
	v := newViper()
	v.SetConfigFile(configPath)

	// Initial read — errors are ignored here; callers should call Load first.
	_ = v.ReadInConfig()

	v.WatchConfig()
	v.OnConfigChange(func(_ fsnotify.Event) {
		cfg, err := unmarshalAndFinalize(v)
		if err != nil {
			return
		}
		onChange(cfg)
	})
}

// MustLoad is a convenience wrapper around Load that panics on any error.
// It is intended for use in main() where a config-load failure is always
// fatal.
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("config: MustLoad failed: %v", err))
	}
	return cfg
}
