package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults → config file → environment variables (env wins)
	Load() (*Config, error)
}

type loader struct {
	rootDir    string
	configFile string
}

// NewLoader creates a new configuration loader for the given root directory.
func NewLoader(rootDir string) Loader {
	return &loader{
		rootDir: rootDir,
	}
}

// NewFileLoader creates a loader that reads an explicit config file instead
// of searching rootDir/.pydecl. A missing explicit file is an error.
func NewFileLoader(rootDir, configFile string) Loader {
	return &loader{
		rootDir:    rootDir,
		configFile: configFile,
	}
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (PYDECL_*)
// 2. Config file (.pydecl/config.yml or .pydecl/config.yaml)
// 3. Default values
func (l *loader) Load() (*Config, error) {
	v := viper.New()

	if l.configFile != "" {
		v.SetConfigFile(l.configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(filepath.Join(l.rootDir, DirName))
	}

	v.SetEnvPrefix("PYDECL")
	v.AutomaticEnv()
	// Replace . with _ in env var names (e.g., PYDECL_OUTPUT_FORMAT)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	bindEnv(v)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// Config file not found is acceptable when searching - defaults + env vars apply
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || l.configFile != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func bindEnv(v *viper.Viper) {
	v.BindEnv("paths.include")
	v.BindEnv("paths.ignore")

	v.BindEnv("python.search_paths")
	v.BindEnv("python.interpreter")
	v.BindEnv("python.embedded")
	v.BindEnv("python.runtime_dir")

	v.BindEnv("output.format")
	v.BindEnv("index.database")
	v.BindEnv("watch.debounce_ms")

	v.BindEnv("scan.workers")
	v.BindEnv("scan.cache_size")
}

// setDefaults configures viper with default values.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("paths.include", defaults.Paths.Include)
	v.SetDefault("paths.ignore", defaults.Paths.Ignore)

	v.SetDefault("python.search_paths", defaults.Python.SearchPaths)
	v.SetDefault("python.interpreter", defaults.Python.Interpreter)
	v.SetDefault("python.embedded", defaults.Python.Embedded)
	v.SetDefault("python.runtime_dir", defaults.Python.RuntimeDir)

	v.SetDefault("output.format", defaults.Output.Format)
	v.SetDefault("index.database", defaults.Index.Database)
	v.SetDefault("watch.debounce_ms", defaults.Watch.DebounceMs)

	v.SetDefault("scan.workers", defaults.Scan.Workers)
	v.SetDefault("scan.cache_size", defaults.Scan.CacheSize)
}

// LoadConfig is a convenience function that creates a loader and loads config.
// It uses the current working directory as the root.
func LoadConfig() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return NewLoader(wd).Load()
}

// LoadConfigFromDir loads configuration from a specific directory.
func LoadConfigFromDir(rootDir string) (*Config, error) {
	return NewLoader(rootDir).Load()
}
