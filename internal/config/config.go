// Package config loads pydecl project configuration from .pydecl/config.yml
// with PYDECL_* environment variable overrides.
package config

import (
	"path/filepath"
	"runtime"
)

// DirName is the per-project configuration directory.
const DirName = ".pydecl"

// Config represents the complete pydecl configuration.
type Config struct {
	Paths  PathsConfig  `yaml:"paths" mapstructure:"paths"`
	Python PythonConfig `yaml:"python" mapstructure:"python"`
	Output OutputConfig `yaml:"output" mapstructure:"output"`
	Index  IndexConfig  `yaml:"index" mapstructure:"index"`
	Watch  WatchConfig  `yaml:"watch" mapstructure:"watch"`
	Scan   ScanConfig   `yaml:"scan" mapstructure:"scan"`
}

// PathsConfig defines which files are analyzed when a directory is given.
type PathsConfig struct {
	Include []string `yaml:"include" mapstructure:"include"` // glob patterns for Python files
	Ignore  []string `yaml:"ignore" mapstructure:"ignore"`   // glob patterns to skip
}

// PythonConfig controls how module names are resolved to source files.
type PythonConfig struct {
	SearchPaths []string `yaml:"search_paths" mapstructure:"search_paths"` // extra import roots, searched before PYTHONPATH
	Interpreter string   `yaml:"interpreter" mapstructure:"interpreter"`   // interpreter asked for find_spec; empty disables
	Embedded    bool     `yaml:"embedded" mapstructure:"embedded"`         // use the bundled CPython runtime instead
	RuntimeDir  string   `yaml:"runtime_dir" mapstructure:"runtime_dir"`   // extraction dir for the bundled runtime
}

// OutputConfig controls CLI rendering.
type OutputConfig struct {
	Format string `yaml:"format" mapstructure:"format"` // "text" or "json"
}

// IndexConfig configures the declaration database written by `pydecl index`.
type IndexConfig struct {
	Database string `yaml:"database" mapstructure:"database"`
}

// WatchConfig configures `pydecl watch`.
type WatchConfig struct {
	DebounceMs int `yaml:"debounce_ms" mapstructure:"debounce_ms"`
}

// ScanConfig configures batch analysis.
type ScanConfig struct {
	Workers   int `yaml:"workers" mapstructure:"workers"`       // concurrent parses
	CacheSize int `yaml:"cache_size" mapstructure:"cache_size"` // cached file results, 0 disables
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			Include: []string{"**/*.py"},
			Ignore: []string{
				".git/**",
				"__pycache__/**",
				".venv/**",
				"venv/**",
				"node_modules/**",
				"build/**",
				"dist/**",
			},
		},
		Python: PythonConfig{
			SearchPaths: []string{},
			Interpreter: "python3",
			Embedded:    false,
			RuntimeDir:  filepath.Join(DirName, "python"),
		},
		Output: OutputConfig{
			Format: FormatText,
		},
		Index: IndexConfig{
			Database: filepath.Join(DirName, "declarations.db"),
		},
		Watch: WatchConfig{
			DebounceMs: 500,
		},
		Scan: ScanConfig{
			Workers:   runtime.GOMAXPROCS(0),
			CacheSize: 1000,
		},
	}
}

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// DatabasePath returns the index database path, resolved against rootDir
// when relative.
func (c *Config) DatabasePath(rootDir string) string {
	return resolve(rootDir, c.Index.Database)
}

func resolve(rootDir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(rootDir, path)
}
