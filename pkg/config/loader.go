// Package config provides configuration loading with Viper: YAML files,
// environment variable overrides, and hot reload via fsnotify.
package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// ReloadCallback is called when the configuration file changes on disk
type ReloadCallback func(oldConfig, newConfig *Config)

// Loader manages configuration loading and reloading
type Loader struct {
	viper      *viper.Viper
	config     *Config
	configFile string
	callbacks  []ReloadCallback
	mu         sync.RWMutex
}

// LoaderOptions defines options for the configuration loader
type LoaderOptions struct {
	// Configuration file path; when empty, config.yaml is searched on
	// the default paths
	ConfigFile string

	// Environment variable prefix (default REGTRACE)
	EnvPrefix string

	// Additional config paths to search
	ConfigPaths []string

	// Watch the file for changes
	EnableWatch bool
}

// NewLoader creates a configuration loader and performs the initial load
func NewLoader(opts LoaderOptions) (*Loader, error) {
	v := viper.New()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/regtrace")
		for _, path := range opts.ConfigPaths {
			v.AddConfigPath(path)
		}
	}

	prefix := opts.EnvPrefix
	if prefix == "" {
		prefix = "REGTRACE"
	}
	v.SetEnvPrefix(prefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	loader := &Loader{viper: v, configFile: opts.ConfigFile}

	if err := loader.load(); err != nil {
		return nil, err
	}

	if opts.EnableWatch {
		v.OnConfigChange(func(_ fsnotify.Event) {
			loader.reload()
		})
		v.WatchConfig()
	}

	return loader, nil
}

// Get returns the current configuration snapshot
func (l *Loader) Get() *Config {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.config
}

// OnReload registers a callback invoked after a successful hot reload
func (l *Loader) OnReload(cb ReloadCallback) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.callbacks = append(l.callbacks, cb)
}

func (l *Loader) load() error {
	if err := l.viper.ReadInConfig(); err != nil {
		// A missing file is fine: defaults plus environment still apply
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("read config: %w", err)
		}
	}

	cfg := Default()
	if err := l.viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	l.mu.Lock()
	l.config = cfg
	l.mu.Unlock()
	return nil
}

// reload swaps in the new configuration only if it validates; a broken
// edit on disk keeps the previous snapshot serving.
func (l *Loader) reload() {
	l.mu.RLock()
	old := l.config
	l.mu.RUnlock()

	if err := l.load(); err != nil {
		return
	}

	l.mu.RLock()
	callbacks := l.callbacks
	current := l.config
	l.mu.RUnlock()

	for _, cb := range callbacks {
		cb(old, current)
	}
}
