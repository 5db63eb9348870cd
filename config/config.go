// Package config layers a YAML file, MOZCGO_* environment variables,
// and command-line flags into a resolved Config, the same precedence
// nanostore's viper-driven CLI uses (flags > env > file > defaults).
package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config is the resolved set of tunables the converter and CLI read at
// startup (and, if hot-reload is enabled, on every config file change).
type Config struct {
	MaxHistorySegmentsSize int  `mapstructure:"max_history_segments_size"`
	EnableUserHistory      bool `mapstructure:"enable_user_history"`
	KanaModifierInsensitive bool `mapstructure:"kana_modifier_insensitive"`
	CandidatesSizeLimit    int  `mapstructure:"candidates_size_limit"`
	SessionPath            string `mapstructure:"session_path"`
	DictionaryPath          string `mapstructure:"dictionary_path"`
	LogLevel                string `mapstructure:"log_level"`
}

func defaults() Config {
	return Config{
		MaxHistorySegmentsSize:  4,
		EnableUserHistory:       true,
		KanaModifierInsensitive: false,
		CandidatesSizeLimit:     0,
		SessionPath:             "mozcgo-session.json",
		DictionaryPath:          "",
		LogLevel:                "info",
	}
}

// OnChange is invoked with the freshly-resolved Config every time the
// watched config file changes, when Load is called with watch=true.
type OnChange func(Config)

// Load resolves a Config from (in increasing precedence) built-in
// defaults, an optional YAML file at path (ignored if path is ""),
// MOZCGO_*-prefixed environment variables, and flags already bound
// into v by the caller. If watch is true and path is non-empty, the
// file is watched for changes and onChange is invoked with each
// re-resolved Config. The returned stop func is a no-op: once started,
// the watch stays active for the life of the process.
func Load(path string, bind func(*viper.Viper), watch bool, onChange OnChange) (Config, func(), error) {
	v := viper.New()

	d := defaults()
	v.SetDefault("max_history_segments_size", d.MaxHistorySegmentsSize)
	v.SetDefault("enable_user_history", d.EnableUserHistory)
	v.SetDefault("kana_modifier_insensitive", d.KanaModifierInsensitive)
	v.SetDefault("candidates_size_limit", d.CandidatesSizeLimit)
	v.SetDefault("session_path", d.SessionPath)
	v.SetDefault("dictionary_path", d.DictionaryPath)
	v.SetDefault("log_level", d.LogLevel)

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, nil, fmt.Errorf("reading config file: %w", err)
			}
		}
	}

	v.AutomaticEnv()
	v.SetEnvPrefix("MOZCGO")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	if bind != nil {
		bind(v)
	}

	cfg, err := unmarshal(v)
	if err != nil {
		return Config{}, nil, err
	}

	stop := func() {}
	if watch && path != "" {
		v.OnConfigChange(func(fsnotify.Event) {
			if reloaded, err := unmarshal(v); err == nil && onChange != nil {
				onChange(reloaded)
			}
		})
		v.WatchConfig()
	}

	return cfg, stop, nil
}

func unmarshal(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	return cfg, nil
}
