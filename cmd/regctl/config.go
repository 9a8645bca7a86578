package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/joshuapare/regkit/pkg/registry"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	// Config keys. Each one but encoding has a global flag of the same
	// name with "_" spelled "-".
	cfgKeyDebug     = "debug"
	cfgKeyLongNames = "long_names"
	cfgKeyFile      = "file"
	cfgKeyLogDir    = "log_dir"
	cfgKeyEncoding  = "encoding"

	defaultEncoding = registry.EncodingUTF8
)

// defaultConfigYAML is the content written to config.yaml on first run.
const defaultConfigYAML = `# regctl configuration
# Command-line flags override these settings.

# Failure policy: silent, log or strict
debug: silent

# Print HKEY_CURRENT_USER\... instead of HKCU:...
long_names: false

# Work on this .reg file instead of the live registry (optional)
# file:

# Write logs to daily files in this directory (optional)
# log_dir:

# Encoding for .reg files written by regctl: UTF-8 or UTF-16LE
encoding: UTF-8
`

// settings is the merged configuration.
type settings struct {
	Debug     string `mapstructure:"debug"`
	LongNames bool   `mapstructure:"long_names"`
	File      string `mapstructure:"file"`
	LogDir    string `mapstructure:"log_dir"`
	Encoding  string `mapstructure:"encoding"`
}

// defaultConfigDir is $HOME/.config/regctl.
func defaultConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("find home directory: %w", err)
	}
	return filepath.Join(home, ".config", "regctl"), nil
}

// loadConfig reads the config file named by --config, or config.yaml in
// the default directory. An explicit file must exist.
func loadConfig(path string) (*viper.Viper, error) {
	if path == "" {
		dir, err := defaultConfigDir()
		if err != nil {
			return nil, err
		}
		return loadConfigDir(dir)
	}

	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return v, nil
}

// loadConfigDir reads config.yaml from configDir. It creates the directory
// and a default config.yaml on first run.
func loadConfigDir(configDir string) (*viper.Viper, error) {
	if err := ensureConfigDir(configDir); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := ensureDefaultConfigFile(configDir); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	v := newViper()
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault(cfgKeyDebug, registry.DebugSilent.String())
	v.SetDefault(cfgKeyLongNames, false)
	v.SetDefault(cfgKeyEncoding, defaultEncoding)
	return v
}

// bindFlags lets flags given on the command line override the file.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for key, flag := range map[string]string{
		cfgKeyDebug:     "debug",
		cfgKeyLongNames: "long-names",
		cfgKeyFile:      "file",
		cfgKeyLogDir:    "log-dir",
	} {
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			return fmt.Errorf("bind --%s: %w", flag, err)
		}
	}
	return nil
}

func readSettings(v *viper.Viper) (settings, error) {
	var s settings
	if err := v.Unmarshal(&s); err != nil {
		return settings{}, fmt.Errorf("parse config: %w", err)
	}
	return s, nil
}

// ensureConfigDir creates the config directory if it does not exist.
func ensureConfigDir(configDir string) error {
	return os.MkdirAll(configDir, 0o755)
}

// ensureDefaultConfigFile creates a default config.yaml if the file does not
// exist in the config directory.
func ensureDefaultConfigFile(configDir string) error {
	path := filepath.Join(configDir, configFileExt)

	_, err := os.Stat(path)
	if err == nil {
		// File already exists.
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}

	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}
