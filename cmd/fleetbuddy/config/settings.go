package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

var (
	ErrUnknownSetting  = errors.New("unknown setting")
	ErrInvalidSettings = errors.New("invalid settings")
)

// Settings are the user-editable values kept in settings.yaml.
type Settings struct {
	Bastion     string `mapstructure:"bastion" validate:"required,hostname"`
	BastionUser string `mapstructure:"bastion_user"`
	CIDR        string `mapstructure:"cidr" validate:"required,cidrv4"`
	Interface   string `mapstructure:"interface" validate:"required"`
	Kubeconfig  string `mapstructure:"kubeconfig" validate:"required"`
	OCMEnv      string `mapstructure:"ocm_env" validate:"required"`
	TimeoutMs   int    `mapstructure:"timeout_ms" validate:"gt=0"`
	SSHKeyPath  string `mapstructure:"ssh_key_path"`
	KnownHosts  string `mapstructure:"known_hosts"`
	ConsoleURL  string `mapstructure:"console_url" validate:"required,url"`
	TokenURL    string `mapstructure:"token_url" validate:"required,url"`
}

var settingDefaults = map[string]interface{}{
	"bastion":      "bastion.ci.int.devshift.net",
	"bastion_user": "",
	"cidr":         "10.164.0.0/16",
	"interface":    "en0",
	"kubeconfig":   "~/.kube/config",
	"ocm_env":      "integration",
	"timeout_ms":   30000,
	"ssh_key_path": "",
	"known_hosts":  "~/.ssh/known_hosts",
	"console_url":  "https://console-openshift-console.apps.hive01ue1.f7i5.p1.openshiftapps.com/dashboards",
	"token_url":    "https://console.redhat.com/openshift/token",
}

var validate = validator.New()

func newViper(path string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("FLEETBUDDY")
	v.AutomaticEnv()

	for key, value := range settingDefaults {
		v.SetDefault(key, value)
	}

	return v
}

// LoadSettings reads settings from path, falling back to defaults for
// anything missing. A missing file is not an error.
func LoadSettings(path string) (*Settings, error) {
	v := newViper(path)

	if err := v.ReadInConfig(); err != nil {
		if !os.IsNotExist(err) && !isNotFound(err) {
			return nil, fmt.Errorf("failed to read settings file: %w", err)
		}
	}

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal settings: %w", err)
	}

	if err := validate.Struct(&settings); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}

	return &settings, nil
}

func isNotFound(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)
}

// SaveSetting validates and persists a single key.
func SaveSetting(path string, key string, value string) (*Settings, error) {
	key = strings.ToLower(strings.TrimSpace(key))

	if _, ok := settingDefaults[key]; !ok {
		return nil, fmt.Errorf("%w: %s (known: %s)", ErrUnknownSetting, key, strings.Join(SettingKeys(), ", "))
	}

	v := newViper(path)
	if err := v.ReadInConfig(); err != nil && !isNotFound(err) {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	v.Set(key, value)

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal settings: %w", err)
	}

	if err := validate.Struct(&settings); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create settings directory: %w", err)
	}

	if err := v.WriteConfigAs(path); err != nil {
		return nil, fmt.Errorf("failed to write settings file: %w", err)
	}

	return &settings, nil
}

func SettingKeys() []string {
	keys := make([]string, 0, len(settingDefaults))
	for key := range settingDefaults {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// DefaultSettings returns the built-in settings without reading any file.
func DefaultSettings() *Settings {
	v := viper.New()
	for key, value := range settingDefaults {
		v.SetDefault(key, value)
	}

	var settings Settings
	_ = v.Unmarshal(&settings)

	return &settings
}
