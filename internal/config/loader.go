package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/spf13/viper"
)

type loadOptions struct {
	envFile string
}

// LoadOption configures Load.
type LoadOption func(*loadOptions)

// WithEnvFile reads dotenv-style overrides from path. A missing file is not
// an error.
func WithEnvFile(path string) LoadOption {
	return func(o *loadOptions) {
		o.envFile = path
	}
}

// WithoutEnvFile disables the env file entirely.
func WithoutEnvFile() LoadOption {
	return func(o *loadOptions) {
		o.envFile = ""
	}
}

// Load resolves every setting with priority order:
// 1. Environment variables (ACDICE_<KEY>, name matched case-insensitively)
// 2. Env file (.env by default, same naming)
// 3. Default values
//
// Any value that fails to parse or violates its constraint aborts the load
// with a *ConfigError. Unknown keys are ignored.
func Load(opts ...LoadOption) (Settings, error) {
	o := loadOptions{envFile: DefaultEnvFile}
	for _, opt := range opts {
		opt(&o)
	}

	settings, err := load(o)
	RecordConfigLoad(err == nil)
	if err != nil {
		return Settings{}, err
	}
	return settings, nil
}

func load(o loadOptions) (Settings, error) {
	v := viper.New()
	v.AllowEmptyEnv(true)

	setDefaults(v)

	if err := bindEnv(v, os.Environ()); err != nil {
		return Settings{}, err
	}

	if o.envFile != "" {
		if err := mergeEnvFile(v, o.envFile); err != nil {
			return Settings{}, err
		}
	}

	var settings Settings
	for _, f := range fields {
		raw := v.GetString(f.key)
		if err := f.assign(&settings, raw); err != nil {
			cfgErr := &ConfigError{
				Key:    f.key,
				EnvVar: EnvVarName(f.key),
				Value:  raw,
				Err:    err,
			}
			var perr *parseError
			if errors.As(err, &perr) {
				cfgErr.Constraint = perr.constraint
				cfgErr.Err = perr.err
			}
			return Settings{}, cfgErr
		}
	}

	if err := settings.Check(); err != nil {
		return Settings{}, err
	}

	return settings, nil
}

// setDefaults registers the built-in value of every setting
func setDefaults(v *viper.Viper) {
	for _, f := range fields {
		v.SetDefault(f.key, f.def)
	}
}

// bindEnv binds each key to every variable in environ whose name equals
// ACDICE_<KEY> ignoring case. The canonical upper-case name is consulted
// first so the result does not depend on environ ordering.
func bindEnv(v *viper.Viper, environ []string) error {
	for _, f := range fields {
		canonical := EnvVarName(f.key)
		names := []string{canonical}

		var aliases []string
		for _, kv := range environ {
			name, _, ok := strings.Cut(kv, "=")
			if !ok || name == canonical {
				continue
			}
			if strings.EqualFold(name, canonical) {
				aliases = append(aliases, name)
			}
		}
		sort.Strings(aliases)
		names = append(names, aliases...)

		if err := v.BindEnv(append([]string{f.key}, names...)...); err != nil {
			return fmt.Errorf("failed to bind %s: %w", canonical, err)
		}
	}
	return nil
}

// mergeEnvFile layers the env file beneath the environment. Viper keeps
// merged config values below bound env vars in its precedence order.
func mergeEnvFile(v *viper.Viper, path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to stat env file: %w", err)
	}

	file := viper.New()
	file.SetConfigFile(path)
	file.SetConfigType("env")
	if err := file.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read env file %s: %w", path, err)
	}

	overrides := make(map[string]interface{})
	for _, f := range fields {
		fileKey := strings.ToLower(EnvVarName(f.key))
		if file.IsSet(fileKey) {
			overrides[f.key] = file.GetString(fileKey)
		}
	}

	if len(overrides) == 0 {
		return nil
	}
	if err := v.MergeConfigMap(overrides); err != nil {
		return fmt.Errorf("failed to merge env file %s: %w", path, err)
	}
	return nil
}
