package config

import (
	_ "embed"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/guesant/marech/pkg/errors"
	"github.com/guesant/marech/pkg/logging"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of environment variables read into the config.
const EnvPrefix = "MARECH_"

// Filenames are the config file names looked up, in order, when a directory
// is given to Load.
var Filenames = []string{"marech.toml", "marech.yaml", "marech.yml", ".marech.toml"}

//go:embed embedded/defaults.toml
var defaultConfig []byte

// rawBytesProvider implements koanf provider for raw bytes
type rawBytesProvider struct{ bytes []byte }

func (r *rawBytesProvider) ReadBytes() ([]byte, error) { return r.bytes, nil }
func (r *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, stderrors.New("not implemented")
}

// Load reads the configuration at requestedPath, which is either a config
// file or a directory holding one.
func Load(requestedPath string) (*Config, error) {
	return LoadWithOverrides(requestedPath, nil)
}

// LoadWithOverrides is like Load, then applies overrides keyed by dotted
// path (for example "presets.html_minify.enabled").
func LoadWithOverrides(requestedPath string, overrides map[string]any) (*Config, error) {
	logger := logging.GetLogger("config")

	configPath, err := FindConfigFile(requestedPath)
	if err != nil {
		return nil, err
	}
	parser, err := parserFor(configPath)
	if err != nil {
		return nil, err
	}

	k := koanf.New(".")

	// 1. Built-in defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to load built-in defaults")
	}

	// 2. Project config file
	if err := k.Load(file.Provider(configPath), parser); err != nil {
		return nil, invalid(err, configPath, "cannot parse config file")
	}

	// 3. Environment
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to load environment variables")
	}

	// 4. Explicit overrides
	if len(overrides) > 0 {
		if err := k.Load(confmap.Provider(overrides, "."), nil); err != nil {
			return nil, invalid(err, configPath, "cannot apply overrides")
		}
	}

	cfg, err := decode(k)
	if err != nil {
		return nil, invalid(err, configPath, "cannot decode config file")
	}
	cfg.Path = configPath
	cfg.resolvePaths(filepath.Dir(configPath))

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	logger.Debug().
		Str("path", configPath).
		Int("files", len(cfg.Files)).
		Int("rules", len(cfg.Rules)).
		Msg("Configuration loaded")
	return cfg, nil
}

// FindConfigFile returns the absolute path of the config file designated by
// requestedPath. A directory is searched for the names in Filenames.
func FindConfigFile(requestedPath string) (string, error) {
	if requestedPath == "" {
		requestedPath = "."
	}
	abs, err := filepath.Abs(requestedPath)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrConfigNotFound, "config file not found: %s", requestedPath).
			WithDetail("path", requestedPath)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrConfigNotFound, "config file not found: %s", requestedPath).
			WithDetail("path", abs)
	}
	if !info.IsDir() {
		return abs, nil
	}

	for _, name := range Filenames {
		candidate := filepath.Join(abs, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	return "", errors.Newf(errors.ErrConfigNotFound, "config file not found in %s", requestedPath).
		WithDetail("path", abs).
		WithDetail("candidates", Filenames)
}

func parserFor(path string) (koanf.Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return toml.Parser(), nil
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	default:
		return nil, errors.Newf(errors.ErrConfigInvalid, "unsupported config format: %s", filepath.Base(path)).
			WithDetail("path", path)
	}
}

func decode(k *koanf.Koanf) (*Config, error) {
	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			ErrorUnused:      true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKey maps MARECH_PRESETS__HTML_MINIFY__ENABLED to
// presets.html_minify.enabled. Variables outside the config tree are ignored.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	key = strings.ReplaceAll(key, "__", ".")
	if key == "defaults_enabled" || strings.HasPrefix(key, "presets.") {
		return key
	}
	return ""
}

func invalid(err error, path, message string) error {
	return errors.Wrapf(err, errors.ErrConfigInvalid, "invalid config file %s: %s", path, message).
		WithDetail("path", path)
}
