package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// loggerKey is used to store logger in context.
type loggerKey struct{}

// envPrefix namespaces process environment variables.
const envPrefix = "GQLPERF_"

var (
	configFileUsed string
	envFileUsed    string
	currentConfig  *Config // Stores the loaded config for access by commands
)

// findConfigFile finds the config file to use.
// Priority: explicit path > gqlperf.yaml > gqlperf.yml
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range []string{"gqlperf.yaml", "gqlperf.yml"} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// ResetConfig clears the loaded state. Used for testing.
func ResetConfig() {
	configFileUsed = ""
	envFileUsed = ""
	currentConfig = nil
}

// Load loads configuration from defaults, the config file, the env file,
// environment variables and flags.
// Precedence (highest to lowest): flags > env vars > env file > config file > defaults
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")
	ResetConfig()

	// 1. Defaults
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	configFileUsed = findConfigFile(cfgFile)
	if configFileUsed != "" {
		if err := k.Load(file.Provider(configFileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFileUsed, err)
		}
	}

	// 3. Env file. Its own location can come from any layer above it.
	path, explicit := resolveEnvFile(k, flags)
	values, err := ReadEnvFile(path, explicit)
	if err != nil {
		return nil, err
	}
	if values != nil {
		envFileUsed = path
		if err := k.Load(confmap.Provider(values, "."), nil); err != nil {
			return nil, fmt.Errorf("failed to load env file %s: %w", path, err)
		}
	}

	// 4. Environment variables: GQLPERF_REPORT_PATH -> report_path
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 5. Flags (highest priority)
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			// Only load flags that were explicitly set
			if !f.Changed || f.Name == "config" {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.TextUnmarshallerHookFunc(),
			),
			Result:           &cfg,
			TagName:          "koanf",
			WeaklyTypedInput: true,
		},
	}); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	cfg.GraphQLEndpoint = expandEnvVars(cfg.GraphQLEndpoint)
	cfg.TestSuitesDir = expandEnvVars(cfg.TestSuitesDir)
	cfg.ClientWebDir = expandEnvVars(cfg.ClientWebDir)

	currentConfig = &cfg
	return &cfg, nil
}

// resolveEnvFile picks the env file path. The file counts as explicit when
// its path differs from the default.
func resolveEnvFile(k *koanf.Koanf, flags *pflag.FlagSet) (string, bool) {
	path := k.String("env_file")
	if v := os.Getenv(envPrefix + "ENV_FILE"); v != "" {
		path = v
	}
	if flags != nil && flags.Changed("env-file") {
		if v, err := flags.GetString("env-file"); err == nil {
			path = v
		}
	}
	return path, path != DefaultEnvFile
}

// ReadEnvFile parses a KEY=VALUE file. Keys are lower-cased and an optional
// GQLPERF_ prefix is dropped, so GRAPHQL_ENDPOINT and GQLPERF_GRAPHQL_ENDPOINT
// both set graphql_endpoint. ${VAR} references expand against earlier keys,
// then the process environment.
//
// A missing file returns nil values, unless it was named explicitly.
func ReadEnvFile(path string, explicit bool) (map[string]any, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read env file %s: %w", path, err)
	}

	values := make(map[string]any, len(raw))
	for key, val := range raw {
		key = strings.ToLower(key)
		key = strings.TrimPrefix(key, strings.ToLower(envPrefix))
		values[key] = val
	}
	return values, nil
}

// GetConfigFileUsed returns the path to the config file being used, if any.
func GetConfigFileUsed() string {
	return configFileUsed
}

// GetEnvFileUsed returns the path to the env file that was loaded, if any.
func GetEnvFileUsed() string {
	return envFileUsed
}

// GetCurrentConfig returns the currently loaded configuration.
// This is available after Load is called.
func GetCurrentConfig() *Config {
	return currentConfig
}

// LoggerKey returns the context key used for storing the logger.
// This allows the commands package to retrieve the logger from context
// without creating an import cycle with the cli package.
func LoggerKey() interface{} {
	return loggerKey{}
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
			return l
		}
	}
	// Return discard logger as safe fallback
	return slog.New(slog.DiscardHandler)
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars expands ${VAR} patterns in a string with environment variable values.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match // Return original if not found
	})
}
