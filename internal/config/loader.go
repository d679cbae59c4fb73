package config

import (
	"os"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// envVarPattern matches ${VAR_NAME} patterns in strings.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnvVars replaces ${VAR} patterns with environment variable values.
// Unset variables are left unchanged.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val, ok := os.LookupEnv(varName); ok {
			return val
		}
		return match
	})
}

// expandSensitiveFields processes environment variable references in
// credential fields so secrets can be stored as ${ENV_VAR}.
func expandSensitiveFields(cfg *Config) {
	cfg.Webhook.Secret = expandEnvVars(cfg.Webhook.Secret)
	cfg.Tavus.APIKey = expandEnvVars(cfg.Tavus.APIKey)
}

// Load reads the config file, applies environment overrides, and returns
// a merged Config. Missing files produce defaults only.
func Load(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnvOverrides(&cfg)
			return cfg, nil
		}
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, &ConfigError{Message: "failed to parse config: " + err.Error()}
	}

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)
	expandSensitiveFields(&cfg)
	return cfg, nil
}

// applyDefaults fills zero-value fields with sensible defaults.
func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Bind == "" {
		cfg.Server.Bind = "loopback"
	}
	if cfg.Roster.Store == "" {
		cfg.Roster.Store = "memory"
	}
	if cfg.Tavus.BaseURL == "" {
		cfg.Tavus.BaseURL = DefaultTavusBaseURL
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.ConsoleStyle == "" {
		cfg.Logging.ConsoleStyle = "pretty"
	}
}

// applyEnvOverrides reads RELAY_* and upstream-conventional environment
// variables and overrides config values. The webhook secret and S3
// recording variables keep the names the deployment scripts already use.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("RELAY_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("RELAY_BIND"); v != "" {
		cfg.Server.Bind = v
	}
	if v := os.Getenv("RELAY_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv("WEBHOOK_SHARED_SECRET"); v != "" {
		cfg.Webhook.Secret = v
	}
	if v := os.Getenv("TAVUS_API_KEY"); v != "" {
		cfg.Tavus.APIKey = v
	}
	if v := os.Getenv("TAVUS_REPLICA_ID"); v != "" {
		cfg.Tavus.ReplicaID = v
	}
	if v := os.Getenv("WEBHOOK_URL"); v != "" {
		cfg.Tavus.CallbackURL = v
	}
	if v := os.Getenv("S3_RECORDING_BUCKET_NAME"); v != "" {
		cfg.Recording.Bucket = v
	}
	if v := os.Getenv("S3_RECORDING_BUCKET_REGION"); v != "" {
		cfg.Recording.Region = v
	}
	if v := os.Getenv("AWS_ASSUME_ROLE_ARN"); v != "" {
		cfg.Recording.RoleARN = v
	}
}
