package config

// Config is the root configuration for the relay.
type Config struct {
	Server    ServerConfig    `yaml:"server,omitempty"`
	Webhook   WebhookConfig   `yaml:"webhook,omitempty"`
	Roster    RosterConfig    `yaml:"roster,omitempty"`
	Tavus     TavusConfig     `yaml:"tavus,omitempty"`
	Recording RecordingConfig `yaml:"recording,omitempty"`
	EventLog  EventLogConfig  `yaml:"eventLog,omitempty"`
	Logging   LoggingConfig   `yaml:"logging,omitempty"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Port           int      `yaml:"port,omitempty"`
	Bind           string   `yaml:"bind,omitempty"` // "loopback" | "lan" | "custom"
	CustomBindHost string   `yaml:"customBindHost,omitempty"`
	AllowedOrigins []string `yaml:"allowedOrigins,omitempty"`
}

// WebhookConfig controls inbound callback verification.
type WebhookConfig struct {
	// Secret is the shared secret expected in x-webhook-secret or
	// x-tavus-secret. Empty disables the check entirely.
	Secret string `yaml:"secret,omitempty"`
}

// RosterConfig controls per-conversation speaker tracking.
type RosterConfig struct {
	Store         string `yaml:"store,omitempty"` // "memory" | "sqlite"
	AnnounceJoins bool   `yaml:"announceJoins,omitempty"`
}

// TavusConfig holds credentials for outbound Tavus API calls.
type TavusConfig struct {
	APIKey    string `yaml:"apiKey,omitempty"`
	BaseURL   string `yaml:"baseUrl,omitempty"`
	ReplicaID string `yaml:"replicaId,omitempty"`
	// CallbackURL is the public URL Tavus should deliver webhook
	// callbacks to when creating conversations.
	CallbackURL string `yaml:"callbackUrl,omitempty"`
}

// RecordingConfig controls S3 uploads of conversation recordings.
type RecordingConfig struct {
	Bucket  string `yaml:"bucket,omitempty"`
	Region  string `yaml:"region,omitempty"`
	Prefix  string `yaml:"prefix,omitempty"`
	RoleARN string `yaml:"roleArn,omitempty"`
}

// EventLogConfig controls per-conversation payload persistence.
type EventLogConfig struct {
	Enabled *bool  `yaml:"enabled,omitempty"`
	Dir     string `yaml:"dir,omitempty"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level        string `yaml:"level,omitempty"`        // "silent" | "fatal" | "error" | "warn" | "info" | "debug" | "trace"
	ConsoleStyle string `yaml:"consoleStyle,omitempty"` // "pretty" | "json"
}

// EventLogEnabled reports whether payload persistence is on (default true).
func (c EventLogConfig) EventLogEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}
