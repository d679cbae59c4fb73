package config

import "fmt"

// DefaultTavusBaseURL is the production Tavus API endpoint.
const DefaultTavusBaseURL = "https://tavusapi.com"

// ConfigError represents a configuration error.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s", e.Message)
}

// Defaults returns a Config with sensible defaults applied.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port: 8080,
			Bind: "loopback",
		},
		Roster: RosterConfig{
			Store: "memory",
		},
		Tavus: TavusConfig{
			BaseURL: DefaultTavusBaseURL,
		},
		Logging: LoggingConfig{
			Level:        "info",
			ConsoleStyle: "pretty",
		},
	}
}
