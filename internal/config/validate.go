package config

import "fmt"

// Issue describes a single validation problem.
type Issue struct {
	Path    string
	Message string
}

// Validate checks the config for problems that would prevent a clean start.
// It returns all issues found rather than stopping at the first.
func Validate(cfg *Config) []Issue {
	var issues []Issue

	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		issues = append(issues, Issue{
			Path:    "server.port",
			Message: fmt.Sprintf("port %d out of range (1-65535)", cfg.Server.Port),
		})
	}

	switch cfg.Server.Bind {
	case "loopback", "lan", "custom":
	default:
		issues = append(issues, Issue{
			Path:    "server.bind",
			Message: "bind must be one of: loopback, lan, custom",
		})
	}

	if cfg.Server.Bind == "custom" && cfg.Server.CustomBindHost == "" {
		issues = append(issues, Issue{
			Path:    "server.customBindHost",
			Message: "customBindHost required when bind is custom",
		})
	}

	switch cfg.Roster.Store {
	case "memory", "sqlite":
	default:
		issues = append(issues, Issue{
			Path:    "roster.store",
			Message: "store must be one of: memory, sqlite",
		})
	}

	if cfg.Roster.AnnounceJoins && cfg.Tavus.APIKey == "" {
		issues = append(issues, Issue{
			Path:    "roster.announceJoins",
			Message: "announceJoins requires tavus.apiKey",
		})
	}

	if cfg.Recording.Bucket != "" && cfg.Recording.Region == "" {
		issues = append(issues, Issue{
			Path:    "recording.region",
			Message: "region required when recording.bucket is set",
		})
	}

	return issues
}
