package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/voxhall/tavus-relay/internal/config"
	"github.com/voxhall/tavus-relay/internal/version"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show relay status and configuration summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("tavus-relay %s (commit %s)\n\n", version.Version, version.Commit)

			fmt.Printf("Config:  %s\n", paths.Config)
			fmt.Printf("Data:    %s\n", paths.Data)
			fmt.Printf("Logs:    %s\n", paths.Logs)
			fmt.Println()

			cfg, err := config.Load(paths.Config)
			if err != nil {
				if os.IsNotExist(err) {
					fmt.Println("Config:  not found (using defaults)")
				} else {
					fmt.Printf("Config:  error loading: %v\n", err)
				}
				return nil
			}

			secured := "disabled"
			if cfg.Webhook.Secret != "" {
				secured = "shared-secret"
			}
			fmt.Printf("Server:    port=%d bind=%s auth=%s\n", cfg.Server.Port, cfg.Server.Bind, secured)

			rosterStore := cfg.Roster.Store
			if rosterStore == "" {
				rosterStore = "memory"
			}
			fmt.Printf("Roster:    store=%s announceJoins=%v\n", rosterStore, cfg.Roster.AnnounceJoins)

			if cfg.Tavus.APIKey != "" {
				base := cfg.Tavus.BaseURL
				if base == "" {
					base = config.DefaultTavusBaseURL
				}
				fmt.Printf("Tavus:     %s\n", base)
			} else {
				fmt.Println("Tavus:     (no API key, outbound calls disabled)")
			}

			if cfg.Recording.Bucket != "" {
				fmt.Printf("Recording: s3://%s/%s (%s)\n", cfg.Recording.Bucket, cfg.Recording.Prefix, cfg.Recording.Region)
			} else {
				fmt.Println("Recording: (not configured)")
			}

			if cfg.EventLog.EventLogEnabled() {
				dir := cfg.EventLog.Dir
				if dir == "" {
					dir = "(default)"
				}
				fmt.Printf("EventLog:  enabled dir=%s\n", dir)
			} else {
				fmt.Println("EventLog:  disabled")
			}

			issues := config.Validate(&cfg)
			if len(issues) > 0 {
				fmt.Printf("\nValidation issues (%d):\n", len(issues))
				for _, issue := range issues {
					fmt.Printf("  - %s: %s\n", issue.Path, issue.Message)
				}
			}

			return nil
		},
	}

	return cmd
}
