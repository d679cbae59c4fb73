package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/voxhall/tavus-relay/internal/config"
)

func newConversationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "conversation",
		Short: "Manage Tavus conversations",
	}

	cmd.AddCommand(newConversationCreateCmd())
	return cmd
}

// meetingContext builds a facilitator briefing from the meeting flags.
func meetingContext(meetingType, framework, topic, comment string, duration, participants int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a facilitator guiding a %d-minute %s using the %s framework.\n", duration, meetingType, framework)
	fmt.Fprintf(&b, "Topic: “%s”\n", topic)
	fmt.Fprintf(&b, "Participants: %d. Include quiet voices; announce time checks; cluster ideas; end with 1 clear action item.", participants)
	if comment != "" {
		fmt.Fprintf(&b, "\nHost comment: %s.", strings.TrimSuffix(comment, "."))
	}
	return b.String()
}

// recordingProperties maps the S3 recording config onto the conversation
// properties Tavus expects.
func recordingProperties(rec config.RecordingConfig) map[string]any {
	if rec.Bucket == "" {
		return nil
	}
	return map[string]any{
		"enable_recording":           true,
		"aws_assume_role_arn":        rec.RoleARN,
		"recording_s3_bucket_region": rec.Region,
		"recording_s3_bucket_name":   rec.Bucket,
	}
}

func newConversationCreateCmd() *cobra.Command {
	var (
		configPath      string
		personaID       string
		replicaID       string
		convName        string
		convContext     string
		callbackURL     string
		customGreeting  string
		audioOnly       bool
		enableRecording bool
		meetingType     string
		framework       string
		topic           string
		comment         string
		duration        int
		participants    int
		printPayload    bool
		dryRun          bool
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a conversation, optionally seeded with a meeting briefing",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(paths.Config)
			if err != nil {
				return err
			}

			fileCfg := map[string]any{}
			if configPath != "" {
				fileCfg, err = loadJSONConfig(configPath)
				if err != nil {
					return fmt.Errorf("conversation config: %w", err)
				}
			}

			client, err := tavusClientFromConfig()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			payload := map[string]any{}
			if v := pick(personaID, fileCfg, "persona_id"); v != "" {
				payload["persona_id"] = v
			}
			if v := pick(replicaID, fileCfg, "replica_id"); v != "" {
				payload["replica_id"] = v
			}

			// Without a persona or an explicit replica there is nothing to
			// render; fall back to picking a completed replica.
			if payload["persona_id"] == nil && payload["replica_id"] == nil {
				picked, err := client.PickReplica(ctx, "", cfg.Tavus.ReplicaID)
				if err != nil {
					return fmt.Errorf("pick replica: %w", err)
				}
				if picked == "" {
					return fmt.Errorf("no replica available: pass --replica-id or --persona-id")
				}
				log.Info().Str("replica_id", picked).Msg("auto-selected replica")
				payload["replica_id"] = picked
			}

			if v := pick(convName, fileCfg, "conversation_name"); v != "" {
				payload["conversation_name"] = v
			}

			cc := pick(convContext, fileCfg, "conversational_context")
			if cc == "" && topic != "" {
				cc = meetingContext(meetingType, framework, topic, comment, duration, participants)
			}
			if cc != "" {
				payload["conversational_context"] = cc
			}

			// Callback precedence: flag, then file config, then relay config.
			cb := pick(callbackURL, fileCfg, "callback_url")
			if cb == "" {
				cb = cfg.Tavus.CallbackURL
			}
			if cb != "" {
				payload["callback_url"] = cb
			}

			if v := pick(customGreeting, fileCfg, "custom_greeting"); v != "" {
				payload["custom_greeting"] = v
			}
			if audioOnly {
				payload["audio_only"] = true
			}

			props := map[string]any{}
			if fileProps, ok := fileCfg["properties"].(map[string]any); ok {
				for k, v := range fileProps {
					props[k] = v
				}
			}
			if enableRecording {
				rec := recordingProperties(cfg.Recording)
				if rec == nil {
					return fmt.Errorf("recording is not configured: set recording.bucket")
				}
				for k, v := range rec {
					props[k] = v
				}
			}
			if len(props) > 0 {
				payload["properties"] = props
			}

			if printPayload {
				out, _ := json.MarshalIndent(payload, "", "  ")
				fmt.Println(string(out))
			}
			if dryRun {
				return nil
			}

			resp, err := client.CreateConversation(ctx, payload)
			saveRequestLog("conversation_create", payload, resp, "/v2/conversations", err)
			if err != nil {
				return err
			}

			out, _ := json.MarshalIndent(resp, "", "  ")
			fmt.Println(string(out))

			if url := configString(resp, "conversation_url"); url != "" {
				log.Info().Str("url", url).Msg("conversation ready")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config-file", "", "conversation config file (JSON or JSONC)")
	cmd.Flags().StringVar(&personaID, "persona-id", "", "persona id")
	cmd.Flags().StringVar(&replicaID, "replica-id", "", "replica id (auto-picked when omitted)")
	cmd.Flags().StringVar(&convName, "name", "", "conversation name")
	cmd.Flags().StringVar(&convContext, "context", "", "conversational context")
	cmd.Flags().StringVar(&callbackURL, "callback-url", "", "webhook callback URL")
	cmd.Flags().StringVar(&customGreeting, "custom-greeting", "", "custom greeting")
	cmd.Flags().BoolVar(&audioOnly, "audio-only", false, "create an audio-only conversation")
	cmd.Flags().BoolVar(&enableRecording, "enable-recording", false, "enable S3 recording from the recording config")
	cmd.Flags().StringVar(&meetingType, "meeting-type", "brainstorm", "meeting type for the generated briefing")
	cmd.Flags().StringVar(&framework, "framework", "divergent-convergent", "facilitation framework")
	cmd.Flags().StringVar(&topic, "topic", "", "meeting topic (enables the generated briefing)")
	cmd.Flags().StringVar(&comment, "comment", "", "host comment appended to the briefing")
	cmd.Flags().IntVar(&duration, "duration", 30, "meeting duration in minutes")
	cmd.Flags().IntVar(&participants, "participants", 5, "expected participant count")
	cmd.Flags().BoolVar(&printPayload, "print-payload", false, "print the request payload")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "build the payload but do not call the API")

	return cmd
}
