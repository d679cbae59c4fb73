package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/voxhall/tavus-relay/internal/config"
	"github.com/voxhall/tavus-relay/internal/tavus"
)

func newPersonaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "persona",
		Short: "Manage Tavus personas",
	}

	cmd.AddCommand(newPersonaCreateCmd())
	cmd.AddCommand(newPersonaUpdateCmd())
	return cmd
}

func tavusClientFromConfig() (*tavus.Client, error) {
	cfg, err := config.Load(paths.Config)
	if err != nil {
		return nil, err
	}
	if cfg.Tavus.APIKey == "" {
		return nil, fmt.Errorf("tavus.apiKey is not configured (set TAVUS_API_KEY)")
	}
	return tavus.NewClient(cfg.Tavus.APIKey, cfg.Tavus.BaseURL, log), nil
}

func newPersonaCreateCmd() *cobra.Command {
	var (
		configPath     string
		personaName    string
		systemPrompt   string
		personaContext string
		pipelineMode   string
		replicaID      string
		objectivesID   string
		objectivesName string
		guardrailsID   string
		guardrailsName string
		documentIDs    string
		documentTags   string
		printPayload   bool
		dryRun         bool
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a persona from flags and/or a JSON(C) config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			fileCfg := map[string]any{}
			if configPath != "" {
				var err error
				fileCfg, err = loadJSONConfig(configPath)
				if err != nil {
					return fmt.Errorf("persona config: %w", err)
				}
			}

			payload := map[string]any{
				"persona_name":  pick(personaName, fileCfg, "persona_name"),
				"pipeline_mode": pick(pipelineMode, fileCfg, "pipeline_mode"),
			}
			if payload["pipeline_mode"] == "" {
				payload["pipeline_mode"] = "full"
			}
			if v := pick(systemPrompt, fileCfg, "system_prompt"); v != "" {
				payload["system_prompt"] = v
			}
			if v := pick(personaContext, fileCfg, "context"); v != "" {
				payload["context"] = v
			}
			if v := pick(replicaID, fileCfg, "default_replica_id"); v != "" {
				payload["default_replica_id"] = v
			}
			if layers, ok := fileCfg["layers"].(map[string]any); ok {
				payload["layers"] = layers
			}
			if ids := csvList(documentIDs); len(ids) > 0 {
				payload["document_ids"] = ids
			} else if v, ok := fileCfg["document_ids"]; ok {
				payload["document_ids"] = v
			}
			if tags := csvList(documentTags); len(tags) > 0 {
				payload["document_tags"] = tags
			} else if v, ok := fileCfg["document_tags"]; ok {
				payload["document_tags"] = v
			}

			client, err := tavusClientFromConfig()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			// Names resolve to ids; explicit ids win.
			objID := pick(objectivesID, fileCfg, "objectives_id")
			if objID == "" {
				if name := pick(objectivesName, fileCfg, "objectives_name"); name != "" {
					resolved, err := client.ResolveObjectivesID(ctx, name)
					if err != nil || resolved == "" {
						log.Warn().Str("name", name).Msg("could not resolve objectives by name")
					} else {
						objID = resolved
						log.Info().Str("id", resolved).Str("name", name).Msg("resolved objectives id")
					}
				}
			}
			if objID != "" {
				payload["objectives_id"] = objID
			}

			grID := pick(guardrailsID, fileCfg, "guardrails_id")
			if grID == "" {
				if name := pick(guardrailsName, fileCfg, "guardrails_name"); name != "" {
					resolved, err := client.ResolveGuardrailsID(ctx, name)
					if err != nil || resolved == "" {
						log.Warn().Str("name", name).Msg("could not resolve guardrails by name")
					} else {
						grID = resolved
						log.Info().Str("id", resolved).Str("name", name).Msg("resolved guardrails id")
					}
				}
			}
			if grID != "" {
				payload["guardrails_id"] = grID
			}

			if printPayload {
				out, _ := json.MarshalIndent(payload, "", "  ")
				fmt.Println(string(out))
			}
			if dryRun {
				return nil
			}

			resp, err := client.CreatePersona(ctx, payload)
			saveRequestLog("persona_create", payload, resp, "/v2/personas", err)
			if err != nil {
				return err
			}

			out, _ := json.MarshalIndent(resp, "", "  ")
			fmt.Println(string(out))
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config-file", "", "persona config file (JSON or JSONC)")
	cmd.Flags().StringVar(&personaName, "name", "", "persona name")
	cmd.Flags().StringVar(&systemPrompt, "system-prompt", "", "persona system prompt")
	cmd.Flags().StringVar(&personaContext, "context", "", "persona context")
	cmd.Flags().StringVar(&pipelineMode, "pipeline-mode", "", "pipeline mode (full, echo)")
	cmd.Flags().StringVar(&replicaID, "default-replica-id", "", "default replica id")
	cmd.Flags().StringVar(&objectivesID, "objectives-id", "", "objectives id")
	cmd.Flags().StringVar(&objectivesName, "objectives-name", "", "objectives name (resolved to an id)")
	cmd.Flags().StringVar(&guardrailsID, "guardrails-id", "", "guardrails id")
	cmd.Flags().StringVar(&guardrailsName, "guardrails-name", "", "guardrails name (resolved to an id)")
	cmd.Flags().StringVar(&documentIDs, "document-ids", "", "comma-separated document ids")
	cmd.Flags().StringVar(&documentTags, "document-tags", "", "comma-separated document tags")
	cmd.Flags().BoolVar(&printPayload, "print-payload", false, "print the request payload")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "build the payload but do not call the API")

	return cmd
}

func newPersonaUpdateCmd() *cobra.Command {
	var (
		systemPrompt   string
		personaContext string
		patchFile      string
	)

	cmd := &cobra.Command{
		Use:   "update <persona-id>",
		Short: "Update a persona with a JSON Patch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			personaID := args[0]

			var patch []map[string]any
			if patchFile != "" {
				data, err := os.ReadFile(patchFile)
				if err != nil {
					return err
				}
				if err := json.Unmarshal(stripJSONComments(data), &patch); err != nil {
					return fmt.Errorf("patch file: %w", err)
				}
			}
			if systemPrompt != "" {
				patch = append(patch, map[string]any{"op": "replace", "path": "/system_prompt", "value": systemPrompt})
			}
			if personaContext != "" {
				patch = append(patch, map[string]any{"op": "replace", "path": "/context", "value": personaContext})
			}
			if len(patch) == 0 {
				return fmt.Errorf("nothing to update: provide --system-prompt, --context, or --patch-file")
			}

			client, err := tavusClientFromConfig()
			if err != nil {
				return err
			}

			resp, err := client.UpdatePersona(cmd.Context(), personaID, patch)
			saveRequestLog("persona_update", patch, resp, "/v2/personas/"+personaID, err)
			if err != nil {
				return err
			}

			out, _ := json.MarshalIndent(resp, "", "  ")
			fmt.Println(string(out))
			return nil
		},
	}

	cmd.Flags().StringVar(&systemPrompt, "system-prompt", "", "replace the persona system prompt")
	cmd.Flags().StringVar(&personaContext, "context", "", "replace the persona context")
	cmd.Flags().StringVar(&patchFile, "patch-file", "", "JSON Patch file to apply")

	return cmd
}
