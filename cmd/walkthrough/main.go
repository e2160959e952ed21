// Command walkthrough narrates a script over a page and lets the user follow
// it by voice.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/koscakluka/ema-walkthrough/core/script"
	"github.com/koscakluka/ema-walkthrough/core/texttospeech/deepgram"
	"github.com/koscakluka/ema-walkthrough/internal/config"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "walkthrough",
		Short: "Voice guided walkthroughs of a page",
		Long: `walkthrough reads a script aloud step by step, highlighting the element
each step talks about, and waits for the user to say what the step asks for.

Example:
  walkthrough run signup.yaml --page browser --url http://localhost:3000`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(schemaCmd())
	rootCmd.AddCommand(checkCmd())
	rootCmd.AddCommand(voicesCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func schemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON schema of script files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(script.Schema()); err != nil {
				return fmt.Errorf("failed to encode schema: %w", err)
			}
			return nil
		},
	}
}

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <script>",
		Short: "Validate a script file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := script.ReadFile(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if file.Title != "" {
				fmt.Fprintf(out, "%s\n", file.Title)
			}
			for _, step := range file.Steps {
				action := "narrate"
				switch {
				case step.Action.IsInvoke():
					action = fmt.Sprintf("say %q to click %s", step.Action.TargetPhrase, step.Action.ControlRef)
				case step.Action.IsCollect():
					action = fmt.Sprintf("fill %s", step.Action.FieldRef)
				}
				fmt.Fprintf(out, "%3d. %s\n", step.ID, action)
			}
			fmt.Fprintf(out, "✓ %d steps\n", len(file.Steps))
			return nil
		},
	}
}

func voicesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "voices",
		Short: "List the Deepgram voices available for narration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			client, err := deepgram.NewTextToSpeechClient(deepgram.WithAPIKey(cfg.DeepgramAPIKey))
			if err != nil {
				return err
			}

			voices, err := client.GetAvailableVoices(cmd.Context())
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v, showing known voices\n", err)
			}
			for _, voice := range voices {
				fmt.Fprintln(cmd.OutOrStdout(), voice)
			}
			return nil
		},
	}
}
