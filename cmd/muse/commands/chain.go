package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/haivivi/muse/pkg/cli"
)

var chainCmd = &cobra.Command{
	Use:   "chain <task> [steps...]",
	Short: "Execute a multi-step chain for a task",
	Long: `Execute caller-supplied plan steps for a task and print the resulting
report. Steps come from the arguments, from --steps-file (a YAML or
JSON list), or both; with no steps the command behaves like 'think'.

Examples:
  muse chain "Release v2" "Tag the commit" "Build artifacts" "Publish notes"
  muse chain "Migrate the database" --steps-file steps.yaml`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		steps := args[1:]
		if path, _ := cmd.Flags().GetString("steps-file"); path != "" {
			var fromFile []string
			if err := cli.LoadRequest(path, &fromFile); err != nil {
				return fmt.Errorf("load steps: %w", err)
			}
			steps = append(steps, fromFile...)
		}

		env, err := openAgent(cmd.Context())
		if err != nil {
			return err
		}
		defer env.close()

		report, err := env.agent.ExecuteChain(cmd.Context(), args[0], steps, callOptions(cmd)...)
		if err != nil {
			return err
		}
		if err := env.save(cmd.Context()); err != nil {
			return err
		}
		return emitReport(cmd, env.cliCtx, report)
	},
}

func init() {
	chainCmd.Flags().Int("depth", 0, "reasoning depth 1-5 (default: context setting or 3)")
	chainCmd.Flags().Bool("no-critical-thinking", false, "skip the evaluation phase")
	chainCmd.Flags().String("steps-file", "", "YAML or JSON file with a list of plan steps")
	addSaveFlag(chainCmd)
	rootCmd.AddCommand(chainCmd)
}
