package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/haivivi/muse/pkg/cli"
)

var adaptCmd = &cobra.Command{
	Use:   "adapt <situation>",
	Short: "Analyze a changing situation and suggest adaptations",
	Long: `Analyze a situation description and print the adaptation report:
context patterns, critical environment factors, matching strategies,
and learning recommendations. Adaptation records nothing on the agent.

Environment factors come from --env, from --env-file (a YAML or JSON
list), or both.

Examples:
  muse adapt "Usage patterns changed after the launch"
  muse adapt --env "time pressure,limited resources" "The main problem is churn"
  muse adapt --env-file factors.yaml "A growth opportunity opened up"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		factors := splitComma(mustString(cmd, "env"))
		if path, _ := cmd.Flags().GetString("env-file"); path != "" {
			var fromFile []string
			if err := cli.LoadRequest(path, &fromFile); err != nil {
				return fmt.Errorf("load environment factors: %w", err)
			}
			factors = append(factors, fromFile...)
		}

		env, err := openAgent(cmd.Context())
		if err != nil {
			return err
		}
		defer env.close()

		report, err := env.agent.Adapt(cmd.Context(), args[0], factors)
		if err != nil {
			return err
		}
		return emitReport(cmd, env.cliCtx, report)
	},
}

func init() {
	adaptCmd.Flags().String("env", "", "comma-separated environment factors")
	adaptCmd.Flags().String("env-file", "", "YAML or JSON file with a list of environment factors")
	addSaveFlag(adaptCmd)
	rootCmd.AddCommand(adaptCmd)
}
