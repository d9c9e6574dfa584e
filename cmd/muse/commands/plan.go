package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/haivivi/muse/pkg/cli"
	"github.com/haivivi/muse/pkg/muse"
)

var planCmd = &cobra.Command{
	Use:   "plan <goal>",
	Short: "Build a strategic plan for a goal",
	Long: `Analyze a goal under constraints and print the strategic plan report:
complexity and duration estimates, the step sequence, a risk
assessment, and monitoring guidance. Planning records nothing on the
agent.

Examples:
  muse plan "Launch the beta program"
  muse plan --horizon long "Migrate every service to the new platform"
  muse plan --constraints "two engineers,six weeks" "Ship the billing rewrite"
  muse plan --constraints-file limits.yaml "Consolidate the data pipelines"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		horizon, _ := cmd.Flags().GetString("horizon")
		switch muse.Horizon(horizon) {
		case muse.HorizonShort, muse.HorizonMedium, muse.HorizonLong:
		default:
			return fmt.Errorf("invalid horizon %q (short, medium, long)", horizon)
		}

		constraints := splitComma(mustString(cmd, "constraints"))
		if path, _ := cmd.Flags().GetString("constraints-file"); path != "" {
			var fromFile []string
			if err := cli.LoadRequest(path, &fromFile); err != nil {
				return fmt.Errorf("load constraints: %w", err)
			}
			constraints = append(constraints, fromFile...)
		}

		env, err := openAgent(cmd.Context())
		if err != nil {
			return err
		}
		defer env.close()

		report, err := env.agent.Plan(cmd.Context(), args[0], constraints, muse.Horizon(horizon))
		if err != nil {
			return err
		}
		return emitReport(cmd, env.cliCtx, report)
	},
}

func init() {
	planCmd.Flags().String("horizon", "medium", "planning horizon (short, medium, long)")
	planCmd.Flags().String("constraints", "", "comma-separated constraints")
	planCmd.Flags().String("constraints-file", "", "YAML or JSON file with a list of constraints")
	addSaveFlag(planCmd)
	rootCmd.AddCommand(planCmd)
}

func mustString(cmd *cobra.Command, name string) string {
	s, _ := cmd.Flags().GetString(name)
	return s
}

// splitComma splits a comma-separated string, trimming whitespace.
func splitComma(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
