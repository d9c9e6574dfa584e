package commands

import (
	"github.com/spf13/cobra"

	"github.com/haivivi/muse/pkg/muse"
)

var thinkCmd = &cobra.Command{
	Use:   "think <query>",
	Short: "Run the staged reasoning chain over a query",
	Long: `Run the full reasoning chain over a query and print the thinking
report: analysis, planning, execution, evaluation, and reflection.

Every step is appended to the agent history, so later 'muse history'
calls show the accumulated chains.

Examples:
  muse think "What is the capital of France?"
  muse think --depth 5 "Compare event sourcing and CRUD for an audit trail"
  muse think --no-critical-thinking "Quick sanity check on this idea"
  muse think --save reports/sky.md "Why is the sky blue?"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openAgent(cmd.Context())
		if err != nil {
			return err
		}
		defer env.close()

		report, err := env.agent.Think(cmd.Context(), args[0], callOptions(cmd)...)
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
	thinkCmd.Flags().Int("depth", 0, "reasoning depth 1-5 (default: context setting or 3)")
	thinkCmd.Flags().Bool("no-critical-thinking", false, "skip the evaluation phase")
	addSaveFlag(thinkCmd)
	rootCmd.AddCommand(thinkCmd)
}

// callOptions converts the reasoning flags shared by think and chain
// into call options. Unset flags leave the agent knobs alone.
func callOptions(cmd *cobra.Command) []muse.CallOption {
	var opts []muse.CallOption
	if cmd.Flags().Changed("depth") {
		depth, _ := cmd.Flags().GetInt("depth")
		opts = append(opts, muse.WithDepth(depth))
	}
	if cmd.Flags().Changed("no-critical-thinking") {
		off, _ := cmd.Flags().GetBool("no-critical-thinking")
		opts = append(opts, muse.WithCriticalThinking(!off))
	}
	return opts
}
