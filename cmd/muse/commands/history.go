package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/haivivi/muse/pkg/cli"
	"github.com/haivivi/muse/pkg/storage"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect and export recorded reasoning history",
	Long: `Inspect the reasoning steps the agent has accumulated and export them
together with the full state snapshot.

Exports go to the context export target, or to the destination named
by --dir or --bucket. The default is the exports directory under the
OS config dir.

Examples:
  muse history list
  muse history list --limit 10 -o json
  muse history show
  muse history clear
  muse history export --dir ./exports
  muse history export --bucket muse-reports --prefix team/alpha`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded reasoning steps",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openAgent(cmd.Context())
		if err != nil {
			return err
		}
		defer env.close()

		steps := env.agent.History()
		if limit, _ := cmd.Flags().GetInt("limit"); limit > 0 && len(steps) > limit {
			steps = steps[len(steps)-limit:]
		}
		if len(steps) == 0 {
			fmt.Println("No history recorded.")
			return nil
		}

		format := resolveFormat(env.cliCtx, cli.FormatTable)
		if format != cli.FormatTable {
			return format.Print(steps)
		}

		t := cli.Table{Header: []string{"#", "TIME", "PHASE", "CONF", "CONTENT"}}
		for i, s := range steps {
			t.Rows = append(t.Rows, []string{
				fmt.Sprintf("%d", i+1),
				s.Timestamp.Time().UTC().Format(time.DateTime),
				string(s.Phase),
				fmt.Sprintf("%.2f", s.Confidence),
				clip(s.Content, 60),
			})
		}
		return t.Print()
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Render the history as a markdown report",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openAgent(cmd.Context())
		if err != nil {
			return err
		}
		defer env.close()

		return emitReport(cmd, env.cliCtx, env.agent.HistoryReport())
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the persisted agent state",
	Long: `Remove the stored snapshot so the next run starts with a fresh agent.
Learned patterns and tool effectiveness go with the history; exports
already written are not touched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openAgent(cmd.Context())
		if err != nil {
			return err
		}
		defer env.close()

		if err := env.store.Delete(cmd.Context(), env.key); err != nil {
			return fmt.Errorf("clear state: %w", err)
		}
		cli.PrintSuccess("Cleared state for %s", env.key)
		return nil
	},
}

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the history report and state snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openAgent(cmd.Context())
		if err != nil {
			return err
		}
		defer env.close()

		target := env.cliCtx.Export
		dir, _ := cmd.Flags().GetString("dir")
		bucket, _ := cmd.Flags().GetString("bucket")
		if dir != "" || bucket != "" {
			target = &cli.ExportTarget{
				Dir:    dir,
				Bucket: bucket,
				Prefix: mustString(cmd, "prefix"),
				Region: mustString(cmd, "region"),
			}
		}
		st, desc, err := exportStore(target)
		if err != nil {
			return err
		}
		cli.PrintInfo("Export target: %s", desc)

		ctx := cmd.Context()
		report := env.agent.HistoryReport()
		reportPath := "reports/" + time.Now().UTC().Format("2006-01-02") + "/history.md"
		if err := storage.WriteFile(ctx, st, reportPath, []byte(report)); err != nil {
			return fmt.Errorf("export report: %w", err)
		}
		cli.PrintSuccess("Exported %s (%s)", reportPath, cli.FormatBytes(int64(len(report))))

		raw, err := msgpack.Marshal(env.agent.Snapshot())
		if err != nil {
			return fmt.Errorf("encode state: %w", err)
		}
		statePath := "state/snapshot.msgpack"
		if err := storage.WriteFile(ctx, st, statePath, raw); err != nil {
			return fmt.Errorf("export state: %w", err)
		}
		cli.PrintSuccess("Exported %s (%s)", statePath, cli.FormatBytes(int64(len(raw))))
		return nil
	},
}

func init() {
	historyListCmd.Flags().Int("limit", 0, "show only the last N steps (0 = all)")
	addSaveFlag(historyShowCmd)
	historyExportCmd.Flags().String("dir", "", "export to this local directory")
	historyExportCmd.Flags().String("bucket", "", "export to this S3 bucket")
	historyExportCmd.Flags().String("prefix", "", "key prefix within the bucket")
	historyExportCmd.Flags().String("region", "", "AWS region for the bucket")

	historyCmd.AddCommand(historyListCmd, historyShowCmd, historyClearCmd, historyExportCmd)
	rootCmd.AddCommand(historyCmd)
}

// clip shortens a string to n runes for table display.
func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
