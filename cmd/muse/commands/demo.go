package commands

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/haivivi/muse/pkg/catalog"
	"github.com/haivivi/muse/pkg/cli"
	"github.com/haivivi/muse/pkg/kv"
	"github.com/haivivi/muse/pkg/muse"
)

// demoCatalog is the inline tool catalog fed to task analysis.
const demoCatalog = `name: demo
tools:
  - name: summarizer
    description: Summarize long reports and extract the key findings
    schema:
      type: object
      properties:
        text:
          type: string
      required:
        - text
    examples:
      - summarize the incident retrospective
  - name: translator
    description: Translate text between languages keeping markdown intact
    examples:
      - translate the summary to German
`

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run a scripted tour of the agent",
	Long: `Run a scripted tour of the agent against an in-memory database.

The demo walks every reasoning mode (think, chain, task analysis,
planning, adaptation), snapshots the agent through the store, restores
the snapshot into a fresh twin, and finishes with a status panel over
the captured logs. Nothing is written to disk.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		start := time.Now()

		logs := cli.NewLogWriter(64)
		logger := slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

		store, err := kv.NewBadger(kv.BadgerOptions{InMemory: true, Logger: logger})
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer store.Close()

		agent, err := muse.New(muse.Config{Logger: logger})
		if err != nil {
			return err
		}
		cli.PrintInfo("In-memory database; nothing is written to disk.")

		queries := []string{
			"How should an agent decompose a vague research question?",
			"Compare file-based and database-backed state for small tools",
			"Why do keyword classifiers misfire on short queries?",
		}
		var lastReport string
		for _, q := range queries {
			before := len(agent.History())
			report, err := agent.Think(ctx, q)
			if err != nil {
				return err
			}
			lastReport = report
			fmt.Printf("think: +%d steps, %s report\n",
				len(agent.History())-before, cli.FormatBytes(int64(len(report))))
		}

		before := len(agent.History())
		chainReport, err := agent.ExecuteChain(ctx, "Publish the monthly usage report", []string{
			"Collect raw usage counts",
			"Normalize by team size",
			"Draft the summary narrative",
		})
		if err != nil {
			return err
		}
		fmt.Printf("chain: +%d steps, %s report\n",
			len(agent.History())-before, cli.FormatBytes(int64(len(chainReport))))

		cat, err := catalog.Parse([]byte(demoCatalog))
		if err != nil {
			return err
		}
		decls, err := cat.Resolve(nil)
		if err != nil {
			return err
		}
		taskReport, err := agent.AnalyzeTask(ctx, "Summarize the customer interviews and translate the highlights", decls)
		if err != nil {
			return err
		}
		fmt.Printf("tools analyze: %d declared, %s report\n",
			len(decls), cli.FormatBytes(int64(len(taskReport))))

		planReport, err := agent.Plan(ctx, "Roll the agent out to three more teams",
			[]string{"two sprints", "no new infrastructure"}, muse.HorizonMedium)
		if err != nil {
			return err
		}
		adaptReport, err := agent.Adapt(ctx, "The primary data source started rate limiting during peak hours",
			[]string{"rate_limited_api", "nightly_batch_window"})
		if err != nil {
			return err
		}
		fmt.Printf("plan: %s report, adapt: %s report\n",
			cli.FormatBytes(int64(len(planReport))), cli.FormatBytes(int64(len(adaptReport))))

		// Snapshot through the store and restore into a twin.
		raw, err := msgpack.Marshal(agent.Snapshot())
		if err != nil {
			return fmt.Errorf("encode state: %w", err)
		}
		key := kv.Key{"agent", "demo", "state"}
		if err := store.Set(ctx, key, raw); err != nil {
			return fmt.Errorf("save state: %w", err)
		}
		loaded, err := store.Get(ctx, key)
		if err != nil {
			return fmt.Errorf("load state: %w", err)
		}
		var restored muse.State
		if err := msgpack.Unmarshal(loaded, &restored); err != nil {
			return fmt.Errorf("decode state: %w", err)
		}
		twin, err := muse.New(muse.Config{Logger: logger})
		if err != nil {
			return err
		}
		twin.Restore(restored)
		if got, want := len(twin.History()), len(agent.History()); got != want {
			return fmt.Errorf("restored history has %d steps, want %d", got, want)
		}
		cli.PrintSuccess("Snapshot roundtrip: %s through the store, %d steps restored",
			cli.FormatBytes(int64(len(raw))), len(twin.History()))

		fmt.Println()
		fmt.Println(cli.Highlight(lastReport, cli.NewStyles(cli.DefaultTheme)))

		stats := []string{
			fmt.Sprintf("steps: %d", len(agent.History())),
			fmt.Sprintf("patterns: %d", len(agent.Patterns())),
			fmt.Sprintf("tools: %d", len(agent.Tools())),
			fmt.Sprintf("snapshot: %s", cli.FormatBytes(int64(len(raw)))),
		}
		panel := cli.Panel{
			Styles: cli.NewStyles(cli.DefaultTheme),
			Title:  "muse demo",
			Status: cli.FormatDuration(time.Since(start)),
			Sections: []cli.Section{
				{Label: "🧠 Agent", Lines: stats},
				{Label: "📜 Log", Lines: logs.Lines()},
			},
			Help: "muse think <query> starts a persistent agent",
		}
		fmt.Println(panel.Render(80, 20))

		fmt.Println("=== demo complete ===")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(demoCmd)
}
