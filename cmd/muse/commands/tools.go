package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/haivivi/muse/pkg/catalog"
	"github.com/haivivi/muse/pkg/cli"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "Tool matching and the registered tool set",
	Long: `Match tools against task descriptions and inspect the tool set.

Beyond the built-in tools, a catalog file can declare extra tools for
matching. Catalogs with a jq selector extract declarations from vendor
JSON given via --source.

Examples:
  muse tools list
  muse tools analyze "search the web for Go release notes"
  muse tools analyze --catalog tools.yaml "summarize the meeting notes"
  muse tools analyze --catalog openapi.yaml --source dump.json "call the API"`,
}

var toolsAnalyzeCmd = &cobra.Command{
	Use:   "analyze <task>",
	Short: "Match tools against a task and simulate their use",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openAgent(cmd.Context())
		if err != nil {
			return err
		}
		defer env.close()

		declared, err := loadCatalog(cmd, env.cliCtx)
		if err != nil {
			return err
		}

		report, err := env.agent.AnalyzeTask(cmd.Context(), args[0], declared)
		if err != nil {
			return err
		}
		if err := env.save(cmd.Context()); err != nil {
			return err
		}
		return emitReport(cmd, env.cliCtx, report)
	},
}

var toolsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered tools with their usage statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openAgent(cmd.Context())
		if err != nil {
			return err
		}
		defer env.close()

		tools := env.agent.Tools()
		format := resolveFormat(env.cliCtx, cli.FormatTable)
		if format != cli.FormatTable {
			return format.Print(tools)
		}

		t := cli.Table{Header: []string{"NAME", "EFFECTIVENESS", "USES", "SUCCESSES", "LAST USED"}}
		for _, tool := range tools {
			lastUsed := "-"
			if !tool.LastUsed.IsZero() {
				lastUsed = tool.LastUsed.Time().UTC().Format(time.DateTime)
			}
			t.Rows = append(t.Rows, []string{
				tool.Name,
				fmt.Sprintf("%.2f", tool.Effectiveness),
				fmt.Sprintf("%d", tool.Uses),
				fmt.Sprintf("%d", tool.Successes),
				lastUsed,
			})
		}
		return t.Print()
	},
}

func init() {
	toolsAnalyzeCmd.Flags().String("catalog", "", "tool catalog file (YAML or JSON)")
	toolsAnalyzeCmd.Flags().String("source", "", "vendor JSON the catalog selector extracts declarations from")
	addSaveFlag(toolsAnalyzeCmd)

	toolsCmd.AddCommand(toolsAnalyzeCmd, toolsListCmd)
	rootCmd.AddCommand(toolsCmd)
}

// loadCatalog resolves tool declarations for task analysis: --catalog
// names the catalog file, falling back to the context setting, and
// --source optionally feeds vendor JSON through the catalog selector.
func loadCatalog(cmd *cobra.Command, cliCtx *cli.Context) ([]catalog.Decl, error) {
	path, _ := cmd.Flags().GetString("catalog")
	if path == "" && cliCtx != nil {
		path = cliCtx.CatalogFile
	}
	if path == "" {
		return nil, nil
	}

	cat, err := catalog.Load(path)
	if err != nil {
		return nil, err
	}

	var src []byte
	if srcPath, _ := cmd.Flags().GetString("source"); srcPath != "" {
		src, err = os.ReadFile(srcPath)
		if err != nil {
			return nil, fmt.Errorf("read source: %w", err)
		}
	}
	return cat.Resolve(src)
}
