package commands

import (
	"cmp"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/haivivi/muse/pkg/cli"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage contexts and settings",
	Long: `Manage contexts.

A context bundles the settings for one muse setup: the data directory,
custom rule and catalog files, reasoning defaults, and the export
target. All contexts live in a single config.yaml.

Examples:
  muse config list-contexts
  muse config add-context dev --rules rules.yaml --depth 4
  muse config use-context dev
  muse config current-context
  muse config set dev export.bucket muse-reports
  muse config get dev depth
  muse config show dev`,
}

var configListContextsCmd = &cobra.Command{
	Use:     "list-contexts",
	Aliases: []string{"list", "ls"},
	Short:   "List configured contexts",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		names := cfg.ListContexts()

		if len(names) == 0 {
			fmt.Println("No contexts yet. Create one with 'muse config add-context <name>'.")
			return nil
		}

		t := cli.Table{Header: []string{"CURRENT", "NAME", "DATA DIR", "EXPORT"}}
		for _, name := range names {
			current := ""
			if name == cfg.CurrentContext {
				current = "*"
			}
			cliCtx := cfg.Contexts[name]
			t.Rows = append(t.Rows, []string{current, name, cliCtx.DataDir, exportDesc(cliCtx.Export)})
		}
		return t.Print()
	},
}

var configAddContextCmd = &cobra.Command{
	Use:   "add-context <name>",
	Short: "Add a context",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		name := args[0]
		if _, ok := cfg.Contexts[name]; ok {
			return fmt.Errorf("context %q already exists", name)
		}

		depth, _ := cmd.Flags().GetInt("depth")
		noCT, _ := cmd.Flags().GetBool("no-critical-thinking")
		render, _ := cmd.Flags().GetBool("render")
		cliCtx := &cli.Context{
			DataDir:            mustString(cmd, "data-dir"),
			RulesFile:          mustString(cmd, "rules"),
			CatalogFile:        mustString(cmd, "catalog"),
			Depth:              depth,
			NoCriticalThinking: noCT,
			Output:             mustString(cmd, "output"),
			Render:             render,
		}
		exportDir := mustString(cmd, "export-dir")
		exportBucket := mustString(cmd, "export-bucket")
		if exportDir != "" || exportBucket != "" {
			cliCtx.Export = &cli.ExportTarget{
				Dir:    exportDir,
				Bucket: exportBucket,
				Prefix: mustString(cmd, "export-prefix"),
				Region: mustString(cmd, "export-region"),
			}
		}

		if err := cfg.AddContext(name, cliCtx); err != nil {
			return err
		}
		cli.PrintSuccess("Context %q created", name)
		cli.PrintInfo("Activate it with 'muse config use-context %s'", name)
		return nil
	},
}

var configDeleteContextCmd = &cobra.Command{
	Use:   "delete-context <name>",
	Short: "Delete a context",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		name := args[0]

		if err := cfg.DeleteContext(name); err != nil {
			return err
		}
		cli.PrintSuccess("Context %q deleted", name)
		return nil
	},
}

var configUseContextCmd = &cobra.Command{
	Use:   "use-context <name>",
	Short: "Switch the active context",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		name := args[0]

		if err := cfg.UseContext(name); err != nil {
			return err
		}
		cli.PrintSuccess("Switched to context %q", name)
		return nil
	},
}

var configCurrentContextCmd = &cobra.Command{
	Use:   "current-context",
	Short: "Print the active context name",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		if cfg.CurrentContext == "" {
			fmt.Println("No current context. Pick one with 'muse config use-context <name>'.")
			return nil
		}
		fmt.Println(cfg.CurrentContext)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "Show a context (default: current)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		name := ""
		if len(args) > 0 {
			name = args[0]
		}
		cliCtx, err := cfg.ResolveContext(name)
		if err != nil {
			return err
		}

		format := cli.FormatYAML
		if flagOutput != "" {
			format = cli.OutputFormat(flagOutput)
		}
		return format.Print(cliCtx)
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <context> <key> <value>",
	Short: "Set a context config value",
	Long: `Set one value in a context.

Keys: data_dir, rules_file, catalog_file, depth, no_critical_thinking,
output, render, export.dir, export.bucket, export.prefix,
export.region. Ad-hoc values go under extra.<key>.

Examples:
  muse config set dev depth 4
  muse config set dev export.bucket muse-reports
  muse config set dev extra.team alpha`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		name, key, value := args[0], args[1], args[2]
		cliCtx, err := cfg.GetContext(name)
		if err != nil {
			return err
		}
		if err := setContextKey(cliCtx, key, value); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		cli.PrintSuccess("Set %s = %s in context %q", key, value, name)
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <context> <key>",
	Short: "Get a context config value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		cliCtx, err := cfg.GetContext(args[0])
		if err != nil {
			return err
		}
		value, err := getContextKey(cliCtx, args[1])
		if err != nil {
			return err
		}
		fmt.Println(value)
		return nil
	},
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open the config file in the default editor",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}

		editor := cmp.Or(os.Getenv("VISUAL"), os.Getenv("EDITOR"), "vi")

		c := exec.Command(editor, cfg.Path())
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		return c.Run()
	},
}

func init() {
	configAddContextCmd.Flags().String("data-dir", "", "agent state directory for this context")
	configAddContextCmd.Flags().String("rules", "", "classifier rule file")
	configAddContextCmd.Flags().String("catalog", "", "tool catalog file")
	configAddContextCmd.Flags().Int("depth", 0, "default reasoning depth 1-5")
	configAddContextCmd.Flags().Bool("no-critical-thinking", false, "disable the evaluation phase by default")
	configAddContextCmd.Flags().String("output", "", "default output format (yaml, json, table)")
	configAddContextCmd.Flags().Bool("render", false, "style markdown reports by default")
	configAddContextCmd.Flags().String("export-dir", "", "export to this local directory")
	configAddContextCmd.Flags().String("export-bucket", "", "export to this S3 bucket")
	configAddContextCmd.Flags().String("export-prefix", "", "key prefix within the bucket")
	configAddContextCmd.Flags().String("export-region", "", "AWS region for the bucket")

	configCmd.AddCommand(
		configListContextsCmd,
		configAddContextCmd,
		configDeleteContextCmd,
		configUseContextCmd,
		configCurrentContextCmd,
		configShowCmd,
		configSetCmd,
		configGetCmd,
		configEditCmd,
	)

	rootCmd.AddCommand(configCmd)
}

// exportDesc renders an export target for the context table.
func exportDesc(t *cli.ExportTarget) string {
	switch {
	case t == nil:
		return ""
	case t.Dir != "":
		return t.Dir
	case t.Bucket != "":
		s := "s3://" + t.Bucket
		if t.Prefix != "" {
			s += "/" + t.Prefix
		}
		return s
	default:
		return ""
	}
}

func setContextKey(cliCtx *cli.Context, key, value string) error {
	ensureExport := func() *cli.ExportTarget {
		if cliCtx.Export == nil {
			cliCtx.Export = &cli.ExportTarget{}
		}
		return cliCtx.Export
	}
	switch key {
	case "data_dir":
		cliCtx.DataDir = value
	case "rules_file":
		cliCtx.RulesFile = value
	case "catalog_file":
		cliCtx.CatalogFile = value
	case "depth":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("depth must be an integer: %w", err)
		}
		cliCtx.Depth = n
	case "no_critical_thinking":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("no_critical_thinking must be a boolean: %w", err)
		}
		cliCtx.NoCriticalThinking = b
	case "output":
		cliCtx.Output = value
	case "render":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("render must be a boolean: %w", err)
		}
		cliCtx.Render = b
	case "export.dir":
		ensureExport().Dir = value
	case "export.bucket":
		ensureExport().Bucket = value
	case "export.prefix":
		ensureExport().Prefix = value
	case "export.region":
		ensureExport().Region = value
	default:
		if name, ok := strings.CutPrefix(key, "extra."); ok && name != "" {
			cliCtx.SetExtra(name, value)
			return nil
		}
		return fmt.Errorf("unknown key %q (run 'muse config set --help' for valid keys)", key)
	}
	return nil
}

func getContextKey(cliCtx *cli.Context, key string) (string, error) {
	switch key {
	case "data_dir":
		return cliCtx.DataDir, nil
	case "rules_file":
		return cliCtx.RulesFile, nil
	case "catalog_file":
		return cliCtx.CatalogFile, nil
	case "depth":
		return strconv.Itoa(cliCtx.Depth), nil
	case "no_critical_thinking":
		return strconv.FormatBool(cliCtx.NoCriticalThinking), nil
	case "output":
		return cliCtx.Output, nil
	case "render":
		return strconv.FormatBool(cliCtx.Render), nil
	case "export.dir":
		if cliCtx.Export == nil {
			return "", nil
		}
		return cliCtx.Export.Dir, nil
	case "export.bucket":
		if cliCtx.Export == nil {
			return "", nil
		}
		return cliCtx.Export.Bucket, nil
	case "export.prefix":
		if cliCtx.Export == nil {
			return "", nil
		}
		return cliCtx.Export.Prefix, nil
	case "export.region":
		if cliCtx.Export == nil {
			return "", nil
		}
		return cliCtx.Export.Region, nil
	default:
		if name, ok := strings.CutPrefix(key, "extra."); ok && name != "" {
			return cliCtx.GetExtra(name), nil
		}
		return "", fmt.Errorf("unknown key %q", key)
	}
}
