package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/haivivi/muse/pkg/cli"
	"github.com/haivivi/muse/pkg/storage"
)

// addSaveFlag registers the --save flag shared by every report command.
func addSaveFlag(cmd *cobra.Command) {
	cmd.Flags().String("save", "", "also write the report to this path in the export target")
}

// emitReport prints a markdown report, styled when rendering is on, and
// writes a copy through the export store when --save names a path. The
// saved copy is always the unstyled markdown.
func emitReport(cmd *cobra.Command, cliCtx *cli.Context, report string) error {
	if shouldRender(cliCtx) {
		fmt.Println(cli.Highlight(report, cli.NewStyles(cli.DefaultTheme)))
	} else {
		fmt.Println(report)
	}

	savePath, _ := cmd.Flags().GetString("save")
	if savePath == "" {
		return nil
	}

	var target *cli.ExportTarget
	if cliCtx != nil {
		target = cliCtx.Export
	}
	st, desc, err := exportStore(target)
	if err != nil {
		return err
	}
	if err := storage.WriteFile(cmd.Context(), st, savePath, []byte(report)); err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	cli.PrintSuccess("Saved %s to %s", savePath, desc)
	return nil
}
