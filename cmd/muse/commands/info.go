package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/haivivi/muse/pkg/kv"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the agent capability and status report",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openAgent(cmd.Context())
		if err != nil {
			return err
		}
		defer env.close()

		if err := emitReport(cmd, env.cliCtx, env.agent.Info()); err != nil {
			return err
		}
		if IsVerbose() {
			fmt.Printf("  data: %s\n", env.dataDir)
			fmt.Printf("  key:  %s\n", env.key)
			if profiles := storedProfiles(cmd, env); len(profiles) > 0 {
				fmt.Printf("  profiles: %s\n", strings.Join(profiles, ", "))
			}
		}
		return nil
	},
}

// storedProfiles scans the data directory for agents with saved state.
func storedProfiles(cmd *cobra.Command, env *museEnv) []string {
	var names []string
	for entry, err := range env.store.List(cmd.Context(), kv.Key{"agent"}) {
		if err != nil {
			return nil
		}
		if len(entry.Key) == 3 && entry.Key[2] == "state" {
			names = append(names, entry.Key[1])
		}
	}
	return names
}

func init() {
	addSaveFlag(infoCmd)
	rootCmd.AddCommand(infoCmd)
}
