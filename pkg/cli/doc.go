// Package cli carries the terminal-facing plumbing shared by muse
// commands: named configuration contexts, structured output, request
// file loading, and lipgloss-based report styling.
//
// Contexts work like kubectl's. A single config.yaml under
// os.UserConfigDir()/muse/ (or MUSE_CONFIG_DIR) holds every context,
// and each context bundles the knobs one setup needs: data directory,
// custom rule and catalog files, reasoning depth, output format, and
// an export target. Commands resolve the active context once and read
// everything from it.
//
// Structured results render through OutputFormat:
//
//	format := cli.OutputFormat("json")
//	if err := format.Print(steps); err != nil { ... }
//
// Listings that default to a table build a cli.Table and call its
// Print method directly.
package cli
