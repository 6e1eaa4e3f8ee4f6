package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	version string
	commit  string
	date    string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "visitbook",
	Short: "Visitbook - field visit notes for real-estate agents",
	Long: `Visitbook keeps the notes a real-estate agent takes while walking
customers through properties: meetings, per-property visit checklists,
photos, and a shareable image report.

It serves a JSON API backed by Redis for meeting data and a local SQLite
reference database of buildings, bulk-imported from CSV exports.`,
	Version: version,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", v, c, d)
}
