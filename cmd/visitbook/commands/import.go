package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"visitbook/internal/bulkimport"
	"visitbook/internal/config"
	"visitbook/internal/refstore"
)

var importDBPath string

var importCmd = &cobra.Command{
	Use:   "import CSV_FILE",
	Short: "Replace the building reference data from a CSV export",
	Long: `Parse a CSV export of a building master list and replace the local
reference database with it. The import is all-or-nothing: on any failure
the previous data is kept.

The file needs a header row. "name"/"건물명" and "address"/"주소" columns
become the building name and address; every other column is kept as an
attribute.

Examples:
  # Import into the configured database (REF_DB_PATH)
  visitbook import buildings.csv

  # Import into an explicit database file
  visitbook import --db /var/lib/visitbook/ref.db buildings.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVar(&importDBPath, "db", "", "Reference database path (defaults to REF_DB_PATH)")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	dbPath := importDBPath
	if dbPath == "" {
		dbPath = config.Load().RefDBPath
	}

	file, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open import file: %w", err)
	}
	defer func() { _ = file.Close() }()

	ref, err := refstore.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open reference store: %w", err)
	}
	defer func() { _ = ref.Close() }()

	result, err := bulkimport.NewImporter(ref).Import(cmd.Context(), file)
	var parseErr *bulkimport.ParseError
	switch {
	case errors.Is(err, bulkimport.ErrEmptyDataset):
		color.Yellow("No data rows in %s, database left untouched", args[0])
		return nil
	case errors.As(err, &parseErr):
		return fmt.Errorf("%s: %w", args[0], parseErr)
	case err != nil:
		return err
	}

	color.Green("Imported %d buildings into %s", result.Count, dbPath)
	return nil
}
