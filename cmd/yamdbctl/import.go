package main

import (
	"errors"
	"fmt"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/yamdb/yamdb-server/internal/importer"
	"github.com/yamdb/yamdb-server/internal/service"
)

var (
	importDir     string
	importReindex bool
)

var importCmd = &cobra.Command{
	Use:   "import [file.csv...]",
	Short: "Import CSV files into the database",
	Long: `Import CSV exports into the database. Files are recognised by name:

  users.csv, category.csv, genre.csv, titles.csv,
  genre_title.csv, review.csv, comments.csv

Files are imported in that order regardless of the order given. The first
row of each file names the columns. Explicit ids are kept. The first row
that fails validation or a store constraint stops the import; rows already
written stay.

Examples:
  yamdbctl import --dir static/data
  yamdbctl import category.csv genre.csv`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if importDir == "" && len(args) == 0 {
			return errors.New("pass CSV files or --dir")
		}
		if importDir != "" && len(args) > 0 {
			return errors.New("pass either CSV files or --dir, not both")
		}
		return withContainer(func(injector do.Injector) error {
			return runImport(cmd, injector, args)
		})
	},
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringVarP(&importDir, "dir", "d", "", "Directory containing the CSV files")
	importCmd.Flags().BoolVar(&importReindex, "reindex", true, "Rebuild the search index after importing")
}

func runImport(cmd *cobra.Command, injector do.Injector, files []string) error {
	im, err := do.Invoke[*importer.Importer](injector)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	var results []importer.Result
	if importDir != "" {
		results, err = im.ImportDir(ctx, importDir)
	} else {
		results, err = im.ImportFiles(ctx, files)
	}

	out := cmd.OutOrStdout()
	for _, r := range results {
		fmt.Fprintf(out, "%-16s %d rows\n", r.File, r.Rows)
	}
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	if !importReindex {
		return nil
	}
	titles, err := do.Invoke[*service.TitleService](injector)
	if err != nil {
		return err
	}
	n, err := titles.Reindex(ctx)
	if err != nil {
		return fmt.Errorf("reindex: %w", err)
	}
	fmt.Fprintf(out, "indexed %d titles\n", n)
	return nil
}
