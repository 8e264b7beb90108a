package main

import (
	"fmt"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/yamdb/yamdb-server/internal/service"
)

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuild the title search index",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(func(injector do.Injector) error {
			titles, err := do.Invoke[*service.TitleService](injector)
			if err != nil {
				return err
			}

			n, err := titles.Reindex(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "indexed %d titles\n", n)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(reindexCmd)
}
