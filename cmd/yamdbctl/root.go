package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/yamdb/yamdb-server/internal/config"
	"github.com/yamdb/yamdb-server/internal/di"
)

var (
	// Global flags, forwarded to the configuration loader.
	envFile     string
	dataPath    string
	dbDriver    string
	databaseURL string
	logLevel    string
)

var rootCmd = &cobra.Command{
	Use:   "yamdbctl",
	Short: "YaMDb administration tool",
	Long: `yamdbctl manages a YaMDb installation: bulk CSV import, superuser
creation and search index maintenance.

Configuration is read the same way as the server: flags, then environment
variables, then the .env file. Stop the server before running commands that
touch the search index.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Path to .env file")
	rootCmd.PersistentFlags().StringVar(&dataPath, "data-path", "", "Base path for database, keys and search index")
	rootCmd.PersistentFlags().StringVar(&dbDriver, "db-driver", "", "Database driver (sqlite, postgres)")
	rootCmd.PersistentFlags().StringVar(&databaseURL, "database-url", "", "SQLite file path or Postgres DSN")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
}

// configArgs renders the global flags as configuration loader arguments.
func configArgs() []string {
	args := []string{"-env-file=" + envFile}
	for name, value := range map[string]string{
		"data-path":    dataPath,
		"db-driver":    dbDriver,
		"database-url": databaseURL,
		"log-level":    logLevel,
	} {
		if value != "" {
			args = append(args, "-"+name+"="+value)
		}
	}
	return args
}

// newContainer loads configuration and builds the DI container. The caller
// must shut the container down.
func newContainer() (*do.RootScope, error) {
	cfg, err := config.LoadConfig(configArgs())
	if err != nil {
		return nil, err
	}
	return di.NewContainerWithConfig(cfg), nil
}

// withContainer runs fn against a fresh container and shuts it down afterwards.
func withContainer(fn func(injector do.Injector) error) error {
	injector, err := newContainer()
	if err != nil {
		return err
	}
	defer func() {
		if err := injector.Shutdown(); err != nil {
			fmt.Fprintln(os.Stderr, "shutdown:", err)
		}
	}()
	return fn(injector)
}
