// Package main provides bookctl, the BookCourier admin CLI.
//
// Usage:
//
//	bookctl token issue --email reader@example.com
//	bookctl user set-role --email seller@example.com --role librarian
//	bookctl seed
//	bookctl reindex
package main

import (
	"fmt"
	"os"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/bookcourier/bookcourier-server/internal/config"
	"github.com/bookcourier/bookcourier-server/internal/di"
)

// Version is set at build time.
var Version = "dev"

// globalFlags are forwarded to config.Load.
type globalFlags struct {
	envFile     string
	dataPath    string
	databaseURL string
}

func main() {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:           "bookctl",
		Short:         "BookCourier administration",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&flags.envFile, "env-file", ".env", "Path to .env file")
	rootCmd.PersistentFlags().StringVar(&flags.dataPath, "data-path", "", "Data directory (overrides DATA_PATH)")
	rootCmd.PersistentFlags().StringVar(&flags.databaseURL, "database-url", "", "SQLite path (overrides DATABASE_URL)")

	rootCmd.AddCommand(tokenCmd(flags))
	rootCmd.AddCommand(userCmd(flags))
	rootCmd.AddCommand(seedCmd(flags))
	rootCmd.AddCommand(reindexCmd(flags))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openContainer loads config and builds the CLI container. Callers must
// shut it down.
func openContainer(flags *globalFlags) (*do.RootScope, error) {
	args := []string{"--env-file", flags.envFile}
	if flags.dataPath != "" {
		args = append(args, "--data-path", flags.dataPath)
	}
	if flags.databaseURL != "" {
		args = append(args, "--database-url", flags.databaseURL)
	}

	cfg, err := config.Load(args)
	if err != nil {
		return nil, err
	}
	return di.NewCLIContainer(cfg), nil
}

// withContainer runs fn against a fresh container and always shuts it down.
func withContainer(flags *globalFlags, fn func(i do.Injector) error) error {
	injector, err := openContainer(flags)
	if err != nil {
		return err
	}
	defer injector.Shutdown() //nolint:errcheck // best effort on exit
	return fn(injector)
}
