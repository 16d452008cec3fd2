// Package commands implements the tally CLI.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tally-dev/tally/internal/buildinfo"
	"github.com/tally-dev/tally/internal/logging"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	var dir string
	var verbose bool

	rootCmd := &cobra.Command{
		Use:     "tally",
		Short:   "Plain-file personal finance tracking",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&dir, "dir", "C", ".", "project directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")

	// Each command wires its own env so init can run without one.
	env := func() (*env, error) {
		return newEnv(dir, logging.New(verbose))
	}

	rootCmd.AddCommand(newInitCommand(&dir))
	rootCmd.AddCommand(newImportCommand(env))
	rootCmd.AddCommand(newRulesCommand(env))
	rootCmd.AddCommand(newSuggestCommand(env))
	rootCmd.AddCommand(newCategorizeCommand(env))
	rootCmd.AddCommand(newIgnoreCommand(env))
	rootCmd.AddCommand(newUnignoreCommand(env))
	rootCmd.AddCommand(newConfirmCommand(env))
	rootCmd.AddCommand(newListCommand(env))
	rootCmd.AddCommand(newDeleteCommand(env))

	return rootCmd
}
