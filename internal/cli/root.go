package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose   bool
	Format    string // "json" | "text"
	DBPath    string
	SchemaDir string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the liveset CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	// Config supplies flag defaults; flags and LIVESET_* env vars override.
	cfg, _ := LoadConfig()

	cmd := &cobra.Command{
		Use:   "liveset",
		Short: "liveset - live, ordered views over an embedded database",
		Long:  "Inspect, query, seed, and watch live result sets over a SQLite-backed schema.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Validate format flag
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", cfg.Output.Format, "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", cfg.Database.Path, "database file path")
	cmd.PersistentFlags().StringVar(&opts.SchemaDir, "schema", cfg.Schema.Dir, "schema directory")

	// Add subcommands
	cmd.AddCommand(NewSchemaCommand(opts))
	cmd.AddCommand(NewQueryCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewWatchCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
