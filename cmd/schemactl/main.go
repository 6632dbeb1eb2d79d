// Command schemactl compiles and validates document templates locally and
// keeps a template file in sync with a running docschema server.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/docschema/docschema/pkg/logger"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:   "schemactl",
		Short: "Work with docschema templates from the command line",
		Long: `schemactl compiles template files (YAML or JSON) into their JSON Schema,
validates document payloads against them and pushes template edits to a server.

Examples:
  schemactl compile invoice.yaml
  schemactl validate invoice.yaml inv-001.json --strict
  schemactl sync invoice.yaml --server http://localhost:5001 --customer acme --watch
`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.SetOutput(cmd.ErrOrStderr())
			logger.SetService("schemactl")
			logger.Init(logLevel)
		},
	}
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	cmd.AddCommand(compileCmd(), validateCmd(), syncCmd())
	return cmd
}
