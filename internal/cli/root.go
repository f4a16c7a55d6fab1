package cli

import (
	"fmt"
	"io"
	"os"

	"adaptive-truth/internal/logger"

	"github.com/spf13/cobra"
)

var version = "v0.1.0"

// NewRootCommand builds the claimcheck command tree writing to out and errOut
func NewRootCommand(out, errOut io.Writer) *cobra.Command {
	var logLevel string

	rootCmd := &cobra.Command{
		Use:   "claimcheck",
		Short: "Adaptive Truth - verify a factual claim from the terminal",
		Long: `claimcheck submits a claim to the Adaptive Truth verification service
and prints the verdict, the reasoning and the evidence behind it.

The service location and defaults come from the same environment
variables and .env file as the web client.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// stdout is reserved for the verdict
			logger.SetOutput(errOut)
			logger.SetLevel(logLevel)
		},
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "WARN", "log level (DEBUG, INFO, WARN, ERROR)")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "claimcheck %s\n", version)
		},
	})
	rootCmd.AddCommand(newVerifyCommand())

	return rootCmd
}

// Execute runs claimcheck against the process's stdio
func Execute() error {
	return NewRootCommand(os.Stdout, os.Stderr).Execute()
}
