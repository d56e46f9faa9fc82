// Package commands holds the pdf2json CLI commands.
package commands

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// rootOptions are the flags shared by every command.
type rootOptions struct {
	verbose bool
	noColor bool
}

// NewRootCmd builds the command tree. Each call returns a fresh tree, so
// tests can run commands without sharing flag state.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "pdf2json",
		Short: "Convert the text of a PDF into converted.json",
		Long: `pdf2json reads a PDF from a file, stdin, a URL or a {"url": ...} object,
joins the text of every page in order, and saves it as converted.json.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.noColor {
				color.NoColor = true
			}
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
	cmd.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "disable colored output")

	cmd.AddCommand(newConvertCmd(opts))
	cmd.AddCommand(newTokenCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
