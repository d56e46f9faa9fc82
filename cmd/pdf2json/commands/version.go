package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Shimizu-Technology/pdf2json/internal/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "pdf2json %s\n", version.Version)
		},
	}
}
