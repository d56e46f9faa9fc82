// Command pdf2json converts a PDF's text layer to converted.json.
package main

import (
	"fmt"
	"os"

	"github.com/Shimizu-Technology/pdf2json/cmd/pdf2json/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
