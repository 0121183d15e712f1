// Command streamjsonctl is a thin CLI wrapper around the streamjson
// library: parse a document and re-render it (compact, indented, or as
// a YAML debug dump), or push it through the rendezvous transport to
// exercise the producer/consumer split end to end.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:           "streamjsonctl",
		Short:         "Parse and render JSON through the streamjson codec",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newParseCmd())
	root.AddCommand(newStreamCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
