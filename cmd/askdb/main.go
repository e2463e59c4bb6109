package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	root := &cobra.Command{
		Use:     "askdb",
		Short:   "Ask a relational dataset questions in plain language",
		Version: version,
	}

	root.AddCommand(
		newServeCmd(),
		newAskCmd(),
		newIngestCmd(),
		newSchemaCmd(),
		newCacheCmd(),
		newAuditCmd(),
		newMCPCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
