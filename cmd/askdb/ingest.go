package main

import (
	"context"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/askdb-ai/askdb/pkg/ingest"
)

func newIngestCmd() *cobra.Command {
	var cfgPath string
	var table string

	cmd := &cobra.Command{
		Use:   "ingest <file.csv>",
		Short: "Load a CSV file into the data database",
		Long: `Load a CSV file into the data database, replacing the target table.
Column types are inferred from the values; the first row must be a header.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cfgPath)
			if err != nil {
				return err
			}
			if table == "" {
				table = cfg.Data.Table
			}

			db, err := openDataDB(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			cols, n, err := ingest.LoadCSV(context.Background(), db, table, args[0])
			if err != nil {
				return err
			}

			data := pterm.TableData{{"Column", "Type"}}
			for _, c := range cols {
				data = append(data, []string{c.Name, string(c.Type)})
			}
			if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
				return err
			}
			pterm.Success.Printfln("loaded %d row(s) into %q", n, table)
			return nil
		},
	}

	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "path to config file")
	cmd.Flags().StringVarP(&table, "table", "t", "", "target table (defaults to data.table)")
	return cmd
}
