package main

import (
	"context"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/askdb-ai/askdb/pkg/schema"
)

func newSchemaCmd() *cobra.Command {
	var cfgPath string

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the schema of the configured table",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cfgPath)
			if err != nil {
				return err
			}

			db, err := openDataDB(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			ts, err := schema.New(db, cfg.Data.Driver).Describe(context.Background(), cfg.Data.Table)
			if err != nil {
				return err
			}
			if ts.Empty() {
				return fmt.Errorf("table %q not found", cfg.Data.Table)
			}

			data := pterm.TableData{{"Column", "Type"}}
			for _, c := range ts.Columns {
				data = append(data, []string{c.Name, string(c.Type)})
			}
			pterm.DefaultSection.Println(ts.Table)
			return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
		},
	}

	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "path to config file")
	return cmd
}
