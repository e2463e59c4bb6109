package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func newAskCmd() *cobra.Command {
	var cfgPath string
	var showSQL bool

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a single question and print the result",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cfgPath)
			if err != nil {
				return err
			}

			app, err := newApp(cfg)
			if err != nil {
				return err
			}
			defer app.Close()

			question := strings.Join(args, " ")

			spinner, _ := pterm.DefaultSpinner.Start("Thinking...")
			res, askErr := app.engine.Ask(context.Background(), question)
			spinner.Stop()

			if askErr != nil {
				pterm.Warning.Printfln("degraded: %v", askErr)
			}
			if showSQL && res.Query != "" {
				pterm.FgGray.Println(res.Query)
			}
			if res.Response.Cached {
				pterm.Info.Println("served from semantic cache")
			}

			if len(res.Response.Rows) == 0 {
				pterm.Println("no results")
				return nil
			}

			data := pterm.TableData{res.Response.Columns}
			for _, row := range res.Response.Rows {
				line := make([]string, len(res.Response.Columns))
				for i, col := range res.Response.Columns {
					line[i] = fmt.Sprintf("%v", row[col])
				}
				data = append(data, line)
			}
			if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
				return err
			}
			pterm.Printfln("%d row(s)", len(res.Response.Rows))
			return nil
		},
	}

	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "path to config file")
	cmd.Flags().BoolVar(&showSQL, "sql", false, "print the generated SQL")
	return cmd
}
