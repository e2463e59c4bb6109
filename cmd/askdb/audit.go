package main

import (
	"context"
	"fmt"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/askdb-ai/askdb/pkg/audit"
	"github.com/askdb-ai/askdb/pkg/models"
)

func newAuditCmd() *cobra.Command {
	var cfgPath string

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Search and summarize the ask log",
	}
	cmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file")

	var status string
	var since string
	var limit int

	search := &cobra.Command{
		Use:   "search",
		Short: "List recorded questions, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := openAudit(cfgPath)
			if err != nil {
				return err
			}
			defer logger.Close()

			opts := models.AuditQueryOpts{CacheStatus: status, Limit: limit}
			if since != "" {
				t, err := time.Parse("2006-01-02", since)
				if err != nil {
					return fmt.Errorf("parse --since: %w", err)
				}
				opts.Since = t
			}

			recs, err := logger.Query(context.Background(), opts)
			if err != nil {
				return err
			}
			if len(recs) == 0 {
				pterm.Println("no records")
				return nil
			}

			data := pterm.TableData{{"Time", "Cache", "Rows", "ms", "Question"}}
			for _, r := range recs {
				data = append(data, []string{
					r.CreatedAt.Format("2006-01-02 15:04"),
					r.CacheStatus,
					fmt.Sprintf("%d", r.RowCount),
					fmt.Sprintf("%d", r.LatencyMs),
					r.Question,
				})
			}
			return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
		},
	}
	search.Flags().StringVar(&status, "status", "", "filter by cache status (hit, miss, error)")
	search.Flags().StringVar(&since, "since", "", "only records after this date (YYYY-MM-DD)")
	search.Flags().IntVar(&limit, "limit", 50, "maximum records to list")

	stats := &cobra.Command{
		Use:   "stats",
		Short: "Show per-day question counts and cache hits",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := openAudit(cfgPath)
			if err != nil {
				return err
			}
			defer logger.Close()

			rows, err := logger.Stats(context.Background())
			if err != nil {
				return err
			}
			if len(rows) == 0 {
				pterm.Println("no records")
				return nil
			}

			data := pterm.TableData{{"Day", "Questions", "Cache hits"}}
			for _, s := range rows {
				data = append(data, []string{s.Day, fmt.Sprintf("%d", s.Count), fmt.Sprintf("%d", s.Hits)})
			}
			return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
		},
	}

	cmd.AddCommand(search, stats)
	return cmd
}

func openAudit(cfgPath string) (*audit.Logger, error) {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return nil, err
	}
	if !cfg.Audit.Enabled {
		return nil, fmt.Errorf("audit is disabled in config")
	}
	return audit.New(cfg.Audit)
}
