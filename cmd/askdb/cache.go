package main

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/askdb-ai/askdb/pkg/cache/vector"
)

func newCacheCmd() *cobra.Command {
	var cfgPath string

	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the semantic cache",
	}
	cmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "stats",
			Short: "Show cache entry count and hit/miss counters",
			RunE: func(cmd *cobra.Command, args []string) error {
				store, err := openCache(cfgPath)
				if err != nil {
					return err
				}
				defer store.Close()

				stats, err := store.Stats()
				if err != nil {
					return err
				}

				data := pterm.TableData{
					{"Entries", fmt.Sprintf("%d", stats.Entries)},
					{"Hits", fmt.Sprintf("%d", stats.Hits)},
					{"Misses", fmt.Sprintf("%d", stats.Misses)},
				}
				if total := stats.Hits + stats.Misses; total > 0 {
					rate := float64(stats.Hits) / float64(total) * 100
					data = append(data, []string{"Hit rate", fmt.Sprintf("%.1f%%", rate)})
				}
				return pterm.DefaultTable.WithData(data).Render()
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Delete all cached entries",
			RunE: func(cmd *cobra.Command, args []string) error {
				store, err := openCache(cfgPath)
				if err != nil {
					return err
				}
				defer store.Close()

				if err := store.Clear(); err != nil {
					return err
				}
				pterm.Success.Println("cache cleared")
				return nil
			},
		},
	)

	return cmd
}

func openCache(cfgPath string) (*vector.Store, error) {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return nil, err
	}
	if !cfg.Cache.Enabled {
		return nil, fmt.Errorf("cache is disabled in config")
	}
	return vector.New(cfg.Cache.DBPath, cfg.Cache.Dimension)
}
