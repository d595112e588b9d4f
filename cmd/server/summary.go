package main

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	"github.com/stih/tank-insights/internal/analytics"
	"github.com/stih/tank-insights/internal/store"
)

var summaryQuery = map[string]*string{
	"season":   new(string),
	"industry": new(string),
	"status":   new(string),
	"search":   new(string),
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print the analytics overview of the data directory as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		q := make(map[string]string, len(summaryQuery))
		for k, v := range summaryQuery {
			q[k] = *v
		}
		return writeSummary(cmd.OutOrStdout(), store.New(cfg.DataDir), q)
	},
}

func init() {
	for k, v := range summaryQuery {
		summaryCmd.Flags().StringVar(v, k, "", "filter by "+k)
	}
	rootCmd.AddCommand(summaryCmd)
}

func writeSummary(out io.Writer, st *store.Store, q map[string]string) error {
	crit, err := analytics.ParseCriteria(q)
	if err != nil {
		return err
	}
	pitches, err := st.Pitches()
	if err != nil {
		return err
	}
	seasons, err := st.Seasons()
	if err != nil {
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(analytics.BuildOverview(pitches, seasons, crit))
}
