package main

import (
	"fmt"

	insights "github.com/aouyang1/go-forecast-insights"
	"github.com/aouyang1/go-forecast-insights/models"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

type summary struct {
	insights.Snapshot
	TimeSeries   []string `json:"time_series"`
	HasModel     bool     `json:"has_model"`
	TestRows     int      `json:"test_rows"`
	HasQuantiles bool     `json:"has_quantiles"`
	TrueYPresent bool     `json:"is_true_y_present"`
}

func newInspectCmd(ro *rootOptions) *cobra.Command {
	var dashboard bool

	cmd := &cobra.Command{
		Use:   "inspect <dir>",
		Short: "Print a summary of saved insights",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := insights.Load(args[0], models.NewJSONSerializer(), &insights.Options{Logger: ro.logger})
			if err != nil {
				return err
			}

			var out any
			if dashboard {
				out, err = in.GetDataFrom(insights.PredictionSourceCache)
				if err != nil {
					return err
				}
			} else {
				out = newSummary(in)
			}

			bytes, err := json.MarshalIndent(out, "", "  ")
			if err != nil {
				return fmt.Errorf("unable to marshal output, %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(bytes))
			return nil
		},
	}
	cmd.Flags().BoolVar(&dashboard, "dashboard", false, "print the dashboard payload from the cached predictions")
	return cmd
}

func newSummary(in *insights.Insights) summary {
	s := summary{
		Snapshot:     in.Snapshot(),
		TimeSeries:   []string{},
		HasModel:     in.Model() != nil,
		TestRows:     in.Test().Nrow(),
		HasQuantiles: in.QuantilePredictOutput() != nil,
		TrueYPresent: in.IsTrueYPresent(),
	}
	for _, c := range in.TimeSeries() {
		s.TimeSeries = append(s.TimeSeries, c.Name)
	}
	return s
}
