package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	insights "github.com/aouyang1/go-forecast-insights"
	"github.com/aouyang1/go-forecast-insights/dataset"
	"github.com/aouyang1/go-forecast-insights/metadata"
	"github.com/aouyang1/go-forecast-insights/models"
	"github.com/go-gota/gota/series"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var errNoTimeColumn = errors.New("feature metadata has no time_column_name")

type buildOptions struct {
	train          string
	test           string
	target         string
	metadata       string
	out            string
	kinds          map[string]string
	maxRows        int
	quantilePolicy string
}

func newBuildCmd(ro *rootOptions) *cobra.Command {
	bo := &buildOptions{}

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Fit a seasonal forecaster and save insights for the test data",
		Example: `  forecast-insights build --train train.csv --test test.csv --target sales \
    --metadata metadata.yaml --out insights/`,
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := runBuild(bo, ro)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved insights for %d test rows and %d time series to %s\n",
				in.Test().Nrow(), len(in.TimeSeries()), bo.out)
			return nil
		},
	}
	cmd.Flags().StringVar(&bo.train, "train", "", "train data csv")
	cmd.Flags().StringVar(&bo.test, "test", "", "test data csv")
	cmd.Flags().StringVar(&bo.target, "target", "", "target column")
	cmd.Flags().StringVar(&bo.metadata, "metadata", "", "feature metadata as yaml or json")
	cmd.Flags().StringVar(&bo.out, "out", "", "directory to save the insights to")
	cmd.Flags().StringToStringVar(&bo.kinds, "kind", nil, "column types overriding detection, e.g. store_id=string")
	cmd.Flags().IntVar(&bo.maxRows, "max-rows", insights.DefaultMaximumRowsForTest, "maximum rows of the test data")
	cmd.Flags().StringVar(&bo.quantilePolicy, "quantile-policy", insights.QuantilePolicyIfSupported, "if_supported or always")
	for _, flag := range []string{"train", "test", "target", "metadata", "out"} {
		_ = cmd.MarkFlagRequired(flag)
	}
	return cmd
}

func runBuild(bo *buildOptions, ro *rootOptions) (*insights.Insights, error) {
	kinds := make(map[string]series.Type, len(bo.kinds))
	for col, kind := range bo.kinds {
		kinds[col] = series.Type(kind)
	}
	train, err := readCSV(bo.train, kinds)
	if err != nil {
		return nil, err
	}
	test, err := readCSV(bo.test, kinds)
	if err != nil {
		return nil, err
	}
	fm, err := readMetadata(bo.metadata)
	if err != nil {
		return nil, err
	}
	if fm.TimeColumnName == "" {
		return nil, errNoTimeColumn
	}

	x, err := train.Drop(bo.target)
	if err != nil {
		return nil, fmt.Errorf("unable to drop target from train data, %w", err)
	}
	y, err := train.Floats(bo.target)
	if err != nil {
		return nil, err
	}
	model, err := models.NewSeasonalForecaster(models.NewDefaultSeasonalOptions(fm.TimeColumnName, fm.TimeSeriesIDColumnNames...))
	if err != nil {
		return nil, err
	}
	if err := model.Fit(x, y); err != nil {
		return nil, fmt.Errorf("unable to fit seasonal forecaster, %w", err)
	}
	ro.logger.Info("fit seasonal forecaster", "train_rows", train.Nrow(), "time_column", fm.TimeColumnName)

	in, err := insights.New(model, train, test, bo.target, &insights.Options{
		MaximumRowsForTest: bo.maxRows,
		FeatureMetadata:    fm,
		Serializer:         models.NewJSONSerializer(),
		QuantilePolicy:     bo.quantilePolicy,
		Logger:             ro.logger,
	})
	if err != nil {
		return nil, err
	}
	if err := in.Save(bo.out); err != nil {
		return nil, err
	}
	return in, nil
}

func readCSV(path string, kinds map[string]series.Type) (*dataset.Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	frame, err := dataset.ReadCSV(f, kinds)
	if err != nil {
		return nil, fmt.Errorf("unable to read %s, %w", path, err)
	}
	return frame, nil
}

func readMetadata(path string) (*metadata.FeatureMetadata, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	fm := &metadata.FeatureMetadata{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(bytes, fm)
	default:
		err = yaml.Unmarshal(bytes, fm)
	}
	if err != nil {
		return nil, fmt.Errorf("unable to parse feature metadata %s, %w", path, err)
	}
	return fm, nil
}
