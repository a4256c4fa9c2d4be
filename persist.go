package insights

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/aouyang1/go-forecast-insights/dataset"
	"github.com/aouyang1/go-forecast-insights/metadata"
	"github.com/aouyang1/go-forecast-insights/models"
	"github.com/goccy/go-json"
)

// Layout of a saved insights directory.
const (
	SnapshotVersion = 1

	fileMeta         = "meta.json"
	dirPredictions   = "predictions"
	filePredict      = "predict.json"
	filePredictProba = "predict_proba.json"
	dirData          = "data"
	fileTrain        = "train.json"
	fileTest         = "test.json"
	dirModel         = "model"
	fileSerializer   = "serializer.json"
)

// Snapshot is the persisted metadata of an Insights. A zero Version is read as the first version.
type Snapshot struct {
	TargetColumn    string                    `json:"target_column"`
	TaskType        string                    `json:"task_type"`
	Classes         []string                  `json:"classes"`
	FeatureColumns  []string                  `json:"feature_columns"`
	FeatureRanges   []FeatureRange            `json:"feature_ranges"`
	FeatureMetadata *metadata.FeatureMetadata `json:"feature_metadata"`
	Version         int                       `json:"version"`
}

// Snapshot returns the metadata record written by Save.
func (in *Insights) Snapshot() Snapshot {
	if in == nil {
		return Snapshot{}
	}
	return Snapshot{
		TargetColumn:    in.targetColumn,
		TaskType:        in.taskType,
		Classes:         in.Classes(),
		FeatureColumns:  in.FeatureColumns(),
		FeatureRanges:   in.FeatureRanges(),
		FeatureMetadata: in.FeatureMetadata(),
		Version:         SnapshotVersion,
	}
}

func writeJSON(path string, v any) error {
	bytes, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("unable to marshal %s, %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, bytes, 0o644); err != nil {
		return fmt.Errorf("unable to write %s, %w", filepath.Base(path), err)
	}
	return nil
}

func readJSON(path string, v any) error {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("unable to read %s, %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(bytes, v); err != nil {
		return fmt.Errorf("unable to unmarshal %s, %w", filepath.Base(path), err)
	}
	return nil
}

// Save writes the insights into dir. The model is saved only when both a model and a serializer
// are present.
func (in *Insights) Save(dir string) error {
	if in == nil {
		return ErrUninitializedInsights
	}

	for _, d := range []string{dir, filepath.Join(dir, dirPredictions), filepath.Join(dir, dirData)} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return fmt.Errorf("unable to create directory %s, %w", d, err)
		}
	}

	if err := writeJSON(filepath.Join(dir, fileMeta), in.Snapshot()); err != nil {
		return err
	}

	if in.model != nil {
		pred := in.predictions.Predict
		if pred == nil {
			pred = []float64{}
		}
		if err := writeJSON(filepath.Join(dir, dirPredictions, filePredict), pred); err != nil {
			return err
		}
		if in.predictions.Quantiles != nil {
			if err := writeJSON(filepath.Join(dir, dirPredictions, filePredictProba), in.predictions.Quantiles); err != nil {
				return err
			}
		}
	}

	if err := dataset.WriteJSON(filepath.Join(dir, dirData, fileTrain), in.train); err != nil {
		return fmt.Errorf("unable to save train data, %w", err)
	}
	if err := dataset.WriteJSON(filepath.Join(dir, dirData, fileTest), in.test); err != nil {
		return fmt.Errorf("unable to save test data, %w", err)
	}

	if in.model != nil && in.serializer != nil {
		if err := in.serializer.Save(in.model, filepath.Join(dir, dirModel)); err != nil {
			return fmt.Errorf("unable to save model, %w", err)
		}
		if err := writeJSON(filepath.Join(dir, fileSerializer), in.serializer); err != nil {
			return err
		}
	}

	in.logger.Info("saved insights", "dir", dir, "model_saved", in.model != nil && in.serializer != nil)
	return nil
}

// Load reads insights saved in dir. When the directory holds a model and serializer is not nil,
// serializer is restored from its saved state and loads the model. Without a model both
// predictions are nil.
func Load(dir string, serializer models.Serializer, opt *Options) (*Insights, error) {
	var snap Snapshot
	if err := readJSON(filepath.Join(dir, fileMeta), &snap); err != nil {
		return nil, err
	}

	train, err := dataset.ReadJSON(filepath.Join(dir, dirData, fileTrain))
	if err != nil {
		return nil, fmt.Errorf("unable to load train data, %w", err)
	}
	test, err := dataset.ReadJSON(filepath.Join(dir, dirData, fileTest))
	if err != nil {
		return nil, fmt.Errorf("unable to load test data, %w", err)
	}

	var model models.Forecaster
	if serializer != nil && exists(filepath.Join(dir, fileSerializer)) {
		if err := readJSON(filepath.Join(dir, fileSerializer), serializer); err != nil {
			return nil, err
		}
		model, err = serializer.Load(filepath.Join(dir, dirModel))
		if err != nil {
			return nil, fmt.Errorf("unable to load model, %w", err)
		}
	}

	var pred Predictions
	if model != nil {
		if err := readJSON(filepath.Join(dir, dirPredictions, filePredict), &pred.Predict); err != nil {
			return nil, err
		}
		probaPath := filepath.Join(dir, dirPredictions, filePredictProba)
		if exists(probaPath) {
			if err := readJSON(probaPath, &pred.Quantiles); err != nil {
				return nil, err
			}
		}
	}

	var o Options
	if opt != nil {
		o = *opt
	}
	if model != nil {
		o.Serializer = serializer
	}
	return Restore(snap, train, test, model, pred, &o)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, fs.ErrNotExist)
}

// Restore rebuilds insights from a snapshot without validating the inputs or invoking the model.
// Categorical encodings and time series cohorts are derived again from the test dataset.
func Restore(snap Snapshot, train, test *dataset.Frame, model models.Forecaster, pred Predictions, opt *Options) (*Insights, error) {
	if snap.Version < 0 || snap.Version > SnapshotVersion {
		return nil, fmt.Errorf("got version %d, %w", snap.Version, ErrUnsupportedVersion)
	}
	if test == nil {
		return nil, fmt.Errorf("no test data to restore, %w", ErrUninitializedInsights)
	}
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}

	fm := snap.FeatureMetadata.Copy()
	if fm == nil {
		fm = &metadata.FeatureMetadata{}
	}
	if model == nil {
		pred = Predictions{}
	}

	in := &Insights{
		opt:             opt,
		logger:          opt.Logger,
		model:           model,
		serializer:      opt.Serializer,
		train:           train,
		test:            test,
		targetColumn:    snap.TargetColumn,
		taskType:        snap.TaskType,
		classes:         snap.Classes,
		isTrueYPresent:  test.Has(snap.TargetColumn),
		featureColumns:  snap.FeatureColumns,
		featureMetadata: fm,
		featureRanges:   snap.FeatureRanges,
		predictions:     pred,
	}

	in.testWithoutTrueY = test
	if in.isTrueYPresent {
		if in.testWithoutTrueY, err = test.Drop(snap.TargetColumn); err != nil {
			return nil, fmt.Errorf("unable to drop target column from test data, %w", err)
		}
	}
	if in.featureColumns == nil {
		in.featureColumns = in.testWithoutTrueY.Names()
	}
	if err := in.processCategoricals(); err != nil {
		return nil, err
	}
	in.timeSeries, err = GenerateTimeSeriesCohorts(test, fm.TimeSeriesIDColumnNames)
	if err != nil {
		return nil, err
	}
	return in, nil
}
