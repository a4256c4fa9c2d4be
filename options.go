package insights

import (
	"log/slog"

	"github.com/aouyang1/go-forecast-insights/categorical"
	"github.com/aouyang1/go-forecast-insights/cohort"
	"github.com/aouyang1/go-forecast-insights/metadata"
	"github.com/aouyang1/go-forecast-insights/models"
	"github.com/go-playground/validator/v10"
)

const (
	DefaultMaximumRowsForTest = 5000

	// QuantilePolicyIfSupported computes quantile forecasts only for quantile forecasters.
	QuantilePolicyIfSupported = "if_supported"

	// QuantilePolicyAlways requests quantile forecasts from every model and fails construction
	// when the model cannot produce them.
	QuantilePolicyAlways = "always"

	// PredictionSourceRecompute invokes the model again when building dashboard data.
	PredictionSourceRecompute = "recompute"

	// PredictionSourceCache builds dashboard data from the predictions cached at construction.
	PredictionSourceCache = "cache"
)

var validate = validator.New()

// Options configures the construction of Insights. A nil Options uses NewDefaultOptions.
type Options struct {
	// MaximumRowsForTest limits the size of the test dataset. Zero uses the default.
	MaximumRowsForTest int `validate:"gte=0"`

	// FeatureMetadata declares column roles. It is copied and never modified.
	FeatureMetadata *metadata.FeatureMetadata `validate:"-"`

	// Serializer persists the model on Save. It requires a model.
	Serializer models.Serializer `validate:"-"`

	QuantilePolicy   string `validate:"omitempty,oneof=if_supported always"`
	PredictionSource string `validate:"omitempty,oneof=recompute cache"`

	CategoricalProcessor categorical.Processor `validate:"-"`
	Filterer             cohort.Filterer       `validate:"-"`
	Logger               *slog.Logger          `validate:"-"`
}

func NewDefaultOptions() *Options {
	return &Options{
		MaximumRowsForTest:   DefaultMaximumRowsForTest,
		QuantilePolicy:       QuantilePolicyIfSupported,
		PredictionSource:     PredictionSourceRecompute,
		CategoricalProcessor: categorical.NewLabelEncoder(),
		Filterer:             cohort.NewExecutor(),
		Logger:               slog.Default(),
	}
}

// Validate checks the options and returns a copy with unset fields defaulted.
func (o *Options) Validate() (*Options, error) {
	if o == nil {
		return NewDefaultOptions(), nil
	}
	if err := validate.Struct(o); err != nil {
		return nil, newValidationError(err, "Invalid insights options")
	}

	opt := *o
	def := NewDefaultOptions()
	if opt.MaximumRowsForTest == 0 {
		opt.MaximumRowsForTest = def.MaximumRowsForTest
	}
	if opt.QuantilePolicy == "" {
		opt.QuantilePolicy = def.QuantilePolicy
	}
	if opt.PredictionSource == "" {
		opt.PredictionSource = def.PredictionSource
	}
	if opt.CategoricalProcessor == nil {
		opt.CategoricalProcessor = def.CategoricalProcessor
	}
	if opt.Filterer == nil {
		opt.Filterer = def.Filterer
	}
	if opt.Logger == nil {
		opt.Logger = def.Logger
	}
	opt.FeatureMetadata = o.FeatureMetadata.Copy()
	return &opt, nil
}
