package models

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
)

const DefaultModelFileName = "seasonal_model.json"

// JSONSerializer saves a SeasonalForecaster as its JSON model. The serializer itself is JSON
// serializable so it can be restored next to the model it saved.
type JSONSerializer struct {
	FileName string `json:"file_name"`
}

func NewJSONSerializer() *JSONSerializer {
	return &JSONSerializer{FileName: DefaultModelFileName}
}

func (j *JSONSerializer) fileName() string {
	if j == nil || j.FileName == "" {
		return DefaultModelFileName
	}
	return j.FileName
}

func (j *JSONSerializer) Save(model Forecaster, dir string) error {
	sf, ok := model.(*SeasonalForecaster)
	if !ok {
		return fmt.Errorf("got %T, %w", model, ErrUnsupportedModel)
	}
	m, err := sf.Model()
	if err != nil {
		return fmt.Errorf("unable to get model, %w", err)
	}
	bytes, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("unable to marshal model, %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("unable to create model directory, %w", err)
	}
	return os.WriteFile(filepath.Join(dir, j.fileName()), bytes, 0o644)
}

func (j *JSONSerializer) Load(dir string) (Forecaster, error) {
	bytes, err := os.ReadFile(filepath.Join(dir, j.fileName()))
	if err != nil {
		return nil, fmt.Errorf("unable to read model, %w", err)
	}
	var m SeasonalModel
	if err := json.Unmarshal(bytes, &m); err != nil {
		return nil, fmt.Errorf("unable to unmarshal model, %w", err)
	}
	return NewFromModel(m)
}
