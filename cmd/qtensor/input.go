package main

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Input is the document accepted by apply --input. JSON is valid YAML, so
// either format works.
type Input struct {
	Operator [][]float64 `yaml:"operator"`
	State    []float64   `yaml:"state"`
}

func readInput(path string) (*Input, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading input %s", path)
	}

	in := &Input{}
	if err := yaml.Unmarshal(raw, in); err != nil {
		return nil, errors.Wrapf(err, "decoding input %s", path)
	}

	return in, nil
}

func parseMatrix(text string) ([][]float64, error) {
	var rows [][]float64
	if err := yaml.Unmarshal([]byte(text), &rows); err != nil {
		return nil, errors.Wrapf(err, "decoding operator %q", text)
	}
	return rows, nil
}

func parseVector(text string) ([]float64, error) {
	var values []float64
	if err := yaml.Unmarshal([]byte(text), &values); err != nil {
		return nil, errors.Wrapf(err, "decoding state %q", text)
	}
	return values, nil
}
