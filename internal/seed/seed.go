// Package seed provides the bootstrap dataset loaded when no snapshot exists.
package seed

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"kanbancore/pkg/domain"
)

//go:embed default.json
var defaultDataset []byte

// Default returns the embedded dataset.
func Default() (domain.Dataset, error) {
	return Parse(defaultDataset)
}

// Load reads the dataset at path, or the embedded default when path is empty.
func Load(path string) (domain.Dataset, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("read seed %s: %w", path, err)
	}
	ds, err := Parse(data)
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("seed %s: %w", path, err)
	}
	return ds, nil
}

// Parse decodes a dataset document. Unknown fields are rejected so typos in
// hand-written seeds surface early.
func Parse(data []byte) (domain.Dataset, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var ds domain.Dataset
	if err := dec.Decode(&ds); err != nil {
		return domain.Dataset{}, fmt.Errorf("decode seed: %w", err)
	}
	return ds, nil
}
