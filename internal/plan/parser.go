// Package plan loads scenario sequences from YAML plan files.
package plan

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// ParseFile reads and parses a plan file from disk
func ParseFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open plan file: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

// Parse reads and parses a plan from an io.Reader
func Parse(r io.Reader) (*File, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan data: %w", err)
	}

	if len(data) == 0 {
		return nil, fmt.Errorf("empty plan data")
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse plan YAML: %w", err)
	}

	if len(file.Steps) == 0 {
		return nil, fmt.Errorf("invalid plan: no steps")
	}

	return &file, nil
}
