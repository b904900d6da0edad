// Package job provides JSON job-file handling: a saved description of one
// compositing run that the command line can replay or override.
package job

import (
	"encoding/json"
	"fmt"
	"os"

	"coverage-compositor/internal/composite"
)

// Merge mode names accepted in job files and on the command line.
const (
	ModeBestSignal = "best"
	ModeBestServer = "server"
	ModeOverlap    = "overlap"
)

// Job describes one compositing run.
type Job struct {
	Version int `json:"version"`

	// InputDir is scanned for *.kml descriptor/raster pairs.
	InputDir string `json:"input_dir"`

	// ScalePath is the loss color file shared by all layers.
	ScalePath string `json:"scale_path"`

	Mode           string  `json:"mode"`
	ValidThreshold float64 `json:"valid_threshold_db,omitempty"`
	MinOverlap     int     `json:"min_overlap,omitempty"`

	// OutputName is the base name for the composite image, legend and
	// KML descriptor. It also excludes matching descriptors from input
	// discovery so earlier outputs are not merged back in.
	OutputName string `json:"output_name"`
}

// New creates a job with default settings.
func New() *Job {
	return &Job{
		Version:        1,
		InputDir:       ".",
		ScalePath:      "color_scale.lcf",
		Mode:           ModeBestSignal,
		ValidThreshold: composite.DefaultValidThreshold,
		MinOverlap:     composite.DefaultMinOverlap,
		OutputName:     "composite_coverage",
	}
}

// Load reads a job from a JSON file.
func Load(path string) (*Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read job file: %w", err)
	}

	j := New()
	if err := json.Unmarshal(data, j); err != nil {
		return nil, fmt.Errorf("failed to parse job file %s: %w", path, err)
	}
	return j, nil
}

// Save writes the job to a JSON file.
func (j *Job) Save(path string) error {
	data, err := json.MarshalIndent(j, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the job for values the compositor cannot run with.
func (j *Job) Validate() error {
	switch j.Mode {
	case ModeBestSignal, ModeBestServer, ModeOverlap:
	default:
		return fmt.Errorf("unknown mode %q (want %s, %s or %s)",
			j.Mode, ModeBestSignal, ModeBestServer, ModeOverlap)
	}
	if j.InputDir == "" {
		return fmt.Errorf("input_dir must not be empty")
	}
	if j.ScalePath == "" {
		return fmt.Errorf("scale_path must not be empty")
	}
	if j.OutputName == "" {
		return fmt.Errorf("output_name must not be empty")
	}
	if j.ValidThreshold <= 0 {
		return fmt.Errorf("valid_threshold_db must be positive, got %g", j.ValidThreshold)
	}
	if j.MinOverlap < 1 {
		return fmt.Errorf("min_overlap must be at least 1, got %d", j.MinOverlap)
	}
	return nil
}

// Policy builds the merge policy the job selects. Validate must have
// passed.
func (j *Job) Policy() composite.Policy {
	switch j.Mode {
	case ModeBestServer:
		return composite.NewBestServer(j.ValidThreshold)
	case ModeOverlap:
		return composite.NewOverlapConsensus(j.ValidThreshold, j.MinOverlap)
	default:
		return composite.NewBestSignal()
	}
}
