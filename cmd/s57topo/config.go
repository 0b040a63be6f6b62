package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/beetlebugorg/s57topo/pkg/s57"
)

// loadConfig reads load options from a YAML file on top of the defaults.
// Keys missing from the file keep their default value.
//
//	decode:
//	  spatial_index: true
//	  validate_coordinates: true
//	parallel: true
//	workers: 8
//	skip_errors: true
func loadConfig(path string) (s57.LoadOptions, error) {
	opts := s57.DefaultLoadOptions()
	if path == "" {
		return opts, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return opts, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return opts, fmt.Errorf("parse config %s: %w", path, err)
	}
	if opts.Workers < 0 {
		return opts, fmt.Errorf("parse config %s: workers must not be negative", path)
	}
	return opts, nil
}

// optionsFromFlags loads --config and applies the flags set on the command
// line over it.
func optionsFromFlags(cmd *cobra.Command) (s57.LoadOptions, error) {
	path, _ := cmd.Flags().GetString("config")
	opts, err := loadConfig(path)
	if err != nil {
		return opts, err
	}

	flags := cmd.Flags()
	if flags.Changed("no-index") {
		noIndex, _ := flags.GetBool("no-index")
		opts.Decode.SpatialIndex = !noIndex
	}
	if flags.Changed("no-validate") {
		noValidate, _ := flags.GetBool("no-validate")
		opts.Decode.ValidateCoordinates = !noValidate
	}
	if flags.Changed("max-record-length") {
		opts.Decode.MaxRecordLength, _ = flags.GetInt("max-record-length")
	}
	if flags.Lookup("workers") != nil && flags.Changed("workers") {
		opts.Workers, _ = flags.GetInt("workers")
		opts.Parallel = opts.Workers != 1
	}
	return opts, nil
}
