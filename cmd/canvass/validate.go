package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"canvass-hq/canvass/pkg/logic/compiler"
	"canvass-hq/canvass/pkg/logic/graph"
	"canvass-hq/canvass/pkg/schema"
)

var validateFlags struct {
	file   string
	dir    string
	format string
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate survey definition files",
	Long: `Validate survey definition files for structural and rule errors.

The validate command parses survey files and performs full publication checks:
  - YAML syntax and survey structure (ids, types, options)
  - Rule compilation (operands, operator/type compatibility, references)
  - Dependency acyclicity

Every problem in a file is reported, not just the first.

Examples:
  # Validate a single file
  canvass validate --file survey.yaml

  # Validate a directory
  canvass validate --dir surveys/

  # JSON output for CI
  canvass validate --file survey.yaml --format json`,
	RunE: validateSurveys,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVarP(&validateFlags.file, "file", "f", "", "survey file to validate")
	validateCmd.Flags().StringVarP(&validateFlags.dir, "dir", "d", "", "directory of survey files")
	validateCmd.Flags().StringVar(&validateFlags.format, "format", "text", "output format: text, json")
}

// ValidationResult is the validation outcome for one survey file.
type ValidationResult struct {
	File    string   `json:"file"`
	Valid   bool     `json:"valid"`
	Version string   `json:"version,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

func validateSurveys(cmd *cobra.Command, args []string) error {
	if validateFlags.file == "" && validateFlags.dir == "" {
		return fmt.Errorf("either --file or --dir must be specified")
	}

	var files []string
	if validateFlags.file != "" {
		files = append(files, validateFlags.file)
	}
	if validateFlags.dir != "" {
		for _, pattern := range []string{"*.yaml", "*.yml"} {
			matches, err := filepath.Glob(filepath.Join(validateFlags.dir, pattern))
			if err != nil {
				return fmt.Errorf("failed to list survey files: %w", err)
			}
			files = append(files, matches...)
		}
	}
	if len(files) == 0 {
		return fmt.Errorf("no survey files found")
	}

	results := make([]ValidationResult, 0, len(files))
	failed := false
	for _, file := range files {
		result := validateSurveyFile(file)
		if !result.Valid {
			failed = true
		}
		results = append(results, result)
	}

	if validateFlags.format == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			return err
		}
	} else {
		for _, result := range results {
			if result.Valid {
				fmt.Printf("✓ %s (version %s)\n", result.File, result.Version)
				continue
			}
			fmt.Printf("✗ %s\n", result.File)
			for _, msg := range result.Errors {
				fmt.Printf("    %s\n", msg)
			}
		}
	}

	if failed {
		return fmt.Errorf("validation failed")
	}
	return nil
}

// validateSurveyFile runs the full publication checks against one file.
func validateSurveyFile(path string) ValidationResult {
	result := ValidationResult{File: path}

	survey, err := schema.ParseFile(path)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return result
	}
	result.Version = survey.Version

	rules, err := compiler.CompileSurvey(survey)
	if err != nil {
		var list *compiler.ErrorList
		if errors.As(err, &list) {
			for _, e := range list.Errors {
				result.Errors = append(result.Errors, e.Error())
			}
		} else {
			result.Errors = append(result.Errors, err.Error())
		}
		return result
	}

	if _, err := graph.Build(survey, rules); err != nil {
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	result.Valid = true
	return result
}
