package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"canvass-hq/canvass/pkg/archive"
	"canvass-hq/canvass/pkg/engine"
	"canvass-hq/canvass/pkg/schema"
	"canvass-hq/canvass/pkg/schema/provider"
	"canvass-hq/canvass/pkg/session"
)

var simulateFlags struct {
	survey  string
	answers string
	submit  bool
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Evaluate a survey against an answer snapshot",
	Long: `Evaluate a survey definition against an answer snapshot.

The simulate command compiles the survey, computes the visible field set
for the given answers, and optionally runs the full submission checks,
reporting every failure a real submission would see.

The answers file is a YAML mapping of field id to value:

  age: 70
  name: Ada
  topics: [pay, culture]

Examples:
  # Visible set only
  canvass simulate --survey survey.yaml --answers answers.yaml

  # Visible set plus submission verdict
  canvass simulate --survey survey.yaml --answers answers.yaml --submit`,
	RunE: simulateSurvey,
}

func init() {
	rootCmd.AddCommand(simulateCmd)

	simulateCmd.Flags().StringVarP(&simulateFlags.survey, "survey", "s", "", "survey file (required)")
	simulateCmd.Flags().StringVarP(&simulateFlags.answers, "answers", "a", "", "answers file (required)")
	simulateCmd.Flags().BoolVar(&simulateFlags.submit, "submit", false, "run submission checks")
	_ = simulateCmd.MarkFlagRequired("survey")
	_ = simulateCmd.MarkFlagRequired("answers")
}

func simulateSurvey(cmd *cobra.Command, args []string) error {
	survey, err := schema.ParseFile(simulateFlags.survey)
	if err != nil {
		return err
	}

	answers, err := readAnswers(simulateFlags.answers)
	if err != nil {
		return err
	}

	registry := provider.NewRegistry()
	if err := registry.Publish(survey); err != nil {
		return err
	}

	eng := engine.New(registry, session.NewMemoryStore(), archive.NewMemorySink(), &engine.Config{
		InactivityWindow: time.Hour,
	})
	ctx := context.Background()

	visible, err := eng.VisibleSet(ctx, survey.Version, answers)
	if err != nil {
		return err
	}

	fmt.Printf("Survey %s version %s: %d of %d fields visible\n",
		survey.ID, survey.Version, len(visible), survey.FieldCount())
	for _, id := range visible {
		fmt.Printf("  %s\n", id)
	}

	if !simulateFlags.submit {
		return nil
	}

	draft, err := eng.StartOrResume(ctx, "", survey.Version, "simulator")
	if err != nil {
		return err
	}
	if len(answers) > 0 {
		if _, err := eng.Heartbeat(ctx, draft.Token, session.HeartbeatUpdate{Fields: answers}); err != nil {
			return err
		}
	}

	response, err := eng.Submit(ctx, draft.Token)
	if err != nil {
		var verr *engine.ValidationError
		if errors.As(err, &verr) {
			fmt.Printf("\nSubmission rejected with %d failure(s):\n", len(verr.Failures))
			for _, failure := range verr.Failures {
				fmt.Printf("  %s\n", failure)
			}
			os.Exit(1)
		}
		return err
	}

	fmt.Printf("\nSubmission accepted: response %s\n", response.ID)
	return nil
}

// readAnswers decodes a YAML answers file into a snapshot.
func readAnswers(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read answers file %q: %w", path, err)
	}

	answers := make(map[string]any)
	if err := yaml.Unmarshal(data, &answers); err != nil {
		return nil, fmt.Errorf("failed to parse answers file %q: %w", path, err)
	}
	return answers, nil
}
