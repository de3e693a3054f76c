// Canvass is a survey logic and partial-response engine.
//
// It compiles declarative visibility and validation rules into evaluable
// dependency graphs, reconciles incremental draft saves, and validates
// and archives final submissions.
//
// Usage:
//
//	# Validate survey definition files
//	canvass validate --file survey.yaml
//	canvass validate --dir surveys/
//
//	# Compute the visible set and submission verdict for an answer file
//	canvass simulate --survey survey.yaml --answers answers.yaml
//
//	# Run the engine with definition watching and expiry sweeping
//	canvass run --config config.yaml
//
//	# Show version information
//	canvass version
package main

func main() {
	Execute()
}
