// Package logging builds the process-wide structured logger.
//
// It is a thin layer over log/slog: configuration selects the level and
// the output format (JSON or logfmt text), and an optional redaction
// hook masks respondent-identifying attributes so answer payloads and
// email addresses never reach log storage.
//
//	logger, err := logging.New(logging.Config{
//	    Level:         "info",
//	    Format:        "json",
//	    RedactAnswers: true,
//	})
package logging
