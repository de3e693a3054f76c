// Package config defines the canvass configuration model.
//
// Configuration is read from a YAML file, filled with defaults, optionally
// overridden from CANVASS_* environment variables, and validated with all
// failures reported together.
package config
