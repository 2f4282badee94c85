// Package config loads, validates, and defaults the TOML configuration that
// drives every storyreel component.
//
// Load resolves the config path (explicit flag, then the user config dir,
// then a repo-local storyreel.toml), decodes it over Default(), expands all
// path fields, and validates cross-field constraints before anything else in
// the process observes the values.
package config
