// Package config loads, validates, and normalizes framecast configuration.
//
// Configuration lives in a TOML file. Lookup order is an explicit --config
// path, ~/.config/framecast/config.toml, then a project-local framecast.toml.
// All path fields are expanded to absolute paths during load so downstream
// packages never see tildes or relative paths.
package config
