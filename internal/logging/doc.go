// Package logging configures structured slog output for framecast.
//
// Two handler formats are supported: a compact console format intended for
// interactive use and a JSON format for log aggregation. Typed attribute
// helpers and standardized field names keep pipeline logs queryable by
// job id and stage.
package logging
