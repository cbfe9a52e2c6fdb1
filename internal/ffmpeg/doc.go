// Package ffmpeg models encoder invocations as typed commands.
//
// The encoder's command line is the real protocol boundary of the pipeline:
// Args is the single translation from a typed Command to the flat argument
// vector, and all filter-expression escaping is centralized here so caption
// text can never corrupt the filtergraph.
package ffmpeg
