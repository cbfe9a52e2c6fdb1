// Package render drives the per-scene clip encodes, clip concatenation, and
// the final audio/caption mux through the external encoder.
package render
