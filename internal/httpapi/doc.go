// Package httpapi exposes the rendering service over HTTP: job submission,
// status polling, and artifact retrieval. Handlers stay thin; all sequencing
// lives in the pipeline package.
package httpapi
