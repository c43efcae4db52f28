// Package engine wraps the external source separation model. A Separator
// writes one audio file per stem into a directory; Cache keeps one loaded
// Separator per model for the lifetime of the process.
package engine
