// Package pool provides pooled byte buffers for the push-driven output paths,
// where a chunk is filled, handed to a writer, and then reused.
package pool
