// Package format holds the small enumerations shared between the stream,
// compress and CLI packages.
package format
