// Package dump renders layouts, decoded records, raw buffers and field
// statistics for terminals.
package dump
