// Package text provides immutable document snapshots and the position
// arithmetic the completion engine builds on: half-open byte ranges,
// single-replacement changes, and mapping of offsets and ranges through
// edits so that spans recorded against an older snapshot still point at
// the intended text.
package text
