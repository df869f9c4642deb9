// Package cursor provides immutable selections and sorted multi-cursor
// sets. A selection is an anchor/head pair; when the two coincide it is a
// plain caret. Sets keep their selections ordered and non-overlapping and
// designate one primary selection.
package cursor
