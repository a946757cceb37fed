// Package buffer implements the rune-accurate document model for rut.
//
// Offsets are 0-based rune indexes into the flattened text, where every line
// except the last is followed by exactly one '\n'. An offset equal to Len()
// is valid and denotes the end of the document. Coordinates are (col, row)
// in runes; a document always has at least one (possibly empty) line.
package buffer
