// Package mesh defines the raw triangle mesh produced by the geometry
// extractor and consumed by the simplifiers.
//
// Vertices are github.com/deadsy/sdfx vectors; triangles are index triples
// into the vertex slice. A valid mesh references only existing vertices.
// Degenerate triangles (repeated indices) are tolerated on input but every
// simplifier removes them from its output via Compact.
package mesh
