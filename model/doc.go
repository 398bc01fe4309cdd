// Package model defines the records exchanged with the geometry extractor
// and returned by the spatial index.
//
// # Types
//
//   - Element: one extractor record (flat mesh buffers plus bounding box)
//   - Object: the immutable spatial record the index stores and returns
//   - Metadata: free-form element properties
//
// The element id is the join key between the spatial index and the LOD
// output for the same element.
package model
