// Package lod derives tiered Level-of-Detail meshes for building elements.
//
// Tiers follow the BIM Forum LOD convention:
//
//	LOD100  conceptual   axis-aligned bounding box
//	LOD200  approximate  convex hull, bounding box when no hull exists
//	LOD300  precise      vertex clustering (default ratio 0.25)
//	LOD350  connections  vertex clustering (default ratio 0.5)
//	LOD400  fabrication  unchanged copy
//	LOD500  as-built     unchanged copy
//
// A Generator dispatches each requested tier to its simplifier and records
// the achieved triangle ratio. Empty meshes produce empty representations
// instead of errors, so batch runs over thousands of elements never abort
// on one bad element. GenerateBatch fans elements out over a worker pool
// and reports per-element failures.
//
// SelectTierForDistance maps a viewing distance to the tier a renderer
// should use.
package lod
