// Package simplify reduces triangle meshes toward a target complexity.
//
// Four strategies are provided:
//
//   - BoundingBox replaces a mesh with its 8-vertex, 12-triangle box.
//   - ConvexHull replaces a mesh with the 3D convex hull of its vertices.
//   - VertexClustering collapses vertices on a uniform grid.
//   - Passthrough returns an unchanged copy.
//
// All strategies are deterministic and never fail on degenerate input: an
// empty mesh yields an empty result, and a hull that cannot be built falls
// back to the bounding box with Result.Fallback set.
//
// The convex hull is backed by quickhull-go. Building with the "nohull" tag
// compiles the hull out; HullAvailable reports which variant is in use.
package simplify
