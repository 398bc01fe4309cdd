// Package testutil provides deterministic geometry fixtures for tests and
// benchmarks.
//
// This package is intended for use in tests only.
//
// # Meshes
//
//	sphere := testutil.UVSphere(20, 26, 1) // exactly 1,000 triangles
//	cube := testutil.Cube(bounds.Point{0, 0, 0}, 1)
//	flat := testutil.Grid(4, 4, 1)         // coplanar, for hull fallbacks
//
// # Random Boxes
//
//	rng := testutil.NewRNG(seed)
//	boxes := rng.Boxes(1000, 100, 5)
package testutil
