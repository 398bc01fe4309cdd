// Package spatial is an R-tree index over building-element bounding boxes.
//
// The index answers window queries, nearest-neighbor queries by box center,
// point containment and an all-pairs clash scan. Intersection is inclusive:
// boxes touching at a face, edge or corner intersect.
//
// # Storage model
//
// Every object receives a dense uint32 handle on insert. Objects live in an
// arena slice indexed by handle, a map resolves ids to handles, and the
// rtreego tree stores only small entries carrying a handle and a padded
// rectangle. rtreego treats touching rectangles as disjoint and rejects
// zero-length sides, so stored rectangles are padded by a small epsilon and
// every tree result passes an exact inclusive filter.
//
// # Removal
//
// Remove deletes the entry from the tree and flips a tombstone bit for the
// arena slot. Once the tombstoned share of the arena exceeds the compaction
// threshold the arena is rebuilt and the tree bulk-loaded from the live
// objects.
//
// # Concurrency
//
// An Index is safe for concurrent use with single-writer/multi-reader
// semantics. FindClashes holds the read lock for the entire scan, so
// inserts and removals wait until it returns.
//
// # Persistence
//
// Snapshots contain the object records only; the tree is rebuilt on load.
// See Save, Load, Publish and LoadCurrent.
package spatial
