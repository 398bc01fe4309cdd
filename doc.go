// Package bimgeo indexes the geometry of building-model elements and
// derives level-of-detail meshes from it.
//
// An external extractor delivers one record per element (id, type, name,
// triangle mesh, bounding box). From those records bimgeo builds two
// independent artifacts that share the element id as join key:
//
//   - a spatial index (package spatial) answering window, point and
//     nearest-neighbor queries plus an all-pairs clash scan;
//   - per-element LOD tiers (package lod) from LOD100 (bounding box) to
//     LOD500 (original mesh), selectable by viewing distance.
//
// # Quick Start
//
//	elements, _ := model.DecodeElements(f, codec.Default)
//	p, _ := bimgeo.New(bimgeo.WithClashTolerance(0.001))
//	res, _ := p.Build(ctx, elements)
//
//	for _, c := range res.Report.Clashes {
//	    fmt.Println(c.A.ID, c.B.ID, c.OverlapVolume)
//	}
//	view, _ := res.Element("wall-42")
//	rep, _ := view.LOD.Get(lod.SelectTierForDistance(35, nil))
//
// # Partial Failure
//
// Build never aborts because of a single bad element. Elements with a
// malformed box are left out of the index, elements with a malformed mesh
// get no LOD tiers, and both are listed in the Report with errors that
// match ErrInvalidElement. Degenerate geometry (flat or empty meshes) is
// not an error: the simplifiers fall back to deterministic output and mark
// the representation.
//
// # Persistence
//
// Result.Publish writes an index snapshot to any blobstore.Store and moves
// its CURRENT pointer; LoadIndex reads it back. Stores exist for the local
// filesystem, Amazon S3 (with an optional DynamoDB commit pointer) and
// MinIO.
//
// # Observability
//
// Pass a *Logger via WithLogger and a MetricsCollector via
// WithMetricsCollector. metrics/prom exports the same events to Prometheus.
package bimgeo
