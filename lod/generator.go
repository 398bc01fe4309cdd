package lod

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hupe1980/bimgeo/mesh"
	"github.com/hupe1980/bimgeo/model"
	"github.com/hupe1980/bimgeo/simplify"
)

// ErrNilElementLOD is returned by Regenerate when given no target.
var ErrNilElementLOD = errors.New("element LOD is nil")

// Generator produces tiered representations. It is immutable after New and
// safe for concurrent use.
type Generator struct {
	opts options
}

// New returns a Generator. It fails when a configured target ratio is
// outside (0, 1] or names an unknown tier.
func New(optFns ...Option) (*Generator, error) {
	o := defaultOptions()
	for _, fn := range optFns {
		fn(&o)
	}

	for t, r := range o.ratios {
		if !t.Valid() {
			return nil, fmt.Errorf("%w: %d", ErrUnknownTier, int(t))
		}
		if err := simplify.ValidateRatio(r); err != nil {
			return nil, fmt.Errorf("lod: %s: %w", t, err)
		}
	}
	for t := range o.simplifiers {
		if !t.Valid() {
			return nil, fmt.Errorf("%w: %d", ErrUnknownTier, int(t))
		}
	}

	return &Generator{opts: o}, nil
}

// TargetRatio returns the ratio requested for tier.
func (g *Generator) TargetRatio(tier Tier) float64 {
	return g.opts.ratios[tier]
}

// Generate computes every tier in tiers (all tiers when empty). An empty
// mesh yields an empty representation per tier. Invalid meshes and
// unknown tiers fail the whole call.
func (g *Generator) Generate(m *mesh.Mesh, tiers []Tier) (map[Tier]Representation, error) {
	ts, err := normalizeTiers(tiers)
	if err != nil {
		return nil, err
	}
	if err := validateMesh(m); err != nil {
		return nil, err
	}

	hash := contentHash(m)
	out := make(map[Tier]Representation, len(ts))
	for _, t := range ts {
		rep, err := g.generate(m, hash, t)
		if err != nil {
			return nil, err
		}
		out[t] = rep
	}
	return out, nil
}

// GenerateTier computes a single tier.
func (g *Generator) GenerateTier(m *mesh.Mesh, tier Tier) (Representation, error) {
	if !tier.Valid() {
		return Representation{}, fmt.Errorf("%w: %d", ErrUnknownTier, int(tier))
	}
	if err := validateMesh(m); err != nil {
		return Representation{}, err
	}
	return g.generate(m, contentHash(m), tier)
}

// GenerateElement decodes the element mesh and computes tiers for it under
// a fresh run id.
func (g *Generator) GenerateElement(el model.Element, tiers []Tier) (*ElementLOD, error) {
	return g.generateElement(el, tiers, uuid.New())
}

func (g *Generator) generateElement(el model.Element, tiers []Tier, runID uuid.UUID) (*ElementLOD, error) {
	if el.ElementID == "" {
		return nil, model.ErrMissingID
	}
	m, err := el.Mesh()
	if err != nil {
		return nil, err
	}
	reps, err := g.Generate(m, tiers)
	if err != nil {
		return nil, fmt.Errorf("element %s: %w", el.ElementID, err)
	}
	return &ElementLOD{
		ElementID:             el.ElementID,
		RunID:                 runID,
		OriginalVertexCount:   m.VertexCount(),
		OriginalTriangleCount: m.TriangleCount(),
		Representations:       reps,
	}, nil
}

// Regenerate recomputes one tier of elod from m, leaving the other tiers
// untouched.
func (g *Generator) Regenerate(elod *ElementLOD, m *mesh.Mesh, tier Tier) error {
	if elod == nil {
		return ErrNilElementLOD
	}
	rep, err := g.GenerateTier(m, tier)
	if err != nil {
		return err
	}
	if elod.Representations == nil {
		elod.Representations = make(map[Tier]Representation)
	}
	elod.Representations[tier] = rep
	elod.OriginalVertexCount = m.VertexCount()
	elod.OriginalTriangleCount = m.TriangleCount()
	return nil
}

func (g *Generator) generate(m *mesh.Mesh, hash uint64, tier Tier) (Representation, error) {
	s := g.opts.simplifiers[tier]
	ratio := g.opts.ratios[tier]

	key := cacheKey{hash: hash, tier: tier, ratio: ratio, method: s.Name()}
	if c := g.opts.cache; c != nil {
		rep, ok := c.get(key)
		g.opts.metrics.RecordCacheLookup(ok)
		if ok {
			return rep, nil
		}
	}

	start := time.Now()
	res, err := s.Simplify(m, ratio)
	in := m.TriangleCount()
	if err != nil {
		g.opts.metrics.RecordGenerate(tier, s.Name(), in, 0, time.Since(start), err)
		return Representation{}, fmt.Errorf("%s: %w", tier, err)
	}

	out := res.Mesh.TriangleCount()
	rep := Representation{
		Tier:                tier,
		Mesh:                res.Mesh,
		SimplificationRatio: achievedRatio(in, out),
		Method:              res.Method,
		Fallback:            res.Fallback,
		TargetRatio:         ratio,
	}
	g.opts.metrics.RecordGenerate(tier, res.Method, in, out, time.Since(start), nil)

	if res.Fallback {
		g.opts.logger.Debug("tier fell back", slog.String("tier", tier.String()), slog.String("method", res.Method))
	}
	if c := g.opts.cache; c != nil {
		c.put(key, rep)
	}
	return rep, nil
}

func achievedRatio(in, out int) float64 {
	if in == 0 {
		return 0
	}
	return float64(out) / float64(in)
}

func validateMesh(m *mesh.Mesh) error {
	if m == nil {
		return nil
	}
	return m.Validate()
}

func contentHash(m *mesh.Mesh) uint64 {
	if m == nil {
		return 0
	}
	return m.Hash()
}
