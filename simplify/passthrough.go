package simplify

import "github.com/hupe1980/bimgeo/mesh"

// Passthrough returns a deep copy of the input. Used for full-fidelity tiers.
type Passthrough struct{}

// Name implements Simplifier.
func (Passthrough) Name() string { return MethodPassthrough }

// Simplify implements Simplifier. The ratio is validated but otherwise
// ignored.
func (p Passthrough) Simplify(m *mesh.Mesh, ratio float64) (Result, error) {
	if err := ValidateRatio(ratio); err != nil {
		return Result{}, err
	}
	if m.IsEmpty() {
		return emptyResult(p.Name()), nil
	}
	return Result{Mesh: m.Clone(), Method: p.Name()}, nil
}
