package bimgeo

import (
	"errors"
	"fmt"

	"github.com/hupe1980/bimgeo/blobstore"
	"github.com/hupe1980/bimgeo/bounds"
	"github.com/hupe1980/bimgeo/lod"
	"github.com/hupe1980/bimgeo/mesh"
	"github.com/hupe1980/bimgeo/model"
	"github.com/hupe1980/bimgeo/spatial"
)

var (
	// ErrInvalidElement matches every error caused by malformed extractor
	// input: missing ids, bad bounding boxes, broken meshes, duplicates.
	ErrInvalidElement = errors.New("invalid element")

	// ErrNotFound is returned for unknown element ids and missing snapshots.
	ErrNotFound = errors.New("not found")
)

// ElementError carries the id of the element an error belongs to.
//
// The original underlying error can be accessed via errors.Unwrap.
type ElementError struct {
	ElementID string
	cause     error
}

func (e *ElementError) Error() string {
	return fmt.Sprintf("element %s: %v", e.ElementID, e.cause)
}

func (e *ElementError) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	// Not found unification.
	if errors.Is(err, blobstore.ErrNotFound) || errors.Is(err, spatial.ErrNoSnapshot) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}

	// Input validation.
	switch {
	case errors.Is(err, model.ErrMissingID),
		errors.Is(err, spatial.ErrEmptyID),
		errors.Is(err, spatial.ErrDuplicateObject),
		errors.Is(err, lod.ErrDuplicateElement),
		errors.Is(err, bounds.ErrInvalidBox),
		errors.Is(err, mesh.ErrInvalidMesh):
		return fmt.Errorf("%w: %w", ErrInvalidElement, err)
	}

	return err
}

// translateFailures rewrites a per-element failure map in place.
func translateFailures(failed map[string]error) map[string]error {
	for id, err := range failed {
		failed[id] = &ElementError{ElementID: id, cause: translateError(err)}
	}
	return failed
}
