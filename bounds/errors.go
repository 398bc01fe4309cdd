package bounds

import (
	"errors"
	"fmt"
)

// ErrInvalidBox is the sentinel matched by every box validation failure.
var ErrInvalidBox = errors.New("invalid bounding box")

// InvalidBoxError reports the first axis on which a box violates min <= max
// or carries a non-finite coordinate.
type InvalidBoxError struct {
	Axis int
	Min  float64
	Max  float64
}

func (e *InvalidBoxError) Error() string {
	return fmt.Sprintf("invalid bounding box: axis %c has min %g, max %g", axisName(e.Axis), e.Min, e.Max)
}

// Is makes errors.Is(err, ErrInvalidBox) succeed.
func (e *InvalidBoxError) Is(target error) bool { return target == ErrInvalidBox }

func axisName(axis int) byte {
	switch axis {
	case 0:
		return 'x'
	case 1:
		return 'y'
	case 2:
		return 'z'
	default:
		return '?'
	}
}
