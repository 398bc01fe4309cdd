package model

import (
	"fmt"
	"io"

	"github.com/hupe1980/bimgeo/codec"
)

// DecodeElements reads the extractor's output document, a JSON array of
// element records. A nil codec selects codec.Default.
func DecodeElements(r io.Reader, c codec.Codec) ([]Element, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read elements: %w", err)
	}
	var elements []Element
	if err := codec.OrDefault(c).Unmarshal(data, &elements); err != nil {
		return nil, fmt.Errorf("decode elements: %w", err)
	}
	return elements, nil
}
