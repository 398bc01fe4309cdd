// Package compress frames and compresses snapshot payloads.
//
// Frame layout: [uncompressed size uint32][compressed size uint32][data].
// A compressed size of 0 marks a payload stored raw, which happens when the
// chosen codec does not shrink the input by at least 10%.
package compress

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Type defines the compression algorithm used.
type Type uint8

const (
	// None stores payloads raw.
	None Type = 0
	// LZ4 favors speed.
	LZ4 Type = 1
	// ZSTD favors ratio.
	ZSTD Type = 2
)

// String returns the configuration name of t.
func (t Type) String() string {
	switch t {
	case None:
		return "none"
	case LZ4:
		return "lz4"
	case ZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("compress.Type(%d)", uint8(t))
	}
}

// Parse maps a configuration name to a Type.
func Parse(name string) (Type, error) {
	switch name {
	case "", "none":
		return None, nil
	case "lz4":
		return LZ4, nil
	case "zstd":
		return ZSTD, nil
	default:
		return None, fmt.Errorf("unknown compression %q", name)
	}
}

const headerSize = 8

var (
	// ErrCorrupt is returned for frames that cannot be decoded.
	ErrCorrupt = errors.New("corrupt compressed frame")

	// ErrTooLarge is returned for payloads that do not fit the frame header.
	ErrTooLarge = errors.New("payload exceeds 4 GiB frame limit")
)

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

// Encode compresses data with t and returns a framed payload.
func Encode(data []byte, t Type) ([]byte, error) {
	if uint64(len(data)) > math.MaxUint32 {
		return nil, ErrTooLarge
	}

	var compressed []byte
	switch t {
	case None:
	case LZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(data)))
		n, err := lz4.CompressBlock(data, buf, nil)
		if err != nil {
			return nil, fmt.Errorf("lz4: %w", err)
		}
		compressed = buf[:n]
	case ZSTD:
		enc := getZstdEncoder()
		compressed = enc.EncodeAll(data, nil)
		zstdEncoderPool.Put(enc)
	default:
		return nil, fmt.Errorf("unsupported compression type %d", t)
	}

	if len(compressed) == 0 || float64(len(compressed)) > float64(len(data))*0.9 {
		out := make([]byte, headerSize+len(data))
		binary.LittleEndian.PutUint32(out[0:], uint32(len(data)))
		copy(out[headerSize:], data)
		return out, nil
	}

	out := make([]byte, headerSize+len(compressed))
	binary.LittleEndian.PutUint32(out[0:], uint32(len(data)))
	binary.LittleEndian.PutUint32(out[4:], uint32(len(compressed)))
	copy(out[headerSize:], compressed)
	return out, nil
}

// Decode reverses Encode. t must be the type the frame was written with.
func Decode(frame []byte, t Type) ([]byte, error) {
	if len(frame) < headerSize {
		return nil, ErrCorrupt
	}
	size := binary.LittleEndian.Uint32(frame[0:])
	csize := binary.LittleEndian.Uint32(frame[4:])
	body := frame[headerSize:]

	if csize == 0 {
		if uint64(len(body)) < uint64(size) {
			return nil, ErrCorrupt
		}
		return body[:size], nil
	}
	if uint64(len(body)) < uint64(csize) {
		return nil, ErrCorrupt
	}
	body = body[:csize]

	switch t {
	case LZ4:
		out := make([]byte, size)
		n, err := lz4.UncompressBlock(body, out)
		if err != nil {
			return nil, fmt.Errorf("%w: lz4: %v", ErrCorrupt, err)
		}
		if uint32(n) != size {
			return nil, fmt.Errorf("%w: size mismatch", ErrCorrupt)
		}
		return out, nil
	case ZSTD:
		dec := getZstdDecoder()
		defer zstdDecoderPool.Put(dec)
		out, err := dec.DecodeAll(body, make([]byte, 0, size))
		if err != nil {
			return nil, fmt.Errorf("%w: zstd: %v", ErrCorrupt, err)
		}
		if uint32(len(out)) != size {
			return nil, fmt.Errorf("%w: size mismatch", ErrCorrupt)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: compressed frame with type %s", ErrCorrupt, t)
	}
}
