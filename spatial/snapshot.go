package spatial

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"

	"github.com/hupe1980/bimgeo/blobstore"
	"github.com/hupe1980/bimgeo/codec"
	"github.com/hupe1980/bimgeo/internal/compress"
	"github.com/hupe1980/bimgeo/model"
)

// Snapshot layout:
//
//	magic   "BGIX"
//	version uint8
//	compr   uint8   compress.Type of the body
//	namelen uint8
//	name    []byte  codec name
//	sum     uint64  xxhash of body, little endian
//	body    compress frame of the codec-encoded snapshotDoc
//
// The tree itself is not stored; it is bulk-loaded on read.
const (
	snapshotMagic   = "BGIX"
	snapshotVersion = 1

	// SnapshotPrefix is where Publish stores snapshot blobs.
	SnapshotPrefix = "snapshots/"
	// SnapshotExt is the snapshot file extension.
	SnapshotExt = ".bgix"
)

// snapshotDoc is the codec document of a snapshot. Metadata values come
// back the way the codec decodes them, so JSON numbers read as float64.
type snapshotDoc struct {
	Version   int            `json:"version"`
	CreatedAt time.Time      `json:"created_at"`
	Epsilon   float64        `json:"epsilon"`
	Objects   []model.Object `json:"objects"`
}

// WriteTo writes a snapshot of the live objects to w.
func (ix *Index) WriteTo(w io.Writer) (int64, error) {
	data, err := ix.encode()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return int64(n), err
}

func (ix *Index) encode() ([]byte, error) {
	ix.mu.RLock()
	doc := snapshotDoc{
		Version:   snapshotVersion,
		CreatedAt: time.Now().UTC(),
		Epsilon:   ix.opts.epsilon,
		Objects:   ix.liveLocked(),
	}
	ix.mu.RUnlock()
	sortByID(doc.Objects)

	c := ix.opts.codec
	name := c.Name()
	if len(name) > 255 {
		return nil, fmt.Errorf("codec name %q too long", name)
	}
	body, err := c.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	frame, err := compress.Encode(body, ix.opts.compression)
	if err != nil {
		return nil, fmt.Errorf("compress snapshot: %w", err)
	}

	var buf bytes.Buffer
	buf.Grow(len(snapshotMagic) + 3 + len(name) + 8 + len(frame))
	buf.WriteString(snapshotMagic)
	buf.WriteByte(snapshotVersion)
	buf.WriteByte(byte(ix.opts.compression))
	buf.WriteByte(byte(len(name)))
	buf.WriteString(name)
	buf.Write(binary.LittleEndian.AppendUint64(nil, xxhash.Sum64(frame)))
	buf.Write(frame)
	return buf.Bytes(), nil
}

// Read builds an index from a snapshot. The codec, compression and epsilon
// recorded in the snapshot are applied first; optFns may override them.
func Read(r io.Reader, optFns ...Option) (*Index, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return decode(data, optFns)
}

func decode(data []byte, optFns []Option) (*Index, error) {
	hdr := len(snapshotMagic) + 3
	if len(data) < hdr || string(data[:len(snapshotMagic)]) != snapshotMagic {
		return nil, fmt.Errorf("%w: bad magic", ErrInvalidSnapshot)
	}
	if v := data[4]; v != snapshotVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrInvalidSnapshot, v)
	}
	comp := Compression(data[5])
	nameLen := int(data[6])
	if len(data) < hdr+nameLen+8 {
		return nil, fmt.Errorf("%w: truncated header", ErrInvalidSnapshot)
	}
	c, err := codec.Lookup(string(data[hdr : hdr+nameLen]))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}
	sum := binary.LittleEndian.Uint64(data[hdr+nameLen:])
	frame := data[hdr+nameLen+8:]
	if xxhash.Sum64(frame) != sum {
		return nil, fmt.Errorf("%w: checksum mismatch", ErrInvalidSnapshot)
	}
	body, err := compress.Decode(frame, comp)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}

	var doc snapshotDoc
	if err := c.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}

	base := []Option{WithCodec(c), WithCompression(comp)}
	if doc.Epsilon > 0 {
		base = append(base, WithEpsilon(doc.Epsilon))
	}
	ix, err := New(append(base, optFns...)...)
	if err != nil {
		return nil, err
	}
	res := ix.InsertManyReport(context.Background(), doc.Objects)
	if len(res.Failed) > 0 {
		return nil, fmt.Errorf("%w: %d objects rejected", ErrInvalidSnapshot, len(res.Failed))
	}
	return ix, nil
}

// Save writes a snapshot to path atomically.
func (ix *Index) Save(path string) error {
	data, err := ix.encode()
	if err != nil {
		return err
	}
	if err := blobstore.WriteFileAtomic(path, data); err != nil {
		return err
	}
	ix.opts.logger.Info("saved index", slog.String("path", path), slog.Int("bytes", len(data)))
	return nil
}

// Load reads a snapshot file written by Save.
func Load(path string, optFns ...Option) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return decode(data, optFns)
}

// SaveBlob writes a snapshot to store under name.
func (ix *Index) SaveBlob(ctx context.Context, store blobstore.Store, name string) error {
	data, err := ix.encode()
	if err != nil {
		return err
	}
	return store.Put(ctx, name, data)
}

// LoadBlob reads the snapshot stored under name.
func LoadBlob(ctx context.Context, store blobstore.Store, name string, optFns ...Option) (*Index, error) {
	data, err := store.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	return decode(data, optFns)
}

// Publish stores a new snapshot under SnapshotPrefix and then points
// CURRENT at it. Readers using LoadCurrent see either the previous or the
// new snapshot. It returns the snapshot name.
func (ix *Index) Publish(ctx context.Context, store blobstore.Store) (string, error) {
	name := SnapshotPrefix + uuid.NewString() + SnapshotExt
	if err := ix.SaveBlob(ctx, store, name); err != nil {
		return "", err
	}
	if err := store.Put(ctx, blobstore.CurrentName, []byte(name)); err != nil {
		_ = store.Delete(ctx, name)
		return "", fmt.Errorf("publish %s: %w", name, err)
	}
	ix.opts.logger.Info("published index", slog.String("snapshot", name), slog.Int("objects", ix.Len()))
	return name, nil
}

// LoadCurrent loads the snapshot CURRENT points at.
func LoadCurrent(ctx context.Context, store blobstore.Store, optFns ...Option) (*Index, error) {
	ptr, err := store.Get(ctx, blobstore.CurrentName)
	if errors.Is(err, blobstore.ErrNotFound) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, err
	}
	return LoadBlob(ctx, store, strings.TrimSpace(string(ptr)), optFns...)
}
