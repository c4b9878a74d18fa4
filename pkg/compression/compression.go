// Package compression wraps export streams with a compression codec.
//
// Writers returned by NewWriter flush the codec on Close but never close the
// underlying writer, so a sink can finish its own upload afterwards:
//
//	zw, err := compression.NewWriter(obj, compression.Zstd, compression.Default)
//	...
//	err = zw.Close() // flush the zstd frame
//	err = obj.Close() // commit the object
package compression

import (
	"bytes"
	"io"
	"sort"
	"strings"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/snappy"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/ajitpratap0/ocf/pkg/ocferrors"
	"github.com/ajitpratap0/ocf/pkg/pool"
)

// Algorithm represents a compression algorithm.
type Algorithm string

const (
	None    Algorithm = "none"
	Gzip    Algorithm = "gzip"
	Snappy  Algorithm = "snappy"
	LZ4     Algorithm = "lz4"
	Zstd    Algorithm = "zstd"
	S2      Algorithm = "s2"
	Deflate Algorithm = "deflate"
)

var extensions = map[Algorithm]string{
	None:    "",
	Gzip:    ".gz",
	Snappy:  ".sz",
	LZ4:     ".lz4",
	Zstd:    ".zst",
	S2:      ".s2",
	Deflate: ".deflate",
}

// Algorithms returns every supported algorithm in name order.
func Algorithms() []Algorithm {
	out := make([]Algorithm, 0, len(extensions))
	for a := range extensions {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ParseAlgorithm converts a configuration value into an Algorithm. The empty
// string means None.
func ParseAlgorithm(s string) (Algorithm, error) {
	a := Algorithm(strings.ToLower(strings.TrimSpace(s)))
	if a == "" {
		return None, nil
	}
	if _, ok := extensions[a]; !ok {
		return "", ocferrors.New(ocferrors.ErrorTypeConfig, "unsupported compression algorithm").
			WithDetail("algorithm", s)
	}
	return a, nil
}

// Extension is the file name suffix for the algorithm, e.g. ".zst".
func (a Algorithm) Extension() string {
	return extensions[a]
}

// Level controls the trade-off between compression speed and ratio.
type Level int

const (
	Fastest Level = 1
	Default Level = 5
	Better  Level = 7
	Best    Level = 9
)

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// NewWriter returns a writer that compresses into w.
func NewWriter(w io.Writer, a Algorithm, level Level) (io.WriteCloser, error) {
	switch a {
	case None, "":
		return nopWriteCloser{w}, nil
	case Gzip:
		zw, err := gzip.NewWriterLevel(w, mapGzipLevel(level))
		if err != nil {
			return nil, ocferrors.Wrap(err, ocferrors.ErrorTypeConfig, "invalid gzip level")
		}
		return zw, nil
	case Snappy:
		return snappy.NewBufferedWriter(w), nil
	case LZ4:
		zw := lz4.NewWriter(w)
		if err := zw.Apply(lz4.CompressionLevelOption(mapLZ4Level(level))); err != nil {
			return nil, ocferrors.Wrap(err, ocferrors.ErrorTypeConfig, "invalid lz4 level")
		}
		return zw, nil
	case Zstd:
		zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(mapZstdLevel(level)))
		if err != nil {
			return nil, ocferrors.Wrap(err, ocferrors.ErrorTypeConfig, "failed to create zstd encoder")
		}
		return zw, nil
	case S2:
		return s2.NewWriter(w), nil
	case Deflate:
		zw, err := flate.NewWriter(w, mapDeflateLevel(level))
		if err != nil {
			return nil, ocferrors.Wrap(err, ocferrors.ErrorTypeConfig, "invalid deflate level")
		}
		return zw, nil
	}
	return nil, ocferrors.New(ocferrors.ErrorTypeConfig, "unsupported compression algorithm").
		WithDetail("algorithm", string(a))
}

// NewReader returns a reader that decompresses r.
func NewReader(r io.Reader, a Algorithm) (io.ReadCloser, error) {
	switch a {
	case None, "":
		return io.NopCloser(r), nil
	case Gzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, ocferrors.Wrap(err, ocferrors.ErrorTypeData, "invalid gzip stream")
		}
		return zr, nil
	case Snappy:
		return io.NopCloser(snappy.NewReader(r)), nil
	case LZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	case Zstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, ocferrors.Wrap(err, ocferrors.ErrorTypeData, "invalid zstd stream")
		}
		return zr.IOReadCloser(), nil
	case S2:
		return io.NopCloser(s2.NewReader(r)), nil
	case Deflate:
		return flate.NewReader(r), nil
	}
	return nil, ocferrors.New(ocferrors.ErrorTypeConfig, "unsupported compression algorithm").
		WithDetail("algorithm", string(a))
}

var buffers = pool.NewBufferPool(32 * 1024)

// Compress compresses data in memory.
func Compress(data []byte, a Algorithm, level Level) ([]byte, error) {
	buf := buffers.Get()
	defer buffers.Put(buf)

	zw, err := NewWriter(buf, a, level)
	if err != nil {
		return nil, err
	}
	if _, err := zw.Write(data); err != nil {
		return nil, ocferrors.Wrap(err, ocferrors.ErrorTypeData, "compression failed")
	}
	if err := zw.Close(); err != nil {
		return nil, ocferrors.Wrap(err, ocferrors.ErrorTypeData, "compression failed")
	}
	return bytes.Clone(buf.Bytes()), nil
}

// Decompress decompresses data in memory.
func Decompress(data []byte, a Algorithm) ([]byte, error) {
	zr, err := NewReader(bytes.NewReader(data), a)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, ocferrors.Wrap(err, ocferrors.ErrorTypeData, "decompression failed").
			WithDetail("algorithm", string(a))
	}
	return out, nil
}

func mapGzipLevel(level Level) int {
	switch level {
	case Fastest:
		return gzip.BestSpeed
	case Best:
		return gzip.BestCompression
	default:
		return gzip.DefaultCompression
	}
}

func mapLZ4Level(level Level) lz4.CompressionLevel {
	switch level {
	case Fastest:
		return lz4.Fast
	case Best:
		return lz4.Level9
	default:
		return lz4.Level5
	}
}

func mapZstdLevel(level Level) zstd.EncoderLevel {
	switch level {
	case Fastest:
		return zstd.SpeedFastest
	case Better:
		return zstd.SpeedBetterCompression
	case Best:
		return zstd.SpeedBestCompression
	default:
		return zstd.SpeedDefault
	}
}

func mapDeflateLevel(level Level) int {
	switch level {
	case Fastest:
		return flate.BestSpeed
	case Best:
		return flate.BestCompression
	default:
		return flate.DefaultCompression
	}
}
