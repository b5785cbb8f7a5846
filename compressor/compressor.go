// Package compressor compresses payloads for the MQTT transport and provides
// the deflate and brotli gRPC compressors.
package compressor

import (
	"bytes"
	"compress/gzip"
	"compress/zlib"
	"io"
	"strings"
	"sync"

	"github.com/andybalholm/brotli"
	"github.com/cockroachdb/errors"
)

type ContentEncoding int

const (
	ContentEncodingGzip    ContentEncoding = 0
	ContentEncodingDeflate ContentEncoding = 1
	ContentEncodingBrotli  ContentEncoding = 2
	ContentEncodingPlain   ContentEncoding = 3
)

var (
	ErrUnknownContentEncoding = errors.New("[CALC] unknown content encoding")
)

var encodingNames = map[ContentEncoding]string{
	ContentEncodingGzip:    "gzip",
	ContentEncodingDeflate: "deflate",
	ContentEncodingBrotli:  "brotli",
	ContentEncodingPlain:   "identity",
}

// String returns the name of the encoding as used on the command line and in
// the grpc-encoding header.
func (e ContentEncoding) String() string {
	if name, ok := encodingNames[e]; ok {
		return name
	}
	return "unknown"
}

// ParseContentEncoding parses gzip, deflate, brotli or identity. The empty
// string and "plain" are identity.
func ParseContentEncoding(name string) (ContentEncoding, error) {
	switch strings.ToLower(name) {
	case "", "identity", "plain", "none":
		return ContentEncodingPlain, nil
	case "gzip":
		return ContentEncodingGzip, nil
	case "deflate", "zlib":
		return ContentEncodingDeflate, nil
	case "brotli", "br":
		return ContentEncodingBrotli, nil
	}
	return ContentEncodingPlain, errors.Wrapf(ErrUnknownContentEncoding, "%q", name)
}

// CompressorManager compresses and decompresses byte slices, reusing writers
// and buffers across calls. It is safe for concurrent use.
type CompressorManager struct {
	byteReaderPool   sync.Pool
	bufferPool       sync.Pool
	gzipWriterPool   sync.Pool
	zlibWriterPool   sync.Pool
	brotliWriterPool sync.Pool
}

func NewCompressorManager() *CompressorManager {
	return &CompressorManager{
		byteReaderPool: sync.Pool{
			New: func() interface{} {
				return bytes.NewReader(nil)
			},
		},
		gzipWriterPool: sync.Pool{
			New: func() interface{} {
				return gzip.NewWriter(nil)
			},
		},
		zlibWriterPool: sync.Pool{
			New: func() interface{} {
				return zlib.NewWriter(nil)
			},
		},
		brotliWriterPool: sync.Pool{
			New: func() interface{} {
				return brotli.NewWriter(nil)
			},
		},
		bufferPool: sync.Pool{
			New: func() interface{} {
				return new(bytes.Buffer)
			},
		},
	}
}

func (c *CompressorManager) Compress(tp ContentEncoding, data []byte) ([]byte, error) {
	if data == nil {
		return nil, nil
	}

	switch tp {
	case ContentEncodingGzip:
		return c.GzipCompress(data)
	case ContentEncodingDeflate:
		return c.ZlibCompress(data)
	case ContentEncodingBrotli:
		return c.BrotliCompress(data)
	case ContentEncodingPlain:
		return data, nil
	default:
		return nil, ErrUnknownContentEncoding
	}
}

func (c *CompressorManager) Decompress(tp ContentEncoding, data []byte) ([]byte, error) {
	if data == nil {
		return nil, nil
	}

	switch tp {
	case ContentEncodingGzip:
		return c.GzipDecompress(data)
	case ContentEncodingDeflate:
		return c.ZlibDecompress(data)
	case ContentEncodingBrotli:
		return c.BrotliDecompress(data)
	case ContentEncodingPlain:
		return data, nil
	default:
		return nil, ErrUnknownContentEncoding
	}
}

func (c *CompressorManager) readAll(data []byte, open func(r io.Reader) (io.Reader, error)) ([]byte, error) {
	byteReader := c.byteReaderPool.Get().(*bytes.Reader)
	defer c.byteReaderPool.Put(byteReader)
	byteReader.Reset(data)

	reader, err := open(byteReader)
	if err != nil {
		return nil, err
	}
	if closer, ok := reader.(io.Closer); ok {
		defer closer.Close()
	}

	return io.ReadAll(reader)
}

type resetWriter interface {
	io.WriteCloser
	Reset(w io.Writer)
}

func (c *CompressorManager) writeAll(pool *sync.Pool, data []byte) ([]byte, error) {
	writer := pool.Get().(resetWriter)
	defer pool.Put(writer)

	buf := c.bufferPool.Get().(*bytes.Buffer)
	defer c.bufferPool.Put(buf)

	buf.Reset()
	writer.Reset(buf)

	if _, err := writer.Write(data); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	// buf goes back to the pool, the result must not alias it.
	return bytes.Clone(buf.Bytes()), nil
}

func (c *CompressorManager) GzipDecompress(data []byte) ([]byte, error) {
	return c.readAll(data, func(r io.Reader) (io.Reader, error) {
		return gzip.NewReader(r)
	})
}

func (c *CompressorManager) GzipCompress(data []byte) ([]byte, error) {
	return c.writeAll(&c.gzipWriterPool, data)
}

func (c *CompressorManager) ZlibDecompress(data []byte) ([]byte, error) {
	return c.readAll(data, func(r io.Reader) (io.Reader, error) {
		return zlib.NewReader(r)
	})
}

func (c *CompressorManager) ZlibCompress(data []byte) ([]byte, error) {
	return c.writeAll(&c.zlibWriterPool, data)
}

func (c *CompressorManager) BrotliDecompress(data []byte) ([]byte, error) {
	return c.readAll(data, func(r io.Reader) (io.Reader, error) {
		return brotli.NewReader(r), nil
	})
}

func (c *CompressorManager) BrotliCompress(data []byte) ([]byte, error) {
	return c.writeAll(&c.brotliWriterPool, data)
}
