package compressor

import (
	"compress/zlib"
	"io"
	"sync"

	"github.com/andybalholm/brotli"
	"google.golang.org/grpc/encoding"

	// gzip is registered by grpc itself.
	_ "google.golang.org/grpc/encoding/gzip"
)

const (
	// DeflateName is the grpc-encoding name of the deflate compressor.
	DeflateName = "deflate"
	// BrotliName is the grpc-encoding name of the brotli compressor.
	BrotliName = "brotli"
)

func init() {
	encoding.RegisterCompressor(newDeflateCompressor())
	encoding.RegisterCompressor(newBrotliCompressor())
}

// GRPCName returns the grpc-encoding name for e, or "" for identity.
func GRPCName(e ContentEncoding) string {
	switch e {
	case ContentEncodingGzip:
		return "gzip"
	case ContentEncodingDeflate:
		return DeflateName
	case ContentEncodingBrotli:
		return BrotliName
	}
	return ""
}

type pooledWriter struct {
	resetWriter
	pool *sync.Pool
}

func (w *pooledWriter) Close() error {
	defer w.pool.Put(w)
	return w.resetWriter.Close()
}

type deflateCompressor struct {
	writerPool sync.Pool
}

func newDeflateCompressor() *deflateCompressor {
	c := &deflateCompressor{}
	c.writerPool.New = func() interface{} {
		return &pooledWriter{resetWriter: zlib.NewWriter(io.Discard), pool: &c.writerPool}
	}
	return c
}

func (c *deflateCompressor) Compress(w io.Writer) (io.WriteCloser, error) {
	z := c.writerPool.Get().(*pooledWriter)
	z.Reset(w)
	return z, nil
}

func (c *deflateCompressor) Decompress(r io.Reader) (io.Reader, error) {
	return zlib.NewReader(r)
}

func (c *deflateCompressor) Name() string {
	return DeflateName
}

type brotliCompressor struct {
	writerPool sync.Pool
}

func newBrotliCompressor() *brotliCompressor {
	c := &brotliCompressor{}
	c.writerPool.New = func() interface{} {
		return &pooledWriter{resetWriter: brotli.NewWriter(io.Discard), pool: &c.writerPool}
	}
	return c
}

func (c *brotliCompressor) Compress(w io.Writer) (io.WriteCloser, error) {
	b := c.writerPool.Get().(*pooledWriter)
	b.Reset(w)
	return b, nil
}

func (c *brotliCompressor) Decompress(r io.Reader) (io.Reader, error) {
	return brotli.NewReader(r), nil
}

func (c *brotliCompressor) Name() string {
	return BrotliName
}
