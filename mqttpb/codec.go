package mqttpb

import (
	"github.com/cockroachdb/errors"
	"github.com/xizhibei/go-calc-rpc/compressor"
	"google.golang.org/protobuf/proto"
)

// EncodingFromName maps a compressor name (identity, gzip, deflate, brotli)
// to the envelope encoding.
func EncodingFromName(name string) (ContentEncoding, error) {
	e, err := compressor.ParseContentEncoding(name)
	if err != nil {
		return ContentEncoding_PLAIN, err
	}
	switch e {
	case compressor.ContentEncodingGzip:
		return ContentEncoding_GZIP, nil
	case compressor.ContentEncodingDeflate:
		return ContentEncoding_DEFLATE, nil
	case compressor.ContentEncodingBrotli:
		return ContentEncoding_BROTLI, nil
	}
	return ContentEncoding_PLAIN, nil
}

func convertEncoding(e ContentEncoding) (compressor.ContentEncoding, error) {
	switch e {
	case ContentEncoding_PLAIN:
		return compressor.ContentEncodingPlain, nil
	case ContentEncoding_GZIP:
		return compressor.ContentEncodingGzip, nil
	case ContentEncoding_DEFLATE:
		return compressor.ContentEncodingDeflate, nil
	case ContentEncoding_BROTLI:
		return compressor.ContentEncodingBrotli, nil
	}
	return compressor.ContentEncodingPlain, errors.Wrapf(compressor.ErrUnknownContentEncoding, "%d", e)
}

type bodyCodec struct {
	compressor *compressor.CompressorManager
}

func newBodyCodec(cm *compressor.CompressorManager) bodyCodec {
	if cm == nil {
		cm = compressor.NewCompressorManager()
	}
	return bodyCodec{compressor: cm}
}

func (c bodyCodec) compress(e ContentEncoding, value []byte) ([]byte, error) {
	ce, err := convertEncoding(e)
	if err != nil {
		return nil, err
	}
	return c.compressor.Compress(ce, value)
}

func (c bodyCodec) decompress(e ContentEncoding, value []byte) ([]byte, error) {
	ce, err := convertEncoding(e)
	if err != nil {
		return nil, err
	}
	return c.compressor.Decompress(ce, value)
}

// ServerCodec decodes requests and encodes responses. Bodies are compressed
// with the envelope's encoding, the envelope itself is not.
type ServerCodec struct {
	bodyCodec
}

// NewServerCodec returns a ServerCodec using cm, or a new CompressorManager
// when cm is nil.
func NewServerCodec(cm *compressor.CompressorManager) *ServerCodec {
	return &ServerCodec{newBodyCodec(cm)}
}

// Marshal encodes res. res is left untouched.
func (c *ServerCodec) Marshal(res *Response) ([]byte, error) {
	if res.GetBody() != nil {
		value, err := c.compress(res.Encoding, res.Body.Value)
		if err != nil {
			return nil, err
		}
		res = proto.Clone(res).(*Response)
		res.Body.Value = value
	}
	return proto.Marshal(res)
}

// Unmarshal decodes data into req and decompresses its body.
func (c *ServerCodec) Unmarshal(data []byte, req *Request) error {
	if err := proto.Unmarshal(data, req); err != nil {
		return errors.Wrap(err, "decode request")
	}
	if req.GetBody() == nil || req.Body.Value == nil {
		return nil
	}
	value, err := c.decompress(req.Encoding, req.Body.Value)
	if err != nil {
		return errors.Wrap(err, "decompress request body")
	}
	req.Body.Value = value
	return nil
}

// ClientCodec encodes requests and decodes responses.
type ClientCodec struct {
	bodyCodec
}

// NewClientCodec returns a ClientCodec using cm, or a new CompressorManager
// when cm is nil.
func NewClientCodec(cm *compressor.CompressorManager) *ClientCodec {
	return &ClientCodec{newBodyCodec(cm)}
}

// Marshal encodes req. req is left untouched.
func (c *ClientCodec) Marshal(req *Request) ([]byte, error) {
	if req.GetBody() != nil {
		value, err := c.compress(req.Encoding, req.Body.Value)
		if err != nil {
			return nil, err
		}
		req = proto.Clone(req).(*Request)
		req.Body.Value = value
	}
	return proto.Marshal(req)
}

// Unmarshal decodes data into res and decompresses its body.
func (c *ClientCodec) Unmarshal(data []byte, res *Response) error {
	if err := proto.Unmarshal(data, res); err != nil {
		return errors.Wrap(err, "decode response")
	}
	if res.GetBody() == nil || res.Body.Value == nil {
		return nil
	}
	value, err := c.decompress(res.Encoding, res.Body.Value)
	if err != nil {
		return errors.Wrap(err, "decompress response body")
	}
	res.Body.Value = value
	return nil
}
