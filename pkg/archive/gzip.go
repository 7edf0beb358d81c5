package archive

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
)

func init() {
	// Register GZIP codec on package init
	Register(NewGzipCodec())
}

var gzipMagic = []byte{0x1f, 0x8b}

// GzipCodec implements GZIP decompression
type GzipCodec struct {
	BaseCodec
}

// NewGzipCodec creates a new GZIP codec
func NewGzipCodec() *GzipCodec {
	return &GzipCodec{
		BaseCodec: BaseCodec{
			CodecID:   CODEC_GZIP,
			CodecName: "GZIP",
		},
	}
}

// Match checks for the two-byte gzip member header
func (c *GzipCodec) Match(magic []byte) bool {
	return bytes.HasPrefix(magic, gzipMagic)
}

// NewReader decompresses a GZIP stream
func (c *GzipCodec) NewReader(r io.Reader) (io.ReadCloser, error) {
	gr, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("creating gzip reader: %w", err)
	}
	return gr, nil
}
