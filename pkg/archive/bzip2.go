package archive

import (
	"bytes"
	"fmt"
	"io"

	"github.com/dsnet/compress/bzip2"
)

func init() {
	Register(NewBzip2Codec())
}

var bzip2Magic = []byte("BZh")

// Bzip2Codec implements BZIP2 decompression
type Bzip2Codec struct {
	BaseCodec
}

// NewBzip2Codec creates a new BZIP2 codec
func NewBzip2Codec() *Bzip2Codec {
	return &Bzip2Codec{
		BaseCodec: BaseCodec{
			CodecID:   CODEC_BZIP2,
			CodecName: "BZIP2",
		},
	}
}

// Match checks for "BZh" followed by a block size digit
func (c *Bzip2Codec) Match(magic []byte) bool {
	if len(magic) < 4 || !bytes.HasPrefix(magic, bzip2Magic) {
		return false
	}
	return magic[3] >= '1' && magic[3] <= '9'
}

// NewReader decompresses a BZIP2 stream
func (c *Bzip2Codec) NewReader(r io.Reader) (io.ReadCloser, error) {
	br, err := bzip2.NewReader(r, &bzip2.ReaderConfig{})
	if err != nil {
		return nil, fmt.Errorf("creating bzip2 reader: %w", err)
	}
	return br, nil
}
