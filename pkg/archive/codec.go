package archive

import (
	"bufio"
	"fmt"
	"io"

	chiselerrors "github.com/provide-io/chisel/pkg/chisel/errors"
)

// Codec identifiers for the compression layers chisel can unwrap
const (
	CODEC_GZIP  = 0x10 // GZIP compression
	CODEC_BZIP2 = 0x13 // BZIP2 compression
)

// Codec unwraps one compression layer around a tar stream
type Codec interface {
	// ID returns the codec identifier (e.g., CODEC_GZIP)
	ID() uint8

	// Name returns the human-readable name
	Name() string

	// Match reports whether the leading bytes of a stream belong to this codec
	Match(magic []byte) bool

	// NewReader wraps r with a decompressing reader
	NewReader(r io.Reader) (io.ReadCloser, error)
}

// BaseCodec provides common functionality for codecs
type BaseCodec struct {
	CodecID   uint8
	CodecName string
}

func (c *BaseCodec) ID() uint8 {
	return c.CodecID
}

func (c *BaseCodec) Name() string {
	return c.CodecName
}

// magicLen is the longest magic prefix any registered codec inspects.
const magicLen = 4

// registry keeps codecs in registration order so detection is deterministic
var registry []Codec

// Register registers a codec implementation
func Register(c Codec) {
	for i, existing := range registry {
		if existing.ID() == c.ID() {
			registry[i] = c
			return
		}
	}
	registry = append(registry, c)
}

// Detect peeks at the head of r and returns the codec whose magic matches,
// along with a reader that still yields the peeked bytes.
func Detect(r io.Reader) (Codec, io.Reader, error) {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}

	magic, err := br.Peek(magicLen)
	if err != nil && err != io.EOF {
		return nil, nil, fmt.Errorf("reading stream header: %w", err)
	}

	for _, c := range registry {
		if c.Match(magic) {
			return c, br, nil
		}
	}
	return nil, nil, fmt.Errorf("%w: header % x", chiselerrors.ErrUnsupportedCompression, magic)
}
