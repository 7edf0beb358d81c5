package archive

import (
	"archive/tar"
	"fmt"
	"io"
	"iter"
)

// MaxDocumentSize caps how much of a single entry ReadEntry will buffer.
const MaxDocumentSize = 64 << 20

// TarStream is a forward-only view over a compressed tarball. Entries are
// produced lazily; a stream cannot be rewound without reopening its source.
type TarStream struct {
	codec        Codec
	decompressor io.ReadCloser
	tr           *tar.Reader
	current      *tar.Header
}

// OpenTarball detects the compression of r and positions a tar reader on it.
// The caller must Close the stream; r itself is left open.
func OpenTarball(r io.Reader) (*TarStream, error) {
	codec, body, err := Detect(r)
	if err != nil {
		return nil, err
	}

	dr, err := codec.NewReader(body)
	if err != nil {
		return nil, err
	}

	return &TarStream{
		codec:        codec,
		decompressor: dr,
		tr:           tar.NewReader(dr),
	}, nil
}

// Codec returns the compression codec detected for the stream
func (s *TarStream) Codec() Codec {
	return s.codec
}

// Next advances to the next entry. It returns io.EOF after the last entry.
func (s *TarStream) Next() (*tar.Header, error) {
	hdr, err := s.tr.Next()
	if err != nil {
		s.current = nil
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("reading tar header: %w", err)
	}
	s.current = hdr
	return hdr, nil
}

// Entries yields every header in archive order. Iteration stops after the
// first error, which is yielded with a nil header.
func (s *TarStream) Entries() iter.Seq2[*tar.Header, error] {
	return func(yield func(*tar.Header, error) bool) {
		for {
			hdr, err := s.Next()
			if err == io.EOF {
				return
			}
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(hdr, nil) {
				return
			}
		}
	}
}

// Read reads the body of the current entry
func (s *TarStream) Read(p []byte) (int, error) {
	return s.tr.Read(p)
}

// ReadEntry buffers the body of the current entry
func (s *TarStream) ReadEntry() ([]byte, error) {
	if s.current == nil {
		return nil, fmt.Errorf("no current tar entry")
	}

	// Validate size
	if s.current.Size < 0 || s.current.Size > MaxDocumentSize {
		return nil, fmt.Errorf("invalid entry size for %s: %d", s.current.Name, s.current.Size)
	}

	data := make([]byte, s.current.Size)
	if _, err := io.ReadFull(s.tr, data); err != nil {
		return nil, fmt.Errorf("reading tar entry %s: %w", s.current.Name, err)
	}
	return data, nil
}

// Close releases the decompressor
func (s *TarStream) Close() error {
	if s.decompressor == nil {
		return nil
	}
	err := s.decompressor.Close()
	s.decompressor = nil
	return err
}
