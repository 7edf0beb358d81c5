package chisel

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"strings"

	chiselerrors "github.com/provide-io/chisel/pkg/chisel/errors"
)

const (
	// MetadataPath is the mandatory descriptor inside every product bundle
	MetadataPath = "metadata/metadata.yml"
	// ReleasesPrefix marks the embedded release tarballs
	ReleasesPrefix = "releases"
)

// Bundle is an opened product zip
type Bundle struct {
	Path string
	Size int64

	zr *zip.ReadCloser
}

// OpenBundle validates that path is a regular zip file and opens it for
// random access. Nothing is extracted until validation has passed.
func OpenBundle(path string) (*Bundle, error) {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s", chiselerrors.ErrNotAFile, path)
	}

	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", chiselerrors.ErrNotAZip, path, err)
	}

	return &Bundle{
		Path: path,
		Size: info.Size(),
		zr:   zr,
	}, nil
}

// Close closes the bundle file
func (b *Bundle) Close() error {
	if b.zr == nil {
		return nil
	}
	err := b.zr.Close()
	b.zr = nil
	return err
}

// Entries lists every file in the bundle
func (b *Bundle) Entries() []*zip.File {
	return b.zr.File
}

// Releases returns the release tarball entries in archive order
func (b *Bundle) Releases() []*zip.File {
	var releases []*zip.File
	for _, f := range b.zr.File {
		if !strings.HasPrefix(f.Name, ReleasesPrefix) || f.FileInfo().IsDir() {
			continue
		}
		releases = append(releases, f)
	}
	return releases
}

// ReadMetadata extracts and parses metadata/metadata.yml
func (b *Bundle) ReadMetadata() (*Metadata, error) {
	f := b.find(MetadataPath)
	if f == nil {
		return nil, fmt.Errorf("%w: %s", chiselerrors.ErrMissingMetadata, b.Path)
	}

	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", MetadataPath, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", MetadataPath, err)
	}

	return ParseMetadata(data)
}

func (b *Bundle) find(name string) *zip.File {
	for _, f := range b.zr.File {
		if f.Name == name {
			return f
		}
	}
	return nil
}
