package chisel

import (
	"fmt"

	"gopkg.in/yaml.v3"

	chiselerrors "github.com/provide-io/chisel/pkg/chisel/errors"
)

// ReleaseManifest is the release.MF at the root of a release tarball
type ReleaseManifest struct {
	Name       string `yaml:"name"`
	Version    string `yaml:"version,omitempty"`
	CommitHash string `yaml:"commit_hash,omitempty"`
}

// JobManifest is the job.MF inside a job tarball. Packages is nil when the
// manifest has no packages key.
type JobManifest struct {
	Name     string   `yaml:"name"`
	Packages []string `yaml:"packages"`
}

// HasPackages reports whether the manifest declared a packages list at all
func (m *JobManifest) HasPackages() bool {
	return m.Packages != nil
}

// ParseReleaseManifest decodes release.MF. A missing name is left empty.
func ParseReleaseManifest(source string, data []byte) (*ReleaseManifest, error) {
	var rm ReleaseManifest
	if err := decodeDocument(source, data, &rm); err != nil {
		return nil, err
	}
	return &rm, nil
}

// ParseJobManifest decodes job.MF
func ParseJobManifest(source string, data []byte) (*JobManifest, error) {
	var jm JobManifest
	if err := decodeDocument(source, data, &jm); err != nil {
		return nil, err
	}
	return &jm, nil
}

func decodeDocument(source string, data []byte, out interface{}) error {
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %s: %v", chiselerrors.ErrMalformedDocument, source, err)
	}
	return nil
}
