package chisel

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	chiselerrors "github.com/provide-io/chisel/pkg/chisel/errors"
)

// Metadata is the bundle-level descriptor, metadata/metadata.yml
type Metadata struct {
	Name           string          `yaml:"name,omitempty"`
	ProductVersion string          `yaml:"product_version,omitempty"`
	JobTypes       []InstanceGroup `yaml:"job_types"`
}

// InstanceGroup is one entry of job_types
type InstanceGroup struct {
	Name      string     `yaml:"name"`
	Templates []Template `yaml:"templates"`
	Manifest  yaml.Node  `yaml:"manifest"`

	// Deployment is the parsed form of Manifest, filled in by ParseMetadata
	Deployment *DeploymentManifest `yaml:"-"`
}

// Template references a job by name in the release that ships it
type Template struct {
	Name    string `yaml:"name"`
	Release string `yaml:"release"`
}

// UnmarshalYAML requires both name and release to be present
func (t *Template) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		Name    *string `yaml:"name"`
		Release *string `yaml:"release"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	if raw.Name == nil {
		return fmt.Errorf("%w: template name (line %d)", chiselerrors.ErrMissingField, node.Line)
	}
	if raw.Release == nil {
		return fmt.Errorf("%w: release of template %q (line %d)", chiselerrors.ErrMissingField, *raw.Name, node.Line)
	}
	t.Name, t.Release = *raw.Name, *raw.Release
	return nil
}

// DeploymentManifest is the document embedded in an instance group's manifest field
type DeploymentManifest struct {
	ServiceDeployment *ServiceDeployment `yaml:"service_deployment,omitempty"`
}

// ServiceDeployment lists the releases an on-demand broker deploys
type ServiceDeployment struct {
	Releases []ServiceRelease `yaml:"releases"`
}

// ServiceRelease names a release and the jobs taken from it
type ServiceRelease struct {
	Name    string   `yaml:"name"`
	Version string   `yaml:"version,omitempty"`
	Jobs    []string `yaml:"jobs"`
}

// UnmarshalYAML requires name and jobs; an empty jobs list counts as present
func (r *ServiceRelease) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		Name    *string   `yaml:"name"`
		Version string    `yaml:"version"`
		Jobs    *[]string `yaml:"jobs"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	if raw.Name == nil {
		return fmt.Errorf("%w: service_deployment release name (line %d)", chiselerrors.ErrMissingField, node.Line)
	}
	if raw.Jobs == nil {
		return fmt.Errorf("%w: jobs of service_deployment release %q (line %d)", chiselerrors.ErrMissingField, *raw.Name, node.Line)
	}
	r.Name, r.Version, r.Jobs = *raw.Name, raw.Version, *raw.Jobs
	return nil
}

// documentError keeps missing-field failures raised while decoding and
// reports everything else as a malformed document.
func documentError(source string, err error) error {
	if errors.Is(err, chiselerrors.ErrMissingField) {
		return fmt.Errorf("%s: %w", source, err)
	}
	return fmt.Errorf("%w: %s: %v", chiselerrors.ErrMalformedDocument, source, err)
}

// ParseMetadata decodes metadata.yml along with every embedded instance group
// manifest, so later stages can index the result without further checks.
func ParseMetadata(data []byte) (*Metadata, error) {
	var md Metadata
	if err := yaml.Unmarshal(data, &md); err != nil {
		return nil, documentError(MetadataPath, err)
	}

	if md.JobTypes == nil {
		return nil, fmt.Errorf("%w: %s: job_types", chiselerrors.ErrMissingField, MetadataPath)
	}

	for i := range md.JobTypes {
		ig := &md.JobTypes[i]
		if ig.Templates == nil {
			return nil, fmt.Errorf("%w: %s: job_types[%d] (%s): templates",
				chiselerrors.ErrMissingField, MetadataPath, i, ig.Name)
		}

		dm, err := decodeDeploymentManifest(&ig.Manifest)
		if err != nil {
			return nil, fmt.Errorf("job_types[%d] (%s) manifest: %w", i, ig.Name, err)
		}
		if dm.ServiceDeployment != nil && dm.ServiceDeployment.Releases == nil {
			return nil, fmt.Errorf("%w: job_types[%d] (%s) manifest: service_deployment.releases",
				chiselerrors.ErrMissingField, i, ig.Name)
		}
		ig.Deployment = dm
	}

	return &md, nil
}

// decodeDeploymentManifest accepts the manifest either as a YAML string or
// as an inline mapping. An absent or null manifest yields an empty document.
func decodeDeploymentManifest(node *yaml.Node) (*DeploymentManifest, error) {
	dm := &DeploymentManifest{}

	switch node.Kind {
	case 0:
		return dm, nil
	case yaml.ScalarNode:
		if node.Tag == "!!null" || node.Value == "" {
			return dm, nil
		}
		if err := yaml.Unmarshal([]byte(node.Value), dm); err != nil {
			return nil, documentError("embedded manifest", err)
		}
	case yaml.MappingNode:
		if err := node.Decode(dm); err != nil {
			return nil, documentError("inline manifest", err)
		}
	default:
		return nil, fmt.Errorf("%w: manifest must be a string or mapping (line %d)",
			chiselerrors.ErrMalformedDocument, node.Line)
	}

	return dm, nil
}

// JobsUsed maps a release name to the job names the deployment references
type JobsUsed map[string][]string

// Add appends job names to a release; repeated names are kept.
func (u JobsUsed) Add(release string, jobs ...string) {
	u[release] = append(u[release], jobs...)
}

// Lookup returns the jobs used from release. A release the metadata never
// mentions is an error rather than an empty list.
func (u JobsUsed) Lookup(release string) ([]string, error) {
	jobs, ok := u[release]
	if !ok {
		return nil, fmt.Errorf("%w: release %q is not referenced by %s",
			chiselerrors.ErrMissingField, release, MetadataPath)
	}
	return jobs, nil
}

// JobsUsed collects (release, job) pairs from every instance group's
// templates followed by its service deployment.
func (m *Metadata) JobsUsed() JobsUsed {
	used := JobsUsed{}

	for _, ig := range m.JobTypes {
		for _, tpl := range ig.Templates {
			used.Add(tpl.Release, tpl.Name)
		}

		if ig.Deployment == nil || ig.Deployment.ServiceDeployment == nil {
			continue
		}
		for _, rel := range ig.Deployment.ServiceDeployment.Releases {
			used.Add(rel.Name, rel.Jobs...)
		}
	}

	return used
}
