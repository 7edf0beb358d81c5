package chisel

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/provide-io/chisel/pkg/archive"
	chiselerrors "github.com/provide-io/chisel/pkg/chisel/errors"
)

const (
	releaseManifestSuffix = "release.MF"
	jobManifestSuffix     = "job.MF"
	jobsDir               = "jobs"
	compiledPackagesDir   = "compiled_packages"
)

// PackageUsage maps a compiled package to the jobs in the same release whose
// job.MF lists it. An empty list marks an orphaned package.
type PackageUsage map[string][]string

// Names returns the package names in sorted order
func (p PackageUsage) Names() []string {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Release is everything the analyzer learned about one release tarball
type Release struct {
	Path  string
	Size  int64
	Name  string
	Codec string

	HasCompiledPackages bool
	Packages            PackageUsage
	PackageSizes        map[string]int64
	JobSizes            map[string]int64
}

type jobManifestEntry struct {
	name     string
	manifest *JobManifest
}

// Analyzer inventories release tarballs
type Analyzer struct {
	logger hclog.Logger
}

// NewAnalyzer creates an analyzer that reports warnings through logger
func NewAnalyzer(logger hclog.Logger) *Analyzer {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Analyzer{logger: logger}
}

// Analyze makes a single pass over the release tarball read from r.
func (a *Analyzer) Analyze(path string, size int64, r io.Reader) (*Release, error) {
	stream, err := archive.OpenTarball(r)
	if err != nil {
		return nil, fmt.Errorf("opening release %s: %w", path, err)
	}
	defer stream.Close()

	rel := &Release{
		Path:         path,
		Size:         size,
		Codec:        stream.Codec().Name(),
		Packages:     PackageUsage{},
		PackageSizes: map[string]int64{},
		JobSizes:     map[string]int64{},
	}

	var jobs []jobManifestEntry
	jobIndex := map[string]int{}

	for hdr, err := range stream.Entries() {
		if err != nil {
			return nil, fmt.Errorf("reading release %s: %w", path, err)
		}
		if !hdr.FileInfo().Mode().IsRegular() {
			continue
		}

		name := hdr.Name
		switch {
		case strings.HasSuffix(name, releaseManifestSuffix):
			data, err := stream.ReadEntry()
			if err != nil {
				return nil, fmt.Errorf("release %s: %w", path, err)
			}
			rm, err := ParseReleaseManifest(path+":"+name, data)
			if err != nil {
				return nil, err
			}
			rel.Name = rm.Name
			a.logger.Debug("📄 Release manifest", "release", path, "entry", name, "name", rm.Name, "version", rm.Version, "commit_hash", rm.CommitHash)

		case archive.InDir(name, jobsDir) && archive.IsTarball(name):
			jobName := archive.Stem(name)
			rel.JobSizes[jobName] = hdr.Size
			a.logger.Trace("🔍 Job tarball", "release", path, "job", jobName, "size", hdr.Size)

			jm, err := a.readJobManifest(path, name, stream)
			if err != nil {
				return nil, err
			}
			if jm == nil {
				continue
			}
			if i, ok := jobIndex[jobName]; ok {
				jobs[i].manifest = jm
				continue
			}
			jobIndex[jobName] = len(jobs)
			jobs = append(jobs, jobManifestEntry{name: jobName, manifest: jm})

		case archive.InDir(name, compiledPackagesDir) && archive.IsTarball(name):
			pkgName := archive.Stem(name)
			rel.PackageSizes[pkgName] = hdr.Size
			rel.HasCompiledPackages = true
			a.logger.Trace("🔍 Compiled package", "release", path, "package", pkgName, "size", hdr.Size)
		}
	}

	if !rel.HasCompiledPackages {
		a.logger.Debug("📭 Release has no compiled packages", "release", path)
		rel.JobSizes = map[string]int64{}
		return rel, nil
	}

	for pkgName := range rel.PackageSizes {
		rel.Packages[pkgName] = []string{}
	}

	for _, job := range jobs {
		if !job.manifest.HasPackages() {
			a.logger.Warn("⚠️ Job manifest has no packages section", "job", job.name, "release", path)
			continue
		}
		for _, pkgName := range job.manifest.Packages {
			if _, ok := rel.Packages[pkgName]; !ok {
				a.logger.Warn("⚠️ Package referenced in job manifest not found in release",
					"package", pkgName, "job", job.name, "release", path, "error", chiselerrors.ErrUnknownReference)
				continue
			}
			rel.Packages[pkgName] = append(rel.Packages[pkgName], job.name)
		}
	}

	return rel, nil
}

// readJobManifest opens the job tarball at the current position of release
// and returns the last job.MF it contains, or nil if there is none.
func (a *Analyzer) readJobManifest(releasePath, entry string, release *archive.TarStream) (*JobManifest, error) {
	nested, err := archive.OpenTarball(release)
	if err != nil {
		return nil, fmt.Errorf("opening job %s in release %s: %w", entry, releasePath, err)
	}
	defer nested.Close()

	var manifest *JobManifest
	for hdr, err := range nested.Entries() {
		if err != nil {
			return nil, fmt.Errorf("reading job %s in release %s: %w", entry, releasePath, err)
		}
		if !hdr.FileInfo().Mode().IsRegular() || !strings.HasSuffix(hdr.Name, jobManifestSuffix) {
			continue
		}

		data, err := nested.ReadEntry()
		if err != nil {
			return nil, fmt.Errorf("job %s in release %s: %w", entry, releasePath, err)
		}
		manifest, err = ParseJobManifest(releasePath+":"+entry+":"+hdr.Name, data)
		if err != nil {
			return nil, err
		}
	}

	if manifest == nil {
		a.logger.Debug("📭 Job tarball has no job.MF", "release", releasePath, "job", entry)
	}
	return manifest, nil
}
