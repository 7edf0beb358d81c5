package chisel

import (
	"archive/zip"
	"fmt"
	"io"

	"github.com/hashicorp/go-hclog"

	chiselerrors "github.com/provide-io/chisel/pkg/chisel/errors"
)

// Inspector runs the whole pipeline over one product bundle
type Inspector struct {
	logger   hclog.Logger
	reporter *Reporter
	analyzer *Analyzer
}

// NewInspector creates an inspector printing its report to out
func NewInspector(out io.Writer, logger hclog.Logger) *Inspector {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Inspector{
		logger:   logger,
		reporter: NewReporter(out),
		analyzer: NewAnalyzer(logger),
	}
}

// Run inspects the bundle at productPath, prints the report and returns the
// totals. The first fatal error aborts the run.
func (i *Inspector) Run(productPath string) (Savings, error) {
	bundle, err := OpenBundle(productPath)
	if err != nil {
		return Savings{}, err
	}
	defer bundle.Close()

	i.logger.Debug("📦 Opened bundle", "path", bundle.Path, "size", bundle.Size, "entries", len(bundle.Entries()))

	md, err := bundle.ReadMetadata()
	if err != nil {
		return Savings{}, err
	}
	used := md.JobsUsed()
	i.logger.Debug("📋 Parsed metadata", "product", md.Name, "product_version", md.ProductVersion, "instance_groups", len(md.JobTypes), "releases_used", len(used))

	var total Savings
	for _, f := range bundle.Releases() {
		if err := i.reporter.ReleaseHeader(f.Name); err != nil {
			return total, err
		}

		rel, err := i.analyzeRelease(f)
		if err != nil {
			return total, err
		}
		if rel.Name == "" {
			return total, fmt.Errorf("%w: release %s has no name in release.MF", chiselerrors.ErrMissingField, rel.Path)
		}
		if err := i.reporter.Release(rel); err != nil {
			return total, err
		}

		s, err := Calculate(rel, used)
		if err != nil {
			return total, err
		}
		i.logger.Debug("🧮 Release savings", "release", rel.Name, "release_size", rel.Size, "normal", s.Normal, "aggressive", s.Aggressive)
		total = total.Add(s)
	}

	if err := i.reporter.Totals(total); err != nil {
		return total, err
	}
	return total, nil
}

func (i *Inspector) analyzeRelease(f *zip.File) (*Release, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("opening release %s: %w", f.Name, err)
	}
	defer rc.Close()

	return i.analyzer.Analyze(f.Name, int64(f.UncompressedSize64), rc)
}
