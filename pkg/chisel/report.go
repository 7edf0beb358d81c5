package chisel

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

const (
	releaseSeparator = "---"
	tableIndent      = 4
)

// Reporter prints per-release findings and the final totals
type Reporter struct {
	out io.Writer
}

// NewReporter creates a reporter writing to out
func NewReporter(out io.Writer) *Reporter {
	return &Reporter{out: out}
}

// ReleaseHeader announces the release about to be parsed
func (r *Reporter) ReleaseHeader(path string) error {
	_, err := fmt.Fprintf(r.out, "%s\nParsing release: %s\n", releaseSeparator, path)
	return err
}

// Release prints the name, compiled-packages flag and package table
func (r *Reporter) Release(rel *Release) error {
	if _, err := fmt.Fprintf(r.out, "Release name: %s\nHas compiled packages: %t\nPackages:\n",
		rel.Name, rel.HasCompiledPackages); err != nil {
		return err
	}
	return r.packageTable(rel.Packages)
}

// Totals prints the two savings estimates
func (r *Reporter) Totals(s Savings) error {
	_, err := fmt.Fprintf(r.out, "Normal: Could save up to %s\nInsane: Could save up to %s\n",
		FormatSize(s.Normal), FormatSize(s.Aggressive))
	return err
}

// packageTable renders usage as indented YAML. Map keys come out sorted,
// which keeps reports identical between runs.
func (r *Reporter) packageTable(usage PackageUsage) error {
	iw := newIndentWriter("    ", r.out)

	enc := yaml.NewEncoder(iw)
	enc.SetIndent(tableIndent)
	if err := enc.Encode(map[string][]string(usage)); err != nil {
		return fmt.Errorf("rendering package table: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("rendering package table: %w", err)
	}
	return iw.Flush()
}
