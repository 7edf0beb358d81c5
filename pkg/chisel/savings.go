package chisel

import (
	"fmt"

	chiselerrors "github.com/provide-io/chisel/pkg/chisel/errors"
)

// Savings holds the two reclaimable-bytes estimates.
//
// Normal counts compiled packages no job in the release claims. Aggressive
// also counts packages claimed only by jobs the deployment never uses, and
// those unused jobs themselves.
type Savings struct {
	Normal     int64
	Aggressive int64
}

// Add returns the sum of s and o
func (s Savings) Add(o Savings) Savings {
	return Savings{
		Normal:     s.Normal + o.Normal,
		Aggressive: s.Aggressive + o.Aggressive,
	}
}

// Calculate cross-references one release against the bundle's used jobs.
// Releases without compiled packages contribute nothing and are not looked up.
func Calculate(rel *Release, used JobsUsed) (Savings, error) {
	if !rel.HasCompiledPackages {
		return Savings{}, nil
	}
	if rel.Name == "" {
		return Savings{}, fmt.Errorf("%w: release %s has no name in release.MF", chiselerrors.ErrMissingField, rel.Path)
	}

	usedJobs, err := used.Lookup(rel.Name)
	if err != nil {
		return Savings{}, err
	}
	inUse := make(map[string]bool, len(usedJobs))
	for _, job := range usedJobs {
		inUse[job] = true
	}

	var s Savings
	for _, pkgName := range rel.Packages.Names() {
		jobs := rel.Packages[pkgName]
		size, ok := rel.PackageSizes[pkgName]
		if !ok {
			return Savings{}, fmt.Errorf("%w: release %s: size of package %q", chiselerrors.ErrMissingField, rel.Name, pkgName)
		}

		if len(jobs) == 0 {
			s.Normal += size
		}

		claimed := false
		for _, job := range jobs {
			if inUse[job] {
				claimed = true
				break
			}
		}
		if !claimed {
			s.Aggressive += size
		}
	}

	for job, size := range rel.JobSizes {
		if !inUse[job] {
			s.Aggressive += size
		}
	}

	return s, nil
}
