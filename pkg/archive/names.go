package archive

import (
	"path"
	"strings"
)

// Tarball suffixes chisel recognises, longest first so ".tar.gz" wins over ".gz"
var tarballSuffixes = []string{
	".tar.gz",
	".tar.bz2",
	".tgz",
	".tbz2",
}

// IsTarball reports whether an entry name carries a compressed tarball suffix.
func IsTarball(name string) bool {
	_, ok := tarballSuffix(name)
	return ok
}

// Stem returns the base name of an entry with its tarball suffix removed.
// Names without a known suffix lose only their last extension.
func Stem(name string) string {
	base := path.Base(name)
	if suffix, ok := tarballSuffix(base); ok {
		return strings.TrimSuffix(base, suffix)
	}
	return strings.TrimSuffix(base, path.Ext(base))
}

// InDir reports whether any parent directory of an entry name equals dir.
func InDir(name, dir string) bool {
	parts := strings.Split(strings.Trim(path.Clean(name), "/"), "/")
	for _, p := range parts[:len(parts)-1] {
		if p == dir {
			return true
		}
	}
	return false
}

func tarballSuffix(name string) (string, bool) {
	lower := strings.ToLower(name)
	for _, s := range tarballSuffixes {
		if strings.HasSuffix(lower, s) {
			return name[len(name)-len(s):], true
		}
	}
	return "", false
}
