package chisel

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	chiselerrors "github.com/provide-io/chisel/pkg/chisel/errors"
)

func TestAnalyzeCompiledRelease(t *testing.T) {
	var logs bytes.Buffer
	analyzer := NewAnalyzer(testLogger(t, &logs))

	serverJob := jobTarball(t, "name: redis-server\npackages:\n- redis\n- golang\n")
	backupJob := jobTarball(t, "name: redis-backups\npackages: [redis, s3cmd]\n")
	errandJob := jobTarball(t, "name: smoke-tests\n")

	release := tgz(t,
		file("./release.MF", []byte("name: redis\nversion: 1.0.0\n")),
		dir("./jobs/"),
		file("./jobs/redis-server.tgz", serverJob),
		file("./jobs/redis-backups.tgz", backupJob),
		file("./jobs/smoke-tests.tgz", errandJob),
		dir("./compiled_packages/"),
		file("./compiled_packages/redis.tgz", bytes.Repeat([]byte{1}, 2048)),
		file("./compiled_packages/golang.tgz", bytes.Repeat([]byte{2}, 4096)),
		file("./compiled_packages/orphan.tgz", bytes.Repeat([]byte{3}, 1024)),
		file("./license.tgz", []byte("MIT")),
	)

	rel, err := analyzer.Analyze("releases/redis-1.0.0.tgz", int64(len(release)), bytes.NewReader(release))
	require.NoError(t, err)

	assert.Equal(t, "redis", rel.Name)
	assert.Equal(t, "GZIP", rel.Codec)
	assert.True(t, rel.HasCompiledPackages)
	assert.Equal(t, PackageUsage{
		"redis":  {"redis-server", "redis-backups"},
		"golang": {"redis-server"},
		"orphan": {},
	}, rel.Packages)
	assert.Equal(t, map[string]int64{"redis": 2048, "golang": 4096, "orphan": 1024}, rel.PackageSizes)
	assert.Equal(t, map[string]int64{
		"redis-server":  int64(len(serverJob)),
		"redis-backups": int64(len(backupJob)),
		"smoke-tests":   int64(len(errandJob)),
	}, rel.JobSizes)
	assert.Equal(t, []string{"golang", "orphan", "redis"}, rel.Packages.Names())

	out := logs.String()
	assert.Contains(t, out, "Package referenced in job manifest not found in release")
	assert.Contains(t, out, "package=s3cmd")
	assert.Contains(t, out, "Job manifest has no packages section")
	assert.Contains(t, out, "job=smoke-tests")
}

func TestAnalyzeReleaseWithoutCompiledPackages(t *testing.T) {
	release := tgz(t,
		file("release.MF", []byte("name: syslog\n")),
		file("jobs/syslog_forwarder.tgz", jobTarball(t, "packages: [rsyslog]\n")),
		file("packages/rsyslog.tgz", []byte("source")),
	)

	rel, err := NewAnalyzer(nil).Analyze("releases/syslog.tgz", int64(len(release)), bytes.NewReader(release))
	require.NoError(t, err)

	assert.Equal(t, "syslog", rel.Name)
	assert.False(t, rel.HasCompiledPackages)
	assert.Empty(t, rel.Packages)
	assert.Empty(t, rel.PackageSizes)
	assert.Empty(t, rel.JobSizes)
}

func TestAnalyzeLastManifestWins(t *testing.T) {
	release := tgz(t,
		file("release.MF", []byte("name: first\n")),
		file("jobs/web.tgz", tgz(t,
			file("job.MF", []byte("packages: [nginx]\n")),
			file("extra/job.MF", []byte("packages: []\n")),
		)),
		file("compiled_packages/nginx.tgz", []byte("nginx")),
		file("nested/release.MF", []byte("name: second\n")),
	)

	rel, err := NewAnalyzer(nil).Analyze("releases/web.tgz", 0, bytes.NewReader(release))
	require.NoError(t, err)

	assert.Equal(t, "second", rel.Name)
	assert.Equal(t, PackageUsage{"nginx": {}}, rel.Packages)
}

func TestAnalyzeMissingReleaseName(t *testing.T) {
	release := tgz(t,
		file("release.MF", []byte("version: 3\n")),
		file("compiled_packages/nginx.tgz", []byte("nginx")),
	)

	rel, err := NewAnalyzer(nil).Analyze("releases/web.tgz", 0, bytes.NewReader(release))
	require.NoError(t, err)
	assert.Empty(t, rel.Name)
}

func TestAnalyzeBzip2Release(t *testing.T) {
	release := tbz2(t,
		file("release.MF", []byte("name: mysql\n")),
		file("jobs/mysql.tgz", tbz2(t, file("job.MF", []byte("packages: [mariadb]\n")))),
		file("compiled_packages/mariadb.tar.gz", bytes.Repeat([]byte{9}, 512)),
	)

	rel, err := NewAnalyzer(nil).Analyze("releases/mysql.tbz2", 0, bytes.NewReader(release))
	require.NoError(t, err)

	assert.Equal(t, "BZIP2", rel.Codec)
	assert.Equal(t, PackageUsage{"mariadb": {"mysql"}}, rel.Packages)
	assert.Equal(t, map[string]int64{"mariadb": 512}, rel.PackageSizes)
}

func TestAnalyzeFailures(t *testing.T) {
	testCases := []struct {
		name    string
		release func(t *testing.T) []byte
		wantErr error
	}{
		{
			name:    "not compressed",
			release: func(t *testing.T) []byte { return []byte("plain text release") },
			wantErr: chiselerrors.ErrUnsupportedCompression,
		},
		{
			name: "malformed release manifest",
			release: func(t *testing.T) []byte {
				return tgz(t, file("release.MF", []byte("name: [redis\n")))
			},
			wantErr: chiselerrors.ErrMalformedDocument,
		},
		{
			name: "malformed job manifest",
			release: func(t *testing.T) []byte {
				return tgz(t, file("jobs/redis.tgz", jobTarball(t, "packages: {oops\n")))
			},
			wantErr: chiselerrors.ErrMalformedDocument,
		},
		{
			name: "job tarball is not compressed",
			release: func(t *testing.T) []byte {
				return tgz(t, file("jobs/redis.tgz", []byte("not a tarball")))
			},
			wantErr: chiselerrors.ErrUnsupportedCompression,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			data := tc.release(t)
			_, err := NewAnalyzer(nil).Analyze("releases/broken.tgz", 0, bytes.NewReader(data))
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestAnalyzePackagesSectionWarnings(t *testing.T) {
	testCases := []struct {
		name     string
		manifest string
		wantWarn bool
	}{
		{name: "empty list", manifest: "name: web\npackages: []\n", wantWarn: false},
		{name: "listed", manifest: "name: web\npackages: [nginx]\n", wantWarn: false},
		{name: "missing key", manifest: "name: web\n", wantWarn: true},
		{name: "null value", manifest: "name: web\npackages:\n", wantWarn: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var logs bytes.Buffer
			release := tgz(t,
				file("release.MF", []byte("name: web\ncommit_hash: 1a2b3c\n")),
				file("jobs/web.tgz", jobTarball(t, tc.manifest)),
				file("compiled_packages/nginx.tgz", []byte("nginx")),
			)

			_, err := NewAnalyzer(testLogger(t, &logs)).Analyze("releases/web.tgz", 0, bytes.NewReader(release))
			require.NoError(t, err)

			out := logs.String()
			assert.Contains(t, out, "commit_hash=1a2b3c")
			if tc.wantWarn {
				assert.Contains(t, out, "Job manifest has no packages section")
			} else {
				assert.NotContains(t, out, "[WARN]")
			}
		})
	}
}
