package chisel

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/dsnet/compress/bzip2"
	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"
)

type fixtureFile struct {
	name string
	body []byte
	dir  bool
}

func file(name string, body []byte) fixtureFile {
	return fixtureFile{name: name, body: body}
}

func dir(name string) fixtureFile {
	return fixtureFile{name: name, dir: true}
}

func writeTar(t *testing.T, w io.Writer, files []fixtureFile) {
	t.Helper()

	tw := tar.NewWriter(w)
	for _, f := range files {
		hdr := &tar.Header{Name: f.name, Mode: 0644, Size: int64(len(f.body)), Typeflag: tar.TypeReg}
		if f.dir {
			hdr = &tar.Header{Name: f.name, Mode: 0755, Typeflag: tar.TypeDir}
		}
		require.NoError(t, tw.WriteHeader(hdr))
		if !f.dir {
			_, err := tw.Write(f.body)
			require.NoError(t, err)
		}
	}
	require.NoError(t, tw.Close())
}

func tgz(t *testing.T, files ...fixtureFile) []byte {
	t.Helper()

	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	writeTar(t, gw, files)
	require.NoError(t, gw.Close())
	return buf.Bytes()
}

func tbz2(t *testing.T, files ...fixtureFile) []byte {
	t.Helper()

	var buf bytes.Buffer
	bw, err := bzip2.NewWriter(&buf, &bzip2.WriterConfig{Level: 9})
	require.NoError(t, err)
	writeTar(t, bw, files)
	require.NoError(t, bw.Close())
	return buf.Bytes()
}

// jobTarball builds a job tarball whose job.MF carries the given manifest text
func jobTarball(t *testing.T, manifest string) []byte {
	t.Helper()
	return tgz(t,
		file("./job.MF", []byte(manifest)),
		file("./templates/ctl.erb", []byte("#!/bin/bash\n")),
	)
}

func writeZip(t *testing.T, files ...fixtureFile) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "product.pivotal")
	out, err := os.Create(path)
	require.NoError(t, err)
	defer out.Close()

	zw := zip.NewWriter(out)
	for _, f := range files {
		if f.dir {
			_, err := zw.Create(f.name)
			require.NoError(t, err)
			continue
		}
		w, err := zw.Create(f.name)
		require.NoError(t, err)
		_, err = w.Write(f.body)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return path
}

func testLogger(t *testing.T, out io.Writer) hclog.Logger {
	t.Helper()
	return hclog.New(&hclog.LoggerOptions{
		Name:        t.Name(),
		Level:       hclog.Trace,
		Output:      out,
		DisableTime: true,
	})
}
