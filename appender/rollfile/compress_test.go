package rollfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/gzip"
	"github.com/pierrec/lz4/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompressArchive_NoneLeavesFileUntouched(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log.1")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	require.NoError(t, compressArchive(path, CodecNone))

	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestCompressArchive_GzipProducesReadableOutputAndRemovesOriginal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log.1")
	require.NoError(t, os.WriteFile(path, []byte("hello rotated log"), 0o644))

	require.NoError(t, compressArchive(path, CodecGzip))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "uncompressed original should be removed")

	f, err := os.Open(path + ".gz")
	require.NoError(t, err)
	defer f.Close()

	r, err := gzip.NewReader(f)
	require.NoError(t, err)
	defer r.Close()

	buf := make([]byte, 64)
	n, _ := r.Read(buf)
	assert.Contains(t, string(buf[:n]), "hello rotated log")
}

func TestCompressArchive_SnappyProducesReadableOutput(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log.1")
	require.NoError(t, os.WriteFile(path, []byte("snappy payload"), 0o644))

	require.NoError(t, compressArchive(path, CodecSnappy))

	f, err := os.Open(path + ".sz")
	require.NoError(t, err)
	defer f.Close()

	r := snappy.NewReader(f)
	buf := make([]byte, 64)
	n, _ := r.Read(buf)
	assert.Equal(t, "snappy payload", string(buf[:n]))
}

func TestCompressArchive_LZ4ProducesReadableOutput(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log.1")
	require.NoError(t, os.WriteFile(path, []byte("lz4 payload"), 0o644))

	require.NoError(t, compressArchive(path, CodecLZ4))

	f, err := os.Open(path + ".lz4")
	require.NoError(t, err)
	defer f.Close()

	r := lz4.NewReader(f)
	buf := make([]byte, 64)
	n, _ := r.Read(buf)
	assert.Equal(t, "lz4 payload", string(buf[:n]))
}

func TestCompressArchive_MissingSourceReturnsError(t *testing.T) {
	dir := t.TempDir()
	err := compressArchive(filepath.Join(dir, "does-not-exist"), CodecGzip)
	assert.Error(t, err)
}
