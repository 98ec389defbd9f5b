package extract_test

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ide-mentor/mentor-api/internal/extract"
)

func writeZip(t *testing.T, entries map[string]string) string {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, data := range entries {
		w, err := zw.Create(name)
		require.NoError(t, err, "failed to add archive entry")
		_, err = w.Write([]byte(data))
		require.NoError(t, err, "failed to write archive entry")
	}
	require.NoError(t, zw.Close(), "failed to finish archive")

	path := filepath.Join(t.TempDir(), "submission.zip")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644), "failed to write archive")
	return path
}

func TestZipExtract(t *testing.T) {
	ctx := t.Context()
	extractor := extract.NewZipExtractor()

	t.Run("ExtractsFilesAndFolders", func(t *testing.T) {
		archive := writeZip(t, map[string]string{
			"app.js":       "console.log('hi');\n",
			"src/index.ts": "export {};\n",
		})
		out := t.TempDir()

		require.NoError(t, extractor.Extract(ctx, archive, out), "failed to extract archive")

		data, err := os.ReadFile(filepath.Join(out, "app.js"))
		require.NoError(t, err, "extracted file missing")
		assert.Equal(t, "console.log('hi');\n", string(data))

		data, err = os.ReadFile(filepath.Join(out, "src", "index.ts"))
		require.NoError(t, err, "nested extracted file missing")
		assert.Equal(t, "export {};\n", string(data))
	})

	t.Run("NotAnArchive", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "submission.zip")
		require.NoError(t, os.WriteFile(path, []byte("just text"), 0o644))

		err := extractor.Extract(ctx, path, t.TempDir())
		assert.ErrorIs(t, err, extract.ErrNotArchive)
	})

	t.Run("MissingArchive", func(t *testing.T) {
		err := extractor.Extract(ctx, filepath.Join(t.TempDir(), "nope.zip"), t.TempDir())
		assert.Error(t, err, "expected error for missing archive")
	})

	t.Run("RejectsEscapingEntries", func(t *testing.T) {
		archive := writeZip(t, map[string]string{
			"../evil.txt": "gotcha",
		})
		out := filepath.Join(t.TempDir(), "out")
		require.NoError(t, os.MkdirAll(out, 0o755))

		err := extractor.Extract(ctx, archive, out)
		require.Error(t, err, "entry escaping the destination must be rejected")
		assert.Contains(t, err.Error(), "escapes destination")

		_, statErr := os.Stat(filepath.Join(filepath.Dir(out), "evil.txt"))
		assert.True(t, os.IsNotExist(statErr), "escaping entry must not be written")
	})
}
