package content_test

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ide-mentor/mentor-api/internal/content"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img), "failed to encode fixture image")
	return buf.Bytes()
}

func TestEncodeImage(t *testing.T) {
	t.Run("EncodesPNG", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "diagram.png")
		require.NoError(t, os.WriteFile(path, pngBytes(t), 0o644))

		encoded, format, err := content.EncodeImage(path)
		require.NoError(t, err, "failed to encode image")

		assert.Equal(t, "png", format, "detected format did not match")

		raw, err := base64.StdEncoding.DecodeString(encoded)
		require.NoError(t, err, "output was not valid base64")

		decoded, _, err := image.Decode(bytes.NewReader(raw))
		require.NoError(t, err, "encoded payload was not a valid image")
		assert.Equal(t, image.Rect(0, 0, 2, 2), decoded.Bounds(), "image dimensions changed")
	})

	t.Run("MissingFile", func(t *testing.T) {
		_, _, err := content.EncodeImage(filepath.Join(t.TempDir(), "nope.png"))
		assert.Error(t, err, "expected error for missing file")
	})

	t.Run("RejectsNonImageData", func(t *testing.T) {
		_, _, err := content.EncodeImageData(strings.NewReader("not an image"))
		require.Error(t, err, "expected decode failure")
		assert.Contains(t, err.Error(), "failed to decode image")
	})
}
