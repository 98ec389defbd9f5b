package content

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
)

// EncodeImage reads an image file and returns its base64 content along with
// the lowercase format name ("png", "jpeg", "gif").
func EncodeImage(path string) (string, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", "", err
	}
	defer f.Close()

	return EncodeImageData(f)
}

// EncodeImageData decodes an image stream and re-encodes it in its own
// detected format. Unrecognized data fails with a decoding error.
func EncodeImageData(r io.Reader) (string, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return "", "", fmt.Errorf("failed to decode image: %w", err)
	}

	var buf bytes.Buffer
	switch format {
	case "png":
		err = png.Encode(&buf, img)
	case "jpeg":
		err = jpeg.Encode(&buf, img, nil)
	case "gif":
		err = gif.Encode(&buf, img, nil)
	default:
		return "", "", fmt.Errorf("unsupported image format: %s", format)
	}
	if err != nil {
		return "", "", fmt.Errorf("failed to re-encode %s image: %w", format, err)
	}

	return base64.StdEncoding.EncodeToString(buf.Bytes()), format, nil
}
