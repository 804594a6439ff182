package faceclient

import (
	"bytes"
	"fmt"
	"image"

	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// MaxImageBytes caps uploaded snapshot size. Webcam frames are well under
// this; anything bigger is rejected before it reaches the face service.
const MaxImageBytes = 10 << 20

// ValidateImage checks that the upload is a decodable JPEG, PNG, or WebP
// within the size cap, returning the detected format.
func ValidateImage(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("image data required")
	}
	if len(data) > MaxImageBytes {
		return "", fmt.Errorf("image exceeds %d byte limit", MaxImageBytes)
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("unsupported or corrupt image: %w", err)
	}

	switch format {
	case "jpeg", "png", "webp":
		return format, nil
	default:
		return "", fmt.Errorf("unsupported image format %q", format)
	}
}
