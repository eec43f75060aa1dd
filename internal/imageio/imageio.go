// Package imageio decodes the raster formats open_image and run_conversion
// accept (png, jpg, jpeg, webp, gif, bmp), registering each codec with the
// standard library's image package the way deepteams-webp registers
// itself, then decoding through the common image.Decode entry point.
package imageio

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/deepteams/webp"
	"github.com/ochrefield/pcetile/internal/pceerr"
	_ "golang.org/x/image/bmp"
)

// SupportedExtensions lists the extensions open_image and run_conversion
// accept, per spec.md §6.1.
var SupportedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".webp": true,
	".gif":  true,
	".bmp":  true,
}

// ValidateExtension checks path's extension against SupportedExtensions.
func ValidateExtension(path string) error {
	ext := strings.ToLower(filepath.Ext(path))
	if !SupportedExtensions[ext] {
		return pceerr.New(pceerr.InvalidParameter, fmt.Sprintf("unsupported image extension %q", ext))
	}
	return nil
}

// Load opens and decodes an image file at path.
func Load(path string) (image.Image, error) {
	if err := ValidateExtension(path); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, pceerr.Wrap(pceerr.InvalidPath, fmt.Sprintf("image not found: %s", path), err)
		}
		return nil, pceerr.Wrap(pceerr.IOFailure, fmt.Sprintf("failed to open %s", path), err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, pceerr.Wrap(pceerr.DecodeFailure, fmt.Sprintf("failed to decode %s", path), err)
	}
	return img, nil
}
