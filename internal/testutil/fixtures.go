package testutil

import (
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
)

// DecodeImage decodes an image from a reader and returns the image and format.
func DecodeImage(r io.Reader) (image.Image, string, error) {
	return image.Decode(r)
}
