// Package imageops implements the pre-pipeline image transforms: resize with
// background framing, tone-curve application, and RGB333 quantization.
package imageops

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/nfnt/resize"
)

// Filter selects the resampling kernel used by Resize.
type Filter string

const (
	FilterNearest    Filter = "nearest"
	FilterCatmullRom Filter = "catmullrom"
	FilterLanczos3   Filter = "lanczos3"
)

func interpFor(f Filter) resize.InterpolationFunction {
	switch f {
	case FilterNearest:
		return resize.NearestNeighbor
	case FilterCatmullRom:
		return resize.Bicubic
	case FilterLanczos3:
		return resize.Lanczos3
	default:
		return resize.Lanczos3
	}
}

// preResizeThreshold is the §4.2 "exceeds 2x target" cutoff.
const preResizeThreshold = 2

// Resize implements spec.md §4.2. It returns the resized/framed image and
// whether the pre-resize stage fired.
func Resize(img image.Image, w, h int, filter Filter, keepRatio bool, background color.Color) (image.Image, bool) {
	wasPreResized := false
	bounds := img.Bounds()
	sw, sh := bounds.Dx(), bounds.Dy()

	if sw > preResizeThreshold*w || sh > preResizeThreshold*h {
		pw, ph := preResizeThreshold*w, preResizeThreshold*h
		if keepRatio {
			// Fit inside (2w, 2h) without distorting, so the main stage
			// can still letterbox with the same framing as ResizeMask.
			pw, ph, _, _ = frame(sw, sh, pw, ph)
		}
		img = resize.Resize(uint(pw), uint(ph), img, resize.Lanczos3)
		wasPreResized = true
	}

	if !keepRatio {
		out := resize.Resize(uint(w), uint(h), img, interpFor(filter))
		return out, wasPreResized
	}

	fw, fh, offX, offY := frame(img.Bounds().Dx(), img.Bounds().Dy(), w, h)
	scaled := resize.Resize(uint(fw), uint(fh), img, interpFor(filter))

	canvas := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(canvas, canvas.Bounds(), &image.Uniform{C: background}, image.Point{}, draw.Src)
	draw.Draw(canvas, image.Rect(offX, offY, offX+fw, offY+fh), scaled, image.Point{}, draw.Src)

	return canvas, wasPreResized
}

// frame computes the scaled rectangle and centering offsets shared by Resize
// and ResizeMask, so image and mask framing can never diverge.
func frame(sw, sh, w, h int) (fw, fh, offX, offY int) {
	if sw == 0 || sh == 0 {
		return w, h, 0, 0
	}
	scale := float64(w) / float64(sw)
	if hs := float64(h) / float64(sh); hs < scale {
		scale = hs
	}
	fw = int(float64(sw)*scale + 0.5)
	fh = int(float64(sh)*scale + 0.5)
	if fw < 1 {
		fw = 1
	}
	if fh < 1 {
		fh = 1
	}
	offX = (w - fw) / 2
	offY = (h - fh) / 2
	return fw, fh, offX, offY
}

// ResizeMask resizes a dither mask using nearest-neighbor sampling and the
// identical framing used for the main image: areas outside the scaled
// rectangle default to 255 (no dithering), per spec.md §4.2.
func ResizeMask(mask image.Image, w, h int, keepRatio bool) *image.Gray {
	if !keepRatio {
		scaled := resize.Resize(uint(w), uint(h), mask, resize.NearestNeighbor)
		return toGray(scaled, w, h, 0, 0, w, h)
	}

	bounds := mask.Bounds()
	fw, fh, offX, offY := frame(bounds.Dx(), bounds.Dy(), w, h)
	scaled := resize.Resize(uint(fw), uint(fh), mask, resize.NearestNeighbor)
	return toGray(scaled, w, h, offX, offY, fw, fh)
}

// toGray pastes scaled onto a w x h canvas at (offX,offY), filling everything
// outside that rectangle with 255 (no dithering selected by default).
func toGray(scaled image.Image, w, h, offX, offY, fw, fh int) *image.Gray {
	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			out.SetGray(x, y, color.Gray{Y: 255})
		}
	}
	draw.Draw(out, image.Rect(offX, offY, offX+fw, offY+fh), scaled, image.Point{}, draw.Src)
	return out
}
