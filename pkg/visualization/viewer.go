// Package visualization turns rasters into image files.
package visualization

import (
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"io"
	"os"

	"golang.org/x/image/bmp"

	"bin2gif/internal/models"
)

// ToPaletted wraps the raster indices and palette as an image.Paletted.
// The pixel buffer is shared with r.
func ToPaletted(r *models.Raster) *image.Paletted {
	pal := make(color.Palette, len(r.Palette))
	for i, rgb := range r.Palette {
		pal[i] = color.RGBA{R: rgb[0], G: rgb[1], B: rgb[2], A: 0xff}
	}
	return &image.Paletted{
		Pix:     r.Indices,
		Stride:  r.Width,
		Rect:    image.Rect(0, 0, r.Width, r.Height),
		Palette: pal,
	}
}

// Encode writes r to w in the given format: gif, png or bmp
func Encode(w io.Writer, r *models.Raster, format string) error {
	if len(r.Indices) != r.Width*r.Height {
		return fmt.Errorf("raster holds %d indices, expected %dx%d", len(r.Indices), r.Width, r.Height)
	}
	img := ToPaletted(r)

	switch format {
	case "gif":
		// Single frame, no animation
		return gif.EncodeAll(w, &gif.GIF{
			Image: []*image.Paletted{img},
			Delay: []int{0},
		})
	case "png":
		return png.Encode(w, img)
	case "bmp":
		return bmp.Encode(w, img)
	default:
		return fmt.Errorf("unsupported image format: %s (must be gif, png, or bmp)", format)
	}
}

// Save writes r as an image file
func Save(path string, r *models.Raster, format string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := Encode(file, r, format); err != nil {
		file.Close()
		os.Remove(path)
		return err
	}
	return file.Close()
}
