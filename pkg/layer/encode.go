package layer

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// Raster formats accepted by WriteImage, keyed by file extension.
const (
	FormatPNG  = "png"
	FormatJPEG = "jpeg"
	FormatTIFF = "tiff"
	FormatBMP  = "bmp"
)

var formatsByExt = map[string]string{
	".png":  FormatPNG,
	".jpg":  FormatJPEG,
	".jpeg": FormatJPEG,
	".tif":  FormatTIFF,
	".tiff": FormatTIFF,
	".bmp":  FormatBMP,
}

// FormatForPath returns the raster format implied by path's extension.
func FormatForPath(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if f, ok := formatsByExt[ext]; ok {
		return f, nil
	}
	return "", fmt.Errorf("unsupported image extension %q (must be .png, .jpg, .jpeg, .tif, .tiff or .bmp)", ext)
}

// Encode writes img to w in the given format.
func Encode(w io.Writer, img image.Image, format string) error {
	switch format {
	case FormatPNG:
		return png.Encode(w, img)
	case FormatJPEG:
		return jpeg.Encode(w, img, &jpeg.Options{Quality: 95})
	case FormatTIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	case FormatBMP:
		return bmp.Encode(w, img)
	default:
		return fmt.Errorf("unknown image format: %s", format)
	}
}

// WriteImage encodes img to path in the format implied by its extension.
func WriteImage(path string, img image.Image) error {
	format, err := FormatForPath(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Encode(f, img, format); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
