package imageprocessor

import (
	"fmt"
	"image"
	"os"

	// Register decoders for the dimension probe
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Probe reads just enough of an image file to learn its pixel dimensions.
// It never decodes pixel data, so it is cheap enough to run across the whole
// candidate list before any comparison work starts.
func Probe(path string) (width, height int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, fmt.Errorf("cannot open image %s: %v", path, err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("cannot decode image header %s: %v", path, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return 0, 0, fmt.Errorf("image %s reports empty dimensions", path)
	}

	return cfg.Width, cfg.Height, nil
}
