package preview

import (
	"fmt"
	"image"
	"os"
	"time"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// ImageDimensions reads pixel dimensions from the image header without
// decoding the full image.
func ImageDimensions(path string) (width, height int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to decode image header: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}

// ImageThumbnail writes a JPEG thumbnail of src to dst, fitted inside the
// configured bounding box with EXIF orientation applied.
func (p *Processor) ImageThumbnail(src, dst string) error {
	img, err := imaging.Open(src, imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("failed to open image: %w", err)
	}
	thumb := imaging.Fit(img, p.ThumbMaxSize, p.ThumbMaxSize, imaging.Lanczos)
	if err := imaging.Save(thumb, dst, imaging.JPEGQuality(p.ThumbQuality)); err != nil {
		return fmt.Errorf("failed to save thumbnail: %w", err)
	}
	return nil
}

// CaptureTime extracts the embedded capture timestamp of a photo.
// Returns an error when the file carries no usable EXIF data.
func CaptureTime(path string) (time.Time, error) {
	f, err := os.Open(path)
	if err != nil {
		return time.Time{}, err
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse EXIF: %w", err)
	}
	t, err := x.DateTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("no capture timestamp in EXIF: %w", err)
	}
	return t, nil
}
