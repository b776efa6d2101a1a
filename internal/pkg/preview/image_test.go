package preview

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeTestPNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create test image: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("Failed to encode test image: %v", err)
	}
}

func TestImageDimensions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.png")
	writeTestPNG(t, path, 640, 480)

	w, h, err := ImageDimensions(path)
	if err != nil {
		t.Fatalf("ImageDimensions failed: %v", err)
	}
	if w != 640 || h != 480 {
		t.Errorf("Expected 640x480, got %dx%d", w, h)
	}
}

func TestImageDimensionsErrors(t *testing.T) {
	dir := t.TempDir()

	if _, _, err := ImageDimensions(filepath.Join(dir, "missing.png")); err == nil {
		t.Error("Expected error for missing file")
	}

	garbage := filepath.Join(dir, "garbage.png")
	if err := os.WriteFile(garbage, []byte("not an image"), 0o644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}
	if _, _, err := ImageDimensions(garbage); err == nil {
		t.Error("Expected error for non-image bytes")
	}
}

func TestImageThumbnailFitsBounds(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.png")
	dst := filepath.Join(dir, "thumb.jpg")
	writeTestPNG(t, src, 800, 400)

	p := NewProcessor(300, 80, "ffmpeg", "ffprobe", time.Second)
	if err := p.ImageThumbnail(src, dst); err != nil {
		t.Fatalf("ImageThumbnail failed: %v", err)
	}

	w, h, err := ImageDimensions(dst)
	if err != nil {
		t.Fatalf("Failed to read thumbnail: %v", err)
	}
	if w > 300 || h > 300 {
		t.Errorf("Thumbnail %dx%d exceeds the 300px bounding box", w, h)
	}
	// Fit preserves aspect ratio: 800x400 becomes 300x150.
	if w != 300 || h != 150 {
		t.Errorf("Expected 300x150, got %dx%d", w, h)
	}
}

func TestImageThumbnailSmallSourceNotUpscaled(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "small.png")
	dst := filepath.Join(dir, "thumb.jpg")
	writeTestPNG(t, src, 100, 80)

	p := NewProcessor(300, 80, "ffmpeg", "ffprobe", time.Second)
	if err := p.ImageThumbnail(src, dst); err != nil {
		t.Fatalf("ImageThumbnail failed: %v", err)
	}
	w, h, err := ImageDimensions(dst)
	if err != nil {
		t.Fatalf("Failed to read thumbnail: %v", err)
	}
	if w != 100 || h != 80 {
		t.Errorf("Expected 100x80 (no upscaling), got %dx%d", w, h)
	}
}

func TestCaptureTimeWithoutExif(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plain.png")
	writeTestPNG(t, path, 10, 10)

	// PNGs carry no EXIF; extraction must fail cleanly.
	if _, err := CaptureTime(path); err == nil {
		t.Error("Expected error for image without EXIF data")
	}
}
