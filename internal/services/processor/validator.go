package processor

import (
	"bytes"
	"fmt"
	"image"
)

// ValidateImage checks size and that the header names a registered format,
// without decoding pixels.
func (p *ImageProcessor) ValidateImage(data []byte, maxSize int64) error {
	if len(data) == 0 {
		return fmt.Errorf("empty image data")
	}

	if size := int64(len(data)); maxSize > 0 && size > maxSize {
		return fmt.Errorf("file size %d exceeds maximum allowed size %d", size, maxSize)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("invalid image format: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return fmt.Errorf("invalid image dimensions %dx%d", cfg.Width, cfg.Height)
	}

	return nil
}
