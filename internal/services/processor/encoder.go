package processor

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"io"

	"github.com/disintegration/imaging"

	// Decoders beyond the ones imaging registers.
	_ "golang.org/x/image/webp"
)

func (p *ImageProcessor) decodeImage(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, newRenderError(KindDecode, "empty input")
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &RenderError{Kind: KindDecode, Err: err}
	}

	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, newRenderError(KindDecode, "invalid image dimensions %dx%d", b.Dx(), b.Dy())
	}

	return img, nil
}

// flatten returns a zero-origin opaque copy of img laid over black.
func flatten(img image.Image) *image.NRGBA {
	src := imaging.Clone(img)
	b := src.Bounds()
	canvas := imaging.New(b.Dx(), b.Dy(), color.NRGBA{A: 255})
	return imaging.Overlay(canvas, src, image.Pt(0, 0), 1.0)
}

func (p *ImageProcessor) encodeImage(w io.Writer, img image.Image, quality int) error {
	return imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(clampQuality(quality)))
}

func clampQuality(q int) int {
	if q <= 0 {
		return jpeg.DefaultQuality
	}
	return min(100, q)
}
