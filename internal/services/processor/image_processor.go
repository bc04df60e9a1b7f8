package processor

import (
	"bytes"
	"fmt"
	"image"
	"strings"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	"github.com/phambaophuc/watermark-bot/internal/metrics"
	"github.com/phambaophuc/watermark-bot/internal/models"
	"go.uber.org/zap"
)

const (
	DefaultWorkers = 5
)

// ImageProcessor burns text watermarks into images. It holds no per-request
// state, so one instance serves concurrent calls.
type ImageProcessor struct {
	logger *zap.Logger
	fonts  *fontCache
}

func NewImageProcessor(logger *zap.Logger) *ImageProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImageProcessor{
		logger: logger,
		fonts:  newFontCache(),
	}
}

// Apply decodes src, watermarks it per spec and returns JPEG bytes. Any
// failure is a *RenderError and no bytes are returned.
func (p *ImageProcessor) Apply(src []byte, spec models.WatermarkSpec) (out []byte, err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("Watermark render panicked", zap.Any("panic", r))
			out, err = nil, newRenderError(KindRender, "%v", r)
		}
		metrics.ObserveRender(string(spec.Layout), err == nil, time.Since(start))
	}()

	if err := validateSpec(spec); err != nil {
		return nil, err
	}

	img, err := p.decodeImage(src)
	if err != nil {
		return nil, err
	}

	result, err := p.render(img, spec)
	if err != nil {
		return nil, err
	}

	buffer := &bytes.Buffer{}
	if err := p.encodeImage(buffer, result, spec.Quality); err != nil {
		return nil, &RenderError{Kind: KindEncode, Err: err}
	}
	if buffer.Len() == 0 {
		return nil, newRenderError(KindEncode, "encoder produced no data")
	}

	return buffer.Bytes(), nil
}

// Render watermarks an already decoded image. img is only read.
func (p *ImageProcessor) Render(img image.Image, spec models.WatermarkSpec) (result *image.NRGBA, err error) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("Watermark render panicked", zap.Any("panic", r))
			result, err = nil, newRenderError(KindRender, "%v", r)
		}
	}()

	if err := validateSpec(spec); err != nil {
		return nil, err
	}
	if img == nil {
		return nil, newRenderError(KindDecode, "nil image provided")
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, newRenderError(KindDecode, "invalid image dimensions %dx%d", b.Dx(), b.Dy())
	}

	return p.render(img, spec)
}

func (p *ImageProcessor) render(img image.Image, spec models.WatermarkSpec) (*image.NRGBA, error) {
	base := flatten(img)

	face, _ := p.face(spec.FontPath, spec.FontSize)
	defer face.Close()

	overlay := p.drawOverlay(base.Bounds(), spec, face)
	return imaging.Overlay(base, overlay, image.Pt(0, 0), 1.0), nil
}

// BatchApply watermarks every input with the same spec on a small worker
// pool. Results line up with inputs; failures carry Error instead of Buffer.
func (p *ImageProcessor) BatchApply(inputs [][]byte, spec models.WatermarkSpec) []models.BatchImage {
	results := make([]models.BatchImage, len(inputs))
	if len(inputs) == 0 {
		return results
	}

	jobs := make(chan int, len(inputs))

	numWorkers := DefaultWorkers
	if len(inputs) < numWorkers {
		numWorkers = len(inputs)
	}

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = p.applyJob(i, inputs[i], spec)
			}
		}()
	}

	for i := range inputs {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}

func (p *ImageProcessor) applyJob(i int, src []byte, spec models.WatermarkSpec) models.BatchImage {
	out, err := p.Apply(src, spec)
	if err != nil {
		return models.BatchImage{
			Error: fmt.Sprintf("failed to process image %d: %v", i, err),
		}
	}

	return models.BatchImage{
		Buffer:   bytes.NewBuffer(out),
		FileSize: int64(len(out)),
	}
}

func validateSpec(spec models.WatermarkSpec) error {
	if !spec.Layout.Valid() {
		return newRenderError(KindSpec, "unknown layout %q", spec.Layout)
	}
	if spec.FontSize <= 0 {
		return newRenderError(KindSpec, "font size must be positive, got %v", spec.FontSize)
	}
	switch spec.Layout {
	case models.LayoutTiled:
		if len(spec.Texts) == 0 || strings.TrimSpace(spec.Texts[0]) == "" {
			return newRenderError(KindSpec, "tiled layout needs a first text")
		}
	default:
		for _, t := range spec.Texts {
			if strings.TrimSpace(t) != "" {
				return nil
			}
		}
		return newRenderError(KindSpec, "no watermark text")
	}
	return nil
}
