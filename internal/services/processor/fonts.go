package processor

import (
	"fmt"
	"os"
	"sync"

	"github.com/golang/freetype/truetype"
	"github.com/phambaophuc/watermark-bot/internal/metrics"
	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
)

var fallbackFont struct {
	once sync.Once
	font *truetype.Font
	err  error
}

// fontCache keeps parsed fonts by path. Parsed fonts are safe to share; the
// faces built from them are not, so every render gets its own face.
type fontCache struct {
	mu    sync.RWMutex
	fonts map[string]*truetype.Font
}

func newFontCache() *fontCache {
	return &fontCache{fonts: make(map[string]*truetype.Font)}
}

func (c *fontCache) load(path string) (*truetype.Font, error) {
	c.mu.RLock()
	f, ok := c.fonts[path]
	c.mu.RUnlock()
	if ok {
		return f, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err = truetype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font %s: %w", path, err)
	}

	c.mu.Lock()
	c.fonts[path] = f
	c.mu.Unlock()
	return f, nil
}

// face builds a face for path at size points. A missing or broken font is
// not fatal: it is logged and the built-in Go Regular font is used instead.
// The bool reports whether the fallback was taken.
func (p *ImageProcessor) face(path string, size float64) (font.Face, bool) {
	opts := &truetype.Options{Size: size, Hinting: font.HintingNone}

	if path != "" {
		f, err := p.fonts.load(path)
		if err == nil {
			return truetype.NewFace(f, opts), false
		}
		p.logger.Warn("Font unavailable, using built-in fallback",
			zap.String("font_path", path),
			zap.Error(err))
	} else {
		p.logger.Warn("No font configured, using built-in fallback")
	}
	metrics.IncFontFallback()

	fallbackFont.once.Do(func() {
		fallbackFont.font, fallbackFont.err = truetype.Parse(goregular.TTF)
	})
	if fallbackFont.err != nil {
		p.logger.Error("Built-in font failed to parse", zap.Error(fallbackFont.err))
		return basicfont.Face7x13, true
	}

	return truetype.NewFace(fallbackFont.font, opts), true
}
