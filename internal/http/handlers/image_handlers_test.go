package handlers

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/phambaophuc/watermark-bot/internal/config"
	"github.com/phambaophuc/watermark-bot/internal/models"
	"github.com/phambaophuc/watermark-bot/internal/services/processor"
	"github.com/phambaophuc/watermark-bot/internal/services/style"
	"github.com/phambaophuc/watermark-bot/internal/services/watermark"
	"go.uber.org/zap"
)

func testConfig() *config.Config {
	return &config.Config{
		Storage: config.StorageConfig{MaxFileSize: 1 << 20},
		Watermark: config.WatermarkConfig{
			Texts:        []string{"sample"},
			Layout:       models.LayoutAnchored,
			FontPath:     "does-not-exist.ttf",
			FontSize:     16,
			Margin:       5,
			Padding:      20,
			Angle:        30,
			Quality:      80,
			DefaultColor: models.StyleWhite,
			ColorAlpha:   128,
		},
	}
}

func newTestEngine(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := testConfig()
	resolver, err := style.NewResolver(cfg.Palette(), cfg.Watermark.DefaultColor)
	if err != nil {
		t.Fatalf("resolver: %v", err)
	}
	logger := zap.NewNop()
	svc := watermark.NewService(processor.NewImageProcessor(logger), resolver, cfg, nil, logger)
	h := NewImageHandler(svc, nil, nil, logger, cfg)

	r := gin.New()
	r.GET("/health", h.HealthCheck)
	r.GET("/styles", h.ListStyles)
	r.POST("/watermark", h.Watermark)
	r.POST("/batch", h.BatchWatermark)
	r.POST("/jobs", h.CreateJob)
	return r
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 200
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func multipartBody(t *testing.T, field string, files [][]byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("field: %v", err)
		}
	}
	for i, data := range files {
		part, err := mw.CreateFormFile(field, "img"+string(rune('a'+i))+".png")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		part.Write(data)
	}
	mw.Close()
	return &body, mw.FormDataContentType()
}

func TestListStyles(t *testing.T) {
	r := newTestEngine(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/styles", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var resp struct {
		Success bool                   `json:"success"`
		Data    []models.StyleResponse `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success || len(resp.Data) != 5 {
		t.Fatalf("unexpected styles: %+v", resp)
	}
	if resp.Data[0].Key != models.StyleWhite || !resp.Data[0].Default {
		t.Fatalf("first style = %+v, want default white", resp.Data[0])
	}
}

func TestWatermarkReturnsJPEG(t *testing.T) {
	r := newTestEngine(t)
	body, ct := multipartBody(t, "image", [][]byte{pngBytes(t, 80, 60)}, map[string]string{"color": "red", "layout": "tiled"})

	req := httptest.NewRequest(http.MethodPost, "/watermark", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	if got := w.Header().Get("Content-Type"); got != "image/jpeg" {
		t.Fatalf("content type = %q", got)
	}
	if got := w.Header().Get("X-Watermark-Style"); got != "red" {
		t.Fatalf("style header = %q", got)
	}
	if got := w.Header().Get("X-Watermark-Layout"); got != "tiled" {
		t.Fatalf("layout header = %q", got)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(w.Body.Bytes()))
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if cfg.Width != 80 || cfg.Height != 60 {
		t.Fatalf("output %dx%d, want 80x60", cfg.Width, cfg.Height)
	}
}

func TestWatermarkRejectsBadInput(t *testing.T) {
	r := newTestEngine(t)

	tests := []struct {
		name   string
		files  [][]byte
		fields map[string]string
	}{
		{"not an image", [][]byte{[]byte("plain text")}, nil},
		{"unknown color", [][]byte{pngBytes(t, 10, 10)}, map[string]string{"color": "purple"}},
		{"unknown layout", [][]byte{pngBytes(t, 10, 10)}, map[string]string{"layout": "spiral"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, ct := multipartBody(t, "image", tt.files, tt.fields)
			req := httptest.NewRequest(http.MethodPost, "/watermark", body)
			req.Header.Set("Content-Type", ct)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", w.Code)
			}
		})
	}
}

func TestWatermarkMissingFile(t *testing.T) {
	r := newTestEngine(t)
	body, ct := multipartBody(t, "other", [][]byte{pngBytes(t, 10, 10)}, nil)

	req := httptest.NewRequest(http.MethodPost, "/watermark", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestBatchWatermarkWithoutStorage(t *testing.T) {
	r := newTestEngine(t)
	body, ct := multipartBody(t, "images", [][]byte{pngBytes(t, 30, 30), []byte("garbage")}, nil)

	req := httptest.NewRequest(http.MethodPost, "/batch", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Data models.BatchResponse `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Data.Images) != 2 || resp.Data.Failed != 1 {
		t.Fatalf("batch = %+v", resp.Data)
	}
	if resp.Data.Images[0].Error != "" || resp.Data.Images[0].FileSize == 0 {
		t.Fatalf("first image should succeed: %+v", resp.Data.Images[0])
	}
	if resp.Data.Images[1].Error == "" {
		t.Fatal("second image should fail")
	}
}

func TestJobsUnavailableWithoutQueue(t *testing.T) {
	r := newTestEngine(t)

	req := httptest.NewRequest(http.MethodPost, "/jobs", bytes.NewBufferString(`{"image_url":"http://example.com/a.png"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}
}

func TestHealthCheckWithoutBackends(t *testing.T) {
	r := newTestEngine(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var resp struct {
		Data models.HealthCheck `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data.Status != "healthy" || resp.Data.Services["queue"] != "not configured" {
		t.Fatalf("health = %+v", resp.Data)
	}
}
