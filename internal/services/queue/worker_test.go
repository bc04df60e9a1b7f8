package queue

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/jpeg"
	"sync"
	"testing"

	"github.com/phambaophuc/watermark-bot/internal/models"
	"go.uber.org/zap"
)

type fakeAcker struct {
	acked, nacked bool
	requeue       bool
}

func (f *fakeAcker) Ack(bool) error { f.acked = true; return nil }

func (f *fakeAcker) Nack(_, requeue bool) error {
	f.nacked = true
	f.requeue = requeue
	return nil
}

type fakeRenderer struct {
	out []byte
	err error
	got models.WatermarkRequest
}

func (f *fakeRenderer) Watermark(_ context.Context, _ []byte, req models.WatermarkRequest) ([]byte, models.WatermarkSpec, error) {
	f.got = req
	spec := models.WatermarkSpec{
		Style:  models.Style{Key: req.Color},
		Layout: models.LayoutTiled,
	}
	return f.out, spec, f.err
}

type fakeStore struct {
	mu      sync.Mutex
	files   map[string][]byte
	saved   int
	history []models.WatermarkJob
}

func (f *fakeStore) Download(_ context.Context, path string) ([]byte, error) {
	data, ok := f.files[path]
	if !ok {
		return nil, errors.New("not found")
	}
	return data, nil
}

func (f *fakeStore) SaveFile(_ context.Context, data []byte, filename, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved++
	return "https://storage.example/" + filename, nil
}

func (f *fakeStore) SetJobResult(_ context.Context, job *models.WatermarkJob) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.history = append(f.history, *job)
	return nil
}

func (f *fakeStore) GetJobResult(_ context.Context, id string) (*models.WatermarkJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.history) - 1; i >= 0; i-- {
		if f.history[i].ID == id {
			j := f.history[i]
			return &j, nil
		}
	}
	return nil, nil
}

func jpegBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, image.NewGray(image.Rect(0, 0, w, h)), nil); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func newTestQueue(r Renderer, s ResultStore) *QueueService {
	return &QueueService{
		logger:      zap.NewNop(),
		queueName:   defaultQueueName,
		renderer:    r,
		store:       s,
		maxFileSize: 1 << 20,
	}
}

func TestHandleDeliveryCompletesJob(t *testing.T) {
	renderer := &fakeRenderer{out: jpegBytes(t, 30, 20)}
	store := &fakeStore{files: map[string][]byte{"in/cat.png": []byte("src")}}
	q := newTestQueue(renderer, store)

	job := NewJob(models.CreateJobRequest{StoragePath: "in/cat.png", Color: models.StyleRed})
	body, _ := json.Marshal(job)

	ack := &fakeAcker{}
	q.handleDelivery(context.Background(), body, ack, 1)

	if !ack.acked || ack.nacked {
		t.Fatalf("expected ack, got %+v", ack)
	}
	if renderer.got.Color != models.StyleRed {
		t.Fatalf("renderer got %+v", renderer.got)
	}

	final, _ := store.GetJobResult(context.Background(), job.ID)
	if final == nil || final.Status != models.StatusCompleted {
		t.Fatalf("final job state: %+v", final)
	}
	if final.Result == nil || final.Result.Width != 30 || final.Result.Height != 20 {
		t.Fatalf("result: %+v", final.Result)
	}
	if final.Result.OriginalURL != "in/cat.png" || final.Result.Style != models.StyleRed {
		t.Fatalf("result metadata: %+v", final.Result)
	}
	if store.history[0].Status != models.StatusProcessing {
		t.Fatalf("processing state not recorded first: %+v", store.history[0])
	}
}

func TestHandleDeliveryRecordsFailure(t *testing.T) {
	renderer := &fakeRenderer{err: errors.New("decode error")}
	store := &fakeStore{files: map[string][]byte{"in/x": []byte("src")}}
	q := newTestQueue(renderer, store)

	job := NewJob(models.CreateJobRequest{StoragePath: "in/x"})
	body, _ := json.Marshal(job)

	ack := &fakeAcker{}
	q.handleDelivery(context.Background(), body, ack, 1)

	if !ack.acked {
		t.Fatalf("failed jobs are still acked")
	}
	final, _ := store.GetJobResult(context.Background(), job.ID)
	if final.Status != models.StatusFailed || final.Error == "" {
		t.Fatalf("expected failed job, got %+v", final)
	}
	if store.saved != 0 {
		t.Fatalf("nothing should be uploaded on failure")
	}
}

func TestHandleDeliveryMalformed(t *testing.T) {
	q := newTestQueue(&fakeRenderer{}, &fakeStore{})

	ack := &fakeAcker{}
	q.handleDelivery(context.Background(), []byte("{not json"), ack, 2)

	if !ack.nacked || ack.requeue || ack.acked {
		t.Fatalf("malformed message should be nacked without requeue: %+v", ack)
	}
}

func TestFetchSourceWithoutSource(t *testing.T) {
	q := newTestQueue(&fakeRenderer{}, &fakeStore{})
	if _, err := q.fetchSource(context.Background(), &models.WatermarkJob{ID: "x"}); err == nil {
		t.Fatalf("expected error for job without source")
	}
}

func TestHealthCheckNilService(t *testing.T) {
	var q *QueueService
	if got := q.HealthCheck(); got != "not configured" {
		t.Fatalf("HealthCheck() = %q", got)
	}
}
