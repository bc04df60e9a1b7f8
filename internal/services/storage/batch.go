package storage

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/phambaophuc/watermark-bot/internal/models"
)

const uploadWorkers = 5

// UploadMultiple uploads files concurrently. The result has one entry per
// file, in order, with either URL or Error set.
func (s *StorageService) UploadMultiple(ctx context.Context, files []models.UploadFile) []models.ImageResponse {
	results := make([]models.ImageResponse, len(files))
	if len(files) == 0 {
		return results
	}

	numWorkers := min(uploadWorkers, len(files))
	jobs := make(chan int, len(files))
	var wg sync.WaitGroup

	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				f := files[i]
				res := models.ImageResponse{
					Filename:    f.Filename,
					FileSize:    int64(len(f.Data)),
					ProcessedAt: time.Now(),
				}
				url, err := s.Upload(ctx, bytes.NewBuffer(f.Data), f.Filename, f.ContentType)
				if err != nil {
					res.Error = err.Error()
				} else {
					res.URL = url
				}
				results[i] = res
			}
		}()
	}

	for i := range files {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}
