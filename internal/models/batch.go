package models

import (
	"bytes"
	"time"
)

type BatchImage struct {
	Buffer   *bytes.Buffer
	FileSize int64
	Error    string
}

type ImageResponse struct {
	Filename    string    `json:"filename"`
	URL         string    `json:"url,omitempty"`
	FileSize    int64     `json:"file_size"`
	ProcessedAt time.Time `json:"processed_at"`
	Error       string    `json:"error,omitempty"`
}

type BatchResponse struct {
	Images      []ImageResponse `json:"images"`
	Failed      int             `json:"failed"`
	ProcessedAt time.Time       `json:"processed_at"`
}

type UploadFile struct {
	Data        []byte
	Filename    string
	ContentType string
}
