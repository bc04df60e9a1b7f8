package models

import "time"

type WatermarkJob struct {
	ID          string           `json:"id"`
	ImageURL    string           `json:"image_url,omitempty"`
	StoragePath string           `json:"storage_path,omitempty"`
	Request     WatermarkRequest `json:"request"`
	Status      string           `json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
	Result      *ProcessedImage  `json:"result,omitempty"`
	Error       string           `json:"error,omitempty"`
}

type CreateJobRequest struct {
	ImageURL    string   `json:"image_url" binding:"required_without=StoragePath"`
	StoragePath string   `json:"storage_path"`
	Color       StyleKey `json:"color" binding:"omitempty,oneof=white black red blue yellow"`
	Layout      Layout   `json:"layout" binding:"omitempty,oneof=anchored tiled"`
	Texts       []string `json:"texts"`
}

const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)
