package models

import "time"

type ProcessedImage struct {
	ID          string    `json:"id"`
	OriginalURL string    `json:"original_url"`
	ProcessedAt time.Time `json:"processed_at"`
	Width       int       `json:"width"`
	Height      int       `json:"height"`
	Style       StyleKey  `json:"style"`
	Layout      Layout    `json:"layout"`
	URL         string    `json:"url"`
	FileSize    int64     `json:"file_size"`
}

type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}
