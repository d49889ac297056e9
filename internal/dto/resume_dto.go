package dto

import (
	"encoding/json"
	"time"
)

// ResumeRequest creates or replaces a resume document.
type ResumeRequest struct {
	Title    string          `json:"title" validate:"required,min=2,max=160"`
	Template string          `json:"template" validate:"omitempty,oneof=classic modern compact"`
	PhotoURL string          `json:"photo_url" validate:"omitempty,url,max=512"`
	Document json.RawMessage `json:"document" validate:"required"`
}

// ResumeResponse is the stored resume returned to its owner.
type ResumeResponse struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Template  string          `json:"template"`
	PhotoURL  string          `json:"photo_url,omitempty"`
	Document  json.RawMessage `json:"document"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// UploadResponse describes the stored asset metadata returned to the client.
type UploadResponse struct {
	URL       string `json:"url"`
	SizeBytes int64  `json:"size_bytes"`
	MimeType  string `json:"mime_type"`
	Checksum  string `json:"checksum"`
	FileName  string `json:"file_name"`
	Reused    bool   `json:"reused"`
}
