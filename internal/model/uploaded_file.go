package model

import "time"

// UploadedFile describes one document in the upload directory. The directory
// itself is the index, so every field is derived from a stat of the file.
type UploadedFile struct {
	Name         string    `json:"name"`
	Path         string    `json:"path"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"lastModified"`
	ContentType  string    `json:"contentType,omitempty"`
}
