package model

import "time"

// ProfileImageURI binds the :name path segment.
type ProfileImageURI struct {
	Name string `uri:"name" binding:"required,max=255"`
}

// ProfileImageResponse is returned after an upload and by the metadata route.
type ProfileImageResponse struct {
	Identifier  string    `json:"identifier"`
	URL         string    `json:"url"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	UploadedBy  string    `json:"uploaded_by"`
	UpdatedAt   time.Time `json:"updated_at"`
}
