package domain

import (
	"context"
	"io"
	"time"
)

// ImageRequest names a requested profile image. Identifier is normally a student ID.
type ImageRequest struct {
	Identifier string
}

// ResolvedImage is the payload served for one request. It is never cached.
type ResolvedImage struct {
	Data        []byte
	ContentType string
	Length      int64
	// Fallback reports whether the default image was served instead of the requested one.
	Fallback bool
}

// ProfileImage is the stored metadata of an uploaded profile image.
type ProfileImage struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Identifier  string    `json:"identifier" gorm:"uniqueIndex;size:255;not null"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type" gorm:"size:64"`
	Backend     string    `json:"backend" gorm:"size:16"`
	UploadedBy  string    `json:"uploaded_by" gorm:"size:255"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ImageStore is a filesystem-like storage layer keyed by identifier.
type ImageStore interface {
	Exists(ctx context.Context, key string) (bool, error)
	// Open returns the resource and its byte length. The caller closes the reader.
	Open(ctx context.Context, key string) (io.ReadCloser, int64, error)
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, key string) error
	Backend() string
}

type MetadataRepository interface {
	Upsert(ctx context.Context, img *ProfileImage) error
	GetByIdentifier(ctx context.Context, identifier string) (*ProfileImage, error)
	DeleteByIdentifier(ctx context.Context, identifier string) error
}

// Logger is the logging sink used by the resolver.
type Logger interface {
	Info(msg string, kv ...any)
	Warn(msg string, kv ...any)
	Error(msg string, kv ...any)
}
