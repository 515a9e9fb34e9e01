package domain

import (
	"errors"
	"fmt"
)

var (
	ErrResourceRead      = errors.New("profile image could not be read")
	ErrInvalidIdentifier = errors.New("invalid profile image identifier")
	ErrImageNotFound     = errors.New("profile image not found")
	ErrImageTooLarge     = errors.New("profile image too large")
	ErrUnsupportedImage  = errors.New("unsupported profile image type")
	ErrForbidden         = errors.New("not allowed to modify this profile image")
)

// ResourceReadError reports that the resolved resource, fallback included, could not be opened or read.
type ResourceReadError struct {
	Key string
	Err error
}

func (e *ResourceReadError) Error() string {
	return fmt.Sprintf("read profile image %q: %v", e.Key, e.Err)
}

func (e *ResourceReadError) Unwrap() error { return e.Err }

func (e *ResourceReadError) Is(target error) bool {
	return target == ErrResourceRead
}
