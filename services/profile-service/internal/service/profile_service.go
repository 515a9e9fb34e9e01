package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"seungpyo.lee/StudentPortal/pkg/jwt"
	"seungpyo.lee/StudentPortal/pkg/metrics"
	"seungpyo.lee/StudentPortal/services/profile-service/internal/domain"
)

// DefaultContentType is declared for every served image unless content detection is enabled.
const DefaultContentType = "image/jpeg"

var allowedUploadTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

type Options struct {
	DefaultImage      string
	MaxUploadBytes    int64
	DetectContentType bool
}

// ProfileService resolves, stores and deletes profile images.
// It holds no mutable state and is safe for concurrent use.
type ProfileService struct {
	store   domain.ImageStore
	meta    domain.MetadataRepository // optional
	log     domain.Logger
	metrics *metrics.Registry
	opts    Options
}

func NewProfileService(store domain.ImageStore, meta domain.MetadataRepository, log domain.Logger, reg *metrics.Registry, opts Options) *ProfileService {
	if opts.DefaultImage == "" {
		opts.DefaultImage = "default.png"
	}
	return &ProfileService{store: store, meta: meta, log: log, metrics: reg, opts: opts}
}

// Resolve returns the image stored under identifier, or the default image when it is absent.
// Read failures are returned as *domain.ResourceReadError.
func (s *ProfileService) Resolve(ctx context.Context, req domain.ImageRequest) (*domain.ResolvedImage, error) {
	if err := domain.ValidateIdentifier(req.Identifier); err != nil {
		return nil, err
	}
	s.log.Info("resolving profile image", "identifier", req.Identifier)

	key := req.Identifier
	fallback := false
	exists, err := s.store.Exists(ctx, key)
	if err != nil {
		s.log.Warn("profile image lookup failed, treating as absent", "identifier", key, "error", err.Error())
	}
	if !exists {
		s.log.Info("profile image not found, serving default", "identifier", key, "default", s.opts.DefaultImage)
		key = s.opts.DefaultImage
		fallback = true
	}

	data, err := s.read(ctx, key)
	if err != nil {
		s.log.Error("failed to read profile image", "key", key, "error", err.Error())
		s.metrics.Inc(ctx, "profile_image_read_errors_total", nil, 1)
		return nil, &domain.ResourceReadError{Key: key, Err: err}
	}

	contentType := DefaultContentType
	if s.opts.DetectContentType {
		contentType = mimetype.Detect(data).String()
	}
	source := "requested"
	if fallback {
		source = "fallback"
	}
	s.metrics.Inc(ctx, "profile_images_resolved_total", map[string]string{"source": source}, 1)

	return &domain.ResolvedImage{
		Data:        data,
		ContentType: contentType,
		Length:      int64(len(data)),
		Fallback:    fallback,
	}, nil
}

func (s *ProfileService) read(ctx context.Context, key string) ([]byte, error) {
	rc, size, err := s.store.Open(ctx, key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var buf bytes.Buffer
	if size > 0 {
		buf.Grow(int(size))
	}
	if _, err := io.Copy(&buf, rc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Upload stores data as the profile image of identifier. Only the owner may upload.
func (s *ProfileService) Upload(ctx context.Context, principal jwt.Principal, identifier string, data []byte) (*domain.ProfileImage, error) {
	if err := s.authorize(principal, identifier); err != nil {
		return nil, err
	}
	if int64(len(data)) > s.opts.MaxUploadBytes {
		return nil, fmt.Errorf("%w: %d bytes exceeds %d", domain.ErrImageTooLarge, len(data), s.opts.MaxUploadBytes)
	}
	mt := mimetype.Detect(data)
	if !allowedUploadTypes[mt.String()] {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedImage, mt.String())
	}

	if err := s.store.Put(ctx, identifier, bytes.NewReader(data), int64(len(data)), mt.String()); err != nil {
		return nil, fmt.Errorf("failed to store profile image: %w", err)
	}
	s.log.Info("profile image uploaded", "identifier", identifier, "bytes", len(data), "content_type", mt.String())
	s.metrics.Inc(ctx, "profile_images_uploaded_total", nil, 1)

	img := &domain.ProfileImage{
		Identifier:  identifier,
		Size:        int64(len(data)),
		ContentType: mt.String(),
		Backend:     s.store.Backend(),
		UploadedBy:  principal.Name(),
		UpdatedAt:   time.Now().UTC(),
	}
	// The stored image is authoritative; metadata is best effort.
	if s.meta != nil {
		if err := s.meta.Upsert(ctx, img); err != nil {
			s.log.Warn("failed to save profile image metadata", "identifier", identifier, "error", err.Error())
		}
	}
	return img, nil
}

// Delete removes the profile image of identifier and its metadata.
func (s *ProfileService) Delete(ctx context.Context, principal jwt.Principal, identifier string) error {
	if err := s.authorize(principal, identifier); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, identifier); err != nil {
		return err
	}
	s.log.Info("profile image deleted", "identifier", identifier)
	if s.meta != nil {
		if err := s.meta.DeleteByIdentifier(ctx, identifier); err != nil {
			s.log.Warn("failed to delete profile image metadata", "identifier", identifier, "error", err.Error())
		}
	}
	return nil
}

// Metadata returns the stored metadata of identifier.
func (s *ProfileService) Metadata(ctx context.Context, identifier string) (*domain.ProfileImage, error) {
	if err := domain.ValidateIdentifier(identifier); err != nil {
		return nil, err
	}
	if s.meta == nil {
		return nil, domain.ErrImageNotFound
	}
	return s.meta.GetByIdentifier(ctx, identifier)
}

func (s *ProfileService) authorize(principal jwt.Principal, identifier string) error {
	if err := domain.ValidateIdentifier(identifier); err != nil {
		return err
	}
	if principal == nil || principal.Name() != identifier {
		return domain.ErrForbidden
	}
	if identifier == s.opts.DefaultImage {
		return errors.Join(domain.ErrForbidden, errors.New("the default image is read-only"))
	}
	return nil
}
