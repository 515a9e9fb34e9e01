package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"seungpyo.lee/StudentPortal/services/profile-service/internal/domain"
)

// metadataRepository implements domain.MetadataRepository using GORM.
type metadataRepository struct {
	db *gorm.DB
}

// NewMetadataRepository creates a new MetadataRepository with the given GORM DB instance.
func NewMetadataRepository(db *gorm.DB) domain.MetadataRepository {
	return &metadataRepository{db: db}
}

// Upsert inserts the row or updates the existing row for the same identifier.
func (r *metadataRepository) Upsert(ctx context.Context, img *domain.ProfileImage) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "identifier"}},
		DoUpdates: clause.AssignmentColumns([]string{"size", "content_type", "backend", "uploaded_by", "updated_at"}),
	}).Create(img).Error
	if err != nil {
		return fmt.Errorf("failed to save profile image metadata: %w", err)
	}
	return nil
}

func (r *metadataRepository) GetByIdentifier(ctx context.Context, identifier string) (*domain.ProfileImage, error) {
	var img domain.ProfileImage
	if err := r.db.WithContext(ctx).Where("identifier = ?", identifier).First(&img).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrImageNotFound
		}
		return nil, fmt.Errorf("failed to get profile image metadata: %w", err)
	}
	return &img, nil
}

// DeleteByIdentifier removes the row; a missing row is not an error.
func (r *metadataRepository) DeleteByIdentifier(ctx context.Context, identifier string) error {
	if err := r.db.WithContext(ctx).Where("identifier = ?", identifier).Delete(&domain.ProfileImage{}).Error; err != nil {
		return fmt.Errorf("failed to delete profile image metadata: %w", err)
	}
	return nil
}
