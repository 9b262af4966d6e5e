package profiles

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/madrasati/schoolstore-backend/pkg/db/models"
)

// Repository exposes student profile persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a profiles repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByUserID loads the profile owned by the given user.
func (r *Repository) FindByUserID(ctx context.Context, userID uuid.UUID) (*models.StudentProfile, error) {
	var profile models.StudentProfile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// ExistsForUser reports whether the user has a profile on file. Checkout is
// gated on this, nothing else.
func (r *Repository) ExistsForUser(ctx context.Context, userID uuid.UUID) (bool, error) {
	_, err := r.FindByUserID(ctx, userID)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return false, err
}

// Upsert creates the user's profile or replaces its writable fields.
func (r *Repository) Upsert(ctx context.Context, userID uuid.UUID, dto UpsertProfileDTO) (*models.StudentProfile, error) {
	profile := &models.StudentProfile{
		ID:          uuid.New(),
		UserID:      userID,
		StudentName: dto.StudentName,
		Class:       dto.Class,
		Section:     dto.Section,
		StudentCode: dto.StudentCode,
		ParentName:  dto.ParentName,
		ParentEmail: dto.ParentEmail,
		ParentPhone: dto.ParentPhone,
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"student_name", "class", "section", "student_code",
			"parent_name", "parent_email", "parent_phone", "updated_at",
		}),
	}).Create(profile).Error
	if err != nil {
		return nil, err
	}

	return r.FindByUserID(ctx, userID)
}
