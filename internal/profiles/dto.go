package profiles

import (
	"time"

	"github.com/google/uuid"

	"github.com/madrasati/schoolstore-backend/pkg/db/models"
)

// ProfileDTO is the transport shape for a student profile.
type ProfileDTO struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	StudentName string    `json:"student_name"`
	Class       string    `json:"class"`
	Section     string    `json:"section"`
	StudentCode string    `json:"student_code"`
	ParentName  string    `json:"parent_name"`
	ParentEmail string    `json:"parent_email"`
	ParentPhone string    `json:"parent_phone"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UpsertProfileDTO carries the writable profile fields.
type UpsertProfileDTO struct {
	StudentName string
	Class       string
	Section     string
	StudentCode string
	ParentName  string
	ParentEmail string
	ParentPhone string
}

func FromModel(p *models.StudentProfile) *ProfileDTO {
	if p == nil {
		return nil
	}
	return &ProfileDTO{
		ID:          p.ID,
		UserID:      p.UserID,
		StudentName: p.StudentName,
		Class:       p.Class,
		Section:     p.Section,
		StudentCode: p.StudentCode,
		ParentName:  p.ParentName,
		ParentEmail: p.ParentEmail,
		ParentPhone: p.ParentPhone,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
