package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/madrasati/schoolstore-backend/api/responses"
	"github.com/madrasati/schoolstore-backend/api/validators"
	"github.com/madrasati/schoolstore-backend/internal/profiles"
	"github.com/madrasati/schoolstore-backend/pkg/db/models"
	pkgerrors "github.com/madrasati/schoolstore-backend/pkg/errors"
	"github.com/madrasati/schoolstore-backend/pkg/logger"
)

type profileRepository interface {
	FindByUserID(ctx context.Context, userID uuid.UUID) (*models.StudentProfile, error)
	Upsert(ctx context.Context, userID uuid.UUID, dto profiles.UpsertProfileDTO) (*models.StudentProfile, error)
}

type upsertProfileRequest struct {
	StudentName string `json:"student_name" validate:"required,max=120"`
	Class       string `json:"class" validate:"required,max=32"`
	Section     string `json:"section" validate:"required,max=32"`
	StudentCode string `json:"student_code" validate:"required,max=8"`
	ParentName  string `json:"parent_name" validate:"required,max=120"`
	ParentEmail string `json:"parent_email" validate:"required,email"`
	ParentPhone string `json:"parent_phone" validate:"required,max=32"`
}

// ProfileFetch returns the caller's student profile.
func ProfileFetch(repo profileRepository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "profile repository unavailable"))
			return
		}

		userID, _, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		profile, err := repo.FindByUserID(r.Context(), userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "profile not found"))
				return
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load profile"))
			return
		}
		responses.WriteSuccess(w, profiles.FromModel(profile))
	}
}

// ProfileUpsert creates or replaces the caller's student profile.
func ProfileUpsert(repo profileRepository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "profile repository unavailable"))
			return
		}

		userID, _, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body upsertProfileRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		profile, err := repo.Upsert(r.Context(), userID, profiles.UpsertProfileDTO{
			StudentName: validators.SanitizeString(body.StudentName, 120),
			Class:       validators.SanitizeString(body.Class, 32),
			Section:     validators.SanitizeString(body.Section, 32),
			StudentCode: validators.SanitizeString(body.StudentCode, 8),
			ParentName:  validators.SanitizeString(body.ParentName, 120),
			ParentEmail: validators.SanitizeString(body.ParentEmail, 254),
			ParentPhone: validators.SanitizeString(body.ParentPhone, 32),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save profile"))
			return
		}
		responses.WriteSuccess(w, profiles.FromModel(profile))
	}
}
