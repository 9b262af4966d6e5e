package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/madrasati/schoolstore-backend/api/middleware"
	"github.com/madrasati/schoolstore-backend/pkg/enums"
	pkgerrors "github.com/madrasati/schoolstore-backend/pkg/errors"
)

// actorFromContext extracts the authenticated user id and role seeded by the
// auth middleware.
func actorFromContext(r *http.Request) (uuid.UUID, enums.UserRole, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, "", pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, "", pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}
	role := enums.UserRole(middleware.RoleFromContext(r.Context()))
	if !role.IsValid() {
		return uuid.Nil, "", pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid actor role")
	}
	return id, role, nil
}
