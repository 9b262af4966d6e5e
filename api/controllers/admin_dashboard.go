package controllers

import (
	"net/http"

	"github.com/madrasati/schoolstore-backend/api/responses"
	dashboardsvc "github.com/madrasati/schoolstore-backend/internal/dashboard"
	pkgerrors "github.com/madrasati/schoolstore-backend/pkg/errors"
	"github.com/madrasati/schoolstore-backend/pkg/logger"
)

// AdminDashboard serves the aggregated back-office stats view.
func AdminDashboard(svc dashboardsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dashboard service unavailable"))
			return
		}

		stats, err := svc.Stats(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, stats)
	}
}
