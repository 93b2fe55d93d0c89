package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/yoshiakiban-byte/bottle-amigo/api/middleware"
	"github.com/yoshiakiban-byte/bottle-amigo/api/responses"
	"github.com/yoshiakiban-byte/bottle-amigo/api/validators"
	"github.com/yoshiakiban-byte/bottle-amigo/internal/sessions"
	pkgerrors "github.com/yoshiakiban-byte/bottle-amigo/pkg/errors"
	"github.com/yoshiakiban-byte/bottle-amigo/pkg/logger"
)

type checkInRequest struct {
	VenueID         uuid.UUID   `json:"venueId" validate:"required"`
	NotifyToUserIDs []uuid.UUID `json:"notifyToUserIds"`
}

type staffCheckInRequest struct {
	UserID uuid.UUID `json:"userId" validate:"required"`
}

// CheckIn opens a session for the authenticated patron.
func CheckIn(svc sessions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sessions service unavailable"))
			return
		}

		var body checkInRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		checkIn, err := svc.CheckIn(r.Context(), sessions.CheckInParams{
			UserID:          middleware.PrincipalIDFromContext(r.Context()),
			VenueID:         body.VenueID,
			NotifyToUserIDs: body.NotifyToUserIDs,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, checkIn)
	}
}

// ActiveCheckIn returns the patron's current session, or null.
func ActiveCheckIn(svc sessions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sessions service unavailable"))
			return
		}

		checkIn, err := svc.ActiveCheckIn(r.Context(), middleware.PrincipalIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, checkIn)
	}
}

// StaffCheckIn opens a session for a patron from the counter.
func StaffCheckIn(svc sessions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sessions service unavailable"))
			return
		}

		var body staffCheckInRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		checkIn, err := svc.StaffCheckIn(r.Context(), sessions.StaffCheckInParams{
			UserID:  body.UserID,
			VenueID: middleware.VenueIDFromContext(r.Context()),
			StaffID: middleware.PrincipalIDFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, checkIn)
	}
}

// EndCheckIn closes a session and returns the patron's bottles for settlement.
func EndCheckIn(svc sessions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sessions service unavailable"))
			return
		}

		checkInID, err := validators.PathUUID(r, "checkInId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.EndCheckIn(r.Context(), sessions.EndCheckInParams{
			CheckInID: checkInID,
			VenueID:   middleware.VenueIDFromContext(r.Context()),
			StaffID:   middleware.PrincipalIDFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
