package controllers

import (
	"net/http"

	"github.com/yoshiakiban-byte/bottle-amigo/api/middleware"
	"github.com/yoshiakiban-byte/bottle-amigo/api/responses"
	"github.com/yoshiakiban-byte/bottle-amigo/api/validators"
	"github.com/yoshiakiban-byte/bottle-amigo/internal/staff"
	"github.com/yoshiakiban-byte/bottle-amigo/pkg/enums"
	pkgerrors "github.com/yoshiakiban-byte/bottle-amigo/pkg/errors"
	"github.com/yoshiakiban-byte/bottle-amigo/pkg/logger"
)

type staffCreateRequest struct {
	Name string          `json:"name" validate:"required"`
	Role enums.StaffRole `json:"role" validate:"required"`
	PIN  string          `json:"pin" validate:"required"`
}

type staffUpdateRequest struct {
	Name *string          `json:"name"`
	Role *enums.StaffRole `json:"role"`
	PIN  *string          `json:"pin"`
}

type staffActiveRequest struct {
	Active *bool `json:"active" validate:"required"`
}

func staffActor(r *http.Request) staff.Actor {
	ctx := r.Context()
	return staff.Actor{
		StaffID: middleware.PrincipalIDFromContext(ctx),
		VenueID: middleware.VenueIDFromContext(ctx),
		Role:    middleware.RoleFromContext(ctx),
	}
}

func StaffList(svc staff.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "staff service unavailable"))
			return
		}

		accounts, err := svc.ListByVenue(r.Context(), staffActor(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, accounts)
	}
}

func StaffCreate(svc staff.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "staff service unavailable"))
			return
		}

		var body staffCreateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		account, err := svc.Create(r.Context(), staffActor(r), staff.CreateParams{
			Name: body.Name,
			Role: body.Role,
			PIN:  body.PIN,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, account)
	}
}

func StaffUpdate(svc staff.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "staff service unavailable"))
			return
		}

		staffID, err := validators.PathUUID(r, "staffId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body staffUpdateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		account, err := svc.Update(r.Context(), staffActor(r), staffID, staff.UpdateParams{
			Name: body.Name,
			Role: body.Role,
			PIN:  body.PIN,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, account)
	}
}

func StaffDelete(svc staff.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "staff service unavailable"))
			return
		}

		staffID, err := validators.PathUUID(r, "staffId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), staffActor(r), staffID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}

func StaffSetActive(svc staff.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "staff service unavailable"))
			return
		}

		staffID, err := validators.PathUUID(r, "staffId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body staffActiveRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		account, err := svc.SetActive(r.Context(), staffActor(r), staffID, *body.Active)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, account)
	}
}
