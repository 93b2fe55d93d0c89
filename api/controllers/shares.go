package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/yoshiakiban-byte/bottle-amigo/api/middleware"
	"github.com/yoshiakiban-byte/bottle-amigo/api/responses"
	"github.com/yoshiakiban-byte/bottle-amigo/api/validators"
	"github.com/yoshiakiban-byte/bottle-amigo/internal/shares"
	pkgerrors "github.com/yoshiakiban-byte/bottle-amigo/pkg/errors"
	"github.com/yoshiakiban-byte/bottle-amigo/pkg/logger"
)

type shareCreateRequest struct {
	SharedToUserID uuid.UUID `json:"sharedToUserId" validate:"required"`
}

// ShareCreate grants another patron access to the owner's bottle.
func ShareCreate(svc shares.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "shares service unavailable"))
			return
		}

		bottleID, err := validators.PathUUID(r, "bottleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body shareCreateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		share, err := svc.Create(r.Context(), shares.CreateParams{
			BottleID:       bottleID,
			ActorUserID:    middleware.PrincipalIDFromContext(r.Context()),
			SharedToUserID: body.SharedToUserID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, share)
	}
}

// ShareEnd revokes a share. The row stays for history.
func ShareEnd(svc shares.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "shares service unavailable"))
			return
		}

		shareID, err := validators.PathUUID(r, "shareId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		share, err := svc.End(r.Context(), shares.EndParams{
			ShareID:     shareID,
			ActorUserID: middleware.PrincipalIDFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, share)
	}
}

// ShareListForBottle lists a bottle's shares, active and ended.
func ShareListForBottle(svc shares.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "shares service unavailable"))
			return
		}

		bottleID, err := validators.PathUUID(r, "bottleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListForBottle(r.Context(), bottleID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// SharesGrantedToMe lists active shares where the patron is the grantee.
func SharesGrantedToMe(svc shares.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "shares service unavailable"))
			return
		}

		list, err := svc.ListGrantedTo(r.Context(), middleware.PrincipalIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}
