package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/yoshiakiban-byte/bottle-amigo/api/middleware"
	"github.com/yoshiakiban-byte/bottle-amigo/api/responses"
	"github.com/yoshiakiban-byte/bottle-amigo/api/validators"
	"github.com/yoshiakiban-byte/bottle-amigo/internal/amigos"
	pkgerrors "github.com/yoshiakiban-byte/bottle-amigo/pkg/errors"
	"github.com/yoshiakiban-byte/bottle-amigo/pkg/logger"
)

type amigoRequestBody struct {
	TargetUserID uuid.UUID `json:"targetUserId" validate:"required"`
	VenueID      uuid.UUID `json:"venueId"`
}

type amigoConsumeBody struct {
	Token uuid.UUID `json:"token" validate:"required"`
}

// AmigoRequest opens a pending pairing with another patron.
func AmigoRequest(svc amigos.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "amigos service unavailable"))
			return
		}

		var body amigoRequestBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		amigo, err := svc.Request(r.Context(), amigos.RequestParams{
			RequesterUserID: middleware.PrincipalIDFromContext(r.Context()),
			TargetUserID:    body.TargetUserID,
			VenueID:         body.VenueID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, amigo)
	}
}

// AmigoAccept activates a pending pairing. Target side only.
func AmigoAccept(svc amigos.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "amigos service unavailable"))
			return
		}

		amigoID, err := validators.PathUUID(r, "amigoId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		amigo, err := svc.Accept(r.Context(), amigos.AcceptParams{
			AmigoID:     amigoID,
			ActorUserID: middleware.PrincipalIDFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, amigo)
	}
}

// AmigoList returns the patron's pairings, optionally filtered by venue.
func AmigoList(svc amigos.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "amigos service unavailable"))
			return
		}

		venueID, err := validators.ParseQueryUUID(r, "venueId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListForUser(r.Context(), middleware.PrincipalIDFromContext(r.Context()), venueID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// AmigoIssueQR mints a single-use pairing token for the patron's current venue.
func AmigoIssueQR(svc amigos.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "amigos service unavailable"))
			return
		}

		token, err := svc.IssuePairingToken(r.Context(), middleware.PrincipalIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, token)
	}
}

// AmigoConsumeQR redeems a scanned pairing token into an active pairing.
func AmigoConsumeQR(svc amigos.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "amigos service unavailable"))
			return
		}

		var body amigoConsumeBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		amigo, err := svc.ConsumePairingToken(r.Context(), amigos.ConsumeParams{
			ScannerUserID: middleware.PrincipalIDFromContext(r.Context()),
			Token:         body.Token,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, amigo)
	}
}
