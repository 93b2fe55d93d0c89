package controllers

import (
	"net/http"

	"github.com/yoshiakiban-byte/bottle-amigo/api/middleware"
	"github.com/yoshiakiban-byte/bottle-amigo/api/responses"
	"github.com/yoshiakiban-byte/bottle-amigo/api/validators"
	"github.com/yoshiakiban-byte/bottle-amigo/internal/memos"
	pkgerrors "github.com/yoshiakiban-byte/bottle-amigo/pkg/errors"
	"github.com/yoshiakiban-byte/bottle-amigo/pkg/logger"
)

type memoCreateRequest struct {
	Body string `json:"body" validate:"required"`
}

// MemoCreate writes a staff note on a patron, scoped to the staff's venue.
func MemoCreate(svc memos.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "memos service unavailable"))
			return
		}

		userID, err := validators.PathUUID(r, "userId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body memoCreateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		memo, err := svc.Create(r.Context(), memos.CreateParams{
			VenueID:       middleware.VenueIDFromContext(r.Context()),
			UserID:        userID,
			AuthorStaffID: middleware.PrincipalIDFromContext(r.Context()),
			Body:          body.Body,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, memo)
	}
}

// MemoList returns the venue's notes on one patron, newest first.
func MemoList(svc memos.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "memos service unavailable"))
			return
		}

		userID, err := validators.PathUUID(r, "userId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListForUser(r.Context(), middleware.VenueIDFromContext(r.Context()), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}
