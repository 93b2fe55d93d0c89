package controllers

import (
	"net/http"

	"github.com/yoshiakiban-byte/bottle-amigo/api/middleware"
	"github.com/yoshiakiban-byte/bottle-amigo/api/responses"
	"github.com/yoshiakiban-byte/bottle-amigo/api/validators"
	"github.com/yoshiakiban-byte/bottle-amigo/internal/posts"
	"github.com/yoshiakiban-byte/bottle-amigo/pkg/enums"
	pkgerrors "github.com/yoshiakiban-byte/bottle-amigo/pkg/errors"
	"github.com/yoshiakiban-byte/bottle-amigo/pkg/logger"
)

type postCreateRequest struct {
	Type  enums.PostType `json:"type" validate:"required"`
	Title *string        `json:"title"`
	Body  string         `json:"body" validate:"required"`
}

type postUpdateRequest struct {
	Type  *enums.PostType `json:"type"`
	Title *string         `json:"title"`
	Body  *string         `json:"body"`
}

// PostCreate publishes a venue post and fans out to bottle owners.
func PostCreate(svc posts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "posts service unavailable"))
			return
		}

		var body postCreateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		post, err := svc.Create(r.Context(), posts.CreateParams{
			VenueID: middleware.VenueIDFromContext(r.Context()),
			StaffID: middleware.PrincipalIDFromContext(r.Context()),
			Type:    body.Type,
			Title:   body.Title,
			Body:    body.Body,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, post)
	}
}

func PostUpdate(svc posts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "posts service unavailable"))
			return
		}

		postID, err := validators.PathUUID(r, "postId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body postUpdateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		post, err := svc.Update(r.Context(), posts.UpdateParams{
			PostID:  postID,
			VenueID: middleware.VenueIDFromContext(r.Context()),
			Type:    body.Type,
			Title:   body.Title,
			Body:    body.Body,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, post)
	}
}

func PostDelete(svc posts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "posts service unavailable"))
			return
		}

		postID, err := validators.PathUUID(r, "postId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), posts.DeleteParams{
			PostID:  postID,
			VenueID: middleware.VenueIDFromContext(r.Context()),
		}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}

// PostList returns a venue's posts, newest first.
func PostList(svc posts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "posts service unavailable"))
			return
		}

		venueID, err := validators.PathUUID(r, "venueId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListByVenue(r.Context(), venueID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}
