package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/yoshiakiban-byte/bottle-amigo/api/middleware"
	"github.com/yoshiakiban-byte/bottle-amigo/api/responses"
	"github.com/yoshiakiban-byte/bottle-amigo/api/validators"
	"github.com/yoshiakiban-byte/bottle-amigo/internal/inventory"
	pkgerrors "github.com/yoshiakiban-byte/bottle-amigo/pkg/errors"
	"github.com/yoshiakiban-byte/bottle-amigo/pkg/logger"
)

type addBottleRequest struct {
	OwnerUserID uuid.UUID `json:"ownerUserId" validate:"required"`
	Kind        string    `json:"kind" validate:"required"`
	CapacityML  *int      `json:"capacityMl"`
	RemainingML *int      `json:"remainingMl"`
}

type quantityChangeRequest struct {
	RemainingML  *int `json:"remainingMl"`
	RemainingPct *int `json:"remainingPct"`
}

type giftRequest struct {
	AddML  *int   `json:"addMl"`
	AddPct *int   `json:"addPct"`
	Reason string `json:"reason"`
}

// BottleAdd registers a new kept bottle at intake.
func BottleAdd(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		var body addBottleRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		bottle, err := svc.AddBottle(r.Context(), inventory.AddBottleParams{
			VenueID:     middleware.VenueIDFromContext(r.Context()),
			OwnerUserID: body.OwnerUserID,
			StaffID:     middleware.PrincipalIDFromContext(r.Context()),
			Kind:        strings.TrimSpace(body.Kind),
			CapacityML:  body.CapacityML,
			RemainingML: body.RemainingML,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, bottle)
	}
}

// BottleSetQuantity records a bottle's level after a visit.
func BottleSetQuantity(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		bottleID, err := validators.PathUUID(r, "bottleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body quantityChangeRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		bottle, err := svc.ApplyQuantityChange(r.Context(), inventory.QuantityChangeParams{
			BottleID:     bottleID,
			VenueID:      middleware.VenueIDFromContext(r.Context()),
			StaffID:      middleware.PrincipalIDFromContext(r.Context()),
			RemainingML:  body.RemainingML,
			RemainingPct: body.RemainingPct,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, bottle)
	}
}

// BottleRefill resets a bottle to full. Mama only.
func BottleRefill(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		bottleID, err := validators.PathUUID(r, "bottleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		bottle, err := svc.RefillToFull(r.Context(), inventory.RefillParams{
			BottleID:  bottleID,
			VenueID:   middleware.VenueIDFromContext(r.Context()),
			StaffID:   middleware.PrincipalIDFromContext(r.Context()),
			ActorRole: middleware.RoleFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, bottle)
	}
}

// BottleGift tops up a bottle on the house and notifies the owner. Mama only.
func BottleGift(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		bottleID, err := validators.PathUUID(r, "bottleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body giftRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		bottle, err := svc.CreateGift(r.Context(), inventory.GiftParams{
			BottleID:  bottleID,
			VenueID:   middleware.VenueIDFromContext(r.Context()),
			StaffID:   middleware.PrincipalIDFromContext(r.Context()),
			ActorRole: middleware.RoleFromContext(r.Context()),
			AddML:     body.AddML,
			AddPct:    body.AddPct,
			Reason:    body.Reason,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, bottle)
	}
}

// BottleHistory pages through a bottle's quantity change log.
func BottleHistory(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		bottleID, err := validators.PathUUID(r, "bottleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 0, 1, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.History(r.Context(), inventory.HistoryParams{
			BottleID: bottleID,
			Limit:    limit,
			Cursor:   strings.TrimSpace(r.URL.Query().Get("cursor")),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// VenueBottles lists kept bottles at the staff's venue, optionally one owner's.
func VenueBottles(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		ownerID, err := validators.ParseQueryUUID(r, "ownerUserId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		bottles, err := svc.ListByVenue(r.Context(), middleware.VenueIDFromContext(r.Context()), ownerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, bottles)
	}
}

// MyBottles lists the authenticated patron's kept bottles across venues.
func MyBottles(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		bottles, err := svc.ListByOwner(r.Context(), middleware.PrincipalIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, bottles)
	}
}
