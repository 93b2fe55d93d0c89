package controllers

import (
	"net/http"

	"github.com/yoshiakiban-byte/bottle-amigo/api/middleware"
	"github.com/yoshiakiban-byte/bottle-amigo/api/responses"
	"github.com/yoshiakiban-byte/bottle-amigo/api/validators"
	"github.com/yoshiakiban-byte/bottle-amigo/internal/venues"
	pkgerrors "github.com/yoshiakiban-byte/bottle-amigo/pkg/errors"
	"github.com/yoshiakiban-byte/bottle-amigo/pkg/logger"
)

type venueSettingsRequest struct {
	Name    *string  `json:"name"`
	Address *string  `json:"address"`
	Lat     *float64 `json:"lat"`
	Lng     *float64 `json:"lng"`
}

// VenueDetail returns one venue for patron-facing screens.
func VenueDetail(svc venues.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "venues service unavailable"))
			return
		}

		venueID, err := validators.PathUUID(r, "venueId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		venue, err := svc.Get(r.Context(), venueID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if venue == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "venue not found"))
			return
		}
		responses.WriteSuccess(w, venue)
	}
}

// VenueUpdateSettings applies a mama-only settings change to the staff's venue.
func VenueUpdateSettings(svc venues.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "venues service unavailable"))
			return
		}

		var body venueSettingsRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		venue, err := svc.UpdateSettings(r.Context(), venues.UpdateSettingsParams{
			VenueID:   middleware.VenueIDFromContext(r.Context()),
			ActorRole: middleware.RoleFromContext(r.Context()),
			Name:      body.Name,
			Address:   body.Address,
			Lat:       body.Lat,
			Lng:       body.Lng,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, venue)
	}
}

// VenueCustomers returns the staff-facing roster for the staff's venue.
func VenueCustomers(svc venues.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "venues service unavailable"))
			return
		}

		roster, err := svc.CustomerRoster(r.Context(), middleware.VenueIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, roster)
	}
}
