package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/yoshiakiban-byte/bottle-amigo/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
// Customer tokens carry only the user id; staff tokens also carry the
// venue and role the PIN login resolved to.
type AccessTokenPayload struct {
	PrincipalID uuid.UUID
	Kind        enums.PrincipalKind
	VenueID     *uuid.UUID
	Role        *enums.StaffRole
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	PrincipalID uuid.UUID           `json:"principal_id"`
	Kind        enums.PrincipalKind `json:"kind"`
	VenueID     *uuid.UUID          `json:"venue_id,omitempty"`
	Role        *enums.StaffRole    `json:"role,omitempty"`
	jwt.RegisteredClaims
}
