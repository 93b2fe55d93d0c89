package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/yoshiakiban-byte/bottle-amigo/pkg/enums"
)

type contextKey string

const (
	ctxPrincipalID contextKey = "principal_id"
	ctxKind        contextKey = "principal_kind"
	ctxVenueID     contextKey = "venue_id"
	ctxRole        contextKey = "actor_role"
)

func PrincipalIDFromContext(ctx context.Context) uuid.UUID {
	if ctx == nil {
		return uuid.Nil
	}
	if v, ok := ctx.Value(ctxPrincipalID).(uuid.UUID); ok {
		return v
	}
	return uuid.Nil
}

func KindFromContext(ctx context.Context) enums.PrincipalKind {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxKind).(enums.PrincipalKind); ok {
		return v
	}
	return ""
}

func VenueIDFromContext(ctx context.Context) uuid.UUID {
	if ctx == nil {
		return uuid.Nil
	}
	if v, ok := ctx.Value(ctxVenueID).(uuid.UUID); ok {
		return v
	}
	return uuid.Nil
}

func RoleFromContext(ctx context.Context) enums.StaffRole {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRole).(enums.StaffRole); ok {
		return v
	}
	return ""
}

// WithPrincipal seeds the identity values downstream handlers read back out.
// Exposed for handler tests.
func WithPrincipal(ctx context.Context, id uuid.UUID, kind enums.PrincipalKind) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxPrincipalID, id)
	return context.WithValue(ctx, ctxKind, kind)
}

// WithVenueRole adds the staff venue scope and role.
func WithVenueRole(ctx context.Context, venueID uuid.UUID, role enums.StaffRole) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxVenueID, venueID)
	return context.WithValue(ctx, ctxRole, role)
}
