package middleware

import (
	"context"

	"github.com/ridgelinearms/armory-backend/pkg/enums"
)

type contextKey string

const (
	ctxUserID contextKey = "user_id"
	ctxRole   contextKey = "actor_role"
	ctxTier   contextKey = "membership_tier"
)

func UserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxUserID).(string); ok {
		return v
	}
	return ""
}

func RoleFromContext(ctx context.Context) enums.ActorRole {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRole).(string); ok {
		return enums.ActorRole(v)
	}
	return ""
}

// TierFromContext returns the caller's membership tier, defaulting to Bronze
// for tokens minted without one.
func TierFromContext(ctx context.Context) enums.MembershipTier {
	if ctx != nil {
		if v, ok := ctx.Value(ctxTier).(string); ok && v != "" {
			return enums.MembershipTier(v)
		}
	}
	return enums.TierBronze
}

// WithUserID injects the user identifier into the context.
func WithUserID(ctx context.Context, userID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxUserID, userID)
}

// WithRole injects the actor role into the context.
func WithRole(ctx context.Context, role enums.ActorRole) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxRole, string(role))
}

// WithTier injects the membership tier into the context.
func WithTier(ctx context.Context, tier enums.MembershipTier) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxTier, string(tier))
}
