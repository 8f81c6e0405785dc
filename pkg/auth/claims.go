package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/ridgelinearms/armory-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID         uuid.UUID
	Role           enums.ActorRole
	MembershipTier *enums.MembershipTier
	JTI            string
}

// AccessTokenClaims represents the typed JWT issued by the identity service.
// This API only verifies tokens; login and registration live elsewhere.
type AccessTokenClaims struct {
	UserID         uuid.UUID             `json:"user_id"`
	Role           enums.ActorRole       `json:"role"`
	MembershipTier *enums.MembershipTier `json:"membership_tier,omitempty"`
	jwt.RegisteredClaims
}
