package jwttoken

import (
	id "seaplan/pkg/domain"
	dErrors "seaplan/pkg/domain-errors"
	"seaplan/pkg/platform/middleware/auth"
)

// MiddlewareAdapter adapts the jwt Service to the auth middleware's
// TokenValidator interface, converting raw claim strings back into typed
// domain values.
type MiddlewareAdapter struct {
	service *Service
}

func NewMiddlewareAdapter(service *Service) *MiddlewareAdapter {
	return &MiddlewareAdapter{service: service}
}

func (a *MiddlewareAdapter) ValidateToken(tokenString string) (*auth.Claims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	identityID, err := id.ParseIdentityID(claims.IdentityID)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	role, err := id.ParseRole(claims.Role)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}

	return &auth.Claims{IdentityID: identityID, Role: role}, nil
}
