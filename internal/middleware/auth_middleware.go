package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	appauth "github.com/monchobi/artschool/internal/app/auth"
	"github.com/monchobi/artschool/internal/app/models"
	"github.com/monchobi/artschool/internal/app/models/dto"
	"github.com/monchobi/artschool/internal/pkg/auth"
)

// Context keys set by JWTAuth.
const (
	ContextEmail    = "email"
	ContextRoleType = "roleType"
)

// AuthMiddleware for authentication and authorization
type AuthMiddleware struct {
	jwtService *auth.JWTService
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(jwtService *auth.JWTService) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
	}
}

// JWTAuth middleware for JWT token validation
func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")

		// Browsers cannot set headers on a websocket handshake.
		if authHeader == "" {
			authHeader = c.Query("token")
		}

		if authHeader == "" {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, dto.KindUnauthorized, "Authentication required").
				WithDetails("Authorization header missing")
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
			return
		}

		tokenString, err := auth.ExtractBearerToken(strings.Trim(authHeader, "\"'"))
		if err != nil {
			abortTokenError(c, err)
			return
		}

		claims, err := m.jwtService.ValidateAndExtractClaims(tokenString)
		if err != nil {
			abortTokenError(c, err)
			return
		}

		role, _ := models.ParseRole(claims.RoleType)
		c.Set(ContextEmail, claims.Email)
		c.Set(ContextRoleType, role)

		c.Next()
	}
}

// RoleRequired lets the request through when the caller holds one of roles.
func (m *AuthMiddleware) RoleRequired(roles ...models.RoleType) gin.HandlerFunc {
	rule := appauth.HasRole(roles...)
	return func(c *gin.Context) {
		p, ok := Principal(c)
		if !ok {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, dto.KindUnauthorized, "Authentication required").
				WithDetails("User role not found")
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
			return
		}

		if !rule(p) {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeForbidden, dto.KindForbidden, "Access denied").
				WithDetails("You don't have sufficient permissions for this operation")
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponse(errorDetail))
			return
		}

		c.Next()
	}
}

// Principal returns the caller authenticated by JWTAuth.
func Principal(c *gin.Context) (appauth.Principal, bool) {
	email := c.GetString(ContextEmail)
	if email == "" {
		return appauth.Principal{}, false
	}
	role, _ := c.Get(ContextRoleType)
	roleType, _ := role.(models.RoleType)
	return appauth.Principal{Email: email, Role: roleType}, true
}

func abortTokenError(c *gin.Context, err error) {
	code := dto.ErrorCodeInvalidToken
	details := "Invalid token"

	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		code = dto.ErrorCodeExpiredToken
		details = "Token has expired"
	case errors.Is(err, auth.ErrInvalidFormat):
		details = "Invalid token format"
	}

	errorDetail := dto.NewErrorDetail(code, dto.KindUnauthorized, "Authentication failed").WithDetails(details)
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
}
