package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/monchobi/artschool/internal/app/auth"
	"github.com/monchobi/artschool/internal/middleware"
	"github.com/monchobi/artschool/internal/pkg/apperrors"
)

// caller returns the authenticated principal or writes a 401.
func caller(ctx *gin.Context) (auth.Principal, bool) {
	p, ok := middleware.Principal(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrUnauthorized)
		return auth.Principal{}, false
	}
	return p, true
}

// targetEmail resolves the ?email= query parameter, defaulting to the caller.
// Reading someone else's records requires the admin role.
func targetEmail(ctx *gin.Context, p auth.Principal) (string, bool) {
	email := ctx.Query("email")
	if email == "" {
		return p.Email, true
	}
	if err := auth.Require(p, auth.OwnerOrAdmin(email)); err != nil {
		middleware.HandleAPIError(ctx, err)
		return "", false
	}
	return email, true
}
