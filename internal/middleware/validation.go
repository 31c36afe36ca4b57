package middleware

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/monchobi/artschool/internal/app/models/dto"
)

// BindJSON decodes and validates the request body into a fresh T. On failure it
// writes a 400 response and returns false.
func BindJSON[T any](c *gin.Context) (*T, bool) {
	req := new(T)
	if err := c.ShouldBindJSON(req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(bindError(err)))
		return nil, false
	}
	return req, true
}

// ValidateRequest binds the body into a new T per request and stores it under
// "validatedBody" for the handler.
func ValidateRequest[T any]() gin.HandlerFunc {
	return func(c *gin.Context) {
		req, ok := BindJSON[T](c)
		if !ok {
			return
		}
		c.Set("validatedBody", req)
		c.Next()
	}
}

// ValidatedBody returns the body stored by ValidateRequest.
func ValidatedBody[T any](c *gin.Context) (*T, bool) {
	v, ok := c.Get("validatedBody")
	if !ok {
		return nil, false
	}
	req, ok := v.(*T)
	return req, ok
}

func bindError(err error) *dto.ErrorDetail {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return dto.HandleValidationError(err)
	}
	if errors.Is(err, io.EOF) {
		return dto.NewErrorDetail(dto.ErrorCodeValidationFailed, dto.KindInvalid, "Invalid request format").
			WithDetails("request body is empty")
	}
	return dto.NewErrorDetail(dto.ErrorCodeValidationFailed, dto.KindInvalid, "Invalid request format").
		WithDetails(err.Error())
}
