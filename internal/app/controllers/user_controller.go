package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/monchobi/artschool/internal/app/models"
	"github.com/monchobi/artschool/internal/app/models/dto"
	"github.com/monchobi/artschool/internal/middleware"
)

// UserService is what UserController needs from the user registry.
type UserService interface {
	IssueToken(ctx context.Context, email string) (*dto.TokenResponse, error)
	UpsertUser(ctx context.Context, email, name, photoURL string) (*models.User, error)
	GetUser(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
	SetRole(ctx context.Context, email string, role string) (*models.User, error)
}

// UserController handles user profiles and token issuance
type UserController struct {
	userService UserService
}

// NewUserController creates a new UserController
func NewUserController(userService UserService) *UserController {
	return &UserController{
		userService: userService,
	}
}

// IssueToken signs an access token
// @Summary Issue an access token
// @Description Returns a bearer token for the email, carrying the stored role (STUDENT for unknown users)
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.TokenRequest true "Email to issue the token for"
// @Success 200 {object} dto.APIResponse{data=dto.TokenResponse} "Token issued"
// @Failure 400 {object} dto.ErrorResponse "Invalid email"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/token [post]
func (uc *UserController) IssueToken(ctx *gin.Context) {
	req, ok := middleware.BindJSON[dto.TokenRequest](ctx)
	if !ok {
		return
	}

	token, err := uc.userService.IssueToken(ctx.Request.Context(), req.Email)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(token))
}

// UpsertUser creates or updates a profile
// @Summary Create or update a user profile
// @Description Stores name and photo for the email. The role of an existing user is never changed here.
// @Tags users
// @Accept json
// @Produce json
// @Param email path string true "User email"
// @Param request body dto.UpsertUserRequest true "Profile"
// @Success 200 {object} dto.APIResponse{data=models.User} "Profile stored"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /users/{email} [put]
func (uc *UserController) UpsertUser(ctx *gin.Context) {
	req, ok := middleware.BindJSON[dto.UpsertUserRequest](ctx)
	if !ok {
		return
	}

	user, err := uc.userService.UpsertUser(ctx.Request.Context(), ctx.Param("email"), req.Name, req.PhotoURL)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(user))
}

// GetUser retrieves a profile
// @Summary Get a user profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param email path string true "User email"
// @Success 200 {object} dto.APIResponse{data=models.User} "Profile retrieved"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Router /users/{email} [get]
func (uc *UserController) GetUser(ctx *gin.Context) {
	user, err := uc.userService.GetUser(ctx.Request.Context(), ctx.Param("email"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(user))
}

// ListUsers lists every profile
// @Summary List users
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.ListResponse{items=[]models.User}} "Users retrieved"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - Admin role required"
// @Router /users [get]
func (uc *UserController) ListUsers(ctx *gin.Context) {
	users, err := uc.userService.ListUsers(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.ListResponse{Items: users, Count: len(users)}))
}

// SetRole changes the role of a user
// @Summary Change a user's role
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param email path string true "User email"
// @Param request body dto.SetRoleRequest true "New role"
// @Success 200 {object} dto.APIResponse{data=models.User} "Role changed"
// @Failure 400 {object} dto.ErrorResponse "Unknown role"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - Admin role required"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Router /users/{email}/role [patch]
func (uc *UserController) SetRole(ctx *gin.Context) {
	req, ok := middleware.BindJSON[dto.SetRoleRequest](ctx)
	if !ok {
		return
	}

	user, err := uc.userService.SetRole(ctx.Request.Context(), ctx.Param("email"), req.Role)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(user))
}
