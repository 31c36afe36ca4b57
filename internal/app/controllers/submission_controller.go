package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/monchobi/artschool/internal/app/auth"
	"github.com/monchobi/artschool/internal/app/models"
	"github.com/monchobi/artschool/internal/app/models/dto"
	"github.com/monchobi/artschool/internal/app/services"
	"github.com/monchobi/artschool/internal/middleware"
	"github.com/monchobi/artschool/internal/pkg/apperrors"
)

// SubmissionController handles class submissions and their review
type SubmissionController struct {
	reviewService services.ReviewService
}

// NewSubmissionController creates a new SubmissionController
func NewSubmissionController(reviewService services.ReviewService) *SubmissionController {
	return &SubmissionController{
		reviewService: reviewService,
	}
}

// SubmitClass submits a class for review
// @Summary Submit a class
// @Description Creates a pending class owned by the authenticated instructor
// @Tags submissions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SubmitClassRequest true "Class details"
// @Success 201 {object} dto.APIResponse{data=models.Class} "Class submitted"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - Instructor role required"
// @Router /submissions [post]
func (sc *SubmissionController) SubmitClass(ctx *gin.Context) {
	p, ok := caller(ctx)
	if !ok {
		return
	}
	req, ok := middleware.BindJSON[dto.SubmitClassRequest](ctx)
	if !ok {
		return
	}

	class, err := sc.reviewService.SubmitClass(ctx.Request.Context(), req.ToDetails(), p.Email)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(class))
}

// UploadImage stores a class image
// @Summary Upload a class image
// @Description Stores an image and returns the URL to put in imageUrl of a submission
// @Tags submissions
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param image formData file true "JPEG, PNG, WEBP or GIF image"
// @Success 201 {object} dto.APIResponse{data=dto.ImageUploadResponse} "Image stored"
// @Failure 400 {object} dto.ErrorResponse "Missing or invalid image"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - Instructor role required"
// @Router /submissions/images [post]
func (sc *SubmissionController) UploadImage(ctx *gin.Context) {
	file, err := ctx.FormFile("image")
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, dto.KindInvalid, "Image is required").
			WithField("image")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	url, err := sc.reviewService.UploadClassImage(ctx.Request.Context(), file)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(dto.ImageUploadResponse{URL: url}))
}

// ListSubmissions lists every submission
// @Summary List submissions
// @Description Lists submissions, most recent first, optionally narrowed by instructor email and status
// @Tags submissions
// @Produce json
// @Security BearerAuth
// @Param email query string false "Instructor email"
// @Param status query string false "pending, approved or denied"
// @Success 200 {object} dto.APIResponse{data=dto.ListResponse{items=[]models.Class}} "Submissions retrieved"
// @Failure 400 {object} dto.ErrorResponse "Unknown status"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - Admin role required"
// @Router /submissions [get]
func (sc *SubmissionController) ListSubmissions(ctx *gin.Context) {
	filter := models.SubmissionFilter{InstructorEmail: ctx.Query("email")}
	if s := ctx.Query("status"); s != "" {
		status, ok := models.ParseClassStatus(s)
		if !ok {
			middleware.HandleAPIError(ctx, apperrors.ErrUnknownClassStatus)
			return
		}
		filter.Status = status
	}

	sc.list(ctx, filter)
}

// MySubmissions lists the submissions of the caller
// @Summary List own submissions
// @Description Lists the caller's submissions. An email other than the caller's is rejected.
// @Tags submissions
// @Produce json
// @Security BearerAuth
// @Param email query string false "Must match the caller"
// @Success 200 {object} dto.APIResponse{data=dto.ListResponse{items=[]models.Class}} "Submissions retrieved"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - Email does not match the caller"
// @Router /submissions/mine [get]
func (sc *SubmissionController) MySubmissions(ctx *gin.Context) {
	p, ok := caller(ctx)
	if !ok {
		return
	}
	email := ctx.Query("email")
	if email == "" {
		email = p.Email
	}
	if err := auth.Require(p, auth.IsOwner(email)); err != nil {
		middleware.HandleAPIError(ctx, apperrors.NewForbiddenError("you can only list your own submissions"))
		return
	}

	sc.list(ctx, models.SubmissionFilter{InstructorEmail: email})
}

func (sc *SubmissionController) list(ctx *gin.Context, filter models.SubmissionFilter) {
	classes, err := sc.reviewService.ListSubmissions(ctx.Request.Context(), filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.ListResponse{Items: classes, Count: len(classes)}))
}

// GetSubmission retrieves one submission
// @Summary Get a submission
// @Tags submissions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Class ID"
// @Success 200 {object} dto.APIResponse{data=models.Class} "Submission retrieved"
// @Failure 404 {object} dto.ErrorResponse "Class not found"
// @Router /submissions/{id} [get]
func (sc *SubmissionController) GetSubmission(ctx *gin.Context) {
	class, err := sc.reviewService.GetSubmission(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(class))
}

// SetStatus records a review decision
// @Summary Approve or deny a submission
// @Description Changes the status and archives the class. Repeating the same decision does not archive twice. Moving back to pending is rejected.
// @Tags submissions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Class ID"
// @Param request body dto.SetStatusRequest true "New status"
// @Success 200 {object} dto.APIResponse{data=models.Class} "Status updated"
// @Failure 400 {object} dto.ErrorResponse "Unknown status or invalid transition"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - Admin role required"
// @Failure 404 {object} dto.ErrorResponse "Class not found"
// @Router /submissions/{id}/status [put]
func (sc *SubmissionController) SetStatus(ctx *gin.Context) {
	req, ok := middleware.BindJSON[dto.SetStatusRequest](ctx)
	if !ok {
		return
	}
	status, _ := models.ParseClassStatus(req.Status)

	class, err := sc.reviewService.SetStatus(ctx.Request.Context(), ctx.Param("id"), status)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(class))
}

// SetFeedback attaches reviewer feedback
// @Summary Set feedback on a submission
// @Tags submissions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Class ID"
// @Param request body dto.SetFeedbackRequest true "Feedback"
// @Success 200 {object} dto.APIResponse{data=models.Class} "Feedback stored"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - Admin role required"
// @Failure 404 {object} dto.ErrorResponse "Class not found"
// @Router /submissions/{id}/feedback [put]
func (sc *SubmissionController) SetFeedback(ctx *gin.Context) {
	req, ok := middleware.BindJSON[dto.SetFeedbackRequest](ctx)
	if !ok {
		return
	}

	class, err := sc.reviewService.SetFeedback(ctx.Request.Context(), ctx.Param("id"), req.Feedback)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(class))
}

// ListApproved lists the approved archive
// @Summary List approved classes
// @Description Lists archived approval snapshots, most recent first
// @Tags archives
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.ListResponse{items=[]models.ArchivedClass}} "Archive retrieved"
// @Router /archives/approved [get]
func (sc *SubmissionController) ListApproved(ctx *gin.Context) {
	archived, err := sc.reviewService.ListApproved(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.ListResponse{Items: archived, Count: len(archived)}))
}

// ListDenied lists the denied archive
// @Summary List denied classes
// @Tags archives
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.ListResponse{items=[]models.ArchivedClass}} "Archive retrieved"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - Admin role required"
// @Router /archives/denied [get]
func (sc *SubmissionController) ListDenied(ctx *gin.Context) {
	archived, err := sc.reviewService.ListDenied(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.ListResponse{Items: archived, Count: len(archived)}))
}
