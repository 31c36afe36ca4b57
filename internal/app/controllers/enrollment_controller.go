package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/monchobi/artschool/internal/app/models"
	"github.com/monchobi/artschool/internal/app/models/dto"
	"github.com/monchobi/artschool/internal/app/services"
	"github.com/monchobi/artschool/internal/middleware"
)

// EnrollmentController handles seat reservations and payments
type EnrollmentController struct {
	enrollmentService services.EnrollmentService
}

// NewEnrollmentController creates a new EnrollmentController
func NewEnrollmentController(enrollmentService services.EnrollmentService) *EnrollmentController {
	return &EnrollmentController{
		enrollmentService: enrollmentService,
	}
}

// ReserveSeat reserves a seat for the caller
// @Summary Reserve a seat
// @Description Takes one seat of the class for the authenticated user. Concurrent reservations never oversell.
// @Tags enrollments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Class ID"
// @Success 201 {object} dto.APIResponse{data=models.Enrollment} "Seat reserved"
// @Failure 400 {object} dto.ErrorResponse "No seats available"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 404 {object} dto.ErrorResponse "Class not found"
// @Failure 503 {object} dto.ErrorResponse "Store unavailable, retry later"
// @Router /classes/{id}/enrollments [post]
func (ec *EnrollmentController) ReserveSeat(ctx *gin.Context) {
	p, ok := caller(ctx)
	if !ok {
		return
	}

	enrollment, err := ec.enrollmentService.ReserveSeat(ctx.Request.Context(), ctx.Param("id"), models.EnrollmentDetails{Email: p.Email})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(enrollment))
}

// ListEnrollments lists the unpaid enrollments of a user
// @Summary List enrollments
// @Description Lists the enrollments of the caller, or of any user for admins
// @Tags enrollments
// @Produce json
// @Security BearerAuth
// @Param email query string false "Student email, defaults to the caller"
// @Success 200 {object} dto.APIResponse{data=dto.ListResponse{items=[]models.Enrollment}} "Enrollments retrieved"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - Not your enrollments"
// @Router /enrollments [get]
func (ec *EnrollmentController) ListEnrollments(ctx *gin.Context) {
	p, ok := caller(ctx)
	if !ok {
		return
	}
	email, ok := targetEmail(ctx, p)
	if !ok {
		return
	}

	enrollments, err := ec.enrollmentService.ListEnrollments(ctx.Request.Context(), email)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.ListResponse{Items: enrollments, Count: len(enrollments)}))
}

// CancelEnrollment deletes an enrollment
// @Summary Cancel an enrollment
// @Tags enrollments
// @Security BearerAuth
// @Param id path string true "Enrollment ID"
// @Success 204 "Enrollment cancelled"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - Not your enrollment"
// @Failure 404 {object} dto.ErrorResponse "Enrollment not found"
// @Router /enrollments/{id} [delete]
func (ec *EnrollmentController) CancelEnrollment(ctx *gin.Context) {
	p, ok := caller(ctx)
	if !ok {
		return
	}

	if err := ec.enrollmentService.CancelEnrollment(ctx.Request.Context(), ctx.Param("id"), p); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

// CreatePaymentIntent prepares a charge with the payment provider
// @Summary Create a payment intent
// @Description Returns the client secret the browser needs to complete the charge for an enrollment
// @Tags payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.PaymentIntentRequest true "Enrollment to pay"
// @Success 200 {object} dto.APIResponse{data=models.PaymentIntent} "Intent created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - Not your enrollment"
// @Failure 404 {object} dto.ErrorResponse "Enrollment not found"
// @Failure 503 {object} dto.ErrorResponse "Payment provider unavailable"
// @Router /payments/intent [post]
func (ec *EnrollmentController) CreatePaymentIntent(ctx *gin.Context) {
	p, ok := caller(ctx)
	if !ok {
		return
	}
	req, ok := middleware.BindJSON[dto.PaymentIntentRequest](ctx)
	if !ok {
		return
	}

	intent, err := ec.enrollmentService.CreatePaymentIntent(ctx.Request.Context(), req.EnrollmentID, p)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(intent))
}

// FinalizePayment records a completed payment
// @Summary Finalize a payment
// @Description Records the payment and removes the paid enrollment. When the enrollment is already gone the payment is still recorded and enrollmentDeleted is false.
// @Tags payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.FinalizePaymentRequest true "Payment"
// @Success 201 {object} dto.APIResponse{data=models.PaymentResult} "Payment recorded"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - Not your enrollment"
// @Failure 409 {object} dto.ErrorResponse "Payment already recorded"
// @Router /payments [post]
func (ec *EnrollmentController) FinalizePayment(ctx *gin.Context) {
	p, ok := caller(ctx)
	if !ok {
		return
	}
	req, ok := middleware.BindJSON[dto.FinalizePaymentRequest](ctx)
	if !ok {
		return
	}

	result, err := ec.enrollmentService.FinalizePayment(ctx.Request.Context(), models.PaymentDetails{
		EnrollmentID:  req.EnrollmentID,
		Email:         p.Email,
		TransactionID: req.TransactionID,
		Amount:        req.Amount,
		Currency:      req.Currency,
	}, p)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(result))
}

// ListPayments lists the payments of a user
// @Summary List payments
// @Tags payments
// @Produce json
// @Security BearerAuth
// @Param email query string false "Student email, defaults to the caller"
// @Success 200 {object} dto.APIResponse{data=dto.ListResponse{items=[]models.Payment}} "Payments retrieved"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - Not your payments"
// @Router /payments [get]
func (ec *EnrollmentController) ListPayments(ctx *gin.Context) {
	p, ok := caller(ctx)
	if !ok {
		return
	}
	email, ok := targetEmail(ctx, p)
	if !ok {
		return
	}

	payments, err := ec.enrollmentService.ListPayments(ctx.Request.Context(), email)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.ListResponse{Items: payments, Count: len(payments)}))
}
