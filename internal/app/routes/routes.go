package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/monchobi/artschool/internal/app/controllers"
	"github.com/monchobi/artschool/internal/app/models"
	"github.com/monchobi/artschool/internal/middleware"
	"github.com/monchobi/artschool/internal/pkg/websocket"
)

// Controllers groups the handlers mounted under /api/v1.
type Controllers struct {
	User       *controllers.UserController
	Catalog    *controllers.CatalogController
	Enrollment *controllers.EnrollmentController
	Submission *controllers.SubmissionController
	Report     *controllers.ReportController
	Feed       *websocket.Handler
}

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, c Controllers, authMiddleware *middleware.AuthMiddleware) {
	v1 := router.Group("/api/v1")

	// --- Public routes ---
	v1.POST("/auth/token", c.User.IssueToken)
	v1.PUT("/users/:email", c.User.UpsertUser)

	classes := v1.Group("/classes")
	{
		classes.GET("", c.Catalog.ListClasses)
		classes.GET("/:id", c.Catalog.GetClass)
	}

	v1.GET("/archives/approved", c.Submission.ListApproved)

	// --- Authenticated routes ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())

	adminOnly := authMiddleware.RoleRequired(models.RoleAdmin)
	staff := authMiddleware.RoleRequired(models.RoleInstructor, models.RoleAdmin)

	authenticated.POST("/classes/:id/enrollments", c.Enrollment.ReserveSeat)

	enrollments := authenticated.Group("/enrollments")
	{
		enrollments.GET("", c.Enrollment.ListEnrollments)
		enrollments.DELETE("/:id", c.Enrollment.CancelEnrollment)
	}

	payments := authenticated.Group("/payments")
	{
		payments.POST("/intent", c.Enrollment.CreatePaymentIntent)
		payments.POST("", c.Enrollment.FinalizePayment)
		payments.GET("", c.Enrollment.ListPayments)
	}

	users := authenticated.Group("/users")
	{
		users.GET("/:email", c.User.GetUser)
		users.GET("", adminOnly, c.User.ListUsers)
		users.PATCH("/:email/role", adminOnly, c.User.SetRole)
	}

	submissions := authenticated.Group("/submissions")
	{
		submissions.GET("/mine", c.Submission.MySubmissions)

		submissions.POST("", staff, c.Submission.SubmitClass)
		submissions.POST("/images", staff, c.Submission.UploadImage)
		submissions.GET("/:id", staff, c.Submission.GetSubmission)

		submissions.GET("", adminOnly, c.Submission.ListSubmissions)
		submissions.PUT("/:id/status", adminOnly, c.Submission.SetStatus)
		submissions.PUT("/:id/feedback", adminOnly, c.Submission.SetFeedback)
	}

	authenticated.GET("/archives/denied", adminOnly, c.Submission.ListDenied)
	authenticated.GET("/reports/classes/:id/roster.xlsx", adminOnly, c.Report.ClassRoster)

	ws := authenticated.Group("/ws")
	{
		ws.GET("/catalog", adminOnly, c.Feed.CatalogFeed)
		ws.GET("/classes/:id", c.Feed.ClassFeed)
	}
}
