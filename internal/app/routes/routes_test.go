package routes_test

import (
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appauth "github.com/monchobi/artschool/internal/app/auth"
	"github.com/monchobi/artschool/internal/app/controllers"
	"github.com/monchobi/artschool/internal/app/models"
	"github.com/monchobi/artschool/internal/app/models/dto"
	"github.com/monchobi/artschool/internal/app/routes"
	"github.com/monchobi/artschool/internal/middleware"
	"github.com/monchobi/artschool/internal/pkg/apperrors"
	"github.com/monchobi/artschool/internal/pkg/auth"
	"github.com/monchobi/artschool/internal/pkg/export"
	"github.com/monchobi/artschool/internal/pkg/validation"
	"github.com/monchobi/artschool/internal/pkg/websocket"
)

// ---- fakes ----

type enrollmentService struct {
	reserveErr  error
	listedEmail string
	finalized   models.PaymentDetails
	cancelledBy appauth.Principal
}

func (s *enrollmentService) ReserveSeat(_ context.Context, classID string, d models.EnrollmentDetails) (*models.Enrollment, error) {
	if s.reserveErr != nil {
		return nil, s.reserveErr
	}
	return &models.Enrollment{ID: "e1", ClassID: classID, Email: d.Email}, nil
}

func (s *enrollmentService) CancelEnrollment(_ context.Context, _ string, caller appauth.Principal) error {
	s.cancelledBy = caller
	return nil
}

func (s *enrollmentService) ListEnrollments(_ context.Context, email string) ([]*models.Enrollment, error) {
	s.listedEmail = email
	return []*models.Enrollment{}, nil
}

func (s *enrollmentService) FinalizePayment(_ context.Context, d models.PaymentDetails, _ appauth.Principal) (*models.PaymentResult, error) {
	s.finalized = d
	return &models.PaymentResult{Payment: &models.Payment{ID: "p1", EnrollmentID: d.EnrollmentID}, EnrollmentDeleted: true, DeletedEnrollmentID: d.EnrollmentID}, nil
}

func (s *enrollmentService) ListPayments(_ context.Context, email string) ([]*models.Payment, error) {
	s.listedEmail = email
	return []*models.Payment{}, nil
}

func (s *enrollmentService) CreatePaymentIntent(context.Context, string, appauth.Principal) (*models.PaymentIntent, error) {
	return nil, apperrors.ErrPaymentProviderUnset
}

type reviewService struct {
	status models.ClassStatus
	filter models.SubmissionFilter
}

func (s *reviewService) SubmitClass(_ context.Context, d models.ClassDetails, email string) (*models.Class, error) {
	return &models.Class{ID: "c1", Title: d.Title, InstructorEmail: email, Status: models.ClassStatusPending}, nil
}

func (s *reviewService) UploadClassImage(context.Context, *multipart.FileHeader) (string, error) {
	return "http://localhost/uploads/classes/x.png", nil
}

func (s *reviewService) ListSubmissions(_ context.Context, f models.SubmissionFilter) ([]*models.Class, error) {
	s.filter = f
	return []*models.Class{}, nil
}

func (s *reviewService) GetSubmission(context.Context, string) (*models.Class, error) {
	return nil, apperrors.ErrClassNotFound
}

func (s *reviewService) SetStatus(_ context.Context, id string, status models.ClassStatus) (*models.Class, error) {
	s.status = status
	return &models.Class{ID: id, Status: status}, nil
}

func (s *reviewService) SetFeedback(_ context.Context, id, feedback string) (*models.Class, error) {
	return &models.Class{ID: id, Feedback: &feedback}, nil
}

func (s *reviewService) ListApproved(context.Context) ([]*models.ArchivedClass, error) {
	return []*models.ArchivedClass{{ID: "a1", ClassID: "c1", Status: models.ClassStatusApproved}}, nil
}

func (s *reviewService) ListDenied(context.Context) ([]*models.ArchivedClass, error) {
	return []*models.ArchivedClass{}, nil
}

type catalogService struct{}

func (catalogService) ListClasses(context.Context) ([]*models.Class, error) {
	return []*models.Class{{ID: "c1", Title: "Ink", Status: models.ClassStatusApproved}}, nil
}

func (catalogService) GetClass(_ context.Context, id string) (*models.Class, error) {
	if id != "c1" {
		return nil, apperrors.ErrClassNotFound
	}
	return &models.Class{ID: "c1", Title: "Ink"}, nil
}

type userService struct{ jwt *auth.JWTService }

func (s userService) IssueToken(_ context.Context, email string) (*dto.TokenResponse, error) {
	token, exp, err := s.jwt.GenerateToken(email, models.RoleStudent)
	return &dto.TokenResponse{Token: token, TokenType: "Bearer", ExpiresIn: exp, Role: "STUDENT"}, err
}

func (userService) UpsertUser(_ context.Context, email, name, photo string) (*models.User, error) {
	return &models.User{Email: email, Name: name, PhotoURL: photo, Role: models.RoleStudent}, nil
}

func (userService) GetUser(_ context.Context, email string) (*models.User, error) {
	return &models.User{Email: email}, nil
}

func (userService) ListUsers(context.Context) ([]*models.User, error) { return []*models.User{}, nil }

func (userService) SetRole(_ context.Context, email, role string) (*models.User, error) {
	r, ok := models.ParseRole(role)
	if !ok {
		return nil, apperrors.ErrUnknownRole
	}
	return &models.User{Email: email, Role: r}, nil
}

type rosterBuilder struct{}

func (rosterBuilder) ClassRoster(_ context.Context, id string) (*export.Workbook, *models.Class, error) {
	class := &models.Class{ID: id, Title: "Ink"}
	wb, err := export.ClassRoster(class, nil, nil)
	return wb, class, err
}

// ---- harness ----

type harness struct {
	router      *gin.Engine
	jwt         *auth.JWTService
	enrollments *enrollmentService
	reviews     *reviewService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, validation.RegisterCustomRules())

	h := &harness{
		jwt:         auth.NewJWTService(auth.JWTConfig{SecretKey: "routes-test", AccessTokenExp: time.Hour}),
		enrollments: &enrollmentService{},
		reviews:     &reviewService{},
	}
	hub := websocket.NewHub(zerolog.Nop())

	h.router = gin.New()
	routes.SetupRouter(h.router, routes.Controllers{
		User:       controllers.NewUserController(userService{jwt: h.jwt}),
		Catalog:    controllers.NewCatalogController(catalogService{}),
		Enrollment: controllers.NewEnrollmentController(h.enrollments),
		Submission: controllers.NewSubmissionController(h.reviews),
		Report:     controllers.NewReportController(rosterBuilder{}),
		Feed:       websocket.NewHandler(hub, nil, zerolog.Nop()),
	}, middleware.NewAuthMiddleware(h.jwt))
	return h
}

func (h *harness) do(t *testing.T, method, path string, role models.RoleType, email, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if role != "" {
		token, _, err := h.jwt.GenerateToken(email, role)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

const (
	studentEmail = "ana@example.com"
	adminEmail   = "boss@studio.art"
	enrollmentID = "9b2f6a51-3c1d-4e8f-a7b0-2d4c6e8f0a1b"
)

// ---- tests ----

func TestPublicRoutes(t *testing.T) {
	h := newHarness(t)

	w := h.do(t, http.MethodGet, "/api/v1/classes", "", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]any)
	assert.Equal(t, float64(1), data["count"])

	w = h.do(t, http.MethodGet, "/api/v1/classes/nope", "", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = h.do(t, http.MethodGet, "/api/v1/archives/approved", "", "", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = h.do(t, http.MethodPost, "/api/v1/auth/token", "", "", `{"email":"ana@example.com"}`)
	require.Equal(t, http.StatusOK, w.Code)
	token := decode(t, w)["data"].(map[string]any)["token"].(string)
	_, err := h.jwt.ValidateAndExtractClaims(token)
	assert.NoError(t, err)

	w = h.do(t, http.MethodPost, "/api/v1/auth/token", "", "", `{"email":"not-an-email"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReserveSeat(t *testing.T) {
	h := newHarness(t)

	w := h.do(t, http.MethodPost, "/api/v1/classes/c1/enrollments", "", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = h.do(t, http.MethodPost, "/api/v1/classes/c1/enrollments", models.RoleStudent, studentEmail, "")
	require.Equal(t, http.StatusCreated, w.Code)
	data := decode(t, w)["data"].(map[string]any)
	assert.Equal(t, studentEmail, data["email"])
	assert.Equal(t, "c1", data["classId"])

	h.enrollments.reserveErr = apperrors.ErrClassFull
	w = h.do(t, http.MethodPost, "/api/v1/classes/c1/enrollments", models.RoleStudent, studentEmail, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	errBody := decode(t, w)["error"].(map[string]any)
	assert.Equal(t, "NoCapacity", errBody["kind"])
}

func TestListEnrollments_TargetEmail(t *testing.T) {
	h := newHarness(t)

	w := h.do(t, http.MethodGet, "/api/v1/enrollments", models.RoleStudent, studentEmail, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, studentEmail, h.enrollments.listedEmail)

	w = h.do(t, http.MethodGet, "/api/v1/enrollments?email=other@example.com", models.RoleStudent, studentEmail, "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = h.do(t, http.MethodGet, "/api/v1/payments?email=other@example.com", models.RoleAdmin, adminEmail, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "other@example.com", h.enrollments.listedEmail)
}

func TestCancelEnrollment(t *testing.T) {
	h := newHarness(t)

	w := h.do(t, http.MethodDelete, "/api/v1/enrollments/"+enrollmentID, models.RoleStudent, studentEmail, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, appauth.Principal{Email: studentEmail, Role: models.RoleStudent}, h.enrollments.cancelledBy)
}

func TestPayments(t *testing.T) {
	h := newHarness(t)

	w := h.do(t, http.MethodPost, "/api/v1/payments", models.RoleStudent, studentEmail, `{"enrollmentId":"not-a-uuid"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = h.do(t, http.MethodPost, "/api/v1/payments", models.RoleStudent, studentEmail,
		`{"enrollmentId":"`+enrollmentID+`","transactionId":"pi_1","amount":1500,"currency":"EUR"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	data := decode(t, w)["data"].(map[string]any)
	assert.Equal(t, true, data["enrollmentDeleted"])
	assert.Equal(t, enrollmentID, data["deletedEnrollmentId"])

	require.NotNil(t, h.enrollments.finalized.Amount)
	assert.Equal(t, int64(1500), *h.enrollments.finalized.Amount)
	assert.Equal(t, studentEmail, h.enrollments.finalized.Email)
	assert.Equal(t, "EUR", h.enrollments.finalized.Currency)

	w = h.do(t, http.MethodPost, "/api/v1/payments/intent", models.RoleStudent, studentEmail, `{"enrollmentId":"`+enrollmentID+`"}`)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, true, decode(t, w)["error"].(map[string]any)["retryable"])
}

func TestSubmissionRoleGating(t *testing.T) {
	h := newHarness(t)
	submit := `{"title":"Ink wash","instructorName":"Rui","price":2000,"seatsAvailable":5}`

	tests := []struct {
		name   string
		method string
		path   string
		role   models.RoleType
		body   string
		want   int
	}{
		{name: "student cannot submit", method: http.MethodPost, path: "/api/v1/submissions", role: models.RoleStudent, body: submit, want: http.StatusForbidden},
		{name: "instructor submits", method: http.MethodPost, path: "/api/v1/submissions", role: models.RoleInstructor, body: submit, want: http.StatusCreated},
		{name: "instructor cannot list all", method: http.MethodGet, path: "/api/v1/submissions", role: models.RoleInstructor, want: http.StatusForbidden},
		{name: "admin lists all", method: http.MethodGet, path: "/api/v1/submissions?status=approved", role: models.RoleAdmin, want: http.StatusOK},
		{name: "admin bad status filter", method: http.MethodGet, path: "/api/v1/submissions?status=archived", role: models.RoleAdmin, want: http.StatusBadRequest},
		{name: "instructor cannot review", method: http.MethodPut, path: "/api/v1/submissions/c1/status", role: models.RoleInstructor, body: `{"status":"approved"}`, want: http.StatusForbidden},
		{name: "admin reviews", method: http.MethodPut, path: "/api/v1/submissions/c1/status", role: models.RoleAdmin, body: `{"status":"approved"}`, want: http.StatusOK},
		{name: "unknown status rejected", method: http.MethodPut, path: "/api/v1/submissions/c1/status", role: models.RoleAdmin, body: `{"status":"archived"}`, want: http.StatusBadRequest},
		{name: "admin feedback", method: http.MethodPut, path: "/api/v1/submissions/c1/feedback", role: models.RoleAdmin, body: `{"feedback":"Great"}`, want: http.StatusOK},
		{name: "missing submission", method: http.MethodGet, path: "/api/v1/submissions/zzz", role: models.RoleInstructor, want: http.StatusNotFound},
		{name: "denied archive is admin only", method: http.MethodGet, path: "/api/v1/archives/denied", role: models.RoleStudent, want: http.StatusForbidden},
		{name: "any user lists own submissions", method: http.MethodGet, path: "/api/v1/submissions/mine", role: models.RoleStudent, want: http.StatusOK},
		{name: "no peeking at others", method: http.MethodGet, path: "/api/v1/submissions/mine?email=rui@studio.art", role: models.RoleStudent, want: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := h.do(t, tt.method, tt.path, tt.role, "someone@studio.art", tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}

	assert.Equal(t, models.ClassStatusApproved, h.reviews.status)
}

func TestMySubmissionsFiltersByCaller(t *testing.T) {
	h := newHarness(t)

	w := h.do(t, http.MethodGet, "/api/v1/submissions/mine", models.RoleInstructor, "rui@studio.art", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "rui@studio.art", h.reviews.filter.InstructorEmail)
}

func TestUserRoutes(t *testing.T) {
	h := newHarness(t)

	w := h.do(t, http.MethodPut, "/api/v1/users/ana@example.com", "", "", `{"name":"Ana"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Ana", decode(t, w)["data"].(map[string]any)["name"])

	w = h.do(t, http.MethodGet, "/api/v1/users", models.RoleStudent, studentEmail, "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = h.do(t, http.MethodPatch, "/api/v1/users/ana@example.com/role", models.RoleAdmin, adminEmail, `{"role":"instructor"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "INSTRUCTOR", decode(t, w)["data"].(map[string]any)["role"])

	w = h.do(t, http.MethodPatch, "/api/v1/users/ana@example.com/role", models.RoleAdmin, adminEmail, `{"role":"wizard"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRosterDownload(t *testing.T) {
	h := newHarness(t)

	w := h.do(t, http.MethodGet, "/api/v1/reports/classes/c1/roster.xlsx", models.RoleInstructor, "rui@studio.art", "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = h.do(t, http.MethodGet, "/api/v1/reports/classes/c1/roster.xlsx", models.RoleAdmin, adminEmail, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "roster_c1_")
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", w.Header().Get("Content-Type"))
	assert.Equal(t, "PK", w.Body.String()[:2])
}

func TestFeedRequiresAdminForCatalog(t *testing.T) {
	h := newHarness(t)

	w := h.do(t, http.MethodGet, "/api/v1/ws/catalog", models.RoleStudent, studentEmail, "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = h.do(t, http.MethodGet, "/api/v1/ws/classes/c1", "", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
