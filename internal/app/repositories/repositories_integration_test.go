//go:build integration

package repositories_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/monchobi/artschool/internal/app/models"
	"github.com/monchobi/artschool/internal/app/repositories"
	"github.com/monchobi/artschool/internal/pkg/apperrors"
	"github.com/monchobi/artschool/internal/pkg/helpers"
	"github.com/monchobi/artschool/internal/testutil/testdb"
)

var handle *testdb.Handle

func TestMain(m *testing.M) {
	h, err := testdb.Start(context.Background())
	if err != nil {
		panic(err)
	}
	handle = h
	code := m.Run()
	h.Close()
	os.Exit(code)
}

func setup(t *testing.T) *repositories.Repositories {
	t.Helper()
	require.NoError(t, handle.Reset(context.Background()))
	return repositories.NewRepositories(handle.DB)
}

func createClass(t *testing.T, repos *repositories.Repositories, seats int, price int64) *models.Class {
	t.Helper()
	now := helpers.NowUTC()
	class := &models.Class{
		ID:              uuid.NewString(),
		Title:           "Ink wash",
		InstructorName:  "Rui",
		InstructorEmail: "rui@studio.art",
		Price:           price,
		SeatsAvailable:  seats,
		Status:          models.ClassStatusApproved,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	require.NoError(t, repos.ClassRepository.Create(context.Background(), class))
	return class
}

func newEnrollment(classID, email string) *models.Enrollment {
	return &models.Enrollment{ID: uuid.NewString(), ClassID: classID, Email: email, CreatedAt: helpers.NowUTC()}
}

func TestReserve_ConcurrentNeverOversells(t *testing.T) {
	repos := setup(t)
	ctx := context.Background()
	const seats, callers = 5, 25
	class := createClass(t, repos, seats, 3000)

	var (
		wg           sync.WaitGroup
		mu           sync.Mutex
		ok, rejected int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := repos.EnrollmentRepository.Reserve(ctx, newEnrollment(class.ID, "s@example.com"))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, apperrors.ErrClassFull):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, seats, ok)
	assert.Equal(t, callers-seats, rejected)

	stored, err := repos.ClassRepository.GetByID(ctx, class.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.SeatsAvailable)

	enrolled, err := repos.EnrollmentRepository.ListByClass(ctx, class.ID)
	require.NoError(t, err)
	assert.Len(t, enrolled, seats)
}

func TestReserve_Failures(t *testing.T) {
	repos := setup(t)
	ctx := context.Background()

	err := repos.EnrollmentRepository.Reserve(ctx, newEnrollment(uuid.NewString(), "s@example.com"))
	assert.ErrorIs(t, err, apperrors.ErrClassNotFound)

	err = repos.EnrollmentRepository.Reserve(ctx, newEnrollment("not-a-uuid", "s@example.com"))
	assert.ErrorIs(t, err, apperrors.ErrClassNotFound)

	full := createClass(t, repos, 0, 100)
	err = repos.EnrollmentRepository.Reserve(ctx, newEnrollment(full.ID, "s@example.com"))
	assert.ErrorIs(t, err, apperrors.ErrClassFull)
}

func TestReserve_OnlyApprovedClasses(t *testing.T) {
	repos := setup(t)
	ctx := context.Background()

	for _, status := range []models.ClassStatus{models.ClassStatusPending, models.ClassStatusDenied} {
		class := createClass(t, repos, 2, 100)
		_, _, err := repos.ClassRepository.UpdateStatus(ctx, class.ID, status)
		require.NoError(t, err)

		err = repos.EnrollmentRepository.Reserve(ctx, newEnrollment(class.ID, "s@example.com"))
		assert.ErrorIs(t, err, apperrors.ErrClassNotFound, string(status))

		stored, err := repos.ClassRepository.GetByID(ctx, class.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, stored.SeatsAvailable, string(status))

		enrolled, err := repos.EnrollmentRepository.ListByClass(ctx, class.ID)
		require.NoError(t, err)
		assert.Empty(t, enrolled)
	}
}

func TestReserve_CopiesClassAndDeleteRestoresSeat(t *testing.T) {
	repos := setup(t)
	ctx := context.Background()
	class := createClass(t, repos, 1, 4200)

	e := newEnrollment(class.ID, "a@example.com")
	require.NoError(t, repos.EnrollmentRepository.Reserve(ctx, e))
	assert.Equal(t, "Ink wash", e.ClassTitle)
	assert.Equal(t, int64(4200), e.Price)

	stored, err := repos.EnrollmentRepository.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, e.Email, stored.Email)

	deleted, err := repos.EnrollmentRepository.Delete(ctx, e.ID, true)
	require.NoError(t, err)
	assert.Equal(t, class.ID, deleted.ClassID)

	after, err := repos.ClassRepository.GetByID(ctx, class.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, after.SeatsAvailable)

	_, err = repos.EnrollmentRepository.Delete(ctx, e.ID, true)
	assert.ErrorIs(t, err, apperrors.ErrEnrollmentNotFound)
}

func TestUpdateStatus_ArchivesOnce(t *testing.T) {
	repos := setup(t)
	ctx := context.Background()
	class := createClass(t, repos, 3, 0)
	_, _, err := repos.ClassRepository.UpdateStatus(ctx, class.ID, models.ClassStatusPending)
	require.NoError(t, err)

	for i, wantChanged := range []bool{true, false, false} {
		updated, changed, err := repos.ClassRepository.UpdateStatus(ctx, class.ID, models.ClassStatusApproved)
		require.NoError(t, err)
		assert.Equal(t, wantChanged, changed, "attempt %d", i)
		assert.Equal(t, models.ClassStatusApproved, updated.Status)
	}

	approved, err := repos.ClassRepository.ListArchive(ctx, models.ClassStatusApproved)
	require.NoError(t, err)
	require.Len(t, approved, 1)
	assert.Equal(t, class.ID, approved[0].ClassID)
	assert.Equal(t, "Ink wash", approved[0].Snapshot.Title)

	_, changed, err := repos.ClassRepository.UpdateStatus(ctx, class.ID, models.ClassStatusDenied)
	require.NoError(t, err)
	assert.True(t, changed)

	denied, err := repos.ClassRepository.ListArchive(ctx, models.ClassStatusDenied)
	require.NoError(t, err)
	assert.Len(t, denied, 1)

	_, _, err = repos.ClassRepository.UpdateStatus(ctx, uuid.NewString(), models.ClassStatusApproved)
	assert.ErrorIs(t, err, apperrors.ErrClassNotFound)
}

func TestUpdateFeedback_KeepsStatus(t *testing.T) {
	repos := setup(t)
	ctx := context.Background()
	class := createClass(t, repos, 3, 0)

	updated, err := repos.ClassRepository.UpdateFeedback(ctx, class.ID, "Add a supplies list")
	require.NoError(t, err)
	require.NotNil(t, updated.Feedback)
	assert.Equal(t, "Add a supplies list", *updated.Feedback)
	assert.Equal(t, models.ClassStatusApproved, updated.Status)
}

func TestFinalize(t *testing.T) {
	repos := setup(t)
	ctx := context.Background()
	class := createClass(t, repos, 2, 5000)

	e := newEnrollment(class.ID, "a@example.com")
	require.NoError(t, repos.EnrollmentRepository.Reserve(ctx, e))

	payment := &models.Payment{ID: uuid.NewString(), Email: "a@example.com", Currency: "usd", EnrollmentID: e.ID, CreatedAt: helpers.NowUTC()}
	deleted, err := repos.PaymentRepository.Finalize(ctx, payment, nil)
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Equal(t, int64(5000), payment.Amount)
	assert.Equal(t, class.ID, payment.ClassID)

	_, err = repos.EnrollmentRepository.GetByID(ctx, e.ID)
	assert.ErrorIs(t, err, apperrors.ErrEnrollmentNotFound)

	again := &models.Payment{ID: uuid.NewString(), Email: "a@example.com", Currency: "usd", EnrollmentID: e.ID, CreatedAt: helpers.NowUTC()}
	amount := int64(5000)
	_, err = repos.PaymentRepository.Finalize(ctx, again, &amount)
	assert.ErrorIs(t, err, apperrors.ErrPaymentAlreadyRecorded)

	orphan := &models.Payment{ID: uuid.NewString(), Email: "b@example.com", Currency: "usd", EnrollmentID: uuid.NewString(), CreatedAt: helpers.NowUTC()}
	_, err = repos.PaymentRepository.Finalize(ctx, orphan, nil)
	assert.ErrorIs(t, err, apperrors.ErrAmountRequired)

	amount = 1234
	deleted, err = repos.PaymentRepository.Finalize(ctx, orphan, &amount)
	require.NoError(t, err)
	assert.False(t, deleted)

	payments, err := repos.PaymentRepository.ListByEmail(ctx, "b@example.com")
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, int64(1234), payments[0].Amount)
	assert.WithinDuration(t, orphan.CreatedAt, payments[0].CreatedAt, time.Second)
}

func TestUsers(t *testing.T) {
	repos := setup(t)
	ctx := context.Background()

	created, err := repos.UserRepository.Upsert(ctx, &models.User{Email: "ana@example.com", Name: "Ana", Role: models.RoleStudent})
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, created.Role)

	_, err = repos.UserRepository.SetRole(ctx, "ana@example.com", models.RoleInstructor)
	require.NoError(t, err)

	updated, err := repos.UserRepository.Upsert(ctx, &models.User{Email: "ana@example.com", Name: "Ana S", Role: models.RoleStudent})
	require.NoError(t, err)
	assert.Equal(t, "Ana S", updated.Name)
	assert.Equal(t, models.RoleInstructor, updated.Role, "upsert never downgrades a role")

	admin, err := repos.UserRepository.EnsureRole(ctx, "boss@studio.art", models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, admin.Role)

	_, err = repos.UserRepository.SetRole(ctx, "ghost@example.com", models.RoleAdmin)
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)

	users, err := repos.UserRepository.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)
}
