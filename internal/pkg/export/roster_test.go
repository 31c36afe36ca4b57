package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/monchobi/artschool/internal/app/models"
)

func TestClassRoster(t *testing.T) {
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	class := &models.Class{ID: "c1", Title: "Ink", InstructorName: "Rui", Status: models.ClassStatusApproved, SeatsAvailable: 3}
	enrollments := []*models.Enrollment{{ID: "e1", Email: "a@example.com", Price: 2050, CreatedAt: at}}
	payments := []*models.Payment{{ID: "p1", Email: "b@example.com", Amount: 1999, Currency: "usd", TransactionID: "pi_1", CreatedAt: at}}

	wb, err := ClassRoster(class, enrollments, payments)
	require.NoError(t, err)
	defer wb.Close()

	assert.Equal(t, []string{"Class", "Enrollments", "Payments"}, wb.File.GetSheetList())

	summary, err := wb.File.GetRows("Class")
	require.NoError(t, err)
	require.Len(t, summary, 2)
	assert.Equal(t, []string{"c1", "Ink", "Rui", "APPROVED", "3", "1", "1"}, summary[1])

	enrolled, err := wb.File.GetRows("Enrollments")
	require.NoError(t, err)
	require.Len(t, enrolled, 2)
	assert.Equal(t, []string{"e1", "a@example.com", "20.50", "2026-03-01T10:00:00Z"}, enrolled[1])

	paid, err := wb.File.GetRows("Payments")
	require.NoError(t, err)
	require.Len(t, paid, 2)
	assert.Equal(t, "19.99", paid[1][2])

	var buf bytes.Buffer
	_, err = wb.WriteTo(&buf)
	require.NoError(t, err)

	reopened, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer reopened.Close()
	assert.Len(t, reopened.GetSheetList(), 3)
}

func TestRosterFilename(t *testing.T) {
	name := RosterFilename(&models.Class{ID: "c1"}, time.Date(2026, 10, 19, 23, 0, 0, 0, time.UTC))
	assert.Equal(t, "roster_c1_2026-10-19.xlsx", name)
}

func TestFormatCents(t *testing.T) {
	tests := map[int64]string{0: "0.00", 5: "0.05", 1999: "19.99", -250: "-2.50"}
	for in, want := range tests {
		assert.Equal(t, want, formatCents(in))
	}
}
