package controllers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/monchobi/artschool/internal/app/models"
	"github.com/monchobi/artschool/internal/middleware"
	"github.com/monchobi/artschool/internal/pkg/export"
	"github.com/monchobi/artschool/internal/pkg/helpers"
	"github.com/monchobi/artschool/internal/pkg/logger"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// RosterBuilder produces class roster workbooks.
type RosterBuilder interface {
	ClassRoster(ctx context.Context, classID string) (*export.Workbook, *models.Class, error)
}

// ReportController serves spreadsheet exports
type ReportController struct {
	reports RosterBuilder
}

// NewReportController creates a new ReportController
func NewReportController(reports RosterBuilder) *ReportController {
	return &ReportController{
		reports: reports,
	}
}

// ClassRoster downloads the roster of a class
// @Summary Download a class roster
// @Description XLSX workbook with the class, its open enrollments and its payments
// @Tags reports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param id path string true "Class ID"
// @Success 200 {file} file "Roster workbook"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - Admin role required"
// @Failure 404 {object} dto.ErrorResponse "Class not found"
// @Router /reports/classes/{id}/roster.xlsx [get]
func (rc *ReportController) ClassRoster(ctx *gin.Context) {
	wb, class, err := rc.reports.ClassRoster(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	defer wb.Close()

	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.RosterFilename(class, helpers.NowUTC())))
	ctx.Header("Content-Type", xlsxContentType)
	ctx.Status(http.StatusOK)
	if _, err := wb.WriteTo(ctx.Writer); err != nil {
		logger.Error().Err(err).Str("classID", class.ID).Msg("Failed to stream roster workbook")
	}
}
