package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fintrack/internal/services"
)

// ReportHandler serves monthly/yearly financial reports.
type ReportHandler struct {
	reportService services.ReportServicer
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reportService services.ReportServicer) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// GetReport generates the report for a month.
// @Summary     Generate a report
// @Description Monthly and yearly income, expense and savings with a category breakdown of the month's expenses
// @Tags        reports
// @Produce     json
// @Security    BearerAuth
// @Param       month query string true "Month (1-12 or 01-12)"
// @Param       year  query string true "Year (YYYY)"
// @Success     200 {object} services.Report "Report"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /reports [get]
func (h *ReportHandler) GetReport(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	month, year, err := services.ParseReportPeriod(c.Query("month"), c.Query("year"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	report, err := h.reportService.GenerateReport(userID, month, year)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}
