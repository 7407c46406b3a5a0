package handlers

import (
	"bytes"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/exam-service/internal/reports"
	"github.com/SAP-F-2025/exam-service/internal/services"
	"github.com/SAP-F-2025/exam-service/internal/utils"
)

const (
	csvContentType  = "text/csv"
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type ReportHandler struct {
	BaseHandler
	service services.ReportService
}

func NewReportHandler(service services.ReportService, logger utils.Logger) *ReportHandler {
	return &ReportHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// Leaderboard
// @Summary Top students by graded score
// @Tags reports
// @Produce json
// @Success 200 {object} SuccessResponse{data=[]reports.LeaderboardEntry}
// @Router /questions/leaderboard/ [get]
func (h *ReportHandler) Leaderboard(c *gin.Context) {
	entries, err := h.service.Leaderboard(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Data: entries})
}

func (h *ReportHandler) TeacherReports(c *gin.Context) {
	h.LogRequest(c, "Building teacher reports")

	report, err := h.service.TeacherReports(c.Request.Context(), currentAccount(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Data: report})
}

func (h *ReportHandler) AdminActivity(c *gin.Context) {
	h.LogRequest(c, "Building admin activity")

	activity, err := h.service.AdminActivity(c.Request.Context(), currentAccount(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Data: activity})
}

// ExportCSV streams every submission as a CSV attachment
// @Summary Export performance as CSV
// @Tags reports
// @Produce text/csv
// @Success 200 {file} file
// @Router /questions/export/performance.csv [get]
func (h *ReportHandler) ExportCSV(c *gin.Context) {
	h.export(c, "performance.csv", csvContentType, reports.WriteCSV)
}

// ExportXLSX is the spreadsheet variant of ExportCSV.
func (h *ReportHandler) ExportXLSX(c *gin.Context) {
	h.export(c, "performance.xlsx", xlsxContentType, reports.WriteXLSX)
}

func (h *ReportHandler) export(c *gin.Context, filename, contentType string, write func(io.Writer, []reports.PerformanceRow) error) {
	h.LogRequest(c, "Exporting performance", "format", filename)

	rows, err := h.service.PerformanceRows(c.Request.Context(), currentAccount(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	// buffered so a write failure can still produce an error response
	var buf bytes.Buffer
	if err := write(&buf, rows); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, buf.Bytes())
}
