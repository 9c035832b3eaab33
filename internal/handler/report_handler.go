package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-mgmt-api/internal/service"
	"github.com/noah-isme/school-mgmt-api/pkg/response"
)

// ReportHandler exposes report and export endpoints.
type ReportHandler struct {
	reports *service.ReportService
	exports *service.ExportService
	metrics *service.MetricsService
}

// NewReportHandler constructs ReportHandler.
func NewReportHandler(reports *service.ReportService, exports *service.ExportService, metrics *service.MetricsService) *ReportHandler {
	return &ReportHandler{reports: reports, exports: exports, metrics: metrics}
}

// StudentReport godoc
// @Summary Student academic report
// @Tags Reports
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /reports/students/{id} [get]
func (h *ReportHandler) StudentReport(c *gin.Context) {
	report, err := h.reports.StudentReport(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.CountReport("student")
	response.JSON(c, http.StatusOK, report, nil, map[string]interface{}{"overall_gpa": report.OverallGPA()})
}

// TeacherReport godoc
// @Summary Teacher load report
// @Tags Reports
// @Produce json
// @Param id path string true "Teacher ID"
// @Success 200 {object} response.Envelope
// @Router /reports/teachers/{id} [get]
func (h *ReportHandler) TeacherReport(c *gin.Context) {
	report, err := h.reports.TeacherReport(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.CountReport("teacher")
	response.JSON(c, http.StatusOK, report, nil)
}

// CourseReport godoc
// @Summary Course roster report
// @Tags Reports
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /reports/courses/{id} [get]
func (h *ReportHandler) CourseReport(c *gin.Context) {
	report, err := h.reports.CourseReport(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.CountReport("course")
	response.JSON(c, http.StatusOK, report, nil)
}

// SystemOverview godoc
// @Summary Whole-school overview
// @Tags Reports
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /reports/overview [get]
func (h *ReportHandler) SystemOverview(c *gin.Context) {
	overview, err := h.reports.SystemOverview(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.CountReport("overview")
	response.JSON(c, http.StatusOK, overview, nil)
}

// ExportStudentReport godoc
// @Summary Export student report
// @Tags Reports
// @Produce text/csv
// @Param id path string true "Student ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Router /reports/students/{id}/export [get]
func (h *ReportHandler) ExportStudentReport(c *gin.Context) {
	format := service.ExportFormat(c.DefaultQuery("format", "csv"))
	result, err := h.exports.StudentReport(c.Request.Context(), c.Param("id"), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+result.FileName)
	c.Data(http.StatusOK, result.ContentType, result.Data)
}

// ExportCourseReport godoc
// @Summary Export course report
// @Tags Reports
// @Produce text/csv
// @Param id path string true "Course ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Router /reports/courses/{id}/export [get]
func (h *ReportHandler) ExportCourseReport(c *gin.Context) {
	format := service.ExportFormat(c.DefaultQuery("format", "csv"))
	result, err := h.exports.CourseReport(c.Request.Context(), c.Param("id"), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+result.FileName)
	c.Data(http.StatusOK, result.ContentType, result.Data)
}
