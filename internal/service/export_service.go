package service

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/noah-isme/school-mgmt-api/internal/models"
	appErrors "github.com/noah-isme/school-mgmt-api/pkg/errors"
	"github.com/noah-isme/school-mgmt-api/pkg/export"
)

// ExportFormat selects the rendered output type.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

type reportGenerator interface {
	StudentReport(ctx context.Context, studentID string) (*models.StudentReport, error)
	CourseReport(ctx context.Context, courseID string) (*models.CourseReport, error)
}

// ExportResult bundles rendered bytes with delivery metadata.
type ExportResult struct {
	FileName    string
	ContentType string
	Data        []byte
}

// ExportService renders reports into downloadable documents.
type ExportService struct {
	reports reportGenerator
	csv     *export.CSVExporter
	pdf     *export.PDFExporter
	logger  *zap.Logger
}

// NewExportService constructs the export service.
func NewExportService(reports reportGenerator, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		reports: reports,
		csv:     export.NewCSVExporter(),
		pdf:     export.NewPDFExporter(),
		logger:  logger,
	}
}

// StudentReport renders a student report in the requested format.
func (s *ExportService) StudentReport(ctx context.Context, studentID string, format ExportFormat) (*ExportResult, error) {
	report, err := s.reports.StudentReport(ctx, studentID)
	if err != nil {
		return nil, err
	}
	dataset := studentReportDataset(report)
	title := fmt.Sprintf("Student Report - %s", report.StudentInfo)
	return s.render(dataset, title, fmt.Sprintf("student-report-%s", studentID), format)
}

// CourseReport renders a course report in the requested format.
func (s *ExportService) CourseReport(ctx context.Context, courseID string, format ExportFormat) (*ExportResult, error) {
	report, err := s.reports.CourseReport(ctx, courseID)
	if err != nil {
		return nil, err
	}
	dataset := courseReportDataset(report)
	title := fmt.Sprintf("Course Report - %s (%s)", report.CourseName, report.CourseCode)
	return s.render(dataset, title, fmt.Sprintf("course-report-%s", courseID), format)
}

func (s *ExportService) render(dataset export.Dataset, title, baseName string, format ExportFormat) (*ExportResult, error) {
	switch format {
	case ExportFormatCSV:
		data, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportResult{FileName: baseName + ".csv", ContentType: "text/csv", Data: data}, nil
	case ExportFormatPDF:
		data, err := s.pdf.Render(dataset, title)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportResult{FileName: baseName + ".pdf", ContentType: "application/pdf", Data: data}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}
}

func studentReportDataset(report *models.StudentReport) export.Dataset {
	headers := []string{"Course", "Code", "GPA", "Status"}
	rows := make([]map[string]string, 0, len(report.Courses))
	for _, course := range report.Courses {
		rows = append(rows, map[string]string{
			"Course": course.CourseName,
			"Code":   course.CourseCode,
			"GPA":    strconv.FormatFloat(course.CourseGPA, 'f', 2, 64),
			"Status": string(course.Status),
		})
	}
	return export.Dataset{Headers: headers, Rows: rows}
}

func courseReportDataset(report *models.CourseReport) export.Dataset {
	headers := []string{"Student", "Enrolled At", "Status", "GPA"}
	rows := make([]map[string]string, 0, len(report.Students))
	for _, student := range report.Students {
		rows = append(rows, map[string]string{
			"Student":     student.DisplayInfo,
			"Enrolled At": student.EnrolledAt.Format("2006-01-02"),
			"Status":      string(student.Status),
			"GPA":         strconv.FormatFloat(student.GPA, 'f', 2, 64),
		})
	}
	return export.Dataset{Headers: headers, Rows: rows}
}
