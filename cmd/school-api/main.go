package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/school-mgmt-api/api/swagger"
	"github.com/noah-isme/school-mgmt-api/internal/handler"
	"github.com/noah-isme/school-mgmt-api/internal/middleware"
	"github.com/noah-isme/school-mgmt-api/internal/repository"
	"github.com/noah-isme/school-mgmt-api/internal/service"
	"github.com/noah-isme/school-mgmt-api/pkg/config"
	"github.com/noah-isme/school-mgmt-api/pkg/database"
	"github.com/noah-isme/school-mgmt-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/school-mgmt-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/school-mgmt-api/pkg/middleware/requestid"
)

// @title School Management API
// @version 1.0.0
// @description Students, teachers, courses, enrollments, grading and reports
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect database", "error", err)
	}
	defer db.Close() //nolint:errcheck

	validate := validator.New()

	studentRepo := repository.NewStudentRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	gradeRepo := repository.NewGradeRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	examRepo := repository.NewExamRepository(db)

	metricsSvc := service.NewMetricsService()
	studentSvc := service.NewStudentService(studentRepo, enrollmentRepo, gradeRepo, validate, logr)
	teacherSvc := service.NewTeacherService(teacherRepo, validate, logr)
	courseSvc := service.NewCourseService(courseRepo, teacherRepo, validate, logr)
	enrollmentSvc := service.NewEnrollmentService(enrollmentRepo, studentRepo, courseRepo, cfg.Academics.MaxStudentsPerCourse, logr)
	assignmentSvc := service.NewAssignmentService(assignmentRepo, courseRepo, enrollmentRepo, validate, logr)
	examSvc := service.NewExamService(examRepo, courseRepo, enrollmentRepo, validate, logr)
	reportSvc := service.NewReportService(studentRepo, teacherRepo, courseRepo, enrollmentRepo, gradeRepo, assignmentRepo, examRepo, cfg.Academics.AcademicYear, logr)
	exportSvc := service.NewExportService(reportSvc, logr)

	studentHandler := handler.NewStudentHandler(studentSvc)
	teacherHandler := handler.NewTeacherHandler(teacherSvc, reportSvc)
	courseHandler := handler.NewCourseHandler(courseSvc, assignmentSvc, examSvc, enrollmentSvc)
	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentSvc)
	assignmentHandler := handler.NewAssignmentHandler(assignmentSvc)
	examHandler := handler.NewExamHandler(examSvc)
	reportHandler := handler.NewReportHandler(reportSvc, exportSvc, metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		students := api.Group("/students")
		{
			students.GET("", studentHandler.List)
			students.POST("", studentHandler.Create)
			students.GET("/:id", studentHandler.Get)
			students.PUT("/:id", studentHandler.Update)
			students.PATCH("/:id/status", studentHandler.SetStatus)
			students.GET("/:id/grades", studentHandler.ListGrades)
			students.POST("/:id/grades", studentHandler.RecordGrade)
			students.GET("/:id/attendance", studentHandler.ListAttendance)
			students.POST("/:id/attendance", studentHandler.MarkAttendance)
			students.GET("/:id/achievements", studentHandler.ListAchievements)
			students.POST("/:id/achievements", studentHandler.AddAchievement)
			students.GET("/:id/enrollments", enrollmentHandler.ListByStudent)
		}

		teachers := api.Group("/teachers")
		{
			teachers.GET("", teacherHandler.List)
			teachers.POST("", teacherHandler.Create)
			teachers.GET("/:id", teacherHandler.Get)
			teachers.PUT("/:id", teacherHandler.Update)
			teachers.PATCH("/:id/status", teacherHandler.SetStatus)
			teachers.GET("/:id/report", teacherHandler.Report)
		}

		courses := api.Group("/courses")
		{
			courses.GET("", courseHandler.List)
			courses.POST("", courseHandler.Create)
			courses.GET("/:id", courseHandler.Get)
			courses.PUT("/:id", courseHandler.Update)
			courses.PUT("/:id/teacher", courseHandler.AssignTeacher)
			courses.GET("/:id/assignments", courseHandler.ListAssignments)
			courses.GET("/:id/exams", courseHandler.ListExams)
			courses.GET("/:id/enrollments", courseHandler.ListEnrollments)
		}

		enrollments := api.Group("/enrollments")
		{
			enrollments.GET("", enrollmentHandler.List)
			enrollments.POST("", enrollmentHandler.Enroll)
			enrollments.POST("/drop", enrollmentHandler.Drop)
		}

		assignments := api.Group("/assignments")
		{
			assignments.POST("", assignmentHandler.Create)
			assignments.GET("/:id", assignmentHandler.Get)
			assignments.POST("/:id/close", assignmentHandler.Close)
			assignments.GET("/:id/submissions", assignmentHandler.ListSubmissions)
			assignments.POST("/:id/submissions", assignmentHandler.Submit)
			assignments.POST("/:id/grade", assignmentHandler.Grade)
			assignments.GET("/:id/average", assignmentHandler.AverageScore)
		}

		exams := api.Group("/exams")
		{
			exams.POST("", examHandler.Create)
			exams.GET("/:id", examHandler.Get)
			exams.PATCH("/:id/status", examHandler.SetStatus)
			exams.GET("/:id/results", examHandler.ListResults)
			exams.POST("/:id/results", examHandler.RecordResult)
			exams.GET("/:id/stats", examHandler.Stats)
		}

		reports := api.Group("/reports")
		{
			reports.GET("/students/:id", reportHandler.StudentReport)
			reports.GET("/students/:id/export", reportHandler.ExportStudentReport)
			reports.GET("/teachers/:id", reportHandler.TeacherReport)
			reports.GET("/courses/:id", reportHandler.CourseReport)
			reports.GET("/courses/:id/export", reportHandler.ExportCourseReport)
			reports.GET("/overview", reportHandler.SystemOverview)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
