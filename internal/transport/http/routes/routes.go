package routes

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Natsdon/CECOS-Connect/internal/infra/config"
	"github.com/Natsdon/CECOS-Connect/internal/transport/http/handlers"
	"github.com/Natsdon/CECOS-Connect/internal/transport/http/middleware"
	"github.com/Natsdon/CECOS-Connect/internal/usecase"
)

// ServiceSet groups the services the HTTP layer depends on.
type ServiceSet struct {
	Auth       *usecase.AuthService
	Authorizer *usecase.Authorizer
	Users      *usecase.UserService
	Grants     *usecase.GrantService
	Students   *usecase.StudentService
	Faculty    *usecase.FacultyService
	Courses    *usecase.CourseService
	Attendance *usecase.AttendanceService
	Exams      *usecase.ExamService
	Admissions *usecase.AdmissionService
}

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config      *config.AppConfig
	Logger      *zap.Logger
	RateLimiter *middleware.RateLimiter
	Metrics     *middleware.HTTPMetrics
	Services    ServiceSet
	Database    DatabaseChecker
	Cache       CacheChecker
}

// DatabaseChecker exposes readiness behaviour for database connections.
type DatabaseChecker interface {
	Ping(ctx context.Context) error
}

// CacheChecker exposes readiness behaviour for cache backends.
type CacheChecker interface {
	HealthCheck(ctx context.Context) error
}

// Register configures the Gin engine with routes and middleware. Every
// protected route is gated by exactly one permission/resource pair; what a
// role can reach is decided by the policy table and grants, not by the
// route wiring.
func Register(deps Dependencies) *gin.Engine {
	if deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.CORS(deps.Config.App.AllowedOrigins))
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Handler())
	}

	requireAuth := middleware.RequireAuth(deps.Services.Auth, deps.Logger)
	requires := func(permission, resource string) gin.HandlerFunc {
		return middleware.RequirePermission(deps.Services.Authorizer, permission, resource)
	}

	healthOptions := make([]handlers.HealthOption, 0, 2)
	if deps.Database != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("database", deps.Database.Ping))
	}
	if deps.Cache != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("redis", deps.Cache.HealthCheck))
	}

	healthHandler := handlers.NewHealthHandler(healthOptions...)
	r.GET("/healthz", healthHandler.Status)
	r.GET("/readyz", healthHandler.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	{
		authHandler := handlers.NewAuthHandler(deps.Services.Auth)
		authHandler.RegisterRoutes(api.Group("/auth"), requireAuth, buildLoginMiddlewares(deps)...)

		userGroup := api.Group("/users")
		userGroup.Use(requireAuth)
		handlers.NewUserHandler(deps.Services.Users).RegisterRoutes(userGroup, requires)

		privilegeGroup := api.Group("/privileges")
		privilegeGroup.Use(requireAuth)
		handlers.NewGrantHandler(deps.Services.Grants).RegisterRoutes(privilegeGroup, requires)

		studentGroup := api.Group("/students")
		studentGroup.Use(requireAuth)
		handlers.NewStudentHandler(deps.Services.Students).RegisterRoutes(studentGroup, requires)

		facultyGroup := api.Group("/faculty")
		facultyGroup.Use(requireAuth)
		handlers.NewFacultyHandler(deps.Services.Faculty).RegisterRoutes(facultyGroup, requires)

		courseGroup := api.Group("/courses")
		courseGroup.Use(requireAuth)
		enrollmentGroup := api.Group("/enrollments")
		enrollmentGroup.Use(requireAuth)
		handlers.NewCourseHandler(deps.Services.Courses).RegisterRoutes(courseGroup, enrollmentGroup, requires)

		attendanceGroup := api.Group("/attendance")
		attendanceGroup.Use(requireAuth)
		handlers.NewAttendanceHandler(deps.Services.Attendance).RegisterRoutes(attendanceGroup, requires)

		examGroup := api.Group("/exams")
		examGroup.Use(requireAuth)
		submissionGroup := api.Group("/submissions")
		submissionGroup.Use(requireAuth)
		handlers.NewExamHandler(deps.Services.Exams).RegisterRoutes(examGroup, submissionGroup, courseGroup, requires)

		admissionGroup := api.Group("/admissions")
		protectedAdmissions := admissionGroup.Group("")
		protectedAdmissions.Use(requireAuth)
		handlers.NewAdmissionHandler(deps.Services.Admissions).RegisterRoutes(admissionGroup, protectedAdmissions, requires)
	}

	return r
}

func buildLoginMiddlewares(deps Dependencies) []gin.HandlerFunc {
	if deps.RateLimiter == nil || deps.Config == nil {
		return nil
	}

	limit := deps.Config.RateLimit.LoginMaxAttempts
	if limit <= 0 {
		return nil
	}

	window := deps.Config.RateLimit.WindowDuration
	if window <= 0 {
		window = time.Minute
	}

	rule := middleware.RateLimitRule{
		Name:       "auth_login_ip",
		Limit:      limit,
		Window:     window,
		Identifier: middleware.ClientIPIdentifier(),
	}

	return []gin.HandlerFunc{deps.RateLimiter.Limit(rule)}
}
