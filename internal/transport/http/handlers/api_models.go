package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Natsdon/CECOS-Connect/internal/core/domain"
	"github.com/Natsdon/CECOS-Connect/internal/infra/logger"
)

// PermissionFactory builds the middleware gating a route behind one
// permission/resource pair.
type PermissionFactory func(permission, resource string) gin.HandlerFunc

// ErrorResponse represents a generic error payload with the request ID for
// correlation.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// NewErrorResponse creates an error response carrying the request ID.
func NewErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	requestID, _ := c.Request.Context().Value(logger.RequestIDKey{}).(string)
	return ErrorResponse{
		Error:     errorMsg,
		RequestID: requestID,
	}
}

// MessageResponse represents a simple message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// UserSummary describes the API view of an account.
type UserSummary struct {
	ID        int64      `json:"id"`
	Username  string     `json:"username"`
	CCLID     string     `json:"ccl_id"`
	Email     *string    `json:"email,omitempty"`
	Role      string     `json:"role"`
	IsActive  bool       `json:"is_active"`
	CreatedAt time.Time  `json:"created_at"`
	LastLogin *time.Time `json:"last_login,omitempty"`
}

func newUserSummary(user domain.User) UserSummary {
	return UserSummary{
		ID:        user.ID,
		Username:  user.Username,
		CCLID:     user.CCLID,
		Email:     user.Email,
		Role:      string(user.Role),
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt,
		LastLogin: user.LastLogin,
	}
}

// AuthLoginRequest defines the payload for the login endpoint. Identifier is
// a username or CCL ID.
type AuthLoginRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

// AuthLoginResponse describes a successful credential exchange.
type AuthLoginResponse struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	ExpiresIn   int         `json:"expires_in"`
	User        UserSummary `json:"user"`
}

// CreateUserRequest defines the account provisioning payload. When password
// is omitted one is generated and returned once.
type CreateUserRequest struct {
	Username string  `json:"username" binding:"required"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Role     string  `json:"role" binding:"required"`
	Password string  `json:"password"`
}

// CreateUserResponse returns the provisioned account and, when generated, the
// initial password. It is shown exactly once.
type CreateUserResponse struct {
	User            UserSummary `json:"user"`
	InitialPassword string      `json:"initial_password,omitempty"`
}

// SetActiveRequest toggles an account or record active flag.
type SetActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// GrantRequest defines the payload for issuing or revoking a privilege.
type GrantRequest struct {
	UserID     int64  `json:"user_id" binding:"required"`
	Permission string `json:"permission" binding:"required"`
	Resource   string `json:"resource" binding:"required"`
}

// GrantView is the API view of a stored privilege grant.
type GrantView struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	Permission string    `json:"permission"`
	Resource   string    `json:"resource"`
	GrantedBy  int64     `json:"granted_by"`
	GrantedAt  time.Time `json:"granted_at"`
}

func newGrantView(grant domain.Grant) GrantView {
	return GrantView{
		ID:         grant.ID,
		UserID:     grant.UserID,
		Permission: grant.Permission,
		Resource:   grant.Resource,
		GrantedBy:  grant.GrantedBy,
		GrantedAt:  grant.GrantedAt,
	}
}

// RevokeResponse reports whether a revocation removed anything.
type RevokeResponse struct {
	Removed bool `json:"removed"`
}

// StudentRequest defines the payload for registering a student record.
type StudentRequest struct {
	UserID     int64   `json:"user_id"`
	CCLID      string  `json:"ccl_id"`
	FirstName  string  `json:"first_name" binding:"required"`
	LastName   string  `json:"last_name" binding:"required"`
	Email      *string `json:"email" binding:"omitempty,email"`
	Phone      *string `json:"phone"`
	Department string  `json:"department" binding:"required"`
	Semester   int     `json:"semester" binding:"required"`
}

// StudentUpdateRequest carries partial student updates.
type StudentUpdateRequest struct {
	FirstName  *string `json:"first_name"`
	LastName   *string `json:"last_name"`
	Email      *string `json:"email" binding:"omitempty,email"`
	Phone      *string `json:"phone"`
	Department *string `json:"department"`
	Semester   *int    `json:"semester"`
}

// StudentView is the API view of a student record.
type StudentView struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	CCLID      string    `json:"ccl_id"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Email      *string   `json:"email,omitempty"`
	Phone      *string   `json:"phone,omitempty"`
	Department string    `json:"department"`
	Semester   int       `json:"semester"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func newStudentView(student domain.Student) StudentView {
	return StudentView{
		ID:         student.ID,
		UserID:     student.UserID,
		CCLID:      student.CCLID,
		FirstName:  student.FirstName,
		LastName:   student.LastName,
		Email:      student.Email,
		Phone:      student.Phone,
		Department: student.Department,
		Semester:   student.Semester,
		IsActive:   student.IsActive,
		CreatedAt:  student.CreatedAt,
		UpdatedAt:  student.UpdatedAt,
	}
}

// FacultyRequest defines the payload for registering a faculty record.
type FacultyRequest struct {
	UserID      int64   `json:"user_id"`
	CCLID       string  `json:"ccl_id"`
	FirstName   string  `json:"first_name" binding:"required"`
	LastName    string  `json:"last_name" binding:"required"`
	Email       *string `json:"email" binding:"omitempty,email"`
	Department  string  `json:"department" binding:"required"`
	Designation string  `json:"designation"`
}

// FacultyUpdateRequest carries partial faculty updates.
type FacultyUpdateRequest struct {
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	Email       *string `json:"email" binding:"omitempty,email"`
	Department  *string `json:"department"`
	Designation *string `json:"designation"`
	IsActive    *bool   `json:"is_active"`
}

// FacultyView is the API view of a faculty record.
type FacultyView struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	CCLID       string    `json:"ccl_id"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Email       *string   `json:"email,omitempty"`
	Department  string    `json:"department"`
	Designation string    `json:"designation"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

func newFacultyView(member domain.FacultyMember) FacultyView {
	return FacultyView{
		ID:          member.ID,
		UserID:      member.UserID,
		CCLID:       member.CCLID,
		FirstName:   member.FirstName,
		LastName:    member.LastName,
		Email:       member.Email,
		Department:  member.Department,
		Designation: member.Designation,
		IsActive:    member.IsActive,
		CreatedAt:   member.CreatedAt,
	}
}

// CourseRequest defines the payload for adding a course.
type CourseRequest struct {
	Code        string  `json:"code" binding:"required"`
	Title       string  `json:"title" binding:"required"`
	Description *string `json:"description"`
	Department  string  `json:"department" binding:"required"`
	CreditHours int     `json:"credit_hours" binding:"required"`
	FacultyID   *int64  `json:"faculty_id"`
}

// CourseUpdateRequest carries partial course updates.
type CourseUpdateRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Department  *string `json:"department"`
	CreditHours *int    `json:"credit_hours"`
	FacultyID   *int64  `json:"faculty_id"`
}

// CourseView is the API view of a course.
type CourseView struct {
	ID          int64     `json:"id"`
	Code        string    `json:"code"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	Department  string    `json:"department"`
	CreditHours int       `json:"credit_hours"`
	FacultyID   *int64    `json:"faculty_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func newCourseView(course domain.Course) CourseView {
	return CourseView{
		ID:          course.ID,
		Code:        course.Code,
		Title:       course.Title,
		Description: course.Description,
		Department:  course.Department,
		CreditHours: course.CreditHours,
		FacultyID:   course.FacultyID,
		CreatedAt:   course.CreatedAt,
	}
}

// EnrollRequest defines the payload for enrolling a student.
type EnrollRequest struct {
	StudentID int64  `json:"student_id" binding:"required"`
	CourseID  int64  `json:"course_id" binding:"required"`
	Semester  string `json:"semester" binding:"required"`
}

// EnrollmentView is the API view of an enrollment.
type EnrollmentView struct {
	ID         int64     `json:"id"`
	StudentID  int64     `json:"student_id"`
	CourseID   int64     `json:"course_id"`
	Semester   string    `json:"semester"`
	EnrolledAt time.Time `json:"enrolled_at"`
}

func newEnrollmentView(enrollment domain.Enrollment) EnrollmentView {
	return EnrollmentView{
		ID:         enrollment.ID,
		StudentID:  enrollment.StudentID,
		CourseID:   enrollment.CourseID,
		Semester:   enrollment.Semester,
		EnrolledAt: enrollment.EnrolledAt,
	}
}

// MarkAttendanceRequest defines one attendance entry.
type MarkAttendanceRequest struct {
	EnrollmentID int64  `json:"enrollment_id" binding:"required"`
	Date         string `json:"date"`
	Status       string `json:"status" binding:"required"`
}

// AttendanceView is the API view of an attendance entry.
type AttendanceView struct {
	ID           int64     `json:"id"`
	EnrollmentID int64     `json:"enrollment_id"`
	Date         string    `json:"date"`
	Status       string    `json:"status"`
	MarkedBy     int64     `json:"marked_by"`
	MarkedAt     time.Time `json:"marked_at"`
}

func newAttendanceView(record domain.AttendanceRecord) AttendanceView {
	return AttendanceView{
		ID:           record.ID,
		EnrollmentID: record.EnrollmentID,
		Date:         record.Date.Format("2006-01-02"),
		Status:       string(record.Status),
		MarkedBy:     record.MarkedBy,
		MarkedAt:     record.MarkedAt,
	}
}

// ExamRequest defines the payload for scheduling an exam.
type ExamRequest struct {
	CourseID    int64     `json:"course_id" binding:"required"`
	Title       string    `json:"title" binding:"required"`
	ScheduledAt time.Time `json:"scheduled_at" binding:"required"`
	TotalMarks  int       `json:"total_marks" binding:"required"`
}

// ExamUpdateRequest defines the payload for rescheduling an exam. Absent
// fields are left unchanged.
type ExamUpdateRequest struct {
	Title       *string    `json:"title"`
	ScheduledAt *time.Time `json:"scheduled_at"`
	TotalMarks  *int       `json:"total_marks"`
}

// ExamView is the API view of an exam.
type ExamView struct {
	ID          int64     `json:"id"`
	CourseID    int64     `json:"course_id"`
	Title       string    `json:"title"`
	ScheduledAt time.Time `json:"scheduled_at"`
	TotalMarks  int       `json:"total_marks"`
	CreatedBy   int64     `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

func newExamView(exam domain.Exam) ExamView {
	return ExamView{
		ID:          exam.ID,
		CourseID:    exam.CourseID,
		Title:       exam.Title,
		ScheduledAt: exam.ScheduledAt,
		TotalMarks:  exam.TotalMarks,
		CreatedBy:   exam.CreatedBy,
		CreatedAt:   exam.CreatedAt,
	}
}

// SubmitRequest defines the payload for an exam submission.
type SubmitRequest struct {
	Content string `json:"content" binding:"required"`
}

// GradeRequest defines the payload for grading a submission.
type GradeRequest struct {
	ObtainedMarks *int `json:"obtained_marks" binding:"required"`
}

// SubmissionView is the API view of a submission.
type SubmissionView struct {
	ID            int64      `json:"id"`
	ExamID        int64      `json:"exam_id"`
	StudentID     int64      `json:"student_id"`
	Content       string     `json:"content"`
	SubmittedAt   time.Time  `json:"submitted_at"`
	ObtainedMarks *int       `json:"obtained_marks,omitempty"`
	GradedBy      *int64     `json:"graded_by,omitempty"`
	GradedAt      *time.Time `json:"graded_at,omitempty"`
}

func newSubmissionView(submission domain.Submission) SubmissionView {
	return SubmissionView{
		ID:            submission.ID,
		ExamID:        submission.ExamID,
		StudentID:     submission.StudentID,
		Content:       submission.Content,
		SubmittedAt:   submission.SubmittedAt,
		ObtainedMarks: submission.ObtainedMarks,
		GradedBy:      submission.GradedBy,
		GradedAt:      submission.GradedAt,
	}
}

// ApplyRequest defines the payload for an admission application.
type ApplyRequest struct {
	FirstName string  `json:"first_name" binding:"required"`
	LastName  string  `json:"last_name" binding:"required"`
	Email     string  `json:"email" binding:"required,email"`
	Phone     *string `json:"phone"`
	Program   string  `json:"program" binding:"required"`
}

// DecideRequest defines the payload for deciding an application.
type DecideRequest struct {
	Status string `json:"status" binding:"required"`
}

// ApplicationView is the API view of an admission application.
type ApplicationView struct {
	ID        int64      `json:"id"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Email     string     `json:"email"`
	Phone     *string    `json:"phone,omitempty"`
	Program   string     `json:"program"`
	Status    string     `json:"status"`
	DecidedBy *int64     `json:"decided_by,omitempty"`
	DecidedAt *time.Time `json:"decided_at,omitempty"`
	AppliedAt time.Time  `json:"applied_at"`
}

func newApplicationView(application domain.AdmissionApplication) ApplicationView {
	return ApplicationView{
		ID:        application.ID,
		FirstName: application.FirstName,
		LastName:  application.LastName,
		Email:     application.Email,
		Phone:     application.Phone,
		Program:   application.Program,
		Status:    string(application.Status),
		DecidedBy: application.DecidedBy,
		DecidedAt: application.DecidedAt,
		AppliedAt: application.AppliedAt,
	}
}

// HealthResponse reports service liveness.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
}

// ReadinessResponse reports per-dependency readiness.
type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}
