package port

import (
	"context"
	"time"

	"github.com/Natsdon/CECOS-Connect/internal/core/domain"
)

// StudentFilter narrows student listings.
type StudentFilter struct {
	Department string
	Semester   int
	ActiveOnly bool
	Limit      int
	Offset     int
}

// StudentRepository persists student academic records.
type StudentRepository interface {
	Create(ctx context.Context, student domain.Student) (domain.Student, error)
	GetByID(ctx context.Context, id int64) (*domain.Student, error)
	List(ctx context.Context, filter StudentFilter) ([]domain.Student, error)
	Update(ctx context.Context, student domain.Student) error
	SetActive(ctx context.Context, id int64, active bool) error
}

// FacultyRepository persists faculty staff records.
type FacultyRepository interface {
	Create(ctx context.Context, member domain.FacultyMember) (domain.FacultyMember, error)
	GetByID(ctx context.Context, id int64) (*domain.FacultyMember, error)
	List(ctx context.Context, department string) ([]domain.FacultyMember, error)
	Update(ctx context.Context, member domain.FacultyMember) error
}

// CourseRepository persists courses.
type CourseRepository interface {
	Create(ctx context.Context, course domain.Course) (domain.Course, error)
	GetByID(ctx context.Context, id int64) (*domain.Course, error)
	List(ctx context.Context, department string) ([]domain.Course, error)
	Update(ctx context.Context, course domain.Course) error
	Delete(ctx context.Context, id int64) error
}

// EnrollmentRepository persists student/course enrollments.
type EnrollmentRepository interface {
	Create(ctx context.Context, enrollment domain.Enrollment) (domain.Enrollment, error)
	GetByID(ctx context.Context, id int64) (*domain.Enrollment, error)
	ListByStudent(ctx context.Context, studentID int64) ([]domain.Enrollment, error)
	ListByCourse(ctx context.Context, courseID int64) ([]domain.Enrollment, error)
	Delete(ctx context.Context, id int64) error
}

// AttendanceRepository persists per-day attendance entries.
type AttendanceRepository interface {
	Record(ctx context.Context, record domain.AttendanceRecord) (domain.AttendanceRecord, error)
	ListByEnrollment(ctx context.Context, enrollmentID int64, from, to time.Time) ([]domain.AttendanceRecord, error)
}

// ExamRepository persists exams and their submissions.
type ExamRepository interface {
	Create(ctx context.Context, exam domain.Exam) (domain.Exam, error)
	GetByID(ctx context.Context, id int64) (*domain.Exam, error)
	ListByCourse(ctx context.Context, courseID int64) ([]domain.Exam, error)
	Update(ctx context.Context, exam domain.Exam) error

	AddSubmission(ctx context.Context, submission domain.Submission) (domain.Submission, error)
	GetSubmission(ctx context.Context, id int64) (*domain.Submission, error)
	ListSubmissions(ctx context.Context, examID int64) ([]domain.Submission, error)
	GradeSubmission(ctx context.Context, id int64, marks int, gradedBy int64, gradedAt time.Time) error
}

// AdmissionRepository persists admission applications.
type AdmissionRepository interface {
	Create(ctx context.Context, application domain.AdmissionApplication) (domain.AdmissionApplication, error)
	GetByID(ctx context.Context, id int64) (*domain.AdmissionApplication, error)
	List(ctx context.Context, status domain.AdmissionStatus) ([]domain.AdmissionApplication, error)
	Decide(ctx context.Context, id int64, status domain.AdmissionStatus, decidedBy int64, decidedAt time.Time) error
}
