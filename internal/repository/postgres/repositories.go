package postgres

import "github.com/jackc/pgx/v5/pgxpool"

// Repositories groups concrete PostgreSQL repository implementations.
type Repositories struct {
	Users       *UserRepository
	Grants      *GrantRepository
	Students    *StudentRepository
	Faculty     *FacultyRepository
	Courses     *CourseRepository
	Enrollments *EnrollmentRepository
	Attendance  *AttendanceRepository
	Exams       *ExamRepository
	Admissions  *AdmissionRepository
}

// NewRepositories wires all repositories backed by the provided pool.
func NewRepositories(pool *pgxpool.Pool) *Repositories {
	return &Repositories{
		Users:       NewUserRepository(pool),
		Grants:      NewGrantRepository(pool),
		Students:    NewStudentRepository(pool),
		Faculty:     NewFacultyRepository(pool),
		Courses:     NewCourseRepository(pool),
		Enrollments: NewEnrollmentRepository(pool),
		Attendance:  NewAttendanceRepository(pool),
		Exams:       NewExamRepository(pool),
		Admissions:  NewAdmissionRepository(pool),
	}
}
