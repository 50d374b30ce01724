package domain

import "time"

// Student is the academic record attached to a student user account.
type Student struct {
	ID         int64
	UserID     int64
	CCLID      string
	FirstName  string
	LastName   string
	Email      *string
	Phone      *string
	Department string
	Semester   int
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// FacultyMember is the staff record attached to a faculty user account.
type FacultyMember struct {
	ID          int64
	UserID      int64
	CCLID       string
	FirstName   string
	LastName    string
	Email       *string
	Department  string
	Designation string
	IsActive    bool
	CreatedAt   time.Time
}

// Course is a taught unit students enroll into.
type Course struct {
	ID          int64
	Code        string
	Title       string
	Description *string
	Department  string
	CreditHours int
	FacultyID   *int64
	CreatedAt   time.Time
}

// Enrollment links a student to a course for a semester.
type Enrollment struct {
	ID         int64
	StudentID  int64
	CourseID   int64
	Semester   string
	EnrolledAt time.Time
}

// AttendanceStatus enumerates the states a daily attendance entry can take.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
	AttendanceLeave   AttendanceStatus = "leave"
)

// AttendanceRecord captures one student's presence for one course on one day.
type AttendanceRecord struct {
	ID           int64
	EnrollmentID int64
	Date         time.Time
	Status       AttendanceStatus
	MarkedBy     int64
	MarkedAt     time.Time
}

// Exam is an assessment scheduled for a course.
type Exam struct {
	ID          int64
	CourseID    int64
	Title       string
	ScheduledAt time.Time
	TotalMarks  int
	CreatedBy   int64
	CreatedAt   time.Time
}

// Submission is a student's answer to an exam, optionally graded later.
type Submission struct {
	ID            int64
	ExamID        int64
	StudentID     int64
	Content       string
	SubmittedAt   time.Time
	ObtainedMarks *int
	GradedBy      *int64
	GradedAt      *time.Time
}

// AdmissionStatus enumerates the decision states of an application.
type AdmissionStatus string

const (
	AdmissionPending  AdmissionStatus = "pending"
	AdmissionAccepted AdmissionStatus = "accepted"
	AdmissionRejected AdmissionStatus = "rejected"
)

// AdmissionApplication is a prospective student's application.
type AdmissionApplication struct {
	ID         int64
	FirstName  string
	LastName   string
	Email      string
	Phone      *string
	Program    string
	Status     AdmissionStatus
	DecidedBy  *int64
	DecidedAt  *time.Time
	AppliedAt  time.Time
}
