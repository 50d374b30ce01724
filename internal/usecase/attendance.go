package usecase

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Natsdon/CECOS-Connect/internal/core/domain"
	"github.com/Natsdon/CECOS-Connect/internal/core/port"
)

// MarkAttendanceInput captures one attendance entry.
type MarkAttendanceInput struct {
	EnrollmentID int64
	Date         time.Time
	Status       domain.AttendanceStatus
}

// AttendanceService records and reads daily attendance.
type AttendanceService struct {
	attendance  port.AttendanceRepository
	enrollments port.EnrollmentRepository
	logger      *zap.Logger
	now         func() time.Time
}

// NewAttendanceService constructs an AttendanceService.
func NewAttendanceService(attendance port.AttendanceRepository, enrollments port.EnrollmentRepository, logger *zap.Logger) *AttendanceService {
	return &AttendanceService{
		attendance:  attendance,
		enrollments: enrollments,
		logger:      logger,
		now:         time.Now,
	}
}

// Mark stores an attendance entry for an enrollment. Marking the same day
// again overwrites the earlier status.
func (s *AttendanceService) Mark(ctx context.Context, actor domain.Identity, input MarkAttendanceInput) (*domain.AttendanceRecord, error) {
	switch input.Status {
	case domain.AttendancePresent, domain.AttendanceAbsent, domain.AttendanceLeave:
	default:
		return nil, fmt.Errorf("unknown attendance status %q", input.Status)
	}

	if _, err := s.enrollments.GetByID(ctx, input.EnrollmentID); err != nil {
		return nil, fmt.Errorf("get enrollment: %w", err)
	}

	date := input.Date
	if date.IsZero() {
		date = s.now().UTC()
	}
	date = date.Truncate(24 * time.Hour)

	record := domain.AttendanceRecord{
		EnrollmentID: input.EnrollmentID,
		Date:         date,
		Status:       input.Status,
		MarkedBy:     actor.ID,
		MarkedAt:     s.now().UTC(),
	}

	stored, err := s.attendance.Record(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("record attendance: %w", err)
	}

	s.logger.Info("attendance marked",
		zap.Int64("enrollment_id", stored.EnrollmentID),
		zap.Time("date", stored.Date),
		zap.String("status", string(stored.Status)),
		zap.Int64("marked_by", stored.MarkedBy),
	)

	return &stored, nil
}

// List returns attendance entries for an enrollment within the range. Zero
// bounds disable the corresponding limit.
func (s *AttendanceService) List(ctx context.Context, enrollmentID int64, from, to time.Time) ([]domain.AttendanceRecord, error) {
	records, err := s.attendance.ListByEnrollment(ctx, enrollmentID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	return records, nil
}
