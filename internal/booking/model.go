package booking

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCanceled  AppointmentStatus = "canceled"
	StatusCompleted AppointmentStatus = "completed"
)

// KnownStatus reports whether s is one of the four appointment statuses.
// Any known value is accepted by UpdateStatus regardless of the current
// state; there is deliberately no transition guard here.
func KnownStatus(s AppointmentStatus) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCanceled, StatusCompleted:
		return true
	}
	return false
}

// Role is the already-resolved role of the caller. The engine trusts the
// upstream gateway to have authenticated it.
type Role string

const (
	RoleDoctor  Role = "doctor"
	RolePatient Role = "patient"
)

// Period is one working range within a weekday, wall-clock "HH:MM".
type Period struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// DaySchedule is one weekday's working periods. Periods are operator
// data; the engine does not police overlaps within a day.
type DaySchedule struct {
	Day     string   `json:"day"` // lowercase english weekday
	Periods []Period `json:"periods"`
}

// WeeklySchedule is the doctor's recurring timetable, stored as a JSONB
// document on the doctor row. A weekday with no entry is a day off.
type WeeklySchedule []DaySchedule

// ForWeekday returns the entry for a weekday, matched case-insensitively.
func (ws WeeklySchedule) ForWeekday(day time.Weekday) (DaySchedule, bool) {
	name := strings.ToLower(day.String())
	for _, d := range ws {
		if strings.ToLower(d.Day) == name {
			return d, true
		}
	}
	return DaySchedule{}, false
}

type Doctor struct {
	ID        uuid.UUID
	Name      string
	Specialty *string
	Schedule  WeeklySchedule
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Patient struct {
	ID        uuid.UUID
	Name      string
	Email     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Appointment occupies one slot of one doctor's day. Date carries only
// the calendar day; SlotTime is the "HH:MM" slot label.
type Appointment struct {
	ID        uuid.UUID
	DoctorID  uuid.UUID
	PatientID uuid.UUID
	Date      time.Time
	SlotTime  string
	Type      string
	Status    AppointmentStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MedicalFile links a doctor and a patient. At most one exists per pair;
// it is created lazily on their first booking and reused afterwards.
type MedicalFile struct {
	ID        uuid.UUID
	DoctorID  uuid.UUID
	PatientID uuid.UUID
	CreatedAt time.Time
}

// PrivateEngagement is a doctor-defined interval of personal
// unavailability, independent of any appointment.
type PrivateEngagement struct {
	ID          uuid.UUID
	DoctorID    uuid.UUID
	Description string
	StartAt     time.Time
	EndAt       time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
