package booking

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrDoctorNotFound      = errors.New("doctor not found")
	ErrPatientNotFound     = errors.New("patient not found")
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrMedicalFileNotFound = errors.New("medical file not found")
	ErrEngagementNotFound  = errors.New("private engagement not found")
)

// Repository contains all DB interactions needed by the services.
type Repository interface {
	GetDoctorByID(ctx context.Context, id uuid.UUID) (*Doctor, error)
	GetPatientByID(ctx context.Context, id uuid.UUID) (*Patient, error)

	// For availability and conflict checks. Only confirmed appointments
	// occupy slots.
	ListConfirmedAppointments(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]Appointment, error)
	ListConfirmedAppointmentsBetween(ctx context.Context, doctorID uuid.UUID, fromDay, toDay time.Time) ([]Appointment, error)
	ListEngagementsOverlapping(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]PrivateEngagement, error)

	GetAppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	CreateAppointment(ctx context.Context, a Appointment) (*Appointment, error)
	UpdateAppointmentStatus(ctx context.Context, id uuid.UUID, status AppointmentStatus) (*Appointment, error)
	UpdateAppointmentSlot(ctx context.Context, id uuid.UUID, date time.Time, slotTime string) (*Appointment, error)
	DeleteAppointment(ctx context.Context, id uuid.UUID) error

	GetMedicalFile(ctx context.Context, doctorID, patientID uuid.UUID) (*MedicalFile, error)
	CreateMedicalFile(ctx context.Context, doctorID, patientID uuid.UUID) (*MedicalFile, error)

	GetEngagementByID(ctx context.Context, id uuid.UUID) (*PrivateEngagement, error)
	ListEngagementsByDoctor(ctx context.Context, doctorID uuid.UUID) ([]PrivateEngagement, error)
	CreateEngagement(ctx context.Context, e PrivateEngagement) (*PrivateEngagement, error)
	UpdateEngagement(ctx context.Context, e PrivateEngagement) (*PrivateEngagement, error)
	DeleteEngagement(ctx context.Context, id uuid.UUID) error

	// InTx runs fn against a transaction-scoped repository. The
	// transaction commits when fn returns nil and rolls back otherwise;
	// no partial writes survive an error on any path.
	InTx(ctx context.Context, fn func(r Repository) error) error
}
