package booking

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/telemedko/booking-engine/internal/events"
	"github.com/telemedko/booking-engine/internal/redisclient"
)

// BookRequest carries an already-authenticated caller. A patient books
// with a doctor, so supplies DoctorID; a doctor books for a patient, so
// supplies PatientID.
type BookRequest struct {
	CallerID   uuid.UUID
	CallerRole Role
	DoctorID   uuid.UUID
	PatientID  uuid.UUID
	Date       time.Time
	SlotTime   string
	Type       string
}

type BookResult struct {
	Appointment        *Appointment
	MedicalFileCreated bool
}

// Book places a pending appointment in the requested slot. The
// availability re-check, the lazy medical-file creation and the insert
// run inside one transaction under the doctor-day lock, so concurrent
// requests for the same slot cannot both succeed: one commits, the rest
// see the slot gone or fail to take the lock.
func (s *Service) Book(ctx context.Context, req BookRequest) (*BookResult, error) {
	doctorID, patientID, err := resolveParties(req)
	if err != nil {
		return nil, err
	}

	if beforeToday(req.Date) {
		return nil, ErrPastDate
	}

	if _, err := s.repo.GetPatientByID(ctx, patientID); err != nil {
		return nil, err
	}

	day := dayOf(req.Date)

	var result BookResult

	err = s.locker.WithDoctorDayLock(ctx, doctorID, day, func(lockCtx context.Context) error {
		return s.repo.InTx(lockCtx, func(tx Repository) error {
			open, err := s.resolver.resolve(lockCtx, tx, doctorID, day)
			if err != nil {
				return err
			}
			if !slices.Contains(open, req.SlotTime) {
				return ErrSlotUnavailable
			}

			if _, err := tx.GetMedicalFile(lockCtx, doctorID, patientID); err != nil {
				if !errors.Is(err, ErrMedicalFileNotFound) {
					return fmt.Errorf("load medical file: %w", err)
				}
				if _, err := tx.CreateMedicalFile(lockCtx, doctorID, patientID); err != nil {
					return fmt.Errorf("create medical file: %w", err)
				}
				result.MedicalFileCreated = true
			}

			appt, err := tx.CreateAppointment(lockCtx, Appointment{
				DoctorID:  doctorID,
				PatientID: patientID,
				Date:      day,
				SlotTime:  req.SlotTime,
				Type:      req.Type,
				Status:    StatusPending,
			})
			if err != nil {
				return fmt.Errorf("create appointment: %w", err)
			}

			result.Appointment = appt
			return nil
		})
	})
	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, ErrBookingContended
		}
		return nil, err
	}

	s.log.Info("appointment booked",
		zap.String("appointment_id", result.Appointment.ID.String()),
		zap.String("doctor_id", doctorID.String()),
		zap.String("slot", req.SlotTime),
		zap.Bool("medical_file_created", result.MedicalFileCreated),
	)

	s.emitToParties(ctx, result.Appointment, events.AppointmentBooked, map[string]any{
		"appointment_id":       result.Appointment.ID.String(),
		"doctor_id":            doctorID.String(),
		"patient_id":           patientID.String(),
		"date":                 day.Format("2006-01-02"),
		"time":                 req.SlotTime,
		"booked_by":            string(req.CallerRole),
		"medical_file_created": result.MedicalFileCreated,
	})

	return &result, nil
}

// resolveParties maps (caller, role) onto the doctor/patient pair. The
// caller always supplies the other party's id.
func resolveParties(req BookRequest) (doctorID, patientID uuid.UUID, err error) {
	switch req.CallerRole {
	case RolePatient:
		if req.DoctorID == uuid.Nil {
			return uuid.Nil, uuid.Nil, ErrMissingCounterpart
		}
		return req.DoctorID, req.CallerID, nil
	case RoleDoctor:
		if req.PatientID == uuid.Nil {
			return uuid.Nil, uuid.Nil, ErrMissingCounterpart
		}
		return req.CallerID, req.PatientID, nil
	default:
		return uuid.Nil, uuid.Nil, ErrRoleNotAllowed
	}
}
