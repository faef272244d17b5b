package booking

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/telemedko/booking-engine/internal/events"
	"github.com/telemedko/booking-engine/internal/redisclient"
)

// UpdateStatus sets an appointment's status to any of the four known
// values. The current state is not consulted: a completed appointment
// can be reopened. Tightening this to a real transition table is a
// product decision that has not been made.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status AppointmentStatus) (*Appointment, error) {
	if !KnownStatus(status) {
		return nil, ErrUnknownStatus
	}

	appt, err := s.repo.UpdateAppointmentStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}

	s.emitToParties(ctx, appt, events.AppointmentStatus, map[string]any{
		"appointment_id": appt.ID.String(),
		"status":         string(appt.Status),
	})

	return appt, nil
}

// Delete removes the appointment record outright.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	appt, err := s.repo.GetAppointmentByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteAppointment(ctx, id); err != nil {
		return err
	}

	s.emitToParties(ctx, appt, events.AppointmentDeleted, map[string]any{
		"appointment_id": appt.ID.String(),
	})

	return nil
}

// Reschedule moves an appointment to a new date and slot. The target
// slot is re-validated inside the transaction under the doctor-day lock;
// on any failure the original appointment is untouched.
func (s *Service) Reschedule(ctx context.Context, id uuid.UUID, newDate time.Time, newTime string) (*Appointment, error) {
	if beforeToday(newDate) {
		return nil, ErrPastDate
	}

	appt, err := s.repo.GetAppointmentByID(ctx, id)
	if err != nil {
		return nil, err
	}

	day := dayOf(newDate)

	var updated *Appointment

	err = s.locker.WithDoctorDayLock(ctx, appt.DoctorID, day, func(lockCtx context.Context) error {
		return s.repo.InTx(lockCtx, func(tx Repository) error {
			// A day the doctor does not work resolves to an empty set;
			// only a non-empty schedule can report the slot as taken.
			open, err := s.resolver.resolve(lockCtx, tx, appt.DoctorID, day)
			if err != nil {
				return err
			}
			if len(open) > 0 && !slices.Contains(open, newTime) {
				return ErrSlotUnavailable
			}

			updated, err = tx.UpdateAppointmentSlot(lockCtx, id, day, newTime)
			if err != nil {
				return fmt.Errorf("update appointment slot: %w", err)
			}
			return nil
		})
	})
	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, ErrBookingContended
		}
		return nil, err
	}

	s.emitToParties(ctx, updated, events.AppointmentRescheduled, map[string]any{
		"appointment_id": updated.ID.String(),
		"date":           day.Format("2006-01-02"),
		"time":           newTime,
	})

	return updated, nil
}
