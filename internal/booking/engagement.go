package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/telemedko/booking-engine/internal/events"
	"github.com/telemedko/booking-engine/internal/slotgen"
)

// AddEngagement blocks out a stretch of personal time for a doctor,
// provided no confirmed appointment already sits inside it.
func (s *Service) AddEngagement(ctx context.Context, doctorID uuid.UUID, description string, start, end time.Time) (*PrivateEngagement, error) {
	if !end.After(start) {
		return nil, ErrInvalidInterval
	}

	if _, err := s.repo.GetDoctorByID(ctx, doctorID); err != nil {
		return nil, err
	}

	if err := s.checkEngagementConflict(ctx, doctorID, start, end); err != nil {
		return nil, err
	}

	created, err := s.repo.CreateEngagement(ctx, PrivateEngagement{
		DoctorID:    doctorID,
		Description: description,
		StartAt:     start,
		EndAt:       end,
	})
	if err != nil {
		return nil, fmt.Errorf("create engagement: %w", err)
	}

	s.events.Emit(ctx, events.DoctorChannel(doctorID), events.EngagementCreated, engagementPayload(created))

	return created, nil
}

// UpdateEngagement replaces an engagement's description and interval
// after re-running the conflict check against the owning doctor's
// confirmed appointments.
func (s *Service) UpdateEngagement(ctx context.Context, id uuid.UUID, description string, start, end time.Time) (*PrivateEngagement, error) {
	if !end.After(start) {
		return nil, ErrInvalidInterval
	}

	existing, err := s.repo.GetEngagementByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.checkEngagementConflict(ctx, existing.DoctorID, start, end); err != nil {
		return nil, err
	}

	existing.Description = description
	existing.StartAt = start
	existing.EndAt = end

	updated, err := s.repo.UpdateEngagement(ctx, *existing)
	if err != nil {
		return nil, fmt.Errorf("update engagement: %w", err)
	}

	s.events.Emit(ctx, events.DoctorChannel(updated.DoctorID), events.EngagementUpdated, engagementPayload(updated))

	return updated, nil
}

func (s *Service) DeleteEngagement(ctx context.Context, id uuid.UUID) error {
	existing, err := s.repo.GetEngagementByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteEngagement(ctx, id); err != nil {
		return err
	}

	s.events.Emit(ctx, events.DoctorChannel(existing.DoctorID), events.EngagementDeleted, map[string]any{
		"engagement_id": existing.ID.String(),
	})

	return nil
}

func (s *Service) ListEngagements(ctx context.Context, doctorID uuid.UUID) ([]PrivateEngagement, error) {
	return s.repo.ListEngagementsByDoctor(ctx, doctorID)
}

// checkEngagementConflict rejects an interval that would swallow a
// confirmed appointment. Each confirmed appointment between the
// interval's first and last day is placed at its slot's clock time on
// the interval's first day and tested against [start, end].
func (s *Service) checkEngagementConflict(ctx context.Context, doctorID uuid.UUID, start, end time.Time) error {
	confirmed, err := s.repo.ListConfirmedAppointmentsBetween(ctx, doctorID, dayOf(start), dayOf(end))
	if err != nil {
		return fmt.Errorf("list confirmed appointments: %w", err)
	}

	firstDay := dayOf(start)
	for _, a := range confirmed {
		clock, err := slotgen.ParseClock(a.SlotTime)
		if err != nil {
			return fmt.Errorf("appointment %s slot label: %w", a.ID, err)
		}
		at := firstDay.Add(time.Duration(clock) * time.Minute)
		if !at.Before(start) && !at.After(end) {
			return ErrEngagementOverlap
		}
	}
	return nil
}

func engagementPayload(e *PrivateEngagement) map[string]any {
	return map[string]any{
		"engagement_id": e.ID.String(),
		"description":   e.Description,
		"start_at":      e.StartAt,
		"end_at":        e.EndAt,
	}
}
