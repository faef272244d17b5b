package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/telemedko/booking-engine/internal/slotgen"
)

// Resolver computes the bookable slot set for one doctor and one day:
// the slots of the weekly schedule minus confirmed appointments minus
// private engagement blocks. Pending appointments do not occupy a slot;
// only confirmed ones block.
type Resolver struct {
	repo Repository
	opts slotgen.Options
}

func NewResolver(repo Repository, interval time.Duration) *Resolver {
	opts := slotgen.DefaultOptions()
	if interval > 0 {
		opts.Interval = interval
	}
	return &Resolver{repo: repo, opts: opts}
}

// AvailableSlots returns the ordered "HH:MM" labels still open for the
// doctor on the given day. A day the doctor does not work yields an
// empty, non-error result.
func (r *Resolver) AvailableSlots(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]string, error) {
	return r.resolve(ctx, r.repo, doctorID, date)
}

// resolve is the lock-free core. Booking and reschedule call it with
// their transaction-scoped repository so the availability re-check sees
// the same snapshot the write will land in.
func (r *Resolver) resolve(ctx context.Context, repo Repository, doctorID uuid.UUID, date time.Time) ([]string, error) {
	doctor, err := repo.GetDoctorByID(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	day := dayOf(date)

	daySchedule, works := doctor.Schedule.ForWeekday(day.Weekday())
	if !works {
		return []string{}, nil
	}

	periods, err := parsePeriods(daySchedule.Periods)
	if err != nil {
		return nil, fmt.Errorf("doctor %s schedule for %s: %w", doctorID, daySchedule.Day, err)
	}
	candidates := slotgen.Generate(periods, r.opts)
	if len(candidates) == 0 {
		return []string{}, nil
	}

	taken := make(map[string]struct{})

	booked, err := repo.ListConfirmedAppointments(ctx, doctorID, day)
	if err != nil {
		return nil, fmt.Errorf("list confirmed appointments: %w", err)
	}
	for _, a := range booked {
		taken[a.SlotTime] = struct{}{}
	}

	dayStart := day
	dayEnd := day.AddDate(0, 0, 1)
	engagements, err := repo.ListEngagementsOverlapping(ctx, doctorID, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("list engagements: %w", err)
	}
	for _, e := range engagements {
		blocked, ok := slotgen.ClampToDay(day, e.StartAt, e.EndAt)
		if !ok {
			continue
		}
		for _, label := range slotgen.Generate([]slotgen.Period{blocked}, r.opts) {
			taken[label] = struct{}{}
		}
	}

	available := make([]string, 0, len(candidates))
	for _, label := range candidates {
		if _, occupied := taken[label]; !occupied {
			available = append(available, label)
		}
	}
	return available, nil
}

func parsePeriods(in []Period) ([]slotgen.Period, error) {
	out := make([]slotgen.Period, 0, len(in))
	for _, p := range in {
		start, err := slotgen.ParseClock(p.Start)
		if err != nil {
			return nil, err
		}
		end, err := slotgen.ParseClock(p.End)
		if err != nil {
			return nil, err
		}
		out = append(out, slotgen.Period{Start: start, End: end})
	}
	return out, nil
}
