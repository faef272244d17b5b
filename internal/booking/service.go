package booking

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/telemedko/booking-engine/internal/events"
	"github.com/telemedko/booking-engine/internal/redisclient"
)

var (
	ErrRoleNotAllowed     = errors.New("caller role cannot book appointments")
	ErrMissingCounterpart = errors.New("booking is missing the other party's id")
	ErrPastDate           = errors.New("date is in the past")
	ErrSlotUnavailable    = errors.New("slot is not available")
	ErrBookingContended   = errors.New("doctor's day is being booked, please retry")
	ErrUnknownStatus      = errors.New("unknown appointment status")
	ErrInvalidInterval    = errors.New("engagement interval is empty or inverted")
	ErrEngagementOverlap  = errors.New("engagement overlaps a confirmed appointment")
)

// Service owns every write path of the engine: booking, appointment
// lifecycle and private engagements. Reads that need no coordination go
// through the Resolver directly.
type Service struct {
	repo     Repository
	resolver *Resolver
	locker   redisclient.Locker
	events   events.Publisher
	log      *zap.Logger
}

func NewService(repo Repository, resolver *Resolver, locker redisclient.Locker, publisher events.Publisher, log *zap.Logger) *Service {
	return &Service{
		repo:     repo,
		resolver: resolver,
		locker:   locker,
		events:   publisher,
		log:      log,
	}
}

// dayOf reduces a timestamp to its calendar day. All date comparisons in
// the engine ignore time-of-day.
func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func beforeToday(date time.Time) bool {
	return dayOf(date).Before(dayOf(time.Now()))
}

// emitToParties broadcasts one event to the doctor and patient channels
// of an appointment. Best-effort, after commit.
func (s *Service) emitToParties(ctx context.Context, a *Appointment, event string, payload any) {
	s.events.Emit(ctx, events.DoctorChannel(a.DoctorID), event, payload)
	s.events.Emit(ctx, events.PatientChannel(a.PatientID), event, payload)
}
