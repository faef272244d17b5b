// Package events is the notification sink for booking activity. Emission
// is best-effort: a failed publish is logged and swallowed, it never
// affects the outcome of the operation that produced the event.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	AppointmentBooked      = "appointment.booked"
	AppointmentStatus      = "appointment.status_changed"
	AppointmentRescheduled = "appointment.rescheduled"
	AppointmentDeleted     = "appointment.deleted"
	EngagementCreated      = "engagement.created"
	EngagementUpdated      = "engagement.updated"
	EngagementDeleted      = "engagement.deleted"
)

// Publisher pushes an event to a subscriber channel.
type Publisher interface {
	Emit(ctx context.Context, channel, event string, payload any)
}

// DoctorChannel and PatientChannel name the per-user channels the
// messaging gateway subscribes to.
func DoctorChannel(id uuid.UUID) string  { return "doctor:" + id.String() }
func PatientChannel(id uuid.UUID) string { return "patient:" + id.String() }

type envelope struct {
	Event     string    `json:"event"`
	Payload   any       `json:"payload,omitempty"`
	EmittedAt time.Time `json:"emitted_at"`
}

type RedisPublisher struct {
	client *redis.Client
	log    *zap.Logger
}

func NewRedisPublisher(client *redis.Client, log *zap.Logger) *RedisPublisher {
	return &RedisPublisher{client: client, log: log}
}

func (p *RedisPublisher) Emit(ctx context.Context, channel, event string, payload any) {
	data, err := json.Marshal(envelope{
		Event:     event,
		Payload:   payload,
		EmittedAt: time.Now(),
	})
	if err != nil {
		p.log.Warn("marshal event payload", zap.String("event", event), zap.Error(err))
		return
	}

	if err := p.client.Publish(ctx, channel, data).Err(); err != nil {
		p.log.Warn("publish event",
			zap.String("channel", channel),
			zap.String("event", event),
			zap.Error(err),
		)
	}
}

// Noop discards every event. Used by offline tools and tests.
type Noop struct{}

func (Noop) Emit(context.Context, string, string, any) {}
