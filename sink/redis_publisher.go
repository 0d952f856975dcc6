package sink

import (
	"clinic-desk/domain"
	"clinic-desk/domain/event"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/samber/lo"
)

// redisClient is the part of *redis.Client the publisher needs.
type redisClient interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// RedisPublisher pushes every snapshot to external displays.
// Subscribers listen on "{prefix}:{department}:status", late joiners read "{prefix}:{department}:latest".
type RedisPublisher struct {
	rdb    redisClient
	prefix string
	ttl    time.Duration
}

type RedisPublisherOption func(*RedisPublisher)

func WithPrefix(prefix string) RedisPublisherOption {
	return func(p *RedisPublisher) { p.prefix = strings.Trim(prefix, ":") }
}

// WithTTL expires the latest snapshot key, zero keeps it forever.
func WithTTL(d time.Duration) RedisPublisherOption {
	return func(p *RedisPublisher) { p.ttl = d }
}

func NewRedisPublisher(rdb redisClient, opts ...RedisPublisherOption) *RedisPublisher {
	p := &RedisPublisher{
		rdb:    rdb,
		prefix: "clinic",
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type patientPayload struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type roomPayload struct {
	Name      string           `json:"name"`
	Capacity  int              `json:"capacity"`
	Occupants []patientPayload `json:"occupants"`
}

type statusPayload struct {
	Department string           `json:"department"`
	Cause      string           `json:"cause"`
	At         time.Time        `json:"at"`
	Rooms      []roomPayload    `json:"rooms"`
	Waiting    []patientPayload `json:"waiting"`
}

func (p *RedisPublisher) Consume(ctx context.Context, e event.DeskEvent) error {
	evt, ok := e.(event.StatusChanged)
	if !ok {
		return nil
	}
	payload, err := json.Marshal(toStatusPayload(evt))
	if err != nil {
		return err
	}
	department := evt.Snapshot.Department
	if err := p.rdb.Publish(ctx, p.statusChannel(department), payload).Err(); err != nil {
		return fmt.Errorf("publish status of %s: %w", department, err)
	}
	if err := p.rdb.Set(ctx, p.latestKey(department), payload, p.ttl).Err(); err != nil {
		return fmt.Errorf("set latest status of %s: %w", department, err)
	}
	return nil
}

func (p *RedisPublisher) statusChannel(department string) string {
	return fmt.Sprintf("%s:%s:status", p.prefix, department)
}

func (p *RedisPublisher) latestKey(department string) string {
	return fmt.Sprintf("%s:%s:latest", p.prefix, department)
}

func toPatientPayloads(patients []domain.Patient) []patientPayload {
	return lo.Map(patients, func(patient domain.Patient, _ int) patientPayload {
		return patientPayload{ID: string(patient.ID), Name: patient.Name}
	})
}

func toStatusPayload(evt event.StatusChanged) statusPayload {
	return statusPayload{
		Department: evt.Snapshot.Department,
		Cause:      string(evt.Cause),
		At:         evt.Snapshot.At,
		Waiting:    toPatientPayloads(evt.Snapshot.Waiting),
		Rooms: lo.Map(evt.Snapshot.Rooms, func(room domain.RoomStatus, _ int) roomPayload {
			return roomPayload{
				Name:      room.Name,
				Capacity:  room.Capacity,
				Occupants: toPatientPayloads(room.Occupants),
			}
		}),
	}
}
