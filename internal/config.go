package internal

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// DefaultRooms is used when ROOMS is unset.
const DefaultRooms = "room_1:1,room_2:1"

type Config struct {
	LogLevel        string        `env:"LOG_LEVEL,default=INFO" validate:"oneof=DEBUG INFO WARN ERROR debug info warn error"`
	PollInterval    time.Duration `env:"POLL_INTERVAL,default=1s" validate:"gt=0"`
	SinkTimeout     time.Duration `env:"SINK_TIMEOUT,default=1s" validate:"gt=0"`
	RestartInterval time.Duration `env:"RESTART_INTERVAL,default=200ms" validate:"gt=0"`
	MetricInterval  time.Duration `env:"METRIC_INTERVAL,default=5s" validate:"gt=0"`
	BufferSize      int           `env:"BUFFER_SIZE,default=256" validate:"gt=0"`

	Department    string        `env:"DEPARTMENT,default=CT" validate:"required"`
	Rooms         string        `env:"ROOMS"`
	MaxTreatment  time.Duration `env:"MAX_TREATMENT,default=20s" validate:"gte=0"`
	Patients      int           `env:"PATIENTS,default=20" validate:"gte=0"`
	ArrivalJitter time.Duration `env:"ARRIVAL_JITTER,default=5s" validate:"gte=0"`

	BadgerFilepath string `env:"BADGER_FILEPATH"`
	MetricsAddr    string `env:"METRICS_ADDR"`
	DebugPort      int    `env:"DEBUG_PORT,default=8081"`

	RedisAddr     string        `env:"REDIS_ADDR"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB,default=0" validate:"gte=0"`
	RedisPrefix   string        `env:"REDIS_PREFIX,default=clinic"`
	RedisTTL      time.Duration `env:"REDIS_TTL,default=0s" validate:"gte=0"`

	BoardColours    bool    `env:"BOARD_COLOURS,default=true"`
	BoardMaxRefresh float64 `env:"BOARD_MAX_REFRESH,default=0" validate:"gte=0"`
}

func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	_, err := c.RoomSpecs()
	return err
}

func (c Config) RoomSpecs() ([]RoomSpec, error) {
	if strings.TrimSpace(c.Rooms) == "" {
		return ParseRooms(DefaultRooms)
	}
	return ParseRooms(c.Rooms)
}

type RoomSpec struct {
	Name     string
	Capacity int
}

// ParseRooms reads "room_1:1,room_2:2" into room specs, keeping the declared order.
// A room without ":capacity" gets a capacity of 1.
func ParseRooms(str string) ([]RoomSpec, error) {
	var rooms []RoomSpec
	seen := make(map[string]struct{})
	for _, part := range strings.Split(str, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, rawCapacity, found := strings.Cut(part, ":")
		name = strings.TrimSpace(name)
		capacity := 1
		if found {
			c, err := strconv.Atoi(strings.TrimSpace(rawCapacity))
			if err != nil || c <= 0 {
				return nil, fmt.Errorf("ROOMS: capacity of %q must be a positive integer, got %q", name, rawCapacity)
			}
			capacity = c
		}
		if name == "" {
			return nil, fmt.Errorf("ROOMS: empty room name in %q", str)
		}
		if _, ok := seen[name]; ok {
			return nil, fmt.Errorf("ROOMS: room %q declared twice", name)
		}
		seen[name] = struct{}{}
		rooms = append(rooms, RoomSpec{Name: name, Capacity: capacity})
	}
	if len(rooms) == 0 {
		return nil, fmt.Errorf("ROOMS: at least one room is required, got %q", str)
	}
	return rooms, nil
}
