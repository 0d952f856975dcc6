package workers

import (
	"clinic-desk/contract"
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"time"
)

var _ contract.Worker = ChannelCapacityWorker{}

type NamedChannel struct {
	Name    string
	Channel any
}

// ChannelCapacityWorker periodically reports the length and capacity of buffered channels
// and warns when one of them is about to drop events.
// Reading len(channel) and cap(channel) is non-blocking, so this won't interfere
// with the producers or the consumers.
type ChannelCapacityWorker struct {
	log                  *slog.Logger
	channels             []NamedChannel
	lowCapacityThreshold int
	metricInterval       time.Duration
}

func NewChannelCapacityWorker(log *slog.Logger, channels []NamedChannel,
	lowCapacityThreshold int, metricInterval time.Duration) ChannelCapacityWorker {
	return ChannelCapacityWorker{
		log:                  log,
		channels:             channels,
		lowCapacityThreshold: lowCapacityThreshold,
		metricInterval:       metricInterval,
	}
}

func (w ChannelCapacityWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.metricInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping channel capacity checks")
			return nil
		case <-ticker.C:
			for _, nc := range w.channels {
				w.check(nc)
			}
		}
	}
}

func (w ChannelCapacityWorker) check(nc NamedChannel) {
	v := reflect.ValueOf(nc.Channel)
	if v.Kind() != reflect.Chan {
		w.log.Error("Provided object is not a channel", "name", nc.Name)
		return
	}
	capacity, length := v.Cap(), v.Len()
	w.log.Debug(fmt.Sprintf("Channel %s usage: %d / %d", nc.Name, length, capacity))
	if capacity <= 0 {
		// Unbuffered
		return
	}
	capacityLeft := capacity - length
	if capacityLeft <= w.lowCapacityThreshold {
		w.log.Warn("Channel close to full, events will be lost",
			"name", nc.Name, "capacity_left", capacityLeft)
	}
}
