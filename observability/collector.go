package observability

import (
	"clinic-desk/domain"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	descWaiting = prometheus.NewDesc(
		"clinic_desk_waiting_patients",
		"Number of patients in the waiting queue.",
		[]string{"department"}, nil,
	)
	descRoomOccupants = prometheus.NewDesc(
		"clinic_desk_room_occupants",
		"Number of patients in treatment in each room.",
		[]string{"department", "room"}, nil,
	)
	descRoomCapacity = prometheus.NewDesc(
		"clinic_desk_room_capacity",
		"Number of patients each room can treat at once.",
		[]string{"department", "room"}, nil,
	)
	descRegistered = prometheus.NewDesc(
		"clinic_desk_registered_total",
		"Registrations accepted by the desk.",
		[]string{"department"}, nil,
	)
	descRejected = prometheus.NewDesc(
		"clinic_desk_rejected_total",
		"Registrations turned away by the desk.",
		[]string{"department"}, nil,
	)
	descAdmitted = prometheus.NewDesc(
		"clinic_desk_admitted_total",
		"Patients handed to a room.",
		[]string{"department"}, nil,
	)
	descDischarged = prometheus.NewDesc(
		"clinic_desk_discharged_total",
		"Patients whose treatment is over.",
		[]string{"department"}, nil,
	)
	descLostEvents = prometheus.NewDesc(
		"clinic_desk_lost_events_total",
		"Desk events dropped on a full buffer.",
		[]string{"department"}, nil,
	)
)

var _ prometheus.Collector = &DeskCollector{}

// DeskCollector exposes the desk gauges and counters, read at scrape time.
type DeskCollector struct {
	monitoring *MonitoringManager
	snapshot   func() domain.StatusSnapshot
}

func NewDeskCollector(monitoring *MonitoringManager, snapshot func() domain.StatusSnapshot) *DeskCollector {
	return &DeskCollector{monitoring: monitoring, snapshot: snapshot}
}

func (c *DeskCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- descWaiting
	ch <- descRoomOccupants
	ch <- descRoomCapacity
	ch <- descRegistered
	ch <- descRejected
	ch <- descAdmitted
	ch <- descDischarged
	ch <- descLostEvents
}

func (c *DeskCollector) Collect(ch chan<- prometheus.Metric) {
	snapshot := c.snapshot()
	department := snapshot.Department

	ch <- prometheus.MustNewConstMetric(descWaiting, prometheus.GaugeValue,
		float64(len(snapshot.Waiting)), department)
	for _, room := range snapshot.Rooms {
		ch <- prometheus.MustNewConstMetric(descRoomOccupants, prometheus.GaugeValue,
			float64(len(room.Occupants)), department, room.Name)
		ch <- prometheus.MustNewConstMetric(descRoomCapacity, prometheus.GaugeValue,
			float64(room.Capacity), department, room.Name)
	}

	counters := []struct {
		desc  *prometheus.Desc
		value uint64
	}{
		{descRegistered, c.monitoring.registered.Load()},
		{descRejected, c.monitoring.rejected.Load()},
		{descAdmitted, c.monitoring.admitted.Load()},
		{descDischarged, c.monitoring.discharged.Load()},
		{descLostEvents, c.monitoring.lostEvents.Load()},
	}
	for _, counter := range counters {
		ch <- prometheus.MustNewConstMetric(counter.desc, prometheus.CounterValue,
			float64(counter.value), department)
	}
}
