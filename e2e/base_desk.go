package e2e

import (
	"bytes"
	"clinic-desk/domain"
	"clinic-desk/internal"
	"clinic-desk/observability"
	"clinic-desk/repositories"
	"clinic-desk/runtime"
	"clinic-desk/sink"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/suite"
)

type BaseDeskSuite struct {
	suite.Suite
	Config Config
}

// SetupSuite loads the environment configuration before running tests
func (s *BaseDeskSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
}

// Desk is one in-process registration desk with its journal.
type Desk struct {
	Dispatcher *runtime.Dispatcher
	Department *domain.Department
	Visits     repositories.VisitRepository
	Snapshots  repositories.SnapshotRepository
	Screen     *bytes.Buffer
}

// Step prints a colorized header for a scenario step in logs
func (s *BaseDeskSuite) Step(name string) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	s.T().Log(header)
}

// WithDesk builds a desk from the configuration, journaled in an in-memory Badger,
// and hands it to fn. The desk is not started.
func (s *BaseDeskSuite) WithDesk(name string, fn func(desk Desk)) {
	s.Step(name)

	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	s.Require().NoError(err)
	defer db.Close()

	logger := logs.GetLoggerFromLevel(slog.LevelWarn)
	specs, err := internal.ParseRooms(s.Config.Rooms)
	s.Require().NoError(err)

	department := domain.NewDepartment(s.Config.Department)
	for _, spec := range specs {
		room, err := domain.NewRoom(spec.Name, spec.Capacity,
			domain.WithTreatment(domain.FixedTreatment(s.Config.Treatment)))
		s.Require().NoError(err)
		s.Require().NoError(department.AddRoom(room))
	}

	options := runtime.DefaultOptions()
	options.PollInterval = s.Config.PollInterval
	dispatcher := runtime.NewDispatcher(logger, department, observability.NewMonitoringManager(logger), options)

	desk := Desk{
		Dispatcher: dispatcher,
		Department: department,
		Visits:     repositories.NewVisitRepository(db, logger),
		Snapshots:  repositories.NewSnapshotRepository(db, logger),
		Screen:     &bytes.Buffer{},
	}
	dispatcher.Add(
		sink.NewBoard(desk.Screen),
		sink.NewJournal(desk.Visits, desk.Snapshots, logger),
	)

	fn(desk)

	if s.Config.ShowBoard {
		s.T().Log("\n" + desk.Screen.String())
	}
}
