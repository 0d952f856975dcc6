package e2e

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Department string `envconfig:"E2E_DEPARTMENT" default:"CT"`
	Rooms      string `envconfig:"E2E_ROOMS" default:"room_1:1,room_2:2"`
	Patients   int    `envconfig:"E2E_PATIENTS" default:"12"`
	// E2E_TREATMENT is the fixed treatment duration of every room
	Treatment    time.Duration `envconfig:"E2E_TREATMENT" default:"40ms"`
	PollInterval time.Duration `envconfig:"E2E_POLL_INTERVAL" default:"10ms"`
	// E2E_SHOW_BOARD dumps the waiting-room screens into the test log
	ShowBoard bool `envconfig:"E2E_SHOW_BOARD" default:"false"`
	// E2E_COLOURS enables colorized output for better log readability
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
