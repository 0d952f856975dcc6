package internal

import (
	"testing"
	"time"

	"github.com/Netflix/go-env"
	"github.com/stretchr/testify/require"
)

func Test_ParseRooms(t *testing.T) {
	req := require.New(t)

	rooms, err := ParseRooms("room_1:1, room_2:3,room_3")

	req.NoError(err)
	req.Equal([]RoomSpec{
		{Name: "room_1", Capacity: 1},
		{Name: "room_2", Capacity: 3},
		{Name: "room_3", Capacity: 1},
	}, rooms)
}

func Test_ParseRooms_Rejects_Invalid_Input(t *testing.T) {
	for _, input := range []string{"", " , ", "room_1:0", "room_1:x", ":2", "room_1:1,room_1:2"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseRooms(input)
			require.Error(t, err)
		})
	}
}

func Test_Config_Defaults_From_Environment(t *testing.T) {
	req := require.New(t)
	t.Setenv("ROOMS", "a:2,b:1")
	t.Setenv("POLL_INTERVAL", "250ms")

	var config Config
	_, err := env.UnmarshalFromEnviron(&config)

	req.NoError(err)
	req.NoError(config.Validate())
	req.Equal("CT", config.Department)
	req.Equal(250*time.Millisecond, config.PollInterval)
	req.Equal(20*time.Second, config.MaxTreatment)
	req.Equal(20, config.Patients)
	req.Equal(256, config.BufferSize)
	req.Empty(config.RedisAddr)

	rooms, err := config.RoomSpecs()
	req.NoError(err)
	req.Equal([]RoomSpec{{Name: "a", Capacity: 2}, {Name: "b", Capacity: 1}}, rooms)
}

func Test_Config_Default_Rooms(t *testing.T) {
	req := require.New(t)

	rooms, err := Config{}.RoomSpecs()

	req.NoError(err)
	req.Equal([]RoomSpec{{Name: "room_1", Capacity: 1}, {Name: "room_2", Capacity: 1}}, rooms)
}

func Test_Config_Validation(t *testing.T) {
	req := require.New(t)
	t.Setenv("POLL_INTERVAL", "0s")

	var config Config
	_, err := env.UnmarshalFromEnviron(&config)
	req.NoError(err)

	req.Error(config.Validate())
}
