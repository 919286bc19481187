package monitor

import "time"

type Status struct {
	Storage       string    `json:"storage"`
	StorageOnline bool      `json:"storage_online"`
	Connections   int       `json:"realtime_connections"`
	Rooms         int       `json:"realtime_rooms"`
	LastCheck     time.Time `json:"last_check"`
}
