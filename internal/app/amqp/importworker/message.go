package importworker

import "time"

const EventName = "affiliate/import.requested"

type ImportRequestedEventData struct {
	URL string `json:"url"`
}

type ImportRequestedEnvelope struct {
	EventName string                   `json:"event_name"`
	EventID   string                   `json:"event_id"`
	TS        time.Time                `json:"ts"`
	Data      ImportRequestedEventData `json:"data"`
}
