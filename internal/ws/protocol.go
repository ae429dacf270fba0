package ws

import "encoding/json"

// FaderMessage is the only frame the server sends.
type FaderMessage struct {
	Crossfader int `json:"crossfader"`
}

func encodeFader(value int) ([]byte, error) {
	return json.Marshal(FaderMessage{Crossfader: value})
}

// StatusPayload is served on /api/status.
type StatusPayload struct {
	Crossfader    int           `json:"crossfader"`
	Device        string        `json:"device,omitempty"`
	Control       *int          `json:"control,omitempty"`
	Clients       int           `json:"clients"`
	UptimeSeconds float64       `json:"uptimeSeconds"`
	Process       *ProcessStats `json:"process,omitempty"`
}

// ProcessStats describes the server process.
type ProcessStats struct {
	RSSBytes   uint64  `json:"rssBytes"`
	CPUPercent float64 `json:"cpuPercent"`
	Goroutines int     `json:"goroutines"`
}
