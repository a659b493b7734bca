package server

type EventPayload struct {
	Player      string         `json:"player,omitempty"`
	RoundNumber int            `json:"round_number,omitempty"`
	Reason      string         `json:"reason,omitempty"`
	Scores      map[string]int `json:"scores,omitempty"`
}
