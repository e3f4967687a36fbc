package models

import "github.com/google/uuid"

// Kill is one player killing another.
type Kill struct {
	MatchID   uuid.UUID `json:"match_id"`
	Killer    string    `json:"killer"`
	Victim    string    `json:"victim"`
	Timestamp int64     `json:"timestamp"`
}

type KillerScore struct {
	Name  string `json:"name"`
	Kills int64  `json:"kills"`
}

type PlayerStats struct {
	Name   string `json:"name"`
	Kills  int64  `json:"kills"`
	Deaths int64  `json:"deaths"`
}
