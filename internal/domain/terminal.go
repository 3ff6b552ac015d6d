package domain

import "time"

// Terminal is a point-of-sale device registered by a staff member. Offline
// edits are attributed to the terminal that made them.
type Terminal struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Name       string    `json:"name"`
	Location   string    `json:"location"`
	AppVersion string    `json:"app_version"`
	LastSeen   time.Time `json:"last_seen"`
	CreatedAt  time.Time `json:"created_at"`
	IsRevoked  bool      `json:"is_revoked"`
}

type RegisterTerminalRequest struct {
	Name       string `json:"name" validate:"required"`
	Location   string `json:"location" validate:"required"`
	AppVersion string `json:"app_version" validate:"required"`
}

type TerminalResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Location  string    `json:"location"`
	LastSeen  time.Time `json:"last_seen"`
	IsRevoked bool      `json:"is_revoked"`
}
