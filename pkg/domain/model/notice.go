package model

import "time"

// Notice is a transient, dismissable user-facing message about one field
type Notice struct {
	Field     string    `json:"field"`
	Label     string    `json:"label"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
