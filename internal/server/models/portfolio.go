package models

import "time"

type Portfolio struct {
	ID             int64
	Name           string
	Description    string
	InitialBalance float64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
