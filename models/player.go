package models

import "time"

type Player struct {
	ID        int       `json:"id" db:"id"`
	Username  string    `json:"username" db:"username"`
	Whatsapp  string    `json:"whatsapp,omitempty" db:"whatsapp"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type PlayerCredentials struct {
	Username string `json:"username"`
	Whatsapp string `json:"whatsapp"`
}
