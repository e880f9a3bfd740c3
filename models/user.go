package models

import "time"

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FCMToken     string    `json:"fcm_token,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
